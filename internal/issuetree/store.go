package issuetree

// Store accumulates hours per user and activity. Users and, within a user,
// activities keep the order in which they were first recorded.
type Store struct {
	users []string
	rows  map[string]*storeRow
}

type storeRow struct {
	activities []string
	hours      map[string]float64
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{rows: make(map[string]*storeRow)}
}

// Add sums hours into (user, activity). The first write for a pair
// initializes it.
func (s *Store) Add(user, activity string, hours float64) {
	if s.rows == nil {
		s.rows = make(map[string]*storeRow)
	}
	row, ok := s.rows[user]
	if !ok {
		row = &storeRow{hours: make(map[string]float64)}
		s.rows[user] = row
		s.users = append(s.users, user)
	}
	if _, seen := row.hours[activity]; !seen {
		row.activities = append(row.activities, activity)
	}
	row.hours[activity] += hours
}

// Hours returns the accumulated hours for (user, activity), 0 when absent.
func (s *Store) Hours(user, activity string) float64 {
	if row, ok := s.rows[user]; ok {
		return row.hours[activity]
	}
	return 0
}

// Has reports whether anything was recorded for (user, activity).
func (s *Store) Has(user, activity string) bool {
	if row, ok := s.rows[user]; ok {
		_, seen := row.hours[activity]
		return seen
	}
	return false
}

// Users returns users in first-recorded order.
func (s *Store) Users() []string {
	out := make([]string, len(s.users))
	copy(out, s.users)
	return out
}

// Activities returns the user's activities in first-recorded order.
func (s *Store) Activities(user string) []string {
	row, ok := s.rows[user]
	if !ok {
		return nil
	}
	out := make([]string, len(row.activities))
	copy(out, row.activities)
	return out
}

// Empty reports whether nothing has been recorded.
func (s *Store) Empty() bool {
	return len(s.users) == 0
}

// Total sums all hours in the store, excluded activities included.
func (s *Store) Total() float64 {
	var sum float64
	for _, u := range s.users {
		for _, h := range s.rows[u].hours {
			sum += h
		}
	}
	return sum
}
