package report

// HoursStore is the read side of an aggregation store.
type HoursStore interface {
	Users() []string
	Has(user, activity string) bool
	Hours(user, activity string) float64
}

// Project builds a table from store. Columns are exactly reported, in
// order; activities missing from reported are left out of rows and totals.
// Rows follow the store's user order. Each cell is rounded to three
// decimals, and the totals row sums the rounded cells.
func Project(label string, store HoursStore, reported []string, totalLabel string) Table {
	header := make([]string, 0, len(reported)+1)
	header = append(header, label)
	header = append(header, reported...)

	users := store.Users()
	rows := make([]Row, 0, len(users))
	total := make([]float64, len(reported))
	for _, user := range users {
		values := make([]float64, len(reported))
		for i, act := range reported {
			if store.Has(user, act) {
				values[i] = Round(store.Hours(user, act))
			}
			total[i] += values[i]
		}
		rows = append(rows, Row{Label: user, Values: values})
	}

	return Table{
		Header: header,
		Rows:   rows,
		Total:  Row{Label: totalLabel, Values: total},
	}
}

// Projector carries the column set and totals label for one report so
// callers only pass the label and the store.
type Projector struct {
	reported   []string
	totalLabel string
}

// NewProjector creates a Projector for the reported activities.
func NewProjector(reported []string, totalLabel string) *Projector {
	return &Projector{
		reported:   append([]string(nil), reported...),
		totalLabel: totalLabel,
	}
}

// Project builds the table for one store.
func (p *Projector) Project(label string, store HoursStore) Table {
	return Project(label, store, p.reported, p.totalLabel)
}

// Reported returns the reported activity columns.
func (p *Projector) Reported() []string {
	return append([]string(nil), p.reported...)
}

// ReportedActivities returns activities minus excluded, keeping order.
func ReportedActivities(activities, excluded []string) []string {
	skip := make(map[string]bool, len(excluded))
	for _, e := range excluded {
		skip[e] = true
	}
	out := make([]string, 0, len(activities))
	for _, a := range activities {
		if !skip[a] {
			out = append(out, a)
		}
	}
	return out
}
