// Package activity decides which activity a time entry is reported under,
// given the roles its author holds on the project.
package activity

import (
	"fmt"
	"unicode/utf8"

	"github.com/alexanderramin/redtally/internal/domain"
)

// Override relabels an activity for one role: time a user holding Role logs
// as Activity is reported as ReportAs.
type Override struct {
	Role     string `yaml:"role" json:"role"`
	Activity string `yaml:"activity" json:"activity"`
	ReportAs string `yaml:"report_as" json:"report_as"`
}

type pair struct {
	role     string
	activity string
}

// Resolver maps (role set, raw activity) to the effective activity.
// It is immutable after construction and safe for concurrent use.
type Resolver struct {
	mapping map[pair]string
}

// NewResolver builds the role/activity mapping: identity for every known
// role and activity, then the overrides on top. An override naming an
// unknown role, activity, or target activity is a configuration error.
func NewResolver(roles, activities []string, overrides []Override) (*Resolver, error) {
	knownRoles := make(map[string]bool, len(roles))
	for _, r := range roles {
		knownRoles[r] = true
	}
	knownActivities := make(map[string]bool, len(activities))
	for _, a := range activities {
		knownActivities[a] = true
	}

	mapping := make(map[pair]string, len(roles)*len(activities)+len(overrides))
	for _, r := range roles {
		for _, a := range activities {
			mapping[pair{r, a}] = a
		}
	}

	for i, o := range overrides {
		switch {
		case !knownRoles[o.Role]:
			return nil, fmt.Errorf("%w: override %d: unknown role %q", domain.ErrConfiguration, i, o.Role)
		case !knownActivities[o.Activity]:
			return nil, fmt.Errorf("%w: override %d: unknown activity %q", domain.ErrConfiguration, i, o.Activity)
		case !knownActivities[o.ReportAs]:
			return nil, fmt.Errorf("%w: override %d: unknown report_as activity %q", domain.ErrConfiguration, i, o.ReportAs)
		}
		mapping[pair{o.Role, o.Activity}] = o.ReportAs
	}

	return &Resolver{mapping: mapping}, nil
}

// Lookup returns the activity a single role permits for raw.
func (r *Resolver) Lookup(role, raw string) (string, bool) {
	a, ok := r.mapping[pair{role, raw}]
	return a, ok
}

// Resolve returns raw unchanged when at least one held role maps it to
// itself. Otherwise the priority role decides; see PriorityRole.
func (r *Resolver) Resolve(roles domain.RoleSet, raw string) (string, error) {
	if len(roles) == 0 {
		return "", fmt.Errorf("%w: no roles to resolve activity %q", domain.ErrInvalidInput, raw)
	}

	// Every held role must be mappable, whatever the outcome.
	permitted := false
	for _, role := range roles.Sorted() {
		a, ok := r.mapping[pair{role, raw}]
		if !ok {
			return "", fmt.Errorf("%w: no mapping for role %q and activity %q", domain.ErrConfiguration, role, raw)
		}
		if a == raw {
			permitted = true
		}
	}
	if permitted {
		return raw, nil
	}

	priority, err := PriorityRole(roles)
	if err != nil {
		return "", err
	}
	return r.mapping[pair{priority, raw}], nil
}

// PriorityRole picks the role with the longest name, counted in characters.
// Equal lengths fall back to the lexicographically smallest name.
//
// Name length stands in for seniority. It matches how reports have always
// been produced, not any role ranking the tracker defines.
func PriorityRole(roles domain.RoleSet) (string, error) {
	if len(roles) == 0 {
		return "", fmt.Errorf("%w: empty role set", domain.ErrInvalidInput)
	}
	best := ""
	bestLen := -1
	for role := range roles {
		n := utf8.RuneCountInString(role)
		if n > bestLen || (n == bestLen && role < best) {
			best, bestLen = role, n
		}
	}
	return best, nil
}
