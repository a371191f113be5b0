package domain

import "sort"

// RoleSet is the set of role names a user holds on one project.
type RoleSet map[string]struct{}

// NewRoleSet builds a RoleSet from names, ignoring empty ones.
func NewRoleSet(names ...string) RoleSet {
	s := make(RoleSet, len(names))
	for _, n := range names {
		if n != "" {
			s[n] = struct{}{}
		}
	}
	return s
}

// Add inserts a role name.
func (s RoleSet) Add(name string) {
	if name != "" {
		s[name] = struct{}{}
	}
}

// Has reports whether name is in the set.
func (s RoleSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Sorted returns the role names in lexicographic order.
func (s RoleSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for n := range s {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// RoleMap maps a user display name to the roles held on a project.
type RoleMap map[string]RoleSet

// Grant adds roles for a user, creating the user's set on first use.
func (m RoleMap) Grant(user string, roles ...string) {
	set, ok := m[user]
	if !ok {
		set = NewRoleSet()
		m[user] = set
	}
	for _, r := range roles {
		set.Add(r)
	}
}

// For returns the user's roles, or an empty set for non-members.
func (m RoleMap) For(user string) RoleSet {
	if set, ok := m[user]; ok {
		return set
	}
	return RoleSet{}
}
