package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Project is a tracker project whose time entries are reported.
type Project struct {
	ID         int
	Identifier string
	Name       string
	ParentID   *int
}

// DisplayName returns the best label for report headings.
// It prefers Name and falls back to Identifier, then the numeric ID.
func (p *Project) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	if p.Identifier != "" {
		return p.Identifier
	}
	return fmt.Sprintf("project %d", p.ID)
}

// Matches reports whether key names this project by name or identifier,
// ignoring case, or by numeric ID.
func (p *Project) Matches(key string) bool {
	key = strings.TrimSpace(key)
	return strings.EqualFold(key, p.Name) ||
		strings.EqualFold(key, p.Identifier) ||
		key == strconv.Itoa(p.ID)
}
