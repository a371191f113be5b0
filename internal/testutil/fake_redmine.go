package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alexanderramin/redtally/internal/domain"
)

// RedmineServer serves a Fixture through Redmine's REST endpoints.
type RedmineServer struct {
	*httptest.Server
	Fixture *Fixture
	APIKey  string

	mu       sync.Mutex
	requests []string
	failures map[string]int
}

// NewRedmineServer starts a fake Redmine for f (standard fixture when nil)
// that accepts apiKey. The server is closed when the test completes.
func NewRedmineServer(t *testing.T, f *Fixture, apiKey string) *RedmineServer {
	t.Helper()
	if f == nil {
		f = NewFixture()
	}
	rs := &RedmineServer{Fixture: f, APIKey: apiKey, failures: map[string]int{}}
	rs.Server = httptest.NewServer(http.HandlerFunc(rs.serve))
	t.Cleanup(rs.Close)
	return rs
}

// FailNext makes the next n requests to path answer with status 503.
func (rs *RedmineServer) FailNext(path string, n int) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.failures[path] = n
}

// Requests returns every request as "path?query".
func (rs *RedmineServer) Requests() []string {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return append([]string(nil), rs.requests...)
}

// RequestCount counts requests to path.
func (rs *RedmineServer) RequestCount(path string) int {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	n := 0
	for _, r := range rs.requests {
		if r == path || strings.HasPrefix(r, path+"?") {
			n++
		}
	}
	return n
}

func (rs *RedmineServer) serve(w http.ResponseWriter, r *http.Request) {
	rs.mu.Lock()
	rs.requests = append(rs.requests, r.URL.Path+"?"+r.URL.RawQuery)
	fail := rs.failures[r.URL.Path]
	if fail > 0 {
		rs.failures[r.URL.Path] = fail - 1
	}
	rs.mu.Unlock()

	if rs.APIKey != "" && r.Header.Get("X-Redmine-API-Key") != rs.APIKey {
		http.Error(w, `{"errors":["invalid api key"]}`, http.StatusUnauthorized)
		return
	}
	if fail > 0 {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
		return
	}

	q := r.URL.Query()
	path := r.URL.Path
	switch {
	case path == "/enumerations/time_entry_activities.json":
		writeJSON(w, map[string]any{"time_entry_activities": namedRefs(rs.Fixture.Activities)})
	case path == "/roles.json":
		writeJSON(w, map[string]any{"roles": namedRefs(rs.Fixture.Roles)})
	case path == "/projects.json":
		items := make([]any, 0, len(rs.Fixture.Projects))
		for _, p := range rs.Fixture.Projects {
			items = append(items, rs.project(p))
		}
		writePage(w, q, "projects", items)
	case strings.HasPrefix(path, "/projects/") && strings.HasSuffix(path, "/memberships.json"):
		id, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(path, "/projects/"), "/memberships.json"))
		if err != nil {
			http.NotFound(w, r)
			return
		}
		writePage(w, q, "memberships", rs.memberships(id))
	case path == "/time_entries.json":
		writePage(w, q, "time_entries", rs.timeEntries(q))
	case path == "/issues.json":
		writePage(w, q, "issues", rs.issues(q))
	default:
		http.NotFound(w, r)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writePage(w http.ResponseWriter, q map[string][]string, key string, items []any) {
	offset, _ := strconv.Atoi(first(q["offset"]))
	limit, err := strconv.Atoi(first(q["limit"]))
	if err != nil || limit <= 0 {
		limit = 25
	}
	end := min(offset+limit, len(items))
	if offset > end {
		offset = end
	}
	writeJSON(w, map[string]any{
		key:           items[offset:end],
		"total_count": len(items),
		"offset":      offset,
		"limit":       limit,
	})
}

func first(vs []string) string {
	if len(vs) == 0 {
		return ""
	}
	return vs[0]
}

func namedRefs(names []string) []map[string]any {
	out := make([]map[string]any, 0, len(names))
	for i, n := range names {
		out = append(out, map[string]any{"id": i + 1, "name": n})
	}
	return out
}

func (rs *RedmineServer) userRef(name string) map[string]any {
	for i, u := range rs.Fixture.Users() {
		if u == name {
			return map[string]any{"id": i + 1, "name": u}
		}
	}
	return map[string]any{"id": 0, "name": name}
}

func (rs *RedmineServer) project(p domain.Project) map[string]any {
	out := map[string]any{"id": p.ID, "name": p.Name, "identifier": p.Identifier}
	if p.ParentID != nil {
		out["parent"] = map[string]any{"id": *p.ParentID}
	}
	return out
}

func (rs *RedmineServer) memberships(projectID int) []any {
	items := []any{}
	for _, m := range rs.Fixture.Members {
		if m.ProjectID != projectID {
			continue
		}
		roles := make([]map[string]any, 0, len(m.Roles))
		for _, r := range m.Roles {
			roles = append(roles, map[string]any{"name": r})
		}
		items = append(items, map[string]any{"user": rs.userRef(m.User), "roles": roles})
	}
	if len(items) > 0 {
		items = append(items, map[string]any{
			"group": map[string]any{"id": 900, "name": "Everyone"},
			"roles": []map[string]any{{"name": "Reporter"}},
		})
	}
	return items
}

// timeEntries mirrors Redmine: issue_id also matches entries of subtasks.
func (rs *RedmineServer) timeEntries(q map[string][]string) []any {
	from, _ := time.Parse(domain.DateLayout, first(q["from"]))
	to, _ := time.Parse(domain.DateLayout, first(q["to"]))
	w := domain.Window{From: from, To: to}
	projectID, byProject := atoi(first(q["project_id"]))
	issueID, byIssue := atoi(first(q["issue_id"]))

	items := []any{}
	for _, e := range rs.Fixture.Entries {
		if !w.Contains(e.SpentOn) {
			continue
		}
		if byProject && e.ProjectID != projectID {
			continue
		}
		if byIssue && (e.IssueID == nil || !rs.descends(*e.IssueID, issueID)) {
			continue
		}
		item := map[string]any{
			"id":       e.ID,
			"project":  map[string]any{"id": e.ProjectID},
			"user":     rs.userRef(e.User),
			"activity": map[string]any{"name": e.Activity},
			"hours":    e.Hours,
			"comments": e.Comments,
			"spent_on": e.SpentOn.Format(domain.DateLayout),
		}
		if e.IssueID != nil {
			item["issue"] = map[string]any{"id": *e.IssueID}
		}
		items = append(items, item)
	}
	return items
}

func (rs *RedmineServer) descends(issueID, ancestor int) bool {
	for id := issueID; ; {
		if id == ancestor {
			return true
		}
		parent := 0
		for _, is := range rs.Fixture.Issues {
			if is.ID == id && is.ParentID != nil {
				parent = *is.ParentID
			}
		}
		if parent == 0 {
			return false
		}
		id = parent
	}
}

func (rs *RedmineServer) issues(q map[string][]string) []any {
	projectID, byProject := atoi(first(q["project_id"]))
	parent := first(q["parent_id"])
	parentID, byParent := atoi(parent)

	var matched []domain.Issue
	for _, is := range rs.Fixture.Issues {
		if byProject && is.ProjectID != projectID {
			continue
		}
		if parent == "!*" && is.ParentID != nil {
			continue
		}
		if byParent && (is.ParentID == nil || *is.ParentID != parentID) {
			continue
		}
		matched = append(matched, is)
	}
	sortIssues(matched)

	items := make([]any, 0, len(matched))
	for _, is := range matched {
		item := map[string]any{
			"id":      is.ID,
			"project": map[string]any{"id": is.ProjectID},
			"subject": is.Subject,
		}
		if is.ParentID != nil {
			item["parent"] = map[string]any{"id": *is.ParentID}
		}
		items = append(items, item)
	}
	return items
}

func atoi(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	return n, err == nil
}
