package redmineapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alexanderramin/redtally/internal/domain"
	"github.com/alexanderramin/redtally/internal/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "secret-key"

func testConfig(baseURL string) Config {
	cfg := DefaultConfig()
	cfg.BaseURL = baseURL
	cfg.APIKey = testKey
	cfg.Backoff = time.Millisecond
	return cfg
}

type recordingObserver struct {
	events []CallEvent
}

func (o *recordingObserver) OnCallComplete(e CallEvent) { o.events = append(o.events, e) }

func newFixtureClient(t *testing.T) (*Client, *testutil.RedmineServer) {
	t.Helper()
	srv := testutil.NewRedmineServer(t, nil, testKey)
	return NewClient(testConfig(srv.URL), zerolog.Nop(), nil), srv
}

func TestClient_ActivitiesAndRoles(t *testing.T) {
	c, srv := newFixtureClient(t)
	ctx := context.Background()

	acts, err := c.Activities(ctx)
	require.NoError(t, err)
	assert.Equal(t, srv.Fixture.Activities, acts)

	roles, err := c.Roles(ctx)
	require.NoError(t, err)
	assert.Equal(t, srv.Fixture.Roles, roles)
}

func TestClient_Projects_Paginates(t *testing.T) {
	srv := testutil.NewRedmineServer(t, nil, testKey)
	cfg := testConfig(srv.URL)
	cfg.PageSize = 1
	c := NewClient(cfg, zerolog.Nop(), nil)

	projects, err := c.Projects(context.Background())
	require.NoError(t, err)
	assert.Equal(t, srv.Fixture.Projects, projects)
	assert.Equal(t, 2, srv.RequestCount("/projects.json"))
}

func TestClient_ProjectRoles_SkipsGroups(t *testing.T) {
	c, srv := newFixtureClient(t)

	roles, err := c.ProjectRoles(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, srv.Fixture.RoleMap(1), roles)
}

func TestClient_ProjectTimeEntries(t *testing.T) {
	c, _ := newFixtureClient(t)

	entries, err := c.ProjectTimeEntries(context.Background(), 1, testutil.FixtureWindow)
	require.NoError(t, err)
	ids := make([]int, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ID)
	}
	assert.ElementsMatch(t, []int{1, 2, 3, 4, 5, 6, 7, 8}, ids)

	for _, e := range entries {
		if e.ID == 1 {
			assert.False(t, e.HasIssue())
			assert.Equal(t, "alice", e.User)
			assert.Equal(t, 2.5, e.Hours)
			assert.Equal(t, testutil.FixtureDay, e.SpentOn)
		}
	}
}

func TestClient_IssueTimeEntries_DropsSubtaskEntries(t *testing.T) {
	c, srv := newFixtureClient(t)

	entries, err := c.IssueTimeEntries(context.Background(), 10, testutil.FixtureWindow)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	for _, e := range entries {
		require.NotNil(t, e.IssueID)
		assert.Equal(t, 10, *e.IssueID)
	}

	reqs := srv.Requests()
	require.NotEmpty(t, reqs)
	assert.Contains(t, reqs[len(reqs)-1], "issue_id=10")
	assert.Contains(t, reqs[len(reqs)-1], "from="+testutil.FixtureWindow.FromString())
}

func TestClient_IssueHierarchy(t *testing.T) {
	c, _ := newFixtureClient(t)
	ctx := context.Background()

	roots, err := c.RootIssues(ctx, 1)
	require.NoError(t, err)
	require.Len(t, roots, 2)
	assert.Equal(t, domain.Issue{ID: 10, ProjectID: 1, Subject: "Launch"}, roots[0])

	children, err := c.ChildIssues(ctx, 10)
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, 11, children[0].ID)
	require.NotNil(t, children[0].ParentID)
	assert.Equal(t, 10, *children[0].ParentID)
}

func TestClient_RetriesServiceUnavailable(t *testing.T) {
	srv := testutil.NewRedmineServer(t, nil, testKey)
	srv.FailNext("/roles.json", 2)
	obs := &recordingObserver{}
	c := NewClient(testConfig(srv.URL), zerolog.Nop(), obs)

	roles, err := c.Roles(context.Background())
	require.NoError(t, err)
	assert.Len(t, roles, 3)
	assert.Equal(t, 3, srv.RequestCount("/roles.json"))

	require.Len(t, obs.events, 1)
	assert.True(t, obs.events[0].Success)
	assert.Equal(t, 3, obs.events[0].Attempts)
}

func TestClient_RetryExhausted(t *testing.T) {
	srv := testutil.NewRedmineServer(t, nil, testKey)
	srv.FailNext("/roles.json", 10)
	obs := &recordingObserver{}
	cfg := testConfig(srv.URL)
	cfg.MaxRetries = 1
	c := NewClient(cfg, zerolog.Nop(), obs)

	_, err := c.Roles(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrSourceFailure))
	assert.True(t, errors.Is(err, ErrRetryExhausted))
	assert.Equal(t, 2, srv.RequestCount("/roles.json"))

	require.Len(t, obs.events, 1)
	assert.False(t, obs.events[0].Success)
	assert.Equal(t, "HTTP_503", obs.events[0].ErrorCode)
}

func TestClient_Unauthorized_NotRetried(t *testing.T) {
	srv := testutil.NewRedmineServer(t, nil, "other-key")
	c := NewClient(testConfig(srv.URL), zerolog.Nop(), nil)

	_, err := c.Projects(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnauthorized))
	assert.True(t, errors.Is(err, domain.ErrSourceFailure))
	assert.Equal(t, 1, srv.RequestCount("/projects.json"))
}

func TestClient_NotFound(t *testing.T) {
	c, _ := newFixtureClient(t)

	_, err := c.ProjectRoles(context.Background(), 0)
	require.NoError(t, err, "unknown projects list no members")

	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()
	c = NewClient(testConfig(srv.URL), zerolog.Nop(), nil)
	_, err = c.Activities(context.Background())
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestClient_HonorsRetryAfter(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"roles":[{"id":1,"name":"Developer"}]}`))
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL), zerolog.Nop(), nil)
	start := time.Now()
	roles, err := c.Roles(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Developer"}, roles)
	assert.GreaterOrEqual(t, time.Since(start), time.Second)
}

func TestClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.Timeout = 50 * time.Millisecond
	cfg.MaxRetries = 0
	c := NewClient(cfg, zerolog.Nop(), nil)

	_, err := c.Roles(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrSourceFailure))
	assert.True(t, errors.Is(err, ErrTimeout))
	assert.False(t, errors.Is(err, context.DeadlineExceeded))
}

func TestClient_TimeoutAfterRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.Timeout = 30 * time.Millisecond
	cfg.MaxRetries = 1
	cfg.Backoff = time.Millisecond
	c := NewClient(cfg, zerolog.Nop(), nil)

	_, err := c.Projects(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrSourceFailure))
	assert.True(t, errors.Is(err, ErrRetryExhausted))
	assert.True(t, errors.Is(err, ErrTimeout))
}

func TestClient_CallerDeadline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.MaxRetries = 0
	c := NewClient(cfg, zerolog.Nop(), nil)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := c.Roles(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.False(t, errors.Is(err, domain.ErrSourceFailure))
}

func TestClient_CancelledContext(t *testing.T) {
	c, _ := newFixtureClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Projects(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestClient_EmptyBaseURL(t *testing.T) {
	c := NewClient(DefaultConfig(), zerolog.Nop(), nil)
	_, err := c.Roles(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrSourceFailure))
}

func TestRetryAfter(t *testing.T) {
	assert.Equal(t, 2*time.Second, retryAfter("2"))
	assert.Equal(t, time.Minute, retryAfter("3600"))
	assert.Zero(t, retryAfter(""))
	assert.Zero(t, retryAfter("Wed, 21 Oct 2015 07:28:00 GMT"))
}
