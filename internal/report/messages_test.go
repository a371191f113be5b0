package report

import (
	"errors"
	"testing"
	"time"

	"github.com/alexanderramin/redtally/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLanguage(t *testing.T) {
	lang, err := ParseLanguage(" ru ")
	require.NoError(t, err)
	assert.Equal(t, LangRU, lang)

	_, err = ParseLanguage("DE")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConfiguration))
}

func TestMessages_PeriodLine(t *testing.T) {
	w, err := domain.ParseWindow("2025-05-01", "2025-05-31")
	require.NoError(t, err)

	en, err := MessagesFor(LangEN)
	require.NoError(t, err)
	assert.Equal(t, "Information about resources for time period: 2025-05-01 to 2025-05-31", en.PeriodLine(w))
	assert.Equal(t, "Project Apollo", en.ProjectHeading("Apollo"))
	assert.Equal(t, "Total", en.Total)

	ru, err := MessagesFor(LangRU)
	require.NoError(t, err)
	assert.Equal(t, "Информация по ресурсам за период времени с 2025-05-01 до 2025-05-31", ru.PeriodLine(w))
	assert.Equal(t, "Всего", ru.Total)
}

func TestReport_Sections(t *testing.T) {
	w, err := domain.ParseWindow("2025-05-01", "2025-05-31")
	require.NoError(t, err)
	msgs, _ := MessagesFor(LangEN)

	r := New("run-1", LangEN, msgs, w, 1, []string{"Dev"}, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	assert.True(t, r.Empty())
	assert.Equal(t, msgs.PeriodLine(w), r.PeriodLine())

	p := domain.Project{ID: 1, Name: "Apollo"}
	r.AddProject(p, Table{Header: []string{"Apollo", "Dev"}})
	r.AddIssues(p, nil)
	assert.Empty(t, r.Issues)

	r.AddIssues(p, []IssueTable{{IssueID: 10, Subject: "Launch"}})
	require.Len(t, r.Issues, 1)
	assert.Equal(t, "Apollo", r.Issues[0].Name)
	assert.False(t, r.Empty())

	got, err := r.Window()
	require.NoError(t, err)
	assert.Equal(t, w, got)
}
