package report

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/redtally/internal/domain"
)

// Language selects the report's message catalog.
type Language string

const (
	LangEN Language = "EN"
	LangRU Language = "RU"
)

// Messages holds the localized strings of a report.
type Messages struct {
	Title            string
	Period           string // format verbs: from, to
	ProjectSpentTime string
	RootIssuesSpent  string
	Project          string
	Total            string
	NoData           string
}

var catalog = map[Language]Messages{
	LangEN: {
		Title:            "Redmine",
		Period:           "Information about resources for time period: %s to %s",
		ProjectSpentTime: "Time spent on projects (issue not specified)",
		RootIssuesSpent:  "Total time spent on project's root issues",
		Project:          "Project",
		Total:            "Total",
		NoData:           "No time entries.",
	},
	LangRU: {
		Title:            "Redmine",
		Period:           "Информация по ресурсам за период времени с %s до %s",
		ProjectSpentTime: "Время, затраченное на проекты в целом (задача не указана):",
		RootIssuesSpent:  "Суммарное время, затраченное на корневые задачи по проектам:",
		Project:          "Проект",
		Total:            "Всего",
		NoData:           "Нет записей о затраченном времени.",
	},
}

// ParseLanguage accepts a language code in any case.
func ParseLanguage(s string) (Language, error) {
	lang := Language(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := catalog[lang]; !ok {
		return "", fmt.Errorf("%w: unsupported language %q (use EN or RU)", domain.ErrConfiguration, s)
	}
	return lang, nil
}

// MessagesFor returns the catalog for lang.
func MessagesFor(lang Language) (Messages, error) {
	m, ok := catalog[lang]
	if !ok {
		return Messages{}, fmt.Errorf("%w: unsupported language %q", domain.ErrConfiguration, lang)
	}
	return m, nil
}

// PeriodLine formats the report's period sentence.
func (m Messages) PeriodLine(w domain.Window) string {
	return fmt.Sprintf(m.Period, w.FromString(), w.ToString())
}

// ProjectHeading returns "Project <name>".
func (m Messages) ProjectHeading(name string) string {
	return m.Project + " " + name
}
