// Package report renders aggregated credit counts as a markdown report and a CSV table.
package report

import (
	"embed"
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/naka-gawa/drucred/internal/domain"
)

//go:embed templates/report.md.tmpl
var templates embed.FS

var markdownTemplate = template.Must(
	template.New("report.md.tmpl").
		Funcs(template.FuncMap{"chart": barChart}).
		ParseFS(templates, "templates/report.md.tmpl"),
)

type organizationSection struct {
	Name    string
	Members []domain.Rank
}

type markdownView struct {
	Title            string
	Issues           int
	CreditedIssues   int
	TopIndividuals   []domain.Rank
	TopOrganizations []domain.Rank
	Distribution     []distributionRow
	Organizations    []organizationSection
	AllIndividuals   []domain.Rank
}

// WriteMarkdown renders the credit report of title to w, listing the topN
// individuals and organizations in the ranked sections.
func WriteMarkdown(w io.Writer, title string, counts *domain.CreditCounts, topN int) error {
	individuals, err := Summarize(counts.Individuals)
	if err != nil {
		return fmt.Errorf("failed to summarize individuals: %w", err)
	}
	organizations, err := Summarize(counts.Organizations)
	if err != nil {
		return fmt.Errorf("failed to summarize organizations: %w", err)
	}

	view := markdownView{
		Title:            title,
		Issues:           counts.Issues,
		CreditedIssues:   counts.CreditedIssues,
		TopIndividuals:   counts.Individuals.MostCommon(topN),
		TopOrganizations: counts.Organizations.MostCommon(topN),
		Distribution:     distributionRows(individuals, organizations),
		AllIndividuals:   counts.Individuals.MostCommon(0),
	}
	for _, org := range counts.OrganizationsByName() {
		view.Organizations = append(view.Organizations, organizationSection{
			Name:    org,
			Members: counts.MembersOf(org).MostCommon(0),
		})
	}

	if err := markdownTemplate.Execute(w, view); err != nil {
		return fmt.Errorf("failed to render markdown: %w", err)
	}
	return nil
}

// barChart renders ranks as the body of a mermaid bar chart block.
func barChart(title string, ranks []domain.Rank) string {
	lines := []string{"%% " + title, "bar", "    title " + title}
	for _, r := range ranks {
		lines = append(lines, fmt.Sprintf(`    "%s": %d`, strings.ReplaceAll(r.Name, `"`, "'"), r.Count))
	}
	return strings.Join(lines, "\n")
}
