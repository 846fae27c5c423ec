package report

import (
	"cmp"
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/naka-gawa/drucred/internal/domain"
)

var csvHeader = []string{"Username", "Organization", "Count"}

// Row is one line of the CSV table. Organization is empty for individuals
// never attributed to an organization.
type Row struct {
	Username     string
	Organization string
	Count        int
}

// Rows lists every organization/individual pair, then every unaffiliated
// individual, ordered by count descending. Equal counts keep that listing order.
func Rows(counts *domain.CreditCounts) []Row {
	var rows []Row
	for _, org := range counts.Organizations.Keys() {
		members := counts.MembersOf(org)
		for _, user := range members.Keys() {
			rows = append(rows, Row{Username: user, Organization: org, Count: members.Count(user)})
		}
	}
	for _, r := range counts.Unaffiliated() {
		rows = append(rows, Row{Username: r.Name, Count: r.Count})
	}
	slices.SortStableFunc(rows, func(a, b Row) int {
		return cmp.Compare(b.Count, a.Count)
	})
	return rows
}

// WriteCSV writes the header and Rows(counts) to w.
func WriteCSV(w io.Writer, counts *domain.CreditCounts) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, row := range Rows(counts) {
		if err := cw.Write([]string{row.Username, row.Organization, strconv.Itoa(row.Count)}); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
