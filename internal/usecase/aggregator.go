// Package usecase contains the business logic of the application.
package usecase

import (
	"github.com/naka-gawa/drucred/internal/domain"
)

// Aggregate tallies the credit of issues.
//
// Every credit entry with a username counts once for that individual. Each
// organization named in the entry counts once for the organization and once for
// the individual within it. Entries without a username are ignored.
func Aggregate(issues []*domain.Issue) *domain.CreditCounts {
	counts := domain.NewCreditCounts()
	for _, issue := range issues {
		if issue == nil {
			continue
		}
		counts.Issues++
		if !issue.HasCredit() {
			continue
		}
		counts.CreditedIssues++

		for _, entry := range issue.Credits {
			if entry.Username == "" {
				continue
			}
			counts.Individuals.Inc(entry.Username)
			for _, org := range entry.Organizations {
				if org == "" {
					continue
				}
				counts.Organizations.Inc(org)
				counts.Member(org).Inc(entry.Username)
			}
		}
	}
	return counts
}
