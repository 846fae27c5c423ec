// Package domain contains the core data structures and domain logic for the application.
package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// IssueID is the node id of an issue on the tracker.
type IssueID int

// UnmarshalJSON accepts both numeric and quoted ids; the tracker sends "nid" as a string.
func (id *IssueID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("invalid issue id %q: %w", s, err)
		}
		*id = IssueID(n)
		return nil
	}
	var n int
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("invalid issue id %s: %w", b, err)
	}
	*id = IssueID(n)
	return nil
}

func (id IssueID) String() string {
	return strconv.Itoa(int(id))
}

// Project identifies the audited project.
// Slug namespaces cache entries and output files.
type Project struct {
	NID   int    `json:"nid"`
	Title string `json:"title"`
	Slug  string `json:"slug"`
}

// Issue is a fixed issue together with the credit attached to it.
type Issue struct {
	ID      IssueID       `json:"id"`
	Credits []CreditEntry `json:"credits"`
}

// HasCredit reports whether the tracker returned any credit records for the issue,
// including records that turn out to be unusable.
func (i *Issue) HasCredit() bool {
	return len(i.Credits) > 0
}

// CreditEntry links one individual to an issue, optionally attributed to organizations.
// Username is empty when the tracker record carried no usable user.
type CreditEntry struct {
	Username      string   `json:"username"`
	Organizations []string `json:"organizations,omitempty"`
}
