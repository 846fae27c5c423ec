package gateway

import (
	"encoding/json"
	"fmt"

	"github.com/naka-gawa/drucred/internal/domain"
)

// projectNode is the subset of a project node the audit needs.
type projectNode struct {
	Title       string `json:"title"`
	MachineName string `json:"field_project_machine_name"`
}

type listItem struct {
	NID domain.IssueID `json:"nid"`
}

// issueNode is the subset of an issue node the audit needs. The credit field is
// kept raw since the API sends [] or {} interchangeably for empty values.
type issueNode struct {
	NID    domain.IssueID  `json:"nid"`
	Credit json.RawMessage `json:"field_issue_credit"`
}

type creditRecord struct {
	Data json.RawMessage `json:"data"`
}

type creditData struct {
	Username     string          `json:"username"`
	Contribution json.RawMessage `json:"field_attribute_contribution_to"`
}

type organizationRef struct {
	Title string `json:"title"`
}

func decodeIssueList(data []byte) ([]json.RawMessage, error) {
	var page struct {
		List json.RawMessage `json:"list"`
	}
	if err := json.Unmarshal(data, &page); err != nil {
		return nil, fmt.Errorf("failed to decode issue list: %w", err)
	}
	var items []json.RawMessage
	if !decodeLenient(page.List, &items) {
		return nil, nil
	}
	return items, nil
}

// DecodeIssue parses an issue payload. Malformed credit records are kept as
// entries without a username so that the issue still counts as credited;
// organizations without a title are dropped.
func DecodeIssue(data []byte) (*domain.Issue, error) {
	var node issueNode
	if err := json.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("failed to decode issue: %w", err)
	}

	issue := &domain.Issue{ID: node.NID}

	var records []creditRecord
	if !decodeLenient(node.Credit, &records) {
		records = nil
		var raw []json.RawMessage
		if decodeLenient(node.Credit, &raw) {
			// Some records are not objects at all.
			records = make([]creditRecord, len(raw))
			for i := range raw {
				decodeLenient(raw[i], &records[i])
			}
		}
	}

	for _, record := range records {
		var data creditData
		if !decodeLenient(record.Data, &data) {
			issue.Credits = append(issue.Credits, domain.CreditEntry{})
			continue
		}
		entry := domain.CreditEntry{Username: data.Username}
		var orgs []json.RawMessage
		decodeLenient(data.Contribution, &orgs)
		for _, raw := range orgs {
			var org organizationRef
			if decodeLenient(raw, &org) && org.Title != "" {
				entry.Organizations = append(entry.Organizations, org.Title)
			}
		}
		issue.Credits = append(issue.Credits, entry)
	}
	return issue, nil
}

// decodeLenient unmarshals raw into v and reports success. Empty input is a failure.
func decodeLenient(raw json.RawMessage, v any) bool {
	if len(raw) == 0 {
		return false
	}
	return json.Unmarshal(raw, v) == nil
}
