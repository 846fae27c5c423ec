package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTally_MostCommon(t *testing.T) {
	tally := NewTally()
	for _, name := range []string{"carol", "alice", "bob", "alice", "dave", "bob", "alice"} {
		tally.Inc(name)
	}

	testCases := []struct {
		name     string
		n        int
		expected []Rank
	}{
		{
			name: "all names, ties keep first-seen order",
			n:    0,
			expected: []Rank{
				{Name: "alice", Count: 3},
				{Name: "bob", Count: 2},
				{Name: "carol", Count: 1},
				{Name: "dave", Count: 1},
			},
		},
		{
			name:     "top two",
			n:        2,
			expected: []Rank{{Name: "alice", Count: 3}, {Name: "bob", Count: 2}},
		},
		{
			name: "n larger than the tally",
			n:    10,
			expected: []Rank{
				{Name: "alice", Count: 3},
				{Name: "bob", Count: 2},
				{Name: "carol", Count: 1},
				{Name: "dave", Count: 1},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tally.MostCommon(tc.n))
		})
	}
}

func TestTally_ZeroValue(t *testing.T) {
	var tally Tally
	assert.Equal(t, 0, tally.Len())
	assert.Empty(t, tally.MostCommon(0))

	tally.Add("acme", 2)
	tally.Inc("acme")
	assert.Equal(t, 3, tally.Count("acme"))
	assert.Equal(t, 3, tally.Total())
	assert.Equal(t, []string{"acme"}, tally.Keys())
	assert.False(t, tally.Has("other"))
}

func TestCreditCounts_Unaffiliated(t *testing.T) {
	counts := NewCreditCounts()
	counts.Individuals.Inc("alice")
	counts.Individuals.Inc("bob")
	counts.Individuals.Inc("bob")
	counts.Individuals.Inc("carol")
	counts.Organizations.Inc("Acme")
	counts.Member("Acme").Inc("alice")

	assert.Equal(t, []Rank{{Name: "bob", Count: 2}, {Name: "carol", Count: 1}}, counts.Unaffiliated())
}

func TestCreditCounts_OrganizationsByName(t *testing.T) {
	counts := NewCreditCounts()
	for _, org := range []string{"Zeta", "acme", "Beta"} {
		counts.Organizations.Inc(org)
	}
	assert.Equal(t, []string{"Beta", "Zeta", "acme"}, counts.OrganizationsByName())
}

func TestIssueID_UnmarshalJSON(t *testing.T) {
	testCases := []struct {
		name        string
		input       string
		expected    IssueID
		expectError bool
	}{
		{name: "quoted", input: `"3012345"`, expected: 3012345},
		{name: "numeric", input: `42`, expected: 42},
		{name: "not a number", input: `"abc"`, expectError: true},
		{name: "wrong type", input: `{}`, expectError: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var id IssueID
			err := json.Unmarshal([]byte(tc.input), &id)
			if tc.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, id)
		})
	}
}
