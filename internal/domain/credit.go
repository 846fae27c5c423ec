package domain

import (
	"cmp"
	"slices"
)

// Rank is a single name/count pair of a ranked listing.
type Rank struct {
	Name  string
	Count int
}

// Tally counts occurrences per name and remembers the order in which names were first seen.
// The zero value is ready to use.
type Tally struct {
	counts map[string]int
	order  []string
}

// NewTally returns an empty Tally.
func NewTally() *Tally {
	return &Tally{counts: make(map[string]int)}
}

// Add increases the count of name by n.
func (t *Tally) Add(name string, n int) {
	if t.counts == nil {
		t.counts = make(map[string]int)
	}
	if _, ok := t.counts[name]; !ok {
		t.order = append(t.order, name)
	}
	t.counts[name] += n
}

// Inc increases the count of name by one.
func (t *Tally) Inc(name string) {
	t.Add(name, 1)
}

// Count returns the count of name, zero if it was never seen.
func (t *Tally) Count(name string) int {
	return t.counts[name]
}

// Has reports whether name was ever counted.
func (t *Tally) Has(name string) bool {
	_, ok := t.counts[name]
	return ok
}

// Len returns the number of distinct names.
func (t *Tally) Len() int {
	return len(t.order)
}

// Keys returns the names in first-seen order.
func (t *Tally) Keys() []string {
	return slices.Clone(t.order)
}

// Total returns the sum of all counts.
func (t *Tally) Total() int {
	total := 0
	for _, c := range t.counts {
		total += c
	}
	return total
}

// Map returns a copy of the counts.
func (t *Tally) Map() map[string]int {
	out := make(map[string]int, len(t.counts))
	for k, v := range t.counts {
		out[k] = v
	}
	return out
}

// MostCommon returns the n highest counts, highest first. Equal counts keep
// first-seen order. n <= 0 returns every name.
func (t *Tally) MostCommon(n int) []Rank {
	ranks := make([]Rank, 0, len(t.order))
	for _, name := range t.order {
		ranks = append(ranks, Rank{Name: name, Count: t.counts[name]})
	}
	slices.SortStableFunc(ranks, func(a, b Rank) int {
		return cmp.Compare(b.Count, a.Count)
	})
	if n > 0 && n < len(ranks) {
		ranks = ranks[:n]
	}
	return ranks
}

// CreditCounts holds the aggregated credit of a set of issues.
type CreditCounts struct {
	// Individuals counts credit entries per username.
	Individuals *Tally
	// Organizations counts attributions per organization title.
	Organizations *Tally
	// Members counts, per organization, the attributions of each individual.
	Members map[string]*Tally

	// Issues is the number of issues scanned.
	Issues int
	// CreditedIssues is the number of scanned issues carrying credit records.
	CreditedIssues int
}

// NewCreditCounts returns empty counts.
func NewCreditCounts() *CreditCounts {
	return &CreditCounts{
		Individuals:   NewTally(),
		Organizations: NewTally(),
		Members:       make(map[string]*Tally),
	}
}

// Member returns the individual tally of org, creating it on first use.
func (c *CreditCounts) Member(org string) *Tally {
	t, ok := c.Members[org]
	if !ok {
		t = NewTally()
		c.Members[org] = t
	}
	return t
}

// MembersOf returns the individual tally of org without creating one; an
// unknown org yields an empty tally.
func (c *CreditCounts) MembersOf(org string) *Tally {
	if t, ok := c.Members[org]; ok {
		return t
	}
	return NewTally()
}

// OrganizationsByName returns the credited organizations sorted alphabetically.
func (c *CreditCounts) OrganizationsByName() []string {
	orgs := c.Organizations.Keys()
	slices.Sort(orgs)
	return orgs
}

// Unaffiliated returns, in first-seen order, the individuals never attributed to an organization.
func (c *CreditCounts) Unaffiliated() []Rank {
	var out []Rank
	for _, name := range c.Individuals.Keys() {
		affiliated := false
		for _, members := range c.Members {
			if members.Has(name) {
				affiliated = true
				break
			}
		}
		if !affiliated {
			out = append(out, Rank{Name: name, Count: c.Individuals.Count(name)})
		}
	}
	return out
}
