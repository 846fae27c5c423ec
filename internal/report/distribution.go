package report

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/montanaflynn/stats"

	"github.com/naka-gawa/drucred/internal/domain"
)

// Summary describes how credit is spread over the names of a tally.
type Summary struct {
	Names  int
	Total  int
	Mean   float64
	Median float64
	P90    float64
	Max    float64
}

// Summarize computes the credit distribution of t. An empty tally yields a zero Summary.
func Summarize(t *domain.Tally) (Summary, error) {
	ranks := t.MostCommon(0)
	if len(ranks) == 0 {
		return Summary{}, nil
	}

	data := make(stats.Float64Data, 0, len(ranks))
	for _, r := range ranks {
		data = append(data, float64(r.Count))
	}

	var errs []error
	s := Summary{Names: len(ranks), Total: t.Total()}
	var err error
	if s.Mean, err = stats.Mean(data); err != nil {
		errs = append(errs, fmt.Errorf("mean: %w", err))
	}
	if s.Median, err = stats.Median(data); err != nil {
		errs = append(errs, fmt.Errorf("median: %w", err))
	}
	if s.P90, err = stats.PercentileNearestRank(data, 90); err != nil {
		errs = append(errs, fmt.Errorf("percentile: %w", err))
	}
	if s.Max, err = stats.Max(data); err != nil {
		errs = append(errs, fmt.Errorf("max: %w", err))
	}
	return s, errors.Join(errs...)
}

type distributionRow struct {
	Metric        string
	Individuals   string
	Organizations string
}

func distributionRows(individuals, organizations Summary) []distributionRow {
	count := strconv.Itoa
	float := func(s Summary, v float64) string {
		if s.Names == 0 {
			return "-"
		}
		return fmt.Sprintf("%.1f", v)
	}
	return []distributionRow{
		{"Credited", count(individuals.Names), count(organizations.Names)},
		{"Total credits", count(individuals.Total), count(organizations.Total)},
		{"Mean credits", float(individuals, individuals.Mean), float(organizations, organizations.Mean)},
		{"Median credits", float(individuals, individuals.Median), float(organizations, organizations.Median)},
		{"90th percentile", float(individuals, individuals.P90), float(organizations, organizations.P90)},
		{"Max credits", float(individuals, individuals.Max), float(organizations, organizations.Max)},
	}
}
