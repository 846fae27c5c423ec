package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/naka-gawa/drucred/internal/domain"
	"github.com/naka-gawa/drucred/internal/gateway"
)

// progressEvery controls how often issue loading progress is logged.
const progressEvery = 10

// Auditor is the use case for auditing a project's issue credit.
// It orchestrates project resolution, cached fetching and aggregation.
type Auditor struct {
	fetcher gateway.Fetcher
	cache   *IssueCache
	logger  *slog.Logger
}

// NewAuditor creates a new Auditor instance.
func NewAuditor(fetcher gateway.Fetcher, cache *IssueCache, logger *slog.Logger) *Auditor {
	return &Auditor{
		fetcher: fetcher,
		cache:   cache,
		logger:  logger,
	}
}

// Project resolves the metadata of the project with node id nid.
func (a *Auditor) Project(ctx context.Context, nid int) (domain.Project, error) {
	project, err := a.fetcher.FetchProject(ctx, nid)
	if err != nil {
		return project, fmt.Errorf("failed to resolve project %d: %w", nid, err)
	}
	return project, nil
}

// Run loads every fixed issue of project in id order and aggregates its credit.
// Issues the tracker cannot deliver are skipped.
func (a *Auditor) Run(ctx context.Context, project domain.Project, refresh bool) (*domain.CreditCounts, error) {
	a.logger.Info("starting issue credit audit", "project", project.Title, "slug", project.Slug)

	ids, err := a.cache.LoadOrFetchIDs(ctx, project, refresh)
	if err != nil {
		return nil, err
	}
	a.logger.Info("total fixed issues found", "count", len(ids))

	issues := make([]*domain.Issue, 0, len(ids))
	for i, id := range ids {
		issue, err := a.cache.LoadOrFetchIssue(ctx, id, project)
		switch {
		case err == nil:
			issues = append(issues, issue)
		case errors.Is(err, gateway.ErrNoData):
			a.logger.Warn("skipping issue due to fetch error", "nid", id, "error", err)
		default:
			return nil, err
		}
		if i%progressEvery == 0 {
			a.logger.Info("processed issues", "done", i+1, "total", len(ids))
		}
	}
	a.logger.Info("loaded issues with credit info", "count", len(issues))

	return Aggregate(issues), nil
}
