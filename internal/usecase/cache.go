package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/naka-gawa/drucred/internal/domain"
	"github.com/naka-gawa/drucred/internal/gateway"
	"github.com/naka-gawa/drucred/internal/store"
)

// IDsKey is the store key of a project's issue id list.
func IDsKey(slug string) string {
	return "cache_" + slug
}

// IssueCache serves issue ids and payloads from the store, falling back to the
// tracker and persisting what it fetched.
type IssueCache struct {
	fetcher    gateway.Fetcher
	store      store.Store
	logger     *slog.Logger
	issueDelay time.Duration
	sleep      gateway.SleepFunc
}

// NewIssueCache creates a new IssueCache. issueDelay is the pause after every
// issue fetched from the tracker.
func NewIssueCache(fetcher gateway.Fetcher, st store.Store, logger *slog.Logger, issueDelay time.Duration) *IssueCache {
	return &IssueCache{
		fetcher:    fetcher,
		store:      st,
		logger:     logger,
		issueDelay: issueDelay,
		sleep:      gateway.Sleep,
	}
}

// LoadOrFetchIDs returns the cached id list of project unless refresh is set or
// the entry is missing or unreadable, in which case the ids are fetched and stored.
func (c *IssueCache) LoadOrFetchIDs(ctx context.Context, project domain.Project, refresh bool) ([]domain.IssueID, error) {
	key := IDsKey(project.Slug)

	if !refresh {
		data, err := c.store.Get(project.Slug, key)
		switch {
		case err == nil:
			var ids []domain.IssueID
			err := json.Unmarshal(data, &ids)
			if err == nil {
				c.logger.Info("loaded cached issue ids", "project", project.Slug, "count", len(ids))
				return ids, nil
			}
			c.logger.Warn("cached issue ids unreadable, refetching", "project", project.Slug, "error", err)
		case !errors.Is(err, store.ErrNotFound):
			return nil, fmt.Errorf("failed to read cached issue ids: %w", err)
		}
	}

	ids, err := c.fetcher.FetchIssueIDs(ctx, project.NID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch issue ids: %w", err)
	}

	data, err := json.MarshalIndent(ids, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode issue ids: %w", err)
	}
	if err := c.store.Put(project.Slug, key, data); err != nil {
		return nil, fmt.Errorf("failed to cache issue ids: %w", err)
	}
	return ids, nil
}

// LoadOrFetchIssue returns the issue from the store, or fetches it with its
// credit embedded, stores the raw payload and throttles. An issue the tracker
// cannot deliver yields an error wrapping gateway.ErrNoData.
func (c *IssueCache) LoadOrFetchIssue(ctx context.Context, id domain.IssueID, project domain.Project) (*domain.Issue, error) {
	key := id.String()

	data, err := c.store.Get(project.Slug, key)
	switch {
	case err == nil:
		issue, err := gateway.DecodeIssue(data)
		if err == nil {
			issue.ID = id
			return issue, nil
		}
		c.logger.Warn("cached issue unreadable, refetching", "nid", id, "error", err)
	case !errors.Is(err, store.ErrNotFound):
		return nil, fmt.Errorf("failed to read cached issue %s: %w", id, err)
	}

	data, err = c.fetcher.FetchIssue(ctx, id)
	if err != nil {
		return nil, err
	}
	issue, err := gateway.DecodeIssue(data)
	if err != nil {
		return nil, fmt.Errorf("%w: issue %s: %v", gateway.ErrNoData, id, err)
	}
	issue.ID = id

	if err := c.store.Put(project.Slug, key, data); err != nil {
		return nil, fmt.Errorf("failed to cache issue %s: %w", id, err)
	}
	if err := c.sleep(ctx, c.issueDelay); err != nil {
		return nil, err
	}
	return issue, nil
}
