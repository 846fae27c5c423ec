package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/naka-gawa/drucred/internal/domain"
	"github.com/naka-gawa/drucred/internal/gateway"
	"github.com/naka-gawa/drucred/internal/logging"
	"github.com/naka-gawa/drucred/internal/store"
)

// mockFetcher is a mock implementation of the gateway.Fetcher interface.
// It allows us to simulate the tracker without making real API calls.
type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) FetchProject(ctx context.Context, nid int) (domain.Project, error) {
	args := m.Called(ctx, nid)
	return args.Get(0).(domain.Project), args.Error(1)
}

func (m *mockFetcher) FetchIssueIDs(ctx context.Context, nid int) ([]domain.IssueID, error) {
	args := m.Called(ctx, nid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.IssueID), args.Error(1)
}

func (m *mockFetcher) FetchIssue(ctx context.Context, id domain.IssueID) ([]byte, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

var testProject = domain.Project{NID: 3060, Title: "Drupal core", Slug: "drupal"}

// newTestCache returns an IssueCache over an in-memory store that records sleeps.
func newTestCache(fetcher gateway.Fetcher) (*IssueCache, *store.MemoryStore, *[]time.Duration) {
	st := store.NewMemoryStore()
	cache := NewIssueCache(fetcher, st, logging.Discard(), time.Second)
	var sleeps []time.Duration
	cache.sleep = func(ctx context.Context, d time.Duration) error {
		sleeps = append(sleeps, d)
		return nil
	}
	return cache, st, &sleeps
}

func TestIssueCache_LoadOrFetchIDs(t *testing.T) {
	testCases := []struct {
		name        string
		cached      string
		refresh     bool
		fetched     []domain.IssueID
		fetchErr    error
		expectFetch bool
		expected    []domain.IssueID
		expectError bool
	}{
		{
			name:        "cache miss fetches and stores",
			fetched:     []domain.IssueID{1, 2, 3},
			expectFetch: true,
			expected:    []domain.IssueID{1, 2, 3},
		},
		{
			name:     "cache hit skips the tracker",
			cached:   `[4, 5]`,
			expected: []domain.IssueID{4, 5},
		},
		{
			name:        "refresh bypasses the cache",
			cached:      `[4, 5]`,
			refresh:     true,
			fetched:     []domain.IssueID{6},
			expectFetch: true,
			expected:    []domain.IssueID{6},
		},
		{
			name:        "corrupt cache entry is refetched",
			cached:      `[4, `,
			fetched:     []domain.IssueID{7},
			expectFetch: true,
			expected:    []domain.IssueID{7},
		},
		{
			name:        "fetch error is returned",
			fetchErr:    context.Canceled,
			expectFetch: true,
			expectError: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fetcher := new(mockFetcher)
			if tc.expectFetch {
				fetcher.On("FetchIssueIDs", mock.Anything, testProject.NID).Return(tc.fetched, tc.fetchErr)
			}
			cache, st, _ := newTestCache(fetcher)
			if tc.cached != "" {
				require.NoError(t, st.Put(testProject.Slug, IDsKey(testProject.Slug), []byte(tc.cached)))
			}

			ids, err := cache.LoadOrFetchIDs(context.Background(), testProject, tc.refresh)

			if tc.expectError {
				assert.Error(t, err)
				assert.Nil(t, ids)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tc.expected, ids)

				stored, err := st.Get(testProject.Slug, "cache_drupal")
				require.NoError(t, err)
				if tc.expectFetch {
					assert.JSONEq(t, mustJSON(t, tc.expected), string(stored))
				}
			}
			fetcher.AssertExpectations(t)
		})
	}
}

func TestIssueCache_LoadOrFetchIssue(t *testing.T) {
	payload := []byte(`{"nid": "11", "field_issue_credit": [{"data": {"username": "alice", "field_attribute_contribution_to": [{"title": "Acme"}]}}]}`)
	expected := &domain.Issue{ID: 11, Credits: []domain.CreditEntry{{Username: "alice", Organizations: []string{"Acme"}}}}

	t.Run("cache miss fetches, stores and throttles", func(t *testing.T) {
		fetcher := new(mockFetcher)
		fetcher.On("FetchIssue", mock.Anything, domain.IssueID(11)).Return(payload, nil).Once()
		cache, st, sleeps := newTestCache(fetcher)

		got, err := cache.LoadOrFetchIssue(context.Background(), 11, testProject)

		require.NoError(t, err)
		assert.Equal(t, expected, got)
		stored, err := st.Get(testProject.Slug, "11")
		require.NoError(t, err)
		assert.Equal(t, payload, stored)
		assert.Equal(t, []time.Duration{time.Second}, *sleeps)
		fetcher.AssertExpectations(t)
	})

	t.Run("cache hit skips the tracker and the throttle", func(t *testing.T) {
		fetcher := new(mockFetcher)
		cache, st, sleeps := newTestCache(fetcher)
		require.NoError(t, st.Put(testProject.Slug, "11", payload))

		got, err := cache.LoadOrFetchIssue(context.Background(), 11, testProject)

		require.NoError(t, err)
		assert.Equal(t, expected, got)
		assert.Empty(t, *sleeps)
		fetcher.AssertNotCalled(t, "FetchIssue", mock.Anything, mock.Anything)
	})

	t.Run("fetch failure is reported as no data and nothing is stored", func(t *testing.T) {
		fetcher := new(mockFetcher)
		fetcher.On("FetchIssue", mock.Anything, domain.IssueID(12)).
			Return(nil, fmt.Errorf("%w: status 403", gateway.ErrNoData))
		cache, st, sleeps := newTestCache(fetcher)

		got, err := cache.LoadOrFetchIssue(context.Background(), 12, testProject)

		assert.Nil(t, got)
		assert.True(t, errors.Is(err, gateway.ErrNoData))
		assert.Equal(t, 0, st.Len(testProject.Slug))
		assert.Empty(t, *sleeps)
	})

	t.Run("undecodable payload is reported as no data", func(t *testing.T) {
		fetcher := new(mockFetcher)
		fetcher.On("FetchIssue", mock.Anything, domain.IssueID(13)).Return([]byte(`[1]`), nil)
		cache, st, _ := newTestCache(fetcher)

		_, err := cache.LoadOrFetchIssue(context.Background(), 13, testProject)

		assert.True(t, errors.Is(err, gateway.ErrNoData))
		assert.Equal(t, 0, st.Len(testProject.Slug))
	})

	t.Run("corrupt cached payload is refetched", func(t *testing.T) {
		fetcher := new(mockFetcher)
		fetcher.On("FetchIssue", mock.Anything, domain.IssueID(11)).Return(payload, nil).Once()
		cache, st, _ := newTestCache(fetcher)
		require.NoError(t, st.Put(testProject.Slug, "11", []byte(`{"nid": `)))

		got, err := cache.LoadOrFetchIssue(context.Background(), 11, testProject)

		require.NoError(t, err)
		assert.Equal(t, expected, got)
		stored, err := st.Get(testProject.Slug, "11")
		require.NoError(t, err)
		assert.Equal(t, payload, stored)
		fetcher.AssertExpectations(t)
	})
}
