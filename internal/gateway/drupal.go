// Package gateway provides a gateway to the Drupal.org issue tracker API,
// abstracting away HTTP, retries and rate limiting.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/oauth2"

	"github.com/naka-gawa/drucred/internal/domain"
)

// ErrNoData is returned when a request produced no usable payload: a non-retryable
// status, or retries exhausted.
var ErrNoData = errors.New("no data")

// Fetcher defines the behavior of a gateway for fetching information from the tracker.
type Fetcher interface {
	FetchProject(ctx context.Context, nid int) (domain.Project, error)
	FetchIssueIDs(ctx context.Context, nid int) ([]domain.IssueID, error)
	FetchIssue(ctx context.Context, id domain.IssueID) ([]byte, error)
}

// Options configures a DrupalGateway.
type Options struct {
	BaseURL     string
	UserAgent   string
	Token       string // optional bearer token
	StatusFixed int
	PageLimit   int
	Retries     int
	BackoffStep time.Duration // 429 wait grows by this much per attempt
	ErrorDelay  time.Duration // wait after a transport error
	PageDelay   time.Duration // pause between list pages
}

// DrupalGateway is the concrete implementation of the Fetcher interface.
type DrupalGateway struct {
	httpClient *http.Client
	opts       Options
	logger     *slog.Logger
	sleep      SleepFunc
}

var _ Fetcher = (*DrupalGateway)(nil)

// NewDrupalGateway is a constructor that creates a new instance of DrupalGateway.
func NewDrupalGateway(opts Options, logger *slog.Logger) *DrupalGateway {
	httpClient := &http.Client{Timeout: 60 * time.Second}
	if opts.Token != "" {
		httpClient.Transport = &oauth2.Transport{
			Base:   http.DefaultTransport,
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token}),
		}
	}
	return &DrupalGateway{
		httpClient: httpClient,
		opts:       opts,
		logger:     logger,
		sleep:      Sleep,
	}
}

// Fetch GETs rawURL and returns the JSON body.
//
// A 429 waits (attempt+1)*BackoffStep before retrying, a transport error or an
// unparsable body waits ErrorDelay. Both share the Retries ceiling. Any other
// non-200 status fails at once. Failures wrap ErrNoData.
func (g *DrupalGateway) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	var wait time.Duration
	for attempt := range g.opts.Retries {
		if attempt > 0 {
			if err := g.sleep(ctx, wait); err != nil {
				return nil, err
			}
		}

		body, status, err := g.get(ctx, rawURL)
		switch {
		case err != nil:
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			g.logger.Warn("request error", "url", rawURL, "attempt", attempt+1, "error", err)
			wait = g.opts.ErrorDelay
		case status == http.StatusOK && json.Valid(body):
			return body, nil
		case status == http.StatusOK:
			g.logger.Warn("response is not valid JSON", "url", rawURL, "attempt", attempt+1)
			wait = g.opts.ErrorDelay
		case status == http.StatusTooManyRequests:
			wait = time.Duration(attempt+1) * g.opts.BackoffStep
			g.logger.Warn("rate limited", "url", rawURL, "attempt", attempt+1, "wait", wait)
		default:
			g.logger.Error("unexpected status", "url", rawURL, "status", status)
			return nil, fmt.Errorf("%w: status %d fetching %s", ErrNoData, status, rawURL)
		}
	}
	return nil, fmt.Errorf("%w: gave up on %s after %d attempts", ErrNoData, rawURL, g.opts.Retries)
}

func (g *DrupalGateway) get(ctx context.Context, rawURL string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if g.opts.UserAgent != "" {
		req.Header.Set("User-Agent", g.opts.UserAgent)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, resp.StatusCode, nil
}

// FetchProject resolves the title and machine name of a project. When the
// tracker cannot answer, placeholder values derived from nid are returned.
func (g *DrupalGateway) FetchProject(ctx context.Context, nid int) (domain.Project, error) {
	project := domain.Project{
		NID:   nid,
		Title: fmt.Sprintf("Project %d", nid),
		Slug:  fmt.Sprintf("project_%d", nid),
	}

	data, err := g.Fetch(ctx, g.nodeURL(strconv.Itoa(nid), nil))
	if err != nil {
		if errors.Is(err, ErrNoData) {
			g.logger.Warn("project metadata unavailable, using placeholders", "nid", nid, "error", err)
			return project, nil
		}
		return project, err
	}

	var node projectNode
	if err := json.Unmarshal(data, &node); err != nil {
		g.logger.Warn("project metadata malformed, using placeholders", "nid", nid, "error", err)
		return project, nil
	}
	if node.Title != "" {
		project.Title = node.Title
	}
	if node.MachineName != "" {
		project.Slug = node.MachineName
	}
	return project, nil
}

// FetchIssueIDs pages through the fixed issues of a project and returns their
// ids in listing order. Pagination stops at the first empty or failed page.
func (g *DrupalGateway) FetchIssueIDs(ctx context.Context, nid int) ([]domain.IssueID, error) {
	g.logger.Info("fetching issue ids", "nid", nid)
	var ids []domain.IssueID
	for page := 0; ; page++ {
		data, err := g.Fetch(ctx, g.issueListURL(nid, page))
		if err != nil {
			if errors.Is(err, ErrNoData) {
				g.logger.Warn("stopping pagination", "page", page, "error", err)
				break
			}
			return ids, err
		}

		items, err := decodeIssueList(data)
		if err != nil {
			g.logger.Warn("stopping pagination on malformed page", "page", page, "error", err)
			break
		}
		if len(items) == 0 {
			break
		}
		for _, raw := range items {
			var item listItem
			if err := json.Unmarshal(raw, &item); err != nil {
				g.logger.Warn("skipping malformed list item", "page", page, "error", err)
				continue
			}
			ids = append(ids, item.NID)
		}
		g.logger.Info("collected issue ids", "page", page, "total", len(ids))

		if err := g.sleep(ctx, g.opts.PageDelay); err != nil {
			return ids, err
		}
	}
	return ids, nil
}

// FetchIssue returns the raw payload of one issue with its credit records embedded.
func (g *DrupalGateway) FetchIssue(ctx context.Context, id domain.IssueID) ([]byte, error) {
	return g.Fetch(ctx, g.nodeURL(id.String(), url.Values{"drupalorg_extra_credit": {"1"}}))
}

func (g *DrupalGateway) nodeURL(nid string, query url.Values) string {
	u := g.opts.BaseURL + "/node/" + nid + ".json"
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func (g *DrupalGateway) issueListURL(nid, page int) string {
	query := url.Values{
		"type":               {"project_issue"},
		"field_project":      {strconv.Itoa(nid)},
		"field_issue_status": {strconv.Itoa(g.opts.StatusFixed)},
		"limit":              {strconv.Itoa(g.opts.PageLimit)},
		"page":               {strconv.Itoa(page)},
	}
	return g.opts.BaseURL + "/node.json?" + query.Encode()
}
