package jira

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/dt-pm-tools/ground-control/internal/config"
	"github.com/dt-pm-tools/ground-control/internal/ticket"
)

// searchPageSize is the page size used for paginated searches. Pagination
// is exhausted transparently; callers always get the full result set.
const searchPageSize = 50

const issueFields = "summary,status,issuetype,parent,labels,assignee,reporter,description,comment,updated"

// Client is a Jira REST API v3 client.
type Client struct {
	baseURL string
	resty   *resty.Client
}

// NewClient creates a new Jira client from the given config.
func NewClient(cfg config.Config) *Client {
	baseURL := strings.TrimRight(cfg.URL, "/")
	r := resty.New().
		SetBaseURL(baseURL).
		SetBasicAuth(cfg.Username, cfg.Token).
		SetHeader("Accept", "application/json")
	return &Client{baseURL: baseURL, resty: r}
}

// RestyClient exposes the underlying resty client so tests can swap in a
// mock transport.
func (c *Client) RestyClient() *resty.Client {
	return c.resty
}

// FetchTicket fetches a single ticket by key.
func (c *Client) FetchTicket(ctx context.Context, key string) (ticket.Ticket, error) {
	var is Issue
	resp, err := c.resty.R().
		SetContext(ctx).
		SetQueryParam("fields", issueFields).
		SetResult(&is).
		Get("/rest/api/3/issue/" + key)
	if err != nil {
		return ticket.Ticket{}, fmt.Errorf("%w: fetching %s: %v", ErrTransport, key, err)
	}
	if err := checkStatus(resp); err != nil {
		return ticket.Ticket{}, fmt.Errorf("fetching %s: %w", key, err)
	}
	return toTicket(is, c.baseURL)
}

// FetchProject returns every ticket in the project, excluding sub-tasks.
func (c *Client) FetchProject(ctx context.Context, projectKey string) ([]ticket.Ticket, error) {
	jql := fmt.Sprintf("project = %s AND type != Sub-task ORDER BY key ASC", projectKey)
	return c.search(ctx, jql)
}

// FetchChildren returns the direct children of the given ticket. Recursion
// over deeper descendants is the resolver's job.
func (c *Client) FetchChildren(ctx context.Context, key string) ([]ticket.Ticket, error) {
	jql := fmt.Sprintf("parent = %s ORDER BY key ASC", key)
	return c.search(ctx, jql)
}

// search runs a JQL query and pages through the full result set.
func (c *Client) search(ctx context.Context, jql string) ([]ticket.Ticket, error) {
	var out []ticket.Ticket
	startAt := 0
	for {
		var page SearchResponse
		resp, err := c.resty.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"jql":        jql,
				"startAt":    strconv.Itoa(startAt),
				"maxResults": strconv.Itoa(searchPageSize),
				"fields":     issueFields,
			}).
			SetResult(&page).
			Get("/rest/api/3/search")
		if err != nil {
			return nil, fmt.Errorf("%w: searching issues: %v", ErrTransport, err)
		}
		if err := checkStatus(resp); err != nil {
			return nil, fmt.Errorf("searching issues: %w", err)
		}

		for _, is := range page.Issues {
			t, err := toTicket(is, c.baseURL)
			if err != nil {
				return nil, err
			}
			out = append(out, t)
		}

		startAt += len(page.Issues)
		if len(page.Issues) == 0 || startAt >= page.Total {
			break
		}
	}
	return out, nil
}

// checkStatus maps HTTP failures onto the client's error taxonomy.
func checkStatus(resp *resty.Response) error {
	switch {
	case resp.IsSuccess():
		return nil
	case resp.StatusCode() == http.StatusUnauthorized || resp.StatusCode() == http.StatusForbidden:
		return fmt.Errorf("%w (HTTP %d)", ErrAuth, resp.StatusCode())
	case resp.StatusCode() == http.StatusNotFound:
		return ErrNotFound
	default:
		return fmt.Errorf("%w: Jira API returned %d: %s", ErrTransport, resp.StatusCode(), resp.String())
	}
}
