package hubspot

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/Atiwari330/hub-agent-sub001/pkg/config"
	"github.com/Atiwari330/hub-agent-sub001/pkg/httputil"
	"github.com/Atiwari330/hub-agent-sub001/pkg/logger"
)

// ErrUnauthorized is returned when HubSpot rejects the access token
var ErrUnauthorized = errors.New("hubspot: unauthorized")

const (
	defaultPageSize = 100
	// batch read accepts at most 100 inputs per call
	maxBatchInputs = 100
)

// Object types used by the ingest path
const (
	ObjectDeals    = "deals"
	ObjectCalls    = "calls"
	ObjectEmails   = "emails"
	ObjectMeetings = "meetings"
)

// Client handles communication with the HubSpot CRM API
// ⭐ SSOT: HubSpot API calls happen only in this client
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	pageSize   int
}

// NewClient creates a new HubSpot client. httpClient must already carry the
// bearer token and rate limiters.
func NewClient(cfg config.HubSpotConfig, httpClient *httputil.Client, log *logger.Logger) *Client {
	pageSize := cfg.PageSize
	if pageSize <= 0 || pageSize > defaultPageSize {
		pageSize = defaultPageSize
	}
	return &Client{
		httpClient: httpClient,
		logger:     log.Component("hubspot"),
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		pageSize:   pageSize,
	}
}

// ListDeals fetches every non-archived deal with the given properties,
// following the paging cursor until the last page
func (c *Client) ListDeals(ctx context.Context, properties []string) ([]Object, error) {
	var deals []Object
	after := ""

	for page := 1; ; page++ {
		q := url.Values{}
		q.Set("limit", strconv.Itoa(c.pageSize))
		q.Set("archived", "false")
		if len(properties) > 0 {
			q.Set("properties", strings.Join(properties, ","))
		}
		if after != "" {
			q.Set("after", after)
		}

		var resp ObjectPage
		if err := c.getJSON(ctx, "/crm/v3/objects/deals?"+q.Encode(), &resp); err != nil {
			return nil, fmt.Errorf("list deals page %d: %w", page, err)
		}
		deals = append(deals, resp.Results...)

		after = resp.NextAfter()
		if after == "" {
			break
		}
	}

	c.logger.WithField("count", len(deals)).Info("Fetched deals")
	return deals, nil
}

// Pipelines fetches the deal pipelines and their stages
func (c *Client) Pipelines(ctx context.Context) ([]Pipeline, error) {
	var resp pipelineList
	if err := c.getJSON(ctx, "/crm/v3/pipelines/deals", &resp); err != nil {
		return nil, fmt.Errorf("list pipelines: %w", err)
	}
	return resp.Results, nil
}

// AssociatedIDs lists the ids of toType objects associated with a deal
func (c *Client) AssociatedIDs(ctx context.Context, dealID, toType string) ([]string, error) {
	var ids []string
	after := ""

	for {
		path := fmt.Sprintf("/crm/v4/objects/deals/%s/associations/%s?limit=500",
			url.PathEscape(dealID), url.PathEscape(toType))
		if after != "" {
			path += "&after=" + url.QueryEscape(after)
		}

		var resp AssociationPage
		if err := c.getJSON(ctx, path, &resp); err != nil {
			return nil, fmt.Errorf("list %s associations of deal %s: %w", toType, dealID, err)
		}
		for _, r := range resp.Results {
			ids = append(ids, r.ToObjectID)
		}

		if resp.Paging == nil || resp.Paging.Next == nil || resp.Paging.Next.After == "" {
			break
		}
		after = resp.Paging.Next.After
	}

	return ids, nil
}

// BatchRead reads objects by id in chunks of at most 100
func (c *Client) BatchRead(ctx context.Context, objectType string, ids, properties []string) ([]Object, error) {
	var out []Object

	for start := 0; start < len(ids); start += maxBatchInputs {
		end := min(start+maxBatchInputs, len(ids))

		req := BatchReadRequest{Properties: properties, Inputs: make([]BatchInputID, 0, end-start)}
		for _, id := range ids[start:end] {
			req.Inputs = append(req.Inputs, BatchInputID{ID: id})
		}

		var resp BatchResult
		path := "/crm/v3/objects/" + url.PathEscape(objectType) + "/batch/read"
		if err := c.postJSON(ctx, path, req, &resp); err != nil {
			return nil, fmt.Errorf("batch read %s: %w", objectType, err)
		}
		out = append(out, resp.Results...)
	}

	return out, nil
}

// DealEngagements reads the calls, emails and meetings associated with a deal
func (c *Client) DealEngagements(ctx context.Context, dealID string) (DealEngagements, error) {
	var result DealEngagements

	targets := []struct {
		objectType string
		properties []string
		dest       *[]Object
	}{
		{ObjectCalls, CallProperties, &result.Calls},
		{ObjectEmails, EmailProperties, &result.Emails},
		{ObjectMeetings, MeetingProperties, &result.Meetings},
	}

	for _, t := range targets {
		ids, err := c.AssociatedIDs(ctx, dealID, t.objectType)
		if err != nil {
			return DealEngagements{}, err
		}
		if len(ids) == 0 {
			continue
		}
		objects, err := c.BatchRead(ctx, t.objectType, ids, t.properties)
		if err != nil {
			return DealEngagements{}, err
		}
		*t.dest = objects
	}

	return result, nil
}

func (c *Client) getJSON(ctx context.Context, path string, dest any) error {
	return mapError(c.httpClient.GetJSON(ctx, c.baseURL+path, dest))
}

func (c *Client) postJSON(ctx context.Context, path string, body, dest any) error {
	return mapError(c.httpClient.PostJSONDecode(ctx, c.baseURL+path, body, dest))
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	var statusErr *httputil.StatusError
	if errors.As(err, &statusErr) && (statusErr.StatusCode == http.StatusUnauthorized || statusErr.StatusCode == http.StatusForbidden) {
		return fmt.Errorf("%w: %s", ErrUnauthorized, statusErr.Body)
	}
	return err
}
