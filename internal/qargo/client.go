// Package qargo implements the REST data-access client for one fleet API
// environment. One client serves either the master or the local side; the
// sync service composes two of them. List endpoints are cursor-paginated;
// all requests carry a bearer token supplied by the transport layer.
package qargo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/dispatchware/fleetsync/internal/transport"
	"github.com/dispatchware/fleetsync/pkg/constants"
	"github.com/dispatchware/fleetsync/pkg/errors"
	"github.com/dispatchware/fleetsync/pkg/fleet"
	"github.com/dispatchware/fleetsync/pkg/logging"
)

// DefaultBaseURL is the production fleet API base URL.
const DefaultBaseURL = "https://api.qargo.io/v1"

// Client is a REST client for one environment's fleet API. It implements
// the sync service's MasterSource and LocalStore interfaces.
type Client struct {
	transport   *transport.Client
	baseURL     string
	environment string
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// NewClient creates an API client for one environment.
func NewClient(environment string, tokens transport.TokenSource, opts ...Option) *Client {
	c := &Client{
		transport:   transport.New(environment, tokens),
		baseURL:     DefaultBaseURL,
		environment: environment,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListResources fetches the full resource set using cursor pagination.
func (c *Client) ListResources(ctx context.Context) ([]fleet.Resource, error) {
	ctx = logging.WithEnvironment(ctx, c.environment)

	params := url.Values{}
	params.Set("limit", strconv.Itoa(constants.DefaultPageLimit))

	items, err := c.transport.GetAllPages(ctx, c.baseURL+"/resources/resource", params)
	if err != nil {
		return nil, errors.WrapResource("list", "resource", c.environment, err)
	}

	resources := make([]fleet.Resource, 0, len(items))
	for _, raw := range items {
		var item resourceItem
		if err := json.Unmarshal(raw, &item); err != nil {
			return nil, errors.WrapParse("json", "resource", err)
		}
		resources = append(resources, item.toResource())
	}

	logging.Ctx(ctx).Debug().
		Int("count", len(resources)).
		Msg("Retrieved resources")

	return resources, nil
}

// ListUnavailabilities fetches a resource's unavailability records bounded
// to the given calendar year.
func (c *Client) ListUnavailabilities(ctx context.Context, resourceID string, year int) ([]fleet.Unavailability, error) {
	ctx = logging.WithEnvironment(ctx, c.environment)

	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)

	params := url.Values{}
	params.Set("limit", strconv.Itoa(constants.DefaultPageLimit))
	params.Set("start_time", start.Format(time.RFC3339))
	params.Set("end_time", end.Format(time.RFC3339))

	items, err := c.transport.GetAllPages(ctx, c.unavailabilityURL(resourceID), params)
	if err != nil {
		return nil, errors.WrapResource("list", "unavailability", resourceID, err)
	}

	records := make([]fleet.Unavailability, 0, len(items))
	for _, raw := range items {
		var item unavailabilityItem
		if err := json.Unmarshal(raw, &item); err != nil {
			return nil, errors.WrapParse("json", "unavailability", err)
		}
		records = append(records, item.toUnavailability(resourceID))
	}

	logging.Ctx(ctx).Debug().
		Str("resource_id", resourceID).
		Int("count", len(records)).
		Msg("Retrieved unavailabilities")

	return records, nil
}

// CreateUnavailability creates a record and returns it with the
// store-assigned ID.
func (c *Client) CreateUnavailability(ctx context.Context, u fleet.Unavailability) (fleet.Unavailability, error) {
	body, err := json.Marshal(toItem(u))
	if err != nil {
		return fleet.Unavailability{}, errors.WrapParse("json", "unavailability", err)
	}

	resp, err := c.transport.Send(ctx, "POST", c.unavailabilityURL(u.ResourceID), bytes.NewReader(body))
	if err != nil {
		return fleet.Unavailability{}, errors.WrapResource("create", "unavailability", u.ResourceID, err)
	}

	var created unavailabilityItem
	if err := c.transport.DecodeResponse(resp, &created); err != nil {
		return fleet.Unavailability{}, errors.WrapResource("create", "unavailability", u.ResourceID, err)
	}

	u.ID = created.ID
	return u, nil
}

// UpdateUnavailability overwrites an existing record's fields, preserving
// its ID.
func (c *Client) UpdateUnavailability(ctx context.Context, u fleet.Unavailability) (fleet.Unavailability, error) {
	if u.ID == "" {
		return fleet.Unavailability{}, errors.NewValidationError("id", u.ID, "cannot update unavailability without an ID")
	}

	body, err := json.Marshal(toItem(u))
	if err != nil {
		return fleet.Unavailability{}, errors.WrapParse("json", "unavailability", err)
	}

	target := fmt.Sprintf("%s/%s", c.unavailabilityURL(u.ResourceID), u.ID)
	resp, err := c.transport.Send(ctx, "PUT", target, bytes.NewReader(body))
	if err != nil {
		return fleet.Unavailability{}, errors.WrapResource("update", "unavailability", u.ID, err)
	}

	if err := c.transport.DecodeResponse(resp, nil); err != nil {
		return fleet.Unavailability{}, errors.WrapResource("update", "unavailability", u.ID, err)
	}

	return u, nil
}

// DeleteUnavailability removes a record from the store.
func (c *Client) DeleteUnavailability(ctx context.Context, resourceID, id string) error {
	target := fmt.Sprintf("%s/%s", c.unavailabilityURL(resourceID), id)
	resp, err := c.transport.Send(ctx, "DELETE", target, nil)
	if err != nil {
		return errors.WrapResource("delete", "unavailability", id, err)
	}

	if err := c.transport.DecodeResponse(resp, nil); err != nil {
		return errors.WrapResource("delete", "unavailability", id, err)
	}

	return nil
}

// unavailabilityURL builds the unavailability collection URL for a resource.
func (c *Client) unavailabilityURL(resourceID string) string {
	return fmt.Sprintf("%s/resources/resource/%s/unavailability", c.baseURL, resourceID)
}
