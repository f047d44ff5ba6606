package transport

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	"github.com/dispatchware/fleetsync/pkg/errors"
	"github.com/dispatchware/fleetsync/pkg/logging"
)

// page is the envelope returned by paginated list endpoints.
type page struct {
	Items      []json.RawMessage `json:"items"`
	NextCursor string            `json:"next_cursor"`
}

// GetAllPages follows the cursor of a paginated list endpoint until
// exhausted and returns every raw item, in page order.
func (c *Client) GetAllPages(ctx context.Context, rawURL string, params url.Values) ([]json.RawMessage, error) {
	var items []json.RawMessage
	cursor := ""

	for {
		query := url.Values{}
		for key, values := range params {
			query[key] = values
		}
		if cursor != "" {
			query.Set("cursor", cursor)
		}

		resp, err := c.Get(ctx, rawURL, query)
		if err != nil {
			return nil, err
		}

		var p page
		if err := c.DecodeResponse(resp, &p); err != nil {
			return nil, err
		}

		items = append(items, p.Items...)
		cursor = p.NextCursor
		if cursor == "" {
			break
		}
	}

	return items, nil
}

// DecodeResponse decodes a JSON response into the target structure. Any
// non-2xx status is returned as a typed APIError carrying the environment
// and response body.
func (c *Client) DecodeResponse(resp *http.Response, target any) error {
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logging.Warn().Err(err).Msg("Failed to close response body")
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.WrapIO("read", "response body", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &errors.APIError{
			Environment: c.environment,
			StatusCode:  resp.StatusCode,
			Message:     string(body),
			Endpoint:    resp.Request.URL.Path,
		}
	}

	if target == nil || len(body) == 0 {
		return nil
	}

	if err := json.Unmarshal(body, target); err != nil {
		return errors.WrapParse("json", "response", err)
	}

	return nil
}
