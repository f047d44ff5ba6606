package transport

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dispatchware/fleetsync/pkg/errors"
)

type failingTokens struct{ err error }

func (f failingTokens) Token(_ context.Context) (string, error) {
	return "", f.err
}

func TestAuthenticators(t *testing.T) {
	newRequest := func() *http.Request {
		req, err := http.NewRequest(http.MethodGet, "https://example.test/", nil)
		require.NoError(t, err)
		return req
	}

	t.Run("bearer", func(t *testing.T) {
		req := newRequest()
		(&BearerAuth{}).Apply(req, "tok123")
		assert.Equal(t, "Bearer tok123", req.Header.Get("Authorization"))
	})

	t.Run("basic", func(t *testing.T) {
		req := newRequest()
		(&BasicAuth{}).Apply(req, "Zm9vOmJhcg==")
		assert.Equal(t, "Basic Zm9vOmJhcg==", req.Header.Get("Authorization"))
	})

	t.Run("none", func(t *testing.T) {
		req := newRequest()
		(&NoAuth{}).Apply(req, "ignored")
		assert.Empty(t, req.Header.Get("Authorization"))
	})
}

func TestClientAppliesToken(t *testing.T) {
	var gotAuth, gotAccept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAccept = r.Header.Get("Accept")
		fmt.Fprint(w, `{}`)
	}))
	defer server.Close()

	client := New("local", StaticToken("secret"))
	resp, err := client.Get(context.Background(), server.URL, nil)
	require.NoError(t, err)
	require.NoError(t, client.DecodeResponse(resp, nil))

	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, "application/json", gotAccept)
}

func TestClientTokenFailure(t *testing.T) {
	client := New("master", failingTokens{err: errors.ErrCredentialsInvalid})

	_, err := client.Get(context.Background(), "https://example.test/", nil)
	require.Error(t, err)

	var authErr *errors.AuthenticationError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "master", authErr.Environment)
	assert.ErrorIs(t, err, errors.ErrCredentialsInvalid)
}

func TestClientQueryParams(t *testing.T) {
	var gotQuery url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		fmt.Fprint(w, `{}`)
	}))
	defer server.Close()

	client := New("local", StaticToken("t"))
	params := url.Values{"limit": {"100"}, "cursor": {"abc"}}
	resp, err := client.Get(context.Background(), server.URL, params)
	require.NoError(t, err)
	require.NoError(t, client.DecodeResponse(resp, nil))

	assert.Equal(t, "100", gotQuery.Get("limit"))
	assert.Equal(t, "abc", gotQuery.Get("cursor"))
}

func TestDecodeResponseAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":"slow down"}`)
	}))
	defer server.Close()

	client := New("local", StaticToken("t"))
	resp, err := client.Get(context.Background(), server.URL+"/resources", nil)
	require.NoError(t, err)

	err = client.DecodeResponse(resp, &struct{}{})
	require.Error(t, err)

	var apiErr *errors.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	assert.Equal(t, "local", apiErr.Environment)
	assert.Equal(t, "/resources", apiErr.Endpoint)
	assert.ErrorIs(t, err, errors.ErrRateLimited)
}

func TestDecodeResponseInvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `not json`)
	}))
	defer server.Close()

	client := New("local", StaticToken("t"))
	resp, err := client.Get(context.Background(), server.URL, nil)
	require.NoError(t, err)

	var target map[string]any
	err = client.DecodeResponse(resp, &target)
	require.Error(t, err)

	var parseErr *errors.ParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestGetAllPages(t *testing.T) {
	var cursors []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cursor := r.URL.Query().Get("cursor")
		cursors = append(cursors, cursor)
		switch cursor {
		case "":
			fmt.Fprint(w, `{"items":[{"id":"1"},{"id":"2"}],"next_cursor":"p2"}`)
		case "p2":
			fmt.Fprint(w, `{"items":[{"id":"3"}],"next_cursor":""}`)
		default:
			t.Errorf("unexpected cursor %q", cursor)
		}
	}))
	defer server.Close()

	client := New("local", StaticToken("t"))
	items, err := client.GetAllPages(context.Background(), server.URL, url.Values{"limit": {"2"}})
	require.NoError(t, err)

	assert.Len(t, items, 3)
	assert.Equal(t, []string{"", "p2"}, cursors)
}

func TestGetAllPagesPropagatesError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("cursor") == "" {
			fmt.Fprint(w, `{"items":[{"id":"1"}],"next_cursor":"p2"}`)
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := New("local", StaticToken("t"))
	_, err := client.GetAllPages(context.Background(), server.URL, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrEnvironmentUnavailable)
}

func TestSendSetsContentType(t *testing.T) {
	var gotContentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		fmt.Fprint(w, `{}`)
	}))
	defer server.Close()

	client := New("local", StaticToken("t"))
	resp, err := client.Send(context.Background(), http.MethodPost, server.URL, nil)
	require.NoError(t, err)
	require.NoError(t, client.DecodeResponse(resp, nil))

	assert.Equal(t, "application/json", gotContentType)
}
