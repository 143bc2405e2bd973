// Copyright (c) 2026 101 Teams
// SPDX-License-Identifier: GPL-3.0-or-later

// Package cms talks to the Strapi REST API that owns the site content.
package cms

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// Collection names a Strapi content type endpoint under /api.
type Collection string

// Collections served by the CMS.
const (
	Works      Collection = "works"
	Services   Collection = "services"
	Categories Collection = "categories"
	Clients    Collection = "clients"
	About      Collection = "about"
)

// AllCollections lists every collection the site reads.
var AllCollections = []Collection{Works, Services, Categories, Clients, About}

// CollectionForModel maps a webhook model name ("work", "api::work.work")
// to its collection.
func CollectionForModel(model string) (Collection, bool) {
	m := strings.ToLower(strings.TrimSpace(model))
	if i := strings.LastIndexByte(m, '.'); i >= 0 {
		m = m[i+1:]
	}
	switch m {
	case "work", "works":
		return Works, true
	case "service", "services":
		return Services, true
	case "category", "categories":
		return Categories, true
	case "client", "clients":
		return Clients, true
	case "about":
		return About, true
	}
	return "", false
}

// Fetcher returns the unwrapped data payload of a collection.
type Fetcher interface {
	Fetch(ctx context.Context, collection Collection, locale string) (json.RawMessage, error)
}

// StatusError is returned for non-2xx CMS responses.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("cms returned status %d: %s", e.Status, e.Body)
}

// IsNotFound reports whether err is a 404 from the CMS.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Status == http.StatusNotFound
}

// Client is a Strapi REST client.
type Client struct {
	origin     string
	apiKey     string
	httpClient *http.Client

	// UserAgent is sent on every request when set.
	UserAgent string
}

// NewClient creates a client for the CMS at origin. An empty apiKey sends
// no Authorization header.
func NewClient(origin, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		origin:     strings.TrimRight(origin, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Origin returns the CMS origin without a trailing slash. Media paths are
// resolved against it.
func (c *Client) Origin() string {
	return c.origin
}

// Fetch loads /api/{collection}?locale=X&populate=* and returns its "data".
func (c *Client) Fetch(ctx context.Context, collection Collection, locale string) (json.RawMessage, error) {
	q := url.Values{}
	if locale != "" {
		q.Set("locale", locale)
	}
	q.Set("populate", "*")
	endpoint := c.origin + "/api/" + string(collection) + "?" + q.Encode()

	resp, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", collection, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("fetch %s: %w", collection, &StatusError{Status: resp.StatusCode, Body: string(body)})
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode %s: %w", collection, err)
	}
	data := bytes.TrimSpace(envelope.Data)
	if len(data) == 0 {
		data = []byte("null")
	}
	return data, nil
}

// Ping checks that the CMS answers its health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.get(ctx, c.origin+"/_health")
	if err != nil {
		return fmt.Errorf("cms health: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= 400 {
		return &StatusError{Status: resp.StatusCode}
	}
	return nil
}

func (c *Client) get(ctx context.Context, endpoint string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	reqID := chimw.GetReqID(ctx)
	if reqID == "" {
		reqID = uuid.NewString()
	}
	req.Header.Set("X-Request-ID", reqID)
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	return c.httpClient.Do(req)
}
