// Package client is a small Go client for the formhive HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/formhive/formhive"
)

const defaultTimeout = 10 * time.Second

type Client struct {
	client  *http.Client
	cache   *cache.Cache
	baseURL string
	token   string
}

func New(baseURL string) *Client {
	httpClient := http.Client{
		Timeout: defaultTimeout,
	}

	return &Client{
		client:  &httpClient,
		cache:   cache.New(5*time.Minute, 10*time.Minute),
		baseURL: baseURL,
	}
}

// SetToken stores the bearer token used on subsequent requests.
func (c *Client) SetToken(token string) {
	c.token = token
}

type loginResponse struct {
	Token    string `json:"token"`
	UserID   uint   `json:"userId"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

// Login authenticates and stores the returned token on the client.
func (c *Client) Login(ctx context.Context, email, password string) error {
	body := map[string]string{"email": email, "password": password}

	var resp loginResponse
	err := c.request(ctx, http.MethodPost, "/api/auth/login", body, &resp)
	if err != nil {
		return err
	}

	c.token = resp.Token
	return nil
}

// GetStructure fetches the parsed structure of a form. Structures are cached
// briefly since they only change when the form is edited.
func (c *Client) GetStructure(ctx context.Context, formID uint) (*formhive.FormStructure, error) {
	key := fmt.Sprintf("structure:%d", formID)
	if cached, ok := c.cache.Get(key); ok {
		return cached.(*formhive.FormStructure), nil
	}

	var structure formhive.FormStructure
	path := fmt.Sprintf("/api/forms/%d/structure", formID)
	err := c.request(ctx, http.MethodGet, path, nil, &structure)
	if err != nil {
		return nil, err
	}

	c.cache.Set(key, &structure, cache.DefaultExpiration)
	return &structure, nil
}

// ListAvailable fetches one page of the caller's available forms.
func (c *Client) ListAvailable(ctx context.Context, page, size int, search string) (*formhive.AvailableFormsPage, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("size", strconv.Itoa(size))
	if search != "" {
		query.Set("search", search)
	}

	var result formhive.AvailableFormsPage
	err := c.request(ctx, http.MethodGet, "/api/forms/available?"+query.Encode(), nil, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Submit posts submission data to a form.
func (c *Client) Submit(ctx context.Context, formID uint, data map[string]any) (*formhive.SubmitResult, error) {
	body := map[string]any{"data": data}

	var result formhive.SubmitResult
	path := fmt.Sprintf("/api/forms/%d/submit", formID)
	err := c.request(ctx, http.MethodPost, path, body, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Report fetches aggregate rows for one field of a form.
func (c *Client) Report(ctx context.Context, formID uint, field, agg string, groupBy string) ([]formhive.ReportRow, error) {
	query := url.Values{}
	query.Set("field", field)
	query.Set("agg", agg)
	if groupBy != "" {
		query.Set("groupBy", groupBy)
	}

	var rows []formhive.ReportRow
	path := fmt.Sprintf("/api/forms/%d/report?%s", formID, query.Encode())
	err := c.request(ctx, http.MethodGet, path, nil, &rows)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *Client) request(ctx context.Context, method, path string, body, response any) error {
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to perform request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if response == nil {
		return nil
	}

	err = json.NewDecoder(resp.Body).Decode(response)
	if err != nil {
		return fmt.Errorf("failed to decode response: %v", err)
	}

	return nil
}
