// Package airtable is a minimal client for the Airtable REST API, covering
// the record CRUD the sync pipelines need.
package airtable

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
)

const defaultBaseURL = "https://api.airtable.com/v0"

// Client performs record operations against one Airtable base.
type Client interface {
	ListRecords(ctx context.Context, table string, opts ListOptions) ([]Record, error)
	GetRecord(ctx context.Context, table, recordID string) (*Record, error)
	CreateRecords(ctx context.Context, table string, fields []map[string]any) ([]Record, error)
	UpdateRecord(ctx context.Context, table, recordID string, fields map[string]any) (*Record, error)
	DeleteRecord(ctx context.Context, table, recordID string) error
}

// Record is a single Airtable row.
type Record struct {
	ID          string         `json:"id"`
	Fields      map[string]any `json:"fields"`
	CreatedTime time.Time      `json:"createdTime"`
}

// ListOptions narrows a ListRecords call. An empty value lists everything,
// following pagination offsets to the end.
type ListOptions struct {
	// FilterByFormula is an Airtable formula, e.g. `{Status} = "New"`.
	FilterByFormula string
	// Fields limits which columns come back.
	Fields []string
	// MaxRecords caps the total across pages. 0 means no cap.
	MaxRecords int
	PageSize   int
}

// APIError is a non-2xx reply from Airtable.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("airtable: status %d: %s", e.StatusCode, e.Body)
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	apiKey  string
	baseID  string
	baseURL string
	http    *http.Client
}

// NewClient creates an Airtable client scoped to one base.
func NewClient(apiKey, baseID string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseID:  baseID,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type listResponse struct {
	Records []Record `json:"records"`
	Offset  string   `json:"offset"`
}

func (c *httpClient) ListRecords(ctx context.Context, table string, opts ListOptions) ([]Record, error) {
	var all []Record
	offset := ""

	for {
		q := url.Values{}
		if opts.FilterByFormula != "" {
			q.Set("filterByFormula", opts.FilterByFormula)
		}
		for _, f := range opts.Fields {
			q.Add("fields[]", f)
		}
		if opts.PageSize > 0 {
			q.Set("pageSize", strconv.Itoa(opts.PageSize))
		}
		if opts.MaxRecords > 0 {
			q.Set("maxRecords", strconv.Itoa(opts.MaxRecords))
		}
		if offset != "" {
			q.Set("offset", offset)
		}

		var page listResponse
		if err := c.do(ctx, http.MethodGet, c.tableURL(table)+"?"+q.Encode(), nil, &page); err != nil {
			return nil, err
		}
		all = append(all, page.Records...)

		if page.Offset == "" || (opts.MaxRecords > 0 && len(all) >= opts.MaxRecords) {
			break
		}
		offset = page.Offset
	}
	return all, nil
}

func (c *httpClient) GetRecord(ctx context.Context, table, recordID string) (*Record, error) {
	var rec Record
	if err := c.do(ctx, http.MethodGet, c.tableURL(table)+"/"+recordID, nil, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// CreateRecords inserts up to ten records per API call, batching as needed.
func (c *httpClient) CreateRecords(ctx context.Context, table string, fields []map[string]any) ([]Record, error) {
	var created []Record
	for start := 0; start < len(fields); start += 10 {
		end := min(start+10, len(fields))

		type wrapped struct {
			Fields map[string]any `json:"fields"`
		}
		payload := struct {
			Records []wrapped `json:"records"`
		}{}
		for _, f := range fields[start:end] {
			payload.Records = append(payload.Records, wrapped{Fields: f})
		}

		var resp listResponse
		if err := c.do(ctx, http.MethodPost, c.tableURL(table), payload, &resp); err != nil {
			return created, err
		}
		created = append(created, resp.Records...)
	}
	return created, nil
}

func (c *httpClient) UpdateRecord(ctx context.Context, table, recordID string, fields map[string]any) (*Record, error) {
	payload := struct {
		Fields map[string]any `json:"fields"`
	}{Fields: fields}

	var rec Record
	if err := c.do(ctx, http.MethodPatch, c.tableURL(table)+"/"+recordID, payload, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (c *httpClient) DeleteRecord(ctx context.Context, table, recordID string) error {
	return c.do(ctx, http.MethodDelete, c.tableURL(table)+"/"+recordID, nil, nil)
}

func (c *httpClient) tableURL(table string) string {
	return c.baseURL + "/" + c.baseID + "/" + url.PathEscape(table)
}

func (c *httpClient) do(ctx context.Context, method, reqURL string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return eris.Wrap(err, "airtable: marshal request")
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return eris.Wrap(err, "airtable: create request")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "airtable: send request")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "airtable: read response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return eris.Wrap(err, "airtable: unmarshal response")
		}
	}
	return nil
}
