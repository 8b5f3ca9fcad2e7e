package wprdc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const (
	// Endpoint is the CKAN datastore search action on data.wprdc.org.
	Endpoint = "https://data.wprdc.org/api/3/action/datastore_search"

	// ResourceID is the Allegheny County property assessments resource.
	ResourceID = "65855e14-549e-4992-b5be-d629afc676fa"
)

var (
	ErrSourceUnavailable = errors.New("property data source unavailable")
	ErrMalformedResponse = errors.New("malformed response from property data source")
)

// Page is one slice of the dataset.
type Page struct {
	Records []Record
	// Total is the dataset size reported by the source, 0 when not reported.
	Total int
}

type searchRequest struct {
	ResourceID string `json:"resource_id"`
	Limit      int    `json:"limit"`
	Offset     int    `json:"offset"`
}

type searchResponse struct {
	Success bool `json:"success"`
	Result  *struct {
		Records []Record     `json:"records"`
		Total   *json.Number `json:"total"`
	} `json:"result"`
	Error json.RawMessage `json:"error"`
}

// Client reads pages of property records from the WPRDC datastore.
type Client struct {
	http       *resty.Client
	endpoint   string
	resourceID string
	log        *zap.Logger
}

func NewClient(endpoint, resourceID string, timeout time.Duration, log *zap.Logger) *Client {
	if endpoint == "" {
		endpoint = Endpoint
	}
	if resourceID == "" {
		resourceID = ResourceID
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	rc := resty.New().
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{
		http:       rc,
		endpoint:   endpoint,
		resourceID: resourceID,
		log:        log.With(zap.String("source", "wprdc")),
	}
}

// FetchPage requests up to limit records starting at offset.
func (c *Client) FetchPage(ctx context.Context, offset, limit int) (Page, error) {
	start := time.Now()
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(searchRequest{ResourceID: c.resourceID, Limit: limit, Offset: offset}).
		Post(c.endpoint)
	if err != nil {
		c.log.Error("Source request failed", zap.Int("offset", offset), zap.Error(err))
		return Page{}, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}
	if resp.IsError() {
		c.log.Error("Source returned error status",
			zap.Int("offset", offset),
			zap.Int("status_code", resp.StatusCode()),
		)
		return Page{}, fmt.Errorf("%w: status %d", ErrSourceUnavailable, resp.StatusCode())
	}

	var body searchResponse
	dec := json.NewDecoder(bytes.NewReader(resp.Body()))
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil {
		return Page{}, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	if !body.Success {
		return Page{}, fmt.Errorf("%w: success=false %s", ErrMalformedResponse, string(body.Error))
	}
	if body.Result == nil {
		return Page{}, fmt.Errorf("%w: missing result", ErrMalformedResponse)
	}

	page := Page{Records: body.Result.Records}
	if body.Result.Total != nil {
		if n, err := body.Result.Total.Int64(); err == nil {
			page.Total = int(n)
		}
	}

	c.log.Debug("Fetched page",
		zap.Int("offset", offset),
		zap.Int("records", len(page.Records)),
		zap.Int("total", page.Total),
		zap.Duration("took", time.Since(start)),
	)
	return page, nil
}
