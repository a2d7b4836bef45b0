package datagov

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/samarthdata/samarth/internal/table"
)

// Field describes one column of a published resource.
type Field struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// ResourcePage is one page of records from /resource/{id}.
type ResourcePage struct {
	Fields  []Field
	Records []map[string]any
	// Columns is the column order: field IDs when the platform provides
	// field descriptors, otherwise the key order of the first record.
	Columns []string
	Total   int
}

// ResourceData is the aggregated result of paginating a resource.
type ResourceData struct {
	Columns []string
	Records []map[string]any
}

// resourceResponse mirrors the platform's resource payload. limit/offset/total
// arrive as strings or numbers depending on the dataset, so numbers go through
// flexInt and records stay raw until key order is recovered.
type resourceResponse struct {
	Fields  []Field           `json:"field"`
	Records []json.RawMessage `json:"records"`
	Total   flexInt           `json:"total"`
	Count   flexInt           `json:"count"`
}

// flexInt decodes JSON numbers and numeric strings.
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' {
		var err error
		s, err = strconv.Unquote(s)
		if err != nil {
			return fmt.Errorf("unquoting number: %w", err)
		}
	}
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("parsing number %q: %w", s, err)
	}
	*f = flexInt(n)
	return nil
}

// FetchResource fetches one page of records for a resource.
// A missing or empty records array yields an empty page, not an error.
func (c *Client) FetchResource(ctx context.Context, resourceID string, limit, offset int) (*ResourcePage, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))

	var raw resourceResponse
	if err := c.getJSON(ctx, "/resource/"+url.PathEscape(resourceID), params, &raw); err != nil {
		return nil, fmt.Errorf("fetching resource %s: %w", resourceID, err)
	}

	page := &ResourcePage{
		Fields: raw.Fields,
		Total:  int(raw.Total),
	}
	for _, f := range raw.Fields {
		page.Columns = append(page.Columns, f.ID)
	}

	for i, rec := range raw.Records {
		m := map[string]any{}
		if err := json.Unmarshal(rec, &m); err != nil {
			return nil, fmt.Errorf("decoding record %d of resource %s: %w", i, resourceID, err)
		}
		page.Records = append(page.Records, m)

		if len(page.Columns) == 0 {
			order, err := table.KeyOrder(rec)
			if err != nil {
				return nil, fmt.Errorf("reading key order of resource %s: %w", resourceID, err)
			}
			page.Columns = order
		}
	}

	return page, nil
}

// FetchAllRecords paginates a resource until a short page or the page cap.
// The cap bounds memory on datasets with hundreds of thousands of rows; the
// interpretation pipeline samples rows anyway.
func (c *Client) FetchAllRecords(ctx context.Context, resourceID string) (*ResourceData, error) {
	data := &ResourceData{}

	for pageNum := range c.maxPages {
		offset := pageNum * c.pageLimit
		page, err := c.FetchResource(ctx, resourceID, c.pageLimit, offset)
		if err != nil {
			return nil, err
		}

		if len(data.Columns) == 0 {
			data.Columns = page.Columns
		}
		data.Records = append(data.Records, page.Records...)

		if len(page.Records) < c.pageLimit {
			break
		}
	}

	c.logger.Debug("fetched resource",
		"resource_id", resourceID,
		"records", len(data.Records),
		"columns", len(data.Columns))

	return data, nil
}

// FetchResourceRaw fetches a resource in an alternative representation.
// The platform serves csv and xml alongside json, and a few legacy datasets
// publish their tables as html pages.
func (c *Client) FetchResourceRaw(ctx context.Context, resourceID, format string) ([]byte, error) {
	params := url.Values{}

	body, err := c.getRaw(ctx, "/resource/"+url.PathEscape(resourceID), params, format)
	if err != nil {
		return nil, fmt.Errorf("fetching %s resource %s: %w", format, resourceID, err)
	}
	return body, nil
}
