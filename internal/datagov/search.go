package datagov

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strconv"
)

// CatalogHit is one search result from the /lists catalog endpoint.
type CatalogHit struct {
	ResourceID  string
	Title       string
	Description string
	Publisher   string
	Source      string
}

// listsResponse mirrors the /lists payload. Depending on platform version the
// records array sits at the top level or nested under result.
type listsResponse struct {
	Records []listRecord `json:"records"`
	Result  struct {
		Records []listRecord `json:"records"`
	} `json:"result"`
}

type listRecord struct {
	IndexName  string          `json:"index_name"`
	ResourceID string          `json:"resource_id"`
	ID         string          `json:"id"`
	OrgID      string          `json:"org_id"`
	Title      string          `json:"title"`
	Desc       string          `json:"desc"`
	Org        json.RawMessage `json:"org"`
	Source     string          `json:"source"`
}

// resourceID resolves the record's resource identifier across the field names
// different platform versions use.
func (r listRecord) resourceID() string {
	for _, id := range []string{r.IndexName, r.ResourceID, r.ID, r.OrgID} {
		if id != "" {
			return id
		}
	}
	return ""
}

// publisher extracts the first organization name. The org field is usually an
// array of strings but occasionally a bare string.
func (r listRecord) publisher() string {
	if len(r.Org) == 0 {
		return ""
	}
	var list []string
	if err := json.Unmarshal(r.Org, &list); err == nil {
		if len(list) > 0 {
			return list[0]
		}
		return ""
	}
	var s string
	if err := json.Unmarshal(r.Org, &s); err == nil {
		return s
	}
	return ""
}

// SearchCatalog searches the platform catalog by dataset title.
// Search failures degrade to an empty result with a warning: discovery should
// never take down a question that could still be answered from the catalog.
func (c *Client) SearchCatalog(ctx context.Context, query string, maxResults int) ([]CatalogHit, error) {
	if maxResults <= 0 {
		maxResults = 10
	}

	params := url.Values{}
	params.Set("filters[title]", query)
	params.Set("limit", strconv.Itoa(maxResults))

	var raw listsResponse
	if err := c.getJSON(ctx, "/lists", params, &raw); err != nil {
		if errors.Is(err, ErrBadStatus) {
			c.logger.Warn("catalog search failed", "query", query, "error", err)
			return nil, nil
		}
		return nil, err
	}

	records := raw.Records
	if len(records) == 0 {
		records = raw.Result.Records
	}

	var hits []CatalogHit
	for _, rec := range records {
		id := rec.resourceID()
		if id == "" || rec.Title == "" {
			continue
		}
		hits = append(hits, CatalogHit{
			ResourceID:  id,
			Title:       rec.Title,
			Description: rec.Desc,
			Publisher:   rec.publisher(),
			Source:      rec.Source,
		})
	}

	c.logger.Debug("catalog search", "query", query, "hits", len(hits))
	return hits, nil
}
