package client

import (
	"context"
	"net/url"

	"github.com/turtacn/CaseLaw-Intelligence/pkg/errors"
	"github.com/turtacn/CaseLaw-Intelligence/pkg/types"
)

// ListCasesParams filters and pages the case listing.  Zero values are
// omitted and fall back to server defaults.
type ListCasesParams struct {
	Category string
	Statute  string
	Limit    int
	Offset   int
}

// GetCase fetches one archived case by id.
func (c *Client) GetCase(ctx context.Context, caseID string) (*types.Case, error) {
	if caseID == "" {
		return nil, errors.InvalidParam("case id must not be empty")
	}
	rec, _, err := getEnvelope[types.Case](ctx, c, "/api/v1/cases/"+pathEscape(caseID), nil)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListCases fetches a filtered page of archived cases along with the page
// metadata.
func (c *Client) ListCases(ctx context.Context, params ListCasesParams) ([]types.Case, *types.Page, error) {
	q := url.Values{}
	if params.Category != "" {
		q.Set("category", params.Category)
	}
	if params.Statute != "" {
		q.Set("statute", params.Statute)
	}
	setIntQuery(q, "limit", params.Limit)
	setIntQuery(q, "offset", params.Offset)

	return getEnvelope[[]types.Case](ctx, c, "/api/v1/cases", q)
}

// SearchCases runs a full-text query over the archived cases.
func (c *Client) SearchCases(ctx context.Context, query string, limit int) ([]types.SearchHit, error) {
	if query == "" {
		return nil, errors.InvalidParam("search query must not be empty")
	}
	q := url.Values{}
	q.Set("q", query)
	setIntQuery(q, "limit", limit)

	hits, _, err := getEnvelope[[]types.SearchHit](ctx, c, "/api/v1/cases/search", q)
	return hits, err
}
