package client

import (
	"context"
	"net/url"

	"github.com/turtacn/CaseLaw-Intelligence/pkg/errors"
	"github.com/turtacn/CaseLaw-Intelligence/pkg/types"
)

// RelatedStatutes lists statutes co-cited with ref, strongest first.
func (c *Client) RelatedStatutes(ctx context.Context, ref string, limit int) ([]types.RelatedStatute, error) {
	if ref == "" {
		return nil, errors.InvalidParam("statute reference must not be empty")
	}
	q := url.Values{}
	setIntQuery(q, "limit", limit)

	related, _, err := getEnvelope[[]types.RelatedStatute](ctx, c,
		"/api/v1/statutes/"+pathEscape(ref)+"/related", q)
	return related, err
}

// CasesCiting lists the ids of archived cases citing ref.
func (c *Client) CasesCiting(ctx context.Context, ref string, limit int) ([]string, error) {
	if ref == "" {
		return nil, errors.InvalidParam("statute reference must not be empty")
	}
	q := url.Values{}
	setIntQuery(q, "limit", limit)

	caseIDs, _, err := getEnvelope[[]string](ctx, c,
		"/api/v1/statutes/"+pathEscape(ref)+"/cases", q)
	return caseIDs, err
}
