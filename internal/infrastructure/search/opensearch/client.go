// Package opensearch provides full-text search over archived cases.
package opensearch

import (
	"context"
	"crypto/tls"
	"net/http"

	opensearchgo "github.com/opensearch-project/opensearch-go/v2"
	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"

	"github.com/turtacn/CaseLaw-Intelligence/internal/config"
	"github.com/turtacn/CaseLaw-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/CaseLaw-Intelligence/pkg/errors"
)

// Client wraps the opensearch-go client.
type Client struct {
	client *opensearchgo.Client
	logger logging.Logger
}

// NewClient builds a client and verifies the cluster responds.
func NewClient(ctx context.Context, cfg config.OpenSearchConfig, log logging.Logger) (*Client, error) {
	if len(cfg.Addresses) == 0 {
		return nil, errors.InvalidParam("opensearch.addresses")
	}
	if log == nil {
		log = logging.NewNopLogger()
	}

	transport := &http.Transport{}
	if cfg.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	osClient, err := opensearchgo.NewClient(opensearchgo.Config{
		Addresses:     cfg.Addresses,
		Username:      cfg.User,
		Password:      cfg.Password,
		Transport:     transport,
		RetryOnStatus: []int{502, 503, 504, 429},
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSearchFailed, "create opensearch client")
	}

	c := &Client{client: osClient, logger: log.Named("opensearch")}
	if err := c.Ping(ctx); err != nil {
		return nil, err
	}

	log.Info("opensearch connected", logging.Strings("addresses", cfg.Addresses))
	return c, nil
}

// NewClientFromOpenSearch wraps an existing client. Used by tests.
func NewClientFromOpenSearch(osClient *opensearchgo.Client, log logging.Logger) *Client {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Client{client: osClient, logger: log.Named("opensearch")}
}

// Ping verifies the cluster is reachable.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := opensearchapi.PingRequest{}.Do(ctx, c.client)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeServiceUnavailable, "opensearch ping failed")
	}
	defer resp.Body.Close()
	if resp.IsError() {
		return errors.Newf(errors.ErrCodeServiceUnavailable, "opensearch ping returned %s", resp.Status())
	}
	return nil
}
