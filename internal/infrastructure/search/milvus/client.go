package milvus

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/milvus-io/milvus-sdk-go/v2/client"

	"github.com/turtacn/CaseLaw-Intelligence/internal/config"
	"github.com/turtacn/CaseLaw-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/CaseLaw-Intelligence/pkg/errors"
)

// milvusNewClient is a variable so tests can substitute the dial.
var milvusNewClient = client.NewClient

const connectTimeout = 10 * time.Second

// Client wraps a Milvus connection for the dense vector backend.
type Client struct {
	cli       client.Client
	logger    logging.Logger
	closeOnce sync.Once
	closeErr  error
}

// NewClient dials Milvus at the configured address.
func NewClient(ctx context.Context, cfg config.MilvusConfig, log logging.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.Addr) == "" {
		return nil, errors.InvalidParam("milvus.addr must not be empty")
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	log = log.Named("milvus")

	dialCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	cli, err := milvusNewClient(dialCtx, client.Config{
		Address: cfg.Addr,
		DBName:  cfg.Database,
	})
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrCodeServiceUnavailable, "connect milvus at %s", cfg.Addr)
	}

	log.Info("milvus connected", logging.String("addr", cfg.Addr))
	return &Client{cli: cli, logger: log}, nil
}

// NewClientFromMilvus wraps an existing connection.
func NewClientFromMilvus(cli client.Client, log logging.Logger) *Client {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Client{cli: cli, logger: log.Named("milvus")}
}

// Milvus exposes the underlying connection.
func (c *Client) Milvus() client.Client {
	return c.cli
}

// Close shuts the connection down. Safe to call more than once.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.cli.Close()
	})
	return c.closeErr
}
