package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/turtacn/CaseLaw-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/CaseLaw-Intelligence/pkg/errors"
)

// HTTPClientConfig tunes the embedding-service client.
type HTTPClientConfig struct {
	BaseURL   string
	Model     string
	BatchSize int
	Timeout   time.Duration
}

// HTTPClient calls an external embedding service: POST {base_url}/embed with
// a model name and a batch of texts, receiving one vector per text.  Large
// inputs are split into BatchSize chunks; a chunk either embeds completely or
// fails the whole call, so callers never see partially embedded batches.
type HTTPClient struct {
	cfg    HTTPClientConfig
	client *http.Client
	log    logging.Logger
}

// NewHTTPClient builds the client.  BatchSize defaults to 32 and Timeout to
// 30s when unset; BaseURL is required.
func NewHTTPClient(cfg HTTPClientConfig, log logging.Logger) (*HTTPClient, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.InvalidParam("embedding service base URL is required")
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 32
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &HTTPClient{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		log:    log.Named("embedding.http"),
	}, nil
}

type embedRequest struct {
	Model string   `json:"model"`
	Texts []string `json:"texts"`
}

type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// Embed maps texts to vectors through the service, preserving input order
// across batches.
func (c *HTTPClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += c.cfg.BatchSize {
		end := start + c.cfg.BatchSize
		if end > len(texts) {
			end = len(texts)
		}

		began := time.Now()
		batch, err := c.embedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		c.log.Debug("embedded batch",
			logging.Int("batch_size", end-start),
			logging.Duration("took", time.Since(began)))

		vectors = append(vectors, batch...)
	}
	return vectors, nil
}

func (c *HTTPClient) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	body, err := json.Marshal(embedRequest{Model: c.cfg.Model, Texts: texts})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode embedding request")
	}

	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/embed"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to build embedding request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeEmbeddingUnavailable, "embedding service unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, errors.Newf(errors.ErrCodeEmbeddingUnavailable,
			"embedding service returned status %d", resp.StatusCode).
			WithDetail(string(payload))
	}

	var decoded embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeEmbeddingBadResponse, "failed to decode embedding response")
	}

	if len(decoded.Embeddings) != len(texts) {
		return nil, errors.Newf(errors.ErrCodeEmbeddingBadResponse,
			"embedding service returned %d vectors for %d texts", len(decoded.Embeddings), len(texts))
	}
	for i, vec := range decoded.Embeddings {
		if len(vec) == 0 {
			return nil, errors.New(errors.ErrCodeEmbeddingBadResponse,
				fmt.Sprintf("embedding service returned an empty vector at index %d", i))
		}
		if len(vec) != len(decoded.Embeddings[0]) {
			return nil, errors.New(errors.ErrCodeEmbeddingDimension,
				"embedding service returned vectors of unequal length")
		}
	}
	return decoded.Embeddings, nil
}
