package milvus

import (
	"context"
	"strconv"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"github.com/turtacn/CaseLaw-Intelligence/internal/config"
	"github.com/turtacn/CaseLaw-Intelligence/internal/domain/retrieval"
	"github.com/turtacn/CaseLaw-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/CaseLaw-Intelligence/pkg/errors"
)

const (
	// DefaultCollection holds case embedding vectors.
	DefaultCollection = "caselaw_vectors"

	caseIDField = "case_id"
	vectorField = "vector"

	defaultHNSWM           = 16
	defaultEfConstruction  = 200
	defaultSearchEf        = 64
	collectionShards int32 = 1
)

// DenseIndex stores case embeddings in a Milvus collection and ranks them by
// cosine similarity. It implements the same build/search contract as the
// in-memory dense index and takes over when the corpus outgrows memory.
type DenseIndex struct {
	cli            client.Client
	collection     string
	hnswM          int
	efConstruction int
	logger         logging.Logger
}

// NewDenseIndex builds the adapter over an established client. Zero config
// values fall back to the collection and HNSW defaults.
func NewDenseIndex(c *Client, cfg config.MilvusConfig, log logging.Logger) *DenseIndex {
	return NewDenseIndexFromClient(c.Milvus(), cfg, log)
}

// NewDenseIndexFromClient wraps a raw connection, mainly for tests.
func NewDenseIndexFromClient(cli client.Client, cfg config.MilvusConfig, log logging.Logger) *DenseIndex {
	if log == nil {
		log = logging.NewNopLogger()
	}
	collection := cfg.Collection
	if collection == "" {
		collection = DefaultCollection
	}
	m := cfg.HNSWM
	if m <= 0 {
		m = defaultHNSWM
	}
	ef := cfg.HNSWEfConstruction
	if ef <= 0 {
		ef = defaultEfConstruction
	}
	return &DenseIndex{
		cli:            cli,
		collection:     collection,
		hnswM:          m,
		efConstruction: ef,
		logger:         log.Named("dense_index"),
	}
}

// Build replaces the collection contents with the given id/vector pairs.
// The previous collection is dropped so the index always reflects exactly
// one corpus snapshot.
func (d *DenseIndex) Build(ctx context.Context, ids []string, vectors [][]float32) error {
	if len(ids) != len(vectors) {
		return errors.InvalidParam("dense index requires one vector per case id")
	}
	if len(ids) == 0 {
		return errors.InvalidParam("dense index requires at least one vector")
	}
	dim := len(vectors[0])
	if dim == 0 {
		return errors.InvalidParam("dense index vectors must not be empty")
	}

	exists, err := d.cli.HasCollection(ctx, d.collection)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSearchFailed, "check vector collection")
	}
	if exists {
		if err := d.cli.DropCollection(ctx, d.collection); err != nil {
			return errors.Wrap(err, errors.ErrCodeSearchFailed, "drop vector collection")
		}
	}

	schema := &entity.Schema{
		CollectionName: d.collection,
		Description:    "case embedding vectors",
		Fields: []*entity.Field{
			{
				Name:       caseIDField,
				DataType:   entity.FieldTypeVarChar,
				PrimaryKey: true,
				TypeParams: map[string]string{entity.TypeParamMaxLength: "128"},
			},
			{
				Name:       vectorField,
				DataType:   entity.FieldTypeFloatVector,
				TypeParams: map[string]string{entity.TypeParamDim: strconv.Itoa(dim)},
			},
		},
	}
	if err := d.cli.CreateCollection(ctx, schema, collectionShards); err != nil {
		return errors.Wrap(err, errors.ErrCodeSearchFailed, "create vector collection")
	}

	idCol := entity.NewColumnVarChar(caseIDField, ids)
	vecCol := entity.NewColumnFloatVector(vectorField, dim, vectors)
	if _, err := d.cli.Insert(ctx, d.collection, "", idCol, vecCol); err != nil {
		return errors.Wrap(err, errors.ErrCodeSearchFailed, "insert case vectors")
	}

	idx, err := entity.NewIndexHNSW(entity.COSINE, d.hnswM, d.efConstruction)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSearchFailed, "build hnsw index config")
	}
	if err := d.cli.CreateIndex(ctx, d.collection, vectorField, idx, false); err != nil {
		return errors.Wrap(err, errors.ErrCodeSearchFailed, "create hnsw index")
	}
	if err := d.cli.LoadCollection(ctx, d.collection, false); err != nil {
		return errors.Wrap(err, errors.ErrCodeSearchFailed, "load vector collection")
	}

	d.logger.Info("dense index built",
		logging.String("collection", d.collection),
		logging.Int("cases", len(ids)),
		logging.Int("dim", dim))
	return nil
}

// Search returns the k cases most cosine-similar to the query vector,
// descending. Raw cosine scores come back; per-query normalization is the
// caller's concern.
func (d *DenseIndex) Search(ctx context.Context, vector []float32, k int) ([]retrieval.ScoredCase, error) {
	if len(vector) == 0 {
		return nil, errors.InvalidParam("dense search requires a query vector")
	}
	if k <= 0 {
		return nil, nil
	}

	sp, err := entity.NewIndexHNSWSearchParam(defaultSearchEf)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSearchFailed, "build hnsw search param")
	}

	results, err := d.cli.Search(ctx, d.collection, nil, "", []string{caseIDField},
		[]entity.Vector{entity.FloatVector(vector)}, vectorField, entity.COSINE, k, sp)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSearchFailed, "search case vectors")
	}

	var ranked []retrieval.ScoredCase
	for _, res := range results {
		for i := 0; i < res.ResultCount; i++ {
			id, err := res.IDs.GetAsString(i)
			if err != nil {
				return nil, errors.Wrap(err, errors.ErrCodeSerialization, "decode search result id")
			}
			ranked = append(ranked, retrieval.ScoredCase{CaseID: id, Score: float64(res.Scores[i])})
		}
	}
	return ranked, nil
}
