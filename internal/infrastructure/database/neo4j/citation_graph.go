package neo4j

import (
	"context"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/turtacn/CaseLaw-Intelligence/internal/domain/legalcase"
	"github.com/turtacn/CaseLaw-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/CaseLaw-Intelligence/pkg/errors"
)

// RelatedStatute is one co-citation neighbor: a statute cited alongside the
// queried one, with the number of cases citing both.
type RelatedStatute struct {
	Ref         string `json:"ref"`
	SharedCases int64  `json:"shared_cases"`
}

// CitationGraph maintains (:Case)-[:CITES]->(:Statute) edges and answers
// co-citation queries over them.
type CitationGraph struct {
	driver *Driver
	logger logging.Logger
}

// NewCitationGraph builds the repository over an established driver.
func NewCitationGraph(driver *Driver, log logging.Logger) *CitationGraph {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &CitationGraph{driver: driver, logger: log.Named("citation_graph")}
}

const syncCaseCypher = `
MERGE (c:Case {id: $case_id})
SET c.no_perkara = $no_perkara,
    c.jenis_perkara = $jenis_perkara
WITH c
OPTIONAL MATCH (c)-[old:CITES]->(:Statute)
DELETE old
WITH DISTINCT c
UNWIND $refs AS ref
MERGE (s:Statute {ref: ref})
MERGE (c)-[:CITES]->(s)`

const syncCaseNoStatutesCypher = `
MERGE (c:Case {id: $case_id})
SET c.no_perkara = $no_perkara,
    c.jenis_perkara = $jenis_perkara
WITH c
OPTIONAL MATCH (c)-[old:CITES]->(:Statute)
DELETE old`

// SyncCase upserts the case node and rewrites its CITES edges from the
// record's statute field. Re-running on the same record is a no-op.
func (g *CitationGraph) SyncCase(ctx context.Context, rec legalcase.CaseRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	refs := legalcase.ParseStatuteField(rec.Pasal)
	params := map[string]any{
		"case_id":       rec.CaseID,
		"no_perkara":    rec.NoPerkara,
		"jenis_perkara": rec.JenisPerkara,
		"refs":          refs,
	}
	cypher := syncCaseCypher
	if len(refs) == 0 {
		cypher = syncCaseNoStatutesCypher
	}

	_, err := g.driver.ExecuteWrite(ctx, func(tx Transaction) (any, error) {
		res, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		for res.Next(ctx) {
		}
		return nil, res.Err()
	})
	if err != nil {
		return errors.Wrapf(err, errors.ErrCodeGraphQueryFailed, "sync case %s", rec.CaseID)
	}
	return nil
}

const relatedStatutesCypher = `
MATCH (s:Statute {ref: $ref})<-[:CITES]-(c:Case)-[:CITES]->(other:Statute)
WHERE other.ref <> $ref
RETURN other.ref AS ref, count(DISTINCT c) AS shared
ORDER BY shared DESC, ref ASC
LIMIT $limit`

// RelatedStatutes returns statutes co-cited with ref, most shared cases
// first.
func (g *CitationGraph) RelatedStatutes(ctx context.Context, ref string, limit int) ([]RelatedStatute, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, errors.InvalidParam("statute ref must not be empty")
	}
	if limit <= 0 {
		limit = 10
	}

	result, err := g.driver.ExecuteRead(ctx, func(tx Transaction) (any, error) {
		res, err := tx.Run(ctx, relatedStatutesCypher, map[string]any{"ref": ref, "limit": limit})
		if err != nil {
			return nil, err
		}
		return CollectRecords(ctx, res, func(record *neo4j.Record) (RelatedStatute, error) {
			return RelatedStatute{
				Ref:         recordString(record, "ref"),
				SharedCases: recordInt(record, "shared"),
			}, nil
		})
	})
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrCodeGraphQueryFailed, "related statutes for %s", ref)
	}

	related, _ := result.([]RelatedStatute)
	return related, nil
}

const casesCitingCypher = `
MATCH (c:Case)-[:CITES]->(s:Statute {ref: $ref})
RETURN c.id AS case_id
ORDER BY case_id ASC
LIMIT $limit`

// CasesCiting returns ids of cases citing the statute.
func (g *CitationGraph) CasesCiting(ctx context.Context, ref string, limit int) ([]string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, errors.InvalidParam("statute ref must not be empty")
	}
	if limit <= 0 {
		limit = 100
	}

	result, err := g.driver.ExecuteRead(ctx, func(tx Transaction) (any, error) {
		res, err := tx.Run(ctx, casesCitingCypher, map[string]any{"ref": ref, "limit": limit})
		if err != nil {
			return nil, err
		}
		return CollectRecords(ctx, res, func(record *neo4j.Record) (string, error) {
			return recordString(record, "case_id"), nil
		})
	})
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrCodeGraphQueryFailed, "cases citing %s", ref)
	}

	ids, _ := result.([]string)
	return ids, nil
}

func recordString(record *neo4j.Record, key string) string {
	if v, ok := record.Get(key); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func recordInt(record *neo4j.Record, key string) int64 {
	if v, ok := record.Get(key); ok {
		if n, ok := v.(int64); ok {
			return n
		}
	}
	return 0
}
