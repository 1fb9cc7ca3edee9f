package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/turtacn/CaseLaw-Intelligence/internal/domain/legalcase"
	"github.com/turtacn/CaseLaw-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/CaseLaw-Intelligence/pkg/errors"
)

// CaseFilter narrows List results. Zero values mean no constraint.
type CaseFilter struct {
	Category string
	Statute  string
	Limit    int
	Offset   int
}

// CaseRepository persists the archive's mirror of the case base.
type CaseRepository struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// NewCaseRepository builds a repository on the pool.
func NewCaseRepository(pool *Pool, log logging.Logger) *CaseRepository {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &CaseRepository{pool: pool.Pool(), logger: log.Named("cases")}
}

const caseColumns = `case_id, file_name, file_size, text_length,
	no_perkara, tanggal, jenis_perkara, pasal, nama, umur, jenis_kelamin,
	pekerjaan, alamat, status_hukuman, ringkasan_fakta, processed_at`

// Upsert writes one case, replacing any previous row with the same id.
// The statutes column is derived from the pasal field so the GIN index
// serves statute filters.
func (r *CaseRepository) Upsert(ctx context.Context, rec legalcase.CaseRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	statutes := legalcase.ParseStatuteField(rec.Pasal)

	_, err := r.pool.Exec(ctx, `
		INSERT INTO cases (`+caseColumns+`, statutes, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,now())
		ON CONFLICT (case_id) DO UPDATE SET
			file_name = EXCLUDED.file_name,
			file_size = EXCLUDED.file_size,
			text_length = EXCLUDED.text_length,
			no_perkara = EXCLUDED.no_perkara,
			tanggal = EXCLUDED.tanggal,
			jenis_perkara = EXCLUDED.jenis_perkara,
			pasal = EXCLUDED.pasal,
			nama = EXCLUDED.nama,
			umur = EXCLUDED.umur,
			jenis_kelamin = EXCLUDED.jenis_kelamin,
			pekerjaan = EXCLUDED.pekerjaan,
			alamat = EXCLUDED.alamat,
			status_hukuman = EXCLUDED.status_hukuman,
			ringkasan_fakta = EXCLUDED.ringkasan_fakta,
			processed_at = EXCLUDED.processed_at,
			statutes = EXCLUDED.statutes,
			updated_at = now()`,
		rec.CaseID, rec.FileName, rec.FileSize, rec.TextLength,
		rec.NoPerkara, rec.Tanggal, rec.JenisPerkara, rec.Pasal, rec.Nama,
		rec.Umur, rec.JenisKelamin, rec.Pekerjaan, rec.Alamat,
		rec.StatusHukuman, rec.RingkasanFakta, rec.ProcessedAt, statutes,
	)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "upsert case")
	}
	r.logger.Debug("case upserted", logging.String("case_id", rec.CaseID))
	return nil
}

// GetByID loads one case.
func (r *CaseRepository) GetByID(ctx context.Context, caseID string) (*legalcase.CaseRecord, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+caseColumns+` FROM cases WHERE case_id = $1`, caseID)
	rec, err := scanCase(row)
	if err == pgx.ErrNoRows {
		return nil, errors.Newf(errors.ErrCodeCaseNotFound, "case %s not found", caseID)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "load case")
	}
	return rec, nil
}

// List returns a filtered page of cases and the total match count.
func (r *CaseRepository) List(ctx context.Context, filter CaseFilter) ([]legalcase.CaseRecord, int, error) {
	where, args := buildCaseFilter(filter)

	var total int
	countQuery := "SELECT count(*) FROM cases" + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "count cases")
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	query := fmt.Sprintf("SELECT %s FROM cases%s ORDER BY case_id LIMIT $%d OFFSET $%d",
		caseColumns, where, len(args)+1, len(args)+2)
	args = append(args, limit, filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "list cases")
	}
	defer rows.Close()

	var out []legalcase.CaseRecord
	for rows.Next() {
		rec, err := scanCase(rows)
		if err != nil {
			return nil, 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "scan case")
		}
		out = append(out, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "list cases")
	}
	return out, total, nil
}

// Count reports the number of archived cases.
func (r *CaseRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM cases`).Scan(&n); err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "count cases")
	}
	return n, nil
}

// buildCaseFilter renders the WHERE clause and its arguments.
func buildCaseFilter(filter CaseFilter) (string, []interface{}) {
	var clauses []string
	var args []interface{}

	if filter.Category != "" {
		args = append(args, filter.Category)
		clauses = append(clauses, fmt.Sprintf("jenis_perkara = $%d", len(args)))
	}
	if filter.Statute != "" {
		args = append(args, filter.Statute)
		clauses = append(clauses, fmt.Sprintf("$%d = ANY(statutes)", len(args)))
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func scanCase(row pgx.Row) (*legalcase.CaseRecord, error) {
	var rec legalcase.CaseRecord
	err := row.Scan(
		&rec.CaseID, &rec.FileName, &rec.FileSize, &rec.TextLength,
		&rec.NoPerkara, &rec.Tanggal, &rec.JenisPerkara, &rec.Pasal, &rec.Nama,
		&rec.Umur, &rec.JenisKelamin, &rec.Pekerjaan, &rec.Alamat,
		&rec.StatusHukuman, &rec.RingkasanFakta, &rec.ProcessedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
