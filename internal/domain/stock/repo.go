package stock

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repo is the Postgres ledger. One row per (article, location) key, NULL
// location for the free pool, uniqueness enforced NULLS NOT DISTINCT.
type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

var _ Ledger = (*Repo)(nil)

func (r *Repo) WithinTx(ctx context.Context, fn func(LedgerTx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return mapPgError(err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(&txLedger{tx: tx}); err != nil {
		return mapPgError(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return mapPgError(err)
	}
	return nil
}

func (r *Repo) Find(ctx context.Context, articleID int64, loc LocationRef) (*Entry, error) {
	return scanEntry(r.pool.QueryRow(ctx, `
		SELECT id, article_id, location_id, full_units, loose_pieces
		FROM stock_entries
		WHERE article_id = $1 AND location_id IS NOT DISTINCT FROM $2
	`, articleID, locParam(loc)))
}

func (r *Repo) ListDetailed(ctx context.Context) ([]DetailedEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT s.id, s.article_id, s.location_id, s.full_units, s.loose_pieces,
		       a.name, a.company, COALESCE(a.product_number,''), a.category,
		       a.nem, a.is_multi_part, a.pieces_per_unit,
		       COALESCE(l.name,'')
		FROM stock_entries s
		JOIN articles a ON a.id = s.article_id
		LEFT JOIN locations l ON l.id = s.location_id
		ORDER BY a.name, l.name NULLS FIRST
	`)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()

	var out []DetailedEntry
	for rows.Next() {
		var d DetailedEntry
		var locationID *int64
		if err := rows.Scan(
			&d.Entry.ID,
			&d.Entry.ArticleID,
			&locationID,
			&d.Entry.FullUnits,
			&d.Entry.LoosePieces,
			&d.Article.Name,
			&d.Article.Company,
			&d.Article.ProductNumber,
			&d.Article.Category,
			&d.Article.NEM,
			&d.Article.IsMultiPart,
			&d.Article.PiecesPerUnit,
			&d.LocationName,
		); err != nil {
			return nil, mapPgError(err)
		}
		d.Article.ID = d.Entry.ArticleID
		d.Entry.Location = FromID(locationID)
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, mapPgError(err)
	}
	return out, nil
}

type txLedger struct{ tx pgx.Tx }

func (t *txLedger) Get(ctx context.Context, articleID int64, loc LocationRef) (*Entry, error) {
	return scanEntry(t.tx.QueryRow(ctx, `
		SELECT id, article_id, location_id, full_units, loose_pieces
		FROM stock_entries
		WHERE article_id = $1 AND location_id IS NOT DISTINCT FROM $2
		FOR UPDATE
	`, articleID, locParam(loc)))
}

func (t *txLedger) Upsert(ctx context.Context, e Entry) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO stock_entries (article_id, location_id, full_units, loose_pieces)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (article_id, location_id)
		DO UPDATE SET full_units = EXCLUDED.full_units, loose_pieces = EXCLUDED.loose_pieces
	`, e.ArticleID, locParam(e.Location), e.FullUnits, e.LoosePieces)
	return err
}

func (t *txLedger) Delete(ctx context.Context, articleID int64, loc LocationRef) error {
	_, err := t.tx.Exec(ctx, `
		DELETE FROM stock_entries
		WHERE article_id = $1 AND location_id IS NOT DISTINCT FROM $2
	`, articleID, locParam(loc))
	return err
}

func scanEntry(row pgx.Row) (*Entry, error) {
	var e Entry
	var locationID *int64
	if err := row.Scan(&e.ID, &e.ArticleID, &locationID, &e.FullUnits, &e.LoosePieces); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapPgError(err)
	}
	e.Location = FromID(locationID)
	return &e, nil
}

func locParam(loc LocationRef) *int64 {
	if id, ok := loc.ID(); ok {
		return &id
	}
	return nil
}

// mapPgError classifies driver failures. Serialization and lock races are
// retryable; constraint violations mean the engine let a bad write through.
func mapPgError(err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err // already classified by the engine
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01", "55P03":
			return wrapError(KindConcurrency, err, "ledger transaction lost a race")
		case "23505", "23514", "23503":
			return wrapError(KindConstraint, err, "ledger constraint violated")
		}
	}
	return err
}
