package locations

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrInUse is returned when a location still has stock entries on it.
var ErrInUse = errors.New("location still has stock entries")

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

func (r *Repo) Create(ctx context.Context, name, description string) (*Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("location name is required")
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO locations (name, description)
		VALUES ($1,$2)
		RETURNING id, name, COALESCE(description,''), created_at
	`, name, strings.TrimSpace(description))

	var l Location
	if err := row.Scan(&l.ID, &l.Name, &l.Description, &l.CreatedAt); err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*Location, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, COALESCE(description,''), created_at
		FROM locations WHERE id = $1
	`, id)
	var l Location
	if err := row.Scan(&l.ID, &l.Name, &l.Description, &l.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &l, nil
}

func (r *Repo) Exists(ctx context.Context, id int64) (bool, error) {
	var ok bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM locations WHERE id = $1)`, id).Scan(&ok)
	return ok, err
}

func (r *Repo) List(ctx context.Context) ([]Location, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, COALESCE(description,''), created_at
		FROM locations ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Location
	for rows.Next() {
		var l Location
		if err := rows.Scan(&l.ID, &l.Name, &l.Description, &l.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// Delete removes a location. Locations that still hold stock cannot be
// deleted; the caller has to move or clear the stock first.
func (r *Repo) Delete(ctx context.Context, id int64) (bool, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM stock_entries WHERE location_id = $1
	`, id).Scan(&n); err != nil {
		return false, err
	}
	if n > 0 {
		return false, ErrInUse
	}
	tag, err := r.pool.Exec(ctx, `DELETE FROM locations WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
