package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

type ArticleInput struct {
	Name          string
	Company       string
	ProductNumber string
	Category      string
	NEM           *float64
	IsMultiPart   bool
	PiecesPerUnit *int
	Notes         string
}

func (in *ArticleInput) validate() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Company = strings.TrimSpace(in.Company)
	if in.Name == "" {
		return fmt.Errorf("article name is required")
	}
	if in.Company == "" {
		return fmt.Errorf("article company is required")
	}
	if in.NEM != nil && *in.NEM < 0 {
		return fmt.Errorf("NEM must not be negative")
	}
	if in.IsMultiPart {
		if in.PiecesPerUnit == nil || *in.PiecesPerUnit < 1 {
			return fmt.Errorf("multi-part article needs pieces per unit >= 1")
		}
	} else {
		in.PiecesPerUnit = nil
	}
	return nil
}

const articleCols = `id, name, company, product_number, category, nem, is_multi_part, pieces_per_unit, notes, created_at`

func scanArticle(row pgx.Row) (*Article, error) {
	var a Article
	var productNumber, notes *string
	if err := row.Scan(
		&a.ID,
		&a.Name,
		&a.Company,
		&productNumber,
		&a.Category,
		&a.NEM,
		&a.IsMultiPart,
		&a.PiecesPerUnit,
		&notes,
		&a.CreatedAt,
	); err != nil {
		return nil, err
	}
	if productNumber != nil {
		a.ProductNumber = *productNumber
	}
	if notes != nil {
		a.Notes = *notes
	}
	return &a, nil
}

func (r *Repo) Create(ctx context.Context, in ArticleInput) (*Article, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO articles (name, company, product_number, category, nem, is_multi_part, pieces_per_unit, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING `+articleCols+`
	`, in.Name, in.Company, nullify(in.ProductNumber), in.Category, in.NEM, in.IsMultiPart, in.PiecesPerUnit, nullify(in.Notes))
	return scanArticle(row)
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*Article, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+articleCols+` FROM articles WHERE id = $1`, id)
	a, err := scanArticle(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return a, nil
}

func (r *Repo) Update(ctx context.Context, id int64, in ArticleInput) (*Article, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	row := r.pool.QueryRow(ctx, `
		UPDATE articles
		SET name=$2, company=$3, product_number=$4, category=$5, nem=$6, is_multi_part=$7, pieces_per_unit=$8, notes=$9
		WHERE id=$1
		RETURNING `+articleCols+`
	`, id, in.Name, in.Company, nullify(in.ProductNumber), in.Category, in.NEM, in.IsMultiPart, in.PiecesPerUnit, nullify(in.Notes))
	a, err := scanArticle(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return a, nil
}

// Delete removes the article; its stock entries go with it (FK cascade).
func (r *Repo) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM articles WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *Repo) List(ctx context.Context) ([]Article, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+articleCols+` FROM articles ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func nullify(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
