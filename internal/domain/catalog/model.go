package catalog

import "time"

// Article is a product definition. NEM is the explosive mass in grams:
// per unit for plain articles, per carton for multi-part ones.
type Article struct {
	ID            int64
	Name          string
	Company       string
	ProductNumber string
	Category      string
	NEM           *float64
	IsMultiPart   bool
	PiecesPerUnit *int
	Notes         string
	CreatedAt     time.Time
}
