package stock

import (
	"context"
	"sort"
)

// Totals is the rollup of a set of ledger rows. TotalNEM sums only rows
// whose article carries a NEM value.
type Totals struct {
	Positions   int
	TotalPieces int
	TotalNEM    float64
}

// LocationTotals is the rollup of one storage place (or the free pool).
type LocationTotals struct {
	Location     LocationRef
	LocationName string
	Totals
}

// EntryView is one ledger row prepared for display.
type EntryView struct {
	DetailedEntry
	TotalPieces int
	TotalNEM    *float64
}

func (t *Totals) accumulate(d DetailedEntry) {
	perUnit := PiecesPerUnit(&d.Article)
	t.Positions++
	t.TotalPieces += TotalPieces(d.Entry, perUnit)
	if nem, ok := TotalMass(&d.Article, d.Entry); ok {
		t.TotalNEM += nem
	}
}

// Entries lists all ledger rows with derived piece and NEM totals.
func (e *Engine) Entries(ctx context.Context) ([]EntryView, error) {
	detailed, err := e.ledger.ListDetailed(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]EntryView, 0, len(detailed))
	for _, d := range detailed {
		v := EntryView{
			DetailedEntry: d,
			TotalPieces:   TotalPieces(d.Entry, PiecesPerUnit(&d.Article)),
		}
		if nem, ok := TotalMass(&d.Article, d.Entry); ok {
			v.TotalNEM = &nem
		}
		out = append(out, v)
	}
	return out, nil
}

// Totals rolls up a single location (or the free pool).
func (e *Engine) Totals(ctx context.Context, loc LocationRef) (Totals, error) {
	var t Totals
	if err := e.checkLocation(ctx, loc); err != nil {
		return t, err
	}
	detailed, err := e.ledger.ListDetailed(ctx)
	if err != nil {
		return t, err
	}
	for _, d := range detailed {
		if d.Location.Equal(loc) {
			t.accumulate(d)
		}
	}
	return t, nil
}

// Overview rolls up every location that holds stock, named places sorted by
// name with the free pool last, plus the grand total across all of them.
func (e *Engine) Overview(ctx context.Context) ([]LocationTotals, Totals, error) {
	detailed, err := e.ledger.ListDetailed(ctx)
	if err != nil {
		return nil, Totals{}, err
	}

	byLoc := map[LocationRef]*LocationTotals{}
	for _, d := range detailed {
		row, ok := byLoc[d.Location]
		if !ok {
			row = &LocationTotals{Location: d.Location, LocationName: d.LocationName}
			byLoc[d.Location] = row
		}
		row.accumulate(d)
	}

	rows := make([]LocationTotals, 0, len(byLoc))
	var grand Totals
	for _, row := range byLoc {
		rows = append(rows, *row)
		grand.Positions += row.Positions
		grand.TotalPieces += row.TotalPieces
		grand.TotalNEM += row.TotalNEM
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Location.Assigned() != b.Location.Assigned() {
			return a.Location.Assigned() // free pool sorts last
		}
		if a.LocationName != b.LocationName {
			return a.LocationName < b.LocationName
		}
		return a.Location.Before(b.Location)
	})
	return rows, grand, nil
}
