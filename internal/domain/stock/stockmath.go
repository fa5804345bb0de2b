package stock

import "github.com/feuerlager/feuerlager/internal/domain/catalog"

// Central piece/NEM arithmetic. Every mutation and every report goes through
// these functions; conversion math must not be reimplemented at call sites.

// PiecesPerUnit resolves how many pieces one full unit of the article holds.
// Articles that are not multi-part, or have no usable configured size, count
// one piece per unit.
func PiecesPerUnit(a *catalog.Article) int {
	if a != nil && a.IsMultiPart && a.PiecesPerUnit != nil && *a.PiecesPerUnit > 0 {
		return *a.PiecesPerUnit
	}
	return 1
}

// ToPieces flattens a (full units, loose pieces) pair into pieces.
func ToPieces(fullUnits, loosePieces, perUnit int) int {
	return fullUnits*perUnit + loosePieces
}

// Canonical splits a piece total into the unique (full units, loose pieces)
// pair with loosePieces < perUnit. Inputs are non-negative by construction.
func Canonical(totalPieces, perUnit int) (fullUnits, loosePieces int) {
	if perUnit < 1 {
		perUnit = 1
	}
	return totalPieces / perUnit, totalPieces % perUnit
}

// TotalPieces is the piece total of one ledger row.
func TotalPieces(e Entry, perUnit int) int {
	return ToPieces(e.FullUnits, e.LoosePieces, perUnit)
}

// MassPerPiece derives the NEM of a single piece. For plain articles NEM is
// defined per unit; for multi-part articles with a configured size it is the
// carton NEM spread over its pieces. ok is false when the article has no NEM.
func MassPerPiece(a *catalog.Article) (float64, bool) {
	if a == nil || a.NEM == nil {
		return 0, false
	}
	if a.IsMultiPart && a.PiecesPerUnit != nil && *a.PiecesPerUnit > 0 {
		return *a.NEM / float64(*a.PiecesPerUnit), true
	}
	return *a.NEM, true
}

// TotalMass is the NEM of one ledger row; ok is false when the article
// carries no NEM value.
func TotalMass(a *catalog.Article, e Entry) (float64, bool) {
	perPiece, ok := MassPerPiece(a)
	if !ok {
		return 0, false
	}
	return perPiece * float64(TotalPieces(e, PiecesPerUnit(a))), true
}
