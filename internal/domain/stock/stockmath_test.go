package stock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feuerlager/feuerlager/internal/domain/catalog"
)

func intPtr(v int) *int { return &v }

func f64Ptr(v float64) *float64 { return &v }

func multiPartArticle(id int64, perUnit int, nem *float64) *catalog.Article {
	return &catalog.Article{
		ID:            id,
		Name:          "Testbatterie",
		Company:       "Pyrotest GmbH",
		IsMultiPart:   true,
		PiecesPerUnit: intPtr(perUnit),
		NEM:           nem,
	}
}

func plainArticle(id int64, nem *float64) *catalog.Article {
	return &catalog.Article{
		ID:      id,
		Name:    "Einzelrakete",
		Company: "Pyrotest GmbH",
		NEM:     nem,
	}
}

func TestPiecesPerUnit(t *testing.T) {
	tests := []struct {
		name    string
		article *catalog.Article
		want    int
	}{
		{"nil article", nil, 1},
		{"plain article", plainArticle(1, nil), 1},
		{"multi-part with size", multiPartArticle(1, 10, nil), 10},
		{"multi-part without size", &catalog.Article{IsMultiPart: true}, 1},
		{"multi-part with zero size", &catalog.Article{IsMultiPart: true, PiecesPerUnit: intPtr(0)}, 1},
		{"not multi-part but size set", &catalog.Article{PiecesPerUnit: intPtr(10)}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PiecesPerUnit(tt.article))
		})
	}
}

func TestCanonicalRoundTrip(t *testing.T) {
	for _, tt := range []struct {
		full, loose, perUnit int
	}{
		{0, 0, 1}, {5, 0, 1}, {2, 7, 10}, {0, 9, 10}, {3, 0, 10}, {100, 99, 100},
	} {
		pieces := ToPieces(tt.full, tt.loose, tt.perUnit)
		full, loose := Canonical(pieces, tt.perUnit)
		assert.Equal(t, tt.full, full)
		assert.Equal(t, tt.loose, loose)
		assert.Less(t, loose, max(tt.perUnit, 1))
	}
}

func TestCanonicalCarriesOverflow(t *testing.T) {
	// 2 units and 12 loose at 10/unit is not canonical; the overflow carries.
	pieces := ToPieces(2, 12, 10)
	full, loose := Canonical(pieces, 10)
	assert.Equal(t, 3, full)
	assert.Equal(t, 2, loose)

	// Applying it twice changes nothing.
	full2, loose2 := Canonical(ToPieces(full, loose, 10), 10)
	assert.Equal(t, full, full2)
	assert.Equal(t, loose, loose2)
}

func TestMassPerPiece(t *testing.T) {
	t.Run("absent without NEM", func(t *testing.T) {
		_, ok := MassPerPiece(plainArticle(1, nil))
		assert.False(t, ok)
	})

	t.Run("per unit for plain articles", func(t *testing.T) {
		m, ok := MassPerPiece(plainArticle(1, f64Ptr(25)))
		require.True(t, ok)
		assert.Equal(t, 25.0, m)
	})

	t.Run("spread over pieces for multi-part", func(t *testing.T) {
		m, ok := MassPerPiece(multiPartArticle(1, 10, f64Ptr(50)))
		require.True(t, ok)
		assert.Equal(t, 5.0, m)
	})
}

func TestTotalMass(t *testing.T) {
	a := multiPartArticle(1, 10, f64Ptr(50))
	e := Entry{ArticleID: 1, FullUnits: 2, LoosePieces: 3} // 23 pieces

	nem, ok := TotalMass(a, e)
	require.True(t, ok)
	assert.Equal(t, 115.0, nem)

	_, ok = TotalMass(multiPartArticle(1, 10, nil), e)
	assert.False(t, ok)
}

func TestLocationRefOrdering(t *testing.T) {
	free := Unassigned()
	l1, l2 := AtLocation(1), AtLocation(2)

	assert.True(t, free.Before(l1))
	assert.False(t, l1.Before(free))
	assert.True(t, l1.Before(l2))
	assert.True(t, free.Equal(Unassigned()))
	assert.False(t, free.Equal(l1))
	assert.Equal(t, "free", free.String())
	assert.Equal(t, "#2", l2.String())
}
