package stock

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverviewRollsUpPerLocation(t *testing.T) {
	eng, ledger := newTestEngine()
	seed(t, ledger, multiID, AtLocation(locA), 2, 3) // 23 pieces, NEM 115
	seed(t, ledger, plainID, AtLocation(locA), 4, 0) // 4 pieces, NEM 50
	seed(t, ledger, multiID, Unassigned(), 1, 0)     // 10 pieces, NEM 50

	rows, grand, err := eng.Overview(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// Named places first, free pool last.
	assert.Equal(t, "Karton A1", rows[0].LocationName)
	assert.Equal(t, 2, rows[0].Positions)
	assert.Equal(t, 27, rows[0].TotalPieces)
	assert.InDelta(t, 165.0, rows[0].TotalNEM, 1e-9)

	assert.False(t, rows[1].Location.Assigned())
	assert.Equal(t, 1, rows[1].Positions)
	assert.Equal(t, 10, rows[1].TotalPieces)
	assert.InDelta(t, 50.0, rows[1].TotalNEM, 1e-9)

	assert.Equal(t, 3, grand.Positions)
	assert.Equal(t, 37, grand.TotalPieces)
	assert.InDelta(t, 215.0, grand.TotalNEM, 1e-9)
}

func TestTotalsForSingleLocation(t *testing.T) {
	eng, ledger := newTestEngine()
	seed(t, ledger, multiID, AtLocation(locA), 2, 3)
	seed(t, ledger, multiID, AtLocation(locB), 1, 0)

	got, err := eng.Totals(context.Background(), AtLocation(locA))
	require.NoError(t, err)
	assert.Equal(t, Totals{Positions: 1, TotalPieces: 23, TotalNEM: 115}, got)

	empty, err := eng.Totals(context.Background(), Unassigned())
	require.NoError(t, err)
	assert.Equal(t, Totals{}, empty)

	_, err = eng.Totals(context.Background(), AtLocation(99))
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestEntriesDeriveTotals(t *testing.T) {
	eng, ledger := newTestEngine()
	seed(t, ledger, multiID, AtLocation(locA), 2, 3)

	views, err := eng.Entries(context.Background())
	require.NoError(t, err)
	require.Len(t, views, 1)

	v := views[0]
	assert.Equal(t, 23, v.TotalPieces)
	require.NotNil(t, v.TotalNEM)
	assert.InDelta(t, 115.0, *v.TotalNEM, 1e-9)
	assert.Equal(t, "Karton A1", v.LocationName)
}
