package activity

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderAppendsAndReads(t *testing.T) {
	r, err := New(filepath.Join(t.TempDir(), "logs", "activity.log"))
	require.NoError(t, err)

	lines, err := r.ReadAll()
	require.NoError(t, err)
	assert.Empty(t, lines, "missing file reads as empty journal")

	require.NoError(t, r.Log("stock added: +1 units of Testbatterie at 'Karton A1'"))
	require.NoError(t, r.Log("booking: 2 units from 'Karton A1' to 'free'"))

	lines, err = r.ReadAll()
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "stock added")
	assert.Contains(t, lines[1], "booking")
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2} \| `, lines[0])
}

func TestRecorderClear(t *testing.T) {
	r, err := New(filepath.Join(t.TempDir(), "activity.log"))
	require.NoError(t, err)

	require.NoError(t, r.Clear(), "clearing a missing journal is fine")

	require.NoError(t, r.Log("stocktake: article Einzelrakete"))
	require.NoError(t, r.Clear())

	lines, err := r.ReadAll()
	require.NoError(t, err)
	assert.Empty(t, lines)
}
