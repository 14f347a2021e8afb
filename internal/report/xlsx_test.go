package report

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

func TestWriteAuditXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.xlsx")
	require.NoError(t, WriteAuditXLSX(path, sampleAudit()))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, f.Sheets, 2)

	merges := f.Sheets[0]
	assert.Equal(t, "Merges", merges.Name)
	require.Len(t, merges.Rows, 2)
	assert.Equal(t, "Jane Doe", merges.Rows[1].Cells[0].String())
	assert.Equal(t, "2", merges.Rows[1].Cells[1].String())

	conflicts := f.Sheets[1]
	assert.Equal(t, "Conflicts", conflicts.Name)
	require.Len(t, conflicts.Rows, 2)
	assert.Equal(t, "NOTE", conflicts.Rows[1].Cells[1].String())
	assert.Equal(t, "college friend", conflicts.Rows[1].Cells[3].String())
}

func TestWriteAuditXLSX_EmptyAudit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.xlsx")
	require.NoError(t, WriteAuditXLSX(path, sampleAuditEmpty()))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, f.Sheets, 2)
	assert.Len(t, f.Sheets[0].Rows, 1) // header only
}
