package artifact

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/recensio/internal/common"
	"github.com/ternarybob/recensio/internal/models"
)

func newTestWriter(t *testing.T) *Writer {
	t.Helper()
	return NewWriter(&common.StorageConfig{DataDir: t.TempDir()}, common.GetLogger())
}

func TestWriter_WriteProducesBOMAndHeader(t *testing.T) {
	writer := newTestWriter(t)

	records := []models.ReviewRecord{
		{
			Text:       "Great app, \"love\" it",
			Rating:     5,
			Date:       "2026-08-01",
			SourceUser: "alex",
			Platform:   "Google Play (US)",
			Brand:      "Acme",
		},
		{
			Text:       "Multi\nline review",
			Rating:     2,
			Date:       "2026-08-02",
			SourceUser: "sam",
			Platform:   "App Store (SA)",
			Brand:      "Acme",
		},
	}

	path, err := writer.Write("job_1", records)
	require.NoError(t, err)
	assert.Equal(t, writer.Path("job_1"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}))

	rows, err := csv.NewReader(bytes.NewReader(data[3:])).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, models.CSVHeader, rows[0])
	assert.Equal(t, []string{"Great app, \"love\" it", "5", "2026-08-01", "alex", "Google Play (US)", "Acme"}, rows[1])
	assert.Equal(t, "Multi\nline review", rows[2][0])
}

func TestWriter_WriteEmptySetStillHasHeader(t *testing.T) {
	writer := newTestWriter(t)

	path, err := writer.Write("job_empty", nil)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	rows, err := csv.NewReader(bytes.NewReader(data[3:])).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, models.CSVHeader, rows[0])
}

func TestWriter_CreatesDataDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	writer := NewWriter(&common.StorageConfig{DataDir: dir}, common.GetLogger())

	_, err := writer.Write("job_1", nil)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "job_1.csv"))
	assert.NoError(t, err)
}

func TestWriter_Remove(t *testing.T) {
	writer := newTestWriter(t)

	_, err := writer.Write("job_1", nil)
	require.NoError(t, err)

	require.NoError(t, writer.Remove("job_1"))
	_, err = os.Stat(writer.Path("job_1"))
	assert.True(t, os.IsNotExist(err))

	// Removing a missing artifact is not an error.
	assert.NoError(t, writer.Remove("job_1"))
}
