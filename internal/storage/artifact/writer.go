package artifact

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/recensio/internal/common"
	"github.com/ternarybob/recensio/internal/models"
)

// utf8BOM is prepended to every artifact so downstream spreadsheet tooling
// detects the encoding.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Writer persists the deduplicated review set of a job as a CSV artifact
// under the configured data directory, one file per job id.
type Writer struct {
	dataDir string
	logger  arbor.ILogger
}

// NewWriter creates an artifact writer rooted at the configured data directory.
func NewWriter(config *common.StorageConfig, logger arbor.ILogger) *Writer {
	return &Writer{
		dataDir: config.DataDir,
		logger:  logger,
	}
}

// Path returns the artifact path for a job id.
func (w *Writer) Path(jobID string) string {
	return filepath.Join(w.dataDir, jobID+".csv")
}

// Write persists the records as {data_dir}/{job_id}.csv (UTF-8 with BOM) and
// returns the file path.
func (w *Writer) Write(jobID string, records []models.ReviewRecord) (string, error) {
	if err := os.MkdirAll(w.dataDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}

	path := w.Path(jobID)

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create artifact file: %w", err)
	}
	defer file.Close()

	if _, err := file.Write(utf8BOM); err != nil {
		return "", fmt.Errorf("failed to write BOM: %w", err)
	}

	cw := csv.NewWriter(file)
	if err := cw.Write(models.CSVHeader); err != nil {
		return "", fmt.Errorf("failed to write header: %w", err)
	}

	for _, record := range records {
		row := []string{
			record.Text,
			strconv.Itoa(record.Rating),
			record.Date,
			record.SourceUser,
			record.Platform,
			record.Brand,
		}
		if err := cw.Write(row); err != nil {
			return "", fmt.Errorf("failed to write row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return "", fmt.Errorf("failed to flush artifact: %w", err)
	}

	w.logger.Info().
		Str("job_id", jobID).
		Str("path", path).
		Int("rows", len(records)).
		Msg("Artifact written")

	return path, nil
}

// Remove deletes a job's artifact if it exists.
func (w *Writer) Remove(jobID string) error {
	err := os.Remove(w.Path(jobID))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove artifact: %w", err)
	}
	return nil
}
