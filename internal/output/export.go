package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pankaj-dahiya-devops/s3check/internal/models"
)

// Format selects the export encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// CSVHeader is the fixed header row of the CSV export.
var CSVHeader = []string{"Bucket Name", "Public Access Block", "Encryption", "Versioning"}

// WriteReport encodes report in format and writes it to path, replacing any
// existing file. The file is written to a temporary sibling and renamed into
// place, so path either keeps its previous content or holds the full report.
func WriteReport(path string, format Format, report *models.PostureReport) error {
	var encode func(io.Writer, *models.PostureReport) error
	switch format {
	case FormatCSV, "":
		encode = WriteCSV
	case FormatJSON:
		encode = WriteJSON
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file in %q: %w", dir, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op once renamed

	if err := encode(tmp, report); err != nil {
		tmp.Close()
		return fmt.Errorf("encode %s report: %w", format, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file %q: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod temp file %q: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("write report file %q: %w", path, err)
	}
	return nil
}

// WriteCSV writes the header row followed by one row per bucket, in report
// order.
func WriteCSV(w io.Writer, report *models.PostureReport) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, b := range report.Buckets {
		row := []string{
			b.Name,
			string(b.PublicAccessBlock),
			string(b.Encryption),
			string(b.Versioning),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes the full report as indented JSON.
func WriteJSON(w io.Writer, report *models.PostureReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
