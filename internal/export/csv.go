// Package export writes completed submissions as CSV or XLSX.
package export

import (
	"encoding/csv"
	"io"
	"time"

	"voxform/internal/domain"
)

// BOM is the UTF-8 byte order mark Excel on Windows needs to detect UTF-8.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// Columns is the header row shared by both formats.
var Columns = []string{
	"Submission ID",
	"Session ID",
	"Full Name",
	"Email Address",
	"Phone Number",
	"Address",
	"Provider",
	"Created At",
}

// CSVWriter wraps csv.Writer for exporting submissions.
type CSVWriter struct {
	csv *csv.Writer
}

// NewCSVWriter creates a CSVWriter that writes to w.
func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{csv: csv.NewWriter(w)}
}

func (w *CSVWriter) WriteHeader() error {
	return w.csv.Write(Columns)
}

// WriteSubmissions writes one row per submission.
func (w *CSVWriter) WriteSubmissions(subs []domain.Submission) error {
	for i := range subs {
		if err := w.csv.Write(Row(&subs[i])); err != nil {
			return err
		}
	}
	return nil
}

func (w *CSVWriter) Flush() {
	w.csv.Flush()
}

func (w *CSVWriter) Error() error {
	return w.csv.Error()
}

// Row converts a submission to a row matching Columns.
func Row(sub *domain.Submission) []string {
	return []string{
		sub.ID.String(),
		sub.SessionID,
		sub.Name,
		sub.Email,
		sub.Phone,
		sub.Address,
		sub.Provider,
		sub.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// WriteCSV writes the BOM, the header and every submission to w.
func WriteCSV(w io.Writer, subs []domain.Submission) error {
	if _, err := w.Write(BOM); err != nil {
		return err
	}
	cw := NewCSVWriter(w)
	if err := cw.WriteHeader(); err != nil {
		return err
	}
	if err := cw.WriteSubmissions(subs); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}
