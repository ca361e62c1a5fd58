// Package manifest persists the per-file segment manifest CSV, the contract
// downstream filtering and transcription tools consume.
package manifest

import (
	"encoding/csv"
	"os"
	"strconv"

	"segmatic/internal/services"
)

// Header is the fixed manifest column set.
var Header = []string{"segment_folder", "segment_file", "start_sec", "end_sec", "duration_sec"}

// Row describes one emitted segment file.
type Row struct {
	SegmentFolder string
	SegmentFile   string
	Start         float64
	End           float64
	Duration      float64
}

// Filename returns the manifest name for a segment stem.
func Filename(segmentName string) string {
	return segmentName + "_all.csv"
}

// Write persists rows to path. The header row is always present, even for an
// empty manifest. Rows are written in the order given; callers pass them in
// ascending start order.
func Write(path string, rows []Row) error {
	file, err := os.Create(path)
	if err != nil {
		return services.Wrap(services.ErrIO, "manifest", "create", path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(Header); err != nil {
		return services.Wrap(services.ErrIO, "manifest", "write header", path, err)
	}
	for _, row := range rows {
		record := []string{
			row.SegmentFolder,
			row.SegmentFile,
			formatSeconds(row.Start),
			formatSeconds(row.End),
			formatSeconds(row.Duration),
		}
		if err := writer.Write(record); err != nil {
			return services.Wrap(services.ErrIO, "manifest", "write row", path, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return services.Wrap(services.ErrIO, "manifest", "flush", path, err)
	}
	return file.Close()
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
