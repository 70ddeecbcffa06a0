package dataset

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/banshee-data/shsdataset/internal/fsutil"
)

// Delimiter separates output fields.
const Delimiter = ';'

// WriteCSV writes t with a header row and no index column. Null fields are
// written empty.
func WriteCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	cw.Comma = Delimiter

	if err := cw.Write(t.Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	record := make([]string, len(t.Header))
	for i, row := range t.Rows {
		for j, v := range row {
			record[j] = v.String
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportFile writes t to path. The file only appears once every row has
// been written.
func ExportFile(fsys fsutil.FileSystem, path string, t *Table) error {
	if err := fsutil.WriteAtomic(fsys, path, func(w io.Writer) error { return WriteCSV(w, t) }); err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}
	return nil
}
