package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// extractExcel renders each data row as "Header: value; Header: value" so a
// row stays meaningful once chunked. The first row of each sheet is the header.
func extractExcel(content []byte) (string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("open Excel: %w", err)
	}
	defer f.Close()

	var lines []string
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return "", fmt.Errorf("get rows for sheet %q: %w", sheet, err)
		}
		if len(rows) == 0 {
			continue
		}
		header := rows[0]
		for _, row := range rows[1:] {
			pairs := make([]string, 0, len(row))
			for i, cell := range row {
				cell = strings.TrimSpace(cell)
				if cell == "" {
					continue
				}
				if i < len(header) && strings.TrimSpace(header[i]) != "" {
					pairs = append(pairs, strings.TrimSpace(header[i])+": "+cell)
				} else {
					pairs = append(pairs, cell)
				}
			}
			if len(pairs) > 0 {
				lines = append(lines, strings.Join(pairs, "; "))
			}
		}
	}
	return strings.Join(lines, "\n"), nil
}
