// Package booths loads the polling booth dataset and renders booth records for display.
package booths

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/hyperjump/votesathi/internal/models"
	"github.com/hyperjump/votesathi/pkg/utils"
)

//go:embed data/booths.json
var defaultDataset []byte

// Dataset lazily loads booth records exactly once. After load the records are
// read-only and shared by all readers without locking.
type Dataset struct {
	path   string
	logger *zap.Logger

	once    sync.Once
	records []models.BoothRecord
	err     error
}

// NewDataset creates a dataset backed by path (.json or .xlsx). An empty path
// uses the embedded default dataset.
func NewDataset(path string, logger *zap.Logger) *Dataset {
	return &Dataset{path: path, logger: utils.OrNop(logger)}
}

// NewStaticDataset wraps already-loaded records.
func NewStaticDataset(records []models.BoothRecord) *Dataset {
	d := &Dataset{logger: zap.NewNop(), records: records}
	d.once.Do(func() {})
	return d
}

// Records returns all booth records, loading them on first call.
// Callers must not modify the returned slice.
func (d *Dataset) Records() ([]models.BoothRecord, error) {
	d.once.Do(func() {
		d.records, d.err = d.load()
		if d.err == nil {
			d.logger.Info("booth dataset loaded",
				zap.String("path", d.path),
				zap.Int("records", len(d.records)))
		}
	})
	return d.records, d.err
}

func (d *Dataset) load() ([]models.BoothRecord, error) {
	if d.path == "" {
		return ParseJSON(defaultDataset)
	}
	switch strings.ToLower(filepath.Ext(d.path)) {
	case ".xlsx":
		f, err := excelize.OpenFile(d.path)
		if err != nil {
			return nil, fmt.Errorf("failed to open booth workbook: %w", err)
		}
		defer f.Close()
		return parseWorkbook(f)
	default:
		data, err := os.ReadFile(d.path)
		if err != nil {
			return nil, fmt.Errorf("failed to read booth dataset: %w", err)
		}
		return ParseJSON(data)
	}
}

// ParseJSON decodes a JSON array of booth records.
func ParseJSON(data []byte) ([]models.BoothRecord, error) {
	var records []models.BoothRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse booth dataset: %w", err)
	}
	return records, nil
}

// parseWorkbook reads the first sheet. The header row names the columns using
// the JSON field names; tags are comma-separated.
func parseWorkbook(f *excelize.File) ([]models.BoothRecord, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("booth workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read booth sheet: %w", err)
	}
	if len(rows) == 0 {
		return []models.BoothRecord{}, nil
	}

	col := make(map[string]int)
	for i, h := range rows[0] {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	cell := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	records := make([]models.BoothRecord, 0, len(rows)-1)
	for n, row := range rows[1:] {
		if len(row) == 0 {
			continue
		}
		rec := models.BoothRecord{
			ID:               cell(row, "id"),
			Title:            cell(row, "title"),
			Content:          cell(row, "content"),
			ContentLocalized: cell(row, "content_localized"),
			Landmark:         cell(row, "landmark"),
			AreaLocalized:    cell(row, "area_localized"),
		}
		if rec.StationNumber, err = strconv.Atoi(cell(row, "station_number")); err != nil {
			return nil, fmt.Errorf("row %d: invalid station_number: %w", n+2, err)
		}
		if rec.Lat, err = strconv.ParseFloat(cell(row, "lat"), 64); err != nil {
			return nil, fmt.Errorf("row %d: invalid lat: %w", n+2, err)
		}
		if rec.Lng, err = strconv.ParseFloat(cell(row, "lng"), 64); err != nil {
			return nil, fmt.Errorf("row %d: invalid lng: %w", n+2, err)
		}
		for _, t := range strings.Split(cell(row, "tags"), ",") {
			if t = strings.TrimSpace(t); t != "" {
				rec.Tags = append(rec.Tags, t)
			}
		}
		if rec.ID == "" {
			rec.ID = fmt.Sprintf("bth-%03d", rec.StationNumber)
		}
		records = append(records, rec)
	}
	return records, nil
}
