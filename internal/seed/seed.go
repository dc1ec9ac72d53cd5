// Package seed loads reference data and demo accounts into a fresh database.
package seed

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

// IngredientStore is the part of the ingredient service the loader needs.
type IngredientStore interface {
	BulkCreate(ctx context.Context, items []models.Ingredient) (int, error)
}

// ReadIngredients parses a CSV file with a name,measurement_unit header.
func ReadIngredients(r io.Reader) ([]models.Ingredient, error) {
	rows, err := readCSV(r, "name", "measurement_unit")
	if err != nil {
		return nil, err
	}
	out := make([]models.Ingredient, 0, len(rows))
	for _, row := range rows {
		out = append(out, models.Ingredient{Name: row["name"], MeasurementUnit: row["measurement_unit"]})
	}
	return out, nil
}

// LoadIngredients reads r and inserts the ingredients that are not present
// yet. It returns the number of inserted rows.
func LoadIngredients(ctx context.Context, store IngredientStore, r io.Reader) (int, error) {
	items, err := ReadIngredients(r)
	if err != nil {
		return 0, err
	}
	return store.BulkCreate(ctx, items)
}

// ReadTags parses a CSV file with a name,color,slug header. The slug column
// may be empty.
func ReadTags(r io.Reader) ([]types.TagRequest, error) {
	rows, err := readCSV(r, "name", "color")
	if err != nil {
		return nil, err
	}
	out := make([]types.TagRequest, 0, len(rows))
	for _, row := range rows {
		out = append(out, types.TagRequest{Name: row["name"], Color: row["color"], Slug: row["slug"]})
	}
	return out, nil
}

// LoadTags creates the tags from r, skipping those whose slug is taken.
func LoadTags(ctx context.Context, tags service.ITagService, r io.Reader) (int, error) {
	reqs, err := ReadTags(r)
	if err != nil {
		return 0, err
	}

	created := 0
	for i := range reqs {
		_, err := tags.Create(ctx, &reqs[i])
		var fe types.FieldErrors
		switch {
		case err == nil:
			created++
		case errors.As(err, &fe) && len(fe["slug"]) > 0:
			slog.DebugContext(ctx, "tag exists, skipping", "name", reqs[i].Name)
		default:
			return created, fmt.Errorf("failed to create tag %q: %w", reqs[i].Name, err)
		}
	}
	return created, nil
}

// readCSV returns one map per data row keyed by the header. Every required
// column must be present in the header and non-empty in each row.
func readCSV(r io.Reader, required ...string) ([]map[string]string, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("csv file is empty")
		}
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}
	for i := range header {
		header[i] = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff")))
	}
	for _, col := range required {
		if !contains(header, col) {
			return nil, fmt.Errorf("csv header is missing column %q", col)
		}
	}

	var rows []map[string]string
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = strings.TrimSpace(record[i])
			}
		}
		for _, col := range required {
			if row[col] == "" {
				return nil, fmt.Errorf("line %d: empty %s", line, col)
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
