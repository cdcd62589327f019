package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/M-ahmad144/Lymora-Backend/internal/domain"
	"github.com/shopspring/decimal"
)

type ProductWriter interface {
	Create(ctx context.Context, p domain.Product) (*domain.Product, error)
}

type CategoryStore interface {
	List(ctx context.Context) ([]domain.Category, error)
	Create(ctx context.Context, name string) (*domain.Category, error)
}

// CSVImporter loads a product catalog export into the store. Expected
// columns: name, brand, category, description, price, quantity,
// countInStock, image. Categories are created on first use.
type CSVImporter struct {
	reader     *csv.Reader
	products   ProductWriter
	categories CategoryStore
}

func NewCSVImporter(r io.Reader, products ProductWriter, categories CategoryStore) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1
	return &CSVImporter{
		reader:     csvr,
		products:   products,
		categories: categories,
	}
}

// Run parses CSV rows and creates products, resolving category names to ids.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)

	categoryIDs, err := i.loadCategories(ctx)
	if err != nil {
		return 0, err
	}

	imported := 0
	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}

		product, categoryName, err := parseRow(record, index)
		if err != nil {
			return imported, fmt.Errorf("row %d: %w", imported+2, err)
		}
		if product == nil {
			continue
		}

		if categoryName != "" {
			id, ok := categoryIDs[strings.ToLower(categoryName)]
			if !ok {
				created, err := i.categories.Create(ctx, categoryName)
				if err != nil {
					return imported, fmt.Errorf("create category %q: %w", categoryName, err)
				}
				id = created.ID
				categoryIDs[strings.ToLower(categoryName)] = id
			}
			product.CategoryID = id
		}

		if _, err := i.products.Create(ctx, *product); err != nil {
			return imported, fmt.Errorf("create product %q: %w", product.Name, err)
		}
		imported++
	}

	return imported, nil
}

func (i *CSVImporter) loadCategories(ctx context.Context) (map[string]string, error) {
	existing, err := i.categories.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	ids := make(map[string]string, len(existing))
	for _, c := range existing {
		ids[strings.ToLower(c.Name)] = c.ID
	}
	return ids, nil
}

func headerIndex(headers []string) map[string]int {
	index := make(map[string]int, len(headers))
	for i, h := range headers {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return index
}

func field(record []string, index map[string]int, name string) string {
	i, ok := index[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func parseRow(record []string, index map[string]int) (*domain.Product, string, error) {
	name := field(record, index, "name")
	if name == "" {
		return nil, "", nil
	}

	priceRaw := field(record, index, "price")
	price, err := decimal.NewFromString(priceRaw)
	if err != nil {
		return nil, "", fmt.Errorf("parse price %q: %w", priceRaw, err)
	}

	quantity, err := intField(record, index, "quantity")
	if err != nil {
		return nil, "", err
	}
	stock, err := intField(record, index, "countinstock")
	if err != nil {
		return nil, "", err
	}

	return &domain.Product{
		Name:         name,
		Brand:        field(record, index, "brand"),
		Description:  field(record, index, "description"),
		Price:        price,
		Quantity:     quantity,
		CountInStock: stock,
		Image:        field(record, index, "image"),
	}, field(record, index, "category"), nil
}

func intField(record []string, index map[string]int, name string) (int, error) {
	raw := field(record, index, name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s %q: %w", name, raw, err)
	}
	return v, nil
}
