package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fooddelivery/internal/domain"
)

type MenuWriter interface {
	Upsert(ctx context.Context, item domain.MenuItem) (*domain.MenuItem, error)
}

type RestaurantLookup interface {
	GetByKey(ctx context.Context, key string) (*domain.Restaurant, error)
}

// CSVImporter reads menu exports and inserts/updates menu items.
//
// A row with a key starts a new item. Rows without a key continue the current
// item and may add an image, a size or a topping.
type CSVImporter struct {
	reader      *csv.Reader
	menu        MenuWriter
	restaurants RestaurantLookup
	resolved    map[string]string
}

func NewCSVImporter(r io.Reader, menu MenuWriter, restaurants RestaurantLookup) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	return &CSVImporter{
		reader:      csvr,
		menu:        menu,
		restaurants: restaurants,
		resolved:    make(map[string]string),
	}
}

type csvRow struct {
	ID            string
	RestaurantKey string
	Key           string
	Name          string
	Desc          string
	Category      string
	BasePrice     string
	Available     string
	Popular       string
	ImageURL      string
	SizeName      string
	SizeModifier  string
	ToppingName   string
	ToppingPrice  string
}

// Run parses CSV rows and upserts menu items grouped by item key.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)

	var (
		current  *domain.MenuItem
		restKey  string
		imported int
	)

	for line := 2; ; line++ {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}

		row := parseRow(record, index)
		if row == nil {
			continue
		}

		if row.Key != "" {
			if current != nil {
				if err := i.save(ctx, restKey, current); err != nil {
					return imported, err
				}
				imported++
			}
			current, err = newItem(row)
			if err != nil {
				return imported, fmt.Errorf("line %d: %w", line, err)
			}
			restKey = row.RestaurantKey
		} else if current == nil {
			return imported, fmt.Errorf("line %d: continuation row before any item", line)
		}

		if err := addOptions(current, row); err != nil {
			return imported, fmt.Errorf("line %d: %w", line, err)
		}
	}

	if current != nil {
		if err := i.save(ctx, restKey, current); err != nil {
			return imported, err
		}
		imported++
	}

	return imported, nil
}

func newItem(row *csvRow) (*domain.MenuItem, error) {
	if row.RestaurantKey == "" || row.Name == "" || row.BasePrice == "" {
		return nil, fmt.Errorf("invalid menu row (missing required fields) for key %q", row.Key)
	}
	if row.ID != "" {
		if _, err := uuid.Parse(row.ID); err != nil {
			return nil, fmt.Errorf("invalid id for key %q: %s", row.Key, row.ID)
		}
	}
	price, err := parseMoney(row.BasePrice)
	if err != nil {
		return nil, fmt.Errorf("base price for key %q: %w", row.Key, err)
	}
	return &domain.MenuItem{
		ID:          row.ID,
		Key:         row.Key,
		Name:        row.Name,
		Description: row.Desc,
		Category:    row.Category,
		BasePrice:   price,
		Available:   parseBool(row.Available, true),
		Popular:     parseBool(row.Popular, false),
	}, nil
}

func addOptions(item *domain.MenuItem, row *csvRow) error {
	if row.ImageURL != "" {
		item.Images = append(item.Images, row.ImageURL)
	}
	if row.SizeName != "" {
		mod := decimal.Zero
		if row.SizeModifier != "" {
			var err error
			if mod, err = parseMoney(row.SizeModifier); err != nil {
				return fmt.Errorf("size %q: %w", row.SizeName, err)
			}
		}
		item.Sizes = append(item.Sizes, domain.SizeOption{Name: row.SizeName, PriceModifier: mod})
	}
	if row.ToppingName != "" {
		price, err := parseMoney(row.ToppingPrice)
		if err != nil {
			return fmt.Errorf("topping %q: %w", row.ToppingName, err)
		}
		item.Toppings = append(item.Toppings, domain.ToppingOption{Name: row.ToppingName, Price: price})
	}
	return nil
}

func (i *CSVImporter) save(ctx context.Context, restaurantKey string, item *domain.MenuItem) error {
	restaurantID, err := i.restaurantID(ctx, restaurantKey)
	if err != nil {
		return err
	}
	item.RestaurantID = restaurantID
	if _, err := i.menu.Upsert(ctx, *item); err != nil {
		return fmt.Errorf("upsert menu item %q: %w", item.Key, err)
	}
	return nil
}

func (i *CSVImporter) restaurantID(ctx context.Context, key string) (string, error) {
	if id, ok := i.resolved[key]; ok {
		return id, nil
	}
	r, err := i.restaurants.GetByKey(ctx, key)
	if err != nil {
		return "", fmt.Errorf("restaurant %q: %w", key, err)
	}
	i.resolved[key] = r.ID
	return r.ID, nil
}

func parseMoney(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("negative amount %s", s)
	}
	return d, nil
}

func parseBool(s string, def bool) bool {
	if s == "" {
		return def
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return def
	}
	return b
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.TrimSpace(h)] = i
	}
	return idx
}

func parseRow(record []string, index map[string]int) *csvRow {
	row := &csvRow{
		ID:            pick(record, index, "id"),
		RestaurantKey: pick(record, index, "restaurant.key"),
		Key:           pick(record, index, "key"),
		Name:          pick(record, index, "name"),
		Desc:          pick(record, index, "description"),
		Category:      pick(record, index, "category"),
		BasePrice:     pick(record, index, "basePrice"),
		Available:     pick(record, index, "available"),
		Popular:       pick(record, index, "popular"),
		ImageURL:      pick(record, index, "images.url"),
		SizeName:      pick(record, index, "sizes.name"),
		SizeModifier:  pick(record, index, "sizes.priceModifier"),
		ToppingName:   pick(record, index, "toppings.name"),
		ToppingPrice:  pick(record, index, "toppings.price"),
	}
	if row.Key == "" && row.ImageURL == "" && row.SizeName == "" && row.ToppingName == "" {
		return nil
	}
	return row
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
