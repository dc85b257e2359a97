package loader

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/adsight/adsight/internal/store"
)

type columnKind int

const (
	kindText columnKind = iota
	kindBigint
	kindDouble
)

type Column struct {
	Name string
	kind columnKind
}

func (c Column) sqlType(dialect store.Dialect) string {
	switch c.kind {
	case kindBigint:
		return "BIGINT"
	case kindDouble:
		if dialect == store.DialectPostgres {
			return "DOUBLE PRECISION"
		}
		return "DOUBLE"
	default:
		return "TEXT"
	}
}

// decodeType is the DuckDB type the decoder casts source values to.
func (c Column) decodeType() string {
	switch c.kind {
	case kindBigint:
		return "BIGINT"
	case kindDouble:
		return "DOUBLE"
	default:
		return "VARCHAR"
	}
}

// Dataset binds one of the fixed tables to the object key holding its rows.
type Dataset struct {
	Table   string
	Key     string
	Columns []Column
	Indexes []Index
}

type Index struct {
	Name   string
	Column string
}

type Manifest struct {
	Datasets []Dataset
}

func DefaultManifest() Manifest {
	return Manifest{Datasets: []Dataset{
		{
			Table: "eligibility",
			Key:   "Product-Level Eligibility Table (mapped) - Product-Level Eligibility Table (mapped)_1753169615993.csv",
			Columns: []Column{
				{Name: "eligibility_datetime_utc", kind: kindText},
				{Name: "item_id", kind: kindBigint},
				{Name: "eligibility", kind: kindText},
				{Name: "message", kind: kindText},
			},
			Indexes: []Index{{Name: "idx_eligibility_item_id", Column: "item_id"}},
		},
		{
			Table: "ad_sales",
			Key:   "Product-Level Ad Sales and Metrics (mapped) - Product-Level Ad Sales and Metrics (mapped)_1753169682186.csv",
			Columns: []Column{
				{Name: "date", kind: kindText},
				{Name: "item_id", kind: kindBigint},
				{Name: "ad_sales", kind: kindDouble},
				{Name: "impressions", kind: kindBigint},
				{Name: "ad_spend", kind: kindDouble},
				{Name: "clicks", kind: kindBigint},
				{Name: "units_sold", kind: kindBigint},
			},
			Indexes: []Index{
				{Name: "idx_ad_sales_item_id", Column: "item_id"},
				{Name: "idx_ad_sales_date", Column: "date"},
			},
		},
		{
			Table: "total_sales",
			Key:   "Product-Level Total Sales and Metrics (mapped) - Product-Level Total Sales and Metrics (mapped)_1753169682185.csv",
			Columns: []Column{
				{Name: "date", kind: kindText},
				{Name: "item_id", kind: kindBigint},
				{Name: "total_sales", kind: kindDouble},
				{Name: "total_units_ordered", kind: kindBigint},
			},
			Indexes: []Index{
				{Name: "idx_total_sales_item_id", Column: "item_id"},
				{Name: "idx_total_sales_date", Column: "date"},
			},
		},
	}}
}

type manifestFile struct {
	Datasets map[string]string `yaml:"datasets"`
}

// LoadManifest returns the default manifest with source keys overridden by
// the YAML file at path. An empty path yields the defaults.
func LoadManifest(path string) (Manifest, error) {
	manifest := DefaultManifest()
	if strings.TrimSpace(path) == "" {
		return manifest, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("read manifest: %w", err)
	}
	return ParseManifest(raw)
}

func ParseManifest(raw []byte) (Manifest, error) {
	var file manifestFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return Manifest{}, fmt.Errorf("parse manifest: %w", err)
	}

	manifest := DefaultManifest()
	for table, key := range file.Datasets {
		index := -1
		for i, dataset := range manifest.Datasets {
			if dataset.Table == table {
				index = i
				break
			}
		}
		if index < 0 {
			return Manifest{}, fmt.Errorf("manifest: unknown table %q", table)
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return Manifest{}, fmt.Errorf("manifest: empty key for table %q", table)
		}
		if _, err := sourceFormat(key); err != nil {
			return Manifest{}, fmt.Errorf("manifest: table %q: %w", table, err)
		}
		manifest.Datasets[index].Key = key
	}
	return manifest, nil
}
