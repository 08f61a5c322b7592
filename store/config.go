package store

// MaxBatchItems is the largest row count a single BatchPut accepts
// (the DynamoDB BatchWriteItem limit).
const MaxBatchItems = 25

// Names of the secondary indexes the catalog relies on.
const (
	// ReverseIndex answers "which items reference this facet or
	// contributor" via the gsi1pk attribute on relationship rows.
	ReverseIndex = "gsi1"

	// PeriodIndex answers "which items carry this period" via the
	// period attribute projected onto item metadata rows.
	PeriodIndex = "period_index"
)

// Index maps a secondary-index name to the row attribute it is keyed on.
type Index struct {
	Name string
	Attr string
}

// Config holds configuration for the DynamoDB-backed store.
type Config struct {
	// Table is the catalog table name.
	// Default: "curio_catalog"
	Table string

	// Indexes are the secondary indexes available for QueryIndex.
	// Default: ReverseIndex on "gsi1pk" and PeriodIndex on "period".
	Indexes []Index
}

// DefaultConfig returns the standard table layout.
func DefaultConfig() Config {
	return Config{
		Table: "curio_catalog",
		Indexes: []Index{
			{Name: ReverseIndex, Attr: "gsi1pk"},
			{Name: PeriodIndex, Attr: "period"},
		},
	}
}

// validate fills in defaults for unset fields.
func (c *Config) validate() {
	def := DefaultConfig()
	if c.Table == "" {
		c.Table = def.Table
	}
	if len(c.Indexes) == 0 {
		c.Indexes = def.Indexes
	}
}

// indexAttr returns the key attribute for a named index.
func (c *Config) indexAttr(name string) (string, bool) {
	for _, ix := range c.Indexes {
		if ix.Name == name {
			return ix.Attr, true
		}
	}
	return "", false
}
