// Package schema describes the shape of the records a task produces. A Schema
// is always derived from the cursor returned by the same execution that
// produced the records; it is never cached across sessions.
package schema

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/kakamessi99/RecordServiceClient/internal/worker"
)

// Type is a column type of the record service.
type Type int

const (
	Boolean Type = iota + 1
	TinyInt
	SmallInt
	Int
	BigInt
	Float
	Double
	String
	Varchar
	Char
	TimestampNanos
	Decimal
)

var typeNames = map[Type]string{
	Boolean:        "BOOLEAN",
	TinyInt:        "TINYINT",
	SmallInt:       "SMALLINT",
	Int:            "INT",
	BigInt:         "BIGINT",
	Float:          "FLOAT",
	Double:         "DOUBLE",
	String:         "STRING",
	Varchar:        "VARCHAR",
	Char:           "CHAR",
	TimestampNanos: "TIMESTAMP_NANOS",
	Decimal:        "DECIMAL",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "UNKNOWN"
}

// ParseType maps a raw type name, case-insensitively.
func ParseType(name string) (Type, error) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	for t, n := range typeNames {
		if n == upper {
			return t, nil
		}
	}
	return 0, errors.Newf("unknown column type %q", name)
}

// Column describes one column of a record.
type Column struct {
	Name     string
	Type     Type
	Nullable bool
	// Len is set for VARCHAR and CHAR.
	Len int
	// Precision and Scale are set for DECIMAL.
	Precision int
	Scale     int
}

// Schema is the ordered list of columns of a record stream.
type Schema struct {
	Columns []Column
	// IsCountStar is set when the task only returns a row count.
	IsCountStar bool
}

// FromRaw converts the worker's raw schema.
func FromRaw(raw worker.RawSchema) (*Schema, error) {
	s := &Schema{
		Columns:     make([]Column, 0, len(raw.Columns)),
		IsCountStar: raw.IsCountStar,
	}
	for i, rc := range raw.Columns {
		t, err := ParseType(rc.Type)
		if err != nil {
			return nil, errors.Wrapf(err, "column %d (%s)", i, rc.Name)
		}
		s.Columns = append(s.Columns, Column{
			Name:      rc.Name,
			Type:      t,
			Nullable:  rc.Nullable,
			Len:       rc.Len,
			Precision: rc.Precision,
			Scale:     rc.Scale,
		})
	}
	return s, nil
}

// ColumnIndex returns the position of the named column, or -1.
func (s *Schema) ColumnIndex(name string) int {
	for i, c := range s.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// NumColumns returns the number of columns.
func (s *Schema) NumColumns() int { return len(s.Columns) }
