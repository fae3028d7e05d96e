package schema

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/kakamessi99/RecordServiceClient/internal/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromRaw(t *testing.T) {
	raw := worker.RawSchema{
		Columns: []worker.RawColumn{
			{Name: "id", Type: "BIGINT"},
			{Name: "name", Type: "varchar", Len: 64, Nullable: true},
			{Name: "price", Type: "DECIMAL", Precision: 10, Scale: 2},
			{Name: "ts", Type: "timestamp_nanos"},
		},
	}

	got, err := FromRaw(raw)
	require.NoError(t, err)

	expected := &Schema{
		Columns: []Column{
			{Name: "id", Type: BigInt},
			{Name: "name", Type: Varchar, Len: 64, Nullable: true},
			{Name: "price", Type: Decimal, Precision: 10, Scale: 2},
			{Name: "ts", Type: TimestampNanos},
		},
	}
	if diff := cmp.Diff(expected, got); diff != "" {
		t.Errorf("schema mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 4, got.NumColumns())
	assert.Equal(t, 2, got.ColumnIndex("price"))
	assert.Equal(t, -1, got.ColumnIndex("missing"))
}

func TestFromRaw_CountStar(t *testing.T) {
	got, err := FromRaw(worker.RawSchema{IsCountStar: true})
	require.NoError(t, err)
	assert.True(t, got.IsCountStar)
	assert.Empty(t, got.Columns)
}

func TestFromRaw_UnknownType(t *testing.T) {
	_, err := FromRaw(worker.RawSchema{Columns: []worker.RawColumn{{Name: "blob", Type: "BLOB"}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "column 0 (blob)")
	assert.Contains(t, err.Error(), `unknown column type "BLOB"`)
}

func TestType_String(t *testing.T) {
	for ty, name := range typeNames {
		parsed, err := ParseType(name)
		require.NoError(t, err)
		assert.Equal(t, ty, parsed)
		assert.Equal(t, name, ty.String())
	}
	assert.Equal(t, "UNKNOWN", Type(0).String())
}
