package jsonfile

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/body-trend-etl/internal/domain"
)

func sampleRecord() domain.Record {
	r := domain.NewRecord(3)
	r.Set(domain.FieldTime, "2024-05-01 08:15:00")
	r.Set(domain.FieldWeight, 69.9)
	r.Set(domain.FieldBMI, math.NaN())
	return r
}

func TestEncode(t *testing.T) {
	data, err := Encode([]domain.Record{sampleRecord()})
	require.NoError(t, err)

	want := "[\n" +
		"  {\n" +
		"    \"time\": \"2024-05-01 08:15:00\",\n" +
		"    \"weight\": 69.9,\n" +
		"    \"bmi\": null\n" +
		"  }\n" +
		"]"
	assert.Equal(t, want, string(data))
}

func TestEncode_NoHTMLEscaping(t *testing.T) {
	r := domain.NewRecord(1)
	r.Set("note", "<after run> & rest")
	data, err := Encode([]domain.Record{r})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"<after run> & rest"`)
}

func TestWriteReadRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "records.json")

	require.NoError(t, WriteRecords(path, []domain.Record{sampleRecord()}))
	assert.True(t, Exists(path))
	assert.NoFileExists(t, path+".tmp")

	records, err := ReadRecords(path)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, []string{"time", "weight", "bmi"}, records[0].Keys())
	assert.Equal(t, 69.9, records[0].Weight())
	bmi, ok := records[0].Get(domain.FieldBMI)
	assert.True(t, ok)
	assert.Nil(t, bmi)
}

func TestWriteRecords_NilIsEmptyArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	require.NoError(t, WriteRecords(path, nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))

	records, err := ReadRecords(path)
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestWriteRecords_Idempotent(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.json")
	b := filepath.Join(dir, "b.json")
	records := domain.Ingest("time,weight,note\n2024-05-01T00:00:00Z,70,x\n2024-05-02T00:00:00Z,abc,y")

	require.NoError(t, WriteRecords(a, records))
	require.NoError(t, WriteRecords(b, records))

	da, err := os.ReadFile(a)
	require.NoError(t, err)
	db, err := os.ReadFile(b)
	require.NoError(t, err)
	assert.Equal(t, da, db)
}

func TestReadRecords_Errors(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file names the path", func(t *testing.T) {
		path := filepath.Join(dir, "absent.json")
		_, err := ReadRecords(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), path)
	})

	t.Run("malformed json names the path", func(t *testing.T) {
		path := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(path, []byte("[{\"time\":"), 0o644))
		_, err := ReadRecords(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), path)
	})

	t.Run("object instead of array", func(t *testing.T) {
		path := filepath.Join(dir, "object.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"time":"x"}`), 0o644))
		_, err := ReadRecords(path)
		assert.ErrorIs(t, err, ErrNotArray)
	})
}

func TestDecodeValue(t *testing.T) {
	t.Run("array of objects", func(t *testing.T) {
		v, err := DecodeValue([]byte(`[{"b":1,"a":2}]`))
		require.NoError(t, err)
		records, ok := v.([]domain.Record)
		require.True(t, ok)
		assert.Equal(t, []string{"b", "a"}, records[0].Keys())
	})

	t.Run("single object", func(t *testing.T) {
		v, err := DecodeValue([]byte(`{"z":"1\r","a":null}`))
		require.NoError(t, err)
		rec, ok := v.(domain.Record)
		require.True(t, ok)
		assert.Equal(t, []string{"z", "a"}, rec.Keys())
	})

	t.Run("other json", func(t *testing.T) {
		v, err := DecodeValue([]byte(`["a\r", 1]`))
		require.NoError(t, err)
		assert.Equal(t, []any{"a\r", 1.0}, v)
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := DecodeValue([]byte(`{`))
		assert.Error(t, err)
	})
}

func TestExists(t *testing.T) {
	dir := t.TempDir()
	assert.False(t, Exists(dir), "directories are not files")
	assert.False(t, Exists(filepath.Join(dir, "nope")))
}
