package recordfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/timeliness/internal/lineage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	want := []lineage.Record{
		{
			URN:    "urn:li:dataset:a",
			Type:   lineage.KindDataset,
			Degree: 1,
			Relationships: []lineage.Relationship{
				{Type: "Produces", Entity: lineage.EntityRef{URN: "urn:li:dataJob:b", Type: lineage.KindDataJob}},
			},
		},
		{URN: "urn:li:dataJob:b", Type: lineage.KindDataJob, Degree: 2},
	}

	testCases := []struct {
		name string
		ext  string
		data string
	}{
		{
			name: "json list",
			ext:  ".json",
			data: `[
				{"urn": "urn:li:dataset:a", "type": "DATASET", "degree": 1,
				 "relationships": [{"type": "Produces", "entity": {"urn": "urn:li:dataJob:b", "type": "DATA_JOB"}}]},
				{"urn": "urn:li:dataJob:b", "type": "DATA_JOB", "degree": 2}
			]`,
		},
		{
			name: "json search response",
			ext:  ".json",
			data: `{"data": {"searchAcrossLineage": {"searchResults": [
				{"degree": 1, "entity": {"urn": "urn:li:dataset:a", "type": "DATASET",
				 "relationships": [{"type": "Produces", "entity": {"urn": "urn:li:dataJob:b", "type": "DATA_JOB"}}]}},
				{"degree": 2, "entity": {"urn": "urn:li:dataJob:b", "type": "DATA_JOB"}}
			]}}}`,
		},
		{
			name: "yaml records object",
			ext:  ".yaml",
			data: `
records:
  - urn: urn:li:dataset:a
    type: DATASET
    degree: 1
    relationships:
      - type: Produces
        entity: {urn: "urn:li:dataJob:b", type: DATA_JOB}
  - urn: urn:li:dataJob:b
    type: DATA_JOB
    degree: 2
`,
		},
		{
			name: "yml search results",
			ext:  ".yml",
			data: `
searchResults:
  - degree: 1
    entity:
      urn: urn:li:dataset:a
      type: DATASET
      relationships:
        - type: Produces
          entity: {urn: "urn:li:dataJob:b", type: DATA_JOB}
  - degree: 2
    entity: {urn: "urn:li:dataJob:b", type: DATA_JOB}
`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Decode([]byte(tc.data), tc.ext)
			require.NoError(t, err)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("Decode() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecode_Errors(t *testing.T) {
	_, err := Decode([]byte(`{}`), ".txt")
	assert.ErrorContains(t, err, "unsupported record file extension")

	_, err = Decode([]byte(`[{"urn": 1}]`), ".json")
	assert.Error(t, err)

	_, err = Decode([]byte("records: [\n  - urn: a\n"), ".yaml")
	assert.Error(t, err)

	records, err := Decode([]byte("  "), ".json")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestLoad(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.json"), []byte(`[{"urn": "a", "type": "DATASET"}]`), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nested", "b.yaml"), []byte("- urn: b\n  type: DATA_JOB\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	t.Run("directory", func(t *testing.T) {
		records, err := Load(ctx, dir)
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, "a", records[0].URN)
		assert.Equal(t, "b", records[1].URN)
	})

	t.Run("single file", func(t *testing.T) {
		records, err := Load(ctx, filepath.Join(dir, "nested", "b.yaml"))
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, lineage.KindDataJob, records[0].Type)
	})

	t.Run("empty file", func(t *testing.T) {
		empty := filepath.Join(t.TempDir(), "empty.json")
		require.NoError(t, os.WriteFile(empty, []byte("[]"), 0o644))
		records, err := Load(ctx, empty)
		require.NoError(t, err)
		assert.NotNil(t, records)
		assert.Empty(t, records)
	})

	t.Run("nothing found", func(t *testing.T) {
		_, err := Load(ctx, filepath.Join(dir, "missing"))
		assert.ErrorContains(t, err, "no record files found")
	})

	t.Run("bad file", func(t *testing.T) {
		bad := filepath.Join(t.TempDir(), "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{`), 0o644))
		_, err := Load(ctx, bad)
		assert.ErrorContains(t, err, "failed to parse record file")
	})
}

func TestMarshal_RoundTrip(t *testing.T) {
	in := []lineage.Record{{
		URN:       "a",
		Type:      lineage.KindDataset,
		Tags:      []string{"x"},
		Upstreams: []lineage.Relationship{{Type: "DownstreamOf", Entity: lineage.EntityRef{URN: "b"}}},
	}}
	data, err := Marshal(in)
	require.NoError(t, err)

	out, err := Decode(data, ".json")
	require.NoError(t, err)
	assert.Equal(t, in, out)
}
