package lineage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindIn(t *testing.T) {
	isDataset := KindIn("dataset")

	assert.True(t, isDataset(&Record{URN: "x", Type: KindDataset}))
	assert.False(t, isDataset(&Record{URN: "x", Type: KindDataJob}))
	assert.False(t, isDataset(nil))
	// Kind falls back to the URN.
	assert.True(t, isDataset(&Record{URN: "urn:li:dataset:(urn:li:dataPlatform:hive,db.t,PROD)"}))
}

func TestEntitiesByURN(t *testing.T) {
	records := []Record{
		{URN: "a", Type: "first"},
		{URN: "b"},
		{URN: "a", Type: "second"},
	}
	got := EntitiesByURN(records)
	assert.Len(t, got, 2)
	assert.Equal(t, "second", got["a"].Type)
}

func TestRecordProperty(t *testing.T) {
	rec := &Record{CustomProperties: []Property{{Key: "k", Value: "1"}, {Key: "k", Value: "2"}}}
	v, ok := rec.Property("k")
	assert.True(t, ok)
	assert.Equal(t, "1", v)

	_, ok = rec.Property("missing")
	assert.False(t, ok)

	run := Run{CustomProperties: []Property{{Key: "state", Value: "success"}}}
	v, ok = run.Property("state")
	assert.True(t, ok)
	assert.Equal(t, "success", v)
}
