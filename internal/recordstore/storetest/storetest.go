// Package storetest is a conformance suite for recordstore.Store
// implementations.
package storetest

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/timeliness/internal/lineage"
	"github.com/specialistvlad/timeliness/internal/recordstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run exercises newStore against the recordstore.Store contract. Every
// subtest gets a fresh store.
func Run(t *testing.T, newStore func(t *testing.T) recordstore.Store) {
	t.Helper()
	ctx := context.Background()
	budget := 600.0

	job := lineage.Record{
		URN:              "urn:li:dataJob:(urn:li:dataFlow:(airflow,etl,PROD),load)",
		Type:             lineage.KindDataJob,
		CustomProperties: []lineage.Property{{Key: "finishedBySla", Value: "3600"}},
		Relationships: []lineage.Relationship{
			{Type: "Consumes", Entity: lineage.EntityRef{URN: "urn:li:dataset:(urn:li:dataPlatform:hive,raw,PROD)", Type: lineage.KindDataset}},
		},
		Tags:       []string{"nightly: ingest"},
		Degree:     1,
		RuntimeSLO: &budget,
		Runs: []lineage.Run{{
			ExternalURL: "https://scheduler/run/1",
			CustomProperties: []lineage.Property{
				{Key: lineage.RunExecutionDateKey, Value: "2024-05-01T00:00:00Z"},
				{Key: lineage.RunStartDateKey, Value: "2024-05-01T00:10:00Z"},
			},
		}},
	}
	dataset := lineage.Record{URN: "urn:li:dataset:(urn:li:dataPlatform:hive,raw,PROD)", Type: lineage.KindDataset}

	t.Run("put and get round trip", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Put(ctx, job, dataset))

		got, ok, err := s.Get(ctx, job.URN)
		require.NoError(t, err)
		require.True(t, ok)
		if diff := cmp.Diff(job, *got); diff != "" {
			t.Errorf("Get() mismatch (-want +got):\n%s", diff)
		}

		_, ok, err = s.Get(ctx, "urn:li:dataJob:missing")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("replace keeps first insertion order", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Put(ctx, job, dataset))

		updated := dataset
		updated.CustomProperties = []lineage.Property{{Key: "sla", Value: "60"}}
		require.NoError(t, s.Put(ctx, updated))

		all, err := s.All(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, job.URN, all[0].URN)
		assert.Equal(t, updated, all[1])
	})

	t.Run("empty urn is rejected atomically", func(t *testing.T) {
		s := newStore(t)
		err := s.Put(ctx, dataset, lineage.Record{Type: "DATASET"})
		assert.ErrorIs(t, err, recordstore.ErrEmptyURN)

		all, err := s.All(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("concurrent writers and readers", func(t *testing.T) {
		s := newStore(t)
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(2)
			go func(i int) {
				defer wg.Done()
				rec := lineage.Record{URN: fmt.Sprintf("urn:li:dataJob:%d", i), Type: lineage.KindDataJob}
				assert.NoError(t, s.Put(ctx, rec))
			}(i)
			go func() {
				defer wg.Done()
				_, err := s.All(ctx)
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		all, err := s.All(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 8)
	})
}
