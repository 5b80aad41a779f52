package prediction

import (
	"testing"

	"github.com/specialistvlad/timeliness/internal/testutil/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipeline(t *testing.T) {
	records := pipeline.Records()

	tree := BuildTree(records[0], records[1:], pipeline.Execution, Options{})
	ingest, ok := tree.Node(pipeline.IngestJob)
	require.True(t, ok)
	assert.True(t, ingest.Finished())
	assert.Empty(t, ingest.Upstreams)

	transform, _ := tree.Node(pipeline.TransformJob)
	assert.True(t, transform.Started())
	assert.False(t, transform.Finished())
	assert.Equal(t, []string{pipeline.RawDataset}, transform.Upstreams)

	res := PredictLandingTime(tree, pipeline.Execution)
	require.True(t, res.Estimable)
	assert.Equal(t, pipeline.Landing, res.LandingTime)
	assert.Empty(t, res.Cycles)
}
