package export

import (
	"context"
	stderrors "errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gpad1234/light-octo/backend/internal/catalog"
	"github.com/gpad1234/light-octo/backend/internal/graph"
	apperrors "github.com/gpad1234/light-octo/backend/pkg/errors"
)

type fakeRunner struct {
	constraints []string
	batches     []Batch
	err         error
	block       bool
}

func (f *fakeRunner) EnsureConstraints(ctx context.Context, statements []string) error {
	f.constraints = append(f.constraints, statements...)
	return nil
}

func (f *fakeRunner) WriteBatches(ctx context.Context, batches []Batch) error {
	if f.block {
		<-ctx.Done()
		return ctx.Err()
	}
	if f.err != nil {
		return f.err
	}
	f.batches = append(f.batches, batches...)
	return nil
}

func sampleSnapshot(t *testing.T) graph.Snapshot {
	t.Helper()
	s := graph.NewStore()
	nodes, edges := catalog.BuiltinSample()
	_, err := s.Seed("", nodes, edges)
	require.NoError(t, err)
	return s.Snapshot()
}

func TestBuildPlan(t *testing.T) {
	plan, err := BuildPlan(sampleSnapshot(t))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"CREATE CONSTRAINT entity_id IF NOT EXISTS FOR (n:Entity) REQUIRE n.id IS UNIQUE;",
	}, plan.Constraints)
	assert.Equal(t, 5, plan.Nodes)
	assert.Equal(t, 4, plan.Relationships)

	require.Len(t, plan.NodeBatches, 1)
	assert.Contains(t, plan.NodeBatches[0].Query, "MERGE (n:Entity {id: row.id})")
	assert.Len(t, plan.NodeBatches[0].Rows, 5)

	require.Len(t, plan.EdgeBatches, 4, "one batch per relationship type")
	total := 0
	for _, b := range plan.EdgeBatches {
		assert.Contains(t, b.Query, "MATCH (a:Entity {id: row.source})")
		total += len(b.Rows)
	}
	assert.Equal(t, 4, total)
	assert.Contains(t, plan.EdgeBatches[0].Query, "MERGE (a)-[r:CONTAINS]->(b)", "batches are sorted")
}

func TestBuildPlan_RejectsBadRelation(t *testing.T) {
	snap := graph.Snapshot{
		Nodes: []graph.Node{{ID: "a", Label: "A", Type: "t"}, {ID: "b", Label: "B", Type: "t"}},
		Edges: []graph.Edge{{ID: "a-b", Source: "a", Target: "b", Relation: "x}]->(y) DETACH DELETE y //"}},
	}
	_, err := BuildPlan(snap)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeGeneration))
}

func TestExporter_Export(t *testing.T) {
	runner := &fakeRunner{}
	res, err := NewExporter(runner, time.Second).Export(context.Background(), sampleSnapshot(t))
	require.NoError(t, err)

	assert.Equal(t, 1, res.Constraints)
	assert.Equal(t, 5, res.Nodes)
	assert.Equal(t, 4, res.Relationships)
	assert.Len(t, runner.constraints, 1)
	assert.Len(t, runner.batches, 5, "node batches run before edge batches")
	assert.Contains(t, runner.batches[0].Query, "MERGE (n:Entity")
}

func TestExporter_Failures(t *testing.T) {
	t.Run("driver error", func(t *testing.T) {
		runner := &fakeRunner{err: stderrors.New("connection refused")}
		_, err := NewExporter(runner, time.Second).Export(context.Background(), sampleSnapshot(t))
		var upstream *apperrors.ErrUpstreamFailed
		require.True(t, stderrors.As(err, &upstream), "got %v", err)
		assert.Equal(t, "neo4j", upstream.Service)
	})

	t.Run("timeout", func(t *testing.T) {
		runner := &fakeRunner{block: true}
		_, err := NewExporter(runner, 20*time.Millisecond).Export(context.Background(), sampleSnapshot(t))
		var timeout *apperrors.ErrUpstreamTimeout
		require.True(t, stderrors.As(err, &timeout), "got %v", err)
	})
}

// TestDriverRunner_Integration requires a running Neo4j instance at NEO4J_URI
func TestDriverRunner_Integration(t *testing.T) {
	uri := os.Getenv("NEO4J_URI")
	if testing.Short() || uri == "" {
		t.Skip("Skipping integration test")
	}

	ctx := context.Background()
	driver, err := Connect(ctx, uri, os.Getenv("NEO4J_USER"), os.Getenv("NEO4J_PASSWORD"))
	require.NoError(t, err)
	runner := NewDriverRunner(driver, "")
	defer runner.Close(ctx)

	exporter := NewExporter(runner, 30*time.Second)
	for i := 0; i < 2; i++ {
		res, err := exporter.Export(ctx, sampleSnapshot(t))
		require.NoError(t, err, "export is idempotent")
		assert.Equal(t, 5, res.Nodes)
	}
}
