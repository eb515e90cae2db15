package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gpad1234/light-octo/backend/internal/graph"
	apperrors "github.com/gpad1234/light-octo/backend/pkg/errors"
)

func TestNames(t *testing.T) {
	assert.Equal(t, []string{
		"sample_mflix",
		"sample_airbnb",
		"sample_analytics",
		"sample_restaurants",
	}, Names())
}

func TestInfo(t *testing.T) {
	tests := []struct {
		name       string
		wantNodes  int
		wantEdges  int
		wantColls  []string
		wantRelCnt int
	}{
		{"sample_mflix", 10, 3, []string{"movies", "users"}, 1},
		{"sample_airbnb", 5, 0, []string{"listingsAndReviews"}, 0},
		{"sample_analytics", 10, 3, []string{"customers", "accounts"}, 1},
		{"sample_restaurants", 10, 0, []string{"restaurants"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := Info(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.wantColls, info.Collections)
			assert.Equal(t, len(tt.wantColls), info.CollectionCount)
			assert.Equal(t, tt.wantRelCnt, info.RelationshipCount)
			assert.Equal(t, tt.wantNodes, info.TotalSampleNodes)
			assert.Equal(t, tt.wantEdges, info.TotalSampleEdges)
		})
	}

	_, err := Info("sample_nope")
	require.Error(t, err)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeNotFound))
	assert.Equal(t, "Database sample_nope not found", apperrors.MessageOf(err))
}

func TestAll(t *testing.T) {
	all := All()
	require.Len(t, all, len(Names()))
	for i, name := range Names() {
		assert.Equal(t, name, all[i].Name)
	}
}

func TestBuild(t *testing.T) {
	t.Run("mflix", func(t *testing.T) {
		g, err := Build("sample_mflix")
		require.NoError(t, err)
		assert.Equal(t, "sample_mflix", g.Database)
		require.Len(t, g.Nodes, 10)
		assert.Equal(t, graph.Node{ID: "movies_0", Label: "Movies 1", Type: "concept"}, g.Nodes[0])
		assert.Equal(t, graph.Node{ID: "users_4", Label: "Users 5", Type: "person"}, g.Nodes[9])

		require.Len(t, g.Edges, 3)
		for i, e := range g.Edges {
			assert.Equal(t, nodeID("users", i), e.Source)
			assert.Equal(t, nodeID("movies", i), e.Target)
			assert.Equal(t, "watched", e.Relation)
		}
	})

	t.Run("camel case collection label", func(t *testing.T) {
		g, err := Build("sample_airbnb")
		require.NoError(t, err)
		require.Len(t, g.Nodes, 5)
		assert.Equal(t, "Listingsandreviews 1", g.Nodes[0].Label)
		assert.Empty(t, g.Edges)
	})

	t.Run("unknown database", func(t *testing.T) {
		_, err := Build("sample_nope")
		assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeNotFound))
	})

	t.Run("loads into a store", func(t *testing.T) {
		for _, name := range Names() {
			g, err := Build(name)
			require.NoError(t, err)

			s := graph.NewStore()
			res, err := s.Seed(g.Database, g.Nodes, g.Edges)
			require.NoError(t, err, name)

			info, err := Info(name)
			require.NoError(t, err)
			assert.Equal(t, info.TotalSampleNodes, res.NodesCount, name)
			assert.Equal(t, info.TotalSampleEdges, res.EdgesCount, name)
		}
	})
}

func TestTitleCase(t *testing.T) {
	tests := map[string]string{
		"movies":             "Movies",
		"listingsAndReviews": "Listingsandreviews",
		"sample_mflix":       "Sample_Mflix",
		"":                   "",
	}
	for in, want := range tests {
		assert.Equal(t, want, titleCase(in), in)
	}
}

func TestBuiltinSample(t *testing.T) {
	nodes, edges := BuiltinSample()
	require.Len(t, nodes, 5)
	require.Len(t, edges, 4)

	s := graph.NewStore()
	res, err := s.Seed("", nodes, edges)
	require.NoError(t, err)
	assert.Equal(t, graph.ImportResult{NodesCount: 5, EdgesCount: 4}, res)

	e, err := s.GetEdge("order-payment")
	require.NoError(t, err)
	assert.Equal(t, "has_payment", e.Relation)
	for _, n := range s.ListNodes() {
		assert.Equal(t, "entity", n.Type)
		assert.Empty(t, n.Source)
	}
}
