// Package report derives summary statistics from a graph snapshot.
package report

import "github.com/gpad1234/light-octo/backend/internal/graph"

// Degree holds the edge counts touching one node
type Degree struct {
	InDegree    int `json:"in_degree"`
	OutDegree   int `json:"out_degree"`
	TotalDegree int `json:"total_degree"`
}

// GraphStats summarizes a graph
type GraphStats struct {
	TotalNodes        int               `json:"total_nodes"`
	TotalEdges        int               `json:"total_edges"`
	NodeTypes         map[string]int    `json:"node_types"`
	RelationshipTypes map[string]int    `json:"relationship_types"`
	NodeDegrees       map[string]Degree `json:"node_degrees"`
	Density           float64           `json:"density"`
	AverageDegree     float64           `json:"average_degree"`
}

// Compute returns counts per type and relation, per-node degrees, the
// directed density |E|/(|N|(|N|-1)) and the average total degree.
func Compute(snap graph.Snapshot) *GraphStats {
	n, m := len(snap.Nodes), len(snap.Edges)
	stats := &GraphStats{
		TotalNodes:        n,
		TotalEdges:        m,
		NodeTypes:         make(map[string]int),
		RelationshipTypes: make(map[string]int),
		NodeDegrees:       make(map[string]Degree, n),
	}

	for _, node := range snap.Nodes {
		stats.NodeTypes[node.Type]++
		stats.NodeDegrees[node.ID] = Degree{}
	}

	for _, e := range snap.Edges {
		stats.RelationshipTypes[e.Relation]++
		if d, ok := stats.NodeDegrees[e.Source]; ok {
			d.OutDegree++
			d.TotalDegree++
			stats.NodeDegrees[e.Source] = d
		}
		if d, ok := stats.NodeDegrees[e.Target]; ok {
			d.InDegree++
			d.TotalDegree++
			stats.NodeDegrees[e.Target] = d
		}
	}

	if n > 1 {
		stats.Density = float64(m) / float64(n*(n-1))
	}
	if n > 0 {
		total := 0
		for _, d := range stats.NodeDegrees {
			total += d.TotalDegree
		}
		stats.AverageDegree = float64(total) / float64(n)
	}
	return stats
}
