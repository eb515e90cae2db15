package graph

// ============================================================================
// Graph Types
// ============================================================================

const (
	// DefaultNodeType is assigned to nodes created without a type
	DefaultNodeType = "default"
	// DefaultRelation is assigned to edges created without a relation
	DefaultRelation = "related_to"
)

// Node is a typed, labeled point in the graph
type Node struct {
	ID     string  `json:"id"`
	Label  string  `json:"label"`
	Type   string  `json:"type"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Source string  `json:"source,omitempty"` // catalog provenance
}

// Edge is a directed, labeled relationship between two nodes
type Edge struct {
	ID       string `json:"id"`
	Source   string `json:"source"`
	Target   string `json:"target"`
	Relation string `json:"relation"`
}

// EdgeID derives the identifier of the edge between source and target
func EdgeID(source, target string) string {
	return source + "-" + target
}

// NodeInput carries the fields a caller supplies to create or import a node
type NodeInput struct {
	ID    string  `json:"id" validate:"required"`
	Label string  `json:"label" validate:"required"`
	Type  string  `json:"type"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

// EdgeInput carries the fields a caller supplies to create or import an edge
type EdgeInput struct {
	Source   string `json:"source" validate:"required"`
	Target   string `json:"target" validate:"required"`
	Relation string `json:"relation"`
}

// NodePatch is a partial node update; nil fields are left unchanged
type NodePatch struct {
	Label *string  `json:"label,omitempty"`
	Type  *string  `json:"type,omitempty"`
	X     *float64 `json:"x,omitempty"`
	Y     *float64 `json:"y,omitempty"`
}

// GraphDocument is the import/export payload. Both arrays must be present.
type GraphDocument struct {
	Nodes []NodeInput `json:"nodes" validate:"required,dive"`
	Edges []EdgeInput `json:"edges" validate:"required,dive"`
}

// Snapshot is a point-in-time copy of the store contents
type Snapshot struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Document converts the snapshot into an importable payload
func (s Snapshot) Document() GraphDocument {
	doc := GraphDocument{
		Nodes: make([]NodeInput, 0, len(s.Nodes)),
		Edges: make([]EdgeInput, 0, len(s.Edges)),
	}
	for _, n := range s.Nodes {
		doc.Nodes = append(doc.Nodes, NodeInput{ID: n.ID, Label: n.Label, Type: n.Type, X: n.X, Y: n.Y})
	}
	for _, e := range s.Edges {
		doc.Edges = append(doc.Edges, EdgeInput{Source: e.Source, Target: e.Target, Relation: e.Relation})
	}
	return doc
}

// ImportResult reports the size of the graph after an import or seed
type ImportResult struct {
	NodesCount int `json:"nodes_count"`
	EdgesCount int `json:"edges_count"`
}

func (in NodeInput) toNode() Node {
	n := Node{
		ID:    in.ID,
		Label: in.Label,
		Type:  in.Type,
		X:     in.X,
		Y:     in.Y,
	}
	if n.Type == "" {
		n.Type = DefaultNodeType
	}
	return n
}

func (in EdgeInput) toEdge() Edge {
	relation := in.Relation
	if relation == "" {
		relation = DefaultRelation
	}
	return Edge{
		ID:       EdgeID(in.Source, in.Target),
		Source:   in.Source,
		Target:   in.Target,
		Relation: relation,
	}
}
