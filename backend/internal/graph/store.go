package graph

import (
	"fmt"
	"sync"

	apperrors "github.com/gpad1234/light-octo/backend/pkg/errors"
	"github.com/gpad1234/light-octo/backend/pkg/logger"
	"github.com/gpad1234/light-octo/backend/pkg/utils"
	"go.uber.org/zap"
)

// Observer is notified after every successful mutation with the resulting
// graph size. Calls happen under the store's write lock, so an Observer must
// not call back into the Store.
type Observer interface {
	GraphChanged(operation string, nodes, edges int)
}

// Store is the in-memory graph. A single RWMutex serializes all mutations so
// check-then-act sequences (duplicate pair detection, cascade delete) are atomic.
type Store struct {
	mu       sync.RWMutex
	nodes    map[string]*Node
	order    []string // node ids in insertion order
	edges    []Edge
	edgeIDs  map[string]struct{}
	observer Observer
	logger   *zap.Logger
}

// NewStore creates an empty graph store
func NewStore() *Store {
	return &Store{
		nodes:   make(map[string]*Node),
		edgeIDs: make(map[string]struct{}),
		logger:  logger.Get(),
	}
}

// SetObserver registers the mutation observer. It must be called before the
// store is shared between goroutines.
func (s *Store) SetObserver(o Observer) {
	s.observer = o
}

// ============================================================================
// Readers
// ============================================================================

// GetNode returns a copy of the node with the given id
func (s *Store) GetNode(id string) (Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.nodes[id]
	if !ok {
		return Node{}, apperrors.NewNotFound("Node not found")
	}
	return *n, nil
}

// ListNodes returns all nodes in insertion order
func (s *Store) ListNodes() []Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nodesLocked()
}

// GetEdge returns a copy of the edge with the given id
func (s *Store) GetEdge(id string) (Edge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, e := range s.edges {
		if e.ID == id {
			return e, nil
		}
	}
	return Edge{}, apperrors.NewNotFound("Edge not found")
}

// ListEdges returns all edges in insertion order
func (s *Store) ListEdges() []Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.edgesLocked()
}

// Snapshot returns a consistent copy of nodes and edges
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{Nodes: s.nodesLocked(), Edges: s.edgesLocked()}
}

// Counts returns the number of nodes and edges
func (s *Store) Counts() (nodes, edges int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nodes), len(s.edges)
}

func (s *Store) nodesLocked() []Node {
	out := make([]Node, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.nodes[id])
	}
	return out
}

func (s *Store) edgesLocked() []Edge {
	out := make([]Edge, len(s.edges))
	copy(out, s.edges)
	return out
}

// ============================================================================
// Node Mutators
// ============================================================================

// CreateNode inserts a new node and returns the stored record
func (s *Store) CreateNode(in NodeInput) (Node, error) {
	if in.ID == "" || in.Label == "" {
		return Node{}, apperrors.NewInvalidInput("Node ID and label are required")
	}

	s.mu.Lock()
	if _, exists := s.nodes[in.ID]; exists {
		s.mu.Unlock()
		return Node{}, apperrors.NewConflict("Node with this ID already exists")
	}
	n := in.toNode()
	s.putNodeLocked(n)
	s.notifyLocked("create_node")
	s.mu.Unlock()

	s.logger.Debug("Node created",
		zap.String("node_id", n.ID),
		zap.String("type", n.Type),
	)
	return n, nil
}

// UpdateNode merges the set fields of patch into an existing node
func (s *Store) UpdateNode(id string, patch NodePatch) (Node, error) {
	s.mu.Lock()
	n, ok := s.nodes[id]
	if !ok {
		s.mu.Unlock()
		return Node{}, apperrors.NewNotFound("Node not found")
	}
	if patch.Label != nil {
		n.Label = *patch.Label
	}
	if patch.Type != nil {
		n.Type = *patch.Type
	}
	if patch.X != nil {
		n.X = *patch.X
	}
	if patch.Y != nil {
		n.Y = *patch.Y
	}
	updated := *n
	s.notifyLocked("update_node")
	s.mu.Unlock()

	s.logger.Debug("Node updated", zap.String("node_id", id))
	return updated, nil
}

// DeleteNode removes a node and every edge touching it. It returns the number
// of edges removed by the cascade.
func (s *Store) DeleteNode(id string) (int, error) {
	s.mu.Lock()
	if _, ok := s.nodes[id]; !ok {
		s.mu.Unlock()
		return 0, apperrors.NewNotFound("Node not found")
	}

	delete(s.nodes, id)
	for i, nid := range s.order {
		if nid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}

	kept := s.edges[:0]
	removed := 0
	for _, e := range s.edges {
		if e.Source == id || e.Target == id {
			delete(s.edgeIDs, e.ID)
			removed++
			continue
		}
		kept = append(kept, e)
	}
	s.edges = kept
	s.notifyLocked("delete_node")
	s.mu.Unlock()

	s.logger.Debug("Node deleted",
		zap.String("node_id", id),
		zap.Int("cascaded_edges", removed),
	)
	return removed, nil
}

// ============================================================================
// Edge Mutators
// ============================================================================

// CreateEdge appends a new edge between two existing nodes. At most one edge
// may exist per ordered (source, target) pair, whatever its relation.
func (s *Store) CreateEdge(in EdgeInput) (Edge, error) {
	if in.Source == "" || in.Target == "" {
		return Edge{}, apperrors.NewInvalidInput("Source and target are required")
	}

	s.mu.Lock()
	_, srcOK := s.nodes[in.Source]
	_, dstOK := s.nodes[in.Target]
	if !srcOK || !dstOK {
		s.mu.Unlock()
		return Edge{}, apperrors.NewNotFound("Source or target node not found")
	}
	e := in.toEdge()
	if _, dup := s.edgeIDs[e.ID]; dup {
		s.mu.Unlock()
		return Edge{}, apperrors.NewConflict("Edge already exists")
	}
	s.edges = append(s.edges, e)
	s.edgeIDs[e.ID] = struct{}{}
	s.notifyLocked("create_edge")
	s.mu.Unlock()

	s.logger.Debug("Edge created",
		zap.String("edge_id", e.ID),
		zap.String("relation", e.Relation),
	)
	return e, nil
}

// DeleteEdge removes the edge with the given id
func (s *Store) DeleteEdge(id string) error {
	s.mu.Lock()
	idx := -1
	for i, e := range s.edges {
		if e.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return apperrors.NewNotFound("Edge not found")
	}
	s.edges = append(s.edges[:idx], s.edges[idx+1:]...)
	delete(s.edgeIDs, id)
	s.notifyLocked("delete_edge")
	s.mu.Unlock()

	s.logger.Debug("Edge deleted", zap.String("edge_id", id))
	return nil
}

// ============================================================================
// Bulk Mutators
// ============================================================================

// Clear removes every node and edge
func (s *Store) Clear() {
	s.mu.Lock()
	s.resetLocked()
	s.notifyLocked("clear")
	s.mu.Unlock()

	s.logger.Info("Graph cleared")
}

// Import replaces the graph with doc. The whole payload is validated before
// the store is touched, so a failed import leaves the previous graph intact.
// Duplicate node ids keep the last record; duplicate ordered edge pairs are skipped.
func (s *Store) Import(doc GraphDocument) (ImportResult, error) {
	if err := utils.ValidateStruct(doc); err != nil {
		return ImportResult{}, apperrors.NewInvalidFormat("Invalid graph format: "+err.Error(), nil)
	}

	nodes := make([]Node, 0, len(doc.Nodes))
	for _, in := range doc.Nodes {
		nodes = append(nodes, in.toNode())
	}

	result, err := s.replace("import", nodes, doc.Edges)
	if err != nil {
		return ImportResult{}, err
	}

	s.logger.Info("Graph imported",
		zap.Int("nodes", result.NodesCount),
		zap.Int("edges", result.EdgesCount),
	)
	return result, nil
}

// Seed replaces the graph with a canned node/edge set. A non-empty source is
// recorded on every node as its provenance.
func (s *Store) Seed(source string, nodes []Node, edges []EdgeInput) (ImportResult, error) {
	tagged := make([]Node, len(nodes))
	for i, n := range nodes {
		if n.Type == "" {
			n.Type = DefaultNodeType
		}
		if source != "" {
			n.Source = source
		}
		tagged[i] = n
	}

	result, err := s.replace("seed", tagged, edges)
	if err != nil {
		return ImportResult{}, err
	}

	s.logger.Info("Graph seeded",
		zap.String("source", source),
		zap.Int("nodes", result.NodesCount),
		zap.Int("edges", result.EdgesCount),
	)
	return result, nil
}

// replace builds the new contents off to the side, checks every edge against
// the incoming node set and only then swaps them in.
func (s *Store) replace(operation string, nodes []Node, edges []EdgeInput) (ImportResult, error) {
	nodeMap := make(map[string]*Node, len(nodes))
	order := make([]string, 0, len(nodes))
	for _, n := range nodes {
		n := n
		if _, seen := nodeMap[n.ID]; !seen {
			order = append(order, n.ID)
		}
		nodeMap[n.ID] = &n
	}

	edgeIDs := make(map[string]struct{}, len(edges))
	newEdges := make([]Edge, 0, len(edges))
	for _, in := range edges {
		_, srcOK := nodeMap[in.Source]
		_, dstOK := nodeMap[in.Target]
		if !srcOK || !dstOK {
			return ImportResult{}, apperrors.NewNotFound(
				fmt.Sprintf("Edge references non-existent node: %s or %s", in.Source, in.Target))
		}
		e := in.toEdge()
		if _, dup := edgeIDs[e.ID]; dup {
			continue
		}
		edgeIDs[e.ID] = struct{}{}
		newEdges = append(newEdges, e)
	}

	s.mu.Lock()
	s.nodes = nodeMap
	s.order = order
	s.edges = newEdges
	s.edgeIDs = edgeIDs
	s.notifyLocked(operation)
	s.mu.Unlock()

	return ImportResult{NodesCount: len(nodeMap), EdgesCount: len(newEdges)}, nil
}

func (s *Store) putNodeLocked(n Node) {
	if _, exists := s.nodes[n.ID]; !exists {
		s.order = append(s.order, n.ID)
	}
	s.nodes[n.ID] = &n
}

func (s *Store) resetLocked() {
	s.nodes = make(map[string]*Node)
	s.order = nil
	s.edges = nil
	s.edgeIDs = make(map[string]struct{})
}

// notifyLocked reports the post-mutation size while the write lock is still
// held, so observers see updates in the same order the mutations applied.
func (s *Store) notifyLocked(operation string) {
	if s.observer != nil {
		s.observer.GraphChanged(operation, len(s.nodes), len(s.edges))
	}
}
