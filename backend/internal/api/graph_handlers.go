package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gpad1234/light-octo/backend/internal/catalog"
	"github.com/gpad1234/light-octo/backend/internal/graph"
	apperrors "github.com/gpad1234/light-octo/backend/pkg/errors"
)

// ============================================================================
// Nodes
// ============================================================================

func (s *Server) listNodes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"nodes": s.store.ListNodes()})
}

func (s *Server) createNode(c *gin.Context) {
	var in graph.NodeInput
	if err := bindJSON(c, &in); err != nil {
		s.respondError(c, err)
		return
	}
	node, err := s.store.CreateNode(in)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"node": node})
}

func (s *Server) getNode(c *gin.Context) {
	node, err := s.store.GetNode(c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"node": node})
}

func (s *Server) updateNode(c *gin.Context) {
	id := c.Param("id")
	if _, err := s.store.GetNode(id); err != nil {
		s.respondError(c, err)
		return
	}
	var patch graph.NodePatch
	if err := bindJSON(c, &patch); err != nil {
		s.respondError(c, err)
		return
	}
	node, err := s.store.UpdateNode(id, patch)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"node": node})
}

func (s *Server) deleteNode(c *gin.Context) {
	if _, err := s.store.DeleteNode(c.Param("id")); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Node deleted"})
}

// ============================================================================
// Edges
// ============================================================================

func (s *Server) listEdges(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"edges": s.store.ListEdges()})
}

func (s *Server) createEdge(c *gin.Context) {
	var in graph.EdgeInput
	if err := bindJSON(c, &in); err != nil {
		s.respondError(c, err)
		return
	}
	edge, err := s.store.CreateEdge(in)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"edge": edge})
}

func (s *Server) getEdge(c *gin.Context) {
	edge, err := s.store.GetEdge(c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"edge": edge})
}

func (s *Server) deleteEdge(c *gin.Context) {
	if err := s.store.DeleteEdge(c.Param("id")); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Edge deleted"})
}

// ============================================================================
// Whole graph
// ============================================================================

func (s *Server) getGraph(c *gin.Context) {
	snap := s.store.Snapshot()
	c.JSON(http.StatusOK, gin.H{"nodes": snap.Nodes, "edges": snap.Edges})
}

func (s *Server) clearGraph(c *gin.Context) {
	s.store.Clear()
	c.JSON(http.StatusOK, gin.H{"message": "Graph cleared"})
}

func (s *Server) loadSample(c *gin.Context) {
	nodes, edges := catalog.BuiltinSample()
	if _, err := s.store.Seed("", nodes, edges); err != nil {
		s.respondError(c, err)
		return
	}
	snap := s.store.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"message": "Sample data loaded",
		"nodes":   snap.Nodes,
		"edges":   snap.Edges,
	})
}

func (s *Server) importGraph(c *gin.Context) {
	var doc graph.GraphDocument
	if err := c.ShouldBindJSON(&doc); err != nil {
		s.respondError(c, apperrors.NewInvalidFormat("Invalid graph format: must contain nodes and edges", err))
		return
	}
	res, err := s.store.Import(doc)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":     "Graph imported successfully",
		"nodes_count": res.NodesCount,
		"edges_count": res.EdgesCount,
	})
}
