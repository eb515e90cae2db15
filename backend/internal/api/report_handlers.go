package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gpad1234/light-octo/backend/internal/catalog"
	"github.com/gpad1234/light-octo/backend/internal/report"
	"github.com/gpad1234/light-octo/backend/internal/schema"
)

func (s *Server) sqlSchema(c *gin.Context) {
	snap := s.store.Snapshot()
	s.generate(c, "SQL schema", func() (interface{}, error) {
		return schema.GenerateSQLWithOptions(snap, s.sqlOptions)
	})
}

func (s *Server) mongoSchema(c *gin.Context) {
	snap := s.store.Snapshot()
	s.generate(c, "MongoDB schema", func() (interface{}, error) {
		return schema.GenerateMongo(snap)
	})
}

func (s *Server) cypherSchema(c *gin.Context) {
	snap := s.store.Snapshot()
	s.generate(c, "Cypher schema", func() (interface{}, error) {
		return schema.GenerateCypher(snap)
	})
}

func (s *Server) graphStats(c *gin.Context) {
	snap := s.store.Snapshot()
	s.generate(c, "Graph statistics", func() (interface{}, error) {
		return report.Compute(snap), nil
	})
}

func (s *Server) listCatalogs(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"databases": catalog.All()})
}

func (s *Server) importCatalog(c *gin.Context) {
	g, err := catalog.Build(c.Param("name"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	res, err := s.store.Seed(g.Database, g.Nodes, g.Edges)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":     fmt.Sprintf("MongoDB sample database %q imported successfully", g.Database),
		"nodes_count": res.NodesCount,
		"edges_count": res.EdgesCount,
		"source":      "mongodb_sample",
	})
}
