// Package api exposes the graph editor over HTTP.
package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gpad1234/light-octo/backend/internal/adapter"
	"github.com/gpad1234/light-octo/backend/internal/auth"
	"github.com/gpad1234/light-octo/backend/internal/export"
	"github.com/gpad1234/light-octo/backend/internal/graph"
	"github.com/gpad1234/light-octo/backend/internal/metrics"
	"github.com/gpad1234/light-octo/backend/internal/schema"
	"github.com/gpad1234/light-octo/backend/pkg/logger"
)

// QueryAsker answers free-text questions
type QueryAsker interface {
	Ask(ctx context.Context, question string) (*adapter.Answer, error)
}

// GraphExporter writes a snapshot to an external graph database
type GraphExporter interface {
	Export(ctx context.Context, snap graph.Snapshot) (*export.Result, error)
}

// Deps are the collaborators the HTTP surface needs. LLM, Exporter and
// Metrics are optional; a nil value disables the corresponding endpoint.
type Deps struct {
	Store       *graph.Store
	Credentials auth.CredentialStore
	Sessions    *auth.Middleware
	LLM         QueryAsker
	Exporter    GraphExporter
	Metrics     *metrics.Collector
	Logger      *zap.Logger
	SQLOptions  schema.SQLOptions

	// AllowedOrigins may make credentialed cross-origin requests
	AllowedOrigins []string
}

// Server holds the handler dependencies
type Server struct {
	store       *graph.Store
	credentials auth.CredentialStore
	sessions    *auth.Middleware
	llm         QueryAsker
	exporter    GraphExporter
	metrics     *metrics.Collector
	logger      *zap.Logger
	sqlOptions  schema.SQLOptions
	origins     []string
}

// NewServer creates a server from deps
func NewServer(deps Deps) *Server {
	log := deps.Logger
	if log == nil {
		log = logger.Get()
	}
	return &Server{
		store:       deps.Store,
		credentials: deps.Credentials,
		sessions:    deps.Sessions,
		llm:         deps.LLM,
		exporter:    deps.Exporter,
		metrics:     deps.Metrics,
		logger:      log,
		sqlOptions:  deps.SQLOptions,
		origins:     deps.AllowedOrigins,
	}
}

// Router builds the gin engine with middleware and every route
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(requestID())
	router.Use(ginLogger(s.logger))
	router.Use(gin.Recovery())
	router.Use(cors(s.origins))
	if s.metrics != nil {
		router.Use(s.metrics.Middleware())
		router.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}
	router.Use(s.sessions.LoadSession())

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	// Sessions
	router.POST("/login", s.login)
	router.GET("/logout", s.logout)
	router.POST("/logout", s.logout)

	api := router.Group("/api")
	{
		api.GET("/session", s.currentSession)

		// Nodes
		api.GET("/nodes", s.listNodes)
		api.POST("/nodes", s.createNode)
		api.GET("/nodes/:id", s.getNode)
		api.PUT("/nodes/:id", s.updateNode)
		api.DELETE("/nodes/:id", s.deleteNode)

		// Edges
		api.GET("/edges", s.listEdges)
		api.POST("/edges", s.createEdge)
		api.GET("/edges/:id", s.getEdge)
		api.DELETE("/edges/:id", s.deleteEdge)

		// Whole graph
		api.GET("/graph", s.getGraph)
		api.DELETE("/graph/clear", s.clearGraph)
		api.POST("/graph/sample", s.loadSample)
		api.POST("/graph/import", s.importGraph)

		// Reports
		api.GET("/schemas/sql", s.sqlSchema)
		api.GET("/schemas/mongodb", s.mongoSchema)
		api.GET("/schemas/cypher", s.cypherSchema)
		api.GET("/report/graph-stats", s.graphStats)

		// Sample catalogs
		api.GET("/mongodb/databases", s.listCatalogs)
		api.POST("/mongodb/import/:name", s.importCatalog)

		// Admin integrations
		admin := api.Group("", s.sessions.RequireAdmin())
		admin.POST("/openai/query", s.openAIQuery)
		admin.POST("/export/neo4j", s.exportNeo4j)
	}

	return router
}
