package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/gpad1234/light-octo/backend/pkg/errors"
)

type queryRequest struct {
	Question string `json:"question"`
}

func (s *Server) recordLLM(status string) {
	if s.metrics != nil {
		s.metrics.RecordLLMRequest(status)
	}
}

// openAIQuery forwards an admin's question to the LLM. The store lock is
// never held across the call.
func (s *Server) openAIQuery(c *gin.Context) {
	if s.llm == nil {
		s.recordLLM("disabled")
		s.respondError(c, apperrors.NewFeatureDisabled("openai", "OpenAI NLP feature is disabled"))
		return
	}

	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, bindError(err))
		return
	}

	answer, err := s.llm.Ask(c.Request.Context(), req.Question)
	if err != nil {
		if apperrors.IsErrorType(err, apperrors.ErrorTypeUpstream) {
			s.recordLLM("error")
		}
		s.respondError(c, err)
		return
	}
	s.recordLLM("success")
	c.JSON(http.StatusOK, answer)
}

func (s *Server) exportNeo4j(c *gin.Context) {
	if s.exporter == nil {
		s.respondError(c, apperrors.NewFeatureDisabled("neo4j", "Neo4j export is disabled"))
		return
	}

	res, err := s.exporter.Export(c.Request.Context(), s.store.Snapshot())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Graph exported to Neo4j",
		"result":  res,
	})
}
