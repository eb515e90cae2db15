package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gpad1234/light-octo/backend/internal/auth"
)

type loginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// login accepts JSON or form-encoded credentials
func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		s.respondError(c, bindError(err))
		return
	}

	account, err := s.credentials.Authenticate(req.Username, req.Password)
	if err != nil {
		s.respondError(c, err)
		return
	}
	if err := s.sessions.StartSession(c, account); err != nil {
		s.respondError(c, err)
		return
	}

	s.logger.Info("User logged in",
		zap.String("username", account.Username),
		zap.String("role", account.Role),
	)
	c.JSON(http.StatusOK, gin.H{"success": true, "user": account})
}

func (s *Server) logout(c *gin.Context) {
	s.sessions.EndSession(c)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

func (s *Server) currentSession(c *gin.Context) {
	account, ok := auth.CurrentAccount(c)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"authenticated": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"authenticated": true,
		"user":          account,
		"is_admin":      account.IsAdmin(),
	})
}
