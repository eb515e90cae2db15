package api

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/gpad1234/light-octo/backend/pkg/errors"
)

// statusFor maps an error kind onto an HTTP status. A disabled integration
// is an upstream error but answers 403.
func statusFor(err error) int {
	var disabled *apperrors.ErrFeatureDisabled
	if stderrors.As(err, &disabled) {
		return http.StatusForbidden
	}

	switch apperrors.TypeOf(err) {
	case apperrors.ErrorTypeInvalidInput, apperrors.ErrorTypeInvalidFormat:
		return http.StatusBadRequest
	case apperrors.ErrorTypeUnauthorized:
		return http.StatusUnauthorized
	case apperrors.ErrorTypeForbidden:
		return http.StatusForbidden
	case apperrors.ErrorTypeNotFound:
		return http.StatusNotFound
	case apperrors.ErrorTypeConflict:
		return http.StatusConflict
	case apperrors.ErrorTypeUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes {"error": msg} with the status for err's kind. Errors
// without a kind never leak their text.
func (s *Server) respondError(c *gin.Context, err error) {
	status := statusFor(err)
	msg := apperrors.MessageOf(err)
	if apperrors.TypeOf(err) == "" {
		msg = "Internal server error"
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("Request failed",
			zap.Error(err),
			zap.String("path", c.FullPath()),
			zap.String("request_id", c.GetString(requestIDKey)),
		)
	} else {
		s.logger.Debug("Request rejected",
			zap.Error(err),
			zap.Int("status", status),
			zap.String("path", c.FullPath()),
		)
	}
	c.JSON(status, gin.H{"error": msg})
}

// generate runs a report generator, converting panics into a generic
// generation error.
func (s *Server) generate(c *gin.Context, name string, fn func() (interface{}, error)) {
	var (
		out interface{}
		err error
	)
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = apperrors.NewGenerationFailed(name, fmt.Errorf("panic: %v", r))
			}
		}()
		out, err = fn()
	}()

	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func bindError(err error) error {
	return apperrors.NewBaseError(apperrors.ErrorTypeInvalidInput, "Invalid request body", err)
}

// bindJSON decodes the request body, reporting malformed JSON as invalid input
func bindJSON(c *gin.Context, dst interface{}) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return bindError(err)
	}
	return nil
}
