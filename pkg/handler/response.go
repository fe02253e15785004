package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"staking_wallet_back/pkg/service"
)

// Error bodies differ per endpoint: most use "message", stake and
// validate-referral use "error", referral submission adds "valid".
type Error struct {
	Message string `json:"message"`
}

type ErrorField struct {
	Error string `json:"error"`
}

type ReferralError struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
}

type bodyFunc func(message string) interface{}

func messageBody(message string) interface{} { return Error{Message: message} }

func errorBody(message string) interface{} { return ErrorField{Error: message} }

func referralBody(message string) interface{} { return ReferralError{Valid: false, Message: message} }

func newErrorResponse(c *gin.Context, statusCode int, message string) {
	logrus.WithField("path", c.FullPath()).Warn(message)
	c.AbortWithStatusJSON(statusCode, Error{Message: message})
}

func newServiceErrorResponse(c *gin.Context, err error, fallback string, body bodyFunc) {
	status := statusOf(err)
	entry := logrus.WithFields(logrus.Fields{
		"path":   c.FullPath(),
		"status": status,
	})
	if status >= http.StatusInternalServerError {
		entry.WithError(err).Error("request failed")
	} else {
		entry.Warn(err.Error())
	}
	c.AbortWithStatusJSON(status, body(service.MessageOf(err, fallback)))
}

func statusOf(err error) int {
	switch service.KindOf(err) {
	case service.KindValidation, service.KindConflict:
		return http.StatusBadRequest
	case service.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func wrapOkJSON(c *gin.Context, response interface{}) {
	c.JSON(http.StatusOK, response)
}
