package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/example/cardlearn/internal/apierr"
	"github.com/example/cardlearn/internal/learning"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// RespondError writes the error envelope for err and aborts the chain.
func RespondError(c *gin.Context, err error) {
	apiErr := apierr.From(err)
	msg := "unknown error"
	if apiErr != nil {
		msg = apiErr.Error()
	} else {
		apiErr = apierr.New(http.StatusInternalServerError, apierr.CodeInternal, nil)
	}
	if apiErr.Status >= http.StatusInternalServerError {
		// internals stay in the log
		c.Error(err)
		msg = http.StatusText(apiErr.Status)
	}
	c.AbortWithStatusJSON(apiErr.Status, ErrorEnvelope{
		Error: APIError{Message: msg, Code: apiErr.Code},
	})
}

type finishedResponse struct {
	Status string `json:"status"`
}

func respondNext(c *gin.Context, next *learning.Next) {
	if next.Finished {
		c.JSON(http.StatusOK, finishedResponse{Status: "finished"})
		return
	}
	c.JSON(http.StatusOK, next.Card)
}
