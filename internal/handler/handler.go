package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/gym-ops-api/pkg/errors"
	"github.com/noah-isme/gym-ops-api/pkg/response"
)

// OperationRecorder counts ledger operation outcomes.
type OperationRecorder interface {
	RecordOperation(operation, outcome string)
}

func record(rec OperationRecorder, operation string, err error) {
	if rec == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = appErrors.FromError(err).Code
	}
	rec.RecordOperation(operation, outcome)
}

func bindJSON(c *gin.Context, dest interface{}, what string) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInvalidInput.Code, http.StatusBadRequest, "invalid "+what+" payload"))
		return false
	}
	return true
}
