package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/healthbite/backend/pkg/utils"
)

// bindJSON decodes the request body, answering 413 for oversize bodies and
// 400 for everything else. It reports whether the handler may continue.
func bindJSON(c *gin.Context, dst interface{}, message string) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		utils.ErrorResponse(c, http.StatusRequestEntityTooLarge, "Request body too large")
		return false
	}
	utils.ErrorResponse(c, http.StatusBadRequest, message)
	return false
}

// StorageUnavailable answers user-data routes when Postgres is disabled.
func StorageUnavailable(c *gin.Context) {
	utils.ErrorResponse(c, http.StatusServiceUnavailable, "Storage unavailable")
}
