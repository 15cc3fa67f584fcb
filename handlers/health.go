package handlers

import (
	"net/http"

	"kinecare/utils"

	"github.com/gin-gonic/gin"
)

// Health returns the latest stored Mongo/Redis health snapshot.
func Health(c *gin.Context) {
	status := utils.GetHealthStatus()
	code := http.StatusOK
	if !status.Mongo {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, status)
}
