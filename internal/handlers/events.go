package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ListEvents returns the ordered event stream. since_seq and limit paginate;
// seq numbers are dense, so clients resume from the last seq they saw.
func ListEvents(c *gin.Context) {
	sinceStr := c.DefaultQuery("since_seq", "0")
	since, err := strconv.ParseUint(sinceStr, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "since_seq must be a non-negative integer"})
		return
	}

	limitStr := c.DefaultQuery("limit", "100")
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit < 1 || limit > 1000 {
		limit = 100
	}

	events := engine.EventLog().Events(since, limit)
	c.JSON(http.StatusOK, gin.H{"events": events})
}
