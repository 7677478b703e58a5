package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// parsePagination reads offset and limit query parameters. Limit is capped
// at 100 and defaults to 20.
func parsePagination(c *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return offset, limit
}
