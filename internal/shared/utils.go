package shared

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// ParsePageWindow reads the limit and offset query parameters. Both must be
// integers, otherwise the default window is returned.
func ParsePageWindow(c *gin.Context, defaultLimit, defaultOffset int) (limit, offset int) {
	limit, limitErr := strconv.Atoi(c.Query("limit"))
	offset, offsetErr := strconv.Atoi(c.Query("offset"))
	if limitErr != nil || offsetErr != nil {
		return defaultLimit, defaultOffset
	}
	return limit, offset
}
