package handlers

import (
	"companionhub/utils"

	"github.com/gin-gonic/gin"
)

// listQuery is the query string shared by paginated listings.
type listQuery struct {
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
	Status string `form:"status"`
	Scope  string `form:"scope"`
	Role   string `form:"role"`
}

func bindListQuery(c *gin.Context) (listQuery, error) {
	var q listQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		return q, utils.ValidationError("page and limit must be integers")
	}
	return q, nil
}
