package main

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/nplaceworks/adrank_backend/utils"
)

const defaultPageSize = 20

// sessionIdentity pulls the resolved session out of the request context.
// RequireUser guarantees the user id is present on protected routes.
func sessionIdentity(c *gin.Context) (businessId string, userId int, isAdmin bool) {
	businessId, _ = utils.GetBusinessIdFromContext(c.Request.Context())
	userId, _ = utils.GetUserIdFromContext(c.Request.Context())
	isAdmin, _ = utils.GetIsAdminFromContext(c.Request.Context())
	return businessId, userId, isAdmin
}

func pathId(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func pageParams(c *gin.Context) (limit, offset int) {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit <= 0 || limit > 100 {
		limit = defaultPageSize
	}
	offset, err = strconv.Atoi(c.Query("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}
