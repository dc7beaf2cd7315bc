package controller

import (
	"civilprep_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

// currentUserID 未登录时写入 401 并返回 false
func currentUserID(ctx *gin.Context) (uint, bool) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return 0, false
	}
	return claims.UserID, true
}

// pathID 解析 :id 路径参数，非法时写入 400
func pathID(ctx *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil || id == 0 {
		util.BadRequest(ctx, "invalid id")
		return 0, false
	}
	return uint(id), true
}
