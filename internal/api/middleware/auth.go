package middleware

import (
	"errors"
	"strings"

	"reelgo/internal/api/response"
	"reelgo/internal/model"
	"reelgo/pkg/utils"

	"github.com/gin-gonic/gin"
)

// ContextKeyUserID 登录用户 ID 在 gin.Context 里的键
const ContextKeyUserID = "currentUserID"

func abortUnauthorized(c *gin.Context, message string) {
	response.Unauthorized(c, message)
	c.Abort()
}

// AuthRequired JWT 认证中间件，要求请求必须携带有效 Token
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			abortUnauthorized(c, "缺少认证令牌")
			return
		}

		claims, err := utils.ParseToken(token)
		if err != nil {
			if errors.Is(err, utils.ErrExpiredToken) {
				abortUnauthorized(c, "认证令牌已过期")
			} else {
				abortUnauthorized(c, "无效的认证令牌")
			}
			return
		}

		c.Set(ContextKeyUserID, claims.UserID)
		c.Next()
	}
}

// AuthOptional 可选认证中间件，Token 有效时注入用户 ID，无 Token 或无效时按匿名请求放行
func AuthOptional() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := extractToken(c); token != "" {
			if claims, err := utils.ParseToken(token); err == nil {
				c.Set(ContextKeyUserID, claims.UserID)
			}
		}
		c.Next()
	}
}

// GetCurrentUserID 从 Gin Context 中获取当前登录用户 ID
func GetCurrentUserID(c *gin.Context) (int64, bool) {
	val, exists := c.Get(ContextKeyUserID)
	if !exists {
		return 0, false
	}
	userID, ok := val.(int64)
	return userID, ok
}

// UserRoleFetcher 按用户 ID 查询角色
type UserRoleFetcher func(userID int64) (string, error)

// AdminRequired 管理员权限中间件，必须挂在 AuthRequired 之后
// 角色实时查库，取消管理员后旧 token 立即失效
func AdminRequired(roleFetcher UserRoleFetcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := GetCurrentUserID(c)
		if !ok {
			abortUnauthorized(c, "缺少认证信息")
			return
		}

		role, err := roleFetcher(userID)
		if err != nil {
			abortUnauthorized(c, "用户不存在")
			return
		}

		if role != model.RoleAdmin {
			response.Forbidden(c, "需要管理员权限")
			c.Abort()
			return
		}

		c.Next()
	}
}

// extractToken 从 Authorization 头中取出 Bearer Token
func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}
