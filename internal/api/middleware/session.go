package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"resumeBuilder/internal/auth"
)

const sessionEmailKey = "sessionEmail"

// SessionResolver 将会话令牌解析为登录邮箱。
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (string, error)
}

// SessionMiddleware 读取会话 Cookie，有效时把邮箱注入上下文；无效时静默跳过。
func SessionMiddleware(resolver SessionResolver, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(cookieName)
		if err != nil || token == "" {
			c.Next()
			return
		}

		email, err := resolver.Resolve(c.Request.Context(), token)
		switch {
		case err == nil:
			c.Set(sessionEmailKey, email)
		case errors.Is(err, auth.ErrInvalidSession):
		default:
			LoggerFromContext(c).Error("resolve session failed", slog.Any("error", err))
		}
		c.Next()
	}
}

// RequireSession 未登录时重定向到 redirectTo，不执行后续处理器。
func RequireSession(redirectTo string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := EmailFromContext(c); !ok {
			c.Redirect(http.StatusFound, redirectTo)
			c.Abort()
			return
		}
		c.Next()
	}
}

// EmailFromContext 返回当前会话的邮箱。
func EmailFromContext(c *gin.Context) (string, bool) {
	if value, ok := c.Get(sessionEmailKey); ok {
		if email, ok := value.(string); ok && email != "" {
			return email, true
		}
	}
	return "", false
}

// SetSessionEmail 在登录或注册成功后立即标记当前请求为已登录。
func SetSessionEmail(c *gin.Context, email string) {
	c.Set(sessionEmailKey, email)
}
