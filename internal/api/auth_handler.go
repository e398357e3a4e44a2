package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"resumeBuilder/internal/api/middleware"
	"resumeBuilder/internal/auth"
	"resumeBuilder/internal/database"
	"resumeBuilder/internal/store"
	"resumeBuilder/internal/validation"
)

// SessionIssuer 签发与注销会话令牌。
type SessionIssuer interface {
	Issue(email string) (string, error)
	Revoke(ctx context.Context, token string) error
}

// AuthHandler 处理注册、登录、退出与用户面板。
type AuthHandler struct {
	users                 store.UserStore
	sessions              SessionIssuer
	rateCounter           redisRateCounter
	cookieName            string
	loginRateLimitPerHour int
	logger                *slog.Logger
	now                   func() time.Time
}

// NewAuthHandler 构造认证处理器。rateCounter 为 nil 时不做登录限流。
func NewAuthHandler(users store.UserStore, sessions SessionIssuer, rateCounter redisRateCounter, cookieName string, loginRateLimitPerHour int, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		users:                 users,
		sessions:              sessions,
		rateCounter:           rateCounter,
		cookieName:            cookieName,
		loginRateLimitPerHour: loginRateLimitPerHour,
		logger:                logger,
		now:                   time.Now,
	}
}

type signupForm struct {
	FirstName string `form:"fname" label:"first name" binding:"required"`
	LastName  string `form:"lname" label:"last name" binding:"required"`
	Email     string `form:"email" label:"email" binding:"required"`
	Password  string `form:"password" label:"password" binding:"required"`
}

type loginForm struct {
	Email    string `form:"email" label:"email" binding:"required"`
	Password string `form:"password" label:"password" binding:"required"`
}

// Index 渲染首页。
func (h *AuthHandler) Index(c *gin.Context) {
	renderPage(c, http.StatusOK, "index.html", pageData(c, "Resume Builder"))
}

// ShowSignup 渲染注册表单。
func (h *AuthHandler) ShowSignup(c *gin.Context) {
	renderPage(c, http.StatusOK, "signup.html", pageData(c, "Sign up"))
}

// Signup 创建账号和空简历，并直接登录。
func (h *AuthHandler) Signup(c *gin.Context) {
	var form signupForm
	bindErr := c.ShouldBind(&form)
	data := pageData(c, "Sign up")
	data["Form"] = map[string]string{"fname": form.FirstName, "lname": form.LastName, "email": form.Email}
	if bindErr != nil {
		data["Error"] = validation.Message(bindErr)
		renderPage(c, http.StatusBadRequest, "signup.html", data)
		return
	}

	ctx := c.Request.Context()
	email := strings.TrimSpace(form.Email)
	logger := h.loggerFromContext(c).With(slog.String("email", email))

	hashed, err := auth.HashPassword(form.Password)
	if errors.Is(err, auth.ErrPasswordTooLong) {
		data["Error"] = passwordTooLongMsg
		renderPage(c, http.StatusBadRequest, "signup.html", data)
		return
	}
	if err != nil {
		logger.Error("signup hash password failed", slog.Any("error", err))
		data["Error"] = genericErrorMessage
		renderPage(c, http.StatusInternalServerError, "signup.html", data)
		return
	}

	user := database.User{
		Name:         strings.TrimSpace(form.FirstName) + " " + strings.TrimSpace(form.LastName),
		Email:        email,
		PasswordHash: hashed,
	}
	if err := h.users.CreateWithResume(ctx, &user); err != nil {
		if errors.Is(err, store.ErrEmailTaken) {
			logger.Info("signup conflict: email already registered")
			data["Error"] = emailTakenMessage
			renderPage(c, http.StatusConflict, "signup.html", data)
			return
		}
		logger.Error("signup create user failed", slog.Any("error", err))
		data["Error"] = genericErrorMessage
		renderPage(c, http.StatusInternalServerError, "signup.html", data)
		return
	}

	if err := h.startSession(c, user.Email); err != nil {
		logger.Error("signup issue session failed", slog.Any("error", err))
		data["Error"] = genericErrorMessage
		renderPage(c, http.StatusInternalServerError, "signup.html", data)
		return
	}

	logger.Info("user signed up", slog.Uint64("user_id", uint64(user.ID)))
	redirect(c, "/dashboard.html")
}

// ShowLogin 渲染登录表单。
func (h *AuthHandler) ShowLogin(c *gin.Context) {
	renderPage(c, http.StatusOK, "login.html", pageData(c, "Log in"))
}

// Login 校验邮箱与密码并建立会话。
func (h *AuthHandler) Login(c *gin.Context) {
	var form loginForm
	bindErr := c.ShouldBind(&form)
	data := pageData(c, "Log in")
	data["Form"] = map[string]string{"email": form.Email}
	if bindErr != nil {
		data["Error"] = validation.Message(bindErr)
		renderPage(c, http.StatusBadRequest, "login.html", data)
		return
	}

	ctx := c.Request.Context()
	email := strings.TrimSpace(form.Email)
	logger := h.loggerFromContext(c).With(slog.String("email", email))

	if h.rateLimited(ctx, logger, c.ClientIP(), email) {
		logger.Warn("login rate limited", slog.String("client_ip", c.ClientIP()))
		data["Error"] = rateLimitedMessage
		renderPage(c, http.StatusTooManyRequests, "login.html", data)
		return
	}

	user, err := h.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			logger.Info("login unknown email")
			data["Error"] = noAccountMessage
			renderPage(c, http.StatusUnauthorized, "login.html", data)
			return
		}
		logger.Error("login lookup failed", slog.Any("error", err))
		data["Error"] = genericErrorMessage
		renderPage(c, http.StatusInternalServerError, "login.html", data)
		return
	}

	if !auth.CheckPasswordHash(form.Password, user.PasswordHash) {
		logger.Info("login wrong password")
		data["Error"] = wrongPasswordMsg
		renderPage(c, http.StatusUnauthorized, "login.html", data)
		return
	}

	if err := h.startSession(c, user.Email); err != nil {
		logger.Error("login issue session failed", slog.Any("error", err))
		data["Error"] = genericErrorMessage
		renderPage(c, http.StatusInternalServerError, "login.html", data)
		return
	}

	logger.Info("user logged in")
	redirect(c, "/dashboard.html")
}

// Logout 注销当前令牌并清除 Cookie。
func (h *AuthHandler) Logout(c *gin.Context) {
	if token, err := c.Cookie(h.cookieName); err == nil && token != "" {
		if err := h.sessions.Revoke(c.Request.Context(), token); err != nil {
			h.loggerFromContext(c).Error("logout revoke session failed", slog.Any("error", err))
		}
	}

	http.SetCookie(c.Writer, &http.Cookie{
		Name:     h.cookieName,
		Value:    "",
		MaxAge:   -1,
		Path:     "/",
		Secure:   isHTTPSRequest(c),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	redirect(c, "/login.html")
}

// Dashboard 渲染登录后的首页。
func (h *AuthHandler) Dashboard(c *gin.Context) {
	renderPage(c, http.StatusOK, "dashboard.html", pageData(c, "Dashboard"))
}

// startSession 签发令牌并写入会话 Cookie（无 MaxAge，浏览器关闭即失效）。
func (h *AuthHandler) startSession(c *gin.Context, email string) error {
	token, err := h.sessions.Issue(email)
	if err != nil {
		return err
	}
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     h.cookieName,
		Value:    token,
		Path:     "/",
		Secure:   isHTTPSRequest(c),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	middleware.SetSessionEmail(c, email)
	return nil
}

// rateLimited 计数本次登录尝试。Redis 不可用时放行。
func (h *AuthHandler) rateLimited(ctx context.Context, logger *slog.Logger, ip, email string) bool {
	if h.rateCounter == nil || h.loginRateLimitPerHour <= 0 {
		return false
	}
	count, err := incrWithTTL(ctx, h.rateCounter, loginRateKey(ip, email, h.now()), time.Hour)
	if err != nil {
		logger.Warn("login rate counter unavailable", slog.Any("error", err))
		return false
	}
	return count > int64(h.loginRateLimitPerHour)
}

func (h *AuthHandler) loggerFromContext(c *gin.Context) *slog.Logger {
	return middleware.LoggerFromContextOr(c, h.logger)
}

func isHTTPSRequest(c *gin.Context) bool {
	if c.Request == nil {
		return false
	}
	if c.Request.TLS != nil {
		return true
	}
	return strings.EqualFold(c.Request.Header.Get("X-Forwarded-Proto"), "https")
}
