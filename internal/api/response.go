package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resumeBuilder/internal/api/middleware"
)

const (
	genericErrorMessage = "Something went wrong. Please try again."
	emailTakenMessage   = "This email is already registered. Please log in."
	wrongPasswordMsg    = "Incorrect password. Please try again."
	noAccountMessage    = "No account found with that email. Please sign up first."
	rateLimitedMessage  = "Too many login attempts. Please try again later."
	unknownTemplateMsg  = "Please choose one of the available templates."
	passwordTooLongMsg  = "Password is too long. Use at most 72 characters."
)

// pageData 返回页面模板需要的公共字段。
func pageData(c *gin.Context, title string) gin.H {
	email, loggedIn := middleware.EmailFromContext(c)
	return gin.H{
		"Title":    title,
		"LoggedIn": loggedIn,
		"Email":    email,
		"Error":    "",
		"Form":     map[string]string{},
	}
}

func renderPage(c *gin.Context, status int, page string, data gin.H) {
	c.HTML(status, page, data)
}

func redirect(c *gin.Context, location string) {
	c.Redirect(http.StatusFound, location)
}

// currentEmail 在 RequireSession 之后调用；缺失说明路由未挂中间件。
func currentEmail(c *gin.Context) (string, bool) {
	email, ok := middleware.EmailFromContext(c)
	if !ok {
		redirect(c, "/login.html")
		c.Abort()
	}
	return email, ok
}
