package auth

import (
	"chequeai/models"
	"net/http"

	"github.com/gin-gonic/gin"
)

// HandlerFunc is called only for logged in users
type HandlerFunc func(c *gin.Context, user *models.User)

// Router is a wrapper that adds the session check and user loading to the routes
type Router struct {
	Base gin.IRoutes
}

var accessDenied = gin.H{"message": "Access token required"}

func (cr *Router) baseExec(c *gin.Context, handler HandlerFunc) {
	session := LoadSession(c)
	user := session.User()
	if user.ID == 0 {
		c.JSON(http.StatusUnauthorized, accessDenied)
		return
	}
	handler(c, &user)
}

func (cr *Router) handle(method, path string, handler HandlerFunc) {
	cr.Base.Handle(method, path, func(c *gin.Context) {
		cr.baseExec(c, handler)
	})
}

func (cr *Router) POST(path string, handler HandlerFunc) {
	cr.handle(http.MethodPost, path, handler)
}

func (cr *Router) GET(path string, handler HandlerFunc) {
	cr.handle(http.MethodGet, path, handler)
}

func (cr *Router) PUT(path string, handler HandlerFunc) {
	cr.handle(http.MethodPut, path, handler)
}

func (cr *Router) DELETE(path string, handler HandlerFunc) {
	cr.handle(http.MethodDelete, path, handler)
}
