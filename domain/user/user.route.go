package user

import (
	"watchlikemeBackend/auth"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(route *gin.Engine, handler Handler, authManager auth.AuthManager, loginLimiter gin.HandlerFunc) {
	routes := route.Group("/auth")
	{
		routes.POST("/register", loginLimiter, handler.Register)
		routes.POST("/login", loginLimiter, handler.Login)
		routes.POST("/logout", handler.Logout)
		routes.GET("/google", handler.LoginGoogle)
		routes.GET("/google/callback", handler.LoginGoogleCallback)
		routes.GET("/session", authManager.AuthenticatorMiddleware(), handler.Session)
	}
}
