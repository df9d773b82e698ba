package catalog

import (
	"watchlikemeBackend/auth"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(route *gin.Engine, handler Handler, authManager auth.AuthManager) {
	routes := route.Group("/youtube", authManager.AuthenticatorMiddleware())
	{
		routes.GET("/subscriptions", handler.Subscriptions)
	}
}
