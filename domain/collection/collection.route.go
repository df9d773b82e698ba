package collection

import (
	"watchlikemeBackend/auth"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(route *gin.Engine, handler Handler, authManager auth.AuthManager) {
	routes := route.Group("/collections", authManager.AuthenticatorMiddleware())
	{
		routes.GET("", handler.Get)
		routes.POST("", handler.Create)
		routes.GET("/:slug", handler.GetDetail)
		routes.PUT("/:slug", handler.Update)
		routes.POST("/:slug/items", handler.AddItem)
		routes.DELETE("/:slug/items/:itemId", handler.RemoveItem)
		routes.POST("/:slug/like", handler.Like)
		routes.DELETE("/:slug/like", handler.Unlike)
		routes.POST("/:slug/grantAccess", handler.GrantAccess)
	}

	// Anonymous read path, gated solely on the public flag. The optional
	// middleware only enriches the response with the viewer's like state.
	route.GET("/public/:username/:slug", authManager.OptionalMiddleware(), handler.GetPublic)
}
