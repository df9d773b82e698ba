package catalog

import (
	"watchlikemeBackend/auth"
	"watchlikemeBackend/utils"

	"github.com/gin-gonic/gin"
)

type (
	Handler interface {
		Subscriptions(ctx *gin.Context)
	}

	catalogHandler struct {
		catalogService Service
	}
)

func CreateHandler(catalogService Service) Handler {
	return &catalogHandler{
		catalogService: catalogService,
	}
}

func (h *catalogHandler) Subscriptions(ctx *gin.Context) {
	authUser := ctx.MustGet("authUser").(auth.AuthenticatedUser)
	result, err := h.catalogService.MirrorSubscriptions(ctx, authUser)
	if err != nil {
		ctx.JSON(utils.CreateErrorResponse(err))
		return
	}

	ctx.JSON(utils.CreateOkResponse(result))
}
