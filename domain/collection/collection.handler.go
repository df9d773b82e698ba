package collection

import (
	"watchlikemeBackend/auth"
	"watchlikemeBackend/utils"

	"github.com/gin-gonic/gin"
)

type (
	Handler interface {
		Get(ctx *gin.Context)
		Create(ctx *gin.Context)
		GetDetail(ctx *gin.Context)
		Update(ctx *gin.Context)
		AddItem(ctx *gin.Context)
		RemoveItem(ctx *gin.Context)
		Like(ctx *gin.Context)
		Unlike(ctx *gin.Context)
		GrantAccess(ctx *gin.Context)
		GetPublic(ctx *gin.Context)
	}

	collectionHandler struct {
		collectionService Service
	}
)

func CreateHandler(collectionService Service) Handler {
	return &collectionHandler{
		collectionService: collectionService,
	}
}

func (h *collectionHandler) Get(ctx *gin.Context) {
	authUser := ctx.MustGet("authUser").(auth.AuthenticatedUser)
	result, err := h.collectionService.Get(ctx, authUser)
	if err != nil {
		ctx.JSON(utils.CreateErrorResponse(err))
		return
	}

	ctx.JSON(utils.CreateOkResponse(result))
}

func (h *collectionHandler) Create(ctx *gin.Context) {
	payload := CollectionIn{}
	if err := ctx.Bind(&payload); err != nil {
		ctx.JSON(utils.CreateErrorResponse(utils.ErrorValidationError))
		return
	}

	authUser := ctx.MustGet("authUser").(auth.AuthenticatedUser)
	result, err := h.collectionService.Create(ctx, payload, authUser)
	if err != nil {
		ctx.JSON(utils.CreateErrorResponse(err))
		return
	}

	ctx.JSON(utils.CreateCreatedResponse(result))
}

// GetDetail serves the caller's own collection by default; shared
// collections are addressed with the ?owner=<username> query.
func (h *collectionHandler) GetDetail(ctx *gin.Context) {
	authUser := ctx.MustGet("authUser").(auth.AuthenticatedUser)
	result, err := h.collectionService.GetDetail(ctx, ctx.Query("owner"), ctx.Param("slug"), authUser)
	if err != nil {
		ctx.JSON(utils.CreateErrorResponse(err))
		return
	}

	ctx.JSON(utils.CreateOkResponse(result))
}

func (h *collectionHandler) Update(ctx *gin.Context) {
	payload := CollectionUpdateIn{}
	if err := ctx.Bind(&payload); err != nil {
		ctx.JSON(utils.CreateErrorResponse(utils.ErrorValidationError))
		return
	}

	authUser := ctx.MustGet("authUser").(auth.AuthenticatedUser)
	result, err := h.collectionService.Update(ctx, ctx.Param("slug"), payload, authUser)
	if err != nil {
		ctx.JSON(utils.CreateErrorResponse(err))
		return
	}

	ctx.JSON(utils.CreateOkResponse(result))
}

func (h *collectionHandler) AddItem(ctx *gin.Context) {
	payload := ItemIn{}
	if err := ctx.Bind(&payload); err != nil {
		ctx.JSON(utils.CreateErrorResponse(utils.ErrorValidationError))
		return
	}

	authUser := ctx.MustGet("authUser").(auth.AuthenticatedUser)
	result, err := h.collectionService.AddItem(ctx, ctx.Param("slug"), payload, authUser)
	if err != nil {
		ctx.JSON(utils.CreateErrorResponse(err))
		return
	}

	ctx.JSON(utils.CreateCreatedResponse(result))
}

func (h *collectionHandler) RemoveItem(ctx *gin.Context) {
	authUser := ctx.MustGet("authUser").(auth.AuthenticatedUser)
	if err := h.collectionService.RemoveItem(ctx, ctx.Param("slug"), ctx.Param("itemId"), authUser); err != nil {
		ctx.JSON(utils.CreateErrorResponse(err))
		return
	}

	ctx.JSON(utils.CreateOkResponse[any](nil))
}

func (h *collectionHandler) Like(ctx *gin.Context) {
	authUser := ctx.MustGet("authUser").(auth.AuthenticatedUser)
	if err := h.collectionService.Like(ctx, ctx.Query("owner"), ctx.Param("slug"), authUser); err != nil {
		ctx.JSON(utils.CreateErrorResponse(err))
		return
	}

	ctx.JSON(utils.CreateOkResponse[any](nil))
}

func (h *collectionHandler) Unlike(ctx *gin.Context) {
	authUser := ctx.MustGet("authUser").(auth.AuthenticatedUser)
	if err := h.collectionService.Unlike(ctx, ctx.Query("owner"), ctx.Param("slug"), authUser); err != nil {
		ctx.JSON(utils.CreateErrorResponse(err))
		return
	}

	ctx.JSON(utils.CreateOkResponse[any](nil))
}

func (h *collectionHandler) GrantAccess(ctx *gin.Context) {
	payload := GrantIn{}
	if err := ctx.Bind(&payload); err != nil {
		ctx.JSON(utils.CreateErrorResponse(utils.ErrorValidationError))
		return
	}

	authUser := ctx.MustGet("authUser").(auth.AuthenticatedUser)
	if err := h.collectionService.GrantAccess(ctx, ctx.Param("slug"), payload, authUser); err != nil {
		ctx.JSON(utils.CreateErrorResponse(err))
		return
	}

	ctx.JSON(utils.CreateOkResponse[any](nil))
}

func (h *collectionHandler) GetPublic(ctx *gin.Context) {
	var authUser *auth.AuthenticatedUser
	if value, exists := ctx.Get("authUser"); exists {
		if user, ok := value.(auth.AuthenticatedUser); ok {
			authUser = &user
		}
	}

	result, err := h.collectionService.GetPublic(ctx, ctx.Param("username"), ctx.Param("slug"), authUser)
	if err != nil {
		ctx.JSON(utils.CreateErrorResponse(err))
		return
	}

	ctx.JSON(utils.CreateOkResponse(result))
}
