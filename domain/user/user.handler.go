package user

import (
	"net/http"
	"strings"

	"watchlikemeBackend/auth"
	"watchlikemeBackend/config"
	"watchlikemeBackend/utils"

	"github.com/gin-gonic/gin"
)

type (
	Handler interface {
		Register(ctx *gin.Context)
		Login(ctx *gin.Context)
		Logout(ctx *gin.Context)
		LoginGoogle(ctx *gin.Context)
		LoginGoogleCallback(ctx *gin.Context)
		Session(ctx *gin.Context)
	}

	userHandler struct {
		userService   Service
		publicOrigin  string
		googleEnabled bool
	}
)

func CreateHandler(userService Service, config *config.WatchLikeMeConfig) Handler {
	return &userHandler{
		userService:   userService,
		publicOrigin:  config.Server.PublicOrigin,
		googleEnabled: config.Auth.EnableGoogle,
	}
}

func (h *userHandler) Register(ctx *gin.Context) {
	payload := RegisterIn{}
	if err := ctx.Bind(&payload); err != nil {
		ctx.JSON(utils.CreateErrorResponse(utils.ErrorValidationError))
		return
	}

	result, err := h.userService.Register(ctx, payload)
	if err != nil {
		ctx.JSON(utils.CreateErrorResponse(err))
		return
	}

	ctx.JSON(utils.CreateCreatedResponse(result))
}

func (h *userHandler) Login(ctx *gin.Context) {
	payload := CredentialsIn{}
	if err := ctx.Bind(&payload); err != nil {
		ctx.JSON(utils.CreateErrorResponse(utils.ErrorInvalidCredentials))
		return
	}

	result, err := h.userService.LoginNative(ctx, payload)
	if err != nil {
		ctx.JSON(utils.CreateErrorResponse(err))
		return
	}

	ctx.SetCookie(auth.SessionCookie, result.Token, 0, "/", "", false, true)
	ctx.JSON(utils.CreateOkResponse(result))
}

func (h *userHandler) Logout(ctx *gin.Context) {
	ctx.SetCookie(auth.SessionCookie, "", -1, "/", "", false, true)
	ctx.SetCookie(auth.AuthSuccessCookie, "", -1, "/", "", false, false)
	ctx.JSON(utils.CreateOkResponse[any](nil))
}

func (h *userHandler) LoginGoogle(ctx *gin.Context) {
	if !h.googleEnabled {
		ctx.JSON(utils.CreateErrorResponse(utils.ErrorNotFound))
		return
	}

	// The state carries the post-login target so the callback knows where
	// to send the browser back to.
	target := safeRedirectTarget(h.publicOrigin, ctx.Query("redirect"))

	url := h.userService.GetAuthCodeURL(target)
	http.Redirect(ctx.Writer, ctx.Request, url, http.StatusFound)
}

func (h *userHandler) LoginGoogleCallback(ctx *gin.Context) {
	if !h.googleEnabled {
		ctx.JSON(utils.CreateErrorResponse(utils.ErrorNotFound))
		return
	}

	token, err := h.userService.LoginWithGoogle(ctx, ctx.Query("code"))
	if err != nil {
		ctx.JSON(utils.CreateErrorResponse(err))
		return
	}

	ctx.SetCookie(auth.SessionCookie, token, 0, "/", "", false, true)
	ctx.SetCookie(auth.AuthSuccessCookie, "true", 0, "/", "", false, false)

	target := safeRedirectTarget(h.publicOrigin, ctx.Query("state"))
	http.Redirect(ctx.Writer, ctx.Request, target, http.StatusFound)
}

// safeRedirectTarget confines post-login redirects to our own origin. The
// state value round-trips through the client, so anything that is not a
// relative path or a public-origin URL falls back to the public origin.
func safeRedirectTarget(publicOrigin string, target string) string {
	if strings.HasPrefix(target, "/") && !strings.HasPrefix(target, "//") && !strings.HasPrefix(target, "/\\") {
		return publicOrigin + target
	}
	if target == publicOrigin || strings.HasPrefix(target, publicOrigin+"/") {
		return target
	}
	return publicOrigin
}

func (h *userHandler) Session(ctx *gin.Context) {
	authUser := ctx.MustGet("authUser").(auth.AuthenticatedUser)
	result, err := h.userService.Session(ctx, authUser)
	if err != nil {
		ctx.JSON(utils.CreateErrorResponse(err))
		return
	}

	ctx.JSON(utils.CreateOkResponse(result))
}
