package auth

import (
	"context"
	"crypto/rand"
	"os"
	"strings"
	"time"

	"watchlikemeBackend/config"
	"watchlikemeBackend/utils"

	"github.com/charmbracelet/log"
	"github.com/coreos/go-oidc"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

type (
	AuthManager interface {
		CreateSessionToken(userId string, email string) (string, error)
		AuthenticateUser(tokenString string) (*AuthenticatedUser, error)
		AuthenticatorMiddleware() gin.HandlerFunc
		OptionalMiddleware() gin.HandlerFunc
		GetAuthCodeURL(stateToken string) string
		AuthenticateWithCode(ctx context.Context, authCode string) (*GoogleIdentity, *oauth2.Token, error)
		OAuthConfig() *oauth2.Config
	}

	authManager struct {
		config       *config.WatchLikeMeConfig
		oauth2Config oauth2.Config
		provider     *oidc.Provider
		googleSecret string
		jwtSecret    []byte
		sessionTTL   time.Duration
	}

	AuthenticatedUser struct {
		// The UUID of the user
		UserId string
		Email  string
	}

	// GoogleIdentity is the verified claim set of a Google sign-in.
	GoogleIdentity struct {
		Sub   string
		Email string
		Name  string
	}
)

// SessionCookie carries the signed session token. AuthSuccessCookie is a
// transient, client-visible signal that a Google login round trip finished.
const SessionCookie = "token"
const AuthSuccessCookie = "auth_success"

const googleIssuer = "https://accounts.google.com"
const scopeYouTubeReadonly = "https://www.googleapis.com/auth/youtube.readonly"

func CreateAuthManager(config *config.WatchLikeMeConfig) AuthManager {
	jwtSecret := os.Getenv("WLM_SESSION_SECRET")
	if jwtSecret == "" {
		log.Warn("WLM_SESSION_SECRET is not set, sessions will not survive a restart!")
		jwtSecret = rand.Text()
	}

	authManager := &authManager{
		config:       config,
		jwtSecret:    ([]byte)(jwtSecret),
		googleSecret: os.Getenv("WLM_GOOGLE_CLIENT_SECRET"),
		sessionTTL:   time.Duration(config.Auth.SessionHours) * time.Hour,
	}

	authManager.init(config)

	return authManager
}

func (m *authManager) init(config *config.WatchLikeMeConfig) {
	if !config.Auth.EnableGoogle {
		// Local credential login only, skip the provider handshake
		return
	}

	provider, err := oidc.NewProvider(context.Background(), googleIssuer)
	if err != nil {
		log.Fatalf("Failed to connect to Google OpenID provider: %s", err.Error())
		os.Exit(1)
	}

	m.provider = provider
	m.oauth2Config = oauth2.Config{
		ClientID:     config.Auth.GoogleClientId,
		ClientSecret: m.googleSecret,
		RedirectURL:  config.Auth.GoogleRedirectURL,
		Endpoint:     provider.Endpoint(),
		Scopes:       []string{oidc.ScopeOpenID, "email", "profile", scopeYouTubeReadonly},
	}
}

func (m *authManager) OAuthConfig() *oauth2.Config {
	return &m.oauth2Config
}

func (m *authManager) AuthenticatorMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		tokenString := extractSessionToken(ctx)
		if tokenString == "" {
			ctx.JSON(utils.CreateErrorResponse(utils.ErrorUnauthorized))
			ctx.Abort()
			return
		}

		if user, err := m.AuthenticateUser(tokenString); err != nil {
			clearSessionCookies(ctx)
			ctx.JSON(utils.CreateErrorResponse(utils.ErrorTokenInvalid))
			ctx.Abort()
			return
		} else {
			ctx.Set("authUser", *user)
			ctx.Next()
		}
	}
}

// OptionalMiddleware attaches the authenticated user when a valid session
// token is present but never rejects the request. Anonymous callers simply
// proceed without an identity.
func (m *authManager) OptionalMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		tokenString := extractSessionToken(ctx)
		if tokenString == "" {
			ctx.Next()
			return
		}

		if user, err := m.AuthenticateUser(tokenString); err == nil {
			ctx.Set("authUser", *user)
		}
		ctx.Next()
	}
}

// extractSessionToken prefers the session cookie and falls back to an
// Authorization bearer header for non-browser clients.
func extractSessionToken(ctx *gin.Context) string {
	if token, err := ctx.Cookie(SessionCookie); err == nil && token != "" {
		return token
	}

	header := ctx.GetHeader("Authorization")
	if rest, found := strings.CutPrefix(header, "Bearer "); found {
		return strings.TrimSpace(rest)
	}

	return ""
}

func clearSessionCookies(ctx *gin.Context) {
	ctx.SetCookie(SessionCookie, "", -1, "/", "", false, true)
	ctx.SetCookie(AuthSuccessCookie, "", -1, "/", "", false, false)
}

func (m *authManager) GetAuthCodeURL(stateToken string) string {
	// Offline access with forced consent so Google returns a refresh token
	// even when the user granted the scopes before.
	return m.oauth2Config.AuthCodeURL(
		stateToken,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
}

func (m *authManager) AuthenticateWithCode(ctx context.Context, authCode string) (*GoogleIdentity, *oauth2.Token, error) {
	token, err := m.oauth2Config.Exchange(ctx, authCode)
	if err != nil {
		log.Errorf("[AUTH] OAuth token exchange failed: %s", err.Error())
		return nil, nil, utils.ErrorOpenIDError
	}

	info, err := m.provider.UserInfo(ctx, m.oauth2Config.TokenSource(ctx, token))
	if err != nil {
		log.Errorf("[AUTH] Failed to get oauth userinfo: %s", err.Error())
		return nil, nil, utils.ErrorOpenIDError
	}

	var claims struct {
		Sub   string `json:"sub"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}

	if err := info.Claims(&claims); err != nil {
		log.Warnf("[AUTH] Failed to parse claims from userinfo: %s", err.Error())
		return nil, nil, utils.ErrorOpenIDError
	}

	if claims.Sub == "" || claims.Email == "" {
		return nil, nil, utils.ErrorOpenIDError
	}

	return &GoogleIdentity{
		Sub:   claims.Sub,
		Email: claims.Email,
		Name:  claims.Name,
	}, token, nil
}

func (m *authManager) AuthenticateUser(tokenString string) (*AuthenticatedUser, error) {
	if token, err := jwt.Parse(tokenString, m.tokenParser); err != nil {
		return nil, utils.ErrorTokenInvalid
	} else if tokenClaims, ok := token.Claims.(jwt.MapClaims); !ok {
		return nil, utils.ErrorTokenInvalid
	} else if userId, ok := tokenClaims["id"].(string); !ok {
		return nil, utils.ErrorTokenInvalid
	} else if email, ok := tokenClaims["email"].(string); !ok {
		return nil, utils.ErrorTokenInvalid
	} else {
		return &AuthenticatedUser{UserId: userId, Email: email}, nil
	}
}

func (m *authManager) CreateSessionToken(userId string, email string) (string, error) {
	wlmToken := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":    userId,
		"email": email,
		"nbf":   time.Now().Unix(),
		"exp":   time.Now().Add(m.sessionTTL).Unix(),
	})

	return wlmToken.SignedString(m.jwtSecret)
}

func (m *authManager) tokenParser(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, utils.ErrorTokenInvalid
	}

	return m.jwtSecret, nil
}
