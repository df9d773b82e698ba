package auth

import (
	"context"
	"errors"
	"net/http"
	"time"

	"watchlikemeBackend/utils"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type (
	// TokenManager keeps one Google token record per user and serves a
	// currently valid access token, refreshing stale ones on demand.
	TokenManager interface {
		Store(ctx context.Context, userId string, token *oauth2.Token) error
		Get(ctx context.Context, userId string) (*oauth2.Token, bool, error)
		EnsureFresh(ctx context.Context, userId string) (*oauth2.Token, error)
		Client(ctx context.Context, token *oauth2.Token) *http.Client
	}

	tokenManager struct {
		db           *gorm.DB
		oauth2Config *oauth2.Config
		now          func() time.Time
	}

	// GoogleToken is the stored third-party token set. Token values are
	// sensitive and must never be logged or sent to a client.
	GoogleToken struct {
		gorm.Model
		UserUUID     string `gorm:"uniqueIndex"`
		AccessToken  string
		RefreshToken string
		TokenType    string
		Expiry       time.Time
	}
)

// RefreshSkew is how far ahead of expiry a token is already considered
// stale, so a request never runs with a token that dies mid-flight.
const RefreshSkew = 5 * time.Minute

func CreateTokenManager(db *gorm.DB, oauth2Config *oauth2.Config) TokenManager {
	return &tokenManager{
		db:           db,
		oauth2Config: oauth2Config,
		now:          time.Now,
	}
}

func (m *tokenManager) Store(ctx context.Context, userId string, token *oauth2.Token) error {
	record := &GoogleToken{
		UserUUID:     userId,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenType:    token.TokenType,
		Expiry:       token.Expiry,
	}

	// Re-linking overwrites the previous record. A refresh exchange may
	// omit the refresh token, in which case the stored one stays valid.
	assignments := []string{"access_token", "token_type", "expiry", "updated_at"}
	if token.RefreshToken != "" {
		assignments = append(assignments, "refresh_token")
	}

	return m.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_uuid"}},
		DoUpdates: clause.AssignmentColumns(assignments),
	}).Create(record).Error
}

func (m *tokenManager) Get(ctx context.Context, userId string) (*oauth2.Token, bool, error) {
	record := &GoogleToken{}
	result := m.db.WithContext(ctx).Where("user_uuid = ?", userId).First(record)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, false, nil
	} else if result.Error != nil {
		return nil, false, result.Error
	}

	return &oauth2.Token{
		AccessToken:  record.AccessToken,
		RefreshToken: record.RefreshToken,
		TokenType:    record.TokenType,
		Expiry:       record.Expiry,
	}, true, nil
}

func (m *tokenManager) EnsureFresh(ctx context.Context, userId string) (*oauth2.Token, error) {
	token, found, err := m.Get(ctx, userId)
	if err != nil {
		return nil, err
	} else if !found {
		return nil, utils.ErrorGoogleAuthRequired
	}

	if token.Expiry.After(m.now().Add(RefreshSkew)) {
		return token, nil
	}

	// Concurrent refreshes for the same user are tolerated, Google accepts
	// repeated refresh-token exchanges and the last write wins.
	fresh, err := m.oauth2Config.TokenSource(ctx, &oauth2.Token{RefreshToken: token.RefreshToken}).Token()
	if err != nil {
		log.Warn("Google token refresh failed, re-link required.", "user", userId)
		return nil, utils.ErrorGoogleAuthRequired
	}

	if fresh.RefreshToken == "" {
		fresh.RefreshToken = token.RefreshToken
	}

	if err := m.Store(ctx, userId, fresh); err != nil {
		return nil, err
	}

	return fresh, nil
}

// Client builds a per-request HTTP client around the given token. Nothing
// is shared between requests, so no caller can observe another caller's
// credentials.
func (m *tokenManager) Client(ctx context.Context, token *oauth2.Token) *http.Client {
	return oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))
}
