package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"watchlikemeBackend/auth"
	"watchlikemeBackend/utils"

	"github.com/charmbracelet/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type (
	Service interface {
		Register(ctx context.Context, req RegisterIn) (*UserOut, error)
		LoginNative(ctx context.Context, req CredentialsIn) (*LoginOut, error)
		GetAuthCodeURL(stateToken string) string
		LoginWithGoogle(ctx context.Context, authCode string) (string, error)
		Session(ctx context.Context, authUser auth.AuthenticatedUser) (*SessionOut, error)
	}

	userService struct {
		userRepo     Repository
		authManager  auth.AuthManager
		tokenManager auth.TokenManager
	}
)

func CreateService(userRepo Repository, authManager auth.AuthManager, tokenManager auth.TokenManager) Service {
	return &userService{
		userRepo:     userRepo,
		authManager:  authManager,
		tokenManager: tokenManager,
	}
}

func (s *userService) Register(ctx context.Context, req RegisterIn) (*UserOut, error) {
	if !utils.IsValidSlug(req.Username) {
		return nil, utils.ErrorValidationError
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	newUser := &User{
		UUID:         utils.GenerateUuid(),
		Email:        req.Email,
		Username:     req.Username,
		DisplayName:  req.Username,
		PasswordHash: string(hash),
		Role:         RoleUser,
	}

	if err := s.userRepo.Create(ctx, newUser); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, utils.ErrorUserExists
		}
		return nil, err
	}

	out := UserToOut(newUser)
	return &out, nil
}

func (s *userService) LoginNative(ctx context.Context, req CredentialsIn) (*LoginOut, error) {
	account, exists, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	} else if !exists {
		return nil, utils.ErrorInvalidCredentials
	}

	if account.PasswordHash == "" {
		// Google-only account, password login is not an option here
		return nil, utils.ErrorGoogleOnlyAccount
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)); err != nil {
		return nil, utils.ErrorInvalidCredentials
	}

	token, err := s.authManager.CreateSessionToken(account.UUID, account.Email)
	if err != nil {
		return nil, err
	}

	return &LoginOut{Token: token, User: UserToOut(account)}, nil
}

func (s *userService) GetAuthCodeURL(stateToken string) string {
	return s.authManager.GetAuthCodeURL(stateToken)
}

// LoginWithGoogle finishes the auth-code dance: it verifies the Google
// identity, upserts the matching account and persists the token set. The
// returned session token is independent of the Google link, a later token
// refresh failure never invalidates the session itself.
func (s *userService) LoginWithGoogle(ctx context.Context, authCode string) (string, error) {
	identity, oauthToken, err := s.authManager.AuthenticateWithCode(ctx, authCode)
	if err != nil {
		return "", err
	}

	account, err := s.upsertGoogleUser(ctx, identity)
	if err != nil {
		return "", err
	}

	if err := s.tokenManager.Store(ctx, account.UUID, oauthToken); err != nil {
		return "", err
	}

	return s.authManager.CreateSessionToken(account.UUID, account.Email)
}

func (s *userService) upsertGoogleUser(ctx context.Context, identity *auth.GoogleIdentity) (*User, error) {
	if account, exists, err := s.userRepo.GetBySub(ctx, identity.Sub); err != nil {
		return nil, err
	} else if exists {
		if identity.Name != "" && identity.Name != account.DisplayName {
			account.DisplayName = identity.Name
			if err := s.userRepo.Update(ctx, account); err != nil {
				return nil, err
			}
		}
		return account, nil
	}

	// Not linked yet. An existing local account with the same email
	// becomes a hybrid account.
	if account, exists, err := s.userRepo.GetByEmail(ctx, identity.Email); err != nil {
		return nil, err
	} else if exists {
		account.GoogleSub = identity.Sub
		if err := s.userRepo.Update(ctx, account); err != nil {
			return nil, err
		}
		log.Info("Linked Google account to existing user.", "user", account.Username)
		return account, nil
	}

	username, err := s.pickUsername(ctx, identity.Email)
	if err != nil {
		return nil, err
	}

	newUser := &User{
		UUID:        utils.GenerateUuid(),
		Email:       identity.Email,
		Username:    username,
		DisplayName: identity.Name,
		GoogleSub:   identity.Sub,
		Role:        RoleUser,
	}
	if newUser.DisplayName == "" {
		newUser.DisplayName = username
	}

	if err := s.userRepo.Create(ctx, newUser); err != nil {
		return nil, err
	}

	return newUser, nil
}

// pickUsername derives a free username from the email local part, adding a
// numeric suffix while taken.
func (s *userService) pickUsername(ctx context.Context, email string) (string, error) {
	local, _, _ := strings.Cut(email, "@")
	base := utils.Slugify(local)
	if base == "" {
		base = "user"
	}

	for i := 0; ; i++ {
		candidate := base
		if i > 0 {
			candidate = fmt.Sprintf("%s-%d", base, i)
		}

		_, taken, err := s.userRepo.GetByUsername(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
}

func (s *userService) Session(ctx context.Context, authUser auth.AuthenticatedUser) (*SessionOut, error) {
	account, err := s.userRepo.GetByUuid(ctx, authUser.UserId)
	if err != nil {
		return nil, err
	}

	_, linked, err := s.tokenManager.Get(ctx, account.UUID)
	if err != nil {
		return nil, err
	}

	return &SessionOut{User: UserToOut(account), GoogleLinked: linked}, nil
}
