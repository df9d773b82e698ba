package test

import (
	"net/http"
	"path/filepath"
	"testing"

	"watchlikemeBackend/auth"
	"watchlikemeBackend/config"
	"watchlikemeBackend/domain/catalog"
	"watchlikemeBackend/domain/collection"
	"watchlikemeBackend/domain/user"
	"watchlikemeBackend/middleware"
	"watchlikemeBackend/utils"
	"watchlikemeBackend/youtube"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
	"gorm.io/gorm"
)

const TestUserEmail = "testuser@example.com"
const TestUserPassword = "testpass1234"
const TestFriendEmail = "friend@example.com"

var TestUserUuid = ""
var TestFriendUuid = ""

// SetupTestServer wires the full HTTP surface against a throwaway sqlite
// database with seeded test data. Google login stays disabled, so no
// network access happens during the tests.
func SetupTestServer(t *testing.T) (*gin.Engine, auth.AuthManager, *gorm.DB) {
	t.Setenv("WLM_SESSION_SECRET", "test-session-secret")
	gin.SetMode(gin.TestMode)

	cfg := &config.WatchLikeMeConfig{
		Server: config.ServerConfig{PublicOrigin: "http://localhost:3000"},
		Auth: config.AuthConfig{
			EnableGoogle:   false,
			SessionHours:   1,
			LoginRateLimit: 1000,
		},
	}

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("Failed to open test database: %s", err.Error())
	}
	GenerateTestData(t, db)

	authManager := auth.CreateAuthManager(cfg)
	tokenManager := auth.CreateTokenManager(db, &oauth2.Config{})
	buildClient := func(httpClient *http.Client) *youtube.Client {
		return youtube.NewClient(cfg.YouTube.BaseURL, "", httpClient)
	}

	userRepo := user.CreateRepository(db)
	catalogRepo := catalog.CreateRepository(db)
	collectionRepo := collection.CreateRepository(db)

	userHandler := user.CreateHandler(user.CreateService(userRepo, authManager, tokenManager), cfg)
	catalogHandler := catalog.CreateHandler(catalog.CreateService(catalogRepo, tokenManager, buildClient))
	collectionHandler := collection.CreateHandler(collection.CreateService(collectionRepo, userRepo, catalogRepo, tokenManager, buildClient))

	router := gin.New()
	loginLimiter := middleware.LoginRateLimiter(cfg.Auth.LoginRateLimit)
	user.RegisterRoutes(router, userHandler, authManager, loginLimiter)
	catalog.RegisterRoutes(router, catalogHandler, authManager)
	collection.RegisterRoutes(router, collectionHandler, authManager)

	return router, authManager, db
}

func GenerateTestData(t *testing.T, db *gorm.DB) {
	err := db.AutoMigrate(
		&user.User{},
		&auth.GoogleToken{},
		&catalog.Channel{},
		&catalog.Video{},
		&collection.Collection{},
		&collection.CollectionItem{},
		&collection.CollectionAccessGrant{},
		&collection.CollectionLike{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test database: %s", err.Error())
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(TestUserPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash test password: %s", err.Error())
	}

	TestUserUuid = utils.GenerateUuid()
	testUser := user.User{
		UUID:         TestUserUuid,
		Email:        TestUserEmail,
		Username:     "testuser",
		DisplayName:  "Test User",
		PasswordHash: string(hash),
		Role:         user.RoleUser,
	}
	db.Create(&testUser)

	TestFriendUuid = utils.GenerateUuid()
	friend := user.User{
		UUID:         TestFriendUuid,
		Email:        TestFriendEmail,
		Username:     "friend",
		DisplayName:  "Friend",
		PasswordHash: string(hash),
		Role:         user.RoleUser,
	}
	db.Create(&friend)

	googleOnly := user.User{
		UUID:        utils.GenerateUuid(),
		Email:       "googleonly@example.com",
		Username:    "googleonly",
		DisplayName: "Google Only",
		GoogleSub:   "google-sub-1",
		Role:        user.RoleUser,
	}
	db.Create(&googleOnly)

	db.Create(&collection.Collection{
		UUID:    utils.GenerateUuid(),
		Slug:    "cooking",
		OwnerID: testUser.ID,
		Name:    "Cooking",
		Public:  false,
	})

	db.Create(&collection.Collection{
		UUID:    utils.GenerateUuid(),
		Slug:    "showcase",
		OwnerID: testUser.ID,
		Name:    "Showcase",
		Public:  true,
	})
}
