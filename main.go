package main

import (
	"fmt"
	"os"
	"sync"

	"watchlikemeBackend/auth"
	"watchlikemeBackend/config"
	"watchlikemeBackend/domain/catalog"
	"watchlikemeBackend/domain/collection"
	"watchlikemeBackend/domain/user"
	"watchlikemeBackend/middleware"
	"watchlikemeBackend/utils"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	// Load environment variables from .env file if present
	_ = godotenv.Load()

	cmdArgs := utils.ParseArguments()
	isDevMode := *cmdArgs.DevelopmentMode

	log.SetTimeFormat("[2006-01-02 15:04:05]")

	if isDevMode {
		log.SetReportCaller(true)
	}

	wlmConfig := config.Load(*cmdArgs.ConfigFile)
	authManager := auth.CreateAuthManager(wlmConfig)

	db := connectToDatabase(*cmdArgs.UseLocalDatabase, wlmConfig)
	migrate(db)

	tokenManager := auth.CreateTokenManager(db, authManager.OAuthConfig())
	buildClient := catalog.DefaultClientBuilder(wlmConfig)

	var (
		userRepository = user.CreateRepository(db)
		userService    = user.CreateService(userRepository, authManager, tokenManager)
		userHandler    = user.CreateHandler(userService, wlmConfig)

		catalogRepository = catalog.CreateRepository(db)
		catalogService    = catalog.CreateService(catalogRepository, tokenManager, buildClient)
		catalogHandler    = catalog.CreateHandler(catalogService)

		collectionRepository = collection.CreateRepository(db)
		collectionService    = collection.CreateService(collectionRepository, userRepository, catalogRepository, tokenManager, buildClient)
		collectionHandler    = collection.CreateHandler(collectionService)
	)

	if !isDevMode {
		gin.SetMode(gin.ReleaseMode)
	}
	webServer := gin.Default()

	loginLimiter := middleware.LoginRateLimiter(wlmConfig.Auth.LoginRateLimit)

	user.RegisterRoutes(webServer, userHandler, authManager, loginLimiter)
	catalog.RegisterRoutes(webServer, catalogHandler, authManager)
	collection.RegisterRoutes(webServer, collectionHandler, authManager)

	var serverWaitGroup sync.WaitGroup
	connection := fmt.Sprintf("%s:%d", wlmConfig.Server.Host, wlmConfig.Server.Port)

	serverWaitGroup.Add(1)
	go startWebServer(webServer, connection, &serverWaitGroup)

	log.Info("WatchLikeMe API is ready to serve calls!", "conn", connection)
	serverWaitGroup.Wait()
}

func migrate(db *gorm.DB) {
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
		log.Fatalf("Failed to migrate database schema: %s", err.Error())
		os.Exit(1)
	}
}

func connectToDatabase(useLocalDatabase bool, config *config.WatchLikeMeConfig) *gorm.DB {
	var (
		db  *gorm.DB
		err error
	)

	gormConfig := &gorm.Config{TranslateError: true}

	if useLocalDatabase {
		log.Info("Connecting to local SQLite database", "path", config.Database.LocalFile)
		db, err = gorm.Open(sqlite.Open(config.Database.LocalFile), gormConfig)
	} else {
		connection := fmt.Sprintf("%s@%s:%d/%s", config.Database.User, config.Database.Host, config.Database.Port, config.Database.Database)
		log.Info("Connecting to remote PostgreSQL database", "conn", connection)

		dsn := fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%d",
			config.Database.Host,
			config.Database.User,
			os.Getenv("WLM_DATABASE_PASSWORD"),
			config.Database.Database,
			config.Database.Port,
		)
		db, err = gorm.Open(postgres.Open(dsn), gormConfig)
	}

	if err != nil {
		log.Fatalf("Failed to connect to database: %s", err.Error())
		os.Exit(1)
	}

	return db
}

func startWebServer(server *gin.Engine, socket string, waitGroup *sync.WaitGroup) {
	defer waitGroup.Done()

	if err := server.Run(socket); err != nil {
		log.Fatalf("Failed to start web server on %s: %s", socket, err.Error())
	}
}
