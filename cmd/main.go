package main

import (
	"fmt"
	"os"

	"github.com/vivaahlink/vivaah-backend/internal/db"
	"github.com/vivaahlink/vivaah-backend/internal/dedup"
	"github.com/vivaahlink/vivaah-backend/internal/flows"
	"github.com/vivaahlink/vivaah-backend/internal/handlers"
	"github.com/vivaahlink/vivaah-backend/internal/logger"
	"github.com/vivaahlink/vivaah-backend/internal/processor"
	"github.com/vivaahlink/vivaah-backend/internal/repos"
	"github.com/vivaahlink/vivaah-backend/internal/server"
	"github.com/vivaahlink/vivaah-backend/internal/services"
	"github.com/vivaahlink/vivaah-backend/internal/utils"
	"github.com/vivaahlink/vivaah-backend/internal/wa"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	log.Info("Loading environment variables from main...")
	verifyToken := utils.GetEnv("WA_VERIFY_TOKEN", "", log)
	dedupCapacity := utils.GetEnvAsInt("DEDUP_CACHE_SIZE", 1000, log)

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Warn("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	userRepo := repos.NewUserRepo(thePG, log)
	profileRepo := repos.NewProfileRepo(thePG, log)
	preferenceRepo := repos.NewPreferenceRepo(thePG, log)
	conversationStateRepo := repos.NewConversationStateRepo(thePG, log)

	// Services
	log.Info("Setting up Services from main...")
	openaiClient, err := services.NewOpenAIClient(log)
	if err != nil {
		log.Error("Could not init OpenAIClient", "error", err)
		os.Exit(1)
	}
	waClient, err := wa.NewClient(log)
	if err != nil {
		log.Error("Could not init WhatsApp client", "error", err)
		os.Exit(1)
	}
	userService := services.NewUserService(thePG, log, userRepo, profileRepo, preferenceRepo, conversationStateRepo)
	conversationService := services.NewConversationService(thePG, log, conversationStateRepo)
	biodataService := services.NewBiodataService(thePG, log, profileRepo, openaiClient)
	preferenceService := services.NewPreferenceService(thePG, log, preferenceRepo, openaiClient)
	matchService := services.NewMatchService(thePG, log, profileRepo, preferenceRepo)
	intentService := services.NewIntentService(log, openaiClient)

	// Dedup cache: Redis when configured, in-process otherwise.
	var cache dedup.Cache
	if os.Getenv("REDIS_ADDR") != "" {
		cache, err = dedup.NewRedisCache(log)
		if err != nil {
			log.Warn("Redis dedup cache init failed, falling back to memory", "error", err)
			cache = dedup.NewMemoryCache(dedupCapacity)
		}
	} else {
		cache = dedup.NewMemoryCache(dedupCapacity)
	}

	// Flows + processor
	log.Info("Setting up flows from main...")
	registry := flows.NewRegistry(flows.Deps{
		Log:           log,
		Sender:        waClient,
		Media:         waClient,
		Conversations: conversationService,
		Users:         userService,
		Biodata:       biodataService,
		Preferences:   preferenceService,
		Matches:       matchService,
	})
	proc := processor.New(log, waClient, conversationService, userService, intentService, registry)

	// Handlers
	log.Info("Setting up handlers from main...")
	webhookHandler := handlers.NewWebhookHandler(log, verifyToken, cache, proc)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		WebhookHandler: webhookHandler,
	})

	port := utils.GetEnv("PORT", "8080", log)
	fmt.Printf("Server listening on :%s\n", port)
	if err := router.Run(":" + port); err != nil {
		log.Warn("Server failed", "error", err)
	}
}
