package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lovelush_server/controllers"
	"lovelush_server/models"
	"lovelush_server/routes"
	"lovelush_server/services"
	"lovelush_server/socket"

	"github.com/caarlos0/env/v6"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

type config struct {
	Port            string        `env:"PORT" envDefault:"8080"`
	AWSRegion       string        `env:"AWS_REGION" envDefault:"us-east-1"`
	S3Bucket        string        `env:"S3_BUCKET_NAME"`
	MatchWebhookURL string        `env:"MATCH_WEBHOOK_URL"`
	SweepInterval   time.Duration `env:"SWEEP_INTERVAL" envDefault:"30s"`
}

func main() {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("Failed to parse config: %v", err)
	}

	log.Println("Initializing DynamoDB client...")
	dynamoClient := services.InitializeDynamoDBClient()
	dynamoService := &services.DynamoService{Client: dynamoClient}
	log.Println("DynamoDB client initialized.")

	matchSequence := &services.Sequencer{Dynamo: dynamoService, Table: models.MatchesTable, KeyAttribute: "matchId"}
	chatroomSequence := &services.Sequencer{Dynamo: dynamoService, Table: models.ChatroomsTable, KeyAttribute: "chatroomId"}
	messageSequence := &services.Sequencer{Dynamo: dynamoService, Table: models.MessagesTable, KeyAttribute: "messageId"}

	userStore := services.NewUserStore(dynamoService)
	matchStore := services.NewMatchStore(dynamoService, matchSequence, userStore)
	chatroomStore := services.NewChatroomStore(dynamoService, chatroomSequence, messageSequence, userStore, matchStore)
	userStore.Matches = matchStore
	userStore.Chatrooms = chatroomStore

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	matchSequence.Initialize(ctx)
	chatroomSequence.Initialize(ctx)
	messageSequence.Initialize(ctx)

	if err := userStore.LoadAll(ctx); err != nil {
		log.Fatalf("Failed to load users: %v", err)
	}
	if err := matchStore.LoadAll(ctx); err != nil {
		log.Fatalf("Failed to load matches: %v", err)
	}
	if err := chatroomStore.LoadAll(ctx); err != nil {
		log.Fatalf("Failed to load chatrooms: %v", err)
	}

	integrityService := &services.IntegrityService{
		Dynamo:    dynamoService,
		Users:     userStore,
		Matches:   matchStore,
		Chatrooms: chatroomStore,
	}
	sweepService := &services.SweepService{
		Integrity: integrityService,
		Users:     userStore,
		Matches:   matchStore,
		Chatrooms: chatroomStore,
		Interval:  cfg.SweepInterval,
	}
	recommendationService := services.NewRecommendationService(cfg.MatchWebhookURL)

	s3Service, err := services.NewS3Service(cfg.AWSRegion, cfg.S3Bucket)
	if err != nil {
		log.Fatalf("Failed to initialize S3 service: %v", err)
	}

	socketServer := socket.NewServer()
	go func() {
		if err := socketServer.Serve(); err != nil {
			log.Printf("Socket server error: %v", err)
		}
	}()
	defer socketServer.Close()

	sweepDone := make(chan struct{})
	go func() {
		defer close(sweepDone)
		sweepService.Run(ctx)
	}()

	r := mux.NewRouter()

	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "Welcome to LoveLush")
	}).Methods("GET")

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	}).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.Use(routes.RequestLogging)
	routes.RegisterUserRoutes(api, controllers.NewUserController(userStore))
	routes.RegisterMatchRoutes(api, controllers.NewMatchController(matchStore, userStore, recommendationService))
	routes.RegisterChatroomRoutes(api, controllers.NewChatroomController(chatroomStore, socketServer))
	routes.RegisterS3Routes(api, controllers.NewS3Controller(s3Service))
	routes.RegisterAdminRoutes(api, controllers.NewAdminController(integrityService, sweepService))

	r.Handle("/socket.io/", socketServer.Handler())

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(r)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: corsHandler,
	}

	go func() {
		log.Printf("Starting server on port %s...", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	// Cancelling the sweep context triggers its final flush; wait for it.
	cancel()
	<-sweepDone
	log.Println("Shutdown complete.")
}
