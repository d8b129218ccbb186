package main

import (
	"context"
	"log"
	"net/http"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"sortie/broker"
	"sortie/config"
	"sortie/encryption"
	"sortie/hub"
	"sortie/repository"
	"sortie/server"
	"sortie/service"
	"sortie/storage"
	"sortie/transport"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on the environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := storage.ConnectDB(cfg.DB)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := storage.RunMigrations(context.Background(), db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	cipher, err := encryption.New(cfg.MessageKey)
	if err != nil {
		log.Fatalf("Failed to initialize cipher: %v", err)
	}

	messageRepo := repository.NewMessageRepository(db)
	friendRepo := repository.NewFriendRepository(db)
	userRepo := repository.NewUserRepository(db)

	rooms := hub.New()

	var events service.EventPublisher = rooms
	if cfg.AMQPURL != "" {
		relay, err := broker.NewRelay(cfg.AMQPURL, rooms)
		if err != nil {
			log.Fatalf("Failed to connect to broker: %v", err)
		}
		defer relay.Close()
		events = relay
		log.Println("Cross-instance event relay enabled")
	}

	messageService := service.NewMessageService(messageRepo, cipher, events)
	conversationService := service.NewConversationService(friendRepo, userRepo, messageRepo, cipher)

	socket := transport.NewSocketHandler(rooms, cfg.AllowedOrigins)

	srv := server.New(messageService, conversationService, socket, []byte(cfg.TokenSecret))

	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	addr := ":" + cfg.ServerPort
	log.Printf("Listening on %s (%s)", addr, cfg.Env)
	if err := http.ListenAndServe(addr, corsMiddleware.Handler(srv.Router())); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}
