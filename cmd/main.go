package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	"whatsapp-console/config"
	"whatsapp-console/internal/handlers"
	"whatsapp-console/internal/repositories"
	"whatsapp-console/internal/services"
	"whatsapp-console/internal/utils"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

// @title Messaging Console API
// @version 1.0
// @description Backend for the business messaging console: conversations, bulk sends, contact import and gateway webhooks
// @host localhost:8081
// @BasePath /api/v1
func main() {
	// Load config
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	// Initialize database connection
	db, err := config.ConnectDatabase()
	if err != nil {
		log.Fatalf("Error connecting to database: %v", err)
	}
	defer db.Close()

	// The conversation table must exist before we serve anything.
	conversationRepo, err := repositories.NewMySQLConversationRepository(db, cfg.ConversationTable)
	if err != nil {
		log.Fatalf("Error verifying conversation store: %v", err)
	}
	contactRepo := repositories.NewMySQLContactRepository(db)

	conversationService := services.NewConversationService(conversationRepo, cfg.BusinessPhone)
	gateway := services.NewGatewayService(cfg)
	bulk := services.NewBulkService(gateway, conversationRepo, cfg.BusinessPhone)
	importer := services.NewContactImportService(contactRepo)
	forwarder := services.NewAutomationForwarder(cfg.AutomationWebhookURL)

	var s3Service *services.S3Service
	if cfg.S3Config != nil {
		s3Service, err = services.NewS3Service(cfg.S3Config)
		if err != nil {
			utils.LogError("Error creating S3 service, import archiving disabled: %v", err)
		}
	}

	// Create HTTP handlers
	httpHandler := handlers.NewHTTPHandler(cfg, conversationService, conversationRepo, gateway, bulk, importer, contactRepo, s3Service)
	webhookHandler := handlers.NewWebhookHandler(forwarder)

	router := mux.NewRouter().PathPrefix("/api/v1").Subrouter()

	router.HandleFunc("/send-message", httpHandler.SendMessage).Methods("POST", "OPTIONS")
	router.HandleFunc("/send-bulk", httpHandler.SendBulkMessage).Methods("POST", "OPTIONS")

	// Conversation read path
	router.HandleFunc("/customers", httpHandler.GetCustomers).Methods("GET", "OPTIONS")
	router.HandleFunc("/customers/{phone}/messages", httpHandler.GetCustomerMessages).Methods("GET", "OPTIONS")
	router.HandleFunc("/messages", httpHandler.GetAllMessages).Methods("GET", "OPTIONS")
	router.HandleFunc("/dashboard-stats", httpHandler.GetDashboardStats).Methods("GET", "OPTIONS")

	// Contact management
	router.HandleFunc("/contacts/import", httpHandler.ImportContacts).Methods("POST", "OPTIONS")
	router.HandleFunc("/contacts/export", httpHandler.ExportContacts).Methods("GET", "OPTIONS")
	router.HandleFunc("/contacts", httpHandler.ListContacts).Methods("GET", "OPTIONS")
	router.HandleFunc("/contacts", httpHandler.AddContact).Methods("POST", "OPTIONS")
	router.HandleFunc("/contacts/{id}", httpHandler.DeleteContact).Methods("DELETE", "OPTIONS")

	// WebSocket route
	router.HandleFunc("/ws", handlers.WebSocketHandler)

	// Serve the static Swagger files
	fs := http.FileServer(http.Dir("./docs"))
	router.PathPrefix("/swagger/").Handler(http.StripPrefix("/api/v1/swagger/", fs))

	// Swagger UI
	router.PathPrefix("/swagger-ui/").Handler(httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://localhost:%s/api/v1/swagger/swagger.json", cfg.Port)),
		httpSwagger.DeepLinking(true),
	))

	mainRouter := mux.NewRouter()
	mainRouter.HandleFunc("/webhook/whatsapp", webhookHandler.ReceiveMessage).Methods("POST")
	mainRouter.HandleFunc("/health", httpHandler.Health).Methods("GET")
	mainRouter.PathPrefix("/api/v1").Handler(router)

	// CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	})

	handler := c.Handler(mainRouter)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	// Interrupt signal channel
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		fmt.Printf("Server is running on http://localhost:%s\n", cfg.Port)
		fmt.Printf("Swagger UI available at: http://localhost:%s/api/v1/swagger-ui/\n", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Error starting server: %v", err)
		}
	}()

	<-stop
	fmt.Println("\nShutting down gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Error shutting down server: %v", err)
	}

	fmt.Println("Server stopped successfully")
}
