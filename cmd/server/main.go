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

	"psjudge_frontend/internal/app"
	"psjudge_frontend/internal/app/listener"
	"psjudge_frontend/internal/app/service"
	"psjudge_frontend/internal/builder"
	"psjudge_frontend/internal/domain/repository"
	"psjudge_frontend/internal/platform/config"
	"psjudge_frontend/internal/platform/database"
	"psjudge_frontend/internal/platform/queue"
	"psjudge_frontend/internal/web/server"
	"psjudge_frontend/internal/web/session"
)

func main() {
	// 1. Load Configuration
	config.Load()
	fmt.Println("Configuration loaded.")

	// 2. Initialize Database
	database.Connect()
	defer database.Close()
	fmt.Println("Database connected.")

	// 3. Initialize Redis
	queue.ConnectRedis()
	defer queue.CloseRedis()
	fmt.Println("Redis connected.")

	// 4. Initialize Repositories
	repos := repository.NewPgBundle(database.DB)

	// 5. Initialize Builder Client & Sessions
	builderClient := builder.NewClient(config.AppConfig.BuilderAPIURL)
	sessions := session.NewStore(config.AppConfig.SessionKey, config.AppConfig.SessionTTL)

	// 6. Initialize Services
	authService := service.NewAuthService(repos.Users)
	studentService := service.NewStudentService(repos.Users, repos.Contests, repos.Solutions, builderClient)

	// 7. Initialize Build Listener (as a goroutine)
	buildListener := listener.NewBuildListener(queue.RDB, repos.Solutions, builderClient, config.AppConfig.BuildFinishedQueueName)
	listenerCtx, listenerCancel := context.WithCancel(context.Background())
	defer listenerCancel()
	go buildListener.Start(listenerCtx)
	fmt.Println("Build listener started.")

	// 8. Initialize Router & HTTP Server
	appCtx := &app.Context{
		Builder:  builderClient,
		Sessions: sessions,
		NewRepos: func() *repository.Bundle { return repository.NewPgBundle(database.DB) },
		Auth:     authService,
		Students: studentService,
	}
	router := server.New(appCtx, config.AppConfig.StaticDir)

	srv := &http.Server{
		Addr:         ":" + config.AppConfig.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 9. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on port %s", config.AppConfig.APIPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", config.AppConfig.APIPort, err)
		}
	}()
	log.Println("Server started successfully.")

	<-stop // Wait for interrupt signal

	log.Println("Shutting down server...")
	listenerCancel() // Signal listener to stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	log.Println("Server and listener stopped gracefully.")
}
