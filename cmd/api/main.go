package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jeotronix/fieldops/internal/blob"
	"github.com/jeotronix/fieldops/internal/config"
	"github.com/jeotronix/fieldops/internal/database"
	"github.com/jeotronix/fieldops/internal/handlers"
	"github.com/jeotronix/fieldops/internal/models"
	"github.com/jeotronix/fieldops/internal/remote"
	"github.com/jeotronix/fieldops/internal/services"
	"github.com/jeotronix/fieldops/internal/store"
	syncengine "github.com/jeotronix/fieldops/internal/sync"
	"github.com/jeotronix/fieldops/internal/websocket"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// 2. Initialize database (Detects Embedded vs External automatically)
	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	// Note: db.Close() is called manually in shutdown handler below

	// 3. Auto-Migrate Schema (Critical for Zero-Config)
	log.Println("🚀 Synchronizing database schema...")
	err = db.AutoMigrate(
		&models.Technician{},
		&models.Client{},
		&models.ServiceLog{},
		&models.Article{},
		&models.Attachment{},

		// Sync tables
		&models.SyncQueueItem{},
		&models.SyncCheckpoint{},
		&models.SearchIndexEntry{},
	)
	if err != nil {
		log.Printf("⚠️ Migration warning: %v\n", err)
	} else {
		log.Println("✅ Schema synchronized successfully")
	}

	st := store.New(db)

	// 4. Sync engine against the remote document store
	fetcher := blob.NewHTTPFetcher(cfg.Remote.BlobURL)
	var engine *syncengine.Engine
	if cfg.Remote.URL != "" {
		log.Println("🔄 Initializing Sync Engine...")
		remoteClient := remote.NewClient(cfg.Remote.URL, cfg.Remote.Database, cfg.Remote.Username, cfg.Remote.Password)

		engine = syncengine.NewEngine(syncengine.WrapStore(st), remoteClient, fetcher, cfg.Sync, cfg.Remote.URL)
		if err := engine.Start(); err != nil {
			log.Printf("⚠️ Sync Engine: Failed to start: %v", err)
		}
	} else {
		log.Println("⚠️ REMOTE_URL not configured, running in permanent offline mode")
	}

	// 5. Live status frames
	hub := websocket.NewHub()
	go hub.Run()
	if engine != nil {
		engine.Subscribe(func(status syncengine.Status) {
			hub.Broadcast(status)
		})
	}

	// 6. Application service + HTTP router
	svc := services.New(st, notifierOrNil(engine), fetcher, cfg.Sync.AttachmentMaxBytes)
	router := handlers.NewRouter(cfg, svc, st, engine, hub)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Channel to listen for shutdown signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	// Start server in goroutine
	go func() {
		log.Printf("🚀 Server starting on port %s\n", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for shutdown signal
	sig := <-shutdown
	log.Printf("\n⚠️  Received signal: %v. Shutting down gracefully...\n", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	if engine != nil {
		engine.Stop()
	}

	// Close database (this also stops embedded PostgreSQL)
	log.Println("🛑 Closing database connection...")
	if err := db.Close(); err != nil {
		log.Printf("Database close error: %v", err)
	}

	log.Println("✅ Shutdown complete")
}

// notifierOrNil avoids handing the service a typed nil interface when sync
// is disabled.
func notifierOrNil(engine *syncengine.Engine) services.Notifier {
	if engine == nil {
		return nil
	}
	return engine
}
