// Package main, joblink mesajlaşma sunucusunun giriş noktasıdır.
//
// Bu dosyanın görevi — Dependency Injection "wire-up":
//  1. Config'i yükle
//  2. Database'i başlat (embedded migration'larla)
//  3. i18n çevirilerini yükle
//  4. Repository'leri oluştur
//  5. WebSocket Hub'ı başlat
//  6. Service'leri oluştur
//  7. Handler'ları ve middleware'i oluştur
//  8. Arka plan job'larını (digest, session cleanup) zamanla
//  9. HTTP router + CORS + server
// 10. Graceful shutdown
//
// Global değişken YOK — her şey burada oluşturulup birbirine bağlanıyor.
package main

import (
	"context"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"

	"github.com/emirhan/joblink/config"
	"github.com/emirhan/joblink/database"
	"github.com/emirhan/joblink/jobs"
	"github.com/emirhan/joblink/pkg/i18n"
	"github.com/emirhan/joblink/ws"
)

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.Println("[main] joblink server starting...")

	// ─── 1. Config ───
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[main] failed to load config: %v", err)
	}
	log.Printf("[main] config loaded (port=%d)", cfg.Server.Port)

	// ─── 2. Database ───
	migrationsFS, err := fs.Sub(database.EmbeddedMigrations, "migrations")
	if err != nil {
		log.Fatalf("[main] failed to open embedded migrations: %v", err)
	}

	db, err := database.New(cfg.Database.Path, migrationsFS)
	if err != nil {
		log.Fatalf("[main] failed to initialize database: %v", err)
	}
	defer db.Close()

	// ─── 3. i18n ───
	localesFS, err := fs.Sub(i18n.EmbeddedLocales, "locales")
	if err != nil {
		log.Fatalf("[main] failed to open embedded locales: %v", err)
	}
	if err := i18n.Load(localesFS); err != nil {
		log.Fatalf("[main] failed to load i18n translations: %v", err)
	}

	// ─── 4. Repository Layer ───
	repos := initRepositories(db.Conn)

	// ─── 5. WebSocket Hub ───
	//
	// Hub tüm websocket bağlantılarını yöneten merkezi yapıdır ve
	// EventPublisher interface'ini implement eder — service'ler hub'a
	// doğrudan değil interface üzerinden erişir.
	hub := ws.NewHub()
	registerHubCallbacks(hub, repos.Conversation)
	go hub.Run()

	// ─── 6. Service Layer ───
	svcs := initServices(cfg, repos, hub)

	// ─── 7. Handler Layer + Middleware ───
	h := initHandlers(svcs, repos.User, hub)

	// ─── 8. Background Jobs ───
	scheduler := jobs.NewScheduler()
	digestJob := jobs.NewDigestJob(repos.Message, svcs.Sender, hub, cfg.Digest.MinAgeMinutes)
	cleanupJob := jobs.NewSessionCleanupJob(repos.Session)

	if err := scheduler.AddJob(cfg.Digest.Spec, digestJob.Run); err != nil {
		log.Fatalf("[main] invalid digest cron spec %q: %v", cfg.Digest.Spec, err)
	}
	if err := scheduler.AddJob("0 * * * *", cleanupJob.Run); err != nil {
		log.Fatalf("[main] failed to schedule session cleanup: %v", err)
	}
	scheduler.Start()

	// ─── 9. HTTP Router + CORS + Server ───
	mux := initRoutes(h)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: []string{
			"http://localhost:3000", // web dev server
			"http://localhost:5173", // Vite dev server
		},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      corsHandler.Handler(mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// ─── 10. Graceful Shutdown ───
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("[main] server listening on %s", cfg.Server.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[main] server error: %v", err)
		}
	}()

	<-done
	log.Println("[main] shutting down...")

	// Sıra önemli: önce yeni iş üretenler durur (scheduler, websocket),
	// sonra HTTP server mevcut istekleri bitirir, en son yardımcı
	// altyapı kapanır.
	scheduler.Stop()
	hub.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("[main] forced shutdown: %v", err)
	}

	svcs.UnreadCache.Close()
	svcs.LoginLimiter.Stop()
	svcs.StartLimiter.Stop()

	log.Println("[main] server stopped gracefully")
}
