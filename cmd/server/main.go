package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mkovacic/picstream/internal/config"
	"github.com/mkovacic/picstream/internal/database"
	"github.com/mkovacic/picstream/internal/media"
	postgresrepo "github.com/mkovacic/picstream/internal/repository/postgres"
	"github.com/mkovacic/picstream/internal/service"
	"github.com/mkovacic/picstream/internal/transport/http/handlers"
	"github.com/mkovacic/picstream/internal/transport/http/middleware"
	"github.com/mkovacic/picstream/internal/transport/ws"
)

const requestTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	// Database
	pool, err := database.Connect(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()
	if err := database.Migrate(ctx, pool); err != nil {
		log.Fatal(err)
	}
	log.Println("Connected to database")

	// Repositories
	userRepo := postgresrepo.NewUserRepo(pool)
	postRepo := postgresrepo.NewPostRepo(pool)
	commentRepo := postgresrepo.NewCommentRepo(pool)
	convRepo := postgresrepo.NewConversationRepo(pool)

	// Media host
	uploader := media.NewHostClient(cfg.MediaHostURL, cfg.MediaHostKey)
	cdn := media.NewCDN(cfg.CDNBaseURL)

	// Services
	authService := service.NewAuthService(userRepo, postRepo, cfg.JWTSecret)
	userService := service.NewUserService(userRepo, postRepo, uploader, cdn)
	postService := service.NewPostService(postRepo, commentRepo, userRepo, uploader, cdn)
	messageService := service.NewMessageService(convRepo, userRepo)

	// Presence hub and fan-out
	hub := ws.NewHub()
	notifier := ws.NewHubNotifier(hub)
	userService.SetNotifier(notifier)
	postService.SetNotifier(notifier)
	messageService.SetNotifier(notifier)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, false)
	userHandler := handlers.NewUserHandler(userService)
	postHandler := handlers.NewPostHandler(postService)
	messageHandler := handlers.NewMessageHandler(messageService)

	// Middleware: API routes get a request deadline; websocket
	// upgrades must not, so the timeout wraps per-route.
	auth := middleware.Auth(cfg.JWTSecret)
	timeout := middleware.Timeout(requestTimeout)
	public := func(h http.HandlerFunc) http.Handler { return timeout(h) }
	protected := func(h http.HandlerFunc) http.Handler { return timeout(auth(h)) }

	// Routes
	mux := http.NewServeMux()

	// Public
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "ok"}`))
	})
	mux.Handle("POST /api/v1/auth/register", public(authHandler.Register))
	mux.Handle("POST /api/v1/auth/login", public(authHandler.Login))
	mux.Handle("POST /api/v1/auth/logout", public(authHandler.Logout))

	// Protected - Users
	mux.Handle("GET /api/v1/users/suggested", protected(userHandler.Suggested))
	mux.Handle("GET /api/v1/users/{id}/profile", protected(userHandler.Profile))
	mux.Handle("POST /api/v1/users/profile", protected(userHandler.UpdateProfile))
	mux.Handle("POST /api/v1/users/{id}/follow", protected(userHandler.FollowToggle))

	// Protected - Posts
	mux.Handle("GET /api/v1/posts", protected(postHandler.Feed))
	mux.Handle("GET /api/v1/posts/me", protected(postHandler.Mine))
	mux.Handle("POST /api/v1/posts", protected(postHandler.Create))
	mux.Handle("POST /api/v1/posts/{id}/like", protected(postHandler.Like))
	mux.Handle("POST /api/v1/posts/{id}/unlike", protected(postHandler.Unlike))
	mux.Handle("POST /api/v1/posts/{id}/comments", protected(postHandler.AddComment))
	mux.Handle("GET /api/v1/posts/{id}/comments", protected(postHandler.Comments))
	mux.Handle("DELETE /api/v1/posts/{id}", protected(postHandler.Delete))
	mux.Handle("POST /api/v1/posts/{id}/bookmark", protected(postHandler.BookmarkToggle))

	// Protected - Messages
	mux.Handle("GET /api/v1/messages", protected(messageHandler.Conversations))
	mux.Handle("POST /api/v1/messages/{id}", protected(messageHandler.Send))
	mux.Handle("GET /api/v1/messages/{id}", protected(messageHandler.History))

	// Realtime (token validated at handshake, no timeout middleware)
	mux.Handle("GET /ws", ws.ServeWS(hub, messageService, cfg.JWTSecret, cfg.AllowedOrigins))

	handler := middleware.CORS(cfg.AllowedOrigins)(mux)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.ServerPort),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})

	g.Go(func() error {
		log.Printf("Starting server on %s", server.Addr)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal(err)
	}
}
