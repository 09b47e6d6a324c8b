package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/wavenotes/wavenotes-api/internal/config"
	"github.com/wavenotes/wavenotes-api/internal/handler"
	"github.com/wavenotes/wavenotes-api/internal/middleware"
	"github.com/wavenotes/wavenotes-api/internal/repository"
	"github.com/wavenotes/wavenotes-api/internal/usecase"
	"github.com/wavenotes/wavenotes-api/shared/auth"
	"github.com/wavenotes/wavenotes-api/shared/logger"
	"github.com/wavenotes/wavenotes-api/shared/mailer"
	"github.com/wavenotes/wavenotes-api/shared/provider"
	"github.com/wavenotes/wavenotes-api/shared/validator"
)

func main() {
	log := logger.New("wavenotes-api")
	cfg := config.Load(&log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := mongo.Connect(options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to mongodb")
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("failed to disconnect from mongodb")
		}
	}()

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		log.Fatal().Err(err).Msg("failed to ping mongodb")
	}

	db := client.Database(cfg.Mongo.Database)

	indexCtx, cancelIndex := context.WithTimeout(ctx, 10*time.Second)
	defer cancelIndex()
	userRepo := repository.NewUserMongoRepository(indexCtx, &log, db)
	noteRepo := repository.NewNoteMongoRepository(db)

	validate, err := validator.New()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize validator")
	}

	otpSender := mailer.NewMailer(&log)
	googleVerifier := provider.NewGoogleVerifier(cfg.Google.ClientID)
	tokenAuth := auth.NewTokenAuthenticator(cfg.Token.Secret, cfg.Token.ExpiresIn)

	otpIssuer := usecase.NewOTPIssuer(userRepo, otpSender)
	authUsecase := usecase.NewAuthUsecase(userRepo, otpIssuer, googleVerifier, tokenAuth)
	noteUsecase := usecase.NewNoteUsecase(noteRepo)

	authHandler := handler.NewAuthHandler(&log, validate, authUsecase)
	noteHandler := handler.NewNoteHandler(&log, validate, noteUsecase)

	router := chi.NewRouter()
	router.Use(chimiddleware.RealIP)
	router.Use(middleware.RequestLogger(&log))
	router.Use(chimiddleware.Recoverer)

	router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	router.Route("/api/auth", authHandler.RegisterRoutes)
	router.Route("/api/notes", func(r chi.Router) {
		r.Use(middleware.Authenticate(tokenAuth, userRepo))
		noteHandler.RegisterRoutes(r)
	})

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("starting http server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
