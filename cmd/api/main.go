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

	"github.com/go-wallet-api/internal/config"
	"github.com/go-wallet-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/go-wallet-api/internal/infrastructure/jwt"
	s3infra "github.com/go-wallet-api/internal/infrastructure/s3"
	"github.com/go-wallet-api/internal/infrastructure/sns"
	transporthttp "github.com/go-wallet-api/internal/transport/http"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables)

	// JWT provider (optional — graceful fallback if keys are missing).
	var jwtProvider *jwtinfra.Provider
	if p, err := jwtinfra.NewProvider(cfg); err == nil {
		jwtProvider = p
	} else {
		log.Printf("WARN: JWT provider not available: %v", err)
	}

	// S3 audit store for flagged transfer exports.
	s3Client := s3infra.NewClient(cfg)
	auditStore := s3infra.NewStore(s3Client, cfg.AuditBucket)

	// SMS delivery: SNS in production, simulated sender otherwise.
	var smsSender sns.SMSSender
	if cfg.SMSMode == config.SMSModeSNS {
		sender, err := sns.NewSender(cfg)
		if err != nil {
			log.Printf("WARN: SNS sender not available, falling back to simulated: %v", err)
			smsSender = sns.NewSimulatedSender()
		} else {
			smsSender = sender
		}
	} else {
		smsSender = sns.NewSimulatedSender()
	}

	deps := &transporthttp.Deps{
		AccountRepo:   dynamo.NewAccountRepo(dynamoClient, cfg.DynamoTables.Accounts),
		TransferRepo:  dynamo.NewTransferRepo(dynamoClient, cfg.DynamoTables.Transfers),
		ChallengeRepo: dynamo.NewChallengeRepo(dynamoClient, cfg.DynamoTables.OTPChallenges),
		LedgerWriter:  dynamo.NewLedgerWriter(dynamoClient, cfg.DynamoTables.Accounts, cfg.DynamoTables.Transfers),
		AuditStore:    auditStore,
		SMSSender:     smsSender,
		JWTProvider:   jwtProvider,
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
