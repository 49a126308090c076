package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"

	"blog/pkg/api"
	"blog/pkg/auth"
	"blog/pkg/censor"
	"blog/pkg/config"
	"blog/pkg/logger"
	"blog/pkg/logship"
	"blog/pkg/storage"
	"blog/pkg/storage/memdb"
	"blog/pkg/storage/mongo"
	"blog/pkg/validation"
)

func main() {
	var (
		configPath string
		dev        bool
		httpAddr   string
		logLevel   string
		kafkaAddr  string
		kafkaTopic string
		kafkaBatch int
	)

	flag.StringVar(&configPath, "config", "cmd/server/config.toml", "Path to TOML config file")
	flag.BoolVar(&dev, "dev", false, "Run the server in development mode with in-memory DB.")
	flag.StringVar(&httpAddr, "http", "", "HTTP server address in the form 'host:port'.")
	flag.StringVar(&logLevel, "log", "", "Log level: debug, info, warn, error.")
	flag.StringVar(&kafkaAddr, "kafka", "", "Kafka server address in the form 'host:port'.")
	flag.StringVar(&kafkaTopic, "topic", "", "Kafka topic.")
	flag.IntVar(&kafkaBatch, "batch", 0, "Kafka batch size.")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("[server] %v", err)
	}

	// Override config with flags if set
	if httpAddr != "" {
		cfg.HTTPAddr = httpAddr
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if kafkaAddr != "" {
		cfg.Kafka.Addr = kafkaAddr
	}
	if kafkaTopic != "" {
		cfg.Kafka.Topic = kafkaTopic
	}
	if kafkaBatch != 0 {
		cfg.Kafka.Batch = kafkaBatch
	}

	if err := logger.SetLevel(cfg.LogLevel); err != nil {
		log.Warnf("[server] %v, keeping %s", err, log.GetLevel())
	}
	if !strings.Contains(cfg.HTTPAddr, ":") {
		log.Warn("[server] use ':' before port number, e.g. ':8080'")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[server] invalid config: %v", err)
	}

	var db storage.Storage
	var mongoDB *mongo.Storage
	if dev {
		log.Warn("[server] development mode, data is kept in memory")
		db = memdb.New()
	} else {
		if err := cfg.Mongo.Validate(); err != nil {
			log.Fatalf("[server] invalid mongo config: %v", err)
		}
		log.Debugf("[server] mongo config: %v", cfg.Mongo)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		mongoDB, err = mongo.New(ctx, &cfg.Mongo)
		if err == nil {
			err = mongoDB.Ping(ctx)
		}
		cancel()
		if err != nil {
			log.Fatalf("[server] failed to initialize storage instance, DB connection not established: %v", err)
		}
		db = mongoDB
	}

	issuer, err := auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL.Duration)
	if err != nil {
		log.Fatalf("[server] failed to create token issuer: %v", err)
	}

	var checker validation.TextChecker
	switch {
	case cfg.Censor.WordsPath != "":
		c := censor.New()
		if err := c.LoadFromJSON(cfg.Censor.WordsPath); err != nil {
			log.Fatalf("[server] failed to load censor words file %s: %v", cfg.Censor.WordsPath, err)
		}
		checker = c
	case cfg.Censor.ServiceURL != "":
		checker = censor.NewClient(cfg.Censor.ServiceURL, cfg.Censor.Timeout.Duration)
	default:
		log.Info("[server] comment moderation disabled")
	}

	var kafkaWriter *kafka.Writer
	var logWriter logship.Writer
	if cfg.Kafka.Enabled() {
		kafkaWriter = &kafka.Writer{
			Addr:      kafka.TCP(cfg.Kafka.Addr),
			Topic:     cfg.Kafka.Topic,
			BatchSize: cfg.Kafka.Batch,
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := logship.CreateTopic(ctx, cfg.Kafka.Addr, cfg.Kafka.Topic); err != nil {
			log.Warnf("[server] failed to create Kafka topic: %v", err)
		}
		cancel()
		logWriter = kafkaWriter
	} else {
		log.Warnf("[server] kafka was not configured, logs will not be sent to Kafka")
	}

	api := api.New(cfg.ServiceName, db, issuer, checker, logWriter)
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: api.Router(),
	}

	go func() {
		log.Infof("[server] starting on port %v", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[server] failed to start: %v", err)
			return
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	shutdownCtx, shutdownRelease := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownRelease()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("[server] HTTP server shutdown error: %v", err)
	} else {
		log.Info("[server] HTTP server shut down gracefully")
	}

	if kafkaWriter != nil {
		if err := kafkaWriter.Close(); err != nil {
			log.Errorf("[server] failed to flush Kafka writer: %v", err)
		}
	}
	if mongoDB != nil {
		if err := mongoDB.Close(shutdownCtx); err != nil {
			log.Errorf("[server] failed to disconnect from DB: %v", err)
		} else {
			log.Info("[server] disconnected from DB")
		}
	}
}
