// Command logkeeper copies access log entries from Kafka into Elasticsearch.
package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"

	"blog/pkg/logger"
	"blog/pkg/logship"
)

func main() {
	configPath := flag.String("config", "cmd/logkeeper/config.toml", "Path to TOML config file")
	logLevel := flag.String("log", "", "Log level: debug, info, warn, error.")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("[logkeeper] %v", err)
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if err := logger.SetLevel(cfg.LogLevel); err != nil {
		log.Warnf("[logkeeper] %v, keeping %s", err, log.GetLevel())
	}

	indexer, err := logship.NewESIndexer(elasticsearch.Config{Addresses: cfg.ElasticSearchNodes}, cfg.ElasticSearchIndex)
	if err != nil {
		log.Fatalf("[logkeeper] %v", err)
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.KafkaBrokers,
		Topic:    cfg.KafkaTopic,
		GroupID:  cfg.KafkaGroupID,
		MinBytes: 10e3, // 10KB
		MaxBytes: 10e6, // 10MB
	})
	defer reader.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Infof("[logkeeper] consuming %s with %d workers", cfg.KafkaTopic, cfg.NumWorkers)
	logship.NewKeeper(reader, indexer, cfg.NumWorkers).Run(ctx)
	log.Info("[logkeeper] stopped")
}
