package logship

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"
)

// Reader is the part of kafka.Reader used by Keeper.
type Reader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

// Keeper reads log entries and indexes them with a pool of workers.
type Keeper struct {
	reader  Reader
	indexer Indexer
	workers int
}

func NewKeeper(r Reader, idx Indexer, workers int) *Keeper {
	if workers < 1 {
		workers = 1
	}
	return &Keeper{reader: r, indexer: idx, workers: workers}
}

// Run blocks until ctx is cancelled.
func (k *Keeper) Run(ctx context.Context) {
	jobs := make(chan kafka.Message, k.workers*5) // buffer is needed to increase throughput
	var wg sync.WaitGroup
	wg.Add(k.workers)
	for workerID := 0; workerID < k.workers; workerID++ {
		go func(id int) {
			defer wg.Done()
			k.worker(ctx, jobs, id)
		}(workerID)
	}

	log.Info("[logkeeper] accepting logs...")
	for {
		msg, err := k.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			log.Errorf("[logkeeper] failed to read message from Kafka: %v", err)
			continue
		}
		log.Debugf("[logkeeper] received message: %s", string(msg.Value))

		select {
		case jobs <- msg:
		case <-ctx.Done():
		}
	}

	close(jobs)
	wg.Wait()
}

func (k *Keeper) worker(ctx context.Context, jobs <-chan kafka.Message, workerID int) {
	for {
		select {
		case <-ctx.Done():
			log.Infof("[logkeeper][workerID:%d] context cancelled, exiting worker", workerID)
			return

		case msg, ok := <-jobs:
			if !ok {
				log.Infof("[logkeeper][workerID:%d] jobs channel closed, exiting worker", workerID)
				return
			}

			var entry LogEntry
			if err := json.Unmarshal(msg.Value, &entry); err != nil {
				log.Errorf("[logkeeper][workerID:%d] failed to unmarshal log entry: %v", workerID, err)
				continue
			}

			if err := k.indexer.Index(ctx, entry.DocumentID(), msg.Value); err != nil {
				log.Errorf("[logkeeper][workerID:%d] failed to index document: %v", workerID, err)
			} else {
				log.Debugf("[logkeeper][workerID:%d][%s] log entry indexed", workerID, shorten(entry.RequestID))
			}
		}
	}
}

func shorten(s string) string {
	if len(s) > 6 {
		return s[:6] + "..."
	}
	return s
}
