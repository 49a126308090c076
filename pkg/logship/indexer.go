package logship

import (
	"bytes"
	"context"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8"
)

type Indexer interface {
	Index(ctx context.Context, id string, doc []byte) error
}

// ESIndexer stores documents in one Elasticsearch index.
type ESIndexer struct {
	es    *elasticsearch.Client
	index string
}

func NewESIndexer(cfg elasticsearch.Config, index string) (*ESIndexer, error) {
	es, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("error creating the client: %w", err)
	}

	return &ESIndexer{es: es, index: index}, nil
}

func (i *ESIndexer) Index(ctx context.Context, id string, doc []byte) error {
	res, err := i.es.Index(
		i.index,
		bytes.NewReader(doc),
		i.es.Index.WithDocumentID(id),
		i.es.Index.WithContext(ctx),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("failed to index document %s: %s", id, res.Status())
	}

	return nil
}
