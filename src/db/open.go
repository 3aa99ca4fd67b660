package db

import (
	"context"
	"fmt"
	"log"

	"foodie/src/config"
	"foodie/src/types"
)

// Store is the document store both services run against.
type Store interface {
	types.FavoriteStore
	types.AccountStore
}

// Open connects to the backend selected by cfg.StoreBackend. The returned
// func releases the connection.
func Open(ctx context.Context, cfg *config.Config) (Store, func(), error) {
	switch cfg.StoreBackend {
	case config.BackendElastic:
		es, err := NewElasticStore(ctx, cfg.ElasticURL, cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		log.Printf("Connected to Elasticsearch at %s", cfg.ElasticURL)
		return es, es.Close, nil
	case config.BackendMongo:
		ms, err := NewMongoStore(ctx, cfg.MongoURI, cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		log.Println("Successfully connected to Mongo DB!")
		return ms, func() {
			if err := ms.Close(context.Background()); err != nil {
				log.Printf("Error disconnecting from Mongo DB: %s", err)
			}
		}, nil
	case config.BackendMemory:
		log.Println("Using in-memory store; data is lost on exit")
		return NewMemoryStore(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
