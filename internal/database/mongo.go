// Package database opens the connections to the backing stores. Each
// constructor pings the server before returning so that a misconfigured
// deployment fails at start-up instead of on the first request.
package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const connectTimeout = 5 * time.Second

// OpenMongo connects to the document store at uri and verifies the
// connection. The returned client is safe for concurrent use and owns its
// own connection pool; callers must Disconnect it on shutdown.
func OpenMongo(uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}
