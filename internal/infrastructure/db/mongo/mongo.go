// Package mongo holds the optional MongoDB user store.
package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	defaultConnectTimeout = 10 * time.Second
	defaultTimeout        = 10 * time.Second
	defaultAppName        = "user-management-api"
)

// Config describes the connection used when STORE_DRIVER=mongo.
type Config struct {
	URI         string
	Database    string
	AppName     string
	MaxPoolSize uint64
	Timeout     time.Duration
}

// Client wraps the driver client together with the selected database.
type Client struct {
	client *mongo.Client
	DB     *mongo.Database
}

// Connect dials MongoDB and waits for a primary to answer a ping.
func Connect(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.Database == "" {
		return nil, fmt.Errorf("mongo: database name is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}
	appName := cfg.AppName
	if appName == "" {
		appName = defaultAppName
	}

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetAppName(appName).
		SetServerSelectionTimeout(timeout)
	if cfg.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(cfg.MaxPoolSize)
	}

	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(dialCtx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect %s: %w", cfg.Database, err)
	}
	if err := client.Ping(dialCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.WithoutCancel(ctx))
		return nil, fmt.Errorf("mongo ping %s: %w", cfg.Database, err)
	}

	return &Client{client: client, DB: client.Database(cfg.Database)}, nil
}

// Close disconnects from the server.
func (c *Client) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}
