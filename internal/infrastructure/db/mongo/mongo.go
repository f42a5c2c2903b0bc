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
	defaultTimeout = 10 * time.Second
	indexTimeout   = 30 * time.Second
)

// Config captures the minimal settings required to establish a MongoDB connection.
type Config struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// Connect establishes a MongoDB client, verifies connectivity with a ping, and
// returns both the client and the selected database. A default timeout is
// applied when none is provided.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// Free-form application data decodes nested documents as maps.
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})

	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	return client, client.Database(cfg.Database), nil
}

// Pinger adapts a client to the readiness probe.
type Pinger struct {
	Client *mongo.Client
}

func (p Pinger) Name() string { return "mongo" }

func (p Pinger) Ping(ctx context.Context) error {
	return p.Client.Ping(ctx, readpref.Primary())
}

// Repositories bundles every collection-backed repository.
type Repositories struct {
	Users        *UserRepository
	PermitTypes  *PermitTypeRepository
	Applications *ApplicationRepository
	Documents    *DocumentRepository
	Properties   *PropertyRecordRepository
}

func NewRepositories(db *mongo.Database) *Repositories {
	return &Repositories{
		Users:        NewUserRepository(db),
		PermitTypes:  NewPermitTypeRepository(db),
		Applications: NewApplicationRepository(db),
		Documents:    NewDocumentRepository(db),
		Properties:   NewPropertyRecordRepository(db),
	}
}

// EnsureIndexes creates the indexes of every collection.
func (r *Repositories) EnsureIndexes(ctx context.Context) error {
	for name, fn := range map[string]func(context.Context) error{
		"users":            r.Users.EnsureIndexes,
		"permit_types":     r.PermitTypes.EnsureIndexes,
		"applications":     r.Applications.EnsureIndexes,
		"documents":        r.Documents.EnsureIndexes,
		"property_records": r.Properties.EnsureIndexes,
	} {
		if err := fn(ctx); err != nil {
			return fmt.Errorf("ensure %s indexes: %w", name, err)
		}
	}
	return nil
}
