package repomanager

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/profilekeeper/internal/server/repositories/accounts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoRepositoryManager vends MongoDB-backed repositories. Its migration
// step creates the unique indexes the repositories rely on.
type MongoRepositoryManager struct {
	client   *mongo.Client
	accounts *accounts.MongoRepository
}

// mongoConnect is a seam for testing mongo.Connect.
var mongoConnect = func(ctx context.Context, uri string) (*mongo.Client, error) {
	return mongo.Connect(ctx, options.Client().ApplyURI(uri))
}

// OpenMongo connects to uri and binds repositories to database.
func OpenMongo(ctx context.Context, uri, database string) (*MongoRepositoryManager, error) {
	client, err := mongoConnect(ctx, uri)
	if err != nil {
		return nil, fmt.Errorf("mongo connect error: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping error: %w", err)
	}
	return NewMongoRepositoryManager(client, client.Database(database)), nil
}

// NewMongoRepositoryManager wraps a connected client; db is usually
// client.Database(name).
func NewMongoRepositoryManager(client *mongo.Client, db *mongo.Database) *MongoRepositoryManager {
	return &MongoRepositoryManager{
		client:   client,
		accounts: accounts.NewMongoRepository(db.Collection(accounts.CollectionName)),
	}
}

func (m *MongoRepositoryManager) Accounts() accounts.Repository {
	return m.accounts
}

func (m *MongoRepositoryManager) RunMigrations(ctx context.Context) error {
	return m.accounts.EnsureIndexes(ctx)
}

func (m *MongoRepositoryManager) Close(ctx context.Context) error {
	if m.client == nil {
		return nil
	}
	return m.client.Disconnect(ctx)
}
