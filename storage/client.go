package storage

import (
	"context"
	"fmt"

	"fintrack/core/appcontext"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoClient is the part of *mongo.Client the tracker's remote store uses.
type MongoClient interface {
	Disconnect(ctx context.Context) error
	Database(name string, opts ...*options.DatabaseOptions) *mongo.Database
}

// ConnectToMongoDBFunc is the connector used by callers; tests may replace it.
var ConnectToMongoDBFunc = ConnectToMongoDB

// ConnectToMongoDB dials uri and pings the deployment. The returned client encodes
// decimal amounts as Decimal128.
func ConnectToMongoDB(ctx context.Context, uri string) (MongoClient, error) {
	logger := appcontext.LoggerFromContext(ctx)
	logger.DebugContext(ctx, "Attempting to connect to MongoDB", "uri", uri)

	clientOptions := options.Client().ApplyURI(uri).SetRegistry(NewRegistry())

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err = client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	logger.InfoContext(ctx, "Successfully established connection to MongoDB")
	return client, nil
}

// MongoProvider hands out the collections of one database.
type MongoProvider struct {
	client MongoClient
	dbName string
}

// NewMongoProvider creates a new MongoProvider over the named database.
func NewMongoProvider(client MongoClient, dbName string) *MongoProvider {
	return &MongoProvider{client: client, dbName: dbName}
}

// Collection implements CollectionProvider.
func (p *MongoProvider) Collection(name string) DataStore {
	return &MongoCollection{p.client.Database(p.dbName).Collection(name)}
}
