package storage

import (
	"context"
	"fmt"
	"sync"

	"fintrack/core/appcontext"
	"fintrack/core/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionName returns the per-user collection holding records of kind.
func CollectionName(userID string, kind model.Kind) string {
	return fmt.Sprintf("%s_%s", kind, userID)
}

// MongoRepository stores each user's collections in MongoDB and pushes
// change notifications from change streams.
type MongoRepository struct {
	provider CollectionProvider
}

// NewMongoRepository creates a new MongoRepository.
func NewMongoRepository(provider CollectionProvider) *MongoRepository {
	return &MongoRepository{
		provider: provider,
	}
}

// Create inserts records. Several records are written in one ordered bulk write.
func (r *MongoRepository) Create(ctx context.Context, userID string, kind model.Kind, records ...interface{}) error {
	if len(records) == 0 {
		return nil // Nothing to insert
	}

	collectionName := CollectionName(userID, kind)
	collection := r.provider.Collection(collectionName)

	if len(records) == 1 {
		if _, err := collection.InsertOne(ctx, records[0]); err != nil {
			return fmt.Errorf("failed to insert into collection %s: %w", collectionName, err)
		}
		return nil
	}

	models := make([]mongo.WriteModel, 0, len(records))
	for _, record := range records {
		models = append(models, mongo.NewInsertOneModel().SetDocument(record))
	}
	if _, err := collection.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(true)); err != nil {
		return fmt.Errorf("failed to perform bulk write for collection %s: %w", collectionName, err)
	}

	return nil
}

// Replace overwrites the record with the given id.
func (r *MongoRepository) Replace(ctx context.Context, userID string, kind model.Kind, id string, record interface{}) error {
	collectionName := CollectionName(userID, kind)
	_, err := r.provider.Collection(collectionName).ReplaceOne(ctx, bson.M{"_id": id}, record)
	if err != nil {
		return fmt.Errorf("failed to replace %s in collection %s: %w", id, collectionName, err)
	}

	return nil
}

// Delete removes the record with the given id. Deleting a missing id is not an error.
func (r *MongoRepository) Delete(ctx context.Context, userID string, kind model.Kind, id string) error {
	collectionName := CollectionName(userID, kind)
	_, err := r.provider.Collection(collectionName).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete %s from collection %s: %w", id, collectionName, err)
	}

	return nil
}

// Snapshot decodes the full collection into results, a pointer to a slice.
// Transactions come back newest first.
func (r *MongoRepository) Snapshot(ctx context.Context, userID string, kind model.Kind, results interface{}) error {
	collectionName := CollectionName(userID, kind)

	var opts []*options.FindOptions
	if kind == model.KindTransactions {
		opts = append(opts, options.Find().SetSort(bson.D{{Key: "date", Value: -1}}))
	}

	if err := r.provider.Collection(collectionName).FindAll(ctx, bson.M{}, results, opts...); err != nil {
		return fmt.Errorf("failed to read collection %s: %w", collectionName, err)
	}

	return nil
}

// Watch calls onChange for every change on the collection until stop is called.
// The stream is open when Watch returns, so no change after that point is missed.
func (r *MongoRepository) Watch(
	ctx context.Context,
	userID string,
	kind model.Kind,
	onChange func()) (func(), error) {
	logger := appcontext.LoggerFromContext(ctx)
	collectionName := CollectionName(userID, kind)

	watchCtx, cancel := context.WithCancel(ctx)
	stream, err := r.provider.Collection(collectionName).Watch(watchCtx, mongo.Pipeline{})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to watch collection %s: %w", collectionName, err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer func() {
			if err := stream.Close(context.Background()); err != nil {
				logger.WarnContext(ctx, "Failed to close change stream", "collection", collectionName, "error", err)
			}
		}()

		for stream.Next(watchCtx) {
			onChange()
		}
		if err := stream.Err(); err != nil && watchCtx.Err() == nil {
			logger.ErrorContext(ctx, "Change stream stopped", "collection", collectionName, "error", err)
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			<-done
		})
	}, nil
}
