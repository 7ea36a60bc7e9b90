package storage

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ---- Abstractions for Testability ----

// ChangeStream is the part of *mongo.ChangeStream the repository needs.
type ChangeStream interface {
	Next(ctx context.Context) bool
	Err() error
	Close(ctx context.Context) error
}

// DataStore defines the interface for collection operations.
type DataStore interface {
	InsertOne(
		ctx context.Context,
		document interface{},
		opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
	BulkWrite(
		ctx context.Context,
		models []mongo.WriteModel,
		opts ...*options.BulkWriteOptions) (*mongo.BulkWriteResult, error)
	ReplaceOne(
		ctx context.Context,
		filter interface{},
		replacement interface{},
		opts ...*options.ReplaceOptions) (*mongo.UpdateResult, error)
	DeleteOne(
		ctx context.Context,
		filter interface{},
		opts ...*options.DeleteOptions) (*mongo.DeleteResult, error)
	FindAll(
		ctx context.Context,
		filter interface{},
		results interface{},
		opts ...*options.FindOptions) error
	Watch(
		ctx context.Context,
		pipeline interface{},
		opts ...*options.ChangeStreamOptions) (ChangeStream, error)
}

// CollectionProvider defines the interface for obtaining a collection.
type CollectionProvider interface {
	Collection(name string) DataStore
}

// MongoCollection adapts *mongo.Collection to DataStore.
type MongoCollection struct {
	*mongo.Collection
}

// InsertOne inserts a single document.
func (c *MongoCollection) InsertOne(
	ctx context.Context,
	document interface{},
	opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error) {
	result, err := c.Collection.InsertOne(ctx, document, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to perform InsertOne: %w", err)
	}

	return result, nil
}

// BulkWrite performs a bulk write operation.
func (c *MongoCollection) BulkWrite(
	ctx context.Context,
	models []mongo.WriteModel,
	opts ...*options.BulkWriteOptions) (*mongo.BulkWriteResult, error) {
	result, err := c.Collection.BulkWrite(ctx, models, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to perform BulkWrite: %w", err)
	}

	return result, nil
}

// ReplaceOne replaces the document matched by filter.
func (c *MongoCollection) ReplaceOne(
	ctx context.Context,
	filter interface{},
	replacement interface{},
	opts ...*options.ReplaceOptions) (*mongo.UpdateResult, error) {
	result, err := c.Collection.ReplaceOne(ctx, filter, replacement, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to perform ReplaceOne: %w", err)
	}

	return result, nil
}

// DeleteOne deletes the document matched by filter.
func (c *MongoCollection) DeleteOne(
	ctx context.Context,
	filter interface{},
	opts ...*options.DeleteOptions) (*mongo.DeleteResult, error) {
	result, err := c.Collection.DeleteOne(ctx, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to perform DeleteOne: %w", err)
	}

	return result, nil
}

// FindAll decodes every document matched by filter into results, a pointer to a slice.
func (c *MongoCollection) FindAll(
	ctx context.Context,
	filter interface{},
	results interface{},
	opts ...*options.FindOptions) error {
	cursor, err := c.Collection.Find(ctx, filter, opts...)
	if err != nil {
		return fmt.Errorf("failed to perform Find: %w", err)
	}
	if err := cursor.All(ctx, results); err != nil {
		return fmt.Errorf("failed to decode documents: %w", err)
	}

	return nil
}

// Watch opens a change stream on the collection.
func (c *MongoCollection) Watch(
	ctx context.Context,
	pipeline interface{},
	opts ...*options.ChangeStreamOptions) (ChangeStream, error) {
	stream, err := c.Collection.Watch(ctx, pipeline, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open change stream: %w", err)
	}

	return stream, nil
}
