package config

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func ConnectMongoDB(cfg *Config) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %v", err)
	}

	// Test connection
	err = client.Ping(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %v", err)
	}

	// Create indexes
	err = createIndexes(client, cfg.DBName)
	if err != nil {
		return nil, fmt.Errorf("failed to create indexes: %v", err)
	}

	return client, nil
}

func createIndexes(client *mongo.Client, dbName string) error {
	db := client.Database(dbName)

	// Documents collection indexes
	documentsCollection := db.Collection("documents")
	documentIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "storage_key", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "certification", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "uploaded_at", Value: -1}},
		},
	}
	_, err := documentsCollection.Indexes().CreateMany(context.Background(), documentIndexes)
	if err != nil {
		return err
	}

	// Index records: record_id is the deterministic document+ordinal id, so
	// concurrent ingests of different documents never collide on upsert.
	recordsCollection := db.Collection("index_records")
	recordIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "record_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "document_id", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "certification", Value: 1}, {Key: "content_type", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "certification", Value: 1}, {Key: "content_type", Value: 1}, {Key: "difficulty", Value: 1}},
		},
	}
	_, err = recordsCollection.Indexes().CreateMany(context.Background(), recordIndexes)
	if err != nil {
		return err
	}

	// Quiz sessions collection indexes
	quizCollection := db.Collection("quiz_sessions")
	quizIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "quiz_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
		},
	}
	_, err = quizCollection.Indexes().CreateMany(context.Background(), quizIndexes)
	if err != nil {
		return err
	}

	return nil
}

// EnsureVectorSearchIndex creates the Atlas vector search index on
// index_records if it does not exist yet. Check-then-create runs once per
// deployment at startup, never per document.
func EnsureVectorSearchIndex(ctx context.Context, client *mongo.Client, cfg *Config) error {
	col := client.Database(cfg.DBName).Collection("index_records")

	cursor, err := col.SearchIndexes().List(ctx, options.SearchIndexes().SetName(cfg.VectorIndexName))
	if err != nil {
		return fmt.Errorf("failed to list search indexes: %w", err)
	}
	defer cursor.Close(ctx)

	if cursor.Next(ctx) {
		return nil // index already exists
	}

	definition := bson.D{
		{Key: "fields", Value: bson.A{
			bson.D{
				{Key: "type", Value: "vector"},
				{Key: "path", Value: "vector"},
				{Key: "numDimensions", Value: cfg.VectorDimensions},
				{Key: "similarity", Value: cfg.SimilarityMetric},
			},
			bson.D{{Key: "type", Value: "filter"}, {Key: "path", Value: "certification"}},
			bson.D{{Key: "type", Value: "filter"}, {Key: "path", Value: "content_type"}},
		}},
	}

	model := mongo.SearchIndexModel{
		Definition: definition,
		Options:    options.SearchIndexes().SetName(cfg.VectorIndexName).SetType("vectorSearch"),
	}

	if _, err := col.SearchIndexes().CreateOne(ctx, model); err != nil {
		return fmt.Errorf("failed to create vector search index: %w", err)
	}

	return nil
}
