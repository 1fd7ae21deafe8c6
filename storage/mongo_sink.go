package storage

import (
	"candreg/candidate"
	"candreg/config"
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type MongoSink struct {
	uri        string
	database   string
	collection string
	timeout    time.Duration
}

func NewMongoSink(cfg config.SinkConfig) *MongoSink {
	return &MongoSink{
		uri:        cfg.URI,
		database:   cfg.Database,
		collection: cfg.Collection,
		timeout:    cfg.Timeout,
	}
}

func (s *MongoSink) Open(ctx context.Context) (Session, error) {
	opts := options.Client().
		ApplyURI(s.uri).
		SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1))
	if s.timeout > 0 {
		opts.SetConnectTimeout(s.timeout)
		opts.SetServerSelectionTimeout(s.timeout)
	}

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.WithoutCancel(ctx))
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	return &mongoSession{
		client:     client,
		collection: client.Database(s.database).Collection(s.collection),
	}, nil
}

type mongoSession struct {
	client     *mongo.Client
	collection *mongo.Collection
}

func (s *mongoSession) InsertOne(ctx context.Context, record candidate.Record) (string, error) {
	res, err := s.collection.InsertOne(ctx, mongoDocument(record))
	if err != nil {
		return "", fmt.Errorf("insert document: %w", err)
	}
	return formatInsertedID(res.InsertedID), nil
}

// ListCandidates returns all documents of the collection in _id order.
func (s *mongoSession) ListCandidates(ctx context.Context) ([]StoredCandidate, error) {
	cursor, err := s.collection.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find documents: %w", err)
	}
	defer cursor.Close(ctx)

	var stored []StoredCandidate
	for cursor.Next(ctx) {
		var document struct {
			ID               any `bson:"_id"`
			candidate.Record `bson:",inline"`
		}
		if err := cursor.Decode(&document); err != nil {
			return nil, fmt.Errorf("decode document: %w", err)
		}
		stored = append(stored, StoredCandidate{ID: formatInsertedID(document.ID), Record: document.Record})
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return stored, nil
}

func (s *mongoSession) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func mongoDocument(record candidate.Record) bson.D {
	values := record.Fields()
	document := make(bson.D, 0, len(values))
	for i, key := range candidate.FieldNames {
		document = append(document, bson.E{Key: key, Value: values[i]})
	}
	return document
}

func formatInsertedID(id any) string {
	switch typed := id.(type) {
	case bson.ObjectID:
		return typed.Hex()
	case string:
		return typed
	default:
		return fmt.Sprint(typed)
	}
}
