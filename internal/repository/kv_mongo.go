package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	errs "opening_tree/internal/errors"
)

const sessionsCollection = "sessions"

type sessionDocument struct {
	Key       string    `bson:"_id"`
	Payload   []byte    `bson:"payload"`
	UpdatedAt time.Time `bson:"updated_at"`
}

type MongoSessionStore struct {
	mongo *mongo.Database
}

func NewMongoSessionStore(db *mongo.Database) *MongoSessionStore {
	return &MongoSessionStore{mongo: db}
}

func (m *MongoSessionStore) Get(ctx context.Context, key string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var doc sessionDocument
	err := m.mongo.Collection(sessionsCollection).FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: %s", errs.ErrNotFound, key)
	}
	if err != nil {
		return nil, err
	}
	return doc.Payload, nil
}

func (m *MongoSessionStore) Set(ctx context.Context, key string, value []byte) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	doc := sessionDocument{Key: key, Payload: value, UpdatedAt: time.Now().UTC()}
	_, err := m.mongo.Collection(sessionsCollection).ReplaceOne(ctx,
		bson.M{"_id": key}, doc, options.Replace().SetUpsert(true))
	return err
}

func (m *MongoSessionStore) Remove(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := m.mongo.Collection(sessionsCollection).DeleteOne(ctx, bson.M{"_id": key})
	return err
}
