package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/trian/landing/backend/wishes-service/internal/wish"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// documentID is the _id of the one Mongo document holding every wish.
const documentID = "wishes"

type wishesDocument struct {
	ID    string      `bson:"_id"`
	Items []wish.Wish `bson:"items"`
}

// MongoRepo stores the collection as a single Mongo document
// {_id: "wishes", items: [...]} that is replaced wholesale on every save.
type MongoRepo struct {
	col *mongo.Collection
}

func NewMongoRepo(col *mongo.Collection) *MongoRepo {
	return &MongoRepo{col: col}
}

func (m *MongoRepo) Name() string { return "mongo" }

func (m *MongoRepo) Load(ctx context.Context) ([]wish.Wish, error) {
	var doc wishesDocument
	err := m.col.FindOne(ctx, bson.M{"_id": documentID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// $setOnInsert leaves a document created by a racing writer untouched
			_, err := m.col.UpdateOne(ctx,
				bson.M{"_id": documentID},
				bson.M{"$setOnInsert": bson.M{"items": []wish.Wish{}}},
				options.Update().SetUpsert(true))
			if err != nil {
				return nil, fmt.Errorf("mongo init wishes: %w", err)
			}
			return []wish.Wish{}, nil
		}
		return nil, fmt.Errorf("mongo load wishes: %w", err)
	}
	if doc.Items == nil {
		doc.Items = []wish.Wish{}
	}
	return doc.Items, nil
}

func (m *MongoRepo) Save(ctx context.Context, wishes []wish.Wish) error {
	doc := wishesDocument{ID: documentID, Items: wish.Clone(wishes)}
	_, err := m.col.ReplaceOne(ctx, bson.M{"_id": documentID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("mongo save wishes: %w", err)
	}
	return nil
}
