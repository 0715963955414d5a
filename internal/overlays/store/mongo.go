package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/smazurov/hlsrelay/internal/overlays"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// CollectionName is the MongoDB collection overlays live in.
const CollectionName = "overlays"

// MongoStore implements overlays.Store on a MongoDB collection. IDs are
// ObjectIDs rendered as hex.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

var _ overlays.Store = (*MongoStore)(nil)

// NewMongo connects to uri and uses database.overlays. The connection is
// established lazily by the driver; call Ping to verify it.
func NewMongo(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(database).Collection(CollectionName),
	}, nil
}

// List returns all documents ordered by _id descending.
func (s *MongoStore) List(ctx context.Context) ([]overlays.Document, error) {
	cur, err := s.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []overlays.Document
	for cur.Next(ctx) {
		doc, err := fromBSON(cur.Current)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}

// Create inserts body and returns it with the generated ObjectID.
func (s *MongoStore) Create(ctx context.Context, body []byte) (*overlays.Document, error) {
	fields, err := toBSON(body)
	if err != nil {
		return nil, err
	}

	res, err := s.coll.InsertOne(ctx, fields)
	if err != nil {
		return nil, err
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	created := oid.Timestamp()
	return &overlays.Document{ID: oid.Hex(), Body: body, CreatedAt: created, UpdatedAt: created}, nil
}

// Get returns one document.
func (s *MongoStore) Get(ctx context.Context, id string) (*overlays.Document, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}
	return s.findOne(ctx, oid)
}

// Update applies patch with $set. An empty patch only checks existence.
func (s *MongoStore) Update(ctx context.Context, id string, patch []byte) (*overlays.Document, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}

	fields, err := toBSON(patch)
	if err != nil {
		return nil, err
	}

	if len(fields) > 0 {
		res, err := s.coll.UpdateOne(ctx, bson.D{{Key: "_id", Value: oid}}, bson.D{{Key: "$set", Value: fields}})
		if err != nil {
			return nil, err
		}
		if res.MatchedCount == 0 {
			return nil, overlays.ErrNotFound
		}
	}

	doc, err := s.findOne(ctx, oid)
	if err != nil {
		return nil, err
	}
	doc.UpdatedAt = time.Now().UTC()
	return doc, nil
}

// Delete removes one document.
func (s *MongoStore) Delete(ctx context.Context, id string) (bool, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return false, err
	}

	res, err := s.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return false, err
	}
	return res.DeletedCount == 1, nil
}

// Ping checks the primary is reachable.
func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) findOne(ctx context.Context, oid primitive.ObjectID) (*overlays.Document, error) {
	raw, err := s.coll.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Raw()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, overlays.ErrNotFound
		}
		return nil, err
	}
	return fromBSON(raw)
}

func parseObjectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, overlays.ErrInvalidID
	}
	return oid, nil
}

// toBSON decodes a relaxed Extended JSON object.
func toBSON(body []byte) (bson.D, error) {
	var fields bson.D
	if err := bson.UnmarshalExtJSON(body, false, &fields); err != nil {
		return nil, fmt.Errorf("failed to convert overlay to bson: %w", err)
	}
	return fields, nil
}

// fromBSON splits _id off a stored document and renders the rest as relaxed
// Extended JSON.
func fromBSON(raw bson.Raw) (*overlays.Document, error) {
	var fields bson.D
	if err := bson.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("failed to decode overlay: %w", err)
	}

	doc := &overlays.Document{}
	rest := bson.D{}
	for _, e := range fields {
		if e.Key != "_id" {
			rest = append(rest, e)
			continue
		}
		switch v := e.Value.(type) {
		case primitive.ObjectID:
			doc.ID = v.Hex()
			doc.CreatedAt = v.Timestamp()
		default:
			doc.ID = fmt.Sprint(v)
		}
	}
	doc.UpdatedAt = doc.CreatedAt

	body, err := bson.MarshalExtJSON(rest, false, false)
	if err != nil {
		return nil, fmt.Errorf("failed to encode overlay: %w", err)
	}
	doc.Body = body
	return doc, nil
}
