package store

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/smazurov/hlsrelay/internal/overlays"
	"github.com/tidwall/gjson"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestFromBSONSplitsID(t *testing.T) {
	oid := primitive.NewObjectID()
	raw, err := bson.Marshal(bson.D{
		{Key: "_id", Value: oid},
		{Key: "name", Value: "Scoreboard"},
		{Key: "elements", Value: bson.A{bson.D{{Key: "type", Value: "text"}, {Key: "x", Value: int32(10)}}}},
	})
	if err != nil {
		t.Fatal(err)
	}

	doc, err := fromBSON(raw)
	if err != nil {
		t.Fatalf("fromBSON failed: %v", err)
	}
	if doc.ID != oid.Hex() {
		t.Errorf("ID = %s, want %s", doc.ID, oid.Hex())
	}
	if gjson.GetBytes(doc.Body, "_id").Exists() {
		t.Errorf("body still carries _id: %s", doc.Body)
	}
	if gjson.GetBytes(doc.Body, "name").String() != "Scoreboard" {
		t.Errorf("name lost: %s", doc.Body)
	}
	if x := gjson.GetBytes(doc.Body, "elements.0.x"); x.Type != gjson.Number || x.Int() != 10 {
		t.Errorf("relaxed JSON should keep plain numbers: %s", doc.Body)
	}
	if doc.CreatedAt.IsZero() {
		t.Error("CreatedAt should come from the ObjectID")
	}
}

func TestToBSONRoundTripsFields(t *testing.T) {
	fields, err := toBSON([]byte(`{"name":"n","elements":[],"opacity":0.5}`))
	if err != nil {
		t.Fatal(err)
	}
	if len(fields) != 3 || fields[0].Key != "name" {
		t.Errorf("unexpected fields %v", fields)
	}

	if _, err := toBSON([]byte(`{"name":`)); err == nil {
		t.Error("expected error for truncated JSON")
	}
}

func TestParseObjectID(t *testing.T) {
	if _, err := parseObjectID("nope"); !errors.Is(err, overlays.ErrInvalidID) {
		t.Errorf("parseObjectID(nope) = %v, want ErrInvalidID", err)
	}
	oid := primitive.NewObjectID()
	got, err := parseObjectID(oid.Hex())
	if err != nil || got != oid {
		t.Errorf("parseObjectID(%s) = %v, %v", oid.Hex(), got, err)
	}
}

// TestMongoStoreCRUD runs against a live server when HLSRELAY_TEST_MONGO_URI
// is set.
func TestMongoStoreCRUD(t *testing.T) {
	uri := os.Getenv("HLSRELAY_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("HLSRELAY_TEST_MONGO_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s, err := NewMongo(ctx, uri, "hlsrelay_test_"+primitive.NewObjectID().Hex())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		_ = s.coll.Database().Drop(context.Background())
		_ = s.Close(context.Background())
	})
	if err := s.Ping(ctx); err != nil {
		t.Fatalf("Ping failed: %v", err)
	}

	first, err := s.Create(ctx, []byte(`{"name":"a","elements":[]}`))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	second, err := s.Create(ctx, []byte(`{"name":"b","elements":[]}`))
	if err != nil {
		t.Fatal(err)
	}

	docs, err := s.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 2 || docs[0].ID != second.ID || docs[1].ID != first.ID {
		t.Errorf("List order wrong: %+v", docs)
	}

	updated, err := s.Update(ctx, first.ID, []byte(`{"name":"a2"}`))
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Name() != "a2" {
		t.Errorf("name = %q after update", updated.Name())
	}
	if _, err := s.Update(ctx, primitive.NewObjectID().Hex(), []byte(`{"name":"x"}`)); !errors.Is(err, overlays.ErrNotFound) {
		t.Errorf("Update(missing) = %v, want ErrNotFound", err)
	}

	deleted, err := s.Delete(ctx, first.ID)
	if err != nil || !deleted {
		t.Errorf("Delete = %v, %v", deleted, err)
	}
	if _, err := s.Get(ctx, first.ID); !errors.Is(err, overlays.ErrNotFound) {
		t.Errorf("Get after delete = %v, want ErrNotFound", err)
	}
}
