package mongodb

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"slices"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ListDatabaseNames lists the databases on the server, optionally without DefaultDatabaseNames.
func (m *MongoDB) ListDatabaseNames(ctx context.Context, excludeDefaults bool) ([]string, error) {
	s, err := m.live()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	names, err := s.client.ListDatabaseNames(ctx, bson.D{})
	m.observeOperation("list_databases", "", "", time.Since(start), err, int64(len(names)))
	if err != nil {
		return nil, fmt.Errorf("failed to list databases: %w", err)
	}

	if excludeDefaults {
		names = slices.DeleteFunc(names, func(n string) bool {
			return slices.Contains(DefaultDatabaseNames, n)
		})
	}
	return names, nil
}

// GetDatabase resolves a database by name. The empty name is the main
// database and needs no round trip; any other name must exist on the server.
func (m *MongoDB) GetDatabase(ctx context.Context, name string) (*mongo.Database, error) {
	s, err := m.live()
	if err != nil {
		return nil, err
	}
	if name == "" {
		return s.database, nil
	}

	start := time.Now()
	names, err := s.client.ListDatabaseNames(ctx, bson.D{})
	m.observeOperation("list_databases", name, "", time.Since(start), err, int64(len(names)))
	if err != nil {
		return nil, fmt.Errorf("failed to list databases: %w", err)
	}
	if !slices.Contains(names, name) {
		return nil, Databases.NotFoundError
	}
	return s.client.Database(name), nil
}

// GetCollection resolves a collection. Both names empty is the main collection
// and needs no round trip. Exactly one empty name is rejected with
// Collections.WrongTypeError before anything else is checked. Otherwise the
// database and then the collection must exist.
func (m *MongoDB) GetCollection(ctx context.Context, databaseName, collectionName string) (*mongo.Collection, error) {
	if (databaseName == "") != (collectionName == "") {
		return nil, Collections.WrongTypeError
	}

	s, err := m.live()
	if err != nil {
		return nil, err
	}
	if databaseName == "" {
		return s.collection, nil
	}

	database, err := m.GetDatabase(ctx, databaseName)
	if err != nil {
		return nil, err
	}

	collections, err := m.ListCollectionNames(ctx, database)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(collections, collectionName) {
		return nil, Collections.NotFoundError
	}
	return database.Collection(collectionName), nil
}

// ListCollectionNames lists the collections of database.
func (m *MongoDB) ListCollectionNames(ctx context.Context, database *mongo.Database) ([]string, error) {
	start := time.Now()
	names, err := database.ListCollectionNames(ctx, bson.D{})
	m.observeOperation("list_collections", database.Name(), "", time.Since(start), err, int64(len(names)))
	if err != nil {
		return nil, fmt.Errorf("failed to list collections of %s: %w", database.Name(), err)
	}
	return names, nil
}

// FindByID returns the document of coll whose _id is the ObjectID given in hex.
// The returned document carries its _id as the hex string.
func (m *MongoDB) FindByID(ctx context.Context, coll *mongo.Collection, id string) (bson.M, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, Documents.InvalidIDError
	}

	start := time.Now()
	var doc bson.M
	err = coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	m.observeOperation("find_one", coll.Database().Name(), coll.Name(), time.Since(start), ignoreNoDocuments(err), 0)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, Documents.NotFoundError
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find document %s: %w", id, err)
	}

	doc["_id"] = id
	return doc, nil
}

func ignoreNoDocuments(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil
	}
	return err
}

// GetID returns the _id of doc as a plain string. ObjectIDs are rendered as
// their hex form. A document without _id yields Documents.NotFoundError.
func GetID(doc bson.M) (string, error) {
	id, ok := doc["_id"]
	if !ok {
		return "", Documents.NotFoundError
	}
	return idString(id)
}

func idString(id any) (string, error) {
	switch v := id.(type) {
	case nil:
		return "", Documents.NotFoundError
	case primitive.ObjectID:
		return v.Hex(), nil
	case string:
		return v, nil
	default:
		return fmt.Sprint(v), nil
	}
}

// Cursor is the part of *mongo.Cursor GetIDs reads from.
type Cursor interface {
	Next(ctx context.Context) bool
	Decode(val interface{}) error
	Err() error
	Close(ctx context.Context) error
}

type idOnly struct {
	ID any `bson:"_id"`
}

// GetIDs streams the _id of every document of cursor as a string. Documents
// are decoded one at a time as the sequence is consumed. The cursor is closed
// when iteration stops. A failure is yielded once as the last element.
func GetIDs(ctx context.Context, cursor Cursor) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		defer func() {
			_ = cursor.Close(context.WithoutCancel(ctx))
		}()

		for cursor.Next(ctx) {
			var doc idOnly
			if err := cursor.Decode(&doc); err != nil {
				yield("", fmt.Errorf("failed to decode document: %w", err))
				return
			}
			id, err := idString(doc.ID)
			if !yield(id, err) || err != nil {
				return
			}
		}
		if err := cursor.Err(); err != nil {
			yield("", err)
		}
	}
}

// GetIDsFromDocuments returns the _id of every document of docs as a string.
func GetIDsFromDocuments(docs []bson.M) ([]string, error) {
	out := make([]string, 0, len(docs))
	for _, doc := range docs {
		id, err := GetID(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

// CollectIDs drains ids, stopping at the first error.
func CollectIDs(ids iter.Seq2[string, error]) ([]string, error) {
	out := []string{}
	for id, err := range ids {
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}
