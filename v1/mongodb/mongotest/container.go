// Package mongotest starts throwaway MongoDB servers for integration tests.
package mongotest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	image              = "mongo:7.0"
	port      nat.Port = "27017/tcp"
	startWait          = 60 * time.Second
)

// Start runs a MongoDB container for the duration of the test and returns its
// connection string. The test is skipped in -short mode.
func Start(t testing.TB) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping MongoDB integration test in short mode")
	}

	ctx := context.Background()
	req := testcontainers.ContainerRequest{
		Image:        image,
		ExposedPorts: []string{string(port)},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort(port).WithStartupTimeout(startWait),
			wait.ForLog("Waiting for connections").WithStartupTimeout(startWait),
		),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("failed to start MongoDB container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate MongoDB container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("failed to get container host: %v", err)
	}
	mapped, err := container.MappedPort(ctx, port)
	if err != nil {
		t.Fatalf("failed to get mapped port: %v", err)
	}

	return fmt.Sprintf("mongodb://%s:%s", host, mapped.Port())
}

// Seed creates database.collection on the server at url, inserting docs when
// given, and returns a client the test may use to inspect the store.
func Seed(t testing.TB, url, database, collection string, docs ...interface{}) *mongo.Client {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(url))
	if err != nil {
		t.Fatalf("failed to connect seed client: %v", err)
	}
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	db := client.Database(database)
	names, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: collection}})
	if err != nil {
		t.Fatalf("failed to list collections: %v", err)
	}
	if len(names) == 0 {
		if err := db.CreateCollection(ctx, collection); err != nil {
			t.Fatalf("failed to create collection %s.%s: %v", database, collection, err)
		}
	}
	if len(docs) > 0 {
		if _, err := db.Collection(collection).InsertMany(ctx, docs); err != nil {
			t.Fatalf("failed to insert seed documents: %v", err)
		}
	}
	return client
}
