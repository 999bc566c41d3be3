package mongodb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/mock/gomock"
	"golang.org/x/sys/unix"

	"github.com/Aleph-Alpha/satmeta/v1/observability"
)

func testConfig() Config {
	return Config{
		MainDatabaseName:   "d",
		MainCollectionName: "c",
		URL:                "mongodb://127.0.0.1:1",
		Timeout:            300 * time.Millisecond,
	}
}

// lazyClient returns a client that has not talked to any server yet.
func lazyClient(t *testing.T, url string) *mongo.Client {
	t.Helper()
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(url))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })
	return client
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, testConfig().Validate())

	cfg := Config{Timeout: -time.Second}
	err := cfg.Validate()
	require.Error(t, err)
	for _, part := range []string{"main database name", "main collection name", "url", "timeout"} {
		assert.Contains(t, err.Error(), part)
	}
}

func TestInitializeRejectsInvalidConfig(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := NewMongoDB(NewMockLogger(ctrl), nil)

	err := m.Initialize(context.Background(), Config{})

	assert.ErrorIs(t, err, Client.InvalidConfigError)
	assert.Equal(t, ExitIO, ExitCode(err))
	assert.False(t, m.IsInitialized())
}

func TestCloseWithoutInitialize(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := NewMongoDB(NewMockLogger(ctrl), nil)

	err := m.Close(context.Background())

	assert.ErrorIs(t, err, Client.CloseNotAllowedError)
}

func TestInitializeInconsistentState(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := NewMongoDB(NewMockLogger(ctrl), nil)
	cfg := testConfig()
	m.cfg = &cfg

	err := m.Initialize(context.Background(), cfg)

	assert.ErrorIs(t, err, Client.InconsistencyError)
	assert.Equal(t, ExitMisuse, ExitCode(err))

	m.cfg = nil
	m.client = lazyClient(t, cfg.URL)
	err = m.Initialize(context.Background(), cfg)
	assert.ErrorIs(t, err, Client.InconsistencyError)
}

func TestInitializeSameConfigIsNoop(t *testing.T) {
	ctrl := gomock.NewController(t)
	log := NewMockLogger(ctrl)
	log.EXPECT().Warn(Client.AlreadyOpenError.Error(), nil, gomock.Any()).Times(1)

	cfg := testConfig()
	client := lazyClient(t, cfg.URL)
	m := NewMongoDB(log, nil)
	m.client, m.cfg = client, &cfg

	require.NoError(t, m.Initialize(context.Background(), cfg))
	assert.Same(t, client, m.Client())
	assert.True(t, m.IsInitialized())
}

func TestInitializeDifferentConfigFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	cfg := testConfig()
	client := lazyClient(t, cfg.URL)
	m := NewMongoDB(NewMockLogger(ctrl), nil)
	m.client, m.cfg = client, &cfg

	other := cfg
	other.MainCollectionName = "other"
	err := m.Initialize(context.Background(), other)

	assert.ErrorIs(t, err, Client.ReinitializeConfigError)
	assert.Same(t, client, m.Client())
	active, ok := m.Config()
	require.True(t, ok)
	assert.Equal(t, cfg, active)
}

func TestInitializeUnreachableServer(t *testing.T) {
	ctrl := gomock.NewController(t)
	log := NewMockLogger(ctrl)
	log.EXPECT().Info("Connecting to MongoDB", nil, gomock.Any())
	log.EXPECT().Error("MongoDB initialization failed", gomock.Any(), gomock.Any())
	log.EXPECT().Debug(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()

	var ops []observability.OperationContext
	m := NewMongoDB(log, observability.ObserverFunc(func(op observability.OperationContext) {
		ops = append(ops, op)
	}))

	err := m.Initialize(context.Background(), testConfig())

	require.Error(t, err)
	assert.ErrorIs(t, err, Client.ConnectionError)
	assert.Contains(t, err.Error(), "mongodb://127.0.0.1:1")
	assert.Equal(t, int(unix.EIO), ExitCode(err))
	assert.False(t, m.IsInitialized())
	assert.Nil(t, m.Client())

	require.Len(t, ops, 1)
	assert.Equal(t, "mongodb", ops[0].Component)
	assert.Equal(t, "list_databases", ops[0].Operation)
	assert.Error(t, ops[0].Error)
}

func TestAccessorsRequireInitialization(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := NewMongoDB(NewMockLogger(ctrl), nil)
	ctx := context.Background()

	_, err := m.GetCollection(ctx, "", "")
	assert.ErrorIs(t, err, Client.NotInitializedError)

	_, err = m.GetDatabase(ctx, "")
	assert.ErrorIs(t, err, Client.NotInitializedError)

	_, err = m.ListDatabaseNames(ctx, true)
	assert.ErrorIs(t, err, Client.NotInitializedError)
}

func TestGetCollectionWrongTypeBeforeAnything(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := NewMongoDB(NewMockLogger(ctrl), nil)
	ctx := context.Background()

	_, err := m.GetCollection(ctx, "missing_db", "")
	assert.ErrorIs(t, err, Collections.WrongTypeError)

	_, err = m.GetCollection(ctx, "", "c")
	assert.ErrorIs(t, err, Collections.WrongTypeError)
}

func TestGetCollectionMainFastPath(t *testing.T) {
	ctrl := gomock.NewController(t)
	cfg := testConfig()
	client := lazyClient(t, cfg.URL)
	m := NewMongoDB(NewMockLogger(ctrl), nil)
	m.client, m.cfg = client, &cfg
	m.database = client.Database(cfg.MainDatabaseName)
	m.collection = m.database.Collection(cfg.MainCollectionName)

	coll, err := m.GetCollection(context.Background(), "", "")
	require.NoError(t, err)
	assert.Same(t, m.MainCollection(), coll)

	db, err := m.GetDatabase(context.Background(), "")
	require.NoError(t, err)
	assert.Same(t, m.MainDatabase(), db)
}

func TestCloseClearsState(t *testing.T) {
	ctrl := gomock.NewController(t)
	log := NewMockLogger(ctrl)
	log.EXPECT().Info("MongoDB connection closed", nil, gomock.Any())

	cfg := testConfig()
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(cfg.URL))
	require.NoError(t, err)
	m := NewMongoDB(log, nil)
	m.client, m.cfg = client, &cfg
	m.database = client.Database(cfg.MainDatabaseName)
	m.collection = m.database.Collection(cfg.MainCollectionName)

	require.NoError(t, m.Close(context.Background()))
	assert.False(t, m.IsInitialized())
	assert.Nil(t, m.MainDatabase())
	assert.Nil(t, m.MainCollection())
	_, ok := m.Config()
	assert.False(t, ok)

	assert.ErrorIs(t, m.Close(context.Background()), Client.CloseNotAllowedError)
}

func TestGetID(t *testing.T) {
	oid := primitive.NewObjectID()

	id, err := GetID(bson.M{"_id": oid, "uri": "s3://a"})
	require.NoError(t, err)
	assert.Equal(t, oid.Hex(), id)

	id, err = GetID(bson.M{"_id": "custom"})
	require.NoError(t, err)
	assert.Equal(t, "custom", id)

	_, err = GetID(bson.M{"uri": "s3://a"})
	assert.ErrorIs(t, err, Documents.NotFoundError)
}

func TestGetIDsFromDocuments(t *testing.T) {
	a, b := primitive.NewObjectID(), primitive.NewObjectID()

	ids, err := GetIDsFromDocuments([]bson.M{{"_id": a}, {"_id": b}})
	require.NoError(t, err)
	assert.Equal(t, []string{a.Hex(), b.Hex()}, ids)
}

type fakeCursor struct {
	docs    []bson.M
	pos     int
	err     error
	decoded int
	closed  bool
}

func (c *fakeCursor) Next(context.Context) bool {
	if c.pos >= len(c.docs) {
		return false
	}
	c.pos++
	return true
}

func (c *fakeCursor) Decode(val interface{}) error {
	c.decoded++
	raw, err := bson.Marshal(c.docs[c.pos-1])
	if err != nil {
		return err
	}
	return bson.Unmarshal(raw, val)
}

func (c *fakeCursor) Err() error { return c.err }

func (c *fakeCursor) Close(context.Context) error {
	c.closed = true
	return nil
}

func TestGetIDsStreamsLazily(t *testing.T) {
	a, b, c := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()
	cur := &fakeCursor{docs: []bson.M{{"_id": a}, {"_id": b}, {"_id": c}}}

	var got []string
	for id, err := range GetIDs(context.Background(), cur) {
		require.NoError(t, err)
		got = append(got, id)
		if len(got) == 2 {
			break
		}
	}

	assert.Equal(t, []string{a.Hex(), b.Hex()}, got)
	assert.Equal(t, 2, cur.decoded)
	assert.True(t, cur.closed)
}

func TestCollectIDsReportsCursorError(t *testing.T) {
	cur := &fakeCursor{docs: []bson.M{{"_id": primitive.NewObjectID()}}, err: errors.New("cursor killed")}

	_, err := CollectIDs(GetIDs(context.Background(), cur))

	assert.EqualError(t, err, "cursor killed")
	assert.True(t, cur.closed)
}

func TestCollectIDsEmpty(t *testing.T) {
	ids, err := CollectIDs(GetIDs(context.Background(), &fakeCursor{}))
	require.NoError(t, err)
	assert.Equal(t, []string{}, ids)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, ExitMisuse, ExitCode(errors.New("x")))
	assert.Equal(t, int(unix.ENODATA), ExitCode(fatal(Databases.NotFoundError, ExitDataAbsent)))
}

func TestErrorGroups(t *testing.T) {
	desc := DatabaseCollectionErrors().Descriptor()
	assert.Equal(t,
		"Could not find the given database name. |OR| Could not find the given collection name inside the specified database.",
		desc[404])
	assert.Len(t, DatabaseCollectionDocumentErrors().Messages(404), 3)
	assert.Len(t, Client.Union().Statuses(), 4)
}
