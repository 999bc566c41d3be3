package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/Aleph-Alpha/satmeta/v1/logger"
	"github.com/Aleph-Alpha/satmeta/v1/metrics"
	"github.com/Aleph-Alpha/satmeta/v1/mongodb"
	"github.com/Aleph-Alpha/satmeta/v1/observability"
)

type fakeGateway struct {
	databases      []string
	excludeDefault *bool
	collectionErr  error
	databaseErr    error
}

func (g *fakeGateway) ListDatabaseNames(_ context.Context, excludeDefaults bool) ([]string, error) {
	g.excludeDefault = &excludeDefaults
	return g.databases, nil
}

func (g *fakeGateway) GetDatabase(context.Context, string) (*mongo.Database, error) {
	return nil, g.databaseErr
}

func (g *fakeGateway) GetCollection(context.Context, string, string) (*mongo.Collection, error) {
	return nil, g.collectionErr
}

func (g *fakeGateway) ListCollectionNames(context.Context, *mongo.Database) ([]string, error) {
	return nil, nil
}

func (g *fakeGateway) FindByID(context.Context, *mongo.Collection, string) (bson.M, error) {
	return nil, mongodb.Documents.NotFoundError
}

type recordingMetrics struct {
	metrics.MetricsCollector
	statuses  []string
	endpoints []string
}

func (m *recordingMetrics) IncrementRequests(status string) { m.statuses = append(m.statuses, status) }

func (m *recordingMetrics) RecordRequestDuration(_ time.Time, endpoint string) {
	m.endpoints = append(m.endpoints, endpoint)
}

func (m *recordingMetrics) ObserveOperation(observability.OperationContext) {}

func newTestServer(gw Gateway, m metrics.MetricsCollector) *Server {
	return NewServer(Config{URL: "http://localhost:0"}, gw, nil, logger.NewFromZap(zap.NewNop(), false), nil, m)
}

func get(t *testing.T, s *Server, target string) (int, string) {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	body, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)
	return rec.Code, string(body)
}

func TestRoot(t *testing.T) {
	code, body := get(t, newTestServer(&fakeGateway{}, nil), "/")
	assert.Equal(t, http.StatusOK, code)
	assert.Empty(t, body)
}

func TestDatabaseNamesExcludeDefaults(t *testing.T) {
	gw := &fakeGateway{databases: []string{"satmeta"}}
	s := newTestServer(gw, nil)

	code, body := get(t, s, "/databases")
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `["satmeta"]`, body)
	require.NotNil(t, gw.excludeDefault)
	assert.True(t, *gw.excludeDefault)

	_, _ = get(t, s, "/databases?exclude_defaults=false")
	assert.False(t, *gw.excludeDefault)

	code, body = get(t, s, "/databases?exclude_defaults=maybe")
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Contains(t, body, "exclude_defaults=maybe")
}

func TestEmptyListsRenderAsArrays(t *testing.T) {
	code, body := get(t, newTestServer(&fakeGateway{}, nil), "/databases")
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `[]`, body)
}

func TestGatewayErrorsBecomeResponses(t *testing.T) {
	tests := []struct {
		name   string
		gw     *fakeGateway
		target string
		status int
		err    error
	}{
		{
			name:   "unknown database",
			gw:     &fakeGateway{databaseErr: mongodb.Databases.NotFoundError},
			target: "/databases/nope",
			status: http.StatusNotFound,
			err:    mongodb.Databases.NotFoundError,
		},
		{
			name:   "unknown collection",
			gw:     &fakeGateway{collectionErr: mongodb.Collections.NotFoundError},
			target: "/databases/satmeta/nope",
			status: http.StatusNotFound,
			err:    mongodb.Collections.NotFoundError,
		},
		{
			name:   "only database given",
			gw:     &fakeGateway{collectionErr: mongodb.Collections.WrongTypeError},
			target: "/platforms?database_name=satmeta",
			status: http.StatusUnprocessableEntity,
			err:    mongodb.Collections.WrongTypeError,
		},
		{
			name:   "not initialized",
			gw:     &fakeGateway{collectionErr: mongodb.Client.NotInitializedError},
			target: "/queries",
			status: http.StatusMethodNotAllowed,
			err:    mongodb.Client.NotInitializedError,
		},
		{
			name:   "datetime",
			gw:     &fakeGateway{collectionErr: mongodb.Databases.NotFoundError},
			target: "/datetime?database_name=x&collection_name=y",
			status: http.StatusNotFound,
			err:    mongodb.Databases.NotFoundError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := get(t, newTestServer(tt.gw, nil), tt.target)
			assert.Equal(t, tt.status, code)
			assert.Equal(t, tt.err.Error()+"\n", body)
		})
	}
}

func TestUnexpectedErrorIsInternal(t *testing.T) {
	gw := &fakeGateway{collectionErr: errors.New("socket closed")}
	code, body := get(t, newTestServer(gw, nil), "/sensors")

	assert.Equal(t, http.StatusInternalServerError, code)
	assert.NotContains(t, body, "socket closed")
}

func TestMiddlewareRecordsRouteTemplate(t *testing.T) {
	m := &recordingMetrics{}
	s := newTestServer(&fakeGateway{databaseErr: mongodb.Databases.NotFoundError}, m)

	_, _ = get(t, s, "/databases/missing")

	assert.Equal(t, []string{strconv.Itoa(http.StatusNotFound)}, m.statuses)
	assert.Equal(t, []string{"/databases/{database}"}, m.endpoints)
}

func TestBuildQuery(t *testing.T) {
	tMin := time.Date(2019, 11, 5, 13, 0, 0, 0, time.UTC)
	tMax := time.Date(2019, 11, 5, 14, 0, 0, 0, time.UTC)

	q := url.Values{}
	q.Add("platform", "S1B")
	q.Add("platform", "NOAA-20")
	q.Add("sensor", "viirs")
	q.Set("time_min", "2019-11-05T13:00:00")
	q.Set("time_max", "2019-11-05T14:00:00Z")

	stages, err := buildQuery(q)
	require.NoError(t, err)

	want := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"$or": bson.A{
			bson.M{"platform_name": "S1B"},
			bson.M{"platform_name": "NOAA-20"},
		}}}},
		{{Key: "$match", Value: bson.M{"$or": bson.A{
			bson.M{"sensor": "viirs"},
		}}}},
		{{Key: "$match", Value: bson.M{"$or": bson.A{
			bson.M{"$and": bson.A{
				bson.M{"start_time": bson.M{"$gte": tMin}},
				bson.M{"start_time": bson.M{"$lte": tMax}},
			}},
			bson.M{"$and": bson.A{
				bson.M{"end_time": bson.M{"$gte": tMin}},
				bson.M{"end_time": bson.M{"$lte": tMax}},
			}},
		}}}},
	}
	if diff := cmp.Diff(want, stages.Stages()); diff != "" {
		t.Fatalf("pipeline mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildQueryWithoutFilters(t *testing.T) {
	stages, err := buildQuery(url.Values{})
	require.NoError(t, err)
	assert.Empty(t, stages.Stages())
}

func TestBuildQueryRejectsBadTime(t *testing.T) {
	_, err := buildQuery(url.Values{"time_min": {"yesterday"}})
	assert.ErrorIs(t, err, Queries.InvalidTimeError)
}

func TestConfigAddr(t *testing.T) {
	addr, err := Config{URL: "http://localhost:8000"}.Addr()
	require.NoError(t, err)
	assert.Equal(t, "localhost:8000", addr)

	_, err = Config{URL: "localhost"}.Addr()
	assert.Error(t, err)
}

func TestJSONify(t *testing.T) {
	oid := primitive.NewObjectID()
	ts := time.Date(2019, 11, 5, 13, 0, 0, 0, time.UTC)

	got := jsonify(bson.M{
		"_id":        oid,
		"start_time": primitive.NewDateTimeFromTime(ts),
		"dataset":    bson.A{bson.D{{Key: "uri", Value: "/a"}}},
	})

	want := map[string]interface{}{
		"_id":        oid.Hex(),
		"start_time": ts,
		"dataset":    []interface{}{map[string]interface{}{"uri": "/a"}},
	}
	assert.Equal(t, want, got)
}
