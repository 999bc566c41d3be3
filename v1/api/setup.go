package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Aleph-Alpha/satmeta/v1/metrics"
	"github.com/Aleph-Alpha/satmeta/v1/mongodb"
	"github.com/Aleph-Alpha/satmeta/v1/redis"
	"github.com/Aleph-Alpha/satmeta/v1/tracer"
)

// Logger is the logging surface of the API server.
type Logger interface {
	Info(msg string, err error, fields ...map[string]interface{})
	Error(msg string, err error, fields ...map[string]interface{})
	DebugWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	ErrorWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
}

// Gateway is the part of *mongodb.MongoDB the routes read through.
type Gateway interface {
	ListDatabaseNames(ctx context.Context, excludeDefaults bool) ([]string, error)
	GetDatabase(ctx context.Context, name string) (*mongo.Database, error)
	GetCollection(ctx context.Context, databaseName, collectionName string) (*mongo.Collection, error)
	ListCollectionNames(ctx context.Context, database *mongo.Database) ([]string, error)
	FindByID(ctx context.Context, coll *mongo.Collection, id string) (bson.M, error)
}

var _ Gateway = (*mongodb.MongoDB)(nil)

// Server serves the read-only query API over the recorded documents.
type Server struct {
	cfg     Config
	gateway Gateway
	cache   redis.Cache
	logger  Logger
	tracer  *tracer.Tracer
	metrics metrics.MetricsCollector

	Handler http.Handler
}

// NewServer builds the router. cache, tr and m may be nil.
func NewServer(cfg Config, gateway Gateway, cache redis.Cache, logger Logger, tr *tracer.Tracer, m metrics.MetricsCollector) *Server {
	if cache == nil {
		cache = redis.NoopCache{}
	}
	s := &Server{
		cfg:     cfg.withDefaults(),
		gateway: gateway,
		cache:   cache,
		logger:  logger,
		tracer:  tr,
		metrics: m,
	}

	router := mux.NewRouter()
	router.Use(s.instrument)

	router.HandleFunc("/", s.handleRoot).Methods(http.MethodGet)
	router.HandleFunc("/databases", s.handle(s.databaseNames)).Methods(http.MethodGet)
	router.HandleFunc("/databases/{database}", s.handle(s.collectionNames)).Methods(http.MethodGet)
	router.HandleFunc("/databases/{database}/{collection}", s.handle(s.documentIDs)).Methods(http.MethodGet)
	router.HandleFunc("/databases/{database}/{collection}/{id}", s.handle(s.documentByID)).Methods(http.MethodGet)
	router.HandleFunc("/datetime", s.handle(s.datetime)).Methods(http.MethodGet)
	router.HandleFunc("/platforms", s.handle(s.distinct("platform_name", redis.KeyPlatforms))).Methods(http.MethodGet)
	router.HandleFunc("/sensors", s.handle(s.distinct("sensor", redis.KeySensors))).Methods(http.MethodGet)
	router.HandleFunc("/queries", s.handle(s.queries)).Methods(http.MethodGet)

	s.Handler = cors.New(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
	}).Handler(router)

	return s
}

type handlerFunc func(r *http.Request) (interface{}, error)

func (s *Server) handle(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := h(r)
		if err != nil {
			s.errorResponse(w, r, err)
			return
		}
		s.jsonResponse(w, r, http.StatusOK, v)
	}
}

func (s *Server) jsonResponse(w http.ResponseWriter, r *http.Request, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.ErrorWithContext(r.Context(), "Failed to write response", err)
	}
}
