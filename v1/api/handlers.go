package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Aleph-Alpha/satmeta/v1/mongodb"
	"github.com/Aleph-Alpha/satmeta/v1/redis"
)

// handleRoot answers 200 with an empty body while the process is up.
func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// databaseNames lists database names. Defaults are excluded unless
// exclude_defaults=false.
func (s *Server) databaseNames(r *http.Request) (interface{}, error) {
	exclude := true
	if raw := r.URL.Query().Get("exclude_defaults"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, Queries.InvalidBoolError.WithExtra("exclude_defaults=" + raw)
		}
		exclude = v
	}
	names, err := s.gateway.ListDatabaseNames(r.Context(), exclude)
	return nonNil(names), err
}

func (s *Server) collectionNames(r *http.Request) (interface{}, error) {
	db, err := s.gateway.GetDatabase(r.Context(), mux.Vars(r)["database"])
	if err != nil {
		return nil, err
	}
	names, err := s.gateway.ListCollectionNames(r.Context(), db)
	return nonNil(names), err
}

func (s *Server) documentIDs(r *http.Request) (interface{}, error) {
	vars := mux.Vars(r)
	coll, err := s.gateway.GetCollection(r.Context(), vars["database"], vars["collection"])
	if err != nil {
		return nil, err
	}
	cursor, err := coll.Find(r.Context(), bson.M{})
	if err != nil {
		return nil, fmt.Errorf("find documents: %w", err)
	}
	ids, err := mongodb.CollectIDs(mongodb.GetIDs(r.Context(), cursor))
	return nonNil(ids), err
}

func (s *Server) documentByID(r *http.Request) (interface{}, error) {
	vars := mux.Vars(r)
	coll, err := s.gateway.GetCollection(r.Context(), vars["database"], vars["collection"])
	if err != nil {
		return nil, err
	}
	doc, err := s.gateway.FindByID(r.Context(), coll, vars["id"])
	if err != nil {
		return nil, err
	}
	return jsonify(doc), nil
}

// collection resolves the optional database_name and collection_name query
// parameters. Both absent selects the main collection.
func (s *Server) collection(r *http.Request) (*mongo.Collection, bool, error) {
	q := r.URL.Query()
	db, name := q.Get("database_name"), q.Get("collection_name")
	coll, err := s.gateway.GetCollection(r.Context(), db, name)
	return coll, db == "" && name == "", err
}

// distinct lists the distinct values of field. Listings of the main
// collection are cached under key.
func (s *Server) distinct(field, key string) handlerFunc {
	return func(r *http.Request) (interface{}, error) {
		coll, main, err := s.collection(r)
		if err != nil {
			return nil, err
		}
		load := func(ctx context.Context) ([]string, error) {
			return distinctStrings(ctx, coll, field)
		}
		if !main {
			return load(r.Context())
		}
		return redis.Remember(r.Context(), s.cache, key, load)
	}
}

func distinctStrings(ctx context.Context, coll *mongo.Collection, field string) ([]string, error) {
	values, err := coll.Distinct(ctx, field, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("distinct %s: %w", field, err)
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if str, ok := v.(string); ok {
			out = append(out, str)
		}
	}
	return out, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
