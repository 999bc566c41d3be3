package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/errgroup"

	"github.com/Aleph-Alpha/satmeta/v1/mongodb"
)

// TimeModel is one extreme time value and the id of a document holding it.
type TimeModel struct {
	ID   string    `json:"_id"`
	Time time.Time `json:"_time"`
}

// TimeEntry holds the extremes of one time field.
type TimeEntry struct {
	Min TimeModel `json:"_min"`
	Max TimeModel `json:"_max"`
}

// DatetimeResponse is the body of GET /datetime.
type DatetimeResponse struct {
	StartTime TimeEntry `json:"start_time"`
	EndTime   TimeEntry `json:"end_time"`
}

var datetimeGroup = mongo.Pipeline{
	{{Key: "$group", Value: bson.D{
		{Key: "_id", Value: nil},
		{Key: "min_start_time", Value: bson.M{"$min": "$start_time"}},
		{Key: "max_start_time", Value: bson.M{"$max": "$start_time"}},
		{Key: "min_end_time", Value: bson.M{"$min": "$end_time"}},
		{Key: "max_end_time", Value: bson.M{"$max": "$end_time"}},
	}}},
}

type datetimeExtremes struct {
	MinStart primitive.DateTime `bson:"min_start_time"`
	MaxStart primitive.DateTime `bson:"max_start_time"`
	MinEnd   primitive.DateTime `bson:"min_end_time"`
	MaxEnd   primitive.DateTime `bson:"max_end_time"`
}

// datetime reports the earliest and latest start and end times, each with
// the id of one document carrying that value. An empty collection is a 404.
func (s *Server) datetime(r *http.Request) (interface{}, error) {
	coll, _, err := s.collection(r)
	if err != nil {
		return nil, err
	}
	ctx := r.Context()

	cursor, err := coll.Aggregate(ctx, datetimeGroup)
	if err != nil {
		return nil, fmt.Errorf("aggregate datetime: %w", err)
	}
	defer cursor.Close(ctx)
	if !cursor.Next(ctx) {
		if err := cursor.Err(); err != nil {
			return nil, fmt.Errorf("aggregate datetime: %w", err)
		}
		return nil, mongodb.Documents.NotFoundError
	}
	var ext datetimeExtremes
	if err := cursor.Decode(&ext); err != nil {
		return nil, fmt.Errorf("decode datetime: %w", err)
	}

	resp := DatetimeResponse{
		StartTime: TimeEntry{
			Min: TimeModel{Time: ext.MinStart.Time().UTC()},
			Max: TimeModel{Time: ext.MaxStart.Time().UTC()},
		},
		EndTime: TimeEntry{
			Min: TimeModel{Time: ext.MinEnd.Time().UTC()},
			Max: TimeModel{Time: ext.MaxEnd.Time().UTC()},
		},
	}

	g, gctx := errgroup.WithContext(ctx)
	lookup := func(field string, value primitive.DateTime, dst *string) {
		g.Go(func() error {
			id, err := idOfFirst(gctx, coll, bson.M{field: value})
			*dst = id
			return err
		})
	}
	lookup("start_time", ext.MinStart, &resp.StartTime.Min.ID)
	lookup("start_time", ext.MaxStart, &resp.StartTime.Max.ID)
	lookup("end_time", ext.MinEnd, &resp.EndTime.Min.ID)
	lookup("end_time", ext.MaxEnd, &resp.EndTime.Max.ID)
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return resp, nil
}

func idOfFirst(ctx context.Context, coll *mongo.Collection, filter bson.M) (string, error) {
	var doc bson.M
	err := coll.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("find by time: %w", err)
	}
	return mongodb.GetID(doc)
}
