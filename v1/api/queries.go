package api

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/Aleph-Alpha/satmeta/v1/mongodb"
	"github.com/Aleph-Alpha/satmeta/v1/pipeline"
)

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

func parseTime(name, raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, Queries.InvalidTimeError.WithExtra(name + "=" + raw)
}

// buildQuery turns the query string into one $match stage per given filter:
// any of the platforms, any of the sensors, and a time window overlapping
// [time_min, time_max].
func buildQuery(q url.Values) (pipeline.Pipelines, error) {
	var stages pipeline.Pipelines

	if platforms := q["platform"]; len(platforms) > 0 {
		stages.Add(pipeline.Attribute("platform_name").Eq(platforms))
	}
	if sensors := q["sensor"]; len(sensors) > 0 {
		stages.Add(pipeline.Attribute("sensor").Eq(sensors))
	}

	minTime, err := parseTime("time_min", q.Get("time_min"))
	if err != nil {
		return nil, err
	}
	maxTime, err := parseTime("time_max", q.Get("time_max"))
	if err != nil {
		return nil, err
	}
	if !minTime.IsZero() || !maxTime.IsZero() {
		stages.Add(pipeline.TimeOverlap("start_time", "end_time", minTime, maxTime))
	}
	return stages, nil
}

func (s *Server) queries(r *http.Request) (interface{}, error) {
	coll, _, err := s.collection(r)
	if err != nil {
		return nil, err
	}
	stages, err := buildQuery(r.URL.Query())
	if err != nil {
		return nil, err
	}

	cursor, err := coll.Aggregate(r.Context(), stages.Stages())
	if err != nil {
		return nil, fmt.Errorf("aggregate query: %w", err)
	}
	ids, err := mongodb.CollectIDs(mongodb.GetIDs(r.Context(), cursor))
	return nonNil(ids), err
}
