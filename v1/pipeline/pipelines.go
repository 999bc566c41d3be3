package pipeline

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Pipelines is an ordered list of predicates, each rendered as its own $match stage.
type Pipelines []Predicate

// Add appends p as a new stage.
func (ps *Pipelines) Add(p Predicate) *Pipelines {
	*ps = append(*ps, p)
	return ps
}

// Stages renders the aggregation pipeline.
func (ps Pipelines) Stages() mongo.Pipeline {
	out := make(mongo.Pipeline, 0, len(ps))
	for _, p := range ps {
		out = append(out, bson.D{{Key: "$match", Value: Render(p)}})
	}
	return out
}

// TimeOverlap matches documents whose [startField, endField] interval overlaps
// [min, max]: the start or the end lies within the requested bounds. A zero
// bound leaves that side open.
func TimeOverlap(startField, endField string, min, max time.Time) Predicate {
	start, end := Attribute(startField), Attribute(endField)
	return start.Gte(min).And(start.Lte(max)).
		Or(end.Gte(min).And(end.Lte(max)))
}
