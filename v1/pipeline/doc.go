// Package pipeline builds MongoDB aggregation filters from small composable predicates.
//
// Predicates are created from a field handle and combined with And and Or:
//
//	start := pipeline.Attribute("start_time")
//	p := start.Gte(from).And(start.Lte(to))
//
// A Pipelines value collects predicates as independent $match stages. The
// query engine applies the stages in sequence, so each one narrows the result
// of the previous one:
//
//	var stages pipeline.Pipelines
//	stages.Add(pipeline.Attribute("platform_name").Eq([]string{"noaa-20", "metop-b"}))
//	stages.Add(pipeline.TimeOverlap("start_time", "end_time", from, to))
//	cursor, err := coll.Aggregate(ctx, stages.Stages())
//
// Comparisons against a zero value (nil, "", 0, the zero time.Time) yield the
// empty predicate, which matches every document. Optional query parameters can
// therefore be passed through without checking them first.
package pipeline
