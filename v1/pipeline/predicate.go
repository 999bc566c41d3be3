package pipeline

import (
	"reflect"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

// Operator is a comparison operator of a leaf predicate.
type Operator string

const (
	OpEq  Operator = "$eq"
	OpGte Operator = "$gte"
	OpGt  Operator = "$gt"
	OpLte Operator = "$lte"
	OpLt  Operator = "$lt"
)

type kind uint8

const (
	kindEmpty kind = iota
	kindLeaf
	kindAnd
	kindOr
)

// Predicate is a node of a boolean filter tree: the empty predicate, a
// {field, operator, value} leaf, or an AND/OR of child predicates.
// The zero value is the empty predicate.
type Predicate struct {
	kind     kind
	field    string
	op       Operator
	value    any
	children []Predicate
}

// Empty returns the predicate that matches every document.
func Empty() Predicate { return Predicate{} }

// IsEmpty reports whether p is the empty predicate.
func (p Predicate) IsEmpty() bool { return p.kind == kindEmpty }

// And returns {$and: [left, right]}.
func And(left, right Predicate) Predicate {
	return Predicate{kind: kindAnd, children: []Predicate{left, right}}
}

// Or returns {$or: [left, right]}.
func Or(left, right Predicate) Predicate {
	return Predicate{kind: kindOr, children: []Predicate{left, right}}
}

// And is shorthand for And(p, q).
func (p Predicate) And(q Predicate) Predicate { return And(p, q) }

// Or is shorthand for Or(p, q).
func (p Predicate) Or(q Predicate) Predicate { return Or(p, q) }

// anyOf builds an OR with one child per leaf. No leaves gives the empty predicate.
func anyOf(leaves []Predicate) Predicate {
	if len(leaves) == 0 {
		return Empty()
	}
	return Predicate{kind: kindOr, children: leaves}
}

// Render converts p to the filter document understood by MongoDB.
func Render(p Predicate) bson.M {
	switch p.kind {
	case kindLeaf:
		if p.op == OpEq {
			return bson.M{p.field: p.value}
		}
		return bson.M{p.field: bson.M{string(p.op): p.value}}
	case kindAnd, kindOr:
		key := "$and"
		if p.kind == kindOr {
			key = "$or"
		}
		children := make(bson.A, 0, len(p.children))
		for _, c := range p.children {
			children = append(children, Render(c))
		}
		return bson.M{key: children}
	default:
		return bson.M{}
	}
}

// Render is shorthand for Render(p).
func (p Predicate) Render() bson.M { return Render(p) }

// isFalsy reports whether v should turn a comparison into the empty predicate.
func isFalsy(v any) bool {
	if v == nil {
		return true
	}
	if t, ok := v.(time.Time); ok {
		return t.IsZero()
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	default:
		return rv.IsZero()
	}
}

// values splits v into its elements if it is a slice or array (other than
// []byte), reporting whether it did.
func values(v any) ([]any, bool) {
	if v == nil {
		return nil, false
	}
	if _, ok := v.([]byte); ok {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}
