package pipeline

// Attr is a handle on a document field.
type Attr struct {
	field string
}

// Attribute returns a handle on field.
func Attribute(field string) Attr {
	return Attr{field: field}
}

// Field returns the field name.
func (a Attr) Field() string { return a.field }

// Eq matches documents whose field equals value. If value is a slice the
// result matches any of its elements, not the literal list.
func (a Attr) Eq(value any) Predicate {
	if vs, ok := values(value); ok {
		return a.each(OpEq, vs)
	}
	return a.leaf(OpEq, value)
}

// Gte matches field >= value.
func (a Attr) Gte(value any) Predicate { return a.compare(OpGte, value) }

// Gt matches field > value.
func (a Attr) Gt(value any) Predicate { return a.compare(OpGt, value) }

// Lte matches field <= value.
func (a Attr) Lte(value any) Predicate { return a.compare(OpLte, value) }

// Lt matches field < value.
func (a Attr) Lt(value any) Predicate { return a.compare(OpLt, value) }

func (a Attr) compare(op Operator, value any) Predicate {
	if vs, ok := values(value); ok {
		return a.each(op, vs)
	}
	if isFalsy(value) {
		return Empty()
	}
	return a.leaf(op, value)
}

func (a Attr) each(op Operator, vs []any) Predicate {
	leaves := make([]Predicate, len(vs))
	for i, v := range vs {
		leaves[i] = a.leaf(op, v)
	}
	return anyOf(leaves)
}

func (a Attr) leaf(op Operator, value any) Predicate {
	return Predicate{kind: kindLeaf, field: a.field, op: op, value: value}
}
