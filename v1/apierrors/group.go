package apierrors

// Group is a named, ordered collection of related ResponseErrors, e.g. all
// errors that may occur while resolving a collection.
type Group struct {
	Name   string
	errors []*ResponseError
}

// NewGroup creates a group holding errs in order.
func NewGroup(name string, errs ...*ResponseError) Group {
	return Group{Name: name, errors: errs}
}

// Errors returns the members of the group.
func (g Group) Errors() []*ResponseError {
	return append([]*ResponseError(nil), g.errors...)
}

// Union merges every member of the group into one ResponseError.
func (g Group) Union() *ResponseError {
	return Union(g.errors...)
}
