// Package apierrors defines ResponseError, the error value shared by the
// document store gateway and the HTTP API.
//
// A ResponseError is an ordered mapping from an HTTP-style status code to one
// or more human readable messages. Errors are declared once as package level
// constants grouped by context (see the mongodb package) and returned from the
// point of detection unchanged; only the API layer turns them into responses.
//
// Two errors can be merged with Union without losing any status/message pair,
// which is how route documentation lists every failure a route may produce:
//
//	notFound := apierrors.Union(mongodb.Databases.Union(), mongodb.Collections.Union())
//	for status, text := range notFound.Descriptor() {
//		fmt.Println(status, text)
//	}
package apierrors
