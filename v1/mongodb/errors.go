package mongodb

import (
	"errors"
	"net/http"

	"golang.org/x/sys/unix"

	"github.com/Aleph-Alpha/satmeta/v1/apierrors"
)

type clientErrors struct {
	CloseNotAllowedError    *apierrors.ResponseError
	ReinitializeConfigError *apierrors.ResponseError
	AlreadyOpenError        *apierrors.ResponseError
	InconsistencyError      *apierrors.ResponseError
	ConnectionError         *apierrors.ResponseError
	NotInitializedError     *apierrors.ResponseError
	InvalidConfigError      *apierrors.ResponseError
}

func (g clientErrors) Union() *apierrors.ResponseError {
	return apierrors.NewGroup("Client",
		g.CloseNotAllowedError,
		g.ReinitializeConfigError,
		g.AlreadyOpenError,
		g.InconsistencyError,
		g.ConnectionError,
		g.NotInitializedError,
		g.InvalidConfigError,
	).Union()
}

type collectionErrors struct {
	NotFoundError  *apierrors.ResponseError
	WrongTypeError *apierrors.ResponseError
}

func (g collectionErrors) Union() *apierrors.ResponseError {
	return apierrors.NewGroup("Collections", g.NotFoundError, g.WrongTypeError).Union()
}

type databaseErrors struct {
	NotFoundError  *apierrors.ResponseError
	WrongTypeError *apierrors.ResponseError
}

func (g databaseErrors) Union() *apierrors.ResponseError {
	return apierrors.NewGroup("Databases", g.NotFoundError, g.WrongTypeError).Union()
}

type documentErrors struct {
	NotFoundError  *apierrors.ResponseError
	InvalidIDError *apierrors.ResponseError
}

func (g documentErrors) Union() *apierrors.ResponseError {
	return apierrors.NewGroup("Documents", g.NotFoundError, g.InvalidIDError).Union()
}

// Client holds the errors of the gateway lifecycle.
var Client = clientErrors{
	CloseNotAllowedError: apierrors.New(http.StatusMethodNotAllowed,
		"Calling `close()` on a client which has not been initialized is not allowed!"),
	ReinitializeConfigError: apierrors.New(http.StatusMethodNotAllowed,
		"The client is already initialized with a different database configuration!"),
	AlreadyOpenError: apierrors.New(http.StatusContinue,
		"The client has been already initialized with the same configuration."),
	InconsistencyError: apierrors.New(http.StatusMethodNotAllowed,
		"Something must have been wrong as we are in an inconsistent state. "+
			"The internal database configuration is not empty and is the same as what we just "+
			"received but the client is `None` or has been already closed!"),
	ConnectionError: apierrors.New(http.StatusBadRequest,
		"Could not connect to the database with URL."),
	NotInitializedError: apierrors.New(http.StatusMethodNotAllowed,
		"The client has not been initialized."),
	InvalidConfigError: apierrors.New(http.StatusUnprocessableEntity,
		"The database configuration is not valid."),
}

// Collections holds the errors of resolving a collection.
var Collections = collectionErrors{
	NotFoundError: apierrors.New(http.StatusNotFound,
		"Could not find the given collection name inside the specified database."),
	WrongTypeError: apierrors.New(http.StatusUnprocessableEntity,
		"Both the Database and collection name must be `None` if one of them is `None`."),
}

// Databases holds the errors of resolving a database.
var Databases = databaseErrors{
	NotFoundError: apierrors.New(http.StatusNotFound,
		"Could not find the given database name."),
	WrongTypeError: apierrors.New(http.StatusUnprocessableEntity,
		"Database name must be either of type `str` or `None.`"),
}

// Documents holds the errors of looking up a single document.
var Documents = documentErrors{
	NotFoundError: apierrors.New(http.StatusNotFound,
		"Could not find any document with the given object id."),
	InvalidIDError: apierrors.New(http.StatusUnprocessableEntity,
		"The given object id is not a valid 24 character hex string."),
}

// DatabaseCollectionErrors lists every error a route resolving a collection may return.
func DatabaseCollectionErrors() *apierrors.ResponseError {
	return apierrors.Union(Databases.Union(), Collections.Union())
}

// DatabaseCollectionDocumentErrors is DatabaseCollectionErrors plus the document lookup errors.
func DatabaseCollectionDocumentErrors() *apierrors.ResponseError {
	return apierrors.Union(Databases.Union(), Collections.Union(), Documents.Union())
}

// Process exit codes for fatal initialization failures.
const (
	ExitIO         = int(unix.EIO)
	ExitDataAbsent = int(unix.ENODATA)
	ExitMisuse     = 1
)

// FatalError is an initialization failure the process cannot recover from.
// Code is the exit status the entry point should terminate with.
type FatalError struct {
	Err  error
	Code int
}

func (e *FatalError) Error() string { return e.Err.Error() }

func (e *FatalError) Unwrap() error { return e.Err }

func fatal(err error, code int) error {
	return &FatalError{Err: err, Code: code}
}

// ExitCode maps err to a process exit status: 0 for nil, the FatalError code
// when err carries one, 1 otherwise.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var fe *FatalError
	if errors.As(err, &fe) {
		return fe.Code
	}
	return ExitMisuse
}
