package apierrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	notFoundDB   = New(http.StatusNotFound, "Could not find the given database name.")
	notFoundColl = New(http.StatusNotFound, "Could not find the given collection name inside the specified database.")
	wrongType    = New(http.StatusUnprocessableEntity, "Both names must be empty if one of them is empty.")
)

func TestSingleStatusInfo(t *testing.T) {
	status, msg, err := notFoundDB.Info(0)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Could not find the given database name.", msg)
	assert.Equal(t, http.StatusNotFound, notFoundDB.StatusCode())
}

func TestUnionKeepsEveryPair(t *testing.T) {
	u := Union(notFoundDB, wrongType, notFoundColl)

	assert.Equal(t, []int{http.StatusNotFound, http.StatusUnprocessableEntity}, u.Statuses())
	assert.Equal(t, []string{
		"Could not find the given database name.",
		"Could not find the given collection name inside the specified database.",
	}, u.Messages(http.StatusNotFound))
	assert.Equal(t, []string{"Both names must be empty if one of them is empty."}, u.Messages(http.StatusUnprocessableEntity))

	// operands are untouched
	assert.Len(t, notFoundDB.Messages(http.StatusNotFound), 1)
}

func TestUnionMethodMatchesFunction(t *testing.T) {
	assert.Equal(t, Union(notFoundDB, wrongType).Descriptor(), notFoundDB.Union(wrongType).Descriptor())
}

func TestInfoWithSeveralStatuses(t *testing.T) {
	u := Union(notFoundDB, wrongType, notFoundColl)

	_, _, err := u.Info(0)
	assert.ErrorIs(t, err, ErrAmbiguousStatus)

	_, _, err = u.Info(http.StatusTeapot)
	assert.ErrorIs(t, err, ErrStatusNotFound)

	status, msg, err := u.Info(http.StatusNotFound)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Could not find the given database name. |OR| Could not find the given collection name inside the specified database.", msg)
}

func TestWithExtra(t *testing.T) {
	e := New(http.StatusBadRequest, "Could not connect to the database with URL.").WithExtra("mongodb://localhost:1")

	_, msg, err := e.Info(0)
	require.NoError(t, err)
	assert.Equal(t, "Could not connect to the database with URL. :=> mongodb://localhost:1", msg)
	assert.Equal(t, msg, e.Error())
}

func TestIsIgnoresExtraAndWrapping(t *testing.T) {
	wrapped := fmt.Errorf("initialize: %w", notFoundDB.WithExtra("db"))

	assert.True(t, errors.Is(wrapped, notFoundDB))
	assert.False(t, errors.Is(wrapped, notFoundColl))
	assert.False(t, errors.Is(wrapped, errors.New("other")))
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, http.StatusUnprocessableEntity, StatusOf(fmt.Errorf("x: %w", wrongType)))
	assert.Equal(t, http.StatusInternalServerError, StatusOf(errors.New("plain")))
	assert.Equal(t, http.StatusInternalServerError, Union().StatusCode())
}

func TestGroupUnion(t *testing.T) {
	g := NewGroup("Databases", notFoundDB, wrongType)

	assert.Len(t, g.Errors(), 2)
	assert.Equal(t, map[int]string{
		http.StatusNotFound:            "Could not find the given database name.",
		http.StatusUnprocessableEntity: "Both names must be empty if one of them is empty.",
	}, g.Union().Descriptor())
}
