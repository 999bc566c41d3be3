package api_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/Aleph-Alpha/satmeta/v1/api"
	"github.com/Aleph-Alpha/satmeta/v1/logger"
	"github.com/Aleph-Alpha/satmeta/v1/mongodb"
	"github.com/Aleph-Alpha/satmeta/v1/mongodb/mongotest"
)

func at(hour, minute int) time.Time {
	return time.Date(2019, 11, 5, hour, minute, 0, 0, time.UTC)
}

func TestRoutesAgainstLiveStore(t *testing.T) {
	url0 := mongotest.Start(t)
	ids := []primitive.ObjectID{primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()}
	mongotest.Seed(t, url0, "satmeta", "files",
		bson.M{"_id": ids[0], "platform_name": "S1B", "sensor": "sar-c", "uri": "/a", "start_time": at(10, 0), "end_time": at(10, 5)},
		bson.M{"_id": ids[1], "platform_name": "NOAA-20", "sensor": "viirs", "uri": "/b", "start_time": at(12, 0), "end_time": at(12, 5)},
		bson.M{"_id": ids[2], "platform_name": "NOAA-20", "sensor": "avhrr", "uri": "/c", "start_time": at(14, 0), "end_time": at(14, 5)},
	)
	mongotest.Seed(t, url0, "other", "things")

	log := logger.NewFromZap(zap.NewNop(), false)
	gw := mongodb.NewMongoDB(log, nil)
	require.NoError(t, gw.Initialize(context.Background(), mongodb.Config{
		MainDatabaseName: "satmeta", MainCollectionName: "files", URL: url0, Timeout: 5 * time.Second,
	}))
	t.Cleanup(func() { _ = gw.Close(context.Background()) })

	srv := httptest.NewServer(api.NewServer(api.Config{URL: "http://localhost:0"}, gw, nil, log, nil, nil).Handler)
	t.Cleanup(srv.Close)

	getJSON := func(t *testing.T, path string, dst interface{}) int {
		t.Helper()
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		if resp.StatusCode == http.StatusOK && dst != nil {
			require.NoError(t, json.Unmarshal(body, dst), string(body))
		}
		return resp.StatusCode
	}

	t.Run("databases", func(t *testing.T) {
		var names []string
		require.Equal(t, http.StatusOK, getJSON(t, "/databases", &names))
		assert.ElementsMatch(t, []string{"satmeta", "other"}, names)

		require.Equal(t, http.StatusOK, getJSON(t, "/databases/satmeta", &names))
		assert.Equal(t, []string{"files"}, names)

		assert.Equal(t, http.StatusNotFound, getJSON(t, "/databases/missing", nil))
	})

	t.Run("document ids and document", func(t *testing.T) {
		var got []string
		require.Equal(t, http.StatusOK, getJSON(t, "/databases/satmeta/files", &got))
		assert.ElementsMatch(t, []string{ids[0].Hex(), ids[1].Hex(), ids[2].Hex()}, got)

		var doc map[string]interface{}
		require.Equal(t, http.StatusOK, getJSON(t, "/databases/satmeta/files/"+ids[1].Hex(), &doc))
		assert.Equal(t, ids[1].Hex(), doc["_id"])
		assert.Equal(t, "viirs", doc["sensor"])
		assert.Equal(t, "2019-11-05T12:00:00Z", doc["start_time"])

		assert.Equal(t, http.StatusUnprocessableEntity, getJSON(t, "/databases/satmeta/files/xyz", nil))
		assert.Equal(t, http.StatusNotFound, getJSON(t, "/databases/satmeta/files/"+primitive.NewObjectID().Hex(), nil))
	})

	t.Run("platforms and sensors", func(t *testing.T) {
		var got []string
		require.Equal(t, http.StatusOK, getJSON(t, "/platforms", &got))
		assert.ElementsMatch(t, []string{"S1B", "NOAA-20"}, got)

		require.Equal(t, http.StatusOK, getJSON(t, "/sensors", &got))
		assert.ElementsMatch(t, []string{"sar-c", "viirs", "avhrr"}, got)

		require.Equal(t, http.StatusOK, getJSON(t, "/sensors?database_name=other&collection_name=things", &got))
		assert.Empty(t, got)

		assert.Equal(t, http.StatusUnprocessableEntity, getJSON(t, "/sensors?collection_name=files", nil))
	})

	t.Run("queries", func(t *testing.T) {
		var got []string
		require.Equal(t, http.StatusOK, getJSON(t, "/queries?platform=NOAA-20", &got))
		assert.ElementsMatch(t, []string{ids[1].Hex(), ids[2].Hex()}, got)

		require.Equal(t, http.StatusOK, getJSON(t, "/queries?platform=NOAA-20&sensor=viirs", &got))
		assert.Equal(t, []string{ids[1].Hex()}, got)

		q := url.Values{"time_min": {"2019-11-05T11:00:00"}, "time_max": {"2019-11-05T13:00:00"}}
		require.Equal(t, http.StatusOK, getJSON(t, "/queries?"+q.Encode(), &got))
		assert.Equal(t, []string{ids[1].Hex()}, got)

		require.Equal(t, http.StatusOK, getJSON(t, "/queries", &got))
		assert.Len(t, got, 3)
	})

	t.Run("datetime", func(t *testing.T) {
		var got api.DatetimeResponse
		require.Equal(t, http.StatusOK, getJSON(t, "/datetime", &got))

		assert.Equal(t, ids[0].Hex(), got.StartTime.Min.ID)
		assert.True(t, at(10, 0).Equal(got.StartTime.Min.Time))
		assert.Equal(t, ids[2].Hex(), got.StartTime.Max.ID)
		assert.Equal(t, ids[0].Hex(), got.EndTime.Min.ID)
		assert.True(t, at(14, 5).Equal(got.EndTime.Max.Time))

		assert.Equal(t, http.StatusNotFound, getJSON(t, "/datetime?database_name=other&collection_name=things", nil))
	})
}
