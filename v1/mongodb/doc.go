// Package mongodb is the document store gateway: the single owner of the
// connection to MongoDB shared by the recorder and the API.
//
// The gateway fails fast. Initialize performs a round trip and checks that the
// configured main database and collection exist; any failure there is a
// FatalError carrying the exit code the process should terminate with:
//
//	gw := mongodb.NewMongoDB(log, nil)
//	if err := gw.Initialize(ctx, cfg); err != nil {
//		os.Exit(mongodb.ExitCode(err))
//	}
//	defer gw.Close(context.Background())
//
// After startup, lookups return *apierrors.ResponseError values from the
// Client, Databases, Collections and Documents groups, which the API renders
// as responses:
//
//	coll, err := gw.GetCollection(ctx, "", "")      // main collection, no I/O
//	coll, err = gw.GetCollection(ctx, "d", "c")     // validated against the server
//	_, err = gw.GetCollection(ctx, "d", "")         // Collections.WrongTypeError
//
// Document ids are exposed as strings; GetIDs streams them from a cursor.
package mongodb
