// Package api serves the recorded satellite file metadata over HTTP.
//
// Routes:
//
//	GET /                                    200 while the server is up
//	GET /databases?exclude_defaults=         database names
//	GET /databases/{database}                collection names
//	GET /databases/{database}/{collection}   document ids
//	GET /databases/{database}/{collection}/{id}
//	GET /datetime                            earliest and latest start and end times
//	GET /platforms                           distinct platform names
//	GET /sensors                             distinct sensor names
//	GET /queries?platform=&sensor=&time_min=&time_max=
//
// Routes below /datetime accept database_name and collection_name query
// parameters; both must be given or neither, in which case the main
// collection is used. Failures are answered with the status and message of
// the apierrors.ResponseError behind them, as plain text.
package api
