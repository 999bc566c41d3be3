// Package recorder writes satellite file announcements from the message bus
// into the main MongoDB collection.
//
// Each delivery is decoded with the message package and applied by Record:
//
//   - file and dataset messages insert their data as one document
//   - del messages remove every document whose uri, or whose dataset member
//     uri, matches the message uri
//   - any other type is logged at debug level and ignored
//
// Run processes deliveries one by one in arrival order and acknowledges each
// only after its store operation finished. FromRabbit and FromKafka adapt the
// two transports to Source.
package recorder
