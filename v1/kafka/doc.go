// Package kafka is the Kafka subscription transport of the recorder.
//
// A consumer client fetches records from one topic and hands them out through
// Consume. Offsets are committed only when the recorder calls CommitMsg, so a
// record whose store operation never completed is fetched again after a
// restart when a consumer group is configured.
//
//	client, err := kafka.NewClient(kafka.Config{
//		Brokers:    []string{"localhost:9092"},
//		Topic:      "pytroll",
//		GroupID:    "satmeta",
//		IsConsumer: true,
//	}, log, nil)
//	if err != nil {
//		return err
//	}
//	defer client.GracefulShutdown()
//
//	wg := &sync.WaitGroup{}
//	for msg := range client.Consume(ctx, wg) {
//		// store msg.Body()
//		_ = msg.CommitMsg()
//	}
package kafka
