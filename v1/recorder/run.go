package recorder

import (
	"context"
	"sync"

	"github.com/Aleph-Alpha/satmeta/v1/message"
)

// Run records deliveries from source until ctx is done or the source closes.
//
// Messages are handled strictly in arrival order. A delivery is acknowledged
// once its store operation succeeded. Undecodable deliveries are acknowledged
// and dropped; deliveries whose store operation failed are rejected without
// requeue. A message already being stored when ctx is cancelled is finished.
func (r *Recorder) Run(ctx context.Context, source Source) error {
	ctx, cancel := context.WithCancel(ctx)
	wg := &sync.WaitGroup{}
	defer func() {
		cancel()
		wg.Wait()
	}()

	deliveries := source.Deliveries(ctx, wg)
	r.logger.Info("Recorder started", nil)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("Recorder stopped", nil)
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				r.logger.Info("Recorder source closed", nil)
				return nil
			}
			r.handle(context.WithoutCancel(ctx), d)
		}
	}
}

func (r *Recorder) handle(ctx context.Context, d Delivery) {
	msg, err := message.Decode(d.Body())
	if err != nil {
		r.logger.Warn("Dropping undecodable message", err, map[string]interface{}{
			"body": truncate(d.Body(), 256),
		})
		r.ack(d)
		return
	}

	if _, err := r.Record(ctx, msg); err != nil {
		r.logger.Error("Failed to record message", err, map[string]interface{}{
			"type":    msg.Type,
			"subject": msg.Subject,
		})
		if err := d.NackMsg(false); err != nil {
			r.logger.Error("Failed to reject message", err)
		}
		return
	}
	r.ack(d)
}

func (r *Recorder) ack(d Delivery) {
	if err := d.AckMsg(); err != nil {
		r.logger.Error("Failed to acknowledge message", err)
	}
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
