package recorder

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/Aleph-Alpha/satmeta/v1/message"
)

// Result describes what Record did.
type Result struct {
	Kind message.Kind

	// InsertedID is the _id of the new document for file and dataset messages.
	InsertedID interface{}

	// Deleted is the number of documents removed by a delete message.
	Deleted int64

	// Skipped is true when the message was valid but caused no store operation.
	Skipped bool
}

// Record applies msg to the store.
//
// File and dataset messages insert msg.Data as one document. Delete messages
// remove every document, or dataset member, with the message uri. Other types
// are ignored. The returned error is a store failure; everything else is logged.
func (r *Recorder) Record(ctx context.Context, msg message.Message) (Result, error) {
	start := time.Now()
	res := Result{Kind: msg.Kind()}
	var err error

	switch res.Kind {
	case message.KindFile, message.KindDataset:
		res.InsertedID, err = r.insert(ctx, msg.Data)
	case message.KindDelete:
		uri, ok := msg.URI()
		if !ok {
			r.logger.Error("Cannot delete without a uri", ErrMissingURI, map[string]interface{}{
				"subject": msg.Subject,
			})
			res.Skipped = true
			return res, nil
		}
		res.Deleted, err = DeleteURI(ctx, r.store, uri)
		if err == nil && res.Deleted != 1 {
			r.logger.Error(fmt.Sprintf("Recording: deleted %d documents for %s instead of 1", res.Deleted, uri), nil, map[string]interface{}{
				"uri":     uri,
				"deleted": res.Deleted,
			})
		}
	case message.KindUnknown:
		r.logger.Debug(fmt.Sprintf("Don't know what to do with %s message.", msg.Type), nil)
		res.Skipped = true
		return res, nil
	}

	r.observeOperation(res.Kind.String(), time.Since(start), err, res.Deleted)
	if err != nil {
		return res, err
	}

	r.logger.Debug("Recorded message", nil, map[string]interface{}{
		"type":    msg.Type,
		"subject": msg.Subject,
	})
	r.invalidate(ctx)
	return res, nil
}

func (r *Recorder) insert(ctx context.Context, doc bson.M) (interface{}, error) {
	if doc == nil {
		doc = bson.M{}
	}
	ins, err := r.store.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert: %w", err)
	}
	return ins.InsertedID, nil
}

// DeleteURI removes the documents whose uri is uri and the documents holding
// a dataset member with that uri. It returns the combined count.
func DeleteURI(ctx context.Context, store Store, uri string) (int64, error) {
	var deleted int64
	for _, filter := range []bson.M{{"uri": uri}, {"dataset.uri": uri}} {
		res, err := store.DeleteMany(ctx, filter)
		if err != nil {
			return deleted, fmt.Errorf("delete %s: %w", uri, err)
		}
		deleted += res.DeletedCount
	}
	return deleted, nil
}

func (r *Recorder) invalidate(ctx context.Context) {
	if r.cache == nil || len(r.cacheKeys) == 0 {
		return
	}
	if err := r.cache.Invalidate(ctx, r.cacheKeys...); err != nil {
		r.logger.Warn("Failed to invalidate cache", err, map[string]interface{}{"keys": r.cacheKeys})
	}
}
