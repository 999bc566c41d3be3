package recorder

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/goleak"
	"go.uber.org/mock/gomock"

	"github.com/Aleph-Alpha/satmeta/v1/kafka"
	"github.com/Aleph-Alpha/satmeta/v1/rabbit"
)

const (
	fileBody = `pytroll://segment/raster/L2/SAR file sender 2019-11-05T13:00:10.366023 v1.01 application/json ` +
		`{"platform_name": "S1B", "uri": "/data/a.tif", "uid": "a.tif", "start_time": "2019-11-05T13:00:00"}`
	otherFileBody = `pytroll://segment/raster/L2/SAR file sender 2019-11-05T13:00:11 v1.01 application/json ` +
		`{"platform_name": "S1B", "uri": "/data/b.tif", "uid": "b.tif"}`
)

type fakeDelivery struct {
	body    []byte
	mu      sync.Mutex
	acked   bool
	nacked  bool
	requeue bool
}

func (d *fakeDelivery) Body() []byte { return d.body }

func (d *fakeDelivery) AckMsg() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.acked = true
	return nil
}

func (d *fakeDelivery) NackMsg(requeue bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nacked, d.requeue = true, requeue
	return nil
}

func (d *fakeDelivery) state() (bool, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.acked, d.nacked
}

func sliceSource(ds ...*fakeDelivery) Source {
	return SourceFunc(func(ctx context.Context, wg *sync.WaitGroup) <-chan Delivery {
		out := make(chan Delivery)
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer close(out)
			for _, d := range ds {
				select {
				case out <- d:
				case <-ctx.Done():
					return
				}
			}
		}()
		return out
	})
}

func TestRunAcknowledgesInOrder(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	f := newFixture(t)
	f.logger.EXPECT().Info(gomock.Any(), gomock.Any()).AnyTimes()
	f.logger.EXPECT().Debug(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	f.logger.EXPECT().Warn("Dropping undecodable message", gomock.Any(), gomock.Any())
	f.logger.EXPECT().Error("Failed to record message", gomock.Any(), gomock.Any())

	var uris []string
	f.store.EXPECT().InsertOne(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, doc interface{}, _ ...*options.InsertOneOptions) (*mongo.InsertOneResult, error) {
			uri, _ := doc.(bson.M)["uri"].(string)
			uris = append(uris, uri)
			if uri == "/data/b.tif" {
				return nil, errors.New("write conflict")
			}
			return &mongo.InsertOneResult{InsertedID: uri}, nil
		}).Times(2)

	good := &fakeDelivery{body: []byte(fileBody)}
	garbage := &fakeDelivery{body: []byte("not a message")}
	failing := &fakeDelivery{body: []byte(otherFileBody)}

	err := f.rec.Run(context.Background(), sliceSource(good, garbage, failing))
	require.NoError(t, err)

	assert.Equal(t, []string{"/data/a.tif", "/data/b.tif"}, uris)

	acked, nacked := good.state()
	assert.True(t, acked)
	assert.False(t, nacked)

	acked, nacked = garbage.state()
	assert.True(t, acked)
	assert.False(t, nacked)

	acked, nacked = failing.state()
	assert.False(t, acked)
	assert.True(t, nacked)
	assert.False(t, failing.requeue)
}

func TestRunStopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	f := newFixture(t)
	f.logger.EXPECT().Info(gomock.Any(), gomock.Any()).AnyTimes()

	blocking := SourceFunc(func(ctx context.Context, wg *sync.WaitGroup) <-chan Delivery {
		out := make(chan Delivery)
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer close(out)
			<-ctx.Done()
		}()
		return out
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.rec.Run(ctx, blocking) }()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

type fakeKafkaMessage struct {
	commits int
}

func (m *fakeKafkaMessage) CommitMsg() error          { m.commits++; return nil }
func (m *fakeKafkaMessage) Body() []byte              { return nil }
func (m *fakeKafkaMessage) Key() string               { return "" }
func (m *fakeKafkaMessage) Header() map[string]string { return nil }

func TestKafkaDelivery(t *testing.T) {
	m := &fakeKafkaMessage{}
	d := kafkaDelivery{m}

	require.NoError(t, d.NackMsg(true))
	assert.Equal(t, 0, m.commits)
	require.NoError(t, d.NackMsg(false))
	assert.Equal(t, 1, m.commits)
	require.NoError(t, d.AckMsg())
	assert.Equal(t, 2, m.commits)
}

type fakeRabbit struct {
	rabbit.Client
	msgs []rabbit.Message
}

func (f *fakeRabbit) Consume(ctx context.Context, wg *sync.WaitGroup) <-chan rabbit.Message {
	out := make(chan rabbit.Message, len(f.msgs))
	for _, m := range f.msgs {
		out <- m
	}
	close(out)
	return out
}

type rabbitMsg struct{ fakeDelivery }

func (m *rabbitMsg) Header() map[string]interface{} { return nil }

func TestFromRabbitForwardsUntilClosed(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	a, b := &rabbitMsg{}, &rabbitMsg{}
	src := FromRabbit(&fakeRabbit{msgs: []rabbit.Message{a, b}})

	wg := &sync.WaitGroup{}
	var got []Delivery
	for d := range src.Deliveries(context.Background(), wg) {
		got = append(got, d)
	}
	wg.Wait()

	require.Len(t, got, 2)
	assert.Same(t, a, got[0])
	assert.Same(t, b, got[1])
}

type fakeKafka struct {
	kafka.Client
	msgs []kafka.Message
}

func (f *fakeKafka) Consume(ctx context.Context, wg *sync.WaitGroup) <-chan kafka.Message {
	out := make(chan kafka.Message, len(f.msgs))
	for _, m := range f.msgs {
		out <- m
	}
	close(out)
	return out
}

func TestFromKafkaWrapsMessages(t *testing.T) {
	m := &fakeKafkaMessage{}
	src := FromKafka(&fakeKafka{msgs: []kafka.Message{m}})

	wg := &sync.WaitGroup{}
	var got []Delivery
	for d := range src.Deliveries(context.Background(), wg) {
		got = append(got, d)
	}
	wg.Wait()

	require.Len(t, got, 1)
	require.NoError(t, got[0].AckMsg())
	assert.Equal(t, 1, m.commits)
}
