package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherRunsAllHandlers(t *testing.T) {
	d := NewInMemoryDispatcher()
	var calls []string
	boom := errors.New("boom")

	d.Subscribe(EventReportSubmitted, func(context.Context, Event) error {
		calls = append(calls, "first")
		return boom
	})
	d.Subscribe(EventReportSubmitted, func(context.Context, Event) error {
		calls = append(calls, "second")
		return nil
	})
	d.Subscribe(EventReportRejected, func(context.Context, Event) error {
		calls = append(calls, "other")
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventReportSubmitted})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"first", "second"}, calls)
}

type recordingPublisher struct {
	channel string
	payload []byte
	err     error
}

func (r *recordingPublisher) Publish(_ context.Context, channel string, payload []byte) error {
	r.channel = channel
	r.payload = payload
	return r.err
}

func TestRedisForwarder(t *testing.T) {
	pub := &recordingPublisher{}
	fwd := NewRedisForwarder(pub, "reports.events", time.Second)

	event := Event{
		ID:       "evt-1",
		Type:     EventReportSubmitted,
		ReportID: 7,
		Actor:    Actor{Username: "woreda1", District: "D1"},
		Payload:  ReportSubmittedPayload{Year: 2024, Quarter: "Q1", Title: "T"},
	}
	require.NoError(t, fwd.Handle(context.Background(), event))
	assert.Equal(t, "reports.events", pub.channel)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(pub.payload, &decoded))
	assert.Equal(t, "report_submitted", decoded["type"])
	assert.EqualValues(t, 7, decoded["report_id"])

	pub.err = errors.New("redis down")
	assert.Error(t, fwd.Handle(context.Background(), event))
}

type stalledPublisher struct{}

func (stalledPublisher) Publish(ctx context.Context, _ string, _ []byte) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestRedisForwarderGivesUpAfterTimeout(t *testing.T) {
	fwd := NewRedisForwarder(stalledPublisher{}, "reports.events", 20*time.Millisecond)

	start := time.Now()
	err := fwd.Handle(context.Background(), Event{Type: EventReportSubmitted})
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 2*time.Second)
}
