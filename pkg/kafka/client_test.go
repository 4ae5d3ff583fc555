package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"qa-session-go/pkg/events"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestExchangePublisher_Record(t *testing.T) {
	fw := &fakeWriter{}
	p := &ExchangePublisher{writer: fw}
	ev := events.Exchange{
		SceneID:  "admission",
		Question: "学费多少",
		Outcome:  events.OutcomeAnswered,
		Attempts: 2,
		At:       time.Unix(1_700_000_000, 0).UTC(),
	}

	if err := p.Record(context.Background(), ev); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if len(fw.msgs) != 1 {
		t.Fatalf("messages = %d, want 1", len(fw.msgs))
	}
	if string(fw.msgs[0].Key) != "admission" {
		t.Errorf("Key = %q, want admission", fw.msgs[0].Key)
	}
	var got events.Exchange
	if err := json.Unmarshal(fw.msgs[0].Value, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Question != ev.Question || got.Attempts != 2 || got.Outcome != events.OutcomeAnswered {
		t.Errorf("event = %+v", got)
	}
}

func TestExchangePublisher_RecordError(t *testing.T) {
	p := &ExchangePublisher{writer: &fakeWriter{err: errors.New("broker down")}}
	if err := p.Record(context.Background(), events.Exchange{SceneID: "s"}); err == nil {
		t.Error("Record() expected error")
	}
}

func TestExchangePublisher_Close(t *testing.T) {
	fw := &fakeWriter{}
	p := &ExchangePublisher{writer: fw}
	if err := p.Close(); err != nil || !fw.closed {
		t.Errorf("Close() err=%v closed=%v", err, fw.closed)
	}
}
