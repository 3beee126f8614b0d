package notify

import (
	"context"
	"testing"
	"time"

	"github.com/printyx/printyx-monitor/internal/monitor/service/aggregate"
)

func TestConsumerToleratesMissingBackends(t *testing.T) {
	c := NewConsumer(nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan aggregate.Toast, 1)

	done := make(chan struct{})
	go func() {
		c.Start(ctx, ch)
		close(done)
	}()

	ch <- aggregate.Toast{ID: "t-1", Records: 2, Headline: "2 critical alerts"}
	// the toast must be drained even with no redis and no db
	deadline := time.After(time.Second)
	for len(ch) > 0 {
		select {
		case <-deadline:
			t.Fatal("toast was not consumed")
		default:
			time.Sleep(5 * time.Millisecond)
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("consumer did not stop on ctx cancel")
	}
}

func TestConsumerNilChannelReturns(t *testing.T) {
	done := make(chan struct{})
	go func() {
		NewConsumer(nil, nil).Start(context.Background(), nil)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("nil channel should return immediately")
	}
}
