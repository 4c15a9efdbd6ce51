package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/Pandentia/bouncemail/bouncemail/notify"
)

// Sink delivers a chat message to a channel of a remote chat service.
// Implementations must return once ctx is done.
type Sink interface {
	Send(ctx context.Context, msg *notify.Message, channel string) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, msg *notify.Message, channel string) error

// Send implements Sink.
func (f SinkFunc) Send(ctx context.Context, msg *notify.Message, channel string) error {
	return f(ctx, msg, channel)
}

// DeliveryError reports a message a sink could not deliver.
type DeliveryError struct {
	Sink string
	Err  error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("deliver via %s: %v", e.Sink, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// NewDeliveryError wraps err, returning nil when err is nil.
func NewDeliveryError(sink string, err error) error {
	if err == nil {
		return nil
	}
	return &DeliveryError{Sink: sink, Err: err}
}

// Fanout delivers every message to all of its sinks at once.
type Fanout map[string]Sink

// Send implements Sink. It waits for every sink and reports all failures
// in one DeliveryError.
func (f Fanout) Send(ctx context.Context, msg *notify.Message, channel string) error {
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		errs  []error
		names []string
	)
	for name, sink := range f {
		wg.Add(1)
		go func(name string, sink Sink) {
			defer wg.Done()
			fail := func(err error) {
				mu.Lock()
				errs = append(errs, NewDeliveryError(name, err))
				names = append(names, name)
				mu.Unlock()
			}
			defer func() {
				if r := recover(); r != nil {
					fail(fmt.Errorf("sink panicked: %v", r))
				}
			}()
			if err := sink.Send(ctx, msg, channel); err != nil {
				fail(err)
			}
		}(name, sink)
	}
	wg.Wait()

	if len(errs) == 0 {
		return nil
	}
	return &DeliveryError{Sink: "fanout(" + strings.Join(names, ",") + ")", Err: errors.Join(errs...)}
}
