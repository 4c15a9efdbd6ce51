package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Pandentia/bouncemail/bouncemail"
	"github.com/Pandentia/bouncemail/bouncemail/metrics"
	"github.com/Pandentia/bouncemail/bouncemail/notify"
	"github.com/Pandentia/bouncemail/bouncemail/suppress"
)

// Dispatcher classifies delivery events, formats the provider response and
// relays alert-worthy events to a chat Sink.
type Dispatcher struct {
	Logger    zerolog.Logger
	Formatter *bouncemail.Formatter
	Sink      Sink // nil disables chat alerts

	// Chat configuration.
	Channel    string
	Username   string
	Icon       string // emoji like ":warning:" or an image URL
	DetailsURL string // adds a "View details" button when set

	Timeout    time.Duration // bound on a single send, DefaultSendTimeout when zero
	Suppressor suppress.Suppressor
	Metrics    *metrics.Metrics

	wg sync.WaitGroup
}

// Dispatch handles one event. The response never depends on the chat
// service: alerts are sent in the background and their failures are only
// logged.
func (d *Dispatcher) Dispatch(event bouncemail.InboundEvent) bouncemail.BounceResponse {
	logger := d.Logger.With().
		Str("module", "dispatcher").
		Str("dispatch_id", uuid.NewString()).
		Logger()

	formatter := d.formatter()
	category := bouncemail.Classify(event)
	resp := formatter.Format(category, event)

	d.Metrics.Event(category.String())
	logger = logger.With().Str("category", category.String()).Str("email", event.Email).Logger()
	logger.Debug().Int("status", resp.StatusCode).Msg("Event classified")

	if !formatter.Catalog.Template(category).Alert {
		return resp
	}
	if d.Sink == nil {
		logger.Debug().Msg("No chat sink configured, skipping alert")
		return resp
	}

	msg, err := d.alertMessage(resp)
	if err != nil {
		d.Metrics.Notification(metrics.ResultInvalid)
		logger.Err(err).Msg("Error building alert message.")
		return resp
	}

	key := category.String() + ":" + strings.ToLower(event.Email)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), d.timeout())
		defer cancel()
		d.notify(ctx, logger, key, msg)
	}()

	return resp
}

// Wait blocks until every alert in flight has been sent or has failed.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) notify(ctx context.Context, logger zerolog.Logger, key string, msg *notify.Message) {
	if d.Suppressor != nil {
		allowed, err := d.Suppressor.Allow(ctx, key)
		switch {
		case err != nil:
			logger.Err(err).Msg("Error checking alert suppression. Sending anyway.")
		case !allowed:
			d.Metrics.Notification(metrics.ResultSuppressed)
			logger.Debug().Msg("Alert suppressed")
			return
		}
	}

	start := time.Now()
	err := d.send(ctx, msg)
	d.Metrics.ObserveSend(time.Since(start))
	if err != nil {
		d.Metrics.Notification(metrics.ResultFailed)
		logger.Err(err).Str("channel", d.Channel).Msg("Error delivering alert.")
		return
	}

	d.Metrics.Notification(metrics.ResultSent)
	logger.Debug().Str("channel", d.Channel).Msg("Alert delivered")
}

// send calls the sink, giving up once ctx is done even if the sink does not.
func (d *Dispatcher) send(ctx context.Context, msg *notify.Message) error {
	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("sink panicked: %v", r)
			}
		}()
		done <- d.Sink.Send(ctx, msg, d.Channel)
	}()

	var err error
	select {
	case err = <-done:
	case <-ctx.Done():
		err = ctx.Err()
	}
	if err == nil {
		return nil
	}

	var delivery *DeliveryError
	if errors.As(err, &delivery) {
		return err
	}
	return NewDeliveryError("sink", err)
}

func (d *Dispatcher) formatter() *bouncemail.Formatter {
	if d.Formatter != nil {
		return d.Formatter
	}
	return &bouncemail.Formatter{}
}

func (d *Dispatcher) timeout() time.Duration {
	if d.Timeout > 0 {
		return d.Timeout
	}
	return bouncemail.DefaultSendTimeout
}
