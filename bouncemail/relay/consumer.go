package relay

import (
	"context"

	"github.com/streadway/amqp"

	"github.com/Pandentia/bouncemail/bouncemail"
	"github.com/Pandentia/bouncemail/bouncemail/notify"
)

// Run starts the relay. It blocks until ctx is done or the broker closes
// the delivery channel.
func (r *Relay) Run(ctx context.Context) error {
	logger := r.Logger.With().Str("module", "consumer").Logger()
	logger.Info().Msg("Relay started")

	// begin consuming
	deliveries, err := r.channel.Consume(r.queue, "", false, false, false, false, nil)
	if err != nil {
		return err
	}

	r.process(ctx, deliveries)
	return nil
}

func (r *Relay) process(ctx context.Context, deliveries <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case delivery, ok := <-deliveries:
			if !ok {
				return
			}
			r.handle(ctx, delivery)
		}
	}
}

func (r *Relay) handle(ctx context.Context, delivery amqp.Delivery) {
	logger := r.Logger.With().
		Str("module", "consumer").
		Str("message_id", delivery.MessageId).
		Logger()
	logger.Debug().Msg("Delivery received from broker")

	// decode the queued message
	msg, err := notify.ParseMessage(delivery.Body)
	if err != nil {
		logger.Err(err).Bytes("data", delivery.Body).Msg("Error deserializing. Rejecting and continuing.")
		_ = delivery.Reject(false) // do *not* requeue, otherwise we'll just be stuck processing garbage
		return
	}

	channel := r.channelFor(delivery, msg)
	sendCtx, cancel := context.WithTimeout(ctx, r.timeout())
	defer cancel()

	if err := r.Sink.Send(sendCtx, msg, channel); err != nil {
		if delivery.Redelivered {
			logger.Err(err).Str("channel", channel).Msg("Error delivering redelivered message. Dropping.")
			_ = delivery.Reject(false)
			return
		}
		logger.Err(err).Str("channel", channel).Msg("Error delivering message. Requeuing delivery.")
		_ = delivery.Reject(true)
		return
	}

	_ = delivery.Ack(false)
	logger.Debug().Str("channel", channel).Msg("Message delivered")
}

func (r *Relay) channelFor(delivery amqp.Delivery, msg *notify.Message) string {
	if channel, ok := delivery.Headers[bouncemail.ChannelHeader].(string); ok && channel != "" {
		return channel
	}
	if msg.Channel() != "" {
		return msg.Channel()
	}
	return r.Channel
}
