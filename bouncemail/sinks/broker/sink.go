// Package broker queues chat messages on the AMQP exchange for the relay.
package broker

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/streadway/amqp"

	"github.com/Pandentia/bouncemail/bouncemail"
	"github.com/Pandentia/bouncemail/bouncemail/dispatch"
	"github.com/Pandentia/bouncemail/bouncemail/notify"
)

// SinkName identifies this sink in delivery errors and configuration.
const SinkName = "amqp"

// Publisher is the part of *amqp.Channel the sink needs.
type Publisher interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Sink publishes messages to the exchange with routing key notify.<Target>.
type Sink struct {
	Publisher Publisher
	Exchange  string // defaults to bouncemail.Exchange
	Target    string // chat service the relay delivers to, e.g. "slack"
}

// Connect dials the broker and declares the exchange the sink publishes to.
func Connect(uri string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(uri)
	if err != nil {
		return nil, nil, err
	}

	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}

	err = channel.ExchangeDeclare(bouncemail.Exchange, "topic", true, false, false, false, nil)
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}

	return conn, channel, nil
}

// Send implements dispatch.Sink.
func (s *Sink) Send(ctx context.Context, msg *notify.Message, channel string) error {
	if err := ctx.Err(); err != nil {
		return dispatch.NewDeliveryError(SinkName, err)
	}

	// encode message
	data, err := json.Marshal(msg)
	if err != nil {
		return dispatch.NewDeliveryError(SinkName, err)
	}

	exchange := s.Exchange
	if exchange == "" {
		exchange = bouncemail.Exchange
	}

	// publish message to the relay
	err = s.Publisher.Publish(
		exchange,
		s.RoutingKey(),
		true,  // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    uuid.NewString(),
			Headers:      amqp.Table{bouncemail.ChannelHeader: channel},
			Body:         data,
		},
	)
	return dispatch.NewDeliveryError(SinkName, err)
}

// LogReturns logs every message the broker hands back as unroutable. It
// returns once returns is closed, which happens when the channel closes.
func LogReturns(returns <-chan amqp.Return, logger zerolog.Logger) {
	logger = logger.With().Str("module", "broker").Logger()
	for ret := range returns {
		logger.Error().
			Str("message_id", ret.MessageId).
			Str("exchange", ret.Exchange).
			Str("routing_key", ret.RoutingKey).
			Uint16("reply_code", ret.ReplyCode).
			Str("reply_text", ret.ReplyText).
			Msg("Alert returned by broker as unroutable.")
	}
}

// RoutingKey returns the key messages are published with.
func (s *Sink) RoutingKey() string {
	target := s.Target
	if target == "" {
		target = "slack"
	}
	return bouncemail.NotifyRoutingKey + "." + target
}
