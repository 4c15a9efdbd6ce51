package relay

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/streadway/amqp"

	"github.com/Pandentia/bouncemail/bouncemail"
	"github.com/Pandentia/bouncemail/bouncemail/dispatch"
)

// Relay forwards queued chat messages to a chat Sink.
type Relay struct {
	MQURI   string // The AMQP message queue URL to dial.
	Logger  zerolog.Logger
	Sink    dispatch.Sink
	Target  string // routing key suffix to consume, "*" for every chat service
	Channel string // fallback channel when a message names none
	Timeout time.Duration

	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
}

// New initializes the Relay struct. It should only be called once.
func (r *Relay) New() error {
	// create the connection
	conn, err := amqp.Dial(r.MQURI)
	if err != nil {
		return err
	}
	r.conn = conn
	r.Logger.Debug().Msg("Connection established")

	// create the channel
	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return err
	}
	r.channel = channel
	r.Logger.Debug().Msg("Channel established")

	// set prefetching
	err = r.channel.Qos(1, 0, false)
	if err != nil {
		_ = conn.Close()
		return err
	}
	r.Logger.Debug().Msg("Prefetching set")

	// register the exchange
	err = channel.ExchangeDeclare(bouncemail.Exchange, "topic", true, false, false, false, nil)
	if err != nil {
		_ = conn.Close()
		return err
	}
	r.Logger.Debug().Msg("Exchange registered")

	// register the notification queue
	queue, err := channel.QueueDeclare(bouncemail.NotificationQueue, true, false, false, false, nil)
	if err != nil {
		_ = conn.Close()
		return err
	}
	r.queue = queue.Name
	r.Logger.Debug().Msg("Notification queue registered")

	// bind the notification queue to the exchange
	err = channel.QueueBind(queue.Name, r.bindingKey(), bouncemail.Exchange, false, nil)
	if err != nil {
		_ = conn.Close()
		return err
	}
	r.Logger.Debug().Str("key", r.bindingKey()).Msg("Notification queue bound to exchange")

	return nil
}

// Close closes the broker connection.
func (r *Relay) Close() error {
	if r.conn == nil {
		return nil
	}
	return r.conn.Close()
}

func (r *Relay) timeout() time.Duration {
	if r.Timeout > 0 {
		return r.Timeout
	}
	return bouncemail.DefaultSendTimeout
}

func (r *Relay) bindingKey() string {
	target := r.Target
	if target == "" {
		target = "*"
	}
	return bouncemail.NotifyRoutingKey + "." + target
}
