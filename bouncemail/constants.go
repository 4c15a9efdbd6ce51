package bouncemail

import "time"

// Exchange describes the RabbitMQ exchange name.
const Exchange = "bouncemail"

// Message broker queue names.
const (
	NotificationQueue = Exchange + ".notifications"
)

// Routing key prefixes.
const (
	NotifyRoutingKey = "notify"
)

// ChannelHeader carries the target chat channel of a queued notification.
const ChannelHeader = "channel"

// DefaultSendTimeout represents the default bound on a single chat delivery.
const DefaultSendTimeout = 5 * time.Second
