package notify

import (
	"encoding/json"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Message is a chat message: text plus optional attachments. Build one with
// NewMessage; it cannot be changed once built.
type Message struct {
	text        string
	channel     string
	username    string
	iconEmoji   string
	iconURL     string
	attachments []*Attachment
}

// Text returns the message body.
func (m *Message) Text() string { return m.text }

// Channel returns the target channel, empty for the webhook default.
func (m *Message) Channel() string { return m.channel }

// Username returns the sender display name.
func (m *Message) Username() string { return m.username }

// IconEmoji returns the sender emoji, like ":email:".
func (m *Message) IconEmoji() string { return m.iconEmoji }

// IconURL returns the sender image URL.
func (m *Message) IconURL() string { return m.iconURL }

// Attachments returns the attachments in insertion order.
func (m *Message) Attachments() []*Attachment {
	return append([]*Attachment(nil), m.attachments...)
}

// WithChannel returns a copy of the message targeting another channel.
func (m *Message) WithChannel(channel string) *Message {
	c := *m
	c.channel = channel
	c.attachments = m.Attachments()
	return &c
}

// ToMap returns the message as the chat service expects it. Unset keys are
// left out; text is always present.
func (m *Message) ToMap() *orderedmap.OrderedMap[string, any] {
	out := orderedmap.New[string, any]()
	out.Set("text", m.text)
	setString(out, "channel", m.channel)
	setString(out, "username", m.username)
	setString(out, "icon_emoji", m.iconEmoji)
	setString(out, "icon_url", m.iconURL)
	if len(m.attachments) > 0 {
		attachments := make([]*orderedmap.OrderedMap[string, any], 0, len(m.attachments))
		for _, a := range m.attachments {
			attachments = append(attachments, a.ToMap())
		}
		out.Set("attachments", attachments)
	}
	return out
}

// MarshalJSON implements json.Marshaler.
func (m *Message) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.ToMap())
}

// MessageBuilder assembles a Message. It records errors the same way
// AttachmentBuilder does.
type MessageBuilder struct {
	m   Message
	err error
}

// NewMessage starts a message with the given text.
func NewMessage(text string) *MessageBuilder {
	return &MessageBuilder{m: Message{text: text}}
}

// Text replaces the message body.
func (b *MessageBuilder) Text(s string) *MessageBuilder { b.m.text = s; return b }

// Channel sets the target channel.
func (b *MessageBuilder) Channel(s string) *MessageBuilder { b.m.channel = s; return b }

// Username sets the sender display name.
func (b *MessageBuilder) Username(s string) *MessageBuilder { b.m.username = s; return b }

// Icon sets the sender icon. Values wrapped in colons, like ":warning:", are
// emoji; anything else is an image URL.
func (b *MessageBuilder) Icon(icon string) *MessageBuilder {
	b.m.iconEmoji, b.m.iconURL = "", ""
	switch {
	case icon == "":
	case len(icon) > 1 && strings.HasPrefix(icon, ":") && strings.HasSuffix(icon, ":"):
		b.m.iconEmoji = icon
	default:
		b.m.iconURL = icon
	}
	return b
}

// IconEmoji sets the sender icon to an emoji and clears any image URL.
func (b *MessageBuilder) IconEmoji(emoji string) *MessageBuilder {
	b.m.iconEmoji, b.m.iconURL = emoji, ""
	return b
}

// IconURL sets the sender icon to an image and clears any emoji.
func (b *MessageBuilder) IconURL(url string) *MessageBuilder {
	b.m.iconEmoji, b.m.iconURL = "", url
	return b
}

// Attach appends an attachment.
func (b *MessageBuilder) Attach(a *Attachment) *MessageBuilder {
	if a == nil {
		return b.fail(invalidInput("nil attachment"))
	}
	b.m.attachments = append(b.m.attachments, a)
	return b
}

// AttachBuilder builds an attachment and appends it, or records its error.
func (b *MessageBuilder) AttachBuilder(ab *AttachmentBuilder) *MessageBuilder {
	a, err := ab.Build()
	if err != nil {
		return b.fail(err)
	}
	return b.Attach(a)
}

// ClearAttachments removes all attachments.
func (b *MessageBuilder) ClearAttachments() *MessageBuilder {
	b.m.attachments = nil
	return b
}

// Err returns the first error recorded by a setter.
func (b *MessageBuilder) Err() error { return b.err }

// Build returns the finished message. A message needs non-blank text.
func (b *MessageBuilder) Build() (*Message, error) {
	if b.err != nil {
		return nil, b.err
	}
	if strings.TrimSpace(b.m.text) == "" {
		return nil, invalidInput("message text is required")
	}
	m := b.m
	m.attachments = append([]*Attachment(nil), b.m.attachments...)
	return &m, nil
}

func (b *MessageBuilder) fail(err error) *MessageBuilder {
	if b.err == nil {
		b.err = err
	}
	return b
}
