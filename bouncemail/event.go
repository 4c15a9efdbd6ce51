package bouncemail

import "time"

// InboundEvent represents a delivery event received from the mail provider.
// The ingress populates it once per request; nothing modifies it afterwards.
type InboundEvent struct {
	Type   string            // event type, compared case-insensitively
	Email  string            // recipient address, echoed verbatim
	Fields map[string]string // any other fields the provider sent
}

// BounceResponse represents the status object returned to the provider.
type BounceResponse struct {
	RecordType    string
	Type          string
	TypeCode      int
	Name          string
	Tag           string
	MessageStream string
	Description   string
	Email         string
	From          string
	BouncedAt     time.Time

	// not serialized; the ingress answers with StatusCode
	StatusCode int      `json:"-"`
	Category   Category `json:"-"`
}
