package bouncemail

// spamMarker is the event type a provider sends for spam complaints.
const spamMarker = "SPAMNOTIFICATION"

// Classify maps an event to its Category. Every event maps to exactly one
// category; types without a rule fall through to HardBounce.
func Classify(event InboundEvent) Category {
	switch {
	case asciiUpper(event.Type) == spamMarker:
		return SpamComplaint
	default:
		return HardBounce
	}
}

// asciiUpper upper-cases a-z only. Other bytes, including multi-byte runes
// that fold to ASCII letters under Unicode rules, are kept as they are.
func asciiUpper(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - ('a' - 'A')
		}
	}
	return string(b)
}
