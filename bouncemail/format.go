package bouncemail

import "time"

// Formatter renders a Category and its event into a BounceResponse.
type Formatter struct {
	Catalog *Catalog
	Now     func() time.Time // clock, defaults to time.Now in UTC
}

// Format builds the response for an event. The recipient is echoed verbatim
// and BouncedAt reflects the time of formatting.
func (f *Formatter) Format(category Category, event InboundEvent) BounceResponse {
	template := f.Catalog.Template(category)

	return BounceResponse{
		RecordType:    template.RecordType,
		Type:          template.Type,
		TypeCode:      template.TypeCode,
		Name:          template.Name,
		Tag:           template.Tag,
		MessageStream: template.MessageStream,
		Description:   template.Description,
		Email:         event.Email,
		From:          template.From,
		BouncedAt:     f.now(),
		StatusCode:    template.StatusCode,
		Category:      category,
	}
}

func (f *Formatter) now() time.Time {
	if f.Now != nil {
		return f.Now()
	}
	return time.Now().UTC()
}
