package dispatch

import (
	"fmt"
	"strconv"

	"github.com/Pandentia/bouncemail/bouncemail"
	"github.com/Pandentia/bouncemail/bouncemail/notify"
)

// alertMessage summarizes a formatted response for the chat channel.
func (d *Dispatcher) alertMessage(resp bouncemail.BounceResponse) (*notify.Message, error) {
	text := fmt.Sprintf("%s for %s", resp.Name, resp.Email)

	attachment := notify.NewAttachment().
		Fallback(text).
		Color("danger").
		Title(resp.Name).
		AddField("Recipient", resp.Email, true).
		AddField("Type", resp.Type, true).
		AddField("Type code", strconv.Itoa(resp.TypeCode), true).
		AddField("Stream", resp.MessageStream, true).
		AddField("Description", resp.Description, false).
		Footer(resp.From).
		Timestamp(resp.BouncedAt)
	if d.DetailsURL != "" {
		attachment.AddAction(notify.Action{
			Name: "details",
			Text: "View details",
			URL:  d.DetailsURL,
		})
	}

	return notify.NewMessage(text).
		Channel(d.Channel).
		Username(d.Username).
		Icon(d.Icon).
		AttachBuilder(attachment).
		Build()
}
