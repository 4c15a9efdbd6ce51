// Package slack delivers chat messages through a Slack incoming webhook.
package slack

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/slack-go/slack"

	"github.com/Pandentia/bouncemail/bouncemail/dispatch"
	"github.com/Pandentia/bouncemail/bouncemail/notify"
)

// SinkName identifies this sink in delivery errors and configuration.
const SinkName = "slack"

// Sink posts messages to a Slack incoming webhook.
type Sink struct {
	WebhookURL string
	HTTPClient *http.Client // defaults to a client with a 10s timeout
}

var defaultClient = &http.Client{Timeout: 10 * time.Second}

// Send implements dispatch.Sink. A non-empty channel overrides the message's own.
func (s *Sink) Send(ctx context.Context, msg *notify.Message, channel string) error {
	if s.WebhookURL == "" {
		return dispatch.NewDeliveryError(SinkName, errors.New("webhook url is not configured"))
	}
	client := s.HTTPClient
	if client == nil {
		client = defaultClient
	}

	err := slack.PostWebhookCustomHTTPContext(ctx, s.WebhookURL, client, WebhookMessage(msg, channel))
	return dispatch.NewDeliveryError(SinkName, err)
}

// WebhookMessage converts a message to the Slack SDK representation,
// keeping the order of attachments, fields and actions.
func WebhookMessage(msg *notify.Message, channel string) *slack.WebhookMessage {
	if channel == "" {
		channel = msg.Channel()
	}
	out := &slack.WebhookMessage{
		Text:      msg.Text(),
		Channel:   channel,
		Username:  msg.Username(),
		IconEmoji: msg.IconEmoji(),
		IconURL:   msg.IconURL(),
	}
	for _, a := range msg.Attachments() {
		out.Attachments = append(out.Attachments, attachment(a))
	}
	return out
}

func attachment(a *notify.Attachment) slack.Attachment {
	out := slack.Attachment{
		Fallback:   a.Fallback(),
		Text:       a.Text(),
		Pretext:    a.Pretext(),
		Color:      a.Color(),
		Footer:     a.Footer(),
		FooterIcon: a.FooterIcon(),
		MarkdownIn: a.MarkdownIn(),
		ImageURL:   a.ImageURL(),
		ThumbURL:   a.ThumbURL(),
		Title:      a.Title(),
		TitleLink:  a.TitleLink(),
		AuthorName: a.AuthorName(),
		AuthorLink: a.AuthorLink(),
		AuthorIcon: a.AuthorIcon(),
		CallbackID: a.CallbackID(),
	}
	if ts := a.Timestamp(); !ts.IsZero() {
		out.Ts = json.Number(strconv.FormatInt(ts.Unix(), 10))
	}
	for _, f := range a.Fields() {
		out.Fields = append(out.Fields, slack.AttachmentField{
			Title: f.Title,
			Value: f.Value,
			Short: f.Short,
		})
	}
	for _, action := range a.Actions() {
		converted := slack.AttachmentAction{
			Name:  action.Name,
			Text:  action.Text,
			Type:  slack.ActionType(action.Type),
			Style: action.Style,
			Value: action.Value,
			URL:   action.URL,
		}
		if c := action.Confirm; c != nil {
			converted.Confirm = &slack.ConfirmationField{
				Title:       c.Title,
				Text:        c.Text,
				OkText:      c.OkText,
				DismissText: c.DismissText,
			}
		}
		out.Actions = append(out.Actions, converted)
	}
	return out
}
