package notify

import (
	"encoding/json"
	"fmt"
	"time"
)

type wireMessage struct {
	Text        string           `json:"text"`
	Channel     string           `json:"channel"`
	Username    string           `json:"username"`
	IconEmoji   string           `json:"icon_emoji"`
	IconURL     string           `json:"icon_url"`
	Attachments []wireAttachment `json:"attachments"`
}

type wireAttachment struct {
	Fallback   string   `json:"fallback"`
	Text       string   `json:"text"`
	Pretext    string   `json:"pretext"`
	Color      string   `json:"color"`
	Footer     string   `json:"footer"`
	FooterIcon string   `json:"footer_icon"`
	Ts         int64    `json:"ts"`
	MarkdownIn []string `json:"mrkdwn_in"`
	ImageURL   string   `json:"image_url"`
	ThumbURL   string   `json:"thumb_url"`
	Title      string   `json:"title"`
	TitleLink  string   `json:"title_link"`
	AuthorName string   `json:"author_name"`
	AuthorLink string   `json:"author_link"`
	AuthorIcon string   `json:"author_icon"`
	CallbackID string   `json:"callback_id"`
	Fields     []Field  `json:"fields"`
	Actions    []Action `json:"actions"`
}

// ParseMessage decodes a message serialized by Message.MarshalJSON. The
// decoded values go through the builders, so the same validation applies.
func ParseMessage(data []byte) (*Message, error) {
	var wire wireMessage
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("%w: decode message: %v", ErrInvalidInput, err)
	}

	b := NewMessage(wire.Text).
		Channel(wire.Channel).
		Username(wire.Username)
	if wire.IconEmoji != "" {
		b.IconEmoji(wire.IconEmoji)
	} else {
		b.IconURL(wire.IconURL)
	}

	for _, wa := range wire.Attachments {
		ab := NewAttachment().
			Fallback(wa.Fallback).
			Text(wa.Text).
			Pretext(wa.Pretext).
			Color(wa.Color).
			Footer(wa.Footer).
			FooterIcon(wa.FooterIcon).
			ImageURL(wa.ImageURL).
			ThumbURL(wa.ThumbURL).
			Title(wa.Title).
			TitleLink(wa.TitleLink).
			AuthorName(wa.AuthorName).
			AuthorLink(wa.AuthorLink).
			AuthorIcon(wa.AuthorIcon).
			CallbackID(wa.CallbackID).
			SetFields(wa.Fields...).
			SetActions(wa.Actions...)
		if len(wa.MarkdownIn) > 0 {
			ab.MarkdownIn(wa.MarkdownIn...)
		}
		if wa.Ts != 0 {
			ab.Timestamp(time.Unix(wa.Ts, 0).UTC())
		}
		b.AttachBuilder(ab)
	}

	return b.Build()
}
