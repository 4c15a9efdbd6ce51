package notify

import (
	"encoding/json"
	"time"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// DefaultColor is the color of an attachment nobody picked a color for.
const DefaultColor = "good"

// Attachment is a richly formatted block of a chat message. Build one with
// NewAttachment; it cannot be changed once built.
type Attachment struct {
	fallback   string
	text       string
	pretext    string
	color      string
	footer     string
	footerIcon string
	timestamp  time.Time
	markdownIn []string
	imageURL   string
	thumbURL   string
	title      string
	titleLink  string
	authorName string
	authorLink string
	authorIcon string
	callbackID string
	fields     []Field
	actions    []Action
}

// Fallback returns the plain-text summary shown by clients that cannot render attachments.
func (a *Attachment) Fallback() string { return a.fallback }

// Text returns the main body of the attachment.
func (a *Attachment) Text() string { return a.text }

// Pretext returns the text shown above the attachment.
func (a *Attachment) Pretext() string { return a.pretext }

// Color returns the sidebar color.
func (a *Attachment) Color() string { return a.color }

// Footer returns the footer text.
func (a *Attachment) Footer() string { return a.footer }

// FooterIcon returns the URL of the icon shown beside the footer.
func (a *Attachment) FooterIcon() string { return a.footerIcon }

// Timestamp returns the time shown next to the footer, zero when unset.
func (a *Attachment) Timestamp() time.Time { return a.timestamp }

// ImageURL returns the URL of the full-width image.
func (a *Attachment) ImageURL() string { return a.imageURL }

// ThumbURL returns the URL of the thumbnail.
func (a *Attachment) ThumbURL() string { return a.thumbURL }

// Title returns the bold heading.
func (a *Attachment) Title() string { return a.title }

// TitleLink returns the URL the title links to.
func (a *Attachment) TitleLink() string { return a.titleLink }

// AuthorName returns the name shown in the author line.
func (a *Attachment) AuthorName() string { return a.authorName }

// AuthorLink returns the URL the author name links to.
func (a *Attachment) AuthorLink() string { return a.authorLink }

// AuthorIcon returns the URL of the author icon.
func (a *Attachment) AuthorIcon() string { return a.authorIcon }

// CallbackID returns the id interactive actions report back with.
func (a *Attachment) CallbackID() string { return a.callbackID }

// MarkdownIn returns the names of the fields rendered as markdown.
func (a *Attachment) MarkdownIn() []string { return append([]string(nil), a.markdownIn...) }

// Fields returns the fields in insertion order.
func (a *Attachment) Fields() []Field { return append([]Field(nil), a.fields...) }

// Actions returns the actions in insertion order.
func (a *Attachment) Actions() []Action { return copyActions(a.actions) }

// ToMap returns the attachment as the chat service expects it. Unset keys are
// left out; color always has a value.
func (a *Attachment) ToMap() *orderedmap.OrderedMap[string, any] {
	m := orderedmap.New[string, any]()
	setString(m, "fallback", a.fallback)
	setString(m, "text", a.text)
	setString(m, "pretext", a.pretext)
	m.Set("color", a.color)
	setString(m, "footer", a.footer)
	setString(m, "footer_icon", a.footerIcon)
	if !a.timestamp.IsZero() {
		m.Set("ts", a.timestamp.Unix())
	}
	if len(a.markdownIn) > 0 {
		m.Set("mrkdwn_in", a.MarkdownIn())
	}
	setString(m, "image_url", a.imageURL)
	setString(m, "thumb_url", a.thumbURL)
	setString(m, "title", a.title)
	setString(m, "title_link", a.titleLink)
	setString(m, "author_name", a.authorName)
	setString(m, "author_link", a.authorLink)
	setString(m, "author_icon", a.authorIcon)
	setString(m, "callback_id", a.callbackID)
	if len(a.fields) > 0 {
		m.Set("fields", a.Fields())
	}
	if len(a.actions) > 0 {
		m.Set("actions", a.Actions())
	}
	return m
}

// MarshalJSON implements json.Marshaler.
func (a *Attachment) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.ToMap())
}

func setString(m *orderedmap.OrderedMap[string, any], key, value string) {
	if value != "" {
		m.Set(key, value)
	}
}

func copyActions(actions []Action) []Action {
	if actions == nil {
		return nil
	}
	out := make([]Action, len(actions))
	for i, action := range actions {
		if action.Confirm != nil {
			confirm := *action.Confirm
			action.Confirm = &confirm
		}
		out[i] = action
	}
	return out
}

// AttachmentBuilder assembles an Attachment. Setters overwrite the previous
// value. A setter given invalid input changes nothing and records the error,
// which Err and Build report; the first error wins.
type AttachmentBuilder struct {
	a   Attachment
	err error
}

// NewAttachment starts an attachment colored DefaultColor.
func NewAttachment() *AttachmentBuilder {
	return &AttachmentBuilder{a: Attachment{color: DefaultColor}}
}

// Fallback sets the plain-text summary.
func (b *AttachmentBuilder) Fallback(s string) *AttachmentBuilder { b.a.fallback = s; return b }

// Text sets the main body.
func (b *AttachmentBuilder) Text(s string) *AttachmentBuilder { b.a.text = s; return b }

// Pretext sets the text shown above the attachment.
func (b *AttachmentBuilder) Pretext(s string) *AttachmentBuilder { b.a.pretext = s; return b }

// Footer sets the footer text.
func (b *AttachmentBuilder) Footer(s string) *AttachmentBuilder { b.a.footer = s; return b }

// FooterIcon sets the footer icon URL.
func (b *AttachmentBuilder) FooterIcon(s string) *AttachmentBuilder { b.a.footerIcon = s; return b }

// ImageURL sets the full-width image URL.
func (b *AttachmentBuilder) ImageURL(s string) *AttachmentBuilder { b.a.imageURL = s; return b }

// ThumbURL sets the thumbnail URL.
func (b *AttachmentBuilder) ThumbURL(s string) *AttachmentBuilder { b.a.thumbURL = s; return b }

// Title sets the bold heading.
func (b *AttachmentBuilder) Title(s string) *AttachmentBuilder { b.a.title = s; return b }

// TitleLink sets the URL the title links to.
func (b *AttachmentBuilder) TitleLink(s string) *AttachmentBuilder { b.a.titleLink = s; return b }

// AuthorName sets the author name.
func (b *AttachmentBuilder) AuthorName(s string) *AttachmentBuilder { b.a.authorName = s; return b }

// AuthorLink sets the URL the author name links to.
func (b *AttachmentBuilder) AuthorLink(s string) *AttachmentBuilder { b.a.authorLink = s; return b }

// AuthorIcon sets the author icon URL.
func (b *AttachmentBuilder) AuthorIcon(s string) *AttachmentBuilder { b.a.authorIcon = s; return b }

// CallbackID sets the id interactive actions report back with.
func (b *AttachmentBuilder) CallbackID(s string) *AttachmentBuilder { b.a.callbackID = s; return b }

// Color sets the sidebar color. Chat services accept "good", "warning",
// "danger" or a hex code; an empty color falls back to DefaultColor.
func (b *AttachmentBuilder) Color(color string) *AttachmentBuilder {
	if color == "" {
		color = DefaultColor
	}
	b.a.color = color
	return b
}

// Timestamp sets the time shown next to the footer. It is serialized in
// whole unix seconds.
func (b *AttachmentBuilder) Timestamp(t time.Time) *AttachmentBuilder {
	b.a.timestamp = t
	return b
}

// MarkdownIn sets the names of the fields rendered as markdown.
func (b *AttachmentBuilder) MarkdownIn(fields ...string) *AttachmentBuilder {
	b.a.markdownIn = append([]string(nil), fields...)
	return b
}

// AddField appends a field.
func (b *AttachmentBuilder) AddField(title, value string, short bool) *AttachmentBuilder {
	b.a.fields = append(b.a.fields, Field{Title: title, Value: value, Short: short})
	return b
}

// SetFields replaces all fields.
func (b *AttachmentBuilder) SetFields(fields ...Field) *AttachmentBuilder {
	b.a.fields = append([]Field(nil), fields...)
	return b
}

// ClearFields removes all fields.
func (b *AttachmentBuilder) ClearFields() *AttachmentBuilder {
	b.a.fields = nil
	return b
}

// AddAction appends an action. Adding more than MaxActions fails.
func (b *AttachmentBuilder) AddAction(action Action) *AttachmentBuilder {
	if len(b.a.actions) >= MaxActions {
		return b.fail(invalidInput("attachment already has %d actions", MaxActions))
	}
	action, err := action.normalize()
	if err != nil {
		return b.fail(err)
	}
	b.a.actions = append(b.a.actions, action)
	return b
}

// SetActions replaces all actions. Either every action is valid and they all
// replace the current ones, or nothing changes.
func (b *AttachmentBuilder) SetActions(actions ...Action) *AttachmentBuilder {
	if len(actions) > MaxActions {
		return b.fail(invalidInput("%d actions given, at most %d allowed", len(actions), MaxActions))
	}
	normalized := make([]Action, 0, len(actions))
	for _, action := range actions {
		action, err := action.normalize()
		if err != nil {
			return b.fail(err)
		}
		normalized = append(normalized, action)
	}
	b.a.actions = normalized
	return b
}

// ClearActions removes all actions.
func (b *AttachmentBuilder) ClearActions() *AttachmentBuilder {
	b.a.actions = nil
	return b
}

// Actions returns the actions added so far.
func (b *AttachmentBuilder) Actions() []Action { return copyActions(b.a.actions) }

// Fields returns the fields added so far.
func (b *AttachmentBuilder) Fields() []Field { return append([]Field(nil), b.a.fields...) }

// Err returns the first error recorded by a setter.
func (b *AttachmentBuilder) Err() error { return b.err }

// Build returns the finished attachment, or the first recorded error.
func (b *AttachmentBuilder) Build() (*Attachment, error) {
	if b.err != nil {
		return nil, b.err
	}
	a := b.a
	a.markdownIn = a.MarkdownIn()
	a.fields = a.Fields()
	a.actions = a.Actions()
	return &a, nil
}

func (b *AttachmentBuilder) fail(err error) *AttachmentBuilder {
	if b.err == nil {
		b.err = err
	}
	return b
}
