package notify

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func button(i int) Action {
	return Action{Name: fmt.Sprintf("action-%d", i), Text: fmt.Sprintf("Action %d", i)}
}

func TestAttachmentDefaults(t *testing.T) {
	a, err := NewAttachment().Build()
	require.NoError(t, err)

	assert.Equal(t, DefaultColor, a.Color())
	assert.Empty(t, a.Fields())
	assert.Empty(t, a.Actions())

	data, err := json.Marshal(a)
	require.NoError(t, err)
	assert.JSONEq(t, `{"color":"good"}`, string(data))
}

func TestAttachmentSettersOverwrite(t *testing.T) {
	a, err := NewAttachment().
		Title("first").
		Title("second").
		Color("danger").
		Color("").
		Build()
	require.NoError(t, err)

	assert.Equal(t, "second", a.Title())
	assert.Equal(t, DefaultColor, a.Color())
}

func TestAddActionRejectsSixth(t *testing.T) {
	b := NewAttachment()
	for i := 0; i < MaxActions; i++ {
		b.AddAction(button(i))
	}
	require.NoError(t, b.Err())
	before := b.Actions()

	b.AddAction(button(MaxActions))

	assert.True(t, errors.Is(b.Err(), ErrInvalidInput))
	assert.Equal(t, before, b.Actions())
	assert.Len(t, b.Actions(), MaxActions)

	_, err := b.Build()
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestAddActionValidation(t *testing.T) {
	tests := []struct {
		name    string
		action  Action
		wantErr bool
	}{
		{"minimal", Action{Name: "ack", Text: "Acknowledge"}, false},
		{"full", Action{Name: "ack", Text: "Ack", Type: "button", Style: "danger", Value: "1", URL: "https://example.com/a"}, false},
		{"missing name", Action{Text: "Acknowledge"}, true},
		{"missing text", Action{Name: "ack"}, true},
		{"bad type", Action{Name: "ack", Text: "Ack", Type: "select"}, true},
		{"bad style", Action{Name: "ack", Text: "Ack", Style: "loud"}, true},
		{"bad url", Action{Name: "ack", Text: "Ack", URL: "not a url"}, true},
		{"confirm without text", Action{Name: "ack", Text: "Ack", Confirm: &Confirmation{Title: "Sure?"}}, true},
		{"confirm", Action{Name: "ack", Text: "Ack", Confirm: &Confirmation{Text: "Really?"}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewAttachment().AddAction(tt.action)
			if tt.wantErr {
				assert.ErrorIs(t, b.Err(), ErrInvalidInput)
				assert.Empty(t, b.Actions())
				return
			}
			require.NoError(t, b.Err())
			require.Len(t, b.Actions(), 1)
			assert.Equal(t, ButtonType, b.Actions()[0].Type)
		})
	}
}

func TestSetActionsIsAllOrNothing(t *testing.T) {
	b := NewAttachment().AddAction(button(0))

	b.SetActions(button(1), Action{Name: "broken"})
	assert.ErrorIs(t, b.Err(), ErrInvalidInput)
	assert.Equal(t, []string{"action-0"}, actionNames(b.Actions()))

	b = NewAttachment().AddAction(button(0))
	b.SetActions(button(1), button(2), button(3), button(4), button(5), button(6))
	assert.ErrorIs(t, b.Err(), ErrInvalidInput)
	assert.Len(t, b.Actions(), 1)

	b = NewAttachment().AddAction(button(0)).SetActions(button(1), button(2))
	require.NoError(t, b.Err())
	assert.Equal(t, []string{"action-1", "action-2"}, actionNames(b.Actions()))
}

func TestClearOnlyTouchesOneSequence(t *testing.T) {
	b := NewAttachment().
		AddField("a", "1", true).
		AddAction(button(0)).
		Title("title")

	b.ClearActions()
	assert.Empty(t, b.Actions())
	assert.Len(t, b.Fields(), 1)

	b.AddAction(button(1)).ClearFields()
	assert.Empty(t, b.Fields())
	assert.Len(t, b.Actions(), 1)

	a, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, "title", a.Title())
}

func TestBuiltAttachmentIsImmutable(t *testing.T) {
	b := NewAttachment().AddField("a", "1", false).AddAction(Action{Name: "x", Text: "X", Confirm: &Confirmation{Text: "ok?"}})
	a, err := b.Build()
	require.NoError(t, err)

	b.AddField("b", "2", false).ClearActions().Title("changed")

	fields := a.Fields()
	fields[0].Title = "mutated"
	actions := a.Actions()
	actions[0].Confirm.Text = "mutated"

	assert.Equal(t, []Field{{Title: "a", Value: "1"}}, a.Fields())
	assert.Equal(t, "ok?", a.Actions()[0].Confirm.Text)
	assert.Equal(t, "", a.Title())
}

func TestAttachmentKeyOrder(t *testing.T) {
	at := time.Date(2023, 2, 27, 21, 41, 30, 0, time.UTC)
	a, err := NewAttachment().
		Title("Spam notification").
		AuthorName("bouncemail").
		Fallback("fallback").
		Color("danger").
		Timestamp(at).
		Footer("footer").
		AddField("Recipient", "a@b.com", true).
		AddAction(button(0)).
		Build()
	require.NoError(t, err)

	var keys []string
	for pair := a.ToMap().Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	assert.Equal(t, []string{"fallback", "color", "footer", "ts", "title", "author_name", "fields", "actions"}, keys)

	v, ok := a.ToMap().Get("ts")
	require.True(t, ok)
	assert.Equal(t, at.Unix(), v)
}

func TestMessageBuild(t *testing.T) {
	_, err := NewMessage("   ").Build()
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = NewMessage("hi").Attach(nil).Build()
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = NewMessage("hi").AttachBuilder(NewAttachment().AddAction(Action{})).Build()
	assert.ErrorIs(t, err, ErrInvalidInput)

	m, err := NewMessage("hi").Channel("#general").Username("bouncemail").Icon(":warning:").Build()
	require.NoError(t, err)
	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Equal(t, `{"text":"hi","channel":"#general","username":"bouncemail","icon_emoji":":warning:"}`, string(data))
}

func TestMessageIcon(t *testing.T) {
	tests := []struct {
		icon      string
		wantEmoji string
		wantURL   string
	}{
		{":ghost:", ":ghost:", ""},
		{"https://example.com/icon.png", "", "https://example.com/icon.png"},
		{":", "", ":"},
		{"", "", ""},
	}

	for _, tt := range tests {
		m, err := NewMessage("hi").Icon(":replaced:").Icon(tt.icon).Build()
		require.NoError(t, err)
		assert.Equal(t, tt.wantEmoji, m.IconEmoji(), tt.icon)
		assert.Equal(t, tt.wantURL, m.IconURL(), tt.icon)
	}
}

func TestMessageWithChannel(t *testing.T) {
	m, err := NewMessage("hi").Channel("#general").Build()
	require.NoError(t, err)

	other := m.WithChannel("#alerts")
	assert.Equal(t, "#alerts", other.Channel())
	assert.Equal(t, "#general", m.Channel())
}

func TestRoundTripPreservesOrder(t *testing.T) {
	at := time.Date(2019, 11, 5, 16, 33, 54, 0, time.UTC)
	ab := NewAttachment().
		Color("#ff0000").
		Title("Spam notification").
		TitleLink("https://example.com/bounces").
		Timestamp(at).
		MarkdownIn("text", "fields").
		AddField("z", "last letter", true).
		AddField("a", "first letter", false).
		AddField("m", "middle", true)
	for _, i := range []int{4, 0, 3} {
		ab.AddAction(button(i))
	}

	m, err := NewMessage("Spam complaint").
		Channel("#general").
		Icon("https://example.com/icon.png").
		AttachBuilder(ab).
		AttachBuilder(NewAttachment().Text("second")).
		Build()
	require.NoError(t, err)

	data, err := json.Marshal(m)
	require.NoError(t, err)

	parsed, err := ParseMessage(data)
	require.NoError(t, err)

	again, err := json.Marshal(parsed)
	require.NoError(t, err)
	assert.Equal(t, string(data), string(again))

	require.Len(t, parsed.Attachments(), 2)
	first := parsed.Attachments()[0]
	assert.Equal(t, []string{"z", "a", "m"}, fieldTitles(first.Fields()))
	assert.Equal(t, []string{"action-4", "action-0", "action-3"}, actionNames(first.Actions()))
	assert.Equal(t, at, first.Timestamp())
	assert.Equal(t, "second", parsed.Attachments()[1].Text())
}

func TestRoundTripKeepsIconKind(t *testing.T) {
	tests := []struct {
		name  string
		build func(*MessageBuilder) *MessageBuilder
		emoji string
		url   string
	}{
		{"emoji", func(b *MessageBuilder) *MessageBuilder { return b.Icon(":email:") }, ":email:", ""},
		{"bare emoji", func(b *MessageBuilder) *MessageBuilder { return b.IconEmoji("email") }, "email", ""},
		{"url", func(b *MessageBuilder) *MessageBuilder { return b.Icon("https://example.com/i.png") }, "", "https://example.com/i.png"},
		{"colon url", func(b *MessageBuilder) *MessageBuilder { return b.IconURL(":odd:") }, "", ":odd:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := tt.build(NewMessage("hi")).Build()
			require.NoError(t, err)
			data, err := json.Marshal(msg)
			require.NoError(t, err)

			parsed, err := ParseMessage(data)
			require.NoError(t, err)
			assert.Equal(t, tt.emoji, parsed.IconEmoji())
			assert.Equal(t, tt.url, parsed.IconURL())
		})
	}
}

func TestParseMessageRejectsInvalid(t *testing.T) {
	_, err := ParseMessage([]byte(`{"text":`))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = ParseMessage([]byte(`{"text":""}`))
	assert.ErrorIs(t, err, ErrInvalidInput)

	six := `{"name":"a","text":"A"}`
	_, err = ParseMessage([]byte(`{"text":"hi","attachments":[{"actions":[` +
		six + `,` + six + `,` + six + `,` + six + `,` + six + `,` + six + `]}]}`))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func actionNames(actions []Action) []string {
	names := make([]string, 0, len(actions))
	for _, a := range actions {
		names = append(names, a.Name)
	}
	return names
}

func fieldTitles(fields []Field) []string {
	titles := make([]string, 0, len(fields))
	for _, f := range fields {
		titles = append(titles, f.Title)
	}
	return titles
}
