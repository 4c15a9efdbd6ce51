package notify

import (
	"github.com/go-playground/validator/v10"
)

// MaxActions is the most interactive buttons an attachment may carry.
const MaxActions = 5

// ButtonType is the only action type chat services render in attachments.
const ButtonType = "button"

var validate = validator.New()

// Field is a titled value rendered as a table cell within an attachment.
type Field struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"` // whether the field may sit beside another one
}

// Action describes an interactive button.
type Action struct {
	Name    string        `json:"name" validate:"required"`
	Text    string        `json:"text" validate:"required"`
	Type    string        `json:"type" validate:"omitempty,oneof=button"`
	Style   string        `json:"style,omitempty" validate:"omitempty,oneof=default primary danger"`
	Value   string        `json:"value,omitempty"`
	URL     string        `json:"url,omitempty" validate:"omitempty,url"`
	Confirm *Confirmation `json:"confirm,omitempty"`
}

// Confirmation is the dialog shown before an Action fires.
type Confirmation struct {
	Title       string `json:"title,omitempty"`
	Text        string `json:"text" validate:"required"`
	OkText      string `json:"ok_text,omitempty"`
	DismissText string `json:"dismiss_text,omitempty"`
}

// normalize validates an action and fills in its default type.
func (a Action) normalize() (Action, error) {
	if err := validate.Struct(a); err != nil {
		return Action{}, invalidInput("action %q: %v", a.Name, err)
	}
	if a.Type == "" {
		a.Type = ButtonType
	}
	if a.Confirm != nil {
		confirm := *a.Confirm
		a.Confirm = &confirm
	}
	return a, nil
}
