package bouncemail

// Category represents a canonical bounce category.
type Category int

// Bounce categories. HardBounce is the zero value and the classifier's fallback.
const (
	HardBounce Category = iota
	SpamComplaint
)

func (c Category) String() string {
	switch c {
	case SpamComplaint:
		return "spam_complaint"
	case HardBounce:
		return "hard_bounce"
	default:
		return "unknown"
	}
}

// DefaultSender is the From address reported in responses unless configured otherwise.
const DefaultSender = "notifications@honeybadger.io"

// Template describes the fixed response fields of a Category.
type Template struct {
	RecordType    string
	Type          string
	TypeCode      int
	Name          string
	Tag           string
	MessageStream string
	Description   string
	From          string
	StatusCode    int
	Alert         bool // whether the category is relayed to chat
}

func defaultTemplates() map[Category]Template {
	return map[Category]Template{
		SpamComplaint: {
			RecordType:    "Bounce",
			Type:          "SpamNotification",
			TypeCode:      512,
			Name:          "Spam notification",
			Tag:           "",
			MessageStream: "outbound",
			Description:   "The message was delivered, but was either blocked by the user, or classified as spam, bulk mail, or had rejected content.",
			From:          DefaultSender,
			StatusCode:    503,
			Alert:         true,
		},
		HardBounce: {
			RecordType:    "Bounce",
			Type:          "HardBounce",
			TypeCode:      1,
			Name:          "Hard bounce",
			Tag:           "Test",
			MessageStream: "outbound",
			Description:   "The server was unable to deliver your message (ex: unknown user, mailbox not found).",
			From:          DefaultSender,
			StatusCode:    200,
		},
	}
}

// CatalogOption overrides part of the default templates.
type CatalogOption func(map[Category]Template)

// WithSender sets the From address of every template.
func WithSender(from string) CatalogOption {
	return func(templates map[Category]Template) {
		if from == "" {
			return
		}
		for category, template := range templates {
			template.From = from
			templates[category] = template
		}
	}
}

// WithStatusCode sets the HTTP status answered for a category.
func WithStatusCode(category Category, code int) CatalogOption {
	return func(templates map[Category]Template) {
		template, ok := templates[category]
		if !ok || code == 0 {
			return
		}
		template.StatusCode = code
		templates[category] = template
	}
}

// Catalog holds one Template per Category. It is read-only once built
// and may be shared between goroutines.
type Catalog struct {
	templates map[Category]Template
}

// NewCatalog builds a Catalog from the default templates and the given overrides.
func NewCatalog(opts ...CatalogOption) *Catalog {
	templates := defaultTemplates()
	for _, opt := range opts {
		opt(templates)
	}
	return &Catalog{templates: templates}
}

// Template returns the template of a category. Unknown categories resolve to
// the HardBounce template; a nil Catalog serves the defaults.
func (c *Catalog) Template(category Category) Template {
	templates := c.templatesOrDefault()
	if template, ok := templates[category]; ok {
		return template
	}
	return templates[HardBounce]
}

func (c *Catalog) templatesOrDefault() map[Category]Template {
	if c == nil {
		return defaultTemplates()
	}
	return c.templates
}
