package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
)

// Sink names accepted in Sinks.
const (
	SinkSlack = "slack"
	SinkAMQP  = "amqp"
	SinkSNS   = "sns"
)

// Config describes the runtime configuration shared by the binaries.
type Config struct {
	Bind string `yaml:"bind" env:"BIND" env-default:"[::]:8080" validate:"required"`

	// Chat alerts.
	Sinks      []string      `yaml:"sinks" env:"SINKS" env-separator:"," env-default:"slack" validate:"dive,oneof=slack amqp sns"`
	Channel    string        `yaml:"channel" env:"CHAT_CHANNEL" env-default:"#general"`
	Username   string        `yaml:"username" env:"CHAT_USERNAME" env-default:"bouncemail"`
	Icon       string        `yaml:"icon" env:"CHAT_ICON" env-default:":email:"`
	DetailsURL string        `yaml:"details_url" env:"DETAILS_URL" validate:"omitempty,url"`
	Timeout    time.Duration `yaml:"timeout" env:"SEND_TIMEOUT" env-default:"5s" validate:"min=0"`

	// Sink credentials.
	SlackWebhookURL string `yaml:"slack_webhook_url" env:"SLACK_WEBHOOK_URL" validate:"omitempty,url"`
	AMQPURI         string `yaml:"amqp_uri" env:"AMQP_URI" validate:"omitempty,url"`
	SNSTopicARN     string `yaml:"sns_topic_arn" env:"SNS_TOPIC_ARN"`

	// Alert suppression; a zero window disables it.
	SuppressWindow time.Duration `yaml:"suppress_window" env:"SUPPRESS_WINDOW" env-default:"0s" validate:"min=0"`
	RedisURL       string        `yaml:"redis_url" env:"REDIS_URL" validate:"omitempty,url"`

	// Response templates.
	From             string `yaml:"from" env:"BOUNCE_FROM" env-default:"notifications@honeybadger.io" validate:"omitempty,email"`
	SpamStatus       int    `yaml:"spam_status" env:"SPAM_STATUS" env-default:"503" validate:"min=100,max=599"`
	HardBounceStatus int    `yaml:"hard_bounce_status" env:"HARD_BOUNCE_STATUS" env-default:"200" validate:"min=100,max=599"`
}

var validate = validator.New()

// Load reads the configuration from path, when given, and the environment.
// Environment variables win over the file.
func Load(path string) (*Config, error) {
	var cfg Config

	var err error
	if path != "" {
		err = cleanenv.ReadConfig(path, &cfg)
	} else {
		err = cleanenv.ReadEnv(&cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field formats and that every selected sink has its credential.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	var errs []error
	for _, sink := range c.Sinks {
		switch {
		case sink == SinkSlack && c.SlackWebhookURL == "":
			errs = append(errs, errors.New("sink slack requires SLACK_WEBHOOK_URL"))
		case sink == SinkAMQP && c.AMQPURI == "":
			errs = append(errs, errors.New("sink amqp requires AMQP_URI"))
		case sink == SinkSNS && c.SNSTopicARN == "":
			errs = append(errs, errors.New("sink sns requires SNS_TOPIC_ARN"))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("config error: %w", errors.Join(errs...))
	}
	return nil
}

// ValidateRelay checks what the relay needs to forward messages queued for
// target: a broker to consume from and a chat service it can deliver to.
func (c *Config) ValidateRelay(target string) error {
	var errs []error
	if c.AMQPURI == "" {
		errs = append(errs, errors.New("relay requires AMQP_URI"))
	}
	switch target {
	case SinkSlack:
		if c.SlackWebhookURL == "" {
			errs = append(errs, errors.New("relay target slack requires SLACK_WEBHOOK_URL"))
		}
	default:
		errs = append(errs, fmt.Errorf("relay has no sink for target %q", target))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config error: %w", errors.Join(errs...))
	}
	return nil
}

// HasSink reports whether name is one of the selected sinks.
func (c *Config) HasSink(name string) bool {
	for _, sink := range c.Sinks {
		if sink == name {
			return true
		}
	}
	return false
}
