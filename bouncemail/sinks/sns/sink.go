// Package sns publishes chat messages to an AWS SNS topic, for subscribers
// such as chat bots or lambda functions to deliver.
package sns

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"

	"github.com/Pandentia/bouncemail/bouncemail"
	"github.com/Pandentia/bouncemail/bouncemail/dispatch"
	"github.com/Pandentia/bouncemail/bouncemail/notify"
)

// SinkName identifies this sink in delivery errors and configuration.
const SinkName = "sns"

// ClientAPI defines the SNS client methods used by this package.
type ClientAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// Sink publishes messages to TopicARN.
type Sink struct {
	Client   ClientAPI
	TopicARN string
}

// NewSink creates a sink using the default AWS credential chain.
func NewSink(ctx context.Context, topicARN string) (*Sink, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("config.LoadDefaultConfig: %w", err)
	}
	return &Sink{Client: sns.NewFromConfig(cfg), TopicARN: topicARN}, nil
}

// Send implements dispatch.Sink.
func (s *Sink) Send(ctx context.Context, msg *notify.Message, channel string) error {
	if s.TopicARN == "" {
		return dispatch.NewDeliveryError(SinkName, errors.New("topic arn is not configured"))
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return dispatch.NewDeliveryError(SinkName, err)
	}

	input := &sns.PublishInput{
		Message:  aws.String(string(data)),
		TopicArn: aws.String(s.TopicARN),
		Subject:  aws.String(subject(msg.Text())),
	}
	if channel != "" {
		input.MessageAttributes = map[string]types.MessageAttributeValue{
			bouncemail.ChannelHeader: {
				DataType:    aws.String("String"),
				StringValue: aws.String(channel),
			},
		}
	}

	if _, err := s.Client.Publish(ctx, input); err != nil {
		return dispatch.NewDeliveryError(SinkName, fmt.Errorf("s.Client.Publish: %w", err))
	}
	return nil
}

// maxSubject is the longest subject SNS accepts.
const maxSubject = 100

// defaultSubject is used when nothing printable is left of the message text.
const defaultSubject = "Bouncemail alert"

// subject derives an SNS subject from text. SNS only accepts printable ASCII
// without line breaks, so other characters become "?" and whitespace becomes
// a space.
func subject(text string) string {
	var b strings.Builder
	for _, r := range text {
		if b.Len() == maxSubject {
			break
		}
		switch {
		case r >= ' ' && r <= '~':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		case unicode.IsControl(r):
		default:
			b.WriteByte('?')
		}
	}

	out := strings.TrimSpace(b.String())
	if out == "" {
		return defaultSubject
	}
	return out
}
