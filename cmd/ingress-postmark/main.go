package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/streadway/amqp"
	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/Pandentia/bouncemail/bouncemail"
	"github.com/Pandentia/bouncemail/bouncemail/config"
	"github.com/Pandentia/bouncemail/bouncemail/dispatch"
	"github.com/Pandentia/bouncemail/bouncemail/ingress/postmark"
	"github.com/Pandentia/bouncemail/bouncemail/metrics"
	"github.com/Pandentia/bouncemail/bouncemail/sinks/broker"
	"github.com/Pandentia/bouncemail/bouncemail/sinks/slack"
	"github.com/Pandentia/bouncemail/bouncemail/sinks/sns"
	"github.com/Pandentia/bouncemail/bouncemail/suppress"
)

const suppressPrefix = "bouncemail:suppress:"

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	app := kingpin.New("ingress-postmark", "Bounce webhook ingress for Bouncemail")

	configPath := app.Flag("config", "Path to a YAML configuration file").Envar("BOUNCEMAIL_CONFIG").Short('c').String()
	bind := app.Flag("bind", "The address to bind to, overrides the configuration").Short('b').String()

	verbose := app.Flag("verbose", "Enables debug logging").Short('v').Bool()
	pretty := app.Flag("pretty", "Enables pretty logging").Short('p').Bool()

	kingpin.MustParse(app.Parse(os.Args[1:]))

	if *pretty {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	if *verbose {
		logger = logger.Level(zerolog.DebugLevel)
	} else {
		logger = logger.Level(zerolog.InfoLevel)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("Error loading configuration.")
	}
	if *bind != "" {
		cfg.Bind = *bind
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sink, closers, err := buildSink(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Error initializing chat sinks.")
	}

	suppressor, closer, err := buildSuppressor(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Error initializing alert suppression.")
	}
	if closer != nil {
		closers = append(closers, closer)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	catalog := bouncemail.NewCatalog(
		bouncemail.WithSender(cfg.From),
		bouncemail.WithStatusCode(bouncemail.SpamComplaint, cfg.SpamStatus),
		bouncemail.WithStatusCode(bouncemail.HardBounce, cfg.HardBounceStatus),
	)

	dispatcher := &dispatch.Dispatcher{
		Logger:     logger,
		Formatter:  &bouncemail.Formatter{Catalog: catalog},
		Sink:       sink,
		Channel:    cfg.Channel,
		Username:   cfg.Username,
		Icon:       cfg.Icon,
		DetailsURL: cfg.DetailsURL,
		Timeout:    cfg.Timeout,
		Suppressor: suppressor,
		Metrics:    metrics.New(reg),
	}

	ingest := &postmark.API{
		Logger:     logger,
		Dispatcher: dispatcher,
		Gatherer:   reg,
	}

	err = ingest.Run(ctx, cfg.Bind)
	for _, c := range closers {
		if cerr := c.Close(); cerr != nil {
			logger.Err(cerr).Msg("Error closing connection.")
		}
	}
	if err != nil {
		logger.Fatal().Err(err).Msg("Error running ingress API.")
	}
}

// buildSink returns the configured sink, or a Fanout when several are selected,
// and the connections to close on shutdown.
func buildSink(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (dispatch.Sink, []io.Closer, error) {
	sinks := dispatch.Fanout{}
	var closers []io.Closer

	if cfg.HasSink(config.SinkSlack) {
		sinks[slack.SinkName] = &slack.Sink{WebhookURL: cfg.SlackWebhookURL}
	}

	if cfg.HasSink(config.SinkAMQP) {
		conn, channel, err := broker.Connect(cfg.AMQPURI)
		if err != nil {
			return nil, closers, err
		}
		closers = append(closers, conn)
		go broker.LogReturns(channel.NotifyReturn(make(chan amqp.Return, 1)), logger)
		sinks[broker.SinkName] = &broker.Sink{Publisher: channel, Target: slack.SinkName}
		logger.Debug().Msg("Connection to message broker established")
	}

	if cfg.HasSink(config.SinkSNS) {
		sink, err := sns.NewSink(ctx, cfg.SNSTopicARN)
		if err != nil {
			return nil, closers, err
		}
		sinks[sns.SinkName] = sink
	}

	switch len(sinks) {
	case 0:
		return nil, closers, nil
	case 1:
		for _, sink := range sinks {
			return sink, closers, nil
		}
	}
	return sinks, closers, nil
}

// buildSuppressor returns nil when suppression is disabled. The closer is
// set for the redis backend.
func buildSuppressor(ctx context.Context, cfg *config.Config) (suppress.Suppressor, io.Closer, error) {
	if cfg.SuppressWindow <= 0 {
		return nil, nil, nil
	}
	if cfg.RedisURL == "" {
		return suppress.NewMemory(cfg.SuppressWindow), nil, nil
	}

	client, err := suppress.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	return &suppress.Redis{Client: client, Prefix: suppressPrefix, Window: cfg.SuppressWindow}, client, nil
}
