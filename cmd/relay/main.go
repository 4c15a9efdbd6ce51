package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/Pandentia/bouncemail/bouncemail/config"
	"github.com/Pandentia/bouncemail/bouncemail/relay"
	"github.com/Pandentia/bouncemail/bouncemail/sinks/slack"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	app := kingpin.New("relay", "Chat relay for Bouncemail")

	configPath := app.Flag("config", "Path to a YAML configuration file").Envar("BOUNCEMAIL_CONFIG").Short('c').String()
	AMQPURI := app.Flag("amqp-uri", "The AMQP URI to connect to, overrides the configuration").Short('u').String()
	target := app.Flag("target", "The chat service to consume messages for").Default(slack.SinkName).Short('t').String()

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
	if *AMQPURI != "" {
		cfg.AMQPURI = *AMQPURI
	}
	if err := cfg.ValidateRelay(*target); err != nil {
		logger.Fatal().Err(err).Msg("Error validating relay configuration.")
	}

	r := &relay.Relay{
		MQURI:   cfg.AMQPURI,
		Logger:  logger,
		Sink:    &slack.Sink{WebhookURL: cfg.SlackWebhookURL},
		Target:  *target,
		Channel: cfg.Channel,
		Timeout: cfg.Timeout,
	}

	if err := r.New(); err != nil {
		logger.Fatal().Err(err).Msg("Error initializing relay.")
	}
	defer r.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := r.Run(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Error running relay.")
	}
}
