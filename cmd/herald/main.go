package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/dreamriver/herald"
	"github.com/dreamriver/herald/bolt"
	"github.com/dreamriver/herald/campaign"
	"github.com/dreamriver/herald/http"
	"github.com/dreamriver/herald/markdown"
	"github.com/dreamriver/herald/rabbitmq"
	"github.com/dreamriver/herald/resend"
	"github.com/dreamriver/herald/smtp"
	"github.com/dreamriver/herald/sqlite"
)

func main() {
	viper.SetConfigName("config")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AutomaticEnv()
	if err := viper.ReadInConfig(); err != nil {
		log.Fatal(err)
	}

	viper.SetDefault("http.addr", ":8080")
	viper.SetDefault("db.type", "bolt")
	viper.SetDefault("dispatch.batchsize", 100)
	viper.SetDefault("dispatch.timeout", 30*time.Second)

	var config *herald.Config
	if err := viper.Unmarshal(&config); err != nil {
		log.Fatal(err)
	}

	if err := config.Validate(); err != nil {
		log.Fatal(err)
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn: config.Sentry.DSN,
	}); err != nil {
		log.Fatalf("sentry.Init: %v", err)
	}
	defer sentry.Flush(2 * time.Second)

	a := newApp(config)

	ctx, cancel := context.WithCancel(context.Background())
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	go func() {
		<-c
		cancel()
	}()

	if err := a.Run(ctx); err != nil {
		_ = a.Close()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	<-ctx.Done()

	if err := a.Close(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type app struct {
	config     *herald.Config
	db         herald.Database
	httpServer *http.Server
	cron       *cron.Cron
	queue      *rabbitmq.QueueService
}

func newApp(config *herald.Config) *app {
	httpServer, err := http.NewServer()
	if err != nil {
		log.Fatalf("%+v\n", err)
	}
	return &app{
		config:     config,
		httpServer: httpServer,
	}
}

func (a *app) Run(ctx context.Context) error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	var (
		subscribers herald.SubscriberService
		posts       herald.PostService
	)
	switch a.config.DB.Type {
	case "sqlite":
		db := sqlite.NewDB(a.config.DB.Path)
		if err := db.Open(); err != nil {
			return err
		}
		a.db = db
		subscribers = sqlite.NewSubscriberService(db)
		posts = sqlite.NewPostService(db)
	default:
		db := bolt.NewDB(a.config.DB.Path)
		if err := db.Open(); err != nil {
			return err
		}
		a.db = db
		subscribers = bolt.NewSubscriberService(db)
		posts = bolt.NewPostService(db)
	}

	var dispatcher herald.CampaignDispatcher
	switch a.config.Dispatch.Provider {
	case "smtp":
		dispatcher = smtp.NewDispatcher(a.config.SMTP.Host, a.config.SMTP.Port, a.config.SMTP.Username, a.config.SMTP.Password)
	default:
		dispatcher = resend.NewDispatcher(a.config.Resend.APIKey, a.config.Dispatch.BatchSize)
	}

	pipeline := &campaign.Pipeline{
		Posts:       posts,
		Subscribers: subscribers,
		Renderer:    markdown.NewRenderer(),
		Dispatcher:  dispatcher,
		Composer: &campaign.Composer{
			BaseURL: a.config.Blog.BaseURL,
			Product: a.config.Blog.Name,
			From:    a.config.Dispatch.From,
			Secret:  a.config.Newsletter.HMAC.Secret,
		},
		Timeout: a.config.Dispatch.Timeout,
		Logger:  logger,
	}

	a.httpServer.Addr = a.config.HTTP.Addr
	a.httpServer.SubscriberService = subscribers
	a.httpServer.PostService = posts
	a.httpServer.CampaignSender = pipeline
	a.httpServer.WelcomeMailer = &campaign.WelcomeMailer{
		Product:    a.config.Blog.Name,
		BaseURL:    a.config.Blog.BaseURL,
		From:       a.config.Dispatch.From,
		Dispatcher: dispatcher,
	}
	a.httpServer.HMACSecret = a.config.Newsletter.HMAC.Secret
	a.httpServer.WebhookSecret = a.config.Webhook.Secret

	if err := a.httpServer.Open(); err != nil {
		return err
	}

	if spec := a.config.Newsletter.Dedup.Cron.Spec; spec != "" {
		a.cron = cron.New()
		if _, err := a.cron.AddFunc(spec, func() {
			result, err := subscribers.RemoveDuplicates()
			if err != nil {
				logger.Error().Err(err).Msg("deduplication run failed")
				sentry.CaptureException(err)
				return
			}
			logger.Info().
				Int("groups", result.Groups).
				Int("kept", result.Kept).
				Int("deleted", result.Deleted).
				Msg("deduplication run finished")
		}); err != nil {
			return err
		}
		a.cron.Start()
	}

	if a.config.AMQP.URL != "" {
		queue, err := rabbitmq.NewQueueService(a.config.AMQP.URL)
		if err != nil {
			return err
		}
		a.queue = queue

		messages, err := queue.Consume(ctx, a.config.AMQP.Topic)
		if err != nil {
			return err
		}

		go func() {
			for body := range messages {
				var event herald.PublishedEvent
				if err := json.Unmarshal(body, &event); err != nil {
					logger.Error().Err(err).Msg("failed to decode published event")
					continue
				}

				if _, err := pipeline.Send(ctx, event.Slug); err != nil {
					logger.Error().Err(err).Str("slug", event.Slug).Msg("failed to send campaign for published event")
					sentry.CaptureException(err)
				}
			}
		}()
	}

	return nil
}

func (a *app) Close() error {
	if a.cron != nil {
		a.cron.Stop()
	}

	if a.queue != nil {
		if err := a.queue.Close(); err != nil {
			return err
		}
	}

	if a.httpServer != nil {
		if err := a.httpServer.Close(); err != nil {
			return err
		}
	}

	if a.db != nil {
		if err := a.db.Close(); err != nil {
			return err
		}
	}

	return nil
}
