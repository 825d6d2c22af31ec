// Command sendpost triggers the email campaign for a single post from the
// command line, bypassing the HTTP server. It is meant for CI jobs and for
// resending after a fixed configuration.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/dreamriver/herald"
	"github.com/dreamriver/herald/bolt"
	"github.com/dreamriver/herald/campaign"
	"github.com/dreamriver/herald/markdown"
	"github.com/dreamriver/herald/resend"
	"github.com/dreamriver/herald/smtp"
	"github.com/dreamriver/herald/sqlite"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the config file")
	slug := flag.String("slug", "", "slug of the post to send")
	flag.Parse()

	if *slug == "" {
		log.Fatal("-slug is required")
	}

	viper.SetConfigFile(*configPath)
	viper.AutomaticEnv()
	if err := viper.ReadInConfig(); err != nil {
		log.Fatal(err)
	}

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

	var (
		db          herald.Database
		subscribers herald.SubscriberService
		posts       herald.PostService
	)
	switch config.DB.Type {
	case "sqlite":
		sdb := sqlite.NewDB(config.DB.Path)
		db = sdb
		subscribers = sqlite.NewSubscriberService(sdb)
		posts = sqlite.NewPostService(sdb)
	default:
		bdb := bolt.NewDB(config.DB.Path)
		db = bdb
		subscribers = bolt.NewSubscriberService(bdb)
		posts = bolt.NewPostService(bdb)
	}
	if err := db.Open(); err != nil {
		log.Fatal(err)
	}
	defer func() {
		_ = db.Close()
	}()

	var dispatcher herald.CampaignDispatcher
	switch config.Dispatch.Provider {
	case "smtp":
		dispatcher = smtp.NewDispatcher(config.SMTP.Host, config.SMTP.Port, config.SMTP.Username, config.SMTP.Password)
	default:
		dispatcher = resend.NewDispatcher(config.Resend.APIKey, config.Dispatch.BatchSize)
	}

	pipeline := &campaign.Pipeline{
		Posts:       posts,
		Subscribers: subscribers,
		Renderer:    markdown.NewRenderer(),
		Dispatcher:  dispatcher,
		Composer: &campaign.Composer{
			BaseURL: config.Blog.BaseURL,
			Product: config.Blog.Name,
			From:    config.Dispatch.From,
			Secret:  config.Newsletter.HMAC.Secret,
		},
		Timeout: config.Dispatch.Timeout,
		Logger:  zerolog.New(os.Stderr).With().Timestamp().Logger(),
	}

	result, err := pipeline.Send(context.Background(), *slug)
	if err != nil {
		log.Fatal(err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		log.Fatal(err)
	}
}
