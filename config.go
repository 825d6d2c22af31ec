package herald

import "time"

// Config represents the main config. It is unmarshalled once at process
// start and handed to constructors explicitly; nothing reads the
// environment from deep call paths.
type Config struct {
	DB struct {
		Type string // "bolt" or "sqlite"
		Path string
	}

	HTTP struct {
		Addr string
	}

	Blog struct {
		BaseURL string
		Name    string
	}

	Dispatch struct {
		Provider  string // "resend" or "smtp"
		From      string
		Timeout   time.Duration
		BatchSize int
	}

	Resend struct {
		APIKey string
	}

	SMTP struct {
		Host     string
		Port     int
		Username string
		Password string
	}

	Newsletter struct {
		HMAC struct {
			Secret string
		}
		Dedup struct {
			Cron struct {
				Spec string
			}
		}
	}

	Webhook struct {
		Secret string
	}

	Sentry struct {
		DSN string
	}

	AMQP struct {
		URL   string
		Topic string
	}
}

// Validate checks that the configured dispatch provider has the credentials
// it needs. A failure here is fatal for the whole process, not retried.
func (c *Config) Validate() error {
	if c.Dispatch.From == "" {
		return &Error{Code: ErrConfig, Op: "Config.Validate", Message: "dispatch.from is required"}
	}

	switch c.Dispatch.Provider {
	case "", "resend":
		if c.Resend.APIKey == "" {
			return &Error{Code: ErrConfig, Op: "Config.Validate", Message: "resend.apikey is required"}
		}
	case "smtp":
		if c.SMTP.Host == "" || c.SMTP.Port == 0 {
			return &Error{Code: ErrConfig, Op: "Config.Validate", Message: "smtp.host and smtp.port are required"}
		}
	default:
		return &Error{Code: ErrConfig, Op: "Config.Validate", Message: "unknown dispatch.provider: " + c.Dispatch.Provider}
	}

	return nil
}
