package client

import (
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

const (
	defaultTimeout = 30 * time.Second
	userAgent      = "skillsleuth/1.0 (+https://github.com/fr4nk3nst1ner/skillsleuth)"
)

// Options configures the HTTP client used against the listings API
type Options struct {
	Timeout  time.Duration
	ProxyURL string
	Logger   logrus.FieldLogger
}

// CreateHTTPClient creates a JSON API client. Retries are disabled: a failed
// request is reported to the caller exactly once.
func CreateHTTPClient(opts Options) *resty.Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	c := resty.New().
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "application/json")

	if opts.Logger != nil {
		c.SetLogger(opts.Logger)
	}

	if opts.ProxyURL != "" {
		// an unparsable proxy falls back to a direct connection
		if _, err := url.Parse(opts.ProxyURL); err == nil {
			c.SetProxy(opts.ProxyURL)
		} else if opts.Logger != nil {
			opts.Logger.WithError(err).Warn("ignoring invalid proxy URL")
		}
	}

	return c
}
