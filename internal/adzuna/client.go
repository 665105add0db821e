package adzuna

import (
	"context"
	"net/http"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"github.com/fr4nk3nst1ner/skillsleuth/internal/client"
	"github.com/fr4nk3nst1ner/skillsleuth/internal/config"
	"github.com/fr4nk3nst1ner/skillsleuth/internal/models"
	"github.com/fr4nk3nst1ner/skillsleuth/internal/utils"
)

const maxLoggedBody = 200

// Client fetches search result pages from the listings API
type Client struct {
	http   *resty.Client
	search config.Search
	creds  config.Credentials
	log    logrus.FieldLogger
}

// NewClient creates a listings client. proxyURL may be empty.
func NewClient(search config.Search, creds config.Credentials, proxyURL string, log logrus.FieldLogger) *Client {
	return &Client{
		http: client.CreateHTTPClient(client.Options{
			Timeout:  search.Timeout,
			ProxyURL: proxyURL,
			Logger:   log,
		}),
		search: search,
		creds:  creds,
		log:    log,
	}
}

// FetchPage builds and performs the request for one page
func (c *Client) FetchPage(ctx context.Context, page int) []models.RawJob {
	return c.Fetch(ctx, BuildRequest(page, c.search, c.creds))
}

// Fetch performs one request and returns the page's raw records. Any failure
// is logged and yields an empty slice; nothing is retried.
func (c *Client) Fetch(ctx context.Context, req Request) []models.RawJob {
	log := c.log.WithField("page", req.Page)
	log.WithField("url", req.Redacted()).Debug("fetching page")

	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParamsFromValues(req.Query).
		Get(req.URL)
	if err != nil {
		log.WithError(err).Warn("request failed")
		return nil
	}

	if res.StatusCode() != http.StatusOK {
		log.WithFields(logrus.Fields{
			"status": res.StatusCode(),
			"body":   utils.TruncateString(res.String(), maxLoggedBody),
		}).Warn("unexpected response status")
		return nil
	}

	body := res.Body()
	if !gjson.ValidBytes(body) {
		log.Warn("response body is not valid JSON")
		return nil
	}

	results := gjson.GetBytes(body, "results")
	if !results.IsArray() {
		log.Debug("response has no results array")
		return nil
	}

	return results.Array()
}
