package adzuna

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/fr4nk3nst1ner/skillsleuth/internal/config"
)

// Request is a fully parameterized search call for one page
type Request struct {
	Page  int
	URL   string
	Query url.Values
}

// BuildRequest creates the search request for page. It has no side effects and
// assumes credentials were validated at startup.
func BuildRequest(page int, search config.Search, creds config.Credentials) Request {
	endpoint := fmt.Sprintf("%s/%s/search/%d",
		strings.TrimRight(search.BaseURL, "/"),
		url.PathEscape(search.Country),
		page,
	)

	query := url.Values{}
	query.Set("app_id", creds.AppID)
	query.Set("app_key", creds.AppKey)
	query.Set("results_per_page", strconv.Itoa(search.ResultsPerPage))
	query.Set("what", search.What)
	query.Set("where", search.Where)
	query.Set("content-type", "application/json")

	return Request{Page: page, URL: endpoint, Query: query}
}

// Redacted renders the request with the app key masked, for logs
func (r Request) Redacted() string {
	q := url.Values{}
	for k, v := range r.Query {
		q[k] = v
	}
	if q.Get("app_key") != "" {
		q.Set("app_key", "REDACTED")
	}
	return r.URL + "?" + q.Encode()
}
