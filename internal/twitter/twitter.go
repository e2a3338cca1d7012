// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package twitter posts text updates through the X (Twitter) API v2 with
// OAuth 1.0a user context.
package twitter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dghubble/oauth1"

	"go.astrophena.name/radecbot/internal/request"
)

// DefaultAPIURL is the base URL of the API.
const DefaultAPIURL = "https://api.twitter.com"

// MaxLength is the longest post, in weighted characters, the API accepts.
const MaxLength = 280

// ErrTooLong is returned by Post for text longer than [MaxLength].
var ErrTooLong = errors.New("post is too long")

// Credentials authenticate the bot account.
type Credentials struct {
	APIKey       string
	APISecret    string
	BearerToken  string // app-only; posting does not use it
	AccessToken  string
	AccessSecret string
}

// Tweet is a created post.
type Tweet struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Poster publishes text posts.
type Poster interface {
	Post(ctx context.Context, text string) (Tweet, error)
}

// Config configures a [Client].
type Config struct {
	Credentials Credentials
	// APIURL overrides DefaultAPIURL.
	APIURL string
	// HTTPClient is the client requests are signed on top of. If nil,
	// request.DefaultClient is used.
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client posts to the API.
type Client struct {
	apiURL   string
	httpc    *http.Client
	scrubber *strings.Replacer
	slog     *slog.Logger
}

// New returns a Client signing requests with cfg.Credentials.
func New(cfg Config) *Client {
	c := &Client{
		apiURL: strings.TrimSuffix(cfg.APIURL, "/"),
		slog:   cfg.Logger,
	}
	if c.apiURL == "" {
		c.apiURL = DefaultAPIURL
	}
	if c.slog == nil {
		c.slog = slog.Default()
	}

	base := cfg.HTTPClient
	if base == nil {
		base = request.DefaultClient
	}
	creds := cfg.Credentials
	ctx := context.WithValue(context.Background(), oauth1.HTTPClient, base)
	signed := oauth1.NewConfig(creds.APIKey, creds.APISecret).
		Client(ctx, oauth1.NewToken(creds.AccessToken, creds.AccessSecret))
	c.httpc = &http.Client{Transport: signed.Transport, Timeout: base.Timeout}

	var pairs []string
	for _, secret := range []string{creds.APIKey, creds.APISecret, creds.BearerToken, creds.AccessToken, creds.AccessSecret} {
		if secret != "" {
			pairs = append(pairs, secret, "[EXPUNGED]")
		}
	}
	c.scrubber = strings.NewReplacer(pairs...)
	return c
}

type createResponse struct {
	Data Tweet `json:"data"`
}

// Post publishes text and returns the created post.
func (c *Client) Post(ctx context.Context, text string) (Tweet, error) {
	if n := WeightedLength(text); n > MaxLength {
		return Tweet{}, fmt.Errorf("%w: %d characters, limit is %d", ErrTooLong, n, MaxLength)
	}

	resp, err := request.Make[createResponse](ctx, request.Params{
		Method: http.MethodPost,
		URL:    c.apiURL + "/2/tweets",
		Body: struct {
			Text string `json:"text"`
		}{Text: text},
		HTTPClient: c.httpc,
		Scrubber:   c.scrubber,
	})
	if err != nil {
		return Tweet{}, fmt.Errorf("posting: %w", err)
	}
	if resp.Data.ID == "" {
		return Tweet{}, errors.New("posting: response has no post ID")
	}
	c.slog.Debug("posted", "id", resp.Data.ID)
	return resp.Data, nil
}

// Ranges of code points that count as one character. Everything else counts
// as two, following the twitter-text configuration.
var lightRanges = [][2]rune{
	{0, 4351},
	{8192, 8205},
	{8208, 8223},
	{8242, 8247},
}

// WeightedLength returns the length of text as the API counts it against
// [MaxLength].
func WeightedLength(text string) int {
	n := 0
	for _, r := range text {
		w := 2
		for _, lr := range lightRanges {
			if r >= lr[0] && r <= lr[1] {
				w = 1
				break
			}
		}
		n += w
	}
	return n
}
