// Package llm talks to a Gemini-compatible generateContent endpoint. Every
// failure is turned into a short human-readable reply so chat never fails
// because the remote model is unavailable.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/netx"
)

// Replies used when no answer comes from the model.
const (
	ReplyNotConfigured  = "Sorry, the assistant is not configured."
	ReplyTimeout        = "Sorry, the request timed out. Please try again."
	ReplyConnectionErr  = "Sorry, the assistant could not be reached (connection error)."
	ReplyNoCandidates   = "Sorry, I could not generate a reply to this question."
	replyAPIErrorFormat = "Sorry, the assistant returned an API error %d."
)

const persona = "You are a helpful, concise assistant for a personal task list. Answer briefly and clearly."

// Exchange is one earlier question and answer used as context.
type Exchange struct {
	Message  string
	Response string
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	model      string
	apiKey     string
	timeout    time.Duration
	log        logging.Logger
}

func NewClient(baseURL, model, apiKey string, timeout time.Duration, log logging.Logger) *Client {
	return &Client{
		httpClient: &http.Client{},
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		apiKey:     apiKey,
		timeout:    timeout,
		log:        log,
	}
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// BuildPrompt renders the persona, the history (newest first, as given)
// and the current question into a single prompt.
func BuildPrompt(history []Exchange, question string) string {
	var b strings.Builder
	b.WriteString(persona)
	if len(history) > 0 {
		b.WriteString("\n\nRecent conversation (newest first):")
		for _, h := range history {
			b.WriteString("\nUser: ")
			b.WriteString(h.Message)
			b.WriteString("\nAssistant: ")
			b.WriteString(h.Response)
		}
	}
	b.WriteString("\n\nCurrent question: ")
	b.WriteString(question)
	return b.String()
}

func (c *Client) endpoint() string {
	return fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, url.PathEscape(c.model), url.QueryEscape(c.apiKey))
}

// Reply asks the model and always returns text to show the user.
func (c *Client) Reply(ctx context.Context, history []Exchange, question string) string {
	if c.apiKey == "" {
		return ReplyNotConfigured
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req := generateRequest{Contents: []content{{Parts: []part{{Text: BuildPrompt(history, question)}}}}}
	var resp generateResponse

	err := netx.PostJSON(ctx, c.httpClient, c.endpoint(), req, &resp)
	if err != nil {
		var se *netx.StatusError
		var ne net.Error
		switch {
		case errors.As(err, &se):
			c.log.Warn(ctx, "completion api error", "status", se.StatusCode, "body", se.Body)
			return fmt.Sprintf(replyAPIErrorFormat, se.StatusCode)
		case errors.Is(err, context.DeadlineExceeded), errors.As(err, &ne) && ne.Timeout():
			c.log.Warn(ctx, "completion api timeout", "timeout", c.timeout)
			return ReplyTimeout
		default:
			c.log.Warn(ctx, "completion api unreachable", "error", redact(err.Error(), c.apiKey))
			return ReplyConnectionErr
		}
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return ReplyNoCandidates
	}
	return resp.Candidates[0].Content.Parts[0].Text
}

// redact keeps the API key, which travels in the query string, out of logs.
func redact(s, key string) string {
	if key == "" {
		return s
	}
	s = strings.ReplaceAll(s, url.QueryEscape(key), "REDACTED")
	return strings.ReplaceAll(s, key, "REDACTED")
}
