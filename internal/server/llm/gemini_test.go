package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt([]Exchange{{Message: "q2", Response: "a2"}, {Message: "q1", Response: "a1"}}, "now?")

	assert.True(t, strings.HasPrefix(p, persona))
	assert.Less(t, strings.Index(p, "User: q2"), strings.Index(p, "User: q1"))
	assert.True(t, strings.HasSuffix(p, "Current question: now?"))

	assert.NotContains(t, BuildPrompt(nil, "hi"), "Recent conversation")
}

func TestReply_Success(t *testing.T) {
	var got generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/test-model:generateContent", r.URL.Path)
		assert.Equal(t, "k123", r.URL.Query().Get("key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"hello there"}]}}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", "test-model", "k123", time.Second, logging.Nop{})
	reply := c.Reply(context.Background(), nil, "hi")

	assert.Equal(t, "hello there", reply)
	require.Len(t, got.Contents, 1)
	assert.Contains(t, got.Contents[0].Parts[0].Text, "Current question: hi")
}

func TestReply_NotConfigured(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", "m", "", time.Second, logging.Nop{})
	assert.Equal(t, ReplyNotConfigured, c.Reply(context.Background(), nil, "hi"))
}

func TestReply_NoCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "m", "k", time.Second, logging.Nop{})
	assert.Equal(t, ReplyNoCandidates, c.Reply(context.Background(), nil, "hi"))
}

func TestReply_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "m", "k", time.Second, logging.Nop{})
	assert.Equal(t, "Sorry, the assistant returned an API error 429.", c.Reply(context.Background(), nil, "hi"))
}

func TestReply_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := NewClient(srv.URL, "m", "k", 50*time.Millisecond, logging.Nop{})
	assert.Equal(t, ReplyTimeout, c.Reply(context.Background(), nil, "hi"))
}

func TestReply_ConnectionError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := srv.URL
	srv.Close()

	c := NewClient(addr, "m", "k", time.Second, logging.Nop{})
	assert.Equal(t, ReplyConnectionErr, c.Reply(context.Background(), nil, "hi"))
}

func TestRedact(t *testing.T) {
	assert.Equal(t, "GET x?key=REDACTED", redact("GET x?key=s3cr3t", "s3cr3t"))
	assert.Equal(t, "unchanged", redact("unchanged", ""))
}
