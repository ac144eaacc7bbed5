package discord

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/bwmarrin/discordgo"

	"github.com/edgard/autoreply/internal/config"
	"github.com/edgard/autoreply/internal/logger"
)

// redirectTransport sends every request to the test server, keeping the path.
type redirectTransport struct {
	target *url.URL
}

func (rt redirectTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())
	out.URL.Scheme = rt.target.Scheme
	out.URL.Host = rt.target.Host
	out.Host = rt.target.Host
	return http.DefaultTransport.RoundTrip(out)
}

type recorded struct {
	method string
	path   string
	query  url.Values
	auth   string
	body   map[string]any
}

type fakeAPI struct {
	mu       sync.Mutex
	messages string
	status   int
	requests []recorded
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	var body map[string]any
	_ = json.Unmarshal(raw, &body)

	f.mu.Lock()
	f.requests = append(f.requests, recorded{
		method: r.Method,
		path:   r.URL.Path,
		query:  r.URL.Query(),
		auth:   r.Header.Get("Authorization"),
		body:   body,
	})
	status := f.status
	messages := f.messages
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
		_, _ = io.WriteString(w, `{"message": "Missing Access", "code": 50001}`)
		return
	}

	switch {
	case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/users/@me"):
		_, _ = io.WriteString(w, `{"id": "42", "username": "autoreply"}`)
	case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/messages"):
		_, _ = io.WriteString(w, messages)
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/messages"):
		_, _ = io.WriteString(w, `{"id": "555", "channel_id": "900", "content": "ok", "type": 0}`)
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"message": "Unknown"}`)
	}
}

func (f *fakeAPI) last(t *testing.T) recorded {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		t.Fatal("no request recorded")
	}
	return f.requests[len(f.requests)-1]
}

func newTestClient(t *testing.T, api *fakeAPI, token string) *Client {
	t.Helper()
	ts := httptest.NewServer(api)
	t.Cleanup(ts.Close)
	target, err := url.Parse(ts.URL)
	if err != nil {
		t.Fatal(err)
	}

	s, err := discordgo.New(token)
	if err != nil {
		t.Fatal(err)
	}
	s.Client = &http.Client{Transport: redirectTransport{target: target}}
	s.MaxRestRetries = 0
	s.ShouldRetryOnRateLimit = false
	return newClient(s, logger.Discard())
}

func TestCurrentUser(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{}
	c := newTestClient(t, api, "user-token")

	u, err := c.CurrentUser(context.Background())
	if err != nil {
		t.Fatalf("CurrentUser() error = %v", err)
	}
	if u.ID != "42" {
		t.Errorf("ID = %q, want 42", u.ID)
	}
	if got := api.last(t).auth; got != "user-token" {
		t.Errorf("Authorization = %q, want raw user token", got)
	}
}

func TestCurrentUser_Failure(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{status: http.StatusForbidden}
	c := newTestClient(t, api, "bad-token")

	_, err := c.CurrentUser(context.Background())
	if err == nil {
		t.Fatal("CurrentUser() expected error")
	}
	if !strings.Contains(err.Error(), "status 403") {
		t.Errorf("error %q does not carry the status", err)
	}
}

func TestLatestMessage(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{messages: `[
		{"id": "1213", "channel_id": "900", "content": "halo semua", "type": 0, "author": {"id": "7", "username": "budi"}},
		{"id": "1212", "channel_id": "900", "content": "older", "type": 0, "author": {"id": "8", "username": "ani"}}
	]`}
	c := newTestClient(t, api, "user-token")

	msg, err := c.LatestMessage(context.Background(), "900")
	if err != nil {
		t.Fatalf("LatestMessage() error = %v", err)
	}
	if msg == nil {
		t.Fatal("LatestMessage() returned nil")
	}
	if msg.ID != "1213" || msg.AuthorID != "7" || msg.Content != "halo semua" || msg.System {
		t.Errorf("message = %+v", msg)
	}

	req := api.last(t)
	if !strings.HasSuffix(req.path, "/channels/900/messages") {
		t.Errorf("path = %q", req.path)
	}
	if req.query.Get("limit") != "1" {
		t.Errorf("limit = %q, want 1", req.query.Get("limit"))
	}
}

func TestLatestMessage_SystemAndEmpty(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{messages: `[{"id": "10", "type": 7, "content": "", "author": {"id": "7"}}]`}
	c := newTestClient(t, api, "user-token")

	msg, err := c.LatestMessage(context.Background(), "900")
	if err != nil {
		t.Fatal(err)
	}
	if msg == nil || !msg.System || msg.Type != 7 {
		t.Errorf("join message not flagged as system: %+v", msg)
	}

	api.mu.Lock()
	api.messages = `[]`
	api.mu.Unlock()

	msg, err = c.LatestMessage(context.Background(), "900")
	if err != nil {
		t.Fatal(err)
	}
	if msg != nil {
		t.Errorf("empty channel returned %+v", msg)
	}
}

func TestSend(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		replyTo   string
		reference bool
	}{
		{name: "threaded reply", replyTo: "1213", reference: true},
		{name: "plain message", replyTo: "", reference: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			api := &fakeAPI{}
			c := newTestClient(t, api, "user-token")

			if err := c.Send(context.Background(), "900", "santai bro", tt.replyTo); err != nil {
				t.Fatalf("Send() error = %v", err)
			}

			req := api.last(t)
			if req.method != http.MethodPost || !strings.HasSuffix(req.path, "/channels/900/messages") {
				t.Errorf("request = %s %s", req.method, req.path)
			}
			if req.body["content"] != "santai bro" {
				t.Errorf("content = %v", req.body["content"])
			}

			ref, ok := req.body["message_reference"].(map[string]any)
			if ok != tt.reference {
				t.Fatalf("message_reference present = %v, want %v (body %v)", ok, tt.reference, req.body)
			}
			if tt.reference && ref["message_id"] != tt.replyTo {
				t.Errorf("message_reference.message_id = %v, want %s", ref["message_id"], tt.replyTo)
			}
		})
	}
}

func TestSend_Failure(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{status: http.StatusForbidden}
	c := newTestClient(t, api, "user-token")

	if err := c.Send(context.Background(), "900", "x", ""); err == nil {
		t.Fatal("Send() expected error")
	}
}

func TestNewClient(t *testing.T) {
	t.Parallel()

	if _, err := NewClient(config.DiscordConfig{Token: "  "}, logger.Discard()); err == nil {
		t.Error("NewClient() with empty token expected error")
	}

	c, err := NewClient(config.DiscordConfig{Token: "abc", TokenType: config.TokenTypeBot}, logger.Discard())
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	if c.session.Token != "Bot abc" {
		t.Errorf("bot token = %q, want prefixed", c.session.Token)
	}
	if c.session.MaxRestRetries != 0 || c.session.ShouldRetryOnRateLimit {
		t.Error("REST retries must be disabled")
	}

	c, err = NewClient(config.DiscordConfig{Token: "abc", TokenType: config.TokenTypeUser}, logger.Discard())
	if err != nil {
		t.Fatal(err)
	}
	if c.session.Token != "abc" {
		t.Errorf("user token = %q, want unchanged", c.session.Token)
	}
}

func TestIsSystemType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		typ      discordgo.MessageType
		expected bool
	}{
		{discordgo.MessageTypeDefault, false},
		{discordgo.MessageTypeReply, false},
		{discordgo.MessageTypeGuildMemberJoin, true},
		{discordgo.MessageTypeChannelPinnedMessage, true},
	}
	for _, tt := range tests {
		if got := IsSystemType(tt.typ); got != tt.expected {
			t.Errorf("IsSystemType(%d) = %v, want %v", tt.typ, got, tt.expected)
		}
	}
}
