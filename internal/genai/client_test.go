package genai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/theirongolddev/pmx/internal/model"
)

func reply(text string) string {
	b, _ := json.Marshal(generateResponse{Candidates: []candidate{{Content: modelText(text)}}})
	return string(b)
}

// newTestClient returns a client pointed at srv that records retry delays
// instead of sleeping.
func newTestClient(srv *httptest.Server) (*Client, *[]time.Duration) {
	var delays []time.Duration
	c := NewClient("test-key", WithBaseURL(srv.URL))
	c.sleep = func(_ context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	}
	return c, &delays
}

func TestNewClientEmptyKey(t *testing.T) {
	c := NewClient("  ")
	if c != nil {
		t.Fatal("NewClient(blank) != nil")
	}
	if _, err := c.Generate(context.Background(), "hi"); !errors.Is(err, ErrNoAPIKey) {
		t.Fatalf("nil client err = %v, want ErrNoAPIKey", err)
	}
	if _, err := c.GenerateCharter(context.Background(), Brief{}); !errors.Is(err, ErrNoAPIKey) {
		t.Fatalf("nil client GenerateCharter err = %v, want ErrNoAPIKey", err)
	}
}

func TestGenerateSendsKeyAndModel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1beta/models/gemini-2.5-flash:generateContent" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("x-goog-api-key"); got != "test-key" {
			t.Errorf("api key header = %q, want test-key", got)
		}
		_, _ = io.WriteString(w, reply("hello"))
	}))
	defer srv.Close()

	c, _ := newTestClient(srv)
	got, err := c.Generate(context.Background(), "hi")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "hello" {
		t.Fatalf("Generate = %q, want hello", got)
	}
}

func TestRetryOn503ThenSucceed(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = io.WriteString(w, reply("ok"))
	}))
	defer srv.Close()

	c, delays := newTestClient(srv)
	got, err := c.Generate(context.Background(), "hi")
	if err != nil || got != "ok" {
		t.Fatalf("Generate = %q, %v, want ok, nil", got, err)
	}
	want := []time.Duration{time.Second, 2 * time.Second}
	if len(*delays) != 2 || (*delays)[0] != want[0] || (*delays)[1] != want[1] {
		t.Fatalf("delays = %v, want %v", *delays, want)
	}
}

func TestRetryGivesUpAfterThreeAttempts(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c, delays := newTestClient(srv)
	_, err := c.Generate(context.Background(), "hi")
	if !errors.Is(err, ErrOverloaded) {
		t.Fatalf("err = %v, want ErrOverloaded", err)
	}
	if n := calls.Load(); n != 3 {
		t.Fatalf("calls = %d, want 3", n)
	}
	if len(*delays) != 2 {
		t.Fatalf("delays = %v, want two waits", *delays)
	}
}

func TestStatusErrors(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusForbidden, ErrUnauthorized},
		{http.StatusTooManyRequests, ErrRateLimited},
	}
	for _, tt := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(tt.status)
		}))
		c, delays := newTestClient(srv)
		_, err := c.Generate(context.Background(), "hi")
		srv.Close()
		if !errors.Is(err, tt.want) {
			t.Fatalf("status %d: err = %v, want %v", tt.status, err, tt.want)
		}
		if len(*delays) != 0 {
			t.Fatalf("status %d retried: %v", tt.status, *delays)
		}
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":{"code":400,"message":"bad model"}}`)
	}))
	defer srv.Close()
	c, _ := newTestClient(srv)
	_, err := c.Generate(context.Background(), "hi")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != 400 || apiErr.Message != "bad model" {
		t.Fatalf("err = %v, want APIError 400 bad model", err)
	}
}

func TestChatSendsHistoryAndSystemPrompt(t *testing.T) {
	reqs := make(chan generateRequest, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		reqs <- req
		_, _ = io.WriteString(w, reply("Use a RACI chart."))
	}))
	defer srv.Close()

	c, _ := newTestClient(srv)
	if _, err := c.Chat(context.Background(), "", nil); !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("Chat(empty) err = %v, want ErrEmptyMessage", err)
	}
	history := []model.ChatMessage{
		{Role: "user", Content: "who owns what?"},
		{Role: "assistant", Content: "depends"},
	}
	out, err := c.Chat(context.Background(), "be specific", history)
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if out != "Use a RACI chart." {
		t.Fatalf("Chat = %q", out)
	}
	got := <-reqs
	if got.SystemInstruction == nil || !strings.Contains(got.SystemInstruction.Parts[0].Text, "PMX Assistant") {
		t.Fatalf("system instruction missing: %+v", got.SystemInstruction)
	}
	// primer pair + 2 history + new message
	if len(got.Contents) != 5 {
		t.Fatalf("len(contents) = %d, want 5", len(got.Contents))
	}
	if got.Contents[3].Role != "model" {
		t.Fatalf("assistant history role = %q, want model", got.Contents[3].Role)
	}
	if last := got.Contents[4]; last.Role != "user" || last.Parts[0].Text != "be specific" {
		t.Fatalf("last content = %+v", last)
	}
}

func TestExtractProject(t *testing.T) {
	reqs := make(chan generateRequest, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		reqs <- req
		_, _ = io.WriteString(w, reply("```json\n{\"projectName\":\"Depot\",\"budget\":\"$1500000\",\"duration\":24,\"projectType\":\"Construction\"}\n```"))
	}))
	defer srv.Close()

	c, _ := newTestClient(srv)
	e, err := c.ExtractFile(context.Background(), []byte("%PDF-1.4"), "")
	if err != nil {
		t.Fatalf("ExtractFile: %v", err)
	}
	want := Extracted{ProjectName: "Depot", Budget: "1,500,000", Duration: "24", ProjectType: "Construction"}
	if e != want {
		t.Fatalf("Extracted = %+v, want %+v", e, want)
	}
	got := <-reqs
	parts := got.Contents[0].Parts
	if len(parts) != 2 || parts[1].InlineData == nil || parts[1].InlineData.MimeType != "application/pdf" {
		t.Fatalf("request parts = %+v, want prompt and inline pdf", parts)
	}
}

func TestGroupThousands(t *testing.T) {
	tests := map[string]string{
		"1500000":    "1,500,000",
		"$150,000":   "150,000",
		"999":        "999",
		"1000":       "1,000",
		"no numbers": "",
	}
	for in, want := range tests {
		if got := GroupThousands(in); got != want {
			t.Fatalf("GroupThousands(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestGenerateCharterFallbacks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		prompt := req.Contents[0].Parts[0].Text
		switch {
		case strings.Contains(prompt, "risk management expert"):
			_, _ = io.WriteString(w, reply("I cannot produce JSON today."))
		case strings.Contains(prompt, "Work Breakdown Structure"):
			_, _ = io.WriteString(w, reply("```json\n{\"wbs\":[{\"id\":\"1\",\"name\":\"Survey\",\"startWeek\":0,\"durationWeeks\":3,\"items\":[\"1.1 Walk site\"]}],\"tasks\":[{\"id\":1,\"title\":\"Book surveyor\"}]}\n```"))
		default:
			_, _ = io.WriteString(w, reply("# Depot Build\n\n## Project Overview"))
		}
	}))
	defer srv.Close()

	c, _ := newTestClient(srv)
	g, err := c.GenerateCharter(context.Background(), Brief{ProjectName: "Depot", Duration: 20})
	if err != nil {
		t.Fatalf("GenerateCharter: %v", err)
	}
	if !strings.HasPrefix(g.Charter, "# Depot Build") {
		t.Fatalf("Charter = %q", g.Charter)
	}
	if len(g.Risks) != 1 || g.Risks[0].ID != "R1" {
		t.Fatalf("Risks = %+v, want fallback R1", g.Risks)
	}
	if len(g.WBS) != 1 || g.WBS[0].Name != "Survey" || len(g.Tasks) != 1 || g.Tasks[0].ID != "1" {
		t.Fatalf("breakdown = %+v / %+v", g.WBS, g.Tasks)
	}
}

func TestGenerateCharterFailsOnCharterError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()
	c, _ := newTestClient(srv)
	if _, err := c.GenerateCharter(context.Background(), Brief{}); !errors.Is(err, ErrOverloaded) {
		t.Fatalf("err = %v, want ErrOverloaded", err)
	}
}

func TestBriefContext(t *testing.T) {
	ctx := Brief{ProjectName: "Depot"}.context()
	if !strings.Contains(ctx, "Project name: Depot") || !strings.Contains(ctx, "Duration (weeks): Not specified") {
		t.Fatalf("context = %q", ctx)
	}
	if !strings.Contains(breakdownPrompt(Brief{}), "fit within 12 weeks") {
		t.Fatal("breakdown prompt does not default to 12 weeks")
	}
}
