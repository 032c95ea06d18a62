package daemon

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/theirongolddev/pmx/internal/clock"
	"github.com/theirongolddev/pmx/internal/genai"
	"github.com/theirongolddev/pmx/internal/model"
	"github.com/theirongolddev/pmx/internal/store"
)

func newTestService(t *testing.T, llm *genai.Client) (*Service, *httptest.Server) {
	t.Helper()
	fake := clock.NewFake(time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC))
	st, err := store.OpenSQLite(filepath.Join(t.TempDir(), "pmx.db"), fake)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	s := New(Config{Owner: "local@example.com", StoreDriver: "sqlite", Clock: fake}, st, llm)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return s, srv
}

// fakeGemini answers every generateContent call with status and body.
func fakeGemini(t *testing.T, status int, text string) *genai.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		resp := map[string]any{"candidates": []any{map[string]any{
			"content": map[string]any{"role": "model", "parts": []any{map[string]any{"text": text}}},
		}}}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return genai.NewClient("k", genai.WithBaseURL(srv.URL), genai.WithBackoff(time.Millisecond))
}

func do(t *testing.T, method, url, owner, body string) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	if owner != "" {
		req.Header.Set(OwnerHeader, owner)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp, string(b)
}

func TestPublishEventRingBuffer(t *testing.T) {
	s := New(Config{EventsBuffer: 2}, nil, nil)

	s.publishEvent(Event{ID: 1})
	s.publishEvent(Event{ID: 2})
	s.publishEvent(Event{ID: 3})

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.events) != 2 {
		t.Fatalf("events len = %d, want 2", len(s.events))
	}
	if s.events[0].ID != 2 || s.events[1].ID != 3 {
		t.Fatalf("events ring contains IDs [%d, %d], want [2, 3]", s.events[0].ID, s.events[1].ID)
	}
}

func TestLLMEndpointsRejectNonPost(t *testing.T) {
	_, srv := newTestService(t, nil)
	for _, path := range []string{"/api/assistant", "/api/extract-pdf", "/api/generate-charter"} {
		resp, body := do(t, http.MethodGet, srv.URL+path, "", "")
		if resp.StatusCode != http.StatusMethodNotAllowed {
			t.Fatalf("GET %s status = %d, want 405", path, resp.StatusCode)
		}
		if got := resp.Header.Get("Allow"); got != "POST" {
			t.Fatalf("GET %s Allow = %q, want POST", path, got)
		}
		if !strings.Contains(body, "Method not allowed") {
			t.Fatalf("GET %s body = %q", path, body)
		}
	}
}

func TestLLMEndpointsWithoutKey(t *testing.T) {
	_, srv := newTestService(t, nil)
	for _, path := range []string{"/api/assistant", "/api/extract-pdf", "/api/generate-charter"} {
		resp, body := do(t, http.MethodPost, srv.URL+path, "", `{"message":"hi","fileBase64":"AAAA"}`)
		if resp.StatusCode != http.StatusInternalServerError {
			t.Fatalf("POST %s status = %d, want 500", path, resp.StatusCode)
		}
		if !strings.Contains(body, "GEMINI_API_KEY is not configured") {
			t.Fatalf("POST %s body = %q", path, body)
		}
	}
}

func TestAssistant(t *testing.T) {
	_, srv := newTestService(t, fakeGemini(t, http.StatusOK, "Track it weekly."))

	resp, body := do(t, http.MethodPost, srv.URL+"/api/assistant", "", `{"message":"  "}`)
	if resp.StatusCode != http.StatusBadRequest || !strings.Contains(body, "No message provided") {
		t.Fatalf("empty message = %d %q, want 400 No message provided", resp.StatusCode, body)
	}

	resp, body = do(t, http.MethodPost, srv.URL+"/api/assistant", "",
		`{"message":"how often?","history":[{"role":"user","content":"status reports"}]}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body %q", resp.StatusCode, body)
	}
	var out assistantResponse
	if err := json.Unmarshal([]byte(body), &out); err != nil || out.Reply != "Track it weekly." {
		t.Fatalf("reply = %+v (%v)", out, err)
	}
}

func TestExtractRequiresFile(t *testing.T) {
	_, srv := newTestService(t, fakeGemini(t, http.StatusOK, `{"projectName":"Depot","budget":"1500000"}`))

	resp, body := do(t, http.MethodPost, srv.URL+"/api/extract-pdf", "", `{}`)
	if resp.StatusCode != http.StatusBadRequest || !strings.Contains(body, "No file data provided") {
		t.Fatalf("missing file = %d %q", resp.StatusCode, body)
	}

	resp, body = do(t, http.MethodPost, srv.URL+"/api/extract-pdf", "", `{"fileBase64":"JVBERi0="}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body %q", resp.StatusCode, body)
	}
	var out genai.Extracted
	_ = json.Unmarshal([]byte(body), &out)
	if out.ProjectName != "Depot" || out.Budget != "1,500,000" {
		t.Fatalf("extracted = %+v", out)
	}
}

func TestOverloadedPassesThrough503(t *testing.T) {
	s, srv := newTestService(t, fakeGemini(t, http.StatusServiceUnavailable, ""))

	resp, body := do(t, http.MethodPost, srv.URL+"/api/generate-charter", "", `{"projectName":"Depot","duration":"12"}`)
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", resp.StatusCode)
	}
	if !strings.Contains(body, "temporarily overloaded") {
		t.Fatalf("body = %q", body)
	}
	if st := s.snapshotStatus(); st.LastError == "" {
		t.Fatal("LastError not recorded")
	}
}

func TestProjectCRUD(t *testing.T) {
	s, srv := newTestService(t, nil)
	base := srv.URL + "/api/projects"

	resp, body := do(t, http.MethodPost, base, "pm@example.com",
		`{"project_name":"Depot","budget":"150,000","duration":"20","kanban":{"todo":[{"id":1,"title":"survey"}]}}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d, body %q", resp.StatusCode, body)
	}
	var created model.Project
	if err := json.Unmarshal([]byte(body), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.ID == "" || created.Owner != "pm@example.com" || created.Duration != 20 {
		t.Fatalf("created = %+v", created)
	}
	if len(created.Kanban.Todo) != 1 || created.Kanban.Todo[0].ID != "1" {
		t.Fatalf("kanban = %+v", created.Kanban)
	}

	// Other owners cannot see it; the default owner is used without a header.
	if resp, _ := do(t, http.MethodGet, base+"/"+created.ID, "", ""); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("foreign get status = %d, want 404", resp.StatusCode)
	}

	resp, body = do(t, http.MethodPut, base+"/"+created.ID, "pm@example.com", `{"project_name":""}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update status = %d, body %q", resp.StatusCode, body)
	}
	var updated model.Project
	_ = json.Unmarshal([]byte(body), &updated)
	if updated.Name != "Untitled Project" || updated.ID != created.ID {
		t.Fatalf("updated = %+v", updated)
	}

	resp, body = do(t, http.MethodGet, base, "pm@example.com", "")
	var list []model.Project
	_ = json.Unmarshal([]byte(body), &list)
	if resp.StatusCode != http.StatusOK || len(list) != 1 {
		t.Fatalf("list = %d %q", resp.StatusCode, body)
	}

	if resp, _ := do(t, http.MethodDelete, base+"/"+created.ID, "pm@example.com", ""); resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", resp.StatusCode)
	}
	if resp, _ := do(t, http.MethodDelete, base+"/"+created.ID, "pm@example.com", ""); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("second delete status = %d, want 404", resp.StatusCode)
	}

	resp, body = do(t, http.MethodGet, srv.URL+"/v1/events", "", "")
	var events []Event
	_ = json.Unmarshal([]byte(body), &events)
	if resp.StatusCode != http.StatusOK || len(events) != 3 {
		t.Fatalf("events = %q, want 3", body)
	}
	want := []string{EventProjectSaved, EventProjectSaved, EventProjectDeleted}
	for i, ev := range events {
		if ev.Type != want[i] || ev.ProjectID != created.ID {
			t.Fatalf("event %d = %+v, want %s for %s", i, ev, want[i], created.ID)
		}
	}
	if st := s.snapshotStatus(); st.EventCount != 3 || st.RequestCount == 0 {
		t.Fatalf("status = %+v", st)
	}
}

func TestNotes(t *testing.T) {
	_, srv := newTestService(t, nil)

	resp, body := do(t, http.MethodGet, srv.URL+"/api/notes", "", "")
	var n model.Note
	_ = json.Unmarshal([]byte(body), &n)
	if resp.StatusCode != http.StatusOK || n.Content != "" || n.Owner != "local@example.com" {
		t.Fatalf("empty note = %d %q", resp.StatusCode, body)
	}

	do(t, http.MethodPut, srv.URL+"/api/notes", "", `{"content":"call the surveyor"}`)
	_, body = do(t, http.MethodGet, srv.URL+"/api/notes", "", "")
	_ = json.Unmarshal([]byte(body), &n)
	if n.Content != "call the surveyor" {
		t.Fatalf("note = %+v", n)
	}
}

func TestHealthAndStatus(t *testing.T) {
	_, srv := newTestService(t, nil)
	resp, body := do(t, http.MethodGet, srv.URL+"/healthz", "", "")
	if resp.StatusCode != http.StatusOK || body != "ok\n" {
		t.Fatalf("healthz = %d %q", resp.StatusCode, body)
	}
	_, body = do(t, http.MethodGet, srv.URL+"/v1/status", "", "")
	var st Status
	if err := json.Unmarshal([]byte(body), &st); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if st.StoreDriver != "sqlite" || st.LLMConfigured {
		t.Fatalf("status = %+v", st)
	}
}

func TestStreamDeliversProjectEvents(t *testing.T) {
	s, srv := newTestService(t, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/v1/stream", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	defer resp.Body.Close()

	lines := bufio.NewScanner(resp.Body)
	next := func() string {
		for lines.Scan() {
			if l := lines.Text(); strings.HasPrefix(l, "event: ") {
				return strings.TrimPrefix(l, "event: ")
			}
		}
		t.Fatalf("stream ended: %v", lines.Err())
		return ""
	}
	if got := next(); got != eventHello {
		t.Fatalf("first event = %q, want hello", got)
	}

	// The subscriber is registered before hello is written.
	s.publish(EventProjectDeleted, "o", "p1", "")
	if got := next(); got != EventProjectDeleted {
		t.Fatalf("event = %q, want %s", got, EventProjectDeleted)
	}
}
