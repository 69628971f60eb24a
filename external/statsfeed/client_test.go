package statsfeed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/prop-insights/internal/platform/resilience"
)

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(ClientConfig{
		BaseURL: server.URL,
		APIKey:  "secret-key",
		Retry:   resilience.RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond},
	})
}

func TestClient_FetchSchedule(t *testing.T) {
	t.Parallel()

	var gotPath, gotQuery string
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`{
			"events": [
				{"id": "g-1", "season": "2026", "starts_at": "2026-01-15T19:30:00Z", "home": "bos", "away": "nyk"},
				{"id": "", "home": "LAL", "away": "DEN"},
				{"id": "g-2", "home": "LAL", "away": ""}
			]
		}`))
	}))

	date := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	games, raw, err := client.FetchSchedule(context.Background(), "NBA", date)
	if err != nil {
		t.Fatalf("fetch schedule: %v", err)
	}

	if gotPath != "/nba/schedule" {
		t.Fatalf("unexpected path: %s", gotPath)
	}
	if !strings.Contains(gotQuery, "date=20260115") {
		t.Fatalf("expected date in query, got %s", gotQuery)
	}
	if !strings.Contains(gotQuery, "api_key=secret-key") {
		t.Fatalf("expected api key in query, got %s", gotQuery)
	}

	// Events missing an id or a side are dropped.
	if len(games) != 1 {
		t.Fatalf("expected 1 valid game, got %d", len(games))
	}
	g := games[0]
	if g.ExternalRef != "g-1" || g.HomeAbbr != "BOS" || g.AwayAbbr != "NYK" || g.Season != "2026" {
		t.Fatalf("unexpected game: %+v", g)
	}
	if !g.StartsAt.Equal(time.Date(2026, 1, 15, 19, 30, 0, 0, time.UTC)) {
		t.Fatalf("unexpected start time: %v", g.StartsAt)
	}
	if len(raw) == 0 {
		t.Fatal("expected verbatim body returned")
	}
}

func TestClient_FetchSchedule_EmptySlate(t *testing.T) {
	t.Parallel()

	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"events": []}`))
	}))

	games, _, err := client.FetchSchedule(context.Background(), "nhl", time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("empty slate must not be an error: %v", err)
	}
	if len(games) != 0 {
		t.Fatalf("expected no games, got %d", len(games))
	}
}

func TestClient_FetchBoxScore_RetriesServerErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"players": []}`))
	}))

	raw, err := client.FetchBoxScore(context.Background(), "nba", "g-42")
	if err != nil {
		t.Fatalf("expected success after retries: %v", err)
	}
	if string(raw) != `{"players": []}` {
		t.Fatalf("unexpected body: %s", raw)
	}
	if got := calls.Load(); got != 3 {
		t.Fatalf("expected 3 attempts, got %d", got)
	}
}

func TestClient_FetchBoxScore_DoesNotRetryNotFound(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))

	_, err := client.FetchBoxScore(context.Background(), "nba", "missing")
	if err == nil {
		t.Fatal("expected error for 404")
	}
	if IsTransient(err) {
		t.Fatalf("404 must not be transient: %v", err)
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("expected a single attempt, got %d", got)
	}
}

func TestClient_FetchBoxScore_RateLimitIsTransient(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))

	_, err := client.FetchBoxScore(context.Background(), "nba", "g-1")
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if !IsTransient(err) {
		t.Fatalf("429 must be transient: %v", err)
	}
	if got := calls.Load(); got != 3 {
		t.Fatalf("expected all 3 attempts, got %d", got)
	}
}

func TestClient_FetchBoxScore_EscapesGameRef(t *testing.T) {
	t.Parallel()

	var gotPath string
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		_, _ = w.Write([]byte(`{}`))
	}))

	if _, err := client.FetchBoxScore(context.Background(), "nba", "g/1 a"); err != nil {
		t.Fatalf("fetch boxscore: %v", err)
	}
	if gotPath != "/nba/boxscore/g%2F1%20a" {
		t.Fatalf("unexpected path: %s", gotPath)
	}
}

func TestClient_InputValidation(t *testing.T) {
	t.Parallel()

	client := NewClient(ClientConfig{})

	if _, _, err := client.FetchSchedule(context.Background(), "", time.Now()); err == nil {
		t.Fatal("expected error for empty league code")
	}
	if _, _, err := client.FetchSchedule(context.Background(), "nba", time.Time{}); err == nil {
		t.Fatal("expected error for zero date")
	}
	if _, err := client.FetchBoxScore(context.Background(), "nba", ""); err == nil {
		t.Fatal("expected error for empty game ref")
	}
}

func TestSanitizeSensitiveText(t *testing.T) {
	t.Parallel()

	in := `Get "https://api.example.com/nba/schedule?api_key=secret-key&date=20260115": dial tcp: timeout`
	out := sanitizeSensitiveText(in, "secret-key")
	if strings.Contains(out, "secret-key") {
		t.Fatalf("api key leaked: %s", out)
	}
	if !strings.Contains(out, "api_key=REDACTED") {
		t.Fatalf("expected redaction marker: %s", out)
	}
}

func TestRedactAPIURL(t *testing.T) {
	t.Parallel()

	out := redactAPIURL("https://api.example.com/nba/schedule?api_key=secret&date=20260115")
	if strings.Contains(out, "secret") {
		t.Fatalf("api key leaked: %s", out)
	}
}
