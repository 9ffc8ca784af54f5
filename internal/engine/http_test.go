package engine

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hyperjump/kotae/internal/models"
)

func testTable() *models.Table {
	return &models.Table{
		Filename: "people.csv",
		Columns:  []string{"name", "age"},
		Rows:     [][]string{{"alice", "30"}, {"bob", "25"}, {"carol", "41"}},
	}
}

func TestHTTPEngine_Answer(t *testing.T) {
	var got answerRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/answer" || r.Method != http.MethodPost {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(answerResponse{Response: "there are 3 rows"})
	}))
	defer srv.Close()

	e := NewHTTPEngine(srv.URL, 5*time.Second, 2)
	history := []models.ChatEntry{{Message: "hi", Response: "hello"}}
	answer, err := e.Answer(context.Background(), "how many rows?", testTable(), history)
	if err != nil {
		t.Fatal(err)
	}
	if answer != "there are 3 rows" {
		t.Errorf("answer: %q", answer)
	}
	if got.Question != "how many rows?" || got.Filename != "people.csv" {
		t.Errorf("request payload: %+v", got)
	}
	if len(got.Rows) != 2 {
		t.Errorf("rows should be capped at sampleRows: got %d", len(got.Rows))
	}
	if len(got.History) != 1 || got.History[0].Message != "hi" {
		t.Errorf("history payload: %+v", got.History)
	}
}

func TestHTTPEngine_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	e := NewHTTPEngine(srv.URL, 5*time.Second, 10)
	if _, err := e.Answer(context.Background(), "q", testTable(), nil); err == nil {
		t.Error("expected error for non-200 response")
	}
}

func TestHTTPEngine_ErrorField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(answerResponse{Error: "no model loaded"})
	}))
	defer srv.Close()

	e := NewHTTPEngine(srv.URL, 5*time.Second, 10)
	if _, err := e.Answer(context.Background(), "q", testTable(), nil); err == nil {
		t.Error("expected error from engine error field")
	}
}

func TestHTTPEngine_Deadline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Drain the body so the server watches the connection and sees the
		// client cancel; otherwise the handler never unblocks and Close hangs.
		_, _ = io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	}))
	defer srv.Close()

	e := NewHTTPEngine(srv.URL, 50*time.Millisecond, 10)
	start := time.Now()
	_, err := e.Answer(context.Background(), "q", testTable(), nil)
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if time.Since(start) > 2*time.Second {
		t.Error("deadline not enforced")
	}
}
