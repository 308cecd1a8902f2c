package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kwlam/sitechat/internal/config"
)

func customClient(endpoint string) *Client {
	cfg := config.DefaultSettings()
	cfg.AI.Provider = config.ProviderCustom
	cfg.AI.Endpoint = endpoint
	cfg.AI.APIKey = "test-key"
	return NewClient(cfg)
}

func TestCompleteSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("Content-Type = %q", got)
		}

		var req struct {
			Model       string    `json:"model"`
			Messages    []Message `json:"messages"`
			MaxTokens   int       `json:"max_tokens"`
			Temperature float64   `json:"temperature"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if req.MaxTokens != 500 {
			t.Errorf("max_tokens = %d, want 500", req.MaxTokens)
		}
		if len(req.Messages) != 2 {
			t.Errorf("messages = %d, want 2", len(req.Messages))
		}

		fmt.Fprint(w, `{"choices":[{"message":{"content":"The shop opens at 9am."}}]}`)
	}))
	defer srv.Close()

	got, err := customClient(srv.URL).Complete(context.Background(), []Message{
		{Role: RoleSystem, Content: "You answer for the shop."},
		{Role: RoleUser, Content: "When do you open?"},
	})
	if err != nil {
		t.Fatalf("Complete() error: %v", err)
	}
	if got != "The shop opens at 9am." {
		t.Errorf("Complete() = %q", got)
	}
}

func TestCompleteAuthError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid key"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := customClient(srv.URL).Complete(context.Background(), []Message{{Role: RoleUser, Content: "hi"}})
	assertKind(t, err, ErrAuth)

	var cerr *Error
	if errors.As(err, &cerr) && cerr.Status != http.StatusUnauthorized {
		t.Errorf("Status = %d, want 401", cerr.Status)
	}
}

func TestCompleteHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := customClient(srv.URL).Complete(context.Background(), []Message{{Role: RoleUser, Content: "hi"}})
	assertKind(t, err, ErrHTTP)
}

func TestCompleteDecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html>not json</html>")
	}))
	defer srv.Close()

	_, err := customClient(srv.URL).Complete(context.Background(), []Message{{Role: RoleUser, Content: "hi"}})
	assertKind(t, err, ErrDecode)
}

func TestCompleteNoContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"choices":[]}`)
	}))
	defer srv.Close()

	_, err := customClient(srv.URL).Complete(context.Background(), []Message{{Role: RoleUser, Content: "hi"}})
	assertKind(t, err, ErrNoContent)
}

func TestCompleteTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := customClient(srv.URL).Complete(ctx, []Message{{Role: RoleUser, Content: "hi"}})
	assertKind(t, err, ErrTimeout)
}

func TestCompleteNetworkError(t *testing.T) {
	_, err := customClient("http://127.0.0.1:1/v1/chat/completions").
		Complete(context.Background(), []Message{{Role: RoleUser, Content: "hi"}})
	assertKind(t, err, ErrNetwork)
}

func TestTestConnectionProbe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			MaxTokens   int     `json:"max_tokens"`
			Temperature float64 `json:"temperature"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		if req.MaxTokens != 50 {
			t.Errorf("probe max_tokens = %d, want 50", req.MaxTokens)
		}
		fmt.Fprint(w, `{"content":"Hello! Connection works."}`)
	}))
	defer srv.Close()

	got, err := customClient(srv.URL).TestConnection(context.Background())
	if err != nil {
		t.Fatalf("TestConnection() error: %v", err)
	}
	if got != "Hello! Connection works." {
		t.Errorf("TestConnection() = %q", got)
	}
}

func TestDefaultModelPerProvider(t *testing.T) {
	cfg := config.DefaultSettings()
	cfg.AI.Model = ""

	cfg.AI.Provider = config.ProviderOpenRouter
	if got := NewClient(cfg).model(); got != "openai/gpt-3.5-turbo" {
		t.Errorf("openrouter default model = %q", got)
	}

	cfg.AI.Provider = config.ProviderCustom
	if got := NewClient(cfg).model(); got != "gpt-3.5-turbo" {
		t.Errorf("custom default model = %q", got)
	}
}

func assertKind(t *testing.T, err error, want ErrorKind) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error")
	}
	if got := KindOf(err); got != want {
		t.Errorf("error kind = %q, want %q (err: %v)", got, want, err)
	}
}
