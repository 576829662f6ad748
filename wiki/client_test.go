package wiki

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"sync/atomic"
	"testing"
)

func TestNewClient(t *testing.T) {
	server := mockWikiServer(t, nil)
	defer server.Close()

	client := createMockClient(t, server)
	if client == nil {
		t.Fatal("NewClient returned nil")
	}
	if client.semaphore == nil {
		t.Error("semaphore should be initialized")
	}
	if cap(client.semaphore) != MaxConcurrentRequests {
		t.Errorf("semaphore capacity = %d, want %d", cap(client.semaphore), MaxConcurrentRequests)
	}
	if client.httpClient.Jar == nil {
		t.Error("cookie jar should be initialized")
	}
}

func TestPostWithoutTokenFailsFast(t *testing.T) {
	var hits atomic.Int64
	server := mockWikiServer(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		writeJSON(t, w, map[string]any{})
	})
	defer server.Close()

	client := createMockClient(t, server)

	for _, action := range []string{"delete", "edit", "move", "upload"} {
		params := url.Values{}
		params.Set("action", action)
		params.Set("title", "Foo")

		_, err := client.Post(context.Background(), params)
		if !errors.Is(err, ErrNotAuthenticated) {
			t.Errorf("action %s: got %v, want ErrNotAuthenticated", action, err)
		}
	}

	if n := hits.Load(); n != 0 {
		t.Errorf("no network call should be issued without a token, server saw %d", n)
	}
}

func TestPostNonMutatingNeedsNoToken(t *testing.T) {
	server := mockWikiServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.FormValue("token") != "" {
			t.Errorf("non-mutating action should not carry a token")
		}
		writeJSON(t, w, map[string]any{"purge": []any{}})
	})
	defer server.Close()

	client := createMockClient(t, server)

	params := url.Values{}
	params.Set("action", "purge")
	params.Set("titles", "Foo")
	if _, err := client.Post(context.Background(), params); err != nil {
		t.Fatalf("tokenless purge should pass through: %v", err)
	}
}

func TestRequestDecorations(t *testing.T) {
	server := mockWikiServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.FormValue("format") != "json" {
			t.Error("missing format=json")
		}
		if r.FormValue("errorformat") != "plaintext" {
			t.Error("missing errorformat=plaintext")
		}
		switch r.Method {
		case http.MethodGet:
			if r.FormValue("formatversion") != "2" {
				t.Error("GET should carry formatversion=2")
			}
		case http.MethodPost:
			if r.FormValue("formatversion") != "" {
				t.Error("POST should not carry formatversion")
			}
		}
		writeJSON(t, w, map[string]any{})
	})
	defer server.Close()

	client := createMockClient(t, server)

	get := url.Values{}
	get.Set("action", "query")
	if _, err := client.Get(context.Background(), get); err != nil {
		t.Fatal(err)
	}

	post := url.Values{}
	post.Set("action", "purge")
	if _, err := client.Post(context.Background(), post); err != nil {
		t.Fatal(err)
	}
}

func TestAPIErrorSurfacedVerbatim(t *testing.T) {
	server := mockWikiServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{
			"errors": []any{
				map[string]any{"code": "missingtitle", "text": "The page you specified doesn't exist."},
			},
		})
	})
	defer server.Close()

	client := createMockClient(t, server)

	params := url.Values{}
	params.Set("action", "query")
	_, err := client.Get(context.Background(), params)

	apiErr, ok := IsAPIError(err)
	if !ok {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if apiErr.Code != "missingtitle" {
		t.Errorf("code = %q, want missingtitle", apiErr.Code)
	}
	if apiErr.Description != "The page you specified doesn't exist." {
		t.Errorf("description not surfaced verbatim: %q", apiErr.Description)
	}
}

func TestLegacyErrorObjectSurfaced(t *testing.T) {
	server := mockWikiServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{
			"error": map[string]any{"code": "badtoken", "info": "Invalid CSRF token."},
		})
	})
	defer server.Close()

	client := createMockClient(t, server)

	params := url.Values{}
	params.Set("action", "query")
	_, err := client.Get(context.Background(), params)

	apiErr, ok := IsAPIError(err)
	if !ok {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if apiErr.Code != "badtoken" || apiErr.Description != "Invalid CSRF token." {
		t.Errorf("legacy error not surfaced: %+v", apiErr)
	}
}

func TestTransportErrorWrapped(t *testing.T) {
	server := mockWikiServer(t, nil)
	server.Close() // dead endpoint

	client := createMockClient(t, server)

	params := url.Values{}
	params.Set("action", "query")
	_, err := client.Get(context.Background(), params)

	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected *TransportError, got %T: %v", err, err)
	}
}

func TestDecodeErrorOnGarbageBody(t *testing.T) {
	server := mockWikiServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	})
	defer server.Close()

	client := createMockClient(t, server)

	params := url.Values{}
	params.Set("action", "query")
	_, err := client.Get(context.Background(), params)

	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("expected *DecodeError, got %T: %v", err, err)
	}
	if de.Summary == "" {
		t.Error("decode error should carry a body summary for diagnosis")
	}
}

func TestCancelledContextWhileWaiting(t *testing.T) {
	server := mockWikiServer(t, nil)
	defer server.Close()

	client := createMockClient(t, server)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	params := url.Values{}
	params.Set("action", "query")
	if _, err := client.Get(ctx, params); err == nil {
		t.Error("expected an error from a cancelled context")
	}
}
