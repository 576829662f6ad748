package wiki

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
)

func TestUploadMultipart(t *testing.T) {
	var gotContent string
	client := loginAndServe(t, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("not a multipart request: %v", err)
			return
		}
		if r.FormValue("action") != "upload" || r.FormValue("filename") != "diagram.png" {
			t.Errorf("unexpected fields: action=%q filename=%q", r.FormValue("action"), r.FormValue("filename"))
		}
		if r.FormValue("token") != "xyz" {
			t.Errorf("token = %q, want xyz", r.FormValue("token"))
		}
		if r.FormValue("ignorewarnings") != "1" {
			t.Error("ignorewarnings missing")
		}
		f, _, err := r.FormFile("file")
		if err != nil {
			t.Errorf("no file part: %v", err)
			return
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		gotContent = string(data)
		writeJSON(t, w, map[string]any{"upload": map[string]any{"result": "Success"}})
	})

	results, err := client.Upload(context.Background(), []UploadItem{
		{Filename: "diagram.png", Reader: strings.NewReader("png bytes")},
	}, "initial upload")
	if err != nil {
		t.Fatal(err)
	}
	if results.Failed() != 0 {
		t.Fatalf("upload failed: %+v", results)
	}
	if gotContent != "png bytes" {
		t.Errorf("file content = %q", gotContent)
	}
}

func TestUploadDuplicateFilenamesSendBothBodies(t *testing.T) {
	var mu sync.Mutex
	var bodies []string
	client := loginAndServe(t, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("not a multipart request: %v", err)
			return
		}
		f, _, err := r.FormFile("file")
		if err != nil {
			t.Errorf("no file part: %v", err)
			return
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		mu.Lock()
		bodies = append(bodies, string(data))
		mu.Unlock()
		writeJSON(t, w, map[string]any{"upload": map[string]any{"result": "Success"}})
	})

	results, err := client.Upload(context.Background(), []UploadItem{
		{Filename: "photo.jpg", Reader: strings.NewReader("first bytes")},
		{Filename: "photo.jpg", Reader: strings.NewReader("second bytes")},
	}, "")
	if err != nil {
		t.Fatal(err)
	}
	if results.Failed() != 0 {
		t.Fatalf("upload failed: %+v", results)
	}
	if len(bodies) != 2 {
		t.Fatalf("got %d uploads, want 2", len(bodies))
	}
	if bodies[0] != "first bytes" || bodies[1] != "second bytes" {
		t.Errorf("same-named items must each send their own content, got %q", bodies)
	}
}

func TestUploadRequiresLogin(t *testing.T) {
	server := mockWikiServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request should reach the server")
	})
	defer server.Close()

	client := createMockClient(t, server)
	results, err := client.Upload(context.Background(), []UploadItem{
		{Filename: "diagram.png", Reader: strings.NewReader("x")},
	}, "")
	if err != nil {
		t.Fatal(err)
	}
	if results.Failed() != 1 {
		t.Fatalf("expected the single item to fail, got %+v", results)
	}
	if results[0].Err == nil || !strings.Contains(results[0].Err.Error(), "not authenticated") {
		t.Errorf("expected authentication failure, got %v", results[0].Err)
	}
}

func TestUploadItemFromPath(t *testing.T) {
	item := UploadItemFromPath("/tmp/assets/logo.svg", strings.NewReader(""))
	if item.Filename != "logo.svg" {
		t.Errorf("Filename = %q, want logo.svg", item.Filename)
	}
}
