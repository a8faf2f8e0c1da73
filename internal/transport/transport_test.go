package transport

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestPostSuccess(t *testing.T) {
	var gotAuth, gotContentType, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		buf, _ := io.ReadAll(r.Body)
		gotBody = string(buf)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	tr := NewHTTPTransport(5 * time.Second)
	headers := map[string]string{
		"Authorization": "Bearer tok",
		"Content-Type":  "application/json",
	}
	resp, err := tr.Post(context.Background(), server.URL, headers, []byte(`{"in":1}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d", resp.StatusCode)
	}
	if string(resp.Body) != `{"ok":true}` {
		t.Errorf("body: got %q", resp.Body)
	}
	if gotAuth != "Bearer tok" {
		t.Errorf("Authorization header: got %q", gotAuth)
	}
	if gotContentType != "application/json" {
		t.Errorf("Content-Type header: got %q", gotContentType)
	}
	if gotBody != `{"in":1}` {
		t.Errorf("request body: got %q", gotBody)
	}
}

func TestPostNon2xxIsClassified(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte(`{"error":"nope"}`))
	}))
	defer server.Close()

	tr := NewHTTPTransport(5 * time.Second)
	_, err := tr.Post(context.Background(), server.URL, nil, []byte(`{}`))
	if err == nil {
		t.Fatal("expected error for non-2xx status")
	}

	var terr *Error
	if !errors.As(err, &terr) {
		t.Fatalf("expected *transport.Error, got %T", err)
	}
	if terr.Kind != KindHTTPStatus {
		t.Errorf("kind: got %v", terr.Kind)
	}
	if terr.StatusCode != http.StatusTeapot {
		t.Errorf("status: got %d", terr.StatusCode)
	}
	if string(terr.Body) != `{"error":"nope"}` {
		t.Errorf("body detail: got %q", terr.Body)
	}
}

func TestPostTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer server.Close()

	tr := NewHTTPTransport(50 * time.Millisecond)
	_, err := tr.Post(context.Background(), server.URL, nil, []byte(`{}`))
	if err == nil {
		t.Fatal("expected timeout error")
	}

	var terr *Error
	if !errors.As(err, &terr) {
		t.Fatalf("expected *transport.Error, got %T", err)
	}
	if terr.Kind != KindTimeout {
		t.Errorf("kind: got %v, want KindTimeout", terr.Kind)
	}
}

func TestPostNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	tr := NewHTTPTransport(time.Second)
	_, err := tr.Post(context.Background(), url, nil, []byte(`{}`))
	if err == nil {
		t.Fatal("expected network error for closed server")
	}

	var terr *Error
	if !errors.As(err, &terr) {
		t.Fatalf("expected *transport.Error, got %T", err)
	}
	if terr.Kind != KindNetwork {
		t.Errorf("kind: got %v, want KindNetwork", terr.Kind)
	}
}

func TestPostContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	tr := NewHTTPTransport(5 * time.Second)
	_, err := tr.Post(ctx, server.URL, nil, []byte(`{}`))
	if err == nil {
		t.Fatal("expected error from context deadline")
	}

	var terr *Error
	if !errors.As(err, &terr) {
		t.Fatalf("expected *transport.Error, got %T", err)
	}
	if terr.Kind != KindTimeout {
		t.Errorf("kind: got %v, want KindTimeout", terr.Kind)
	}
}
