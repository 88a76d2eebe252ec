package httputil

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestReadAllWithLimit(t *testing.T) {
	data, truncated, err := ReadAllWithLimit(strings.NewReader("hello world"), 5)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !truncated {
		t.Fatal("expected truncation")
	}
	if string(data) != "hello" {
		t.Fatalf("data = %q, want %q", data, "hello")
	}

	data, truncated, err = ReadAllWithLimit(strings.NewReader("hi"), 5)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if truncated {
		t.Fatal("unexpected truncation")
	}
	if string(data) != "hi" {
		t.Fatalf("data = %q, want %q", data, "hi")
	}
}

func TestReadAllStrict(t *testing.T) {
	if _, err := ReadAllStrict(strings.NewReader("too long"), 3); err == nil {
		t.Fatal("expected error for oversized body")
	}
	data, err := ReadAllStrict(strings.NewReader("ok"), 3)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "ok" {
		t.Fatalf("data = %q, want %q", data, "ok")
	}
}

func TestDecodeResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			w.Write([]byte(`{"id":"100"}`))
		case "/bad":
			http.Error(w, "nope", http.StatusForbidden)
		}
	}))
	defer server.Close()

	resp, err := http.Get(server.URL + "/ok")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	var out struct {
		ID string `json:"id"`
	}
	if err := DecodeResponse(resp, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.ID != "100" {
		t.Fatalf("id = %q, want %q", out.ID, "100")
	}

	resp, err = http.Get(server.URL + "/bad")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if err := DecodeResponse(resp, &out); err == nil {
		t.Fatal("expected error for 403 response")
	}
}
