package httpclient

import (
	"context"
	"crypto/x509"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kbukum/restdemo/errors"
	"github.com/kbukum/restdemo/logger"
	"github.com/kbukum/restdemo/version"
)

func TestClient_Do_GET(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if r.URL.Path != "/posts/1" {
			t.Errorf("expected /posts/1, got %s", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "" {
			t.Errorf("expected no Content-Type on a body-less request, got %s", ct)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"id": 1, "title": "t"})
	}))
	defer srv.Close()

	c, err := New(Config{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resp, err := c.Do(context.Background(), Request{
		Method: http.MethodGet,
		Path:   "/posts/1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
	if !resp.IsSuccess() {
		t.Error("expected IsSuccess=true")
	}
	if !strings.Contains(string(resp.Body), `"title":"t"`) {
		t.Errorf("unexpected body: %s", string(resp.Body))
	}
	if resp.URL != srv.URL+"/posts/1" {
		t.Errorf("expected URL %s/posts/1, got %s", srv.URL, resp.URL)
	}
	if resp.Method != http.MethodGet {
		t.Errorf("expected method GET, got %s", resp.Method)
	}
	if resp.Headers["Content-Type"] != "application/json" {
		t.Errorf("expected flattened Content-Type header, got %v", resp.Headers)
	}
}

func TestClient_Do_POST_JSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected Content-Type application/json, got %s", ct)
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		w.WriteHeader(201)
		json.NewEncoder(w).Encode(body)
	}))
	defer srv.Close()

	c, err := New(Config{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resp, err := c.Do(context.Background(), Request{
		Method: http.MethodPost,
		Path:   "posts",
		Body:   map[string]string{"title": "New Post !!!"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != 201 {
		t.Errorf("expected 201, got %d", resp.StatusCode)
	}
	if !strings.Contains(string(resp.Body), "New Post !!!") {
		t.Errorf("expected echoed body, got %s", string(resp.Body))
	}
}

func TestClient_Do_ReturnsNon2xxWithoutError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c, _ := New(Config{BaseURL: srv.URL})
	resp, err := c.Do(context.Background(), Request{Method: http.MethodDelete, Path: "/posts/999"})
	if err != nil {
		t.Fatalf("status classification belongs to the caller, got %v", err)
	}
	if resp.IsSuccess() {
		t.Error("expected IsSuccess=false for 404")
	}
	if !resp.IsError() {
		t.Error("expected IsError=true for 404")
	}
}

func TestClient_Do_DefaultHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Accept"); got != "application/json" {
			t.Errorf("expected default Accept header, got %q", got)
		}
		if got := r.Header.Get("X-Custom"); got != "per-request" {
			t.Errorf("expected request header to override default, got %q", got)
		}
		if got := r.Header.Get("User-Agent"); got != version.UserAgent() {
			t.Errorf("expected User-Agent %q, got %q", version.UserAgent(), got)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c, _ := New(Config{
		BaseURL: srv.URL,
		Headers: map[string]string{"Accept": "application/json", "X-Custom": "default"},
	})
	_, err := c.Do(context.Background(), Request{
		Method:  http.MethodGet,
		Path:    "/",
		Headers: map[string]string{"X-Custom": "per-request"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestClient_Do_RequestID(t *testing.T) {
	var seen []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get(HeaderRequestID))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c, _ := New(Config{BaseURL: srv.URL})

	t.Run("generated per request", func(t *testing.T) {
		seen = nil
		r1, _ := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/"})
		r2, _ := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/"})
		if len(seen) != 2 || seen[0] == "" || seen[0] == seen[1] {
			t.Fatalf("expected two distinct request ids, got %v", seen)
		}
		if r1.RequestID != seen[0] || r2.RequestID != seen[1] {
			t.Errorf("response should report the id that was sent")
		}
	})

	t.Run("taken from context", func(t *testing.T) {
		seen = nil
		ctx := logger.ContextWithRequestID(context.Background(), "req-from-ctx")
		c.Do(ctx, Request{Method: http.MethodGet, Path: "/"})
		if len(seen) != 1 || seen[0] != "req-from-ctx" {
			t.Errorf("expected context request id, got %v", seen)
		}
	})
}

func TestClient_Do_QueryParams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("userId"); got != "1" {
			t.Errorf("expected userId=1, got %q", got)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c, _ := New(Config{BaseURL: srv.URL})
	if _, err := c.Do(context.Background(), Request{
		Method: http.MethodGet,
		Path:   "/posts",
		Query:  map[string]string{"userId": "1"},
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestClient_Do_StringAndByteBodies(t *testing.T) {
	var contentTypes []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentTypes = append(contentTypes, r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c, _ := New(Config{BaseURL: srv.URL})
	c.Do(context.Background(), Request{Method: http.MethodPost, Path: "/", Body: "plain"})
	c.Do(context.Background(), Request{Method: http.MethodPost, Path: "/", Body: []byte("raw")})

	if contentTypes[0] != "text/plain" {
		t.Errorf("expected text/plain for string body, got %q", contentTypes[0])
	}
	if contentTypes[1] != "" {
		t.Errorf("expected no content type for byte body, got %q", contentTypes[1])
	}
}

func TestClient_Do_UnencodableBody(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	c, _ := New(Config{BaseURL: srv.URL})
	_, err := c.Do(context.Background(), Request{
		Method: http.MethodPost,
		Path:   "/",
		Body:   map[string]any{"ch": make(chan int)},
	})
	if err == nil {
		t.Fatal("expected error for unencodable body")
	}
	appErr, ok := errors.AsAppError(err)
	if !ok || appErr.Code != errors.ErrCodeInvalidInput {
		t.Errorf("expected INVALID_INPUT, got %v", err)
	}
	if calls.Load() != 0 {
		t.Error("no request should be sent when the body cannot be encoded")
	}
}

func TestClient_Do_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c, _ := New(Config{BaseURL: url})
	_, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/posts/1"})
	if err == nil {
		t.Fatal("expected transport error")
	}
	if !errors.IsTransport(err) {
		t.Errorf("expected TRANSPORT_ERROR, got %v", err)
	}
}

func TestClient_Do_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	c, _ := New(Config{BaseURL: srv.URL})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/"})
	if !errors.IsTransport(err) {
		t.Errorf("expected TRANSPORT_ERROR for canceled context, got %v", err)
	}
}

func TestClient_Do_FullURL_IgnoresBaseURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/absolute" {
			t.Errorf("expected /absolute, got %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	c, _ := New(Config{BaseURL: "https://unused.invalid"})
	if _, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: srv.URL + "/absolute"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestClient_Do_HTTP2OverTLS(t *testing.T) {
	srv := httptest.NewUnstartedServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"proto":"` + r.Proto + `"}`))
	}))
	srv.EnableHTTP2 = true
	srv.StartTLS()
	defer srv.Close()

	c, err := New(Config{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pool := x509.NewCertPool()
	pool.AddCert(srv.Certificate())
	c.Unwrap().Transport.(*http.Transport).TLSClientConfig.RootCAs = pool

	resp, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Proto != "HTTP/2.0" {
		t.Errorf("expected HTTP/2.0, got %s", resp.Proto)
	}
}

func TestClient_URL(t *testing.T) {
	c, _ := New(Config{BaseURL: "https://api.example.com/"})
	tests := map[string]string{
		"posts":                    "https://api.example.com/posts",
		"/posts/1":                 "https://api.example.com/posts/1",
		"http://other.example/x":   "http://other.example/x",
		"https://other.example/y/": "https://other.example/y/",
	}
	for in, want := range tests {
		if got := c.URL(in); got != want {
			t.Errorf("URL(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestClient_UnwrapAndBaseURL(t *testing.T) {
	c, _ := New(Config{BaseURL: "https://api.example.com", Timeout: 5 * time.Second})
	if c.Unwrap() == nil {
		t.Fatal("expected non-nil http client")
	}
	if c.Unwrap().Timeout != 5*time.Second {
		t.Errorf("expected timeout 5s, got %v", c.Unwrap().Timeout)
	}
	if c.BaseURL() != "https://api.example.com" {
		t.Errorf("unexpected base URL %q", c.BaseURL())
	}
	c.CloseIdleConnections()
}

func TestResponse_Helpers(t *testing.T) {
	tests := []struct {
		status    int
		isSuccess bool
		isError   bool
	}{
		{200, true, false},
		{201, true, false},
		{299, true, false},
		{300, false, false},
		{404, false, true},
		{500, false, true},
	}
	for _, tc := range tests {
		r := &Response{StatusCode: tc.status}
		if r.IsSuccess() != tc.isSuccess {
			t.Errorf("status %d: IsSuccess = %v, want %v", tc.status, r.IsSuccess(), tc.isSuccess)
		}
		if r.IsError() != tc.isError {
			t.Errorf("status %d: IsError = %v, want %v", tc.status, r.IsError(), tc.isError)
		}
	}
}
