package transport

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/actionhero/docsite/pkg/protocol"
)

func TestWebSocketConfig_IsOriginAllowed(t *testing.T) {
	tests := []struct {
		name          string
		wsConfig      *WebSocketConfig
		origin        string
		host          string
		expectAllowed bool
	}{
		{"same-origin allowed", &WebSocketConfig{}, "https://example.com", "example.com", true},
		{"no origin allowed", &WebSocketConfig{}, "", "example.com", true},
		{"explicit origin allowed", &WebSocketConfig{AllowedOrigins: []string{"https://allowed.com"}}, "https://allowed.com", "example.com", true},
		{"origin not in list blocked", &WebSocketConfig{AllowedOrigins: []string{"https://allowed.com"}}, "https://attacker.com", "example.com", false},
		{"wildcard allows all", &WebSocketConfig{AllowedOrigins: []string{"*"}}, "https://any-site.com", "example.com", true},
		{"insecure dev mode allows all", &WebSocketConfig{InsecureDevMode: true}, "https://attacker.com", "example.com", true},
		{"cross-origin blocked by default", &WebSocketConfig{}, "https://other-site.com", "example.com", false},
		{"garbage origin blocked", &WebSocketConfig{}, "::not a url", "example.com", false},
		{"nil config same-origin only", nil, "https://other-site.com", "example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.wsConfig.IsOriginAllowed(tt.origin, tt.host); got != tt.expectAllowed {
				t.Errorf("IsOriginAllowed(%q, %q) = %v, want %v", tt.origin, tt.host, got, tt.expectAllowed)
			}
		})
	}
}

func TestAcceptor_RejectsInvalidOrigin(t *testing.T) {
	acceptor := NewAcceptor(nil, &WebSocketConfig{AllowedOrigins: []string{"https://allowed.com"}}, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/_live/websocket", nil)
	req.Header.Set("Origin", "https://attacker.com")
	req.Header.Set("Upgrade", "websocket")
	req.Header.Set("Connection", "Upgrade")
	req.Host = "example.com"
	w := httptest.NewRecorder()

	_, err := acceptor.Accept(w, req)
	if !errors.Is(err, ErrOriginNotAllowed) {
		t.Errorf("expected ErrOriginNotAllowed, got %v", err)
	}
	if w.Code != http.StatusForbidden {
		t.Errorf("expected status 403, got %d", w.Code)
	}
}

func TestDefaultWebSocketConfig(t *testing.T) {
	config := DefaultWebSocketConfig()
	if config.InsecureDevMode {
		t.Error("InsecureDevMode should be false by default")
	}
	if config.AllowedOrigins != nil {
		t.Error("AllowedOrigins should be nil by default (same-origin only)")
	}
}

func TestConfig_Validate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	bad := DefaultConfig()
	bad.PingInterval = 0
	if err := bad.Validate(); err == nil {
		t.Error("expected error for zero ping interval")
	}
}

// echoServer accepts live connections and sends every message back.
func echoServer(t *testing.T, negotiated chan<- string) *httptest.Server {
	t.Helper()
	acceptor := NewAcceptor(nil, nil, nil, nil)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tr, err := acceptor.Accept(w, r)
		if err != nil {
			return
		}
		negotiated <- tr.Codec().Name()
		for msg := range tr.Receive() {
			if err := tr.Send(msg); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestWebSocket_RoundTripPerCodec(t *testing.T) {
	for _, codec := range []protocol.Codec{protocol.NewJSONCodec(), protocol.NewMsgPackCodec(), protocol.NewPhoenixCodec()} {
		t.Run(codec.Name(), func(t *testing.T) {
			negotiated := make(chan string, 1)
			srv := echoServer(t, negotiated)

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			url := "ws" + strings.TrimPrefix(srv.URL, "http")
			client, err := Dial(ctx, url, codec, nil, nil)
			if err != nil {
				t.Fatalf("dial: %v", err)
			}
			defer client.Close()

			select {
			case name := <-negotiated:
				if name != codec.Name() {
					t.Fatalf("server negotiated %q, want %q", name, codec.Name())
				}
			case <-ctx.Done():
				t.Fatal("server never accepted")
			}

			sent := protocol.EventMessage("1", "lv:abc", "nav", map[string]any{"section": "methods"})
			if err := client.Send(sent); err != nil {
				t.Fatalf("send: %v", err)
			}

			select {
			case got := <-client.Receive():
				if got.Event != "nav" || got.GetPayloadString("section") != "methods" || got.Ref != "1" {
					t.Errorf("unexpected echo %+v", got)
				}
			case <-ctx.Done():
				t.Fatal("no echo received")
			}
		})
	}
}

func TestWebSocket_CloseIsIdempotent(t *testing.T) {
	srv := echoServer(t, make(chan string, 1))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), nil, nil, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}

	client.Close()
	client.Close()

	if client.IsConnected() {
		t.Error("expected transport to be disconnected")
	}
	if err := client.Send(&protocol.Message{Event: "x"}); !errors.Is(err, ErrNotConnected) {
		t.Errorf("expected ErrNotConnected, got %v", err)
	}

	select {
	case <-client.Done():
	case <-ctx.Done():
		t.Fatal("Done never closed")
	}
}
