package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestTestNotifyWithoutTopic(t *testing.T) {
	env := setupCLITestEnv(t)
	out, err := env.run(t, "test-notify")
	if err != nil {
		t.Fatalf("test-notify: %v", err)
	}
	if !strings.Contains(out, "not configured") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestTestNotifyPostsToTopic(t *testing.T) {
	var title string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		title = r.Header.Get("Title")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	env := setupCLITestEnv(t)
	env.cfg.Notifications.NtfyTopic = server.URL + "/tinals"
	writeTestConfig(t, env.configPath, env.cfg)

	out, err := env.run(t, "test-notify")
	if err != nil {
		t.Fatalf("test-notify: %v", err)
	}
	if !strings.Contains(out, "Test notification sent") {
		t.Fatalf("unexpected output %q", out)
	}
	if title != "TINALS assets - Test" {
		t.Fatalf("unexpected title %q", title)
	}
}
