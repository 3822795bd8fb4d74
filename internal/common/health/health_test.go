package health

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestCheck(t *testing.T) {
	Init("1.2.3")

	resp := Check(context.Background(), map[string]Checker{
		"valkey": func(context.Context) error { return nil },
	})
	if resp.Status != "ok" || resp.Components["valkey"] != "ok" {
		t.Errorf("unexpected: %+v", resp)
	}
	if resp.Version != "1.2.3" {
		t.Errorf("version = %s", resp.Version)
	}

	resp = Check(context.Background(), map[string]Checker{
		"db": func(context.Context) error { return errors.New("refused") },
	})
	if resp.Status != "degraded" || resp.Components["db"] != "down: refused" {
		t.Errorf("unexpected: %+v", resp)
	}
}

func TestFormatDuration(t *testing.T) {
	cases := map[time.Duration]string{
		5 * time.Second:               "5s",
		2*time.Minute + 3*time.Second: "2m3s",
		time.Hour + time.Minute:       "1h1m0s",
	}
	for in, want := range cases {
		if got := formatDuration(in); got != want {
			t.Errorf("formatDuration(%v) = %s, want %s", in, got, want)
		}
	}
}
