package observability_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/tailored-agentic-units/settingsbus/observability"
)

func TestLevel_String(t *testing.T) {
	tests := []struct {
		name  string
		level observability.Level
		want  string
	}{
		{name: "trace range", level: 1, want: "TRACE"},
		{name: "verbose maps to DEBUG", level: observability.LevelVerbose, want: "DEBUG"},
		{name: "info maps to INFO", level: observability.LevelInfo, want: "INFO"},
		{name: "warning maps to WARN", level: observability.LevelWarning, want: "WARN"},
		{name: "error maps to ERROR", level: observability.LevelError, want: "ERROR"},
		{name: "fatal range", level: 21, want: "FATAL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.level.String(); got != tt.want {
				t.Errorf("Level(%d).String() = %q, want %q", tt.level, got, tt.want)
			}
		})
	}
}

func TestLevel_SlogLevel(t *testing.T) {
	tests := []struct {
		level observability.Level
		want  slog.Level
	}{
		{level: observability.LevelVerbose, want: slog.LevelDebug},
		{level: observability.LevelInfo, want: slog.LevelInfo},
		{level: observability.LevelWarning, want: slog.LevelWarn},
		{level: observability.LevelError, want: slog.LevelError},
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			if got := tt.level.SlogLevel(); got != tt.want {
				t.Errorf("Level(%d).SlogLevel() = %v, want %v", tt.level, got, tt.want)
			}
		})
	}
}

func TestNoOpObserver(t *testing.T) {
	obs := observability.NoOpObserver{}
	obs.OnEvent(context.Background(), observability.Event{
		Type:      "hub.envelope.sent",
		Level:     observability.LevelInfo,
		Timestamp: time.Now(),
		Source:    "hub",
		Data:      map[string]any{"envelope_id": "e1"},
	})
}

func TestMultiObserver(t *testing.T) {
	rec1 := observability.NewRecorder()
	rec2 := observability.NewRecorder()

	multi := observability.NewMultiObserver(nil, rec1, nil, rec2)
	multi.OnEvent(context.Background(), observability.Event{
		Type:  "hub.envelope.replied",
		Level: observability.LevelInfo,
	})

	for i, rec := range []*observability.Recorder{rec1, rec2} {
		events := rec.Events()
		if len(events) != 1 {
			t.Fatalf("observer %d received %d events, want 1", i, len(events))
		}
		if events[0].Type != "hub.envelope.replied" {
			t.Errorf("observer %d event type = %q, want %q", i, events[0].Type, "hub.envelope.replied")
		}
	}
}

func TestSlogObserver_LevelFiltering(t *testing.T) {
	tests := []struct {
		name      string
		level     observability.Level
		minLevel  slog.Level
		expectLog bool
	}{
		{name: "verbose at debug handler", level: observability.LevelVerbose, minLevel: slog.LevelDebug, expectLog: true},
		{name: "verbose at info handler", level: observability.LevelVerbose, minLevel: slog.LevelInfo, expectLog: false},
		{name: "info at warn handler", level: observability.LevelInfo, minLevel: slog.LevelWarn, expectLog: false},
		{name: "warning at warn handler", level: observability.LevelWarning, minLevel: slog.LevelWarn, expectLog: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: tt.minLevel}))

			observability.NewSlogObserver(logger).OnEvent(context.Background(), observability.Event{
				Type:   "hub.envelope.sent",
				Level:  tt.level,
				Source: "hub",
			})

			if hasOutput := buf.Len() > 0; hasOutput != tt.expectLog {
				t.Errorf("log output = %v, want %v (buf: %q)", hasOutput, tt.expectLog, buf.String())
			}
		})
	}
}

func TestSlogObserver_Attributes(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	observability.NewSlogObserver(logger).OnEvent(context.Background(), observability.Event{
		Type:   "hub.envelope.undeliverable",
		Level:  observability.LevelInfo,
		Source: "hub",
		Data: map[string]any{
			"path_len":    2,
			"envelope_id": "e1",
		},
	})

	output := buf.String()
	for _, want := range []string{"hub.envelope.undeliverable", "source=hub", "path_len=2", "envelope_id=e1"} {
		if !strings.Contains(output, want) {
			t.Errorf("output %q should contain %q", output, want)
		}
	}
	if strings.Index(output, "envelope_id=") > strings.Index(output, "path_len=") {
		t.Errorf("attributes should be sorted by key, got %q", output)
	}
}

func TestRegistry(t *testing.T) {
	tests := []struct {
		key     string
		wantErr bool
	}{
		{key: "noop"},
		{key: "slog"},
		{key: "nonexistent", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			obs, err := observability.GetObserver(tt.key)
			if (err != nil) != tt.wantErr {
				t.Errorf("GetObserver(%q) error = %v, wantErr %v", tt.key, err, tt.wantErr)
			}
			if !tt.wantErr && obs == nil {
				t.Errorf("GetObserver(%q) returned nil observer", tt.key)
			}
		})
	}
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	rec := observability.NewRecorder()
	observability.RegisterObserver("test-recorder", rec)

	obs, err := observability.GetObserver("test-recorder")
	if err != nil {
		t.Fatalf("GetObserver() error = %v", err)
	}
	obs.OnEvent(context.Background(), observability.Event{Type: "hub.messenger.created"})

	if got := rec.Count("hub.messenger.created"); got != 1 {
		t.Errorf("Count() = %d, want 1", got)
	}

	names := observability.ObserverNames()
	found := false
	for _, name := range names {
		if name == "test-recorder" {
			found = true
		}
	}
	if !found {
		t.Errorf("ObserverNames() = %v, should contain %q", names, "test-recorder")
	}
}

func TestRecorder_Concurrent(t *testing.T) {
	rec := observability.NewRecorder()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec.OnEvent(context.Background(), observability.Event{Type: "hub.envelope.sent"})
		}()
	}
	wg.Wait()

	if got := len(rec.Events()); got != 50 {
		t.Errorf("len(Events()) = %d, want 50", got)
	}

	rec.Reset()
	if got := len(rec.Events()); got != 0 {
		t.Errorf("len(Events()) after Reset = %d, want 0", got)
	}
}
