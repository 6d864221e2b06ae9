package main

import (
	"testing"
	"time"

	"github.com/atomicstack/vislevel/internal/app"
	"github.com/atomicstack/vislevel/internal/config"
)

func TestProbeTerminalsCoversStandardDescriptors(t *testing.T) {
	probes := probeTerminals()
	if len(probes) != 3 {
		t.Fatalf("expected 3 probe entries, got %d", len(probes))
	}
	expected := []string{"stdin", "stdout", "stderr"}
	for i, name := range expected {
		if probes[i].Name != name {
			t.Fatalf("expected probe %d name %q, got %q", i, name, probes[i].Name)
		}
	}
}

func TestStartupTracePayloadIncludesFlags(t *testing.T) {
	cfg := config.Config{
		App: app.Config{
			Source:     app.SourceTmux,
			SocketPath: "socket-path",
			Interval:   time.Second,
			Width:      80,
			Height:     24,
			ShowFooter: true,
		},
		Logging: config.Logging{
			FilePath: "trace.log",
			Trace:    true,
		},
		Flags: map[string]string{
			"socket": "socket-path",
			"width":  "80",
			"height": "24",
			"footer": "true",
			"source": "tmux",
		},
		Args: []string{"--socket", "socket-path"},
	}

	payload := startupTracePayload(cfg)

	flagsValue, ok := payload["flags"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected flags map in payload")
	}
	if flagsValue["socket"] != "socket-path" {
		t.Fatalf("expected socket flag %q, got %v", "socket-path", flagsValue["socket"])
	}
	if flagsValue["width"] != "80" {
		t.Fatalf("expected width 80, got %v", flagsValue["width"])
	}
	if flagsValue["height"] != "24" {
		t.Fatalf("expected height 24, got %v", flagsValue["height"])
	}
	if flagsValue["footer"] != "true" {
		t.Fatalf("expected footer flag true, got %v", flagsValue["footer"])
	}
	if flagsValue["trace"] != true {
		t.Fatalf("expected trace flag true, got %v", flagsValue["trace"])
	}
	if flagsValue["source"] != "tmux" {
		t.Fatalf("expected source flag tmux, got %v", flagsValue["source"])
	}
	if flagsValue["logFile"] != "trace.log" {
		t.Fatalf("expected log file trace.log, got %v", flagsValue["logFile"])
	}

	if _, ok := payload["terminals"].([]terminalProbe); !ok {
		t.Fatalf("expected terminal probes in payload")
	}
	startup, ok := payload["startup"].(app.Startup)
	if !ok {
		t.Fatalf("expected startup description in payload")
	}
	if startup.Source != app.SourceTmux || startup.Socket != "socket-path" || startup.Root != "server" {
		t.Fatalf("expected resolved tmux source, got %+v", startup)
	}
	if cfgValue, ok := payload["config"].(config.Config); !ok {
		t.Fatalf("expected config in payload")
	} else if cfgValue.App != cfg.App {
		t.Fatalf("expected app config %#v, got %#v", cfg.App, cfgValue.App)
	}
}
