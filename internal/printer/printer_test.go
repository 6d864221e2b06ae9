package printer

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/atomicstack/vislevel/internal/layout"
	"github.com/atomicstack/vislevel/internal/vlevel"
)

func noColor(t *testing.T) {
	t.Helper()
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })
}

func buildDefault(t *testing.T) *vlevel.Registry[string] {
	t.Helper()
	l := layout.Default()
	reg := vlevel.NewRegistry(l.Definitions(nil))
	if _, err := l.Build(reg); err != nil {
		t.Fatalf("build: %v", err)
	}
	return reg
}

func TestCaptureWalksTreeDepthFirst(t *testing.T) {
	reg := buildDefault(t)
	reg.Get("orphan")

	snap := Capture(reg, "home")
	var names []string
	for _, l := range snap.Levels {
		names = append(names, l.Name)
	}
	if strings.Join(names, ",") != "home,live,me,orphan" {
		t.Fatalf("unexpected order %v", names)
	}
	home := snap.Levels[0]
	if !home.Visible || home.Current != "Home" || home.Depth != 0 {
		t.Fatalf("unexpected home state %+v", home)
	}
	if home.Items[0].Name != "Home" || !home.Items[0].Visible {
		t.Fatalf("expected Home item visible, got %+v", home.Items[0])
	}
	if home.Items[1].Child != "live" {
		t.Fatalf("expected Live to hold the live level, got %+v", home.Items[1])
	}
	live := snap.Levels[1]
	if live.Depth != 1 || live.Parent != "home/Live" || live.Visible {
		t.Fatalf("unexpected live state %+v", live)
	}
	orphan := snap.Levels[3]
	if orphan.State != "uninitialized" || len(orphan.Items) != 0 {
		t.Fatalf("unexpected orphan state %+v", orphan)
	}
}

func TestCaptureDoesNotCreateItems(t *testing.T) {
	created := 0
	reg := vlevel.NewRegistry[string](func(string) vlevel.Definition {
		return vlevel.DefinitionFuncs{
			Create:     func(l *vlevel.Level) error { return l.DeclareItems("a", "b") },
			CreateItem: func(*vlevel.Item) { created++ },
		}
	})
	reg.Get("root")
	Capture(reg, "root")
	if created != 0 {
		t.Fatalf("capture created %d items", created)
	}
}

func TestDumpFormats(t *testing.T) {
	noColor(t)
	snap := Capture(buildDefault(t), "home")

	t.Run("table", func(t *testing.T) {
		var buf bytes.Buffer
		if err := Dump(&buf, FormatTable, snap); err != nil {
			t.Fatalf("dump: %v", err)
		}
		out := buf.String()
		for _, want := range []string{"LEVEL", "home", "  live", "Profile", "yes"} {
			if !strings.Contains(out, want) {
				t.Fatalf("expected %q in table:\n%s", want, out)
			}
		}
	})
	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		if err := Dump(&buf, FormatYAML, snap); err != nil {
			t.Fatalf("dump: %v", err)
		}
		var back Snapshot
		if err := yaml.Unmarshal(buf.Bytes(), &back); err != nil {
			t.Fatalf("yaml: %v", err)
		}
		if back.Root != "home" || len(back.Levels) != 3 {
			t.Fatalf("unexpected yaml snapshot %+v", back)
		}
	})
	t.Run("toml", func(t *testing.T) {
		var buf bytes.Buffer
		if err := Dump(&buf, FormatTOML, snap); err != nil {
			t.Fatalf("dump: %v", err)
		}
		var back Snapshot
		if _, err := toml.Decode(buf.String(), &back); err != nil {
			t.Fatalf("toml: %v\n%s", err, buf.String())
		}
		if back.Levels[2].Parent != "home/Me" {
			t.Fatalf("unexpected toml snapshot %+v", back.Levels[2])
		}
	})
	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		if err := Dump(&buf, FormatJSON, snap); err != nil {
			t.Fatalf("dump: %v", err)
		}
		var back map[string]interface{}
		if err := json.Unmarshal(buf.Bytes(), &back); err != nil {
			t.Fatalf("json: %v", err)
		}
		if back["root"] != "home" {
			t.Fatalf("unexpected json %v", back)
		}
	})
	t.Run("unknown", func(t *testing.T) {
		if err := Dump(new(bytes.Buffer), "xml", snap); err == nil {
			t.Fatalf("expected error for unknown format")
		}
	})
}

func TestPlainFollowsTransitions(t *testing.T) {
	noColor(t)
	var buf bytes.Buffer
	plain := NewPlain(&buf)
	plain.now = func() time.Time { return time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC) }

	l := layout.Default()
	reg := vlevel.NewRegistry(l.Definitions(plain.Hook))
	root, err := l.Build(reg)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if err := root.SetCurrentItem("Live"); err != nil {
		t.Fatalf("select: %v", err)
	}

	want := strings.Join([]string{
		"12:00:00.000 + home/Home",
		"12:00:00.000 - home/Home",
		"12:00:00.000 + home/Live",
		"12:00:00.000 + live/Hot",
	}, "\n") + "\n"
	if buf.String() != want {
		t.Fatalf("unexpected output:\n%s\nwant:\n%s", buf.String(), want)
	}

	plain.Close()
	root.SetVisible(false)
	if buf.String() != want {
		t.Fatalf("expected no output after Close")
	}
}
