// Package layout describes a level tree in a file and builds it in a
// registry.
package layout

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/atomicstack/vislevel/internal/vlevel"
)

// ErrInvalidLayout wraps every validation failure.
var ErrInvalidLayout = errors.New("invalid layout")

// Layout is a tree of levels. Root is shown when Visible is set; every other
// level hangs off an item of another level.
type Layout struct {
	Root    string  `mapstructure:"root"`
	Visible bool    `mapstructure:"visible"`
	Levels  []Level `mapstructure:"levels"`
}

// Level declares one level. Parent is "level/item".
type Level struct {
	Name    string   `mapstructure:"name"`
	Parent  string   `mapstructure:"parent"`
	Items   []string `mapstructure:"items"`
	Current string   `mapstructure:"current"`
}

// Default is the demo tree used when no layout file is given.
func Default() Layout {
	return Layout{
		Root:    "home",
		Visible: true,
		Levels: []Level{
			{Name: "home", Items: []string{"Home", "Live", "Me"}, Current: "Home"},
			{Name: "live", Parent: "home/Live", Items: []string{"Hot", "Follow", "Nearby"}, Current: "Hot"},
			{Name: "me", Parent: "home/Me", Items: []string{"Profile", "Settings"}, Current: "Profile"},
		},
	}
}

// Load reads and validates a layout file. The format follows the file
// extension (toml, yaml, yml or json); anything else is read as TOML.
func Load(path string) (Layout, error) {
	v := viper.New()
	v.SetConfigFile(path)
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")) {
	case "toml", "yaml", "yml", "json":
	default:
		v.SetConfigType("toml")
	}
	if err := v.ReadInConfig(); err != nil {
		return Layout{}, fmt.Errorf("read layout %s: %w", path, err)
	}
	return decode(v)
}

// Parse reads a layout in the given format from r.
func Parse(r io.Reader, format string) (Layout, error) {
	v := viper.New()
	v.SetConfigType(format)
	if err := v.ReadConfig(r); err != nil {
		return Layout{}, fmt.Errorf("parse layout: %w", err)
	}
	return decode(v)
}

func decode(v *viper.Viper) (Layout, error) {
	var l Layout
	if err := v.Unmarshal(&l); err != nil {
		return Layout{}, fmt.Errorf("decode layout: %w", err)
	}
	if err := l.Validate(); err != nil {
		return Layout{}, err
	}
	return l, nil
}

// Validate checks names, parent references and nesting. An empty Root is
// filled in with the only level that has no parent.
func (l *Layout) Validate() error {
	if len(l.Levels) == 0 {
		return fmt.Errorf("%w: no levels", ErrInvalidLayout)
	}
	byName := make(map[string]*Level, len(l.Levels))
	for i := range l.Levels {
		lv := &l.Levels[i]
		lv.Name = strings.TrimSpace(lv.Name)
		if lv.Name == "" || strings.Contains(lv.Name, "/") {
			return fmt.Errorf("%w: level %d has invalid name %q", ErrInvalidLayout, i, lv.Name)
		}
		if _, dup := byName[lv.Name]; dup {
			return fmt.Errorf("%w: duplicate level %q", ErrInvalidLayout, lv.Name)
		}
		byName[lv.Name] = lv
		if len(lv.Items) == 0 {
			return fmt.Errorf("%w: level %q declares no items", ErrInvalidLayout, lv.Name)
		}
		seen := make(map[string]bool, len(lv.Items))
		for _, item := range lv.Items {
			if strings.TrimSpace(item) == "" {
				return fmt.Errorf("%w: level %q has a blank item", ErrInvalidLayout, lv.Name)
			}
			if seen[item] {
				return fmt.Errorf("%w: level %q repeats item %q", ErrInvalidLayout, lv.Name, item)
			}
			seen[item] = true
		}
		if lv.Current != "" && !seen[lv.Current] {
			return fmt.Errorf("%w: level %q selects undeclared item %q", ErrInvalidLayout, lv.Name, lv.Current)
		}
	}

	occupied := make(map[string]string)
	var roots []string
	for _, lv := range l.Levels {
		if lv.Parent == "" {
			roots = append(roots, lv.Name)
			continue
		}
		parentName, itemName, ok := strings.Cut(lv.Parent, "/")
		parent := byName[parentName]
		if !ok || parent == nil || !contains(parent.Items, itemName) {
			return fmt.Errorf("%w: level %q has unknown parent %q", ErrInvalidLayout, lv.Name, lv.Parent)
		}
		if other, taken := occupied[lv.Parent]; taken {
			return fmt.Errorf("%w: %q already holds level %q, cannot also hold %q", ErrInvalidLayout, lv.Parent, other, lv.Name)
		}
		occupied[lv.Parent] = lv.Name
	}

	if l.Root == "" && len(roots) == 1 {
		l.Root = roots[0]
	}
	root, ok := byName[l.Root]
	if !ok {
		return fmt.Errorf("%w: unknown root %q", ErrInvalidLayout, l.Root)
	}
	if root.Parent != "" {
		return fmt.Errorf("%w: root %q must not have a parent", ErrInvalidLayout, l.Root)
	}
	for _, name := range roots {
		if name != l.Root {
			return fmt.Errorf("%w: level %q is not attached to the tree", ErrInvalidLayout, name)
		}
	}

	// with a single root and one parent per level, any level that cannot
	// reach the root sits on a cycle
	for _, lv := range l.Levels {
		steps := 0
		for cur := lv; cur.Parent != ""; steps++ {
			if steps > len(l.Levels) {
				return fmt.Errorf("%w: level %q is nested inside itself", ErrInvalidLayout, lv.Name)
			}
			parentName, _, _ := strings.Cut(cur.Parent, "/")
			cur = *byName[parentName]
		}
	}
	return nil
}

// Find returns the named level.
func (l Layout) Find(name string) (Level, bool) {
	for _, lv := range l.Levels {
		if lv.Name == name {
			return lv, true
		}
	}
	return Level{}, false
}

// Definitions returns a registry definition function that declares each
// layout level's items. onItem, when set, runs for every created item.
func (l Layout) Definitions(onItem func(*vlevel.Item)) func(string) vlevel.Definition {
	return func(key string) vlevel.Definition {
		lv, ok := l.Find(key)
		if !ok {
			return vlevel.DefinitionFuncs{CreateItem: onItem}
		}
		items := append([]string(nil), lv.Items...)
		return vlevel.DefinitionFuncs{
			Create:     func(level *vlevel.Level) error { return level.DeclareItems(items...) },
			CreateItem: onItem,
		}
	}
}

// Build creates every level in reg, nests children, applies selections and
// finally shows or hides the root. It returns the root level.
func (l Layout) Build(reg *vlevel.Registry[string]) (*vlevel.Level, error) {
	for _, lv := range l.ordered() {
		level := reg.Get(lv.Name)
		if err := level.DeclareItems(lv.Items...); err != nil {
			return nil, err
		}
		if lv.Current != "" {
			if err := level.SetCurrentItem(lv.Current); err != nil {
				return nil, err
			}
		}
		if lv.Parent == "" {
			continue
		}
		parentName, itemName, _ := strings.Cut(lv.Parent, "/")
		item, err := reg.Get(parentName).Item(itemName)
		if err != nil {
			return nil, fmt.Errorf("nest %s: %w", lv.Name, err)
		}
		if _, err := reg.Nest(item, lv.Name); err != nil {
			return nil, err
		}
	}
	root := reg.Get(l.Root)
	root.SetVisible(l.Visible)
	return root, nil
}

// ordered lists levels parents-first.
func (l Layout) ordered() []Level {
	out := make([]Level, 0, len(l.Levels))
	placed := make(map[string]bool, len(l.Levels))
	for len(out) < len(l.Levels) {
		progress := false
		for _, lv := range l.Levels {
			if placed[lv.Name] {
				continue
			}
			parentName, _, _ := strings.Cut(lv.Parent, "/")
			if lv.Parent == "" || placed[parentName] {
				out = append(out, lv)
				placed[lv.Name] = true
				progress = true
			}
		}
		if !progress {
			break
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
