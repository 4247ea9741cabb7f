package asset

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestAssetText(t *testing.T) {
	tests := []struct {
		name  string
		asset *Asset
		want  string
	}{
		{"chunk", Chunk("a.js", "console.log(1)"), "console.log(1)"},
		{"chunk empty", Chunk("a.js", ""), ""},
		{"raw text", Raw("b.css", []byte(".x{color:red}")), ".x{color:red}"},
		{"raw nil", Raw("b.css", nil), ""},
		{"raw utf8", Raw("c.css", []byte("content:\"→\"")), "content:\"→\""},
		{"raw invalid utf8", Raw("d.bin", []byte{'a', 0xff, 'b'}), "a\uFFFDb"},
		{"nil asset", nil, ""},
		{"zero value", &Asset{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.asset.Text(); got != tt.want {
				t.Errorf("Text() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAssetSize(t *testing.T) {
	if got := Chunk("a.js", "abc").Size(); got != 3 {
		t.Errorf("chunk size = %d, want 3", got)
	}
	if got := Raw("a.css", []byte("abcd")).Size(); got != 4 {
		t.Errorf("raw size = %d, want 4", got)
	}
	var a *Asset
	if got := a.Size(); got != 0 {
		t.Errorf("nil size = %d, want 0", got)
	}
}

func TestKindString(t *testing.T) {
	if KindChunk.String() != "chunk" || KindAsset.String() != "asset" || Kind(42).String() != "unknown" {
		t.Error("unexpected Kind.String() values")
	}
}

func TestSetPreservesInsertionOrder(t *testing.T) {
	set := NewSet(
		Chunk("z.js", "z"),
		Raw("a.css", []byte("a")),
		Chunk("m.js", "m"),
	)

	want := []string{"z.js", "a.css", "m.js"}
	if got := set.Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}

	var visited []string
	set.Each(func(a *Asset) bool {
		visited = append(visited, a.Name)
		return true
	})
	if !reflect.DeepEqual(visited, want) {
		t.Errorf("Each visited %v, want %v", visited, want)
	}
}

func TestSetReplaceKeepsPosition(t *testing.T) {
	set := NewSet(Chunk("a.js", "1"), Chunk("b.js", "2"))
	set.Add(Chunk("a.js", "3"))

	if set.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", set.Len())
	}
	if names := set.Names(); names[0] != "a.js" {
		t.Errorf("replaced asset moved: %v", names)
	}
	a, ok := set.Get("a.js")
	if !ok || a.Text() != "3" {
		t.Errorf("Get(a.js) = %v, %v", a, ok)
	}
}

func TestSetEachStops(t *testing.T) {
	set := NewSet(Chunk("a.js", ""), Chunk("b.js", ""), Chunk("c.js", ""))
	count := 0
	set.Each(func(a *Asset) bool {
		count++
		return a.Name != "b.js"
	})
	if count != 2 {
		t.Errorf("Each visited %d assets, want 2", count)
	}
}

func TestNilSet(t *testing.T) {
	var set *Set
	if set.Len() != 0 || set.Names() != nil {
		t.Error("nil set must be empty")
	}
	if _, ok := set.Get("a"); ok {
		t.Error("nil set Get must miss")
	}
	set.Each(func(*Asset) bool {
		t.Error("nil set Each must not call fn")
		return true
	})
}

func TestSetAddNilIgnored(t *testing.T) {
	var set Set
	set.Add(nil)
	set.Add(Chunk("a.js", "x"))
	if set.Len() != 1 {
		t.Errorf("Len() = %d, want 1", set.Len())
	}
}

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"index.js":        "console.log(1)",
		"assets/app.css":  ".x{}",
		"assets/chunk.js": "chunk()",
		"bundle.js":       "old bundle",
		"assets/logo.svg": "<svg/>",
	})

	set, err := LoadDir(dir, "bundle.js")
	if err != nil {
		t.Fatalf("LoadDir failed: %v", err)
	}

	want := []string{"assets/app.css", "assets/chunk.js", "assets/logo.svg", "index.js"}
	if got := set.Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}

	a, _ := set.Get("assets/app.css")
	if a.Kind != KindAsset || a.Text() != ".x{}" {
		t.Errorf("unexpected asset %+v", a)
	}
}

func TestLoadDirMissing(t *testing.T) {
	if _, err := LoadDir(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("expected error for missing dir")
	}
}

func TestDirHostEmitAndPrune(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"a.js":  "a",
		"b.css": "b",
		"c.txt": "c",
	})

	host := NewDirHost(dir, true)
	if err := host.EmitFile("out/bundle.js", "combined"); err != nil {
		t.Fatalf("EmitFile failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "out", "bundle.js"))
	if err != nil {
		t.Fatalf("read emitted file: %v", err)
	}
	if string(data) != "combined" {
		t.Errorf("emitted content = %q", data)
	}
	if got := host.Emitted(); len(got) != 1 || got[0] != "out/bundle.js" {
		t.Errorf("Emitted() = %v", got)
	}

	if err := host.Prune("out/bundle.js", []string{"a.js", "b.css", "missing.js"}); err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	for _, name := range []string{"a.js", "b.css"} {
		if _, err := os.Stat(filepath.Join(dir, name)); !os.IsNotExist(err) {
			t.Errorf("%s should be removed", name)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "c.txt")); err != nil {
		t.Errorf("c.txt should stay: %v", err)
	}
}

func TestDirHostPruneDisabled(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.js": "a"})

	host := NewDirHost(dir, false)
	if err := host.Prune("bundle.js", []string{"a.js"}); err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "a.js")); err != nil {
		t.Errorf("a.js should stay when RemoveOriginals is off: %v", err)
	}
}

func TestDirHostPruneKeepsOutput(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"bundle.js": "x"})

	host := NewDirHost(dir, true)
	if err := host.Prune("bundle.js", []string{"bundle.js"}); err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "bundle.js")); err != nil {
		t.Errorf("output must not be pruned: %v", err)
	}
}

func TestDirHostRejectsEscapingNames(t *testing.T) {
	host := NewDirHost(t.TempDir(), false)
	for _, name := range []string{"../evil.js", "/etc/passwd", ".", ""} {
		if err := host.EmitFile(name, "x"); err == nil {
			t.Errorf("EmitFile(%q) should fail", name)
		}
	}
}
