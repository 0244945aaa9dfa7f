package storage

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestValidFontSize(t *testing.T) {
	tests := []struct {
		name     string
		input    int
		expected int
	}{
		{"exact preset 8", 8, 8},
		{"exact preset 12", 12, 12},
		{"exact preset 24", 24, 24},
		{"between 8 and 10 equidistant picks lower", 9, 8},
		{"between 12 and 14 equidistant picks lower", 13, 12},
		{"between 20 and 24 closer to 20", 21, 20},
		{"between 20 and 24 closer to 24", 23, 24},
		{"below minimum", 1, 8},
		{"above maximum", 100, 24},
		{"zero", 0, 8},
		{"negative", -5, 8},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ValidFontSize(tc.input)
			if got != tc.expected {
				t.Errorf("ValidFontSize(%d) = %d, want %d", tc.input, got, tc.expected)
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Version != 1 {
		t.Errorf("expected version 1, got %d", config.Version)
	}
	if config.Video.SkipFrames != AutoSkipFrames {
		t.Errorf("expected auto frame skip, got %d", config.Video.SkipFrames)
	}
	if config.Video.TurboSkipFrames != 15 {
		t.Errorf("expected turbo skip 15, got %d", config.Video.TurboSkipFrames)
	}
	if config.Video.FontSize != 12 {
		t.Errorf("expected font size 12, got %d", config.Video.FontSize)
	}
	if config.Window.Width != 640 || config.Window.Height != 480 {
		t.Errorf("expected window 640x480, got %dx%d", config.Window.Width, config.Window.Height)
	}
	if config.Video.Fullscreen || config.Video.SoundSync || config.Screenshot.CopyToClipboard {
		t.Error("expected boolean settings off by default")
	}
}

func TestAtomicWriteJSON(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "nested", "test.json")

	data := struct {
		Name  string `json:"name"`
		Value int    `json:"value"`
	}{
		Name:  "test",
		Value: 42,
	}

	if err := AtomicWriteJSON(path, data); err != nil {
		t.Fatalf("AtomicWriteJSON failed: %v", err)
	}

	if tmps, _ := filepath.Glob(filepath.Join(filepath.Dir(path), "*.tmp")); len(tmps) != 0 {
		t.Errorf("temp files left after successful write: %v", tmps)
	}

	var result struct {
		Name  string `json:"name"`
		Value int    `json:"value"`
	}
	if err := ReadJSON(path, &result); err != nil {
		t.Fatalf("ReadJSON failed: %v", err)
	}

	if result.Name != data.Name || result.Value != data.Value {
		t.Errorf("data mismatch: expected %+v, got %+v", data, result)
	}
}

func TestAtomicWriteFileReplaces(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte("old"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := AtomicWriteFile(path, []byte("new")); err != nil {
		t.Fatalf("AtomicWriteFile failed: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil || string(got) != "new" {
		t.Fatalf("content = %q, %v; want %q", got, err, "new")
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if runtime.GOOS != "windows" && info.Mode().Perm() != 0644 {
		t.Errorf("mode = %v, want 0644", info.Mode().Perm())
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("directory holds %d entries, want only the target", len(entries))
	}
}

func TestGetBaseDirRequiresInit(t *testing.T) {
	saved := appName
	defer func() { appName = saved }()

	appName = ""
	if _, err := GetBaseDir(); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("GetBaseDir() error = %v, want ErrNotInitialized", err)
	}
}

func TestDataRoot(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/xdg")
	t.Setenv("APPDATA", "")

	if got, err := dataRoot("linux"); err != nil || got != "/xdg" {
		t.Errorf("dataRoot(linux) = %q, %v; want /xdg", got, err)
	}
	if _, err := dataRoot("windows"); err == nil {
		t.Error("dataRoot(windows) succeeded without APPDATA")
	}
	t.Setenv("APPDATA", "/appdata")
	if got, err := dataRoot("windows"); err != nil || got != "/appdata" {
		t.Errorf("dataRoot(windows) = %q, %v; want /appdata", got, err)
	}
}

func TestAtomicWriteJSONInvalidDir(t *testing.T) {
	tempDir := t.TempDir()
	blocker := filepath.Join(tempDir, "blocker")
	os.WriteFile(blocker, []byte("x"), 0644)

	err := AtomicWriteJSON(filepath.Join(blocker, "sub", "test.json"), map[string]int{"a": 1})
	if err == nil {
		t.Error("expected error when parent path is a file")
	}
}

func TestReadJSONInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	os.WriteFile(path, []byte("{not json"), 0644)

	var v map[string]interface{}
	if err := ReadJSON(path, &v); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestReadJSONNonexistentFile(t *testing.T) {
	var v map[string]interface{}
	if err := ReadJSON(filepath.Join(t.TempDir(), "missing.json"), &v); !os.IsNotExist(err) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

// useDataHome points the base directory at a temp dir. Only Linux and
// other XDG platforms honour XDG_DATA_HOME.
func useDataHome(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "darwin" || runtime.GOOS == "windows" {
		t.Skip("XDG_DATA_HOME not used on this platform")
	}
	dir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dir)
	Init("eblitvideo-test")
	return filepath.Join(dir, "eblitvideo-test")
}

func TestPaths(t *testing.T) {
	base := useDataHome(t)

	got, err := GetBaseDir()
	if err != nil || got != base {
		t.Fatalf("GetBaseDir() = %q, %v; want %q", got, err, base)
	}
	if p, _ := GetConfigPath(); p != filepath.Join(base, "config.json") {
		t.Errorf("GetConfigPath() = %q", p)
	}
	if p, _ := GetScreenshotDir(); p != filepath.Join(base, "screenshots") {
		t.Errorf("GetScreenshotDir() = %q", p)
	}

	if err := EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, d := range []string{"themes", "screenshots"} {
		if fi, err := os.Stat(filepath.Join(base, d)); err != nil || !fi.IsDir() {
			t.Errorf("%s not created", d)
		}
	}
}

func TestResolveAssetPath(t *testing.T) {
	base := useDataHome(t)
	abs := filepath.Join(t.TempDir(), "bg.png")

	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{abs, abs},
		{"bg.png", filepath.Join(base, "themes", "bg.png")},
		{filepath.Join("snes", "bg.zip"), filepath.Join(base, "themes", "snes", "bg.zip")},
	}
	for _, tc := range tests {
		got, err := ResolveAssetPath(tc.in)
		if err != nil || got != tc.want {
			t.Errorf("ResolveAssetPath(%q) = %q, %v; want %q", tc.in, got, err, tc.want)
		}
	}
}

func TestConfigRoundTrip(t *testing.T) {
	useDataHome(t)

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig without a file failed: %v", err)
	}
	if config.Video.SkipFrames != AutoSkipFrames {
		t.Fatal("missing file should load defaults")
	}

	if err := CreateConfigIfMissing(); err != nil {
		t.Fatalf("CreateConfigIfMissing failed: %v", err)
	}

	config.Video.SkipFrames = 0
	config.Video.Background = "bg.png"
	config.Screenshot.CopyToClipboard = true
	if err := SaveConfig(config); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}
	// Must not overwrite the saved file.
	if err := CreateConfigIfMissing(); err != nil {
		t.Fatalf("CreateConfigIfMissing failed: %v", err)
	}

	loaded, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if loaded.Video.SkipFrames != 0 {
		t.Errorf("present skipFrames=0 should survive, got %d", loaded.Video.SkipFrames)
	}
	if loaded.Video.Background != "bg.png" || !loaded.Screenshot.CopyToClipboard {
		t.Errorf("fields lost in round trip: %+v", loaded)
	}
}

func TestLoadConfigFileCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	os.WriteFile(path, []byte("{"), 0644)

	if _, err := LoadConfigFile(path); err == nil {
		t.Error("expected error for corrupted config")
	}
}
