package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/metascrub/metascrub/pkg/types"
)

func TestConfigToPresetAndBack(t *testing.T) {
	// Config <-> Preset conversion must preserve every scrub option.
	cfg := &Config{
		Source:            "/src",
		Dest:              "/dest",
		IncludeExtensions: []string{"jpg", "pdf"},
		Jobs:              3,
		ConflictPolicy:    types.ConflictPolicyRename,
		OutputSuffix:      "scrubbed",
		QuarantineDir:     "quar",
		DryRun:            true,
		Verify:            true,
		IgnoreState:       true,
	}

	preset := ConfigToPreset(cfg, "my-preset", "desc")
	roundTrip := PresetToConfig(preset)

	if roundTrip.Source != cfg.Source || roundTrip.Dest != cfg.Dest {
		t.Fatalf("source/dest mismatch after round trip: %+v", roundTrip)
	}
	if roundTrip.OutputSuffix != cfg.OutputSuffix || roundTrip.Jobs != cfg.Jobs {
		t.Fatalf("suffix/jobs mismatch after round trip: %+v", roundTrip)
	}
	if roundTrip.ConflictPolicy != cfg.ConflictPolicy || !roundTrip.Verify {
		t.Fatalf("policy mismatch after round trip: %+v", roundTrip)
	}
}

func TestPresetManager_SaveLoadListDelete(t *testing.T) {
	dir := t.TempDir()
	pm := &PresetManager{presetsDir: dir}

	preset := &types.ConfigPreset{
		Name:              "test",
		Source:            "/src",
		Dest:              "/dest",
		IncludeExtensions: []string{"jpg"},
		OutputSuffix:      "clean",
		QuarantineDir:     "quar",
	}

	if err := pm.SavePreset(preset); err != nil {
		t.Fatalf("save preset failed: %v", err)
	}

	loaded, err := pm.LoadPreset("test")
	if err != nil {
		t.Fatalf("load preset failed: %v", err)
	}
	if loaded.Name != "test" || loaded.Source != "/src" {
		t.Fatalf("unexpected loaded preset: %+v", loaded)
	}

	presets, err := pm.ListPresets()
	if err != nil {
		t.Fatalf("list presets failed: %v", err)
	}
	if len(presets) != 1 {
		t.Fatalf("expected 1 preset, got %d", len(presets))
	}

	if err := pm.DeletePreset("test"); err != nil {
		t.Fatalf("delete preset failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "test.json")); !os.IsNotExist(err) {
		t.Fatalf("expected preset file to be deleted, stat error=%v", err)
	}
}

func TestPresetManager_SavePreset_EmptyNameFails(t *testing.T) {
	pm := &PresetManager{presetsDir: t.TempDir()}
	err := pm.SavePreset(&types.ConfigPreset{Name: ""})
	if err == nil {
		t.Fatal("expected error for empty preset name")
	}
}

func TestPresetManager_ListPresets_SkipsInvalidJSON(t *testing.T) {
	dir := t.TempDir()
	pm := &PresetManager{presetsDir: dir}

	if err := os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0644); err != nil {
		t.Fatalf("failed to write broken preset: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "note.txt"), []byte("ignore"), 0644); err != nil {
		t.Fatalf("failed to write txt file: %v", err)
	}

	good := &types.ConfigPreset{Name: "ok", OutputSuffix: "clean", QuarantineDir: "quar"}
	if err := pm.SavePreset(good); err != nil {
		t.Fatalf("save good preset failed: %v", err)
	}

	presets, err := pm.ListPresets()
	if err != nil {
		t.Fatalf("list presets failed: %v", err)
	}
	if len(presets) != 1 || presets[0].Name != "ok" {
		t.Fatalf("unexpected presets result: %+v", presets)
	}
}

func TestNewPresetManager_CreatesDefaultDirectory(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	pm, err := NewPresetManager()
	if err != nil {
		t.Fatalf("new preset manager failed: %v", err)
	}
	if pm == nil {
		t.Fatal("expected non-nil preset manager")
	}
	if _, err := os.Stat(filepath.Join(home, ".metascrub", "presets")); err != nil {
		t.Fatalf("expected presets dir to exist: %v", err)
	}
}

func TestNewPresetManager_ReturnsErrorWhenHomeIsFile(t *testing.T) {
	homeFile := filepath.Join(t.TempDir(), "home-file")
	if err := os.WriteFile(homeFile, []byte("x"), 0644); err != nil {
		t.Fatalf("failed to create fake home file: %v", err)
	}
	t.Setenv("HOME", homeFile)

	_, err := NewPresetManager()
	if err == nil {
		t.Fatal("expected NewPresetManager error")
	}
}

func TestPresetManager_SavePreset_ReturnsWriteError(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "not-dir")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatalf("failed to create blocker file: %v", err)
	}

	pm := &PresetManager{presetsDir: blocker}
	err := pm.SavePreset(&types.ConfigPreset{Name: "demo"})
	if err == nil {
		t.Fatal("expected save preset write error")
	}
}

func TestPresetManager_LoadPreset_ReturnsReadError(t *testing.T) {
	pm := &PresetManager{presetsDir: t.TempDir()}
	_, err := pm.LoadPreset("missing")
	if err == nil {
		t.Fatal("expected load preset read error")
	}
}

func TestPresetManager_DeletePreset_ReturnsErrorWhenMissing(t *testing.T) {
	pm := &PresetManager{presetsDir: t.TempDir()}
	err := pm.DeletePreset("missing")
	if err == nil {
		t.Fatal("expected delete preset error")
	}
}

func TestPresetManager_ListPresets_ReturnsReadDirError(t *testing.T) {
	pm := &PresetManager{presetsDir: filepath.Join(t.TempDir(), "not-exists")}
	_, err := pm.ListPresets()
	if err == nil {
		t.Fatal("expected list presets read dir error")
	}
}
