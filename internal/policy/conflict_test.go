package policy

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/metascrub/metascrub/pkg/types"
)

func TestConflictResolver_NoConflict(t *testing.T) {
	tmpDir := t.TempDir()
	resolver := NewConflictResolver(types.ConflictPolicySkip, filepath.Join(tmpDir, "quarantine"))

	task := &types.ScrubTask{
		Source:   types.FileEntry{Name: "photo.jpg"},
		DestPath: filepath.Join(tmpDir, "photo.clean.jpg"),
	}

	res := resolver.Resolve(task)

	if res.Skip {
		t.Error("should not skip when no conflict")
	}
	if res.Action != types.ScrubActionScrubbed {
		t.Errorf("expected scrubbed action, got %s", res.Action)
	}
}

func TestConflictResolver_Skip(t *testing.T) {
	tmpDir := t.TempDir()
	existingFile := filepath.Join(tmpDir, "photo.clean.jpg")
	os.WriteFile(existingFile, []byte("existing"), 0644)

	resolver := NewConflictResolver(types.ConflictPolicySkip, filepath.Join(tmpDir, "quarantine"))

	task := &types.ScrubTask{
		Source:   types.FileEntry{Name: "photo.jpg"},
		DestPath: existingFile,
	}

	res := resolver.Resolve(task)

	if !res.Skip {
		t.Error("should skip on conflict with skip policy")
	}
	if res.Action != types.ScrubActionSkipped {
		t.Errorf("expected skipped action, got %s", res.Action)
	}
}

func TestConflictResolver_Rename(t *testing.T) {
	tmpDir := t.TempDir()
	existingFile := filepath.Join(tmpDir, "photo.clean.jpg")
	os.WriteFile(existingFile, []byte("existing"), 0644)

	resolver := NewConflictResolver(types.ConflictPolicyRename, filepath.Join(tmpDir, "quarantine"))

	task := &types.ScrubTask{
		Source:   types.FileEntry{Name: "photo.jpg"},
		DestPath: existingFile,
	}

	res := resolver.Resolve(task)

	if res.Skip {
		t.Error("should not skip on rename policy")
	}
	if res.Action != types.ScrubActionRenamed {
		t.Errorf("expected renamed action, got %s", res.Action)
	}

	expected := filepath.Join(tmpDir, "photo.clean_1.jpg")
	if res.DestPath != expected {
		t.Errorf("expected %s, got %s", expected, res.DestPath)
	}
}

func TestConflictResolver_Overwrite(t *testing.T) {
	// The overwrite policy keeps the same path and reports overwritten.
	tmpDir := t.TempDir()
	existingFile := filepath.Join(tmpDir, "photo.clean.jpg")
	os.WriteFile(existingFile, []byte("existing"), 0644)

	resolver := NewConflictResolver(types.ConflictPolicyOverwrite, filepath.Join(tmpDir, "quarantine"))
	task := &types.ScrubTask{
		Source:   types.FileEntry{Name: "photo.jpg"},
		DestPath: existingFile,
	}

	res := resolver.Resolve(task)
	if res.Skip {
		t.Fatal("should not skip on overwrite policy")
	}
	if res.Action != types.ScrubActionOverwritten {
		t.Fatalf("expected overwritten action, got %s", res.Action)
	}
	if res.DestPath != existingFile {
		t.Fatalf("expected same destination path, got %s", res.DestPath)
	}
}

func TestConflictResolver_Quarantine(t *testing.T) {
	// The quarantine policy redirects the output into the quarantine directory.
	tmpDir := t.TempDir()
	existingFile := filepath.Join(tmpDir, "photo.clean.jpg")
	os.WriteFile(existingFile, []byte("existing"), 0644)

	quarantineDir := filepath.Join(tmpDir, "quarantine")
	resolver := NewConflictResolver(types.ConflictPolicyQuarantine, quarantineDir)
	task := &types.ScrubTask{
		Source:   types.FileEntry{Name: "photo.jpg"},
		DestPath: existingFile,
	}

	res := resolver.Resolve(task)
	if res.Skip {
		t.Fatal("should not skip on quarantine policy")
	}
	if res.Action != types.ScrubActionQuarantined {
		t.Fatalf("expected quarantined action, got %s", res.Action)
	}
	if filepath.Dir(res.DestPath) != quarantineDir {
		t.Fatalf("expected quarantine destination, got %s", res.DestPath)
	}
}

func TestConflictResolver_DefaultPolicyFallsBackToSkip(t *testing.T) {
	// Unknown policy values resolve to a safe skip.
	tmpDir := t.TempDir()
	existingFile := filepath.Join(tmpDir, "photo.clean.jpg")
	os.WriteFile(existingFile, []byte("existing"), 0644)

	resolver := NewConflictResolver(types.ConflictPolicy("unknown"), filepath.Join(tmpDir, "quarantine"))
	task := &types.ScrubTask{
		Source:   types.FileEntry{Name: "photo.jpg"},
		DestPath: existingFile,
	}

	res := resolver.Resolve(task)
	if !res.Skip {
		t.Fatal("expected skip for unknown policy")
	}
	if res.Action != types.ScrubActionSkipped {
		t.Fatalf("expected skipped action, got %s", res.Action)
	}
}

func TestConflictResolver_GenerateUniqueName_ReturnsOriginalWhenExhausted(t *testing.T) {
	// When every _1 through _9999 candidate exists, generateUniqueName
	// falls back to the original path.
	tmpDir := t.TempDir()
	original := filepath.Join(tmpDir, "photo.jpg")

	for i := 1; i < 10000; i++ {
		candidate := filepath.Join(tmpDir, "photo_"+strconv.Itoa(i)+".jpg")
		if err := os.WriteFile(candidate, []byte("x"), 0644); err != nil {
			t.Fatalf("failed to create candidate file %d: %v", i, err)
		}
	}

	resolver := NewConflictResolver(types.ConflictPolicyRename, filepath.Join(tmpDir, "quarantine"))
	got := resolver.generateUniqueName(original)

	if got != original {
		t.Fatalf("expected original path when candidates exhausted, got %s", got)
	}
}
