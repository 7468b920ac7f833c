package ops

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hpungsan/lectio/internal/config"
	"github.com/hpungsan/lectio/internal/errors"
)

func TestValidatePath_TraversalRejected(t *testing.T) {
	cfg := config.DefaultConfig()

	tests := []struct {
		name string
		path string
	}{
		{"parent traversal", "../backup.md"},
		{"deep traversal", "../../etc/backup.md"},
		{"mid-path traversal", "/tmp/../etc/backup.md"},
		{"hidden in path", "/tmp/safe/../../../etc/shadow.md"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidatePath(tc.path, "", cfg)
			if err == nil {
				t.Error("expected error for path traversal, got nil")
			}
			if !errors.Is(err, errors.ErrInvalidRequest) {
				t.Errorf("expected ErrInvalidRequest, got: %v", err)
			}
		})
	}
}

func TestValidatePath_ExtensionRequired(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.AllowUnsafePaths = true // Allow any directory

	tests := []struct {
		name string
		path string
	}{
		{"no extension", "/tmp/backup"},
		{"wrong extension", "/tmp/backup.jsonl"},
		{"txt extension", "/tmp/backup.txt"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidatePath(tc.path, "", cfg)
			if err == nil {
				t.Error("expected error for wrong extension, got nil")
			}
			if !errors.Is(err, errors.ErrInvalidRequest) {
				t.Errorf("expected ErrInvalidRequest, got: %v", err)
			}
		})
	}
}

func TestValidatePath_DirectoryRestriction(t *testing.T) {
	cfg := config.DefaultConfig()
	exportsDir := t.TempDir()

	// Path outside allowed directories should fail
	err := ValidatePath("/tmp/backup.md", exportsDir, cfg)
	if err == nil {
		t.Error("expected error for path outside allowed directories, got nil")
	}
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest, got: %v", err)
	}

	// Directly in the exports dir is fine
	if err := ValidatePath(filepath.Join(exportsDir, "genesis-1.md"), exportsDir, cfg); err != nil {
		t.Errorf("expected success for path in exports dir, got: %v", err)
	}
}

func TestValidatePath_AllowUnsafePaths(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.AllowUnsafePaths = true

	// Should allow paths outside the exports dir when AllowUnsafePaths=true
	writePath := filepath.Join(tmpDir, "output.md")
	if err := ValidatePath(writePath, t.TempDir(), cfg); err != nil {
		t.Errorf("expected success for write with AllowUnsafePaths=true, got: %v", err)
	}

	// Nested directories are fine too
	nested := filepath.Join(tmpDir, "a", "b", "output.md")
	if err := ValidatePath(nested, "", cfg); err != nil {
		t.Errorf("expected success for nested path with AllowUnsafePaths=true, got: %v", err)
	}
}

func TestValidatePath_AllowedPaths(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.AllowedPaths = []string{tmpDir, "relative/ignored"}

	// Should allow paths in AllowedPaths
	if err := ValidatePath(filepath.Join(tmpDir, "psalms.md"), t.TempDir(), cfg); err != nil {
		t.Errorf("expected success for path in AllowedPaths, got: %v", err)
	}

	// Path outside AllowedPaths (and not in the exports dir) should fail
	otherFile := filepath.Join(t.TempDir(), "other.md")
	err := ValidatePath(otherFile, t.TempDir(), cfg)
	if err == nil {
		t.Error("expected error for path outside AllowedPaths, got nil")
	}
}

func TestValidatePath_SymlinkRejected(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := config.DefaultConfig()

	// Create a target file in a different directory (outside allowed paths)
	otherDir := t.TempDir()
	targetFile := filepath.Join(otherDir, "secret.md")
	if err := os.WriteFile(targetFile, []byte("secret"), 0600); err != nil {
		t.Fatalf("failed to create target file: %v", err)
	}

	// Create a symlink in the exports directory pointing outside
	symlink := filepath.Join(tmpDir, "link.md")
	if err := os.Symlink(targetFile, symlink); err != nil {
		t.Skipf("cannot create symlink: %v", err)
	}

	err := ValidatePath(symlink, tmpDir, cfg)
	if err == nil {
		t.Error("expected error for symlink in exports dir, got nil")
	}
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest, got: %v", err)
	}
}

func TestValidatePath_SymlinkRejected_EvenWithUnsafePaths(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.AllowUnsafePaths = true

	// Create a target file
	targetFile := filepath.Join(tmpDir, "target.md")
	if err := os.WriteFile(targetFile, []byte("{}"), 0600); err != nil {
		t.Fatalf("failed to create target file: %v", err)
	}

	// Create a symlink
	symlink := filepath.Join(tmpDir, "link.md")
	if err := os.Symlink(targetFile, symlink); err != nil {
		t.Skipf("cannot create symlink: %v", err)
	}

	// Even with AllowUnsafePaths=true, symlinks should be rejected.
	// AllowUnsafePaths bypasses directory restrictions, NOT symlink restrictions.
	// O_NOFOLLOW is always used at open time, so validation should match.
	err := ValidatePath(symlink, "", cfg)
	if err == nil {
		t.Error("expected error for symlink even with AllowUnsafePaths=true, got nil")
	}
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest, got: %v", err)
	}
}

func TestValidatePath_NestedPathRejected_Write(t *testing.T) {
	allowedDir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.AllowedPaths = []string{allowedDir}

	// Create a subdirectory (nested paths are not allowed)
	subDir := filepath.Join(allowedDir, "subdir")
	if err := os.MkdirAll(subDir, 0755); err != nil {
		t.Fatalf("failed to create subdir: %v", err)
	}

	nestedPath := filepath.Join(subDir, "out.md")
	err := ValidatePath(nestedPath, "", cfg)
	if err == nil {
		t.Error("expected error for nested path, got nil")
	}
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest, got: %v", err)
	}
}

func TestValidatePath_SymlinkFileRejected_Write(t *testing.T) {
	allowedDir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.AllowedPaths = []string{allowedDir}

	otherDir := t.TempDir()
	targetFile := filepath.Join(otherDir, "secret.md")
	if err := os.WriteFile(targetFile, []byte("{}"), 0600); err != nil {
		t.Fatalf("failed to create target file: %v", err)
	}

	symlink := filepath.Join(allowedDir, "out.md")
	if err := os.Symlink(targetFile, symlink); err != nil {
		t.Skipf("cannot create symlink: %v", err)
	}

	err := ValidatePath(symlink, "", cfg)
	if err == nil {
		t.Error("expected error for symlink file write, got nil")
	}
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest, got: %v", err)
	}
}

func TestContainsTraversal(t *testing.T) {
	tests := []struct {
		path     string
		contains bool
	}{
		{"/home/user/file.txt", false},
		{"../file.txt", true},
		{"/home/../etc/passwd", true},
		{"./file.txt", false},
		{"/home/user/.hidden/file.txt", false},
		{"file..name.txt", false}, // .. not as path component
		{"/tmp/a/b/../c.md", true},
	}

	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			result := containsTraversal(tc.path)
			if result != tc.contains {
				t.Errorf("containsTraversal(%q) = %v, want %v", tc.path, result, tc.contains)
			}
		})
	}
}

func TestSanitizeForFilename(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple name", "myproject", "myproject"},
		{"with spaces", "my project", "my project"},
		{"forward slash", "path/to/file", "path-to-file"},
		{"backslash", "path\\to\\file", "path-to-file"},
		{"double dots", "foo..bar", "foo-bar"},
		{"traversal attempt", "../../../etc/passwd", "etc-passwd"},
		{"absolute path", "/tmp/evil", "tmp-evil"},
		{"mixed attack", "../foo/bar\\..\\baz", "foo-bar-baz"},
		{"null bytes", "foo\x00bar", "foobar"},
		{"control chars", "foo\x01\x02bar", "foobar"},
		{"empty after sanitize", "../../..", "unnamed"},
		{"only slashes", "///", "unnamed"},
		{"unicode preserved", "\ucc3d\uc138\uae30", "\ucc3d\uc138\uae30"},
		{"multiple dashes collapse", "a---b", "a-b"},
		{"leading dashes trimmed", "---foo", "foo"},
		{"trailing dashes trimmed", "foo---", "foo"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := SanitizeForFilename(tc.input)
			if result != tc.expected {
				t.Errorf("SanitizeForFilename(%q) = %q, want %q", tc.input, result, tc.expected)
			}
		})
	}
}
