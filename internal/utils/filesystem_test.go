package utils

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	kerrors "github.com/hocktide/v-c-tool/internal/errors"
)

func TestCreateExclusive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keypair.cert")

	if err := CreateExclusive(path, []byte("first")); err != nil {
		t.Fatalf("CreateExclusive failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "first" {
		t.Errorf("Expected content %q, got %q", "first", data)
	}

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("Stat failed: %v", err)
		}
		if info.Mode().Perm() != 0600 {
			t.Errorf("Expected mode 0600, got %o", info.Mode().Perm())
		}
	}
}

func TestCreateExclusiveRefusesToClobber(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keypair.cert")
	if err := os.WriteFile(path, []byte("original"), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	err := CreateExclusive(path, []byte("replacement"))
	if !errors.Is(err, kerrors.ErrFileExists) {
		t.Fatalf("Expected ErrFileExists, got %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "original" {
		t.Errorf("Existing file was modified: %q", data)
	}
}

func TestReplaceFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "keypair.cert")
	if err := os.WriteFile(path, []byte("old"), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if err := ReplaceFile(path, []byte("new")); err != nil {
		t.Fatalf("ReplaceFile failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "new" {
		t.Errorf("Expected content %q, got %q", "new", data)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("Expected only the replaced file, found %d entries", len(entries))
	}
}

func TestCheckKeyFilePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("POSIX permission bits are not available on Windows")
	}

	tests := []struct {
		name    string
		mode    os.FileMode
		wantErr error
	}{
		{"OwnerReadWrite", 0600, nil},
		{"OwnerReadOnly", 0400, nil},
		{"GroupReadable", 0640, kerrors.ErrInsecurePermissions},
		{"WorldReadable", 0604, kerrors.ErrInsecurePermissions},
		{"OwnerWriteOnly", 0200, kerrors.ErrInsecurePermissions},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "key.cert")
			if err := os.WriteFile(path, []byte("key"), 0600); err != nil {
				t.Fatalf("WriteFile failed: %v", err)
			}
			if err := os.Chmod(path, tc.mode); err != nil {
				t.Fatalf("Chmod failed: %v", err)
			}

			err := CheckKeyFilePermissions(path)
			if tc.wantErr == nil && err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
			if tc.wantErr != nil && !errors.Is(err, tc.wantErr) {
				t.Errorf("Expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestCheckKeyFilePermissionsMissing(t *testing.T) {
	err := CheckKeyFilePermissions(filepath.Join(t.TempDir(), "absent.cert"))
	if runtime.GOOS != "windows" && !errors.Is(err, kerrors.ErrMissingKeyFile) {
		t.Errorf("Expected ErrMissingKeyFile, got %v", err)
	}
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "present")
	if err := os.WriteFile(path, nil, 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	exists, err := FileExists(path)
	if err != nil || !exists {
		t.Errorf("FileExists(present) = %v, %v", exists, err)
	}

	exists, err = FileExists(filepath.Join(dir, "absent"))
	if err != nil || exists {
		t.Errorf("FileExists(absent) = %v, %v", exists, err)
	}
}
