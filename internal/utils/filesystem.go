package utils

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"

	kerrors "github.com/hocktide/v-c-tool/internal/errors"
)

// CertificateFileMode is the mode of every certificate file vctool writes.
const CertificateFileMode os.FileMode = 0600

// FileExists reports whether path exists. Errors other than "not found" are
// returned so that a permission problem is not mistaken for a free path.
func FileExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("failed to stat %s: %w", path, err)
}

// CreateExclusive writes data to a new file at path with owner-only
// permissions. It fails with ErrFileExists rather than replace an existing
// file, and removes the file again if the write does not complete.
func CreateExclusive(path string, data []byte) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, CertificateFileMode)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%w: %s", kerrors.ErrFileExists, path)
		}
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if _, err := file.Write(data); err != nil {
		file.Close()
		os.Remove(path)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		os.Remove(path)
		return fmt.Errorf("failed to close %s: %w", path, err)
	}

	return nil
}

// ReplaceFile atomically replaces the file at path with data. The new
// content is written to an owner-only temporary file in the same directory
// and renamed over path.
func ReplaceFile(path string, data []byte) error {
	temp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file for %s: %w", path, err)
	}
	tempPath := temp.Name()

	cleanup := func() {
		temp.Close()
		os.Remove(tempPath)
	}

	if err := temp.Chmod(CertificateFileMode); err != nil && runtime.GOOS != "windows" {
		cleanup()
		return fmt.Errorf("failed to set permissions on %s: %w", tempPath, err)
	}
	if _, err := temp.Write(data); err != nil {
		cleanup()
		return fmt.Errorf("failed to write %s: %w", tempPath, err)
	}
	if err := temp.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("failed to sync %s: %w", tempPath, err)
	}
	if err := temp.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close %s: %w", tempPath, err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}

	return nil
}

// CheckKeyFilePermissions verifies that a key file is readable by its owner
// and carries no group, other, setuid, setgid or sticky bits. Windows does
// not expose POSIX permission bits, so the check is skipped there.
func CheckKeyFilePermissions(path string) error {
	if runtime.GOOS == "windows" {
		return nil
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", kerrors.ErrMissingKeyFile, path)
		}
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}

	mode := info.Mode()
	if mode&(os.ModeSetuid|os.ModeSetgid|os.ModeSticky) != 0 {
		return fmt.Errorf("%w: %s has mode %s", kerrors.ErrInsecurePermissions, path, mode)
	}
	if mode.Perm()&0077 != 0 {
		return fmt.Errorf("%w: %s has mode %s", kerrors.ErrInsecurePermissions, path, mode)
	}
	if mode.Perm()&0400 == 0 {
		return fmt.Errorf("%w: %s is not readable by its owner", kerrors.ErrInsecurePermissions, path)
	}

	return nil
}
