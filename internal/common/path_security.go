package common

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// SecureJoin joins relativePath under basePath and returns the absolute target.
// Absolute inputs, ".." escapes and symlinks between base and target are rejected.
func SecureJoin(basePath, relativePath string) (string, error) {
	baseAbs, err := filepath.Abs(basePath)
	if err != nil {
		return "", fmt.Errorf("resolve base path: %w", err)
	}

	cleanRel := filepath.Clean(filepath.FromSlash(relativePath))
	if cleanRel == "." {
		cleanRel = ""
	}
	if filepath.IsAbs(cleanRel) || filepath.VolumeName(cleanRel) != "" {
		return "", fmt.Errorf("illegal path: absolute path not allowed")
	}

	targetAbs, err := filepath.Abs(filepath.Join(baseAbs, cleanRel))
	if err != nil {
		return "", fmt.Errorf("resolve target path: %w", err)
	}

	if err := EnsureNoSymlinkBetween(baseAbs, targetAbs); err != nil {
		return "", err
	}
	return targetAbs, nil
}

// EnsureNoSymlinkBetween walks from targetPath up to basePath and fails if the
// target lies outside base or any existing node below base is a symlink.
// Nodes that do not exist yet are accepted.
func EnsureNoSymlinkBetween(basePath, targetPath string) error {
	baseAbs, err := filepath.Abs(basePath)
	if err != nil {
		return fmt.Errorf("resolve base path: %w", err)
	}
	targetAbs, err := filepath.Abs(targetPath)
	if err != nil {
		return fmt.Errorf("resolve target path: %w", err)
	}

	if err := ensureWithinBase(baseAbs, targetAbs); err != nil {
		return err
	}

	current := targetAbs
	for !samePath(current, baseAbs) {
		info, statErr := os.Lstat(current)
		if statErr == nil {
			if info.Mode()&os.ModeSymlink != 0 {
				return fmt.Errorf("symlink traversal detected: %s", current)
			}
		} else if !os.IsNotExist(statErr) {
			return fmt.Errorf("inspect path: %w", statErr)
		}

		parent := filepath.Dir(current)
		if samePath(parent, current) {
			return fmt.Errorf("illegal path: base directory not reachable")
		}
		current = parent
	}

	return nil
}

func ensureWithinBase(baseAbs, targetAbs string) error {
	baseVol := filepath.VolumeName(baseAbs)
	targetVol := filepath.VolumeName(targetAbs)
	if baseVol != "" || targetVol != "" {
		if !strings.EqualFold(baseVol, targetVol) {
			return fmt.Errorf("illegal path: crosses volumes")
		}
	}

	rel, err := filepath.Rel(baseAbs, targetAbs)
	if err != nil {
		return fmt.Errorf("illegal path: %w", err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return fmt.Errorf("illegal path: outside base directory")
	}
	return nil
}

// samePath compares case-insensitively on Windows.
func samePath(a, b string) bool {
	a = filepath.Clean(a)
	b = filepath.Clean(b)
	if runtime.GOOS == "windows" {
		return strings.EqualFold(a, b)
	}
	return a == b
}
