package ops

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/empowerguard/moodjournal/internal/config"
	"github.com/empowerguard/moodjournal/internal/errors"
)

// PathCheckMode indicates whether the path check is for reading or writing.
type PathCheckMode int

const (
	PathCheckRead  PathCheckMode = iota // journal_import
	PathCheckWrite                      // journal_export
)

// ValidatePath checks a journal export/import path.
//
// The path must be a .jsonl file without ".." components whose parent is
// exactly ~/.moodjournal/exports or one of the configured allowed_paths.
// Neither the parent nor the file may be a symlink. allow_unsafe_paths lifts
// the directory restriction but keeps the symlink check on the file itself.
// Subdirectories are rejected so no intermediate component can be swapped
// between validation and open.
func ValidatePath(path string, mode PathCheckMode, cfg *config.Config) error {
	absPath, err := journalFilePath(path)
	if err != nil {
		return err
	}

	if cfg == nil || !cfg.AllowUnsafePaths {
		dirs, err := exportDirs(cfg)
		if err != nil {
			return err
		}
		parent := filepath.Dir(absPath)
		if !slices.Contains(dirs, parent) {
			return errors.NewInvalidRequest(fmt.Sprintf(
				"file must be directly in an allowed directory (no subdirectories); allowed: %v", dirs))
		}
		if isSymlink(parent) {
			return errors.NewInvalidRequest("parent directory must not be a symlink")
		}
	}

	if mode == PathCheckRead {
		if _, err := os.Stat(absPath); os.IsNotExist(err) {
			return errors.NewFileNotFound(path)
		}
	}
	if isSymlink(absPath) {
		return errors.NewInvalidRequest("path must not be a symlink")
	}
	return nil
}

// journalFilePath checks the shape of path and returns its absolute form.
func journalFilePath(path string) (string, error) {
	switch {
	case path == "":
		return "", errors.NewInvalidRequest("path is required")
	case containsTraversal(path):
		return "", errors.NewInvalidRequest("path must not contain directory traversal (..)")
	}

	cleaned := filepath.Clean(path)
	if filepath.Ext(cleaned) != ".jsonl" {
		return "", errors.NewInvalidRequest("path must have .jsonl extension")
	}
	abs, err := filepath.Abs(cleaned)
	if err != nil {
		return "", errors.NewInvalidRequest(fmt.Sprintf("invalid path: %v", err))
	}
	return abs, nil
}

// exportDirs lists the directories a journal file may live in: the default
// exports dir followed by absolute allowed_paths entries. Entries that are
// themselves symlinks are resolved to their targets; relative entries are ignored.
func exportDirs(cfg *config.Config) ([]string, error) {
	exports, err := DefaultExportsDir()
	if err != nil {
		return nil, err
	}
	candidates := []string{exports}
	if cfg != nil {
		for _, p := range cfg.AllowedPaths {
			if filepath.IsAbs(p) {
				candidates = append(candidates, p)
			}
		}
	}

	dirs := make([]string, 0, len(candidates))
	for _, c := range candidates {
		abs, err := filepath.Abs(filepath.Clean(c))
		if err != nil {
			return nil, errors.NewInvalidRequest(fmt.Sprintf("invalid allowed path: %v", err))
		}
		if isSymlink(abs) {
			if abs, err = filepath.EvalSymlinks(abs); err != nil {
				return nil, errors.NewInvalidRequest(fmt.Sprintf("cannot resolve symlink in allowed path: %v", err))
			}
		}
		dirs = append(dirs, abs)
	}
	return dirs, nil
}

func isSymlink(path string) bool {
	info, err := os.Lstat(path)
	return err == nil && info.Mode()&os.ModeSymlink != 0
}

// DefaultExportsDir returns ~/.moodjournal/exports.
func DefaultExportsDir() (string, error) {
	base, err := config.DefaultBaseDir()
	if err != nil {
		return "", errors.NewInternal(err)
	}
	return filepath.Join(base, "exports"), nil
}

// containsTraversal reports whether any component of path, split on either
// separator, is "..".
func containsTraversal(path string) bool {
	parts := strings.FieldsFunc(path, func(r rune) bool {
		return r == '/' || r == filepath.Separator
	})
	return slices.Contains(parts, "..")
}

// SanitizeForFilename turns an export label into a single file name
// component. Separators and ".." become dashes, control characters are
// dropped and dash runs collapse. An empty result becomes "unnamed".
func SanitizeForFilename(label string) string {
	label = strings.NewReplacer("/", "-", "\\", "-", "..", "-").Replace(label)
	label = strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return -1
		}
		return r
	}, label)
	for strings.Contains(label, "--") {
		label = strings.ReplaceAll(label, "--", "-")
	}
	if label = strings.Trim(label, "-"); label == "" {
		return "unnamed"
	}
	return label
}
