package corpus

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"chronoreel/internal/logging"
)

// Walker yields candidate file paths under root, in a deterministic order.
type Walker interface {
	Walk(ctx context.Context, root string, visit func(path string) error) error
}

// DirWalker walks the real filesystem with filepath.WalkDir.
type DirWalker struct {
	Logger *slog.Logger
}

// Walk visits regular files under root in lexical order. A symlinked root is
// resolved first; symlinked files are followed, symlinked directories are not.
// Every other skipped entry is logged. An unreadable root is an error.
func (w DirWalker) Walk(ctx context.Context, root string, visit func(path string) error) error {
	logger := logging.NewComponentLogger(w.Logger, "corpus")
	resolved, err := filepath.EvalSymlinks(root)
	if err != nil {
		return fmt.Errorf("walk %s: %w", root, err)
	}
	return filepath.WalkDir(resolved, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		display := displayPath(root, resolved, path)
		if err != nil {
			if path == resolved {
				return fmt.Errorf("walk %s: %w", root, err)
			}
			warnSkipped(logger, display, err, "check permissions on the input tree")
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			info, statErr := os.Stat(path)
			switch {
			case statErr != nil:
				warnSkipped(logger, display, statErr, "the link target is missing or unreadable")
				return nil
			case info.IsDir():
				warnSkipped(logger, display, errors.New("symlinked directory not followed"), "link the photos themselves or point paths.input_dir at the target")
				return nil
			case !info.Mode().IsRegular():
				warnSkipped(logger, display, fmt.Errorf("link target is %s", info.Mode().Type()), "only regular files are read")
				return nil
			}
			return visit(display)
		}
		if !d.Type().IsRegular() {
			warnSkipped(logger, display, fmt.Errorf("entry is %s", d.Type()), "only regular files are read")
			return nil
		}
		return visit(display)
	})
}

// displayPath maps a path under the resolved root back under the root the
// caller named.
func displayPath(root, resolved, path string) string {
	if root == resolved {
		return path
	}
	rel, err := filepath.Rel(resolved, path)
	if err != nil {
		return path
	}
	return filepath.Join(root, rel)
}

func warnSkipped(logger *slog.Logger, path string, err error, hint string) {
	logging.WarnWithContext(logger, "directory entry skipped", "walk_entry_skipped",
		logging.String(logging.FieldPath, path),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, hint),
		logging.String(logging.FieldImpact, "photos at this entry are not included"),
	)
}

// SliceWalker yields a fixed list of paths. Tests use it to control discovery order.
type SliceWalker []string

// Walk visits the paths in slice order.
func (w SliceWalker) Walk(ctx context.Context, _ string, visit func(path string) error) error {
	for _, path := range w {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := visit(path); err != nil {
			return err
		}
	}
	return nil
}
