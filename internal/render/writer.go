package render

import (
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/inful/mdfp"

	apierrors "git.home.luguber.info/inful/apigen/internal/errors"
	"git.home.luguber.info/inful/apigen/internal/logfields"
)

// Writer stages generated pages in an ephemeral sibling directory and
// promotes the whole directory into place on Finalize, so readers never
// observe a half-written output tree.
type Writer struct {
	outputDir string
	stageDir  string
}

func NewWriter(outputDir string) *Writer {
	return &Writer{outputDir: outputDir}
}

// Begin creates the staging directory. When keepExisting is set the current
// output's Markdown files are carried over first, so pages absent from this
// run survive the promotion.
func (w *Writer) Begin(keepExisting bool) error {
	stage := fmt.Sprintf("%s_stage-%s", w.outputDir, uuid.NewString()[:8])
	if err := os.MkdirAll(stage, 0o755); err != nil {
		return apierrors.OutputError("create staging directory", err)
	}
	w.stageDir = stage

	if keepExisting {
		if err := w.copyExistingPages(); err != nil {
			w.Abort()
			return err
		}
	}
	slog.Debug("Initialized staging directory", "staging", stage, "final", w.outputDir)
	return nil
}

func (w *Writer) copyExistingPages() error {
	err := filepath.WalkDir(w.outputDir, func(path string, ent fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ent.IsDir() || !strings.HasSuffix(ent.Name(), ".md") {
			return nil
		}
		rel, err := filepath.Rel(w.outputDir, path)
		if err != nil {
			return err
		}
		dst := filepath.Join(w.stageDir, rel)
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return err
		}
		return copyFile(path, dst)
	})
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return apierrors.OutputError("carry over existing pages", err)
	}
	return nil
}

// WritePage serializes the page, stamps its content fingerprint into the
// front matter, and writes it under dir inside the staging directory. Each
// module writes into its own dir.
func (w *Writer) WritePage(p *Page, dir string) error {
	raw, err := p.Markdown()
	if err != nil {
		return apierrors.RenderError(p.Name, err)
	}

	stamped, err := mdfp.ProcessContent(string(raw))
	if err != nil {
		// Fingerprint failures are logged, not fatal.
		slog.Error("Failed to fingerprint page", logfields.Page(p.Name), logfields.Error(err))
		stamped = string(raw)
	}

	path := filepath.Join(w.stageDir, dir, p.Name+".md")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return apierrors.OutputError("create module directory", err).WithContext("page", p.Name)
	}
	if err := os.WriteFile(path, []byte(stamped), 0o644); err != nil {
		return apierrors.OutputError("write page", err).WithContext("page", p.Name)
	}
	return nil
}

// WriteHTML writes an HTML preview alongside the page.
func (w *Writer) WriteHTML(dir, name string, content []byte) error {
	path := filepath.Join(w.stageDir, dir, name+".html")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return apierrors.OutputError("create module directory", err).WithContext("page", name)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return apierrors.OutputError("write html preview", err).WithContext("page", name)
	}
	return nil
}

// CopyUnchanged carries an unchanged page from the current output into the
// staging directory, preserving its existing fingerprint. Returns false when
// the page does not exist in the output yet.
func (w *Writer) CopyUnchanged(dir, name string) bool {
	src := filepath.Join(w.outputDir, dir, name+".md")
	if _, err := os.Stat(src); err != nil {
		return false
	}
	dst := filepath.Join(w.stageDir, dir, name+".md")
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		slog.Warn("Failed to carry over unchanged page", logfields.Page(name), logfields.Error(err))
		return false
	}
	if err := copyFile(src, dst); err != nil {
		slog.Warn("Failed to carry over unchanged page", logfields.Page(name), logfields.Error(err))
		return false
	}
	return true
}

// Finalize promotes the staging directory to the output location. The
// previous output is moved aside first and removed after the swap.
func (w *Writer) Finalize() error {
	if w.stageDir == "" {
		return apierrors.InternalError("no staging directory initialized", nil)
	}

	prev := w.outputDir + ".prev"
	if err := os.RemoveAll(prev); err != nil {
		return apierrors.OutputError("remove previous backup", err)
	}
	if _, err := os.Stat(w.outputDir); err == nil {
		if err := os.Rename(w.outputDir, prev); err != nil {
			return apierrors.OutputError("backup existing output", err)
		}
	} else if err := os.MkdirAll(filepath.Dir(w.outputDir), 0o755); err != nil {
		return apierrors.OutputError("create output parent", err)
	}
	if err := os.Rename(w.stageDir, w.outputDir); err != nil {
		return apierrors.OutputError("promote staging", err)
	}
	w.stageDir = ""
	if err := os.RemoveAll(prev); err != nil {
		slog.Warn("Failed to remove previous backup", "path", prev, "error", err)
	}
	slog.Info("Promoted staging directory", "output", w.outputDir)
	return nil
}

// Abort removes the staging directory after a failed run.
func (w *Writer) Abort() {
	if w.stageDir == "" {
		return
	}
	dir := w.stageDir
	w.stageDir = ""
	if err := os.RemoveAll(dir); err != nil {
		slog.Warn("Failed to remove staging directory after abort", "staging", dir, "error", err)
	}
}

func copyFile(src, dst string) error {
	in, err := os.Open(filepath.Clean(src))
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(filepath.Clean(dst))
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
