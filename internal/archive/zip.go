// Package archive writes zip snapshots of a directory tree.
package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"

	"github.com/dotcommander/versioneer/internal/models"
)

// Options configures Backup.
type Options struct {
	// Source is the directory whose contents are archived.
	Source string
	// Output is the zip file to create. An existing file is replaced.
	Output string
	// Exclude holds glob patterns matched against the slash-separated path
	// relative to Source and against the base name. A matching directory is
	// skipped with everything below it.
	Exclude []string
	// Skip holds absolute paths that are never archived.
	Skip []string
	// Progress, when set, is called with each entry name before it is written.
	Progress func(name string)
}

// Result describes a written archive.
type Result struct {
	Path  string `json:"path"`
	Files int    `json:"file_count"`
	Bytes int64  `json:"byte_count"`
}

// ArchivePath returns <parent>/<base>_<version>.zip for a project directory.
func ArchivePath(projectDir string, v models.Version) string {
	clean := filepath.Clean(projectDir)
	return filepath.Join(filepath.Dir(clean), filepath.Base(clean)+"_"+v.String()+".zip")
}

// Backup archives opts.Source into opts.Output. The zip is assembled in a
// temporary file next to Output and renamed into place only after it is
// complete; on error no file is left at Output.
func Backup(ctx context.Context, opts Options) (*Result, error) {
	if opts.Source == "" {
		return nil, errors.New("archive source is required")
	}
	if opts.Output == "" {
		return nil, errors.New("archive output is required")
	}
	for _, p := range opts.Exclude {
		if _, err := filepath.Match(p, ""); err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", p, err)
		}
	}

	source, err := filepath.Abs(opts.Source)
	if err != nil {
		return nil, fmt.Errorf("resolve archive source: %w", err)
	}
	output, err := filepath.Abs(opts.Output)
	if err != nil {
		return nil, fmt.Errorf("resolve archive output: %w", err)
	}
	source = resolveLinks(source)
	output = filepath.Join(resolveLinks(filepath.Dir(output)), filepath.Base(output))
	info, err := os.Stat(source)
	if err != nil {
		return nil, fmt.Errorf("archive source: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("archive source %s is not a directory", source)
	}

	tmp, err := os.CreateTemp(filepath.Dir(output), "."+filepath.Base(output)+".*.tmp")
	if err != nil {
		return nil, fmt.Errorf("create archive: %w", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	skip := map[string]struct{}{output: {}, tmpPath: {}}
	for _, p := range opts.Skip {
		if abs, err := filepath.Abs(p); err == nil {
			skip[filepath.Join(resolveLinks(filepath.Dir(abs)), filepath.Base(abs))] = struct{}{}
		}
	}

	w := &walker{
		ctx:      ctx,
		source:   source,
		exclude:  opts.Exclude,
		skip:     skip,
		progress: opts.Progress,
		zw:       zip.NewWriter(tmp),
		result:   &Result{Path: output},
	}
	if err := filepath.WalkDir(source, w.visit); err != nil {
		_ = w.zw.Close()
		return nil, err
	}
	if err := w.zw.Close(); err != nil {
		return nil, fmt.Errorf("finish archive: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("close archive: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return nil, fmt.Errorf("chmod archive: %w", err)
	}
	if err := os.Rename(tmpPath, output); err != nil {
		return nil, fmt.Errorf("place archive %s: %w", output, err)
	}
	committed = true
	return w.result, nil
}

// resolveLinks returns path with symlinks evaluated, or path itself when that fails.
func resolveLinks(path string) string {
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		return resolved
	}
	return path
}

type walker struct {
	ctx      context.Context
	source   string
	exclude  []string
	skip     map[string]struct{}
	progress func(string)
	zw       *zip.Writer
	result   *Result
}

func (w *walker) visit(path string, d fs.DirEntry, walkErr error) error {
	if walkErr != nil {
		return walkErr
	}
	if err := w.ctx.Err(); err != nil {
		return err
	}
	if path == w.source {
		return nil
	}
	if _, ok := w.skip[path]; ok {
		if d.IsDir() {
			return filepath.SkipDir
		}
		return nil
	}

	rel, err := filepath.Rel(w.source, path)
	if err != nil {
		return err
	}
	name := filepath.ToSlash(rel)
	if w.excluded(name) {
		if d.IsDir() {
			return filepath.SkipDir
		}
		return nil
	}

	switch {
	case d.IsDir():
		info, err := d.Info()
		if err != nil {
			return err
		}
		return w.addDir(name, info)
	case d.Type()&fs.ModeSymlink != 0:
		// Symlinked files are archived by content; symlinked directories are not descended.
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			return nil
		}
		return w.addFile(path, name, info)
	case d.Type().IsRegular():
		info, err := d.Info()
		if err != nil {
			return err
		}
		return w.addFile(path, name, info)
	default:
		return nil
	}
}

func (w *walker) excluded(name string) bool {
	base := name
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		base = name[i+1:]
	}
	for _, p := range w.exclude {
		if ok, _ := filepath.Match(p, name); ok {
			return true
		}
		if ok, _ := filepath.Match(p, base); ok {
			return true
		}
	}
	return false
}

func (w *walker) addDir(name string, info fs.FileInfo) error {
	hdr, err := zip.FileInfoHeader(info)
	if err != nil {
		return fmt.Errorf("zip header %s: %w", name, err)
	}
	hdr.Name = name + "/"
	hdr.Method = zip.Store
	if w.progress != nil {
		w.progress(hdr.Name)
	}
	if _, err := w.zw.CreateHeader(hdr); err != nil {
		return fmt.Errorf("zip entry %s: %w", name, err)
	}
	return nil
}

func (w *walker) addFile(path, name string, info fs.FileInfo) error {
	hdr, err := zip.FileInfoHeader(info)
	if err != nil {
		return fmt.Errorf("zip header %s: %w", name, err)
	}
	hdr.Name = name
	hdr.Method = zip.Deflate
	if w.progress != nil {
		w.progress(name)
	}

	dst, err := w.zw.CreateHeader(hdr)
	if err != nil {
		return fmt.Errorf("zip entry %s: %w", name, err)
	}
	src, err := os.Open(path) //nolint:gosec // G304: path comes from walking the archive source
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	n, err := io.Copy(dst, src)
	_ = src.Close()
	if err != nil {
		return fmt.Errorf("archive %s: %w", path, err)
	}
	w.result.Files++
	w.result.Bytes += n
	return nil
}
