// Package output persists compilation units as one file per declared type and
// reads existing unit directories back.
package output

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// ErrInvalidName is returned when a declared name cannot be used as a file name.
var ErrInvalidName = errors.New("output: invalid unit name")

var unitNameRe = regexp.MustCompile(`^[A-Za-z_$][\w$]*$`)

const (
	permFile os.FileMode = 0o644
	permDir  os.FileMode = 0o755
)

// Dir writes units under a single root, named <name><ext>.
type Dir struct {
	root string
	ext  string
}

func NewDir(root, ext string) (*Dir, error) {
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("output root cannot be empty")
	}
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return &Dir{root: root, ext: ext}, nil
}

func (d *Dir) Root() string { return d.root }

// PathFor returns the destination path for name without touching the disk.
func (d *Dir) PathFor(name string) (string, error) {
	if !unitNameRe.MatchString(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(d.root, name+d.ext), nil
}

// WriteUnit atomically replaces the file for name with text and returns its
// path. The written file always ends with exactly one newline.
func (d *Dir) WriteUnit(name, text string) (string, error) {
	dest, err := d.PathFor(name)
	if err != nil {
		return "", err
	}
	if err := WriteFile(dest, text); err != nil {
		return "", err
	}
	return dest, nil
}

// WriteFile atomically replaces the file at path with text, creating its
// directory. Like WriteUnit it ends the file with exactly one newline.
func WriteFile(path, text string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("output path cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), permDir); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	body := strings.TrimRight(text, "\r\n") + "\n"
	if err := writeAtomic(path, []byte(body)); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// writeAtomic writes to a temp file in the destination directory and renames
// it over dest.
func writeAtomic(dest string, data []byte) error {
	dir := filepath.Dir(dest)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	_ = os.Chmod(tmpPath, permFile)

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}

// File is one unit read back from disk.
type File struct {
	Name    string
	Path    string
	Content string
}

// ReadUnits returns every regular file in dir with extension ext, sorted by
// name. Subdirectories are not descended into.
func ReadUnits(dir, ext string) ([]File, error) {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read units dir: %w", err)
	}
	var files []File
	for _, e := range entries {
		if !e.Type().IsRegular() || filepath.Ext(e.Name()) != ext {
			continue
		}
		p := filepath.Join(dir, e.Name())
		b, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read unit %s: %w", p, err)
		}
		files = append(files, File{
			Name:    strings.TrimSuffix(e.Name(), ext),
			Path:    p,
			Content: string(b),
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// Join concatenates file contents separated by a blank line.
func Join(files []File) string {
	parts := make([]string, 0, len(files))
	for _, f := range files {
		parts = append(parts, strings.TrimSpace(f.Content))
	}
	return strings.Join(parts, "\n\n")
}
