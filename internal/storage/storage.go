// Package storage knows where frames live: <dir>/frame<N>.<ext>, N from 1.
package storage

import (
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/1F47E/go-bezier-renderer/internal/config"
	"github.com/1F47E/go-bezier-renderer/internal/logger"
)

// UploadExtensions are the file types accepted by Save.
var UploadExtensions = []string{"png", "jpg", "jpeg", "gif", "bmp"}

// DecodeError means a frame file is missing or is not a readable image.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("unable to process %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Hint explains the naming convention and the usual causes.
func (e *DecodeError) Hint() string {
	return "Image files should be named <DIRECTORY>/frame<INDEX>.<EXTENSION> where INDEX is the frame number " +
		"starting from 1 and DIRECTORY and EXTENSION are set with -f and -e (e.g. frames/frame1.png). Please check if:\n" +
		"\tthe files exist\n" +
		"\tthe files are all valid image files\n" +
		"\tthe name of the files matches the command line arguments\n" +
		"\tthe program has permission to read the files"
}

// ValidationError is an upload rejected before anything was written.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

var (
	ErrNoFile      = &ValidationError{Reason: "No file provided"}
	ErrNoFilename  = &ValidationError{Reason: "No file selected"}
	ErrInvalidType = &ValidationError{Reason: "Invalid file type. Use PNG, JPG, GIF, or BMP"}
	ErrFrameNumber = &ValidationError{Reason: "Frame number must be 1 or greater"}
)

type Store struct {
	Dir string
	Ext string
}

func New(cfg config.Config) *Store {
	return &Store{Dir: cfg.FrameDir, Ext: cfg.FileExt}
}

// FrameName is the file name of frame n (1-based).
func (s *Store) FrameName(n int) string {
	return fmt.Sprintf("%s%d.%s", config.FramePrefix, n, s.Ext)
}

func (s *Store) FramePath(n int) string {
	return filepath.Join(s.Dir, s.FrameName(n))
}

// Count is the number of non-hidden entries in the frame directory,
// whatever their names.
func (s *Store) Count() (int, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return 0, fmt.Errorf("reading frames dir: %w", err)
	}
	n := 0
	for _, e := range entries {
		if !strings.HasPrefix(e.Name(), ".") {
			n++
		}
	}
	return n, nil
}

// List returns the sorted names of non-hidden entries starting with "frame".
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, fmt.Errorf("reading frames dir: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") || !strings.HasPrefix(name, config.FramePrefix) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Decode opens frame idx (0-based).
func (s *Store) Decode(idx int) (image.Image, error) {
	return DecodeFile(s.FramePath(idx + 1))
}

func DecodeFile(path string) (image.Image, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	return img, nil
}

// ValidateUpload checks the client file name and the target frame number.
func ValidateUpload(filename string, frame int) error {
	if filename == "" {
		return ErrNoFilename
	}
	ext := ""
	if i := strings.LastIndex(filename, "."); i >= 0 {
		ext = strings.ToLower(filename[i+1:])
	}
	allowed := false
	for _, e := range UploadExtensions {
		if ext == e {
			allowed = true
			break
		}
	}
	if !allowed {
		return ErrInvalidType
	}
	if frame < 1 {
		return ErrFrameNumber
	}
	return nil
}

// Save writes r as frame n. The content goes to a temp file first and is
// renamed into place, readers never see a partial frame.
func (s *Store) Save(n int, r io.Reader) (string, error) {
	log := logger.Scope("storage")
	if n < 1 {
		return "", ErrFrameNumber
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("creating frames dir: %w", err)
	}

	tmp, err := os.CreateTemp(s.Dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}

	written, err := io.Copy(tmp, r)
	if err != nil {
		cleanup()
		return "", fmt.Errorf("writing upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("closing upload: %w", err)
	}

	name := s.FrameName(n)
	if err := os.Rename(tmp.Name(), filepath.Join(s.Dir, name)); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("storing %s: %w", name, err)
	}
	log.Debugf("saved %s (%d bytes)", name, written)
	return name, nil
}
