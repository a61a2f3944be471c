// Package logs provides the application logger and log file management with
// rotation for onboard.
package logs

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/nchapman/onboard/internal/config"
)

const (
	// MaxRotations is the number of rotated files to keep (.log.1, .log.2)
	MaxRotations = 2
	// MaxFileSize is the maximum size of a log file before rotation (10MB)
	MaxFileSize = 10 * 1024 * 1024
)

var (
	unsafeCharsRe     = regexp.MustCompile(`[^a-z0-9._-]`)
	multipleHyphensRe = regexp.MustCompile(`-+`)
)

// SanitizeModelName converts a model name to a safe filename.
// Example: "library/Llama3:8b-instruct" -> "llama3-8b-instruct"
func SanitizeModelName(fullName string) string {
	name := fullName
	if idx := strings.LastIndex(fullName, "/"); idx >= 0 {
		name = fullName[idx+1:]
	}

	name = strings.ReplaceAll(name, ":", "-")
	name = strings.ToLower(name)
	name = unsafeCharsRe.ReplaceAllString(name, "-")
	name = multipleHyphensRe.ReplaceAllString(name, "-")

	return strings.Trim(name, "-")
}

// AppLogPath returns the path of the main application log.
func AppLogPath() string {
	return filepath.Join(config.LogsPath(), "onboard.log")
}

// PullLogPath returns the log file path for pulls of the given model.
func PullLogPath(modelName string) string {
	sanitized := SanitizeModelName(modelName)
	if sanitized == "" {
		sanitized = "pull"
	}
	return filepath.Join(config.LogsPath(), "pull-"+sanitized+".log")
}

// rotateLogs rotates log files: .log -> .log.1 -> .log.2
// Keeps MaxRotations backup files plus the current active log.
func rotateLogs(basePath string) error {
	// Delete the oldest rotated file
	oldestPath := fmt.Sprintf("%s.%d", basePath, MaxRotations)
	os.Remove(oldestPath)

	// Rotate existing files
	for i := MaxRotations; i >= 1; i-- {
		oldPath := basePath
		if i > 1 {
			oldPath = fmt.Sprintf("%s.%d", basePath, i-1)
		}
		newPath := fmt.Sprintf("%s.%d", basePath, i)

		// Rename if the old file exists
		if _, err := os.Stat(oldPath); err == nil {
			if err := os.Rename(oldPath, newPath); err != nil {
				return err
			}
		}
	}

	return nil
}

// RotatingWriter wraps a file and automatically rotates when size limit is exceeded.
type RotatingWriter struct {
	mu           sync.Mutex
	basePath     string
	file         *os.File
	bytesWritten int64
}

// NewRotatingWriter rotates any existing log at basePath and opens a fresh
// one. Used for per-pull logs where each run gets its own file.
func NewRotatingWriter(basePath string) (*RotatingWriter, error) {
	if err := os.MkdirAll(filepath.Dir(basePath), 0755); err != nil {
		return nil, err
	}

	if err := rotateLogs(basePath); err != nil {
		return nil, err
	}

	file, err := os.OpenFile(basePath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, err
	}

	return &RotatingWriter{basePath: basePath, file: file}, nil
}

// OpenRotatingWriter appends to an existing log at basePath, rotating only
// once it grows past MaxFileSize. Used for the application log, which is
// shared by every invocation.
func OpenRotatingWriter(basePath string) (*RotatingWriter, error) {
	if err := os.MkdirAll(filepath.Dir(basePath), 0755); err != nil {
		return nil, err
	}

	file, err := os.OpenFile(basePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}

	return &RotatingWriter{basePath: basePath, file: file, bytesWritten: info.Size()}, nil
}

// Write writes data to the log file, rotating if necessary.
func (w *RotatingWriter) Write(p []byte) (n int, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return 0, os.ErrClosed
	}

	if w.bytesWritten > 0 && w.bytesWritten+int64(len(p)) > MaxFileSize {
		if err := w.rotateUnlocked(); err != nil {
			return 0, err
		}
	}

	n, err = w.file.Write(p)
	w.bytesWritten += int64(n)
	return n, err
}

// Close closes the underlying file.
func (w *RotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}

// rotateUnlocked swaps the active file for a fresh one. Caller must hold w.mu.
func (w *RotatingWriter) rotateUnlocked() error {
	w.file.Close()

	if err := rotateLogs(w.basePath); err != nil {
		return err
	}

	file, err := os.OpenFile(w.basePath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		w.file = nil
		return err
	}

	w.file = file
	w.bytesWritten = 0
	return nil
}

// Path returns the base path of the log file.
func (w *RotatingWriter) Path() string {
	return w.basePath
}
