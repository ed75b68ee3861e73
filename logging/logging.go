package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

const (
	maxLogSize = 1 * 1024 * 1024 // 1MB per file
	maxBackups = 5
)

// RotatingWriter is a size-bounded log sink. When the current file exceeds
// maxLogSize it is renamed into a numbered backup chain (.1 newest, .5
// oldest) and a fresh file is started.
type RotatingWriter struct {
	mu      sync.Mutex
	file    *os.File
	path    string
	size    int64
	maxSize int64
	backups int
}

func NewRotatingWriter(path string) (*RotatingWriter, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}

	info, _ := f.Stat()
	size := int64(0)
	if info != nil {
		size = info.Size()
	}

	return &RotatingWriter{
		file:    f,
		path:    path,
		size:    size,
		maxSize: maxLogSize,
		backups: maxBackups,
	}, nil
}

func (w *RotatingWriter) Write(p []byte) (n int, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	n, err = w.file.Write(p)
	w.size += int64(n)

	if w.size > w.maxSize {
		w.rotate()
	}

	return n, err
}

func (w *RotatingWriter) rotate() {
	w.file.Close()

	os.Remove(fmt.Sprintf("%s.%d", w.path, w.backups))
	for i := w.backups - 1; i >= 1; i-- {
		os.Rename(fmt.Sprintf("%s.%d", w.path, i), fmt.Sprintf("%s.%d", w.path, i+1))
	}
	os.Rename(w.path, w.path+".1")

	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return
	}

	w.file = f
	w.size = 0
}

func (w *RotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Close()
}

const timeFormat = "2006-01-02 15:04:05"

// New builds the process logger: leveled, writing the same human-readable
// timestamped format to stderr and to a rotating file at logPath. The caller
// owns the returned writer and closes it on exit.
func New(logPath, level string) (zerolog.Logger, *RotatingWriter, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	rw, err := NewRotatingWriter(logPath)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("open log file %s: %w", logPath, err)
	}

	console := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: timeFormat}
	file := zerolog.ConsoleWriter{Out: rw, NoColor: true, TimeFormat: timeFormat}

	logger := zerolog.New(zerolog.MultiLevelWriter(console, file)).
		Level(lvl).
		With().Timestamp().Logger()

	return logger, rw, nil
}
