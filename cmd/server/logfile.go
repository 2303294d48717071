package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const logDateLayout = "2006-01-02"

// dailyLogWriter appends to storage/logs/app-YYYY-MM-DD.log, switching files
// on the first write of a new day. Files older than the retention window
// (at most seven days) are pruned on every switch.
type dailyLogWriter struct {
	mu        sync.Mutex
	dir       string
	retention int
	now       func() time.Time
	date      string
	file      *os.File
}

func newDailyLogWriter(dir string, retentionDays int) (*dailyLogWriter, error) {
	if retentionDays < 1 || retentionDays > 7 {
		retentionDays = 7
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	w := &dailyLogWriter{dir: dir, retention: retentionDays, now: time.Now}
	if err := w.rotate(w.now().Format(logDateLayout)); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *dailyLogWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if date := w.now().Format(logDateLayout); date != w.date {
		if err := w.rotate(date); err != nil {
			return 0, err
		}
	}
	return w.file.Write(p)
}

func (w *dailyLogWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}

func (w *dailyLogWriter) rotate(date string) error {
	name := filepath.Join(w.dir, fmt.Sprintf("app-%s.log", date))
	file, err := os.OpenFile(name, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if w.file != nil {
		_ = w.file.Close()
	}
	w.file = file
	w.date = date
	w.prune()
	return nil
}

// prune keeps today's file plus retention-1 previous days.
func (w *dailyLogWriter) prune() {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return
	}
	current, err := time.Parse(logDateLayout, w.date)
	if err != nil {
		return
	}
	oldest := current.AddDate(0, 0, -(w.retention - 1))
	for _, entry := range entries {
		name := entry.Name()
		if !entry.Type().IsRegular() || !strings.HasPrefix(name, "app-") || !strings.HasSuffix(name, ".log") {
			continue
		}
		date, err := time.Parse(logDateLayout, strings.TrimSuffix(strings.TrimPrefix(name, "app-"), ".log"))
		if err == nil && date.Before(oldest) {
			_ = os.Remove(filepath.Join(w.dir, name))
		}
	}
}
