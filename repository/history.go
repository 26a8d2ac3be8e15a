// Package repository provides persistence implementations for the domain
// repository interfaces.
package repository

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/chaitudev/lyra/domain/entities"
	"github.com/chaitudev/lyra/domain/repositories"
)

// FileHistory persists conversation exchanges as JSON lines, one exchange
// per line, appended to a single file. Reads scan the whole file; the
// history is small enough that this is fine.
type FileHistory struct {
	path   string
	logger *zap.Logger
	mu     sync.Mutex
}

// Ensure FileHistory implements the HistoryRepository interface
var _ repositories.HistoryRepository = (*FileHistory)(nil)

// NewFileHistory creates a file-backed history at the given path, creating
// parent directories as needed.
func NewFileHistory(path string, logger *zap.Logger) (*FileHistory, error) {
	if path == "" {
		return nil, fmt.Errorf("history path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}
	return &FileHistory{path: path, logger: logger}, nil
}

// Append writes one exchange to the end of the history file.
func (f *FileHistory) Append(ctx context.Context, exchange *entities.Exchange) error {
	if err := exchange.Validate(); err != nil {
		return fmt.Errorf("invalid exchange: %w", err)
	}

	line, err := json.Marshal(exchange)
	if err != nil {
		return fmt.Errorf("failed to encode exchange: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	file, err := os.OpenFile(f.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open history file: %w", err)
	}
	defer file.Close()

	if _, err := file.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("failed to write history file: %w", err)
	}

	f.logger.Debug("exchange recorded",
		zap.String("id", exchange.ID),
		zap.String("speaker", exchange.Speaker),
	)
	return nil
}

// Recent returns the most recent exchanges, newest last. A limit of zero
// or less returns everything.
func (f *FileHistory) Recent(ctx context.Context, limit int) ([]*entities.Exchange, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	exchanges, err := f.readAll()
	if err != nil {
		return nil, err
	}

	if limit > 0 && len(exchanges) > limit {
		exchanges = exchanges[len(exchanges)-limit:]
	}
	return exchanges, nil
}

// readAll scans the whole file. Callers hold f.mu.
func (f *FileHistory) readAll() ([]*entities.Exchange, error) {
	file, err := os.Open(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open history file: %w", err)
	}
	defer file.Close()

	var exchanges []*entities.Exchange
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var exchange entities.Exchange
		if err := json.Unmarshal(line, &exchange); err != nil {
			// A corrupt line should not poison the rest of the history.
			f.logger.Warn("skipping unreadable history line", zap.Error(err))
			continue
		}
		exchanges = append(exchanges, &exchange)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history file: %w", err)
	}
	return exchanges, nil
}

// Prune rewrites the history file keeping only the newest keep entries.
// It returns how many entries were removed.
func (f *FileHistory) Prune(ctx context.Context, keep int) (int, error) {
	if keep <= 0 {
		return 0, fmt.Errorf("keep must be positive")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	exchanges, err := f.readAll()
	if err != nil {
		return 0, err
	}
	if len(exchanges) <= keep {
		return 0, nil
	}

	removed := len(exchanges) - keep
	exchanges = exchanges[removed:]

	tmp := f.path + ".tmp"
	file, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, fmt.Errorf("failed to create temp history file: %w", err)
	}

	writer := bufio.NewWriter(file)
	for _, exchange := range exchanges {
		line, err := json.Marshal(exchange)
		if err != nil {
			file.Close()
			os.Remove(tmp)
			return 0, fmt.Errorf("failed to encode exchange: %w", err)
		}
		writer.Write(line)
		writer.WriteByte('\n')
	}
	if err := writer.Flush(); err != nil {
		file.Close()
		os.Remove(tmp)
		return 0, fmt.Errorf("failed to write temp history file: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(tmp)
		return 0, fmt.Errorf("failed to close temp history file: %w", err)
	}

	if err := os.Rename(tmp, f.path); err != nil {
		os.Remove(tmp)
		return 0, fmt.Errorf("failed to replace history file: %w", err)
	}

	f.logger.Info("history pruned",
		zap.Int("removed", removed),
		zap.Int("kept", keep),
	)
	return removed, nil
}
