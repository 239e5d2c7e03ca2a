package rounds

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/mcoot/invisiblewalls/internal/model"
	"github.com/mcoot/invisiblewalls/internal/storage"
)

// Service holds the campaign round table. It starts with the default table
// and can be replaced from a file or from storage.
type Service struct {
	storage storage.Storage
	logger  *slog.Logger

	mu    sync.RWMutex
	table model.RoundTable
}

// New creates a new round table Service
func New(storage storage.Storage, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		logger:  logger.With(slog.String("component", "rounds")),
		table:   model.DefaultRoundTable(),
	}
}

// LoadFromStorage replaces the table with the one persisted in storage
func (s *Service) LoadFromStorage(ctx context.Context) error {
	table, err := s.storage.GetRoundTable(ctx)
	if err != nil {
		return err
	}
	return s.set(table)
}

// LoadFromFile reads a table from a file and persists it. Each non-empty
// line holds "<size> <keys>"; text after '#' is ignored.
func (s *Service) LoadFromFile(ctx context.Context, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	table, err := ParseTable(file)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return s.LoadTable(ctx, table)
}

// LoadTable validates, persists and activates a table
func (s *Service) LoadTable(ctx context.Context, table model.RoundTable) error {
	if err := table.Validate(); err != nil {
		return err
	}
	if err := s.storage.SaveRoundTable(ctx, table); err != nil {
		return err
	}
	return s.set(table)
}

func (s *Service) set(table model.RoundTable) error {
	if err := table.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	s.table = table.Clone()
	s.mu.Unlock()

	s.logger.Info("round table loaded", slog.Int("rounds", len(table)))
	return nil
}

// Table returns a copy of the active table
func (s *Service) Table() model.RoundTable {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.table.Clone()
}

// Round returns the config for round index i
func (s *Service) Round(i int) (model.RoundConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.table.Round(i)
}

// Count returns the number of rounds in a campaign
func (s *Service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.table)
}

// ParseTable reads a round table in "<size> <keys>" line format
func ParseTable(r io.Reader) (model.RoundTable, error) {
	var table model.RoundTable
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 2 {
			return nil, fmt.Errorf("%w: line %d: want \"<size> <keys>\"", model.ErrInvalidRoundTable, lineNo)
		}
		size, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: bad size %q", model.ErrInvalidRoundTable, lineNo, fields[0])
		}
		keys, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: bad key count %q", model.ErrInvalidRoundTable, lineNo, fields[1])
		}
		table = append(table, model.RoundConfig{Size: size, KeysRequired: keys})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if err := table.Validate(); err != nil {
		return nil, err
	}
	return table, nil
}
