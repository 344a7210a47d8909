package toml

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Subha2009/kamun-software/internal/domain"
	toml "github.com/pelletier/go-toml/v2"
)

const (
	rosterFileMode  = 0o600
	rosterDirMode   = 0o700
	tempFilePattern = ".roster-*.toml.tmp"
)

// Repository reads and writes the delegations a new session is seeded with.
// A missing file means the built-in roster.
type Repository struct {
	path string
	mu   *sync.RWMutex
}

var (
	lockRegistryMu sync.Mutex
	pathLockMap    = map[string]*sync.RWMutex{}
)

func NewRepository(path string) (*Repository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("roster path is empty")
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve roster path: %w", err)
	}
	absPath = filepath.Clean(absPath)

	return &Repository{path: absPath, mu: lockForPath(absPath)}, nil
}

func (r *Repository) Path() string {
	return r.path
}

// Load returns the configured delegations, or domain.DefaultDelegations when
// the file does not exist.
func (r *Repository) Load(ctx context.Context) ([]domain.Delegation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	file, found, err := r.readSchema()
	if err != nil {
		return nil, err
	}
	if !found {
		return append([]domain.Delegation(nil), domain.DefaultDelegations...), nil
	}

	delegations := make([]domain.Delegation, 0, len(file.Delegations))
	for _, entry := range file.Delegations {
		delegations = append(delegations, fromSchema(entry))
	}
	if err := validate(delegations); err != nil {
		return nil, fmt.Errorf("roster file %s: %w", r.path, err)
	}

	return delegations, nil
}

func (r *Repository) Save(ctx context.Context, delegations []domain.Delegation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validate(delegations); err != nil {
		return err
	}

	file := fileSchema{Delegations: make([]delegationSchema, 0, len(delegations))}
	for _, d := range delegations {
		file.Delegations = append(file.Delegations, toSchema(d))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.writeSchema(file)
}

func validate(delegations []domain.Delegation) error {
	v := domain.NewValidationError()
	if len(delegations) == 0 {
		v.Add("delegations", "must not be empty")
	}

	seen := make(map[string]struct{}, len(delegations))
	for i, d := range delegations {
		country := strings.ToLower(strings.TrimSpace(d.Country))
		if country == "" {
			v.Add(fmt.Sprintf("delegations[%d].country", i), "is required")
			continue
		}
		if _, ok := seen[country]; ok {
			v.Add(fmt.Sprintf("delegations[%d].country", i), fmt.Sprintf("%s is listed twice", d.Country))
		}
		seen[country] = struct{}{}
	}

	return v.Err()
}

func (r *Repository) readSchema() (fileSchema, bool, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fileSchema{}, false, nil
		}
		return fileSchema{}, false, fmt.Errorf("read roster file: %w", err)
	}

	var file fileSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return fileSchema{}, false, fmt.Errorf("decode roster file: %w", err)
	}
	if err := file.validateVersion(); err != nil {
		return fileSchema{}, false, err
	}
	file.applyDefaults()

	return file, true, nil
}

func (r *Repository) writeSchema(file fileSchema) error {
	file.applyDefaults()

	if err := os.MkdirAll(filepath.Dir(r.path), rosterDirMode); err != nil {
		return fmt.Errorf("create roster directory: %w", err)
	}

	data, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode roster file: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(r.path), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp roster file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp roster file: %w", err)
	}
	if err := tempFile.Chmod(rosterFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp roster file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp roster file: %w", err)
	}
	if err := os.Rename(tempName, r.path); err != nil {
		return fmt.Errorf("replace roster file: %w", err)
	}

	cleanup = false
	return nil
}

func lockForPath(path string) *sync.RWMutex {
	lockRegistryMu.Lock()
	defer lockRegistryMu.Unlock()

	if mu, ok := pathLockMap[path]; ok {
		return mu
	}

	mu := &sync.RWMutex{}
	pathLockMap[path] = mu
	return mu
}

func toSchema(d domain.Delegation) delegationSchema {
	return delegationSchema{
		Country: strings.TrimSpace(d.Country),
		Code:    strings.ToLower(strings.TrimSpace(d.Code)),
	}
}

func fromSchema(entry delegationSchema) domain.Delegation {
	return domain.Delegation{
		Country: strings.TrimSpace(entry.Country),
		Code:    strings.ToLower(strings.TrimSpace(entry.Code)),
	}
}
