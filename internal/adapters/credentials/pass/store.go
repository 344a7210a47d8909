// Package pass keeps credentials in the pass password store.
package pass

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path"
	"strings"

	"github.com/Subha2009/kamun-software/internal/domain"
	"github.com/Subha2009/kamun-software/internal/ports"
)

const (
	DefaultPrefix = "kamun"
	missingEntry  = "is not in the password store"
)

var ErrUnavailable = errors.New("pass command unavailable")

type runFunc func(ctx context.Context, input string, args ...string) (stdout string, stderr string, err error)

// Store maps each credential key to the entry prefix/<key>. Only the first
// line of an entry is the credential, as pass itself treats it.
type Store struct {
	prefix string
	run    runFunc
}

var _ ports.SecretStore = (*Store)(nil)

func NewStore(prefix string) *Store {
	if strings.TrimSpace(prefix) == "" {
		prefix = DefaultPrefix
	}
	return &Store{prefix: prefix, run: runPass}
}

func (s *Store) Put(ctx context.Context, key string, value string) error {
	_, err := s.call(ctx, key, value+"\n", "insert", "--multiline", "--force")
	return err
}

// Get returns domain.ErrCacheMiss when the entry does not exist.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	out, err := s.call(ctx, key, "", "show")
	if err != nil {
		return "", err
	}

	first, _, _ := strings.Cut(out, "\n")
	return strings.TrimRight(first, "\r"), nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.call(ctx, key, "", "rm", "--force")
	return err
}

// call runs `pass <verb> [flags] <entry>` and classifies the failure.
func (s *Store) call(ctx context.Context, key, input, verb string, flags ...string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	key = strings.TrimSpace(key)
	if key == "" || strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid credential key %q", key)
	}
	entry := path.Join(s.prefix, key)

	args := append(append([]string{verb}, flags...), entry)
	stdout, stderr, err := s.run(ctx, input, args...)
	switch {
	case err == nil:
		return stdout, nil
	case strings.Contains(stderr, missingEntry):
		return "", fmt.Errorf("pass entry %q: %w", entry, domain.ErrCacheMiss)
	case stderr != "":
		return "", fmt.Errorf("pass %s %q: %w: %s", verb, entry, err, stderr)
	default:
		return "", fmt.Errorf("pass %s %q: %w", verb, entry, err)
	}
}

func runPass(ctx context.Context, input string, args ...string) (string, string, error) {
	bin, err := exec.LookPath("pass")
	if errors.Is(err, exec.ErrNotFound) {
		return "", "", ErrUnavailable
	}
	if err != nil {
		return "", "", fmt.Errorf("locate pass command: %w", err)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stdin = strings.NewReader(input)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()
	return stdout.String(), strings.TrimSpace(stderr.String()), err
}
