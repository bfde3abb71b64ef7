package credstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/steve-ongera/amazon/internal/domain"
)

// File persists the credential pair as a JSON document on disk, the durable
// storage for single-user clients (CLI, desktop).
type File struct {
	mu   sync.Mutex
	path string
}

// NewFile creates a file-backed store at the given path. The parent directory
// is created on first save.
func NewFile(path string) *File {
	return &File{path: path}
}

type fileCreds struct {
	Access  string `json:"access_token"`
	Refresh string `json:"refresh_token"`
}

func (f *File) Load(_ context.Context) (domain.TokenPair, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.TokenPair{}, nil
		}
		return domain.TokenPair{}, fmt.Errorf("read credentials: %w", err)
	}

	var creds fileCreds
	if err := json.Unmarshal(data, &creds); err != nil {
		// A corrupt file is treated as logged out rather than a fatal error.
		return domain.TokenPair{}, nil
	}
	return domain.TokenPair{Access: creds.Access, Refresh: creds.Refresh}, nil
}

func (f *File) Save(_ context.Context, pair domain.TokenPair) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.write(fileCreds{Access: pair.Access, Refresh: pair.Refresh})
}

func (f *File) SaveAccess(ctx context.Context, access string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	var creds fileCreds
	if data, err := os.ReadFile(f.path); err == nil {
		_ = json.Unmarshal(data, &creds)
	}
	creds.Access = access
	return f.write(creds)
}

func (f *File) Clear(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove credentials: %w", err)
	}
	return nil
}

func (f *File) write(creds fileCreds) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("create credentials dir: %w", err)
	}

	data, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("encode credentials: %w", err)
	}

	// Tokens are secrets; keep the file owner-only.
	if err := os.WriteFile(f.path, data, 0o600); err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}
	return nil
}
