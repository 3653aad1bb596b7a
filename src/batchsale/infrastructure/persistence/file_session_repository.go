package persistence

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"storepos/src/batchsale/domain/entity"
	"storepos/src/batchsale/domain/port"
)

// FileSessionRepository implementa SessionRepository con un archivo JSON por clave
// Equivalente local del almacenamiento del navegador
type FileSessionRepository struct {
	dir string
	mu  sync.Mutex
}

// NewFileSessionRepository crea una nueva instancia del repositorio
func NewFileSessionRepository(dir string) port.SessionRepository {
	return &FileSessionRepository{dir: dir}
}

func (r *FileSessionRepository) path(key string) string {
	return filepath.Join(r.dir, key+".json")
}

// Load lee la sesión guardada
func (r *FileSessionRepository) Load(ctx context.Context, key string) (*entity.BatchSale, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := os.ReadFile(r.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, entity.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error reading session file: %w", err)
	}
	return decodeSession(data)
}

// Save escribe la sesión de forma atómica (archivo temporal + rename)
func (r *FileSessionRepository) Save(ctx context.Context, key string, sale *entity.BatchSale) error {
	data, err := encodeSession(sale)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("error creating session dir: %w", err)
	}

	tmp, err := os.CreateTemp(r.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("error creating temp session file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("error writing session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("error closing session file: %w", err)
	}
	if err := os.Rename(tmp.Name(), r.path(key)); err != nil {
		return fmt.Errorf("error replacing session file: %w", err)
	}
	return nil
}

// Delete borra la sesión guardada
func (r *FileSessionRepository) Delete(ctx context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	err := os.Remove(r.path(key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("error deleting session file: %w", err)
	}
	return nil
}
