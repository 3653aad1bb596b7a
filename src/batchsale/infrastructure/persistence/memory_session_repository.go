package persistence

import (
	"context"
	"sync"

	"storepos/src/batchsale/domain/entity"
)

// MemorySessionRepository guarda el documento serializado en memoria
// Pasa por el mismo encode/decode que los demás stores; se pierde al reiniciar
type MemorySessionRepository struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

// NewMemorySessionRepository crea una nueva instancia del repositorio
func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{docs: make(map[string][]byte)}
}

// Load lee la sesión guardada
func (r *MemorySessionRepository) Load(ctx context.Context, key string) (*entity.BatchSale, error) {
	r.mu.RLock()
	data, ok := r.docs[key]
	r.mu.RUnlock()
	if !ok {
		return nil, entity.ErrSessionNotFound
	}
	return decodeSession(data)
}

// Save reemplaza la sesión guardada
func (r *MemorySessionRepository) Save(ctx context.Context, key string, sale *entity.BatchSale) error {
	data, err := encodeSession(sale)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.docs[key] = data
	r.mu.Unlock()
	return nil
}

// Delete borra la sesión guardada
func (r *MemorySessionRepository) Delete(ctx context.Context, key string) error {
	r.mu.Lock()
	delete(r.docs, key)
	r.mu.Unlock()
	return nil
}

// Has indica si hay una sesión guardada bajo la clave
func (r *MemorySessionRepository) Has(key string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.docs[key]
	return ok
}
