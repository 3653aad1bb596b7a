package port

import (
	"context"

	"storepos/src/batchsale/domain/entity"
)

// SessionRepository define el contrato para persistir la venta por lote en curso
// Una sola entrada por clave; sin historial
type SessionRepository interface {
	// Load retorna entity.ErrSessionNotFound si no hay nada guardado
	Load(ctx context.Context, key string) (*entity.BatchSale, error)

	// Save reemplaza la entrada guardada
	Save(ctx context.Context, key string, sale *entity.BatchSale) error

	// Delete borra la entrada; no falla si no existe
	Delete(ctx context.Context, key string) error
}

// PaymentMethodCatalog métodos de pago aceptados en el guardado final
type PaymentMethodCatalog interface {
	IsKnown(name string) bool
	Names() []string
}
