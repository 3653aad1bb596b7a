package cache

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// PaymentMethod representa un método de pago en el cache
type PaymentMethod struct {
	Code string
	Name string
}

// PaymentMethodCache cache en memoria de los métodos de pago aceptados
// Se carga una vez al arrancar; las búsquedas no distinguen mayúsculas
type PaymentMethodCache struct {
	methods map[string]PaymentMethod
	mu      sync.RWMutex
	logger  *zap.Logger
}

// NewPaymentMethodCache crea un nuevo cache de métodos de pago
func NewPaymentMethodCache(logger *zap.Logger) *PaymentMethodCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentMethodCache{
		methods: make(map[string]PaymentMethod),
		logger:  logger,
	}
}

// LoadOptions carga los métodos configurados
func (c *PaymentMethodCache) LoadOptions(names []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		c.methods[normalize(name)] = PaymentMethod{Code: normalize(name), Name: name}
	}
	c.logger.Info("payment methods loaded from config", zap.Int("count", len(c.methods)))
}

// LoadFromDB carga los métodos de pago activos desde la tabla payment_methods
func (c *PaymentMethodCache) LoadFromDB(ctx context.Context, db *sql.DB) error {
	query := `
		SELECT code, name
		FROM payment_methods
		WHERE is_active = true
	`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		c.logger.Warn("could not load payment methods", zap.Error(err))
		return fmt.Errorf("error querying payment_methods: %w", err)
	}
	defer rows.Close()

	c.mu.Lock()
	defer c.mu.Unlock()

	count := 0
	for rows.Next() {
		var pm PaymentMethod
		if err := rows.Scan(&pm.Code, &pm.Name); err != nil {
			c.logger.Warn("error scanning payment method", zap.Error(err))
			continue
		}
		c.methods[normalize(pm.Name)] = pm
		count++
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating payment_methods: %w", err)
	}

	c.logger.Info("payment methods loaded from database", zap.Int("count", count))
	return nil
}

// Get obtiene un método de pago por nombre
func (c *PaymentMethodCache) Get(name string) (PaymentMethod, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	pm, ok := c.methods[normalize(name)]
	return pm, ok
}

// IsKnown indica si el método de pago es aceptado
// Un cache vacío acepta cualquier método
func (c *PaymentMethodCache) IsKnown(name string) bool {
	c.mu.RLock()
	empty := len(c.methods) == 0
	c.mu.RUnlock()
	if empty {
		return true
	}
	_, ok := c.Get(name)
	return ok
}

// Names nombres de los métodos ordenados alfabéticamente
func (c *PaymentMethodCache) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.methods))
	for _, pm := range c.methods {
		names = append(names, pm.Name)
	}
	sort.Strings(names)
	return names
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
