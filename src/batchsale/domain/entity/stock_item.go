package entity

import (
	"strings"

	"github.com/shopspring/decimal"
)

// StockItem representa un item vendible del snapshot de stock de la tienda
// Los nombres JSON siguen el contrato del API remoto (Curent_stock incluido)
type StockItem struct {
	ID           string          `json:"id"`
	Name         string          `json:"Name"`
	Price        decimal.Decimal `json:"Price"`
	CurentStock  int             `json:"Curent_stock"`
	RestockLevel int             `json:"Restock_level"`
}

// IsLowStock indica si un nivel restante cae por debajo del umbral de reposición
func (s StockItem) IsLowStock(remaining int) bool {
	return remaining < s.RestockLevel
}

// LowStockMessage mensaje de la notificación de stock bajo
func (s StockItem) LowStockMessage() string {
	return s.Name + " is running low on stock."
}

// StockSnapshot lista de items vendibles cargada una vez por sesión
// No es segura para uso concurrente: la Session la protege con su mutex
type StockSnapshot struct {
	items []StockItem
	index map[string]int
}

// NewStockSnapshot crea un snapshot a partir de la respuesta del API
func NewStockSnapshot(items []StockItem) *StockSnapshot {
	s := &StockSnapshot{
		items: make([]StockItem, len(items)),
		index: make(map[string]int, len(items)),
	}
	copy(s.items, items)
	for i, item := range s.items {
		s.index[item.ID] = i
	}
	return s
}

// Find busca un item por id
func (s *StockSnapshot) Find(id string) (StockItem, bool) {
	if s == nil {
		return StockItem{}, false
	}
	i, ok := s.index[id]
	if !ok {
		return StockItem{}, false
	}
	return s.items[i], true
}

// Replace actualiza la copia local de un item (por ejemplo tras un commit)
func (s *StockSnapshot) Replace(item StockItem) {
	if i, ok := s.index[item.ID]; ok {
		s.items[i] = item
		return
	}
	s.index[item.ID] = len(s.items)
	s.items = append(s.items, item)
}

// Items retorna una copia de los items en el orden del API
func (s *StockSnapshot) Items() []StockItem {
	if s == nil {
		return nil
	}
	out := make([]StockItem, len(s.items))
	copy(out, s.items)
	return out
}

// Search filtra por nombre (substring, sin distinguir mayúsculas)
func (s *StockSnapshot) Search(term string) []StockItem {
	if s == nil {
		return nil
	}
	term = strings.ToLower(strings.TrimSpace(term))
	var out []StockItem
	for _, item := range s.items {
		if term == "" || strings.Contains(strings.ToLower(item.Name), term) {
			out = append(out, item)
		}
	}
	return out
}

// Len cantidad de items del snapshot
func (s *StockSnapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.items)
}
