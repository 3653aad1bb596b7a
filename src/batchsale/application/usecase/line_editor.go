package usecase

import (
	"strconv"

	"storepos/src/batchsale/application/request"
	"storepos/src/batchsale/application/response"
	"storepos/src/batchsale/domain/entity"
)

// SelectItem elige el item de la línea candidata
// El precio pasa a ser el del snapshot, pisando lo tipeado antes
func (s *Session) SelectItem(stockID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == StatusSubmitting {
		return entity.ErrSubmissionInProgress
	}
	return s.selectItemLocked(stockID)
}

// SetQuantity guarda la cantidad tal cual se tipeó
func (s *Session) SetQuantity(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == StatusSubmitting {
		return entity.ErrSubmissionInProgress
	}
	s.candidate.Quantity = text
	return nil
}

// SetPrice guarda el precio tal cual se tipeó
func (s *Session) SetPrice(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == StatusSubmitting {
		return entity.ErrSubmissionInProgress
	}
	s.candidate.Price = text
	return nil
}

// ApplyCandidate aplica una edición completa: item, cantidad y precio en ese orden
func (s *Session) ApplyCandidate(req request.CandidateRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == StatusSubmitting {
		return entity.ErrSubmissionInProgress
	}

	if req.StockID != nil {
		if *req.StockID == "" {
			s.candidate.StockID = ""
		} else if err := s.selectItemLocked(*req.StockID); err != nil {
			return err
		}
	}
	if req.Quantity != nil {
		s.candidate.Quantity = string(*req.Quantity)
	}
	if req.Price != nil {
		s.candidate.Price = string(*req.Price)
	}
	return nil
}

// Candidate copia de la línea en edición
func (s *Session) Candidate() entity.CandidateLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.candidate
}

// SearchItems filtra el snapshot por nombre marcando los ya confirmados
func (s *Session) SearchItems(term string) response.StockResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	resp := response.StockResponse{
		Status: string(s.snapshotStatus),
		Items:  []response.StockOption{},
	}
	if s.snapshotErr != nil {
		resp.Error = s.snapshotErr.Error()
	}
	for _, item := range s.snapshot.Search(term) {
		resp.Items = append(resp.Items, response.StockOption{
			StockItem:       item,
			AlreadySelected: s.sale.Contains(item.ID),
		})
	}
	return resp
}

func (s *Session) selectItemLocked(stockID string) error {
	if s.sale.Contains(stockID) {
		return entity.ErrItemAlreadySelected
	}
	entry, ok := s.snapshot.Find(stockID)
	if !ok {
		return entity.ErrStockItemNotFound
	}
	s.candidate.StockID = entry.ID
	s.candidate.Price = entry.Price.String()
	return nil
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
