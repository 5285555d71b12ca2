package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/okian/rehabplan/internal/domain/model"
)

// MemoryStore keeps patients and protocols in process. It is safe for
// concurrent use.
type MemoryStore struct {
	mu        sync.RWMutex
	patients  map[string]model.Patient
	protocols []model.Protocol
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{patients: make(map[string]model.Patient)}
}

// PutPatient validates and stores p, replacing any patient with the same ID.
func (s *MemoryStore) PutPatient(p model.Patient) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.patients[p.ID] = p
	return nil
}

// PutProtocol validates and appends p to the catalog, or replaces the entry
// with the same ID in place.
func (s *MemoryStore) PutProtocol(p model.Protocol) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.protocols {
		if s.protocols[i].ID == p.ID {
			s.protocols[i] = p
			return nil
		}
	}
	s.protocols = append(s.protocols, p)
	return nil
}

// Patient implements PatientRepository.
func (s *MemoryStore) Patient(_ context.Context, id string) (model.Patient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.patients[id]
	if !ok {
		return model.Patient{}, model.NewNotFoundError("patient", id)
	}
	return p, nil
}

// PatientIDs implements PatientRepository.
func (s *MemoryStore) PatientIDs(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.patients))
	for id := range s.patients {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Patients implements PatientRepository.
func (s *MemoryStore) Patients(ctx context.Context) ([]model.Patient, error) {
	ids, _ := s.PatientIDs(ctx)
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Patient, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.patients[id])
	}
	return out, nil
}

// Protocol implements ProtocolRepository.
func (s *MemoryStore) Protocol(_ context.Context, id string) (model.Protocol, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.protocols {
		if p.ID == id {
			return p, nil
		}
	}
	return model.Protocol{}, model.NewNotFoundError("protocol", id)
}

// Protocols implements ProtocolRepository.
func (s *MemoryStore) Protocols(_ context.Context) ([]model.Protocol, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Protocol, len(s.protocols))
	copy(out, s.protocols)
	return out, nil
}

// Close implements Store.
func (s *MemoryStore) Close() error { return nil }
