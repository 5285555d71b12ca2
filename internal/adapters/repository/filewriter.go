package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/okian/rehabplan/internal/domain/model"
)

// SavePatient writes patients/<id>.json. Prescriptions and sessions are
// stored in their own directories and are not embedded.
func (s *FileStore) SavePatient(_ context.Context, p model.Patient) error {
	p.Prescriptions, p.Sessions = nil, nil
	return s.write(PatientsDir, p.ID, p)
}

// SaveProtocol writes protocols/<id>.json.
func (s *FileStore) SaveProtocol(_ context.Context, p model.Protocol) error {
	return s.write(ProtocolsDir, p.ID, p)
}

// SavePrescription writes prescriptions/<id>.json.
func (s *FileStore) SavePrescription(_ context.Context, p model.Prescription) error {
	return s.write(PrescriptionsDir, p.ID, p)
}

// SaveSession writes sessions/<id>.json.
func (s *FileStore) SaveSession(_ context.Context, sess model.Session) error {
	return s.write(SessionsDir, sess.ID, sess)
}

func (s *FileStore) write(sub, id string, v any) error {
	dir := filepath.Join(s.root, sub)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	raw, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", sub, id, err)
	}
	path := filepath.Join(dir, id+".json")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
