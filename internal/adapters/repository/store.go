// Package repository loads patients and protocols from the supported
// backends and maps them onto the canonical domain entities.
package repository

import (
	"context"

	"github.com/okian/rehabplan/internal/domain/model"
)

// PatientRepository provides read access to patients with their
// prescriptions and sessions attached.
type PatientRepository interface {
	// Patient returns one patient. Unknown IDs yield a *model.NotFoundError.
	Patient(ctx context.Context, id string) (model.Patient, error)

	// PatientIDs lists every known patient ID in ascending order.
	PatientIDs(ctx context.Context) ([]string, error)

	// Patients returns every patient ordered by ID.
	Patients(ctx context.Context) ([]model.Patient, error)
}

// ProtocolRepository provides read access to the protocol catalog.
type ProtocolRepository interface {
	// Protocol returns one protocol. Unknown IDs yield a *model.NotFoundError.
	Protocol(ctx context.Context, id string) (model.Protocol, error)

	// Protocols returns the catalog in its canonical order.
	Protocols(ctx context.Context) ([]model.Protocol, error)
}

// Store combines both repositories.
type Store interface {
	PatientRepository
	ProtocolRepository

	// Close releases backend resources.
	Close() error
}

// Writer persists canonical entities to a backend.
type Writer interface {
	SavePatient(ctx context.Context, p model.Patient) error
	SaveProtocol(ctx context.Context, p model.Protocol) error
	SavePrescription(ctx context.Context, rx model.Prescription) error
	SaveSession(ctx context.Context, s model.Session) error
}

var (
	_ Store  = (*FileStore)(nil)
	_ Store  = (*SQLStore)(nil)
	_ Store  = (*MemoryStore)(nil)
	_ Writer = (*FileStore)(nil)
	_ Writer = (*SQLStore)(nil)
)
