package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/okian/rehabplan/internal/domain/dedupe"
	"github.com/okian/rehabplan/internal/domain/model"
	"github.com/okian/rehabplan/pkg/logger"
	"github.com/okian/rehabplan/pkg/metrics"
)

// Flat-file layout below the data root.
const (
	PatientsDir      = "patients"
	ProtocolsDir     = "protocols"
	PrescriptionsDir = "prescriptions"
	SessionsDir      = "sessions"
)

// FileStore reads the flat-file layout: one JSON document per patient,
// prescription and session, and one JSON or YAML document per protocol.
type FileStore struct {
	root        string
	concurrency int
	log         logger.Logger
	newDeduper  func(capacity int) dedupe.Deduper
}

// NewFileStore creates a FileStore rooted at dir.
func NewFileStore(dir string, opts ...Option) *FileStore {
	s := &FileStore{
		root:        dir,
		concurrency: defaultLoadConcurrency,
		newDeduper: func(n int) dedupe.Deduper {
			return dedupe.NewInMemoryDeduper(dedupe.WithCapacity(n))
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.Get().Named("filestore")
	}
	return s
}

// Root returns the data directory.
func (s *FileStore) Root() string { return s.root }

// Close implements Store. A FileStore holds no resources.
func (s *FileStore) Close() error { return nil }

// PatientIDs lists the stems of patients/*.json in ascending order.
func (s *FileStore) PatientIDs(ctx context.Context) ([]string, error) {
	files, err := s.list(ctx, PatientsDir, ".json")
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(files))
	for _, f := range files {
		ids = append(ids, strings.TrimSuffix(filepath.Base(f), filepath.Ext(f)))
	}
	return ids, nil
}

// Patient loads one patient and attaches its prescriptions and sessions.
func (s *FileStore) Patient(ctx context.Context, id string) (model.Patient, error) {
	start := time.Now()
	p, err := s.readPatient(ctx, id)
	if err != nil {
		return model.Patient{}, err
	}
	log, err := s.readLog(ctx)
	if err != nil {
		return model.Patient{}, err
	}
	log.attach(&p)
	metrics.RecordRepositoryLoad("file", "patient", msSince(start))
	return p, nil
}

// Patients loads every patient in parallel and attaches the shared log.
func (s *FileStore) Patients(ctx context.Context) ([]model.Patient, error) {
	start := time.Now()
	ids, err := s.PatientIDs(ctx)
	if err != nil {
		return nil, err
	}

	patients := make([]model.Patient, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, id := range ids {
		g.Go(func() error {
			p, err := s.readPatient(gctx, id)
			if err != nil {
				return err
			}
			patients[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	log, err := s.readLog(ctx)
	if err != nil {
		return nil, err
	}
	for i := range patients {
		log.attach(&patients[i])
	}

	metrics.RecordRepositoryLoad("file", "patients", msSince(start))
	metrics.UpdateRepositoryRecords("patients", len(patients))
	return patients, nil
}

// Protocols loads the catalog ordered by file name.
func (s *FileStore) Protocols(ctx context.Context) ([]model.Protocol, error) {
	start := time.Now()
	files, err := s.list(ctx, ProtocolsDir, ".json", ".yaml", ".yml")
	if err != nil {
		return nil, err
	}
	out := make([]model.Protocol, 0, len(files))
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("load protocols: %w", err)
		}
		p, err := readProtocol(f)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	metrics.RecordRepositoryLoad("file", "protocols", msSince(start))
	metrics.UpdateRepositoryRecords("protocols", len(out))
	return out, nil
}

// Protocol returns the catalog entry with the given protocol_id.
func (s *FileStore) Protocol(ctx context.Context, id string) (model.Protocol, error) {
	all, err := s.Protocols(ctx)
	if err != nil {
		return model.Protocol{}, err
	}
	for _, p := range all {
		if p.ID == id {
			return p, nil
		}
	}
	return model.Protocol{}, model.NewNotFoundError("protocol", id)
}

func (s *FileStore) readPatient(ctx context.Context, id string) (model.Patient, error) {
	if err := ctx.Err(); err != nil {
		return model.Patient{}, fmt.Errorf("load patient %s: %w", id, err)
	}
	if id == "" || strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return model.Patient{}, model.NewNotFoundError("patient", id)
	}
	raw, err := os.ReadFile(filepath.Join(s.root, PatientsDir, id+".json"))
	if errors.Is(err, fs.ErrNotExist) {
		return model.Patient{}, model.NewNotFoundError("patient", id)
	}
	if err != nil {
		return model.Patient{}, fmt.Errorf("read patient %s: %w", id, err)
	}
	var rec patientRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return model.Patient{}, fmt.Errorf("%w: patient %s: %w", ErrMalformedRecord, id, err)
	}
	if rec.ID == "" {
		rec.ID = id
	}
	return rec.toModel()
}

func readProtocol(path string) (model.Protocol, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return model.Protocol{}, fmt.Errorf("read protocol %s: %w", path, err)
	}
	var p model.Protocol
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(raw))
		dec.KnownFields(true)
		err = dec.Decode(&p)
	default:
		err = json.Unmarshal(raw, &p)
	}
	if err != nil {
		return model.Protocol{}, fmt.Errorf("%w: protocol %s: %w", ErrMalformedRecord, path, err)
	}
	if err := p.Validate(); err != nil {
		return model.Protocol{}, fmt.Errorf("protocol %s: %w", path, err)
	}
	return p, nil
}

// patientLog is every prescription and session on disk, keyed by patient.
type patientLog struct {
	prescriptions map[string][]model.Prescription
	sessions      map[string][]model.Session
}

func (l patientLog) attach(p *model.Patient) {
	p.Prescriptions = l.prescriptions[p.ID]
	p.Sessions = l.sessions[p.ID]
}

func (s *FileStore) readLog(ctx context.Context) (patientLog, error) {
	l := patientLog{
		prescriptions: make(map[string][]model.Prescription),
		sessions:      make(map[string][]model.Session),
	}

	files, err := s.list(ctx, PrescriptionsDir, ".json")
	if err != nil {
		return l, err
	}
	for _, f := range files {
		var rec prescriptionRecord
		if err := readJSON(f, &rec); err != nil {
			return l, err
		}
		rx, err := rec.toModel()
		if err != nil {
			return l, err
		}
		l.prescriptions[rx.PatientID] = append(l.prescriptions[rx.PatientID], rx)
	}

	files, err = s.list(ctx, SessionsDir, ".json")
	if err != nil {
		return l, err
	}
	seen := s.newDeduper(len(files))
	for _, f := range files {
		var rec sessionRecord
		if err := readJSON(f, &rec); err != nil {
			return l, err
		}
		sess, err := rec.toModel()
		if err != nil {
			return l, err
		}
		if seen.SeenAndRecord(ctx, sess.ID) {
			s.log.Warn(ctx, "duplicate session skipped",
				logger.String("session_id", sess.ID),
				logger.String("file", f))
			metrics.RecordDataQuality(string(model.ConditionDuplicateSession))
			continue
		}
		l.sessions[sess.PatientID] = append(l.sessions[sess.PatientID], sess)
	}
	if n := seen.Duplicates(); n > 0 {
		s.log.Info(ctx, "session log deduplicated",
			logger.Int("kept", int(seen.Size())),
			logger.Int("skipped", int(n)))
	}
	return l, nil
}

func readJSON(path string, v any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrMalformedRecord, path, err)
	}
	return nil
}

// list returns the files in sub with one of exts, sorted by name. A
// missing directory is empty.
func (s *FileStore) list(ctx context.Context, sub string, exts ...string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("list %s: %w", sub, err)
	}
	dir := filepath.Join(s.root, sub)
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		for _, want := range exts {
			if ext == want {
				out = append(out, filepath.Join(dir, e.Name()))
				break
			}
		}
	}
	sort.Strings(out)
	return out, nil
}

func msSince(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000
}
