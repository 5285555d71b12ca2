package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/okian/rehabplan/internal/domain/model"
	"github.com/okian/rehabplan/pkg/logger"
	"github.com/okian/rehabplan/pkg/metrics"

	_ "modernc.org/sqlite"
)

// Recording keys stored in recording_plus.
const (
	RecordingScore               = "score"
	RecordingSessionDuration     = "sessionDuration(seconds)"
	RecordingDifficultyModulator = "difficultyModulator"
)

const schema = `
CREATE TABLE IF NOT EXISTS patient (
  patient_id TEXT PRIMARY KEY,
  gender TEXT NOT NULL DEFAULT '',
  age INTEGER NOT NULL DEFAULT 0,
  handedness TEXT NOT NULL DEFAULT '',
  ptn_height_cm INTEGER NOT NULL DEFAULT 0,
  paretic_side TEXT NOT NULL DEFAULT '',
  has_heminegligence INTEGER NOT NULL DEFAULT 0,
  stroke_type TEXT NOT NULL DEFAULT '',
  stroke_location TEXT NOT NULL DEFAULT '',
  onset_date TEXT,
  comments TEXT NOT NULL DEFAULT '',
  tags TEXT NOT NULL DEFAULT '',
  arat_grasp REAL NOT NULL,
  arat_grip REAL NOT NULL,
  arat_pinch REAL NOT NULL,
  arat_gross_movement REAL NOT NULL,
  moca_visuospatial REAL NOT NULL,
  moca_naming REAL NOT NULL,
  moca_memory REAL NOT NULL,
  moca_attention REAL NOT NULL,
  moca_language REAL NOT NULL,
  moca_abstraction REAL NOT NULL,
  moca_delayed_recall REAL NOT NULL,
  moca_orientation REAL NOT NULL
);
CREATE TABLE IF NOT EXISTS protocol (
  protocol_id TEXT PRIMARY KEY,
  position INTEGER NOT NULL,
  definition TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS prescription_plus (
  prescription_id TEXT PRIMARY KEY,
  patient_id TEXT NOT NULL REFERENCES patient(patient_id),
  protocol_id TEXT NOT NULL,
  starting_date TEXT NOT NULL,
  ending_date TEXT,
  weekday TEXT NOT NULL DEFAULT '',
  session_duration REAL NOT NULL,
  decision_scores TEXT NOT NULL DEFAULT '{}',
  explanation TEXT NOT NULL DEFAULT '',
  prescribed_difficulty REAL
);
CREATE TABLE IF NOT EXISTS session_plus (
  session_id TEXT PRIMARY KEY,
  prescription_id TEXT NOT NULL,
  patient_id TEXT NOT NULL,
  protocol_id TEXT NOT NULL,
  starting_date TEXT NOT NULL,
  ending_date TEXT,
  status TEXT NOT NULL DEFAULT 'CLOSED'
);
CREATE TABLE IF NOT EXISTS recording_plus (
  recording_id INTEGER PRIMARY KEY AUTOINCREMENT,
  session_id TEXT NOT NULL REFERENCES session_plus(session_id),
  protocol_id TEXT NOT NULL,
  recording_key TEXT NOT NULL,
  recording_value REAL NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_prescription_patient ON prescription_plus(patient_id);
CREATE INDEX IF NOT EXISTS idx_session_patient ON session_plus(patient_id);
CREATE INDEX IF NOT EXISTS idx_recording_session ON recording_plus(session_id);
`

// SQLStore reads the relational schema through database/sql. Session
// metrics live in recording_plus as key/value rows; durations are stored
// in seconds and exposed in minutes.
type SQLStore struct {
	db  *sql.DB
	log logger.Logger
}

// OpenSQLStore opens (creating if needed) the sqlite database at path and
// applies the schema. Use ":memory:" for a private in-process database.
func OpenSQLStore(ctx context.Context, path string, opts ...SQLOption) (*SQLStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One connection keeps ":memory:" databases shared and serializes writes.
	db.SetMaxOpenConns(1)

	s := &SQLStore{db: db}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.Get().Named("sqlstore")
	}
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Migrate creates missing tables and indexes.
func (s *SQLStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// PatientIDs implements PatientRepository.
func (s *SQLStore) PatientIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT patient_id FROM patient ORDER BY patient_id`)
	if err != nil {
		return nil, fmt.Errorf("query patient ids: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan patient id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Patient implements PatientRepository.
func (s *SQLStore) Patient(ctx context.Context, id string) (model.Patient, error) {
	start := time.Now()
	p, err := s.patientRow(ctx, id)
	if err != nil {
		return model.Patient{}, err
	}
	if p.Prescriptions, err = s.prescriptions(ctx, id); err != nil {
		return model.Patient{}, err
	}
	if p.Sessions, err = s.sessions(ctx, id); err != nil {
		return model.Patient{}, err
	}
	metrics.RecordRepositoryLoad("sqlite", "patient", msSince(start))
	return p, nil
}

// Patients implements PatientRepository.
func (s *SQLStore) Patients(ctx context.Context) ([]model.Patient, error) {
	start := time.Now()
	ids, err := s.PatientIDs(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.Patient, 0, len(ids))
	for _, id := range ids {
		p, err := s.Patient(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	metrics.RecordRepositoryLoad("sqlite", "patients", msSince(start))
	metrics.UpdateRepositoryRecords("patients", len(out))
	return out, nil
}

func (s *SQLStore) patientRow(ctx context.Context, id string) (model.Patient, error) {
	const q = `
SELECT patient_id, gender, age, handedness, ptn_height_cm, paretic_side, has_heminegligence,
  stroke_type, stroke_location, onset_date, comments, tags,
  arat_grasp, arat_grip, arat_pinch, arat_gross_movement,
  moca_visuospatial, moca_naming, moca_memory, moca_attention,
  moca_language, moca_abstraction, moca_delayed_recall, moca_orientation
FROM patient WHERE patient_id = ?`
	var (
		p     model.Patient
		onset sql.NullString
		tags  string
		a     = &p.ClinicalScores.ARAT
		m     = &p.ClinicalScores.MoCA
	)
	err := s.db.QueryRowContext(ctx, q, id).Scan(
		&p.ID, &p.Demographics.Gender, &p.Demographics.Age, &p.Demographics.Handedness,
		&p.Demographics.HeightCM, &p.StrokeInfo.PareticSide, &p.StrokeInfo.Heminegligence,
		&p.StrokeInfo.Type, &p.StrokeInfo.Location, &onset, &p.ClinicianNotes, &tags,
		&a.Grasp, &a.Grip, &a.Pinch, &a.GrossMovement,
		&m.Visuospatial, &m.Naming, &m.Memory, &m.Attention,
		&m.Language, &m.Abstraction, &m.DelayedRecall, &m.Orientation,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Patient{}, model.NewNotFoundError("patient", id)
	}
	if err != nil {
		return model.Patient{}, fmt.Errorf("query patient %s: %w", id, err)
	}
	if onset.Valid && onset.String != "" {
		if p.StrokeInfo.OnsetDate, err = parseTime(onset.String); err != nil {
			return model.Patient{}, fmt.Errorf("patient %s onset_date: %w", id, err)
		}
	}
	p.Tags = splitTags(tags)
	if err := p.Validate(); err != nil {
		return model.Patient{}, fmt.Errorf("patient %s: %w", id, err)
	}
	return p, nil
}

func (s *SQLStore) prescriptions(ctx context.Context, patientID string) ([]model.Prescription, error) {
	const q = `
SELECT prescription_id, patient_id, protocol_id, starting_date, ending_date, weekday,
  session_duration, decision_scores, explanation, prescribed_difficulty
FROM prescription_plus WHERE patient_id = ? ORDER BY starting_date, prescription_id`
	rows, err := s.db.QueryContext(ctx, q, patientID)
	if err != nil {
		return nil, fmt.Errorf("query prescriptions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.Prescription
	for rows.Next() {
		var (
			rx         model.Prescription
			startDate  string
			endDate    sql.NullString
			scores     string
			difficulty sql.NullFloat64
		)
		if err := rows.Scan(&rx.ID, &rx.PatientID, &rx.ProtocolID, &startDate, &endDate, &rx.Weekday,
			&rx.PrescribedDuration, &scores, &rx.Explanation, &difficulty); err != nil {
			return nil, fmt.Errorf("scan prescription: %w", err)
		}
		if rx.StartDate, err = parseTime(startDate); err != nil {
			return nil, fmt.Errorf("prescription %s: %w", rx.ID, err)
		}
		if endDate.Valid && endDate.String != "" {
			if rx.EndDate, err = parseTime(endDate.String); err != nil {
				return nil, fmt.Errorf("prescription %s: %w", rx.ID, err)
			}
		}
		if scores != "" {
			if err := json.Unmarshal([]byte(scores), &rx.DecisionScores); err != nil {
				return nil, fmt.Errorf("%w: prescription %s decision_scores: %w", ErrMalformedRecord, rx.ID, err)
			}
		}
		if difficulty.Valid {
			d := difficulty.Float64
			rx.PrescribedDifficulty = &d
		}
		if err := rx.Validate(); err != nil {
			return nil, fmt.Errorf("prescription %s: %w", rx.ID, err)
		}
		out = append(out, rx)
	}
	return out, rows.Err()
}

func (s *SQLStore) sessions(ctx context.Context, patientID string) ([]model.Session, error) {
	const q = `
SELECT s.session_id, s.patient_id, s.protocol_id, s.prescription_id, s.starting_date,
  MAX(CASE WHEN r.recording_key = ? THEN r.recording_value END),
  MAX(CASE WHEN r.recording_key = ? THEN r.recording_value END),
  MAX(CASE WHEN r.recording_key = ? THEN r.recording_value END)
FROM session_plus s
LEFT JOIN recording_plus r ON r.session_id = s.session_id
WHERE s.patient_id = ?
GROUP BY s.session_id
ORDER BY s.starting_date, s.session_id`
	rows, err := s.db.QueryContext(ctx, q,
		RecordingScore, RecordingSessionDuration, RecordingDifficultyModulator, patientID)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.Session
	for rows.Next() {
		var (
			sess                      model.Session
			started                   string
			score, seconds, modulator sql.NullFloat64
		)
		if err := rows.Scan(&sess.ID, &sess.PatientID, &sess.ProtocolID, &sess.PrescriptionID, &started,
			&score, &seconds, &modulator); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		if sess.Timestamp, err = parseTime(started); err != nil {
			return nil, fmt.Errorf("session %s: %w", sess.ID, err)
		}
		if !seconds.Valid {
			s.log.Debug(ctx, "session without duration recording", logger.String("session_id", sess.ID))
		}
		sess.PerformanceScore = score.Float64
		sess.Duration = seconds.Float64 / 60
		sess.DifficultyModulator = modulator.Float64
		if err := sess.Validate(); err != nil {
			return nil, fmt.Errorf("session %s: %w", sess.ID, err)
		}
		out = append(out, sess)
	}
	return out, rows.Err()
}

// Protocols implements ProtocolRepository.
func (s *SQLStore) Protocols(ctx context.Context) ([]model.Protocol, error) {
	start := time.Now()
	rows, err := s.db.QueryContext(ctx, `SELECT protocol_id, definition FROM protocol ORDER BY position, protocol_id`)
	if err != nil {
		return nil, fmt.Errorf("query protocols: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.Protocol
	for rows.Next() {
		var id, def string
		if err := rows.Scan(&id, &def); err != nil {
			return nil, fmt.Errorf("scan protocol: %w", err)
		}
		p, err := decodeProtocol(id, def)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	metrics.RecordRepositoryLoad("sqlite", "protocols", msSince(start))
	metrics.UpdateRepositoryRecords("protocols", len(out))
	return out, nil
}

// Protocol implements ProtocolRepository.
func (s *SQLStore) Protocol(ctx context.Context, id string) (model.Protocol, error) {
	var def string
	err := s.db.QueryRowContext(ctx, `SELECT definition FROM protocol WHERE protocol_id = ?`, id).Scan(&def)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Protocol{}, model.NewNotFoundError("protocol", id)
	}
	if err != nil {
		return model.Protocol{}, fmt.Errorf("query protocol %s: %w", id, err)
	}
	return decodeProtocol(id, def)
}

func decodeProtocol(id, def string) (model.Protocol, error) {
	var p model.Protocol
	if err := json.Unmarshal([]byte(def), &p); err != nil {
		return model.Protocol{}, fmt.Errorf("%w: protocol %s: %w", ErrMalformedRecord, id, err)
	}
	if err := p.Validate(); err != nil {
		return model.Protocol{}, fmt.Errorf("protocol %s: %w", id, err)
	}
	return p, nil
}

func splitTags(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
