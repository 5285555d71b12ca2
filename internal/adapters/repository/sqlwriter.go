package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/okian/rehabplan/internal/domain/model"
)

// SavePatient upserts the patient row. Prescriptions and sessions are
// written separately.
func (s *SQLStore) SavePatient(ctx context.Context, p model.Patient) error {
	if err := p.Validate(); err != nil {
		return err
	}
	const q = `
INSERT OR REPLACE INTO patient (
  patient_id, gender, age, handedness, ptn_height_cm, paretic_side, has_heminegligence,
  stroke_type, stroke_location, onset_date, comments, tags,
  arat_grasp, arat_grip, arat_pinch, arat_gross_movement,
  moca_visuospatial, moca_naming, moca_memory, moca_attention,
  moca_language, moca_abstraction, moca_delayed_recall, moca_orientation
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	a, m := p.ClinicalScores.ARAT, p.ClinicalScores.MoCA
	_, err := s.db.ExecContext(ctx, q,
		p.ID, p.Demographics.Gender, p.Demographics.Age, p.Demographics.Handedness,
		p.Demographics.HeightCM, p.StrokeInfo.PareticSide, p.StrokeInfo.Heminegligence,
		p.StrokeInfo.Type, p.StrokeInfo.Location, nullTime(p.StrokeInfo.OnsetDate),
		p.ClinicianNotes, strings.Join(p.Tags, ","),
		a.Grasp, a.Grip, a.Pinch, a.GrossMovement,
		m.Visuospatial, m.Naming, m.Memory, m.Attention,
		m.Language, m.Abstraction, m.DelayedRecall, m.Orientation,
	)
	if err != nil {
		return fmt.Errorf("save patient %s: %w", p.ID, err)
	}
	return nil
}

// SaveProtocol upserts p. Protocols keep their first insertion position so
// the catalog order is stable.
func (s *SQLStore) SaveProtocol(ctx context.Context, p model.Protocol) error {
	if err := p.Validate(); err != nil {
		return err
	}
	def, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode protocol %s: %w", p.ID, err)
	}
	const q = `
INSERT INTO protocol (protocol_id, position, definition)
VALUES (?, (SELECT COALESCE(MAX(position), 0) + 1 FROM protocol), ?)
ON CONFLICT(protocol_id) DO UPDATE SET definition = excluded.definition`
	if _, err := s.db.ExecContext(ctx, q, p.ID, string(def)); err != nil {
		return fmt.Errorf("save protocol %s: %w", p.ID, err)
	}
	return nil
}

// SavePrescription upserts rx.
func (s *SQLStore) SavePrescription(ctx context.Context, rx model.Prescription) error {
	if err := rx.Validate(); err != nil {
		return err
	}
	scores, err := json.Marshal(rx.DecisionScores)
	if err != nil {
		return fmt.Errorf("encode prescription %s: %w", rx.ID, err)
	}
	var difficulty sql.NullFloat64
	if rx.PrescribedDifficulty != nil {
		difficulty = sql.NullFloat64{Float64: *rx.PrescribedDifficulty, Valid: true}
	}
	const q = `
INSERT OR REPLACE INTO prescription_plus (
  prescription_id, patient_id, protocol_id, starting_date, ending_date, weekday,
  session_duration, decision_scores, explanation, prescribed_difficulty
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = s.db.ExecContext(ctx, q,
		rx.ID, rx.PatientID, rx.ProtocolID, formatTime(rx.StartDate), nullTime(rx.EndDate), rx.Weekday,
		rx.PrescribedDuration, string(scores), rx.Explanation, difficulty)
	if err != nil {
		return fmt.Errorf("save prescription %s: %w", rx.ID, err)
	}
	return nil
}

// SaveSession writes the session row and its recordings in one
// transaction. Existing recordings for the session are replaced.
func (s *SQLStore) SaveSession(ctx context.Context, sess model.Session) (err error) {
	if err := sess.Validate(); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin session %s: %w", sess.ID, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	end := sess.Timestamp.Add(time.Duration(sess.Duration * float64(time.Minute)))
	if _, err = tx.ExecContext(ctx, `
INSERT OR REPLACE INTO session_plus (
  session_id, prescription_id, patient_id, protocol_id, starting_date, ending_date
) VALUES (?, ?, ?, ?, ?, ?)`,
		sess.ID, sess.PrescriptionID, sess.PatientID, sess.ProtocolID,
		formatTime(sess.Timestamp), formatTime(end)); err != nil {
		return fmt.Errorf("save session %s: %w", sess.ID, err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM recording_plus WHERE session_id = ?`, sess.ID); err != nil {
		return fmt.Errorf("clear recordings %s: %w", sess.ID, err)
	}
	recordings := []struct {
		key   string
		value float64
	}{
		{RecordingScore, sess.PerformanceScore},
		{RecordingSessionDuration, sess.Duration * 60},
		{RecordingDifficultyModulator, sess.DifficultyModulator},
	}
	for _, r := range recordings {
		if _, err = tx.ExecContext(ctx, `
INSERT INTO recording_plus (session_id, protocol_id, recording_key, recording_value)
VALUES (?, ?, ?, ?)`, sess.ID, sess.ProtocolID, r.key, r.value); err != nil {
			return fmt.Errorf("save recording %s/%s: %w", sess.ID, r.key, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit session %s: %w", sess.ID, err)
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func nullTime(t time.Time) sql.NullString {
	if t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(t), Valid: true}
}
