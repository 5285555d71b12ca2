// Package aggregate turns prescription and session logs into weekly views and
// per-protocol EWMA series.
package aggregate

import (
	"sort"
	"time"

	"github.com/okian/rehabplan/internal/domain/model"
)

// WeekStart returns the Monday, as a UTC date, of the week containing t.
func WeekStart(t time.Time) time.Time {
	day := dateOf(t)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// Week groups the prescriptions active in a week and the sessions logged
// against them.
type Week struct {
	Start         time.Time            `json:"week_start"`
	Prescriptions []model.Prescription `json:"prescriptions"`
	Sessions      []model.Session      `json:"sessions"`
	Quality       Quality              `json:"quality"`
}

// Quality summarizes how closely a week followed its prescriptions.
type Quality struct {
	AverageAdherence float64 `json:"average_adherence"`
	PrescribedTime   float64 `json:"prescribed_time"`
	PerformedTime    float64 `json:"performed_time"`
	// TimeDeviation is (performed - prescribed) / prescribed, 0 when
	// nothing was prescribed.
	TimeDeviation float64 `json:"time_deviation"`
}

// Weekly is a week-keyed view of a patient's log. The zero value is ready
// to use.
type Weekly struct {
	weeks    map[time.Time]*Week
	sessions []model.Session
}

// Add registers p in every week it spans and queues its sessions. Sessions
// are bucketed when Weeks is called, into whichever registered week they fall
// in, so the order of Add calls does not matter. Sessions outside every
// registered week are left out of the weekly view.
func (w *Weekly) Add(p model.Prescription, sessions []model.Session) {
	if w.weeks == nil {
		w.weeks = make(map[time.Time]*Week)
	}
	first := WeekStart(p.StartDate)
	last := first
	if !p.EndDate.IsZero() {
		last = WeekStart(p.EndDate)
	}
	for ws := first; !ws.After(last); ws = ws.AddDate(0, 0, 7) {
		wk, ok := w.weeks[ws]
		if !ok {
			wk = &Week{Start: ws}
			w.weeks[ws] = wk
		}
		wk.Prescriptions = append(wk.Prescriptions, p)
	}
	w.sessions = append(w.sessions, sessions...)
}

// Weeks returns the registered weeks in chronological order with their
// sessions bucketed and quality computed against idx.
func (w *Weekly) Weeks(idx model.PrescriptionIndex) []Week {
	byStart := make(map[time.Time]*Week, len(w.weeks))
	out := make([]Week, 0, len(w.weeks))
	for ws, wk := range w.weeks {
		week := Week{Start: wk.Start, Prescriptions: wk.Prescriptions}
		byStart[ws] = &week
	}
	for _, s := range w.sessions {
		if wk, ok := byStart[WeekStart(s.Timestamp)]; ok {
			wk.Sessions = append(wk.Sessions, s)
		}
	}
	for _, wk := range byStart {
		wk.Quality = quality(*wk, idx)
		out = append(out, *wk)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out
}

func quality(wk Week, idx model.PrescriptionIndex) Quality {
	var q Quality
	for _, p := range wk.Prescriptions {
		q.PrescribedTime += p.PrescribedDuration * float64(scheduledDays(p, wk.Start))
	}
	var adherence float64
	for _, s := range wk.Sessions {
		a, _ := idx.Adherence(s)
		adherence += a
		q.PerformedTime += s.Duration
	}
	if n := len(wk.Sessions); n > 0 {
		q.AverageAdherence = adherence / float64(n)
	}
	if q.PrescribedTime > 0 {
		q.TimeDeviation = (q.PerformedTime - q.PrescribedTime) / q.PrescribedTime
	}
	return q
}

// scheduledDays counts the days of the week starting at ws on which p is
// due: its weekday if one is named, every day in range otherwise.
func scheduledDays(p model.Prescription, ws time.Time) int {
	start := dateOf(p.StartDate)
	end := start
	if !p.EndDate.IsZero() {
		end = dateOf(p.EndDate)
	}
	n := 0
	for i := 0; i < 7; i++ {
		day := ws.AddDate(0, 0, i)
		if day.Before(start) || day.After(end) {
			continue
		}
		if p.Weekday != "" && day.Weekday().String() != p.Weekday {
			continue
		}
		n++
	}
	return n
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
