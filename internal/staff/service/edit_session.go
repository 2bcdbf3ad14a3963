package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sitecrew-app/sitecrew-backend/internal/staff/domain"
)

// EditState is the explicit state of a profile edit session.
type EditState int

const (
	StateViewing EditState = iota
	StateEditing
	StateSaving
)

func (s EditState) String() string {
	switch s {
	case StateViewing:
		return "viewing"
	case StateEditing:
		return "editing"
	case StateSaving:
		return "saving"
	}
	return fmt.Sprintf("EditState(%d)", int(s))
}

var ErrInvalidTransition = errors.New("invalid edit session transition")

// ProfileSaver commits an edit session's form. *ProfileService satisfies it.
type ProfileSaver interface {
	Save(ctx context.Context, docID string, patch domain.ProfilePatch) (*domain.StaffProfile, error)
}

// EditSession drives a profile edit through Viewing -> Editing -> Saving.
// Begin copies the record's mutable fields into a form; Save commits the
// form and re-enters Viewing with the merged record on success, or re-enters
// Editing with the form preserved on failure; Cancel discards the form.
// The record is never mutated before the remote write acknowledges.
type EditSession struct {
	state  EditState
	record *domain.StaffProfile
	form   domain.ProfilePatch
}

func NewEditSession(record *domain.StaffProfile) *EditSession {
	return &EditSession{
		state:  StateViewing,
		record: record,
	}
}

func (e *EditSession) State() EditState             { return e.state }
func (e *EditSession) Record() *domain.StaffProfile { return e.record }

// Form exposes the in-progress edits. Valid only while Editing.
func (e *EditSession) Form() *domain.ProfilePatch { return &e.form }

// Begin enters Editing with a form seeded from the current record.
func (e *EditSession) Begin() error {
	if e.state != StateViewing {
		return fmt.Errorf("%w: begin from %s", ErrInvalidTransition, e.state)
	}

	e.form = domain.ProfilePatch{
		Name:                 e.record.Name,
		PhoneNumber:          e.record.PhoneNumber,
		JobRole:              e.record.JobRole,
		AssignedSiteLocation: e.record.AssignedSiteLocation,
		WorkingSchedule:      e.record.WorkingSchedule,
	}
	e.state = StateEditing
	return nil
}

// Cancel discards the form and returns to Viewing.
func (e *EditSession) Cancel() error {
	if e.state != StateEditing {
		return fmt.Errorf("%w: cancel from %s", ErrInvalidTransition, e.state)
	}

	e.form = domain.ProfilePatch{}
	e.state = StateViewing
	return nil
}

// Save commits the form through the saver. On success the session holds the
// merged record and is back in Viewing; on failure the record and form are
// left untouched and the session returns to Editing so the caller can retry.
func (e *EditSession) Save(ctx context.Context, saver ProfileSaver) error {
	if e.state != StateEditing {
		return fmt.Errorf("%w: save from %s", ErrInvalidTransition, e.state)
	}

	e.state = StateSaving
	merged, err := saver.Save(ctx, e.record.DocID, e.form)
	if err != nil {
		e.state = StateEditing
		return err
	}

	e.record = merged
	e.form = domain.ProfilePatch{}
	e.state = StateViewing
	return nil
}
