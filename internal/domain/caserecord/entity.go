// Package caserecord defines the core case entities consumed by the
// intelligence engine: the case itself, its contacts, its timeline and its
// calendar.  All records here are externally owned — the engine reads them
// and never mutates them.
package caserecord

import (
	"time"

	"github.com/jurisio/casebrain/pkg/types/common"
)

// MatterType categorizes a legal case and selects the checklist, deadline and
// prescription rule tables applied to it.
type MatterType string

const (
	MatterCivil      MatterType = "civil"
	MatterPenal      MatterType = "penal"
	MatterCommercial MatterType = "commercial"
	MatterFamily     MatterType = "family"
	MatterFiscal     MatterType = "fiscal"
	MatterSocial     MatterType = "social"
	MatterOther      MatterType = "other"
)

// Valid reports whether the matter type is one of the known categories.
func (m MatterType) Valid() bool {
	switch m {
	case MatterCivil, MatterPenal, MatterCommercial, MatterFamily, MatterFiscal, MatterSocial, MatterOther:
		return true
	}
	return false
}

// CaseStatus is the lifecycle state of a case.
type CaseStatus string

const (
	StatusOpen       CaseStatus = "open"
	StatusInProgress CaseStatus = "in_progress"
	StatusPending    CaseStatus = "pending"
	StatusClosed     CaseStatus = "closed"
	StatusArchived   CaseStatus = "archived"
)

// IsActive reports whether work on the case is ongoing.  Closed and archived
// cases are excluded from dashboard aggregation and flagged by the billing
// analyzer when hours are still being logged against them.
func (s CaseStatus) IsActive() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusPending:
		return true
	}
	return false
}

// Case is a legal matter as stored by the persistence collaborator.
type Case struct {
	ID             common.ID         `json:"id"`
	Reference      string            `json:"reference"`
	Title          string            `json:"title"`
	MatterType     MatterType        `json:"matter_type"`
	Status         CaseStatus        `json:"status"`
	Jurisdiction   string            `json:"jurisdiction"`
	CourtReference string            `json:"court_reference,omitempty"`
	OpenedAt       time.Time         `json:"opened_at"`
	ClosedAt       *time.Time        `json:"closed_at,omitempty"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}

// Age returns how long the case has been open as of now.
func (c *Case) Age(now time.Time) time.Duration {
	end := now
	if c.ClosedAt != nil {
		end = *c.ClosedAt
	}
	return end.Sub(c.OpenedAt)
}

// ContactRole is the role a contact plays in a case.
type ContactRole string

const (
	RoleClient     ContactRole = "client"
	RoleAdverse    ContactRole = "adverse"
	RoleWitness    ContactRole = "witness"
	RoleThirdParty ContactRole = "third_party"
)

// Valid reports whether the role is one of the known roles.
func (r ContactRole) Valid() bool {
	switch r {
	case RoleClient, RoleAdverse, RoleWitness, RoleThirdParty:
		return true
	}
	return false
}

// CaseContact links a contact to a case under a specific role.  A case may
// carry any number of contacts per role, including zero.
type CaseContact struct {
	ContactID common.ID   `json:"contact_id"`
	CaseID    common.ID   `json:"case_id"`
	Name      string      `json:"name"`
	Email     string      `json:"email,omitempty"`
	Phone     string      `json:"phone,omitempty"`
	Role      ContactRole `json:"role"`
	IsCounsel bool        `json:"is_counsel,omitempty"`
}

// EventCategory classifies a timeline event.
type EventCategory string

const (
	CategoryDeadline EventCategory = "deadline"
	CategoryHearing  EventCategory = "hearing"
	CategoryAudience EventCategory = "audience"
	CategoryFiling   EventCategory = "filing"
	CategoryMeeting  EventCategory = "meeting"
	CategoryNote     EventCategory = "note"
	CategoryOther    EventCategory = "other"
)

// TimelineEvent is a dated entry in a case's procedural history.
type TimelineEvent struct {
	ID          common.ID     `json:"id"`
	CaseID      common.ID     `json:"case_id"`
	EventDate   time.Time     `json:"event_date"`
	Category    EventCategory `json:"category"`
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	Actors      []string      `json:"actors,omitempty"`
	IsValidated bool          `json:"is_validated"`
	IsKeyEvent  bool          `json:"is_key_event"`
}

// CalendarEvent is an agenda entry linked to a case.
type CalendarEvent struct {
	ID      common.ID `json:"id"`
	CaseID  common.ID `json:"case_id"`
	Title   string    `json:"title"`
	StartAt time.Time `json:"start_at"`
	EndAt   time.Time `json:"end_at"`
}
