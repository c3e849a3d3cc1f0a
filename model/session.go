package model

import "time"

// Flow identifies which of the two registration conversations a user is in.
type Flow string

const (
	FlowAccelerator Flow = "accelerator"
	FlowEvents      Flow = "events"
)

// Audience is the targeting rule for an admin broadcast.
type Audience string

const (
	AudienceAll         Audience = "all"
	AudienceAccelerator Audience = "accelerator"
	AudienceEvents      Audience = "events"
)

// State is the current step of a user's conversation.
type State int

const (
	StateIdle State = iota
	StateChoosingFlow

	// Accelerator registration
	StateAccName
	StateAccProject
	StateAccEmail
	StateAccContact
	StateAccTrack
	StateAccStage
	StateAccDescription
	StateAccPitch
	StateAccPresentationURL
	StateAccTeam
	StateAccAffiliation
	StateAccConsent
	StateAccConfirmation

	// Event registration
	StateEvName
	StateEvAffiliation
	StateEvProgram
	StateEvContact
	StateEvQuestion
	StateEvConsent
	StateEvConfirmation

	// Admin broadcast
	StateAdminAudience
	StateAdminBroadcast
)

// Field keys for Session.Fields and the spreadsheet row builders.
const (
	FieldUserID          = "user_id"
	FieldFullName        = "full_name"
	FieldAffiliated      = "affiliated"
	FieldProgram         = "program"
	FieldContact         = "contact"
	FieldQuestion        = "question"
	FieldProject         = "project_name"
	FieldEmail           = "email"
	FieldTrack           = "track"
	FieldStage           = "stage"
	FieldDescription     = "description"
	FieldPitch           = "pitch"
	FieldPresentationURL = "presentation_url"
	FieldTeam            = "team"
	FieldDate            = "registration_date"
)

// Session holds one user's conversation progress. A user has at most one
// session; starting a new flow replaces any previous one.
type Session struct {
	UserID       int64
	State        State
	Flow         Flow
	Audience     Audience
	Fields       map[string]string
	LastActivity time.Time
}
