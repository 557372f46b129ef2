package types

// Status is the lifecycle state of an application.
// Any status may follow any other; transitions are user-driven.
type Status string

const (
	StatusNotStarted Status = "Not Started"
	StatusPursuing   Status = "Pursuing"
	StatusInProgress Status = "In Progress"
	StatusSubmitted  Status = "Submitted"
	StatusInterview  Status = "Interview"
	StatusAccepted   Status = "Accepted"
	StatusRejected   Status = "Rejected"
	StatusWaitlisted Status = "Waitlisted"
	StatusWithdrawn  Status = "Withdrawn"
	StatusSkipping   Status = "Skipping"
	StatusAttending  Status = "Attending"
)

// Statuses lists every application status in board order.
var Statuses = []Status{
	StatusNotStarted,
	StatusPursuing,
	StatusInProgress,
	StatusSubmitted,
	StatusInterview,
	StatusAccepted,
	StatusRejected,
	StatusWaitlisted,
	StatusWithdrawn,
	StatusSkipping,
	StatusAttending,
}

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// Rank returns the board position of s, or len(Statuses) for unknown values.
func (s Status) Rank() int {
	for i, known := range Statuses {
		if s == known {
			return i
		}
	}
	return len(Statuses)
}

// ParseStatus matches a status case-insensitively, ignoring spaces,
// dashes and underscores ("in_progress", "In Progress", "inprogress").
func ParseStatus(s string) (Status, bool) {
	key := foldKey(s)
	for _, known := range Statuses {
		if foldKey(string(known)) == key {
			return known, true
		}
	}
	return "", false
}

// DocumentStatus is the progress of a single required document.
type DocumentStatus string

const (
	DocNotStarted DocumentStatus = "Not Started"
	DocInProgress DocumentStatus = "In Progress"
	DocCompleted  DocumentStatus = "Completed"
	DocSubmitted  DocumentStatus = "Submitted"
)

// IsValid reports whether s is a known document status.
func (s DocumentStatus) IsValid() bool {
	switch s {
	case DocNotStarted, DocInProgress, DocCompleted, DocSubmitted:
		return true
	}
	return false
}

// ContactStatus tracks outreach to a faculty member.
type ContactStatus string

const (
	ContactNotContacted     ContactStatus = "Not Contacted"
	ContactContacted        ContactStatus = "Contacted"
	ContactReplied          ContactStatus = "Replied"
	ContactMeetingScheduled ContactStatus = "Meeting Scheduled"
	ContactPositive         ContactStatus = "Positive"
	ContactNegative         ContactStatus = "Negative"
	ContactNoResponse       ContactStatus = "No Response"
)

// ContactStatuses lists every faculty contact status in outreach order.
var ContactStatuses = []ContactStatus{
	ContactNotContacted,
	ContactContacted,
	ContactReplied,
	ContactMeetingScheduled,
	ContactPositive,
	ContactNegative,
	ContactNoResponse,
}

// IsValid reports whether s is a known contact status.
func (s ContactStatus) IsValid() bool {
	for _, known := range ContactStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// ParseContactStatus matches a contact status the way ParseStatus does.
func ParseContactStatus(s string) (ContactStatus, bool) {
	key := foldKey(s)
	for _, known := range ContactStatuses {
		if foldKey(string(known)) == key {
			return known, true
		}
	}
	return "", false
}

// RecommenderStatus tracks a letter writer.
type RecommenderStatus string

const (
	RecommenderNotAsked  RecommenderStatus = "Not Asked"
	RecommenderAsked     RecommenderStatus = "Asked"
	RecommenderAgreed    RecommenderStatus = "Agreed"
	RecommenderSubmitted RecommenderStatus = "Submitted"
	RecommenderDeclined  RecommenderStatus = "Declined"
)

// ScholarshipStatus tracks an external or departmental funding application.
type ScholarshipStatus string

const (
	ScholarshipNotApplied ScholarshipStatus = "Not Applied"
	ScholarshipApplied    ScholarshipStatus = "Applied"
	ScholarshipAwarded    ScholarshipStatus = "Awarded"
	ScholarshipRejected   ScholarshipStatus = "Rejected"
)

// EssayStatus tracks a supplemental essay draft.
type EssayStatus string

const (
	EssayNotStarted EssayStatus = "Not Started"
	EssayDrafting   EssayStatus = "Drafting"
	EssayReviewing  EssayStatus = "Reviewing"
	EssayFinal      EssayStatus = "Final"
)

// ProgramType is the degree being applied for.
type ProgramType string

const (
	ProgramPhD     ProgramType = "PhD"
	ProgramMasters ProgramType = "Masters"
	ProgramMBA     ProgramType = "MBA"
	ProgramOther   ProgramType = "Other"
)

// ParseProgramType matches a program type case-insensitively.
func ParseProgramType(s string) (ProgramType, bool) {
	key := foldKey(s)
	for _, known := range []ProgramType{ProgramPhD, ProgramMasters, ProgramMBA, ProgramOther} {
		if foldKey(string(known)) == key {
			return known, true
		}
	}
	return "", false
}

// Coverage is how much of a benefit an offer includes.
type Coverage string

const (
	CoverageNone    Coverage = "None"
	CoveragePartial Coverage = "Partial"
	CoverageFull    Coverage = "Full"
)

// Assistantship is the funded role attached to an offer.
type Assistantship string

const (
	AssistantshipNone       Assistantship = "None"
	AssistantshipTA         Assistantship = "TA"
	AssistantshipRA         Assistantship = "RA"
	AssistantshipGA         Assistantship = "GA"
	AssistantshipFellowship Assistantship = "Fellowship"
)

func foldKey(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == ' ' || c == '-' || c == '_':
			continue
		case c >= 'A' && c <= 'Z':
			out = append(out, c+'a'-'A')
		default:
			out = append(out, c)
		}
	}
	return string(out)
}
