// Package types defines the records persisted by the application tracker.
package types

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DateLayout is the layout of every calendar date field (deadlines, submissions).
const DateLayout = "2006-01-02"

// TimestampLayout is the layout of lastUpdated.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// DataSchema is the persisted envelope around the application list.
type DataSchema struct {
	Version      int           `json:"version" yaml:"version"`
	Applications []Application `json:"applications" yaml:"applications"`
	LastUpdated  string        `json:"lastUpdated" yaml:"lastUpdated"`
}

// Application is one tracked program at one university.
//
// Nested sequences are owned by the application; nothing references them
// from outside. Every sequence is non-nil once a record has passed through
// migration or NewApplication.
type Application struct {
	// ===== Identity =====
	ID string `json:"id" yaml:"id"`

	// ===== Program =====
	UniversityName string      `json:"universityName" yaml:"universityName"`
	ProgramName    string      `json:"programName" yaml:"programName"`
	Department     string      `json:"department" yaml:"department"`
	Location       string      `json:"location" yaml:"location"`
	ProgramType    ProgramType `json:"programType" yaml:"programType"`
	Website        string      `json:"website" yaml:"website"`
	Rankings       Rankings    `json:"rankings" yaml:"rankings"`
	ApplicationFee float64     `json:"applicationFee" yaml:"applicationFee"`

	// ===== Lifecycle =====
	Status        Status         `json:"status" yaml:"status"`
	StatusHistory []StatusChange `json:"statusHistory" yaml:"statusHistory"`
	IsPinned      bool           `json:"isPinned" yaml:"isPinned"`

	// ===== Dates (YYYY-MM-DD, nullable) =====
	Deadline          *string `json:"deadline" yaml:"deadline"`
	PreferredDeadline *string `json:"preferredDeadline" yaml:"preferredDeadline"`
	DecisionDeadline  *string `json:"decisionDeadline" yaml:"decisionDeadline"`

	// ===== Owned records =====
	Documents       Documents        `json:"documents" yaml:"documents"`
	FacultyContacts []FacultyContact `json:"facultyContacts" yaml:"facultyContacts"`
	Recommenders    []Recommender    `json:"recommenders" yaml:"recommenders"`
	Reminders       []Reminder       `json:"reminders" yaml:"reminders"`
	Scholarships    []Scholarship    `json:"scholarships" yaml:"scholarships"`
	Essays          []Essay          `json:"essays" yaml:"essays"`
	FinancialOffer  *FinancialOffer  `json:"financialOffer" yaml:"financialOffer"`

	// ===== Free-form =====
	Tags  []string `json:"tags" yaml:"tags"`
	Notes string   `json:"notes" yaml:"notes"`
}

// Rankings holds free-form ranking strings from the major tables.
type Rankings struct {
	USNews string `json:"usNews" yaml:"usNews"`
	QS     string `json:"qs" yaml:"qs"`
	THE    string `json:"the" yaml:"the"`
}

// StatusChange records when an application entered a status.
type StatusChange struct {
	Status Status `json:"status" yaml:"status"`
	Date   string `json:"date" yaml:"date"`
}

// FacultyContact is a potential advisor at the application's university.
type FacultyContact struct {
	ID            string        `json:"id" yaml:"id"`
	Name          string        `json:"name" yaml:"name"`
	Email         string        `json:"email" yaml:"email"`
	Title         string        `json:"title" yaml:"title"`
	ResearchArea  string        `json:"researchArea" yaml:"researchArea"`
	Status        ContactStatus `json:"status" yaml:"status"`
	LastContacted *string       `json:"lastContacted" yaml:"lastContacted"`
	Notes         string        `json:"notes" yaml:"notes"`
}

// Recommender is a letter writer for the application.
type Recommender struct {
	ID           string            `json:"id" yaml:"id"`
	Name         string            `json:"name" yaml:"name"`
	Email        string            `json:"email" yaml:"email"`
	Relationship string            `json:"relationship" yaml:"relationship"`
	Status       RecommenderStatus `json:"status" yaml:"status"`
	DueDate      *string           `json:"dueDate" yaml:"dueDate"`
}

// Reminder is a dated to-do attached to the application.
type Reminder struct {
	ID   string `json:"id" yaml:"id"`
	Date string `json:"date" yaml:"date"`
	Text string `json:"text" yaml:"text"`
	Done bool   `json:"done" yaml:"done"`
}

// Scholarship is a funding source applied for alongside the program.
type Scholarship struct {
	ID       string            `json:"id" yaml:"id"`
	Name     string            `json:"name" yaml:"name"`
	Amount   float64           `json:"amount" yaml:"amount"`
	Deadline *string           `json:"deadline" yaml:"deadline"`
	Status   ScholarshipStatus `json:"status" yaml:"status"`
}

// Essay is a supplemental writing requirement.
type Essay struct {
	ID        string      `json:"id" yaml:"id"`
	Prompt    string      `json:"prompt" yaml:"prompt"`
	WordLimit int         `json:"wordLimit" yaml:"wordLimit"`
	Status    EssayStatus `json:"status" yaml:"status"`
}

// FinancialOffer is the funding package attached to an admission.
type FinancialOffer struct {
	Stipend            float64       `json:"stipend" yaml:"stipend"`
	StipendPeriod      string        `json:"stipendPeriod" yaml:"stipendPeriod"`
	TuitionWaiverPct   float64       `json:"tuitionWaiverPercentage" yaml:"tuitionWaiverPercentage"`
	HealthInsurance    Coverage      `json:"healthInsurance" yaml:"healthInsurance"`
	Assistantship      Assistantship `json:"assistantship" yaml:"assistantship"`
	AssistantshipHours int           `json:"assistantshipHours" yaml:"assistantshipHours"`
	Notes              string        `json:"notes" yaml:"notes"`
}

// NewID returns a fresh, time-ordered identifier.
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// NewApplication returns a fully default-shaped application for universityName.
// The returned record has no ID; the store assigns one on insert.
func NewApplication(universityName string, programType ProgramType) Application {
	return Application{
		UniversityName:  universityName,
		ProgramName:     "N/A",
		ProgramType:     programType,
		Status:          StatusNotStarted,
		StatusHistory:   []StatusChange{},
		Documents:       DefaultDocuments(),
		FacultyContacts: []FacultyContact{},
		Recommenders:    []Recommender{},
		Reminders:       []Reminder{},
		Scholarships:    []Scholarship{},
		Essays:          []Essay{},
		Tags:            []string{},
	}
}

// SetDefaults fills nil sequences and empty enums so the record is fully shaped.
func (a *Application) SetDefaults() {
	if a.Status == "" {
		a.Status = StatusNotStarted
	}
	if a.StatusHistory == nil {
		a.StatusHistory = []StatusChange{}
	}
	if a.FacultyContacts == nil {
		a.FacultyContacts = []FacultyContact{}
	}
	if a.Recommenders == nil {
		a.Recommenders = []Recommender{}
	}
	if a.Reminders == nil {
		a.Reminders = []Reminder{}
	}
	if a.Scholarships == nil {
		a.Scholarships = []Scholarship{}
	}
	if a.Essays == nil {
		a.Essays = []Essay{}
	}
	if a.Tags == nil {
		a.Tags = []string{}
	}
	a.Documents.setDefaults()
}

// Validate checks the fields every stored application must carry.
func (a *Application) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("id is required")
	}
	if a.Status != "" && !a.Status.IsValid() {
		return fmt.Errorf("unknown status %q", a.Status)
	}
	for _, d := range []*string{a.Deadline, a.PreferredDeadline, a.DecisionDeadline} {
		if d == nil || *d == "" {
			continue
		}
		if _, err := time.Parse(DateLayout, *d); err != nil {
			return fmt.Errorf("invalid date %q: want YYYY-MM-DD", *d)
		}
	}
	return nil
}

// Clone returns a deep copy, so callers can edit it without touching the store's copy.
func (a Application) Clone() Application {
	c := a
	c.StatusHistory = append([]StatusChange{}, a.StatusHistory...)
	c.FacultyContacts = append([]FacultyContact{}, a.FacultyContacts...)
	for i := range c.FacultyContacts {
		c.FacultyContacts[i].LastContacted = cloneString(c.FacultyContacts[i].LastContacted)
	}
	c.Recommenders = append([]Recommender{}, a.Recommenders...)
	for i := range c.Recommenders {
		c.Recommenders[i].DueDate = cloneString(c.Recommenders[i].DueDate)
	}
	c.Reminders = append([]Reminder{}, a.Reminders...)
	c.Scholarships = append([]Scholarship{}, a.Scholarships...)
	for i := range c.Scholarships {
		c.Scholarships[i].Deadline = cloneString(c.Scholarships[i].Deadline)
	}
	c.Essays = append([]Essay{}, a.Essays...)
	c.Tags = append([]string{}, a.Tags...)
	c.Deadline = cloneString(a.Deadline)
	c.PreferredDeadline = cloneString(a.PreferredDeadline)
	c.DecisionDeadline = cloneString(a.DecisionDeadline)
	c.Documents = a.Documents.clone()
	if a.FinancialOffer != nil {
		offer := *a.FinancialOffer
		c.FinancialOffer = &offer
	}
	return c
}

// Label returns "University: Program" for display and log lines.
func (a *Application) Label() string {
	if a.ProgramName == "" {
		return a.UniversityName
	}
	return a.UniversityName + ": " + a.ProgramName
}

// Date returns a pointer to s, or nil when s is empty.
func Date(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Now formats t in TimestampLayout (UTC).
func Now(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
