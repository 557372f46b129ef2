package types

// DocumentKey names one of the fixed document slots.
type DocumentKey string

const (
	DocCV                 DocumentKey = "cv"
	DocStatementOfPurpose DocumentKey = "statementOfPurpose"
	DocTranscripts        DocumentKey = "transcripts"
	DocLOR1               DocumentKey = "lor1"
	DocLOR2               DocumentKey = "lor2"
	DocLOR3               DocumentKey = "lor3"
	DocWritingSample      DocumentKey = "writingSample"
)

// DocumentKeys lists the slots in display order. The set is fixed.
var DocumentKeys = []DocumentKey{
	DocCV,
	DocStatementOfPurpose,
	DocTranscripts,
	DocLOR1,
	DocLOR2,
	DocLOR3,
	DocWritingSample,
}

// DefaultRequired is whether each slot is required on a new application.
var DefaultRequired = map[DocumentKey]bool{
	DocCV:                 true,
	DocStatementOfPurpose: true,
	DocTranscripts:        true,
	DocLOR1:               true,
	DocLOR2:               true,
	DocLOR3:               false,
	DocWritingSample:      false,
}

// Document is the state of one slot.
type Document struct {
	Required  bool           `json:"required" yaml:"required"`
	Status    DocumentStatus `json:"status" yaml:"status"`
	Submitted *string        `json:"submitted" yaml:"submitted"`
	FilePath  string         `json:"filePath,omitempty" yaml:"filePath,omitempty"`
}

// Documents is the fixed mapping of slot to document state.
type Documents struct {
	CV                 Document `json:"cv" yaml:"cv"`
	StatementOfPurpose Document `json:"statementOfPurpose" yaml:"statementOfPurpose"`
	Transcripts        Document `json:"transcripts" yaml:"transcripts"`
	LOR1               Document `json:"lor1" yaml:"lor1"`
	LOR2               Document `json:"lor2" yaml:"lor2"`
	LOR3               Document `json:"lor3" yaml:"lor3"`
	WritingSample      Document `json:"writingSample" yaml:"writingSample"`
}

// DefaultDocuments returns every slot in its initial state.
func DefaultDocuments() Documents {
	var d Documents
	for _, key := range DocumentKeys {
		*d.Slot(key) = DefaultDocument(key)
	}
	return d
}

// DefaultDocument is the initial state of slot key.
func DefaultDocument(key DocumentKey) Document {
	return Document{
		Required:  DefaultRequired[key],
		Status:    DocNotStarted,
		Submitted: nil,
	}
}

// Slot returns a pointer to the document stored under key, or nil for an unknown key.
func (d *Documents) Slot(key DocumentKey) *Document {
	switch key {
	case DocCV:
		return &d.CV
	case DocStatementOfPurpose:
		return &d.StatementOfPurpose
	case DocTranscripts:
		return &d.Transcripts
	case DocLOR1:
		return &d.LOR1
	case DocLOR2:
		return &d.LOR2
	case DocLOR3:
		return &d.LOR3
	case DocWritingSample:
		return &d.WritingSample
	}
	return nil
}

// Progress counts required slots and how many of them are submitted.
func (d *Documents) Progress() (submitted, required int) {
	for _, key := range DocumentKeys {
		doc := d.Slot(key)
		if !doc.Required {
			continue
		}
		required++
		if doc.Status == DocSubmitted {
			submitted++
		}
	}
	return submitted, required
}

func (d *Documents) setDefaults() {
	for _, key := range DocumentKeys {
		doc := d.Slot(key)
		if doc.Status == "" {
			doc.Status = DocNotStarted
		}
	}
}

func (d Documents) clone() Documents {
	c := d
	for _, key := range DocumentKeys {
		doc := c.Slot(key)
		doc.Submitted = cloneString(doc.Submitted)
	}
	return c
}
