package migrate

import (
	"encoding/json"
	"math"

	"go.uber.org/zap"

	"github.com/gradtrack/gradtrack/internal/types"
)

type kind int

const (
	kindString kind = iota
	kindNullableString
	kindNumber
	kindInt
	kindBool
	kindObject
	kindNullableObject
	kindArray
)

// shape describes the JSON kind a field of types.Application must have.
type shape struct {
	kind   kind
	fields map[string]shape
	elem   *shape
}

var (
	str         = shape{kind: kindString}
	nullableStr = shape{kind: kindNullableString}
	num         = shape{kind: kindNumber}
	integer     = shape{kind: kindInt}
	boolean     = shape{kind: kindBool}
)

func object(fields map[string]shape) shape   { return shape{kind: kindObject, fields: fields} }
func nullable(fields map[string]shape) shape { return shape{kind: kindNullableObject, fields: fields} }
func array(elem shape) shape                 { return shape{kind: kindArray, elem: &elem} }

var documentShape = object(map[string]shape{
	"required":  boolean,
	"status":    str,
	"submitted": nullableStr,
	"filePath":  str,
})

var applicationShape = object(map[string]shape{
	"id":             str,
	"universityName": str,
	"programName":    str,
	"department":     str,
	"location":       str,
	"programType":    str,
	"website":        str,
	"rankings": object(map[string]shape{
		"usNews": str,
		"qs":     str,
		"the":    str,
	}),
	"applicationFee": num,
	"status":         str,
	"statusHistory": array(object(map[string]shape{
		"status": str,
		"date":   str,
	})),
	"isPinned":          boolean,
	"deadline":          nullableStr,
	"preferredDeadline": nullableStr,
	"decisionDeadline":  nullableStr,
	"documents": object(map[string]shape{
		"cv":                 documentShape,
		"statementOfPurpose": documentShape,
		"transcripts":        documentShape,
		"lor1":               documentShape,
		"lor2":               documentShape,
		"lor3":               documentShape,
		"writingSample":      documentShape,
	}),
	"facultyContacts": array(object(map[string]shape{
		"id":            str,
		"name":          str,
		"email":         str,
		"title":         str,
		"researchArea":  str,
		"status":        str,
		"lastContacted": nullableStr,
		"notes":         str,
	})),
	"recommenders": array(object(map[string]shape{
		"id":           str,
		"name":         str,
		"email":        str,
		"relationship": str,
		"status":       str,
		"dueDate":      nullableStr,
	})),
	"reminders": array(object(map[string]shape{
		"id":   str,
		"date": str,
		"text": str,
		"done": boolean,
	})),
	"scholarships": array(object(map[string]shape{
		"id":       str,
		"name":     str,
		"amount":   num,
		"deadline": nullableStr,
		"status":   str,
	})),
	"essays": array(object(map[string]shape{
		"id":        str,
		"prompt":    str,
		"wordLimit": integer,
		"status":    str,
	})),
	"financialOffer": nullable(map[string]shape{
		"stipend":                 num,
		"stipendPeriod":           str,
		"tuitionWaiverPercentage": num,
		"healthInsurance":         str,
		"assistantship":           str,
		"assistantshipHours":      integer,
		"notes":                   str,
	}),
	"tags":  array(str),
	"notes": str,
})

// decodeRecord turns a loose record into a fully shaped application.
// Fields of the wrong JSON kind fall back to their defaults so a single bad
// field never costs the whole record.
func (e *Engine) decodeRecord(rec Record) types.Application {
	clean, _ := sanitize(rec, applicationShape)

	var app types.Application
	raw, err := json.Marshal(clean)
	if err == nil {
		err = json.Unmarshal(raw, &app)
	}
	if err != nil {
		id, _ := rec["id"].(string)
		name, _ := rec["universityName"].(string)
		e.logger.Warn("could not decode application, keeping identity only",
			zap.String("id", id),
			zap.Error(err))
		app = types.Application{ID: id, UniversityName: name}
	}

	fillMissingDocuments(&app, clean)
	if app.ID == "" {
		app.ID = types.NewID()
	}
	app.SetDefaults()
	return app
}

// fillMissingDocuments restores default slots for documents absent from the record.
func fillMissingDocuments(app *types.Application, clean any) {
	obj, _ := clean.(map[string]any)
	docs, _ := obj["documents"].(map[string]any)
	for _, key := range types.DocumentKeys {
		if _, ok := docs[string(key)]; !ok {
			*app.Documents.Slot(key) = types.DefaultDocument(key)
		}
	}
}

// sanitize returns v with every known field coerced to s, and false when v
// itself does not fit s. Unknown fields are carried through untouched.
func sanitize(v any, s shape) (any, bool) {
	switch s.kind {
	case kindString:
		x, ok := v.(string)
		return x, ok
	case kindNullableString:
		if v == nil {
			return nil, true
		}
		x, ok := v.(string)
		return x, ok
	case kindNumber:
		x, ok := v.(float64)
		return x, ok
	case kindInt:
		x, ok := v.(float64)
		if !ok {
			return nil, false
		}
		if _, ok := wholeInt(x); !ok {
			return nil, false
		}
		return x, true
	case kindBool:
		x, ok := v.(bool)
		return x, ok
	case kindNullableObject:
		if v == nil {
			return nil, true
		}
		return sanitizeObject(v, s.fields)
	case kindObject:
		return sanitizeObject(v, s.fields)
	case kindArray:
		items, ok := v.([]any)
		if !ok {
			return nil, false
		}
		out := make([]any, 0, len(items))
		for _, item := range items {
			if clean, ok := sanitize(item, *s.elem); ok {
				out = append(out, clean)
			}
		}
		return out, true
	}
	return nil, false
}

// wholeInt converts x to an int when it is integral and fits.
func wholeInt(x float64) (int, bool) {
	if x != math.Trunc(x) || x < math.MinInt || x >= -math.MinInt {
		return 0, false
	}
	return int(x), true
}

func sanitizeObject(v any, fields map[string]shape) (any, bool) {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, false
	}
	out := make(map[string]any, len(obj))
	for key, val := range obj {
		fs, known := fields[key]
		if !known {
			out[key] = val
			continue
		}
		if clean, ok := sanitize(val, fs); ok {
			out[key] = clean
		}
	}
	return out, true
}
