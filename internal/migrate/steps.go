package migrate

import (
	"maps"
	"strconv"
	"time"

	"github.com/gradtrack/gradtrack/internal/types"
)

// Migrations returns the built-in chain keyed by source version.
//
//	0 -> 1  wrap the legacy bare array in the envelope
//	1 -> 2  pinning and status history
//	2 -> 3  decision deadline, financial offer and the nested record lists
//	3 -> 4  normalised document slots
func Migrations() map[int]Migration {
	return map[int]Migration{
		0: wrapLegacyArray,
		1: addPinAndHistory,
		2: addDeadlinesAndRecords,
		3: normalizeDocuments,
	}
}

// wrapLegacyArray accepts a bare array, or an object that lost its version
// but still carries an applications array. Elements that are not objects are
// not applications and are skipped. Records without an id get one; numeric
// ids from timestamp-derived legacy data are kept as their decimal string.
func wrapLegacyArray(data any, now time.Time) Envelope {
	var items []any
	switch v := data.(type) {
	case []any:
		items = v
	case map[string]any:
		items, _ = v["applications"].([]any)
	}

	records := make([]Record, 0, len(items))
	for _, rec := range objects(items) {
		rec = maps.Clone(rec)
		switch id := rec["id"].(type) {
		case string:
			if id == "" {
				rec["id"] = types.NewID()
			}
		case float64:
			rec["id"] = strconv.FormatFloat(id, 'f', -1, 64)
		default:
			rec["id"] = types.NewID()
		}
		records = append(records, rec)
	}

	return Envelope{Version: 1, Applications: records, LastUpdated: types.Now(now)}
}

func addPinAndHistory(data any, now time.Time) Envelope {
	return upgradeEach(data, 2, now, func(rec Record) {
		setDefault(rec, "isPinned", false)
		setDefault(rec, "statusHistory", []any{})
	})
}

func addDeadlinesAndRecords(data any, now time.Time) Envelope {
	return upgradeEach(data, 3, now, func(rec Record) {
		setDefault(rec, "deadline", nil)
		setDefault(rec, "preferredDeadline", nil)
		setDefault(rec, "decisionDeadline", nil)
		setDefault(rec, "financialOffer", nil)
		for _, key := range []string{"facultyContacts", "recommenders", "reminders", "scholarships", "essays", "tags"} {
			setDefault(rec, key, []any{})
		}
		setDefault(rec, "notes", "")
	})
}

// normalizeDocuments makes every one of the fixed slots present and shaped.
// Version 3 files could hold a bare boolean per slot (true meaning sent) or a
// bare status string.
func normalizeDocuments(data any, now time.Time) Envelope {
	return upgradeEach(data, 4, now, func(rec Record) {
		old, _ := rec["documents"].(map[string]any)
		docs := make(map[string]any, len(types.DocumentKeys))
		for k, v := range old {
			docs[k] = v
		}

		for _, key := range types.DocumentKeys {
			required := types.DefaultRequired[key]
			slot := map[string]any{
				"required":  required,
				"status":    string(types.DocNotStarted),
				"submitted": nil,
			}

			switch v := old[string(key)].(type) {
			case map[string]any:
				slot = maps.Clone(v)
				if _, ok := slot["required"].(bool); !ok {
					slot["required"] = required
				}
				if s, ok := slot["status"].(string); !ok || s == "" {
					slot["status"] = string(types.DocNotStarted)
				}
				if _, ok := slot["submitted"]; !ok {
					slot["submitted"] = nil
				}
			case bool:
				if v {
					slot["status"] = string(types.DocSubmitted)
				}
			case string:
				if v != "" {
					slot["status"] = v
				}
			}
			docs[string(key)] = slot
		}
		rec["documents"] = docs
	})
}

// upgradeEach copies every record of data, applies fn to the copy and
// returns the copies at version to.
func upgradeEach(data any, to int, now time.Time, fn func(Record)) Envelope {
	in := toEnvelope(data)
	out := make([]Record, 0, len(in.Applications))
	for _, rec := range in.Applications {
		rec = maps.Clone(rec)
		fn(rec)
		out = append(out, rec)
	}
	return Envelope{Version: to, Applications: out, LastUpdated: types.Now(now)}
}

func setDefault(rec Record, key string, value any) {
	if _, ok := rec[key]; !ok {
		rec[key] = value
	}
}
