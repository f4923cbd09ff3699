package models

import (
	"strings"
)

// FieldKeys holds the configured CRM field API names the engine reads.
// CRM records are schema-less maps; every deployment names its own fields.
type FieldKeys struct {
	// MatchKey is the field holding the name used to locate the
	// destination counterpart (folder or record)
	MatchKey string

	// Completion is the checkbox field marking a record as processed
	Completion string

	// WorkDriveURL is the field holding the WorkDrive folder URL
	// (field-sync flow only)
	WorkDriveURL string

	// WorkDriveFolderID is the field holding the WorkDrive folder ID
	// (field-sync flow only)
	WorkDriveFolderID string

	// Trace is an optional destination field that receives the source
	// record ID for traceability (field-sync flow only)
	Trace string
}

// Record is a CRM record: the raw field map returned by the API plus
// accessors for the handful of fields the engine cares about.
// The map is read-only to the engine.
type Record struct {
	fields map[string]any
	keys   FieldKeys
}

// NewRecord wraps a raw CRM field map
func NewRecord(fields map[string]any, keys FieldKeys) Record {
	if fields == nil {
		fields = map[string]any{}
	}
	return Record{fields: fields, keys: keys}
}

// ID returns the record identifier, or "" if absent
func (r Record) ID() string {
	return r.stringField("id")
}

// MatchKey returns the trimmed name used to find the destination
// counterpart, or "" if the field is absent or blank
func (r Record) MatchKey() string {
	return r.stringField(r.keys.MatchKey)
}

// Completed reports whether the completion checkbox is set
func (r Record) Completed() bool {
	v, ok := r.fields[r.keys.Completion]
	if !ok {
		return false
	}
	b, ok := v.(bool)
	return ok && b
}

// WorkDriveURL returns the trimmed WorkDrive URL field value
func (r Record) WorkDriveURL() string {
	return r.stringField(r.keys.WorkDriveURL)
}

// WorkDriveFolderID returns the trimmed WorkDrive folder ID field value
func (r Record) WorkDriveFolderID() string {
	return r.stringField(r.keys.WorkDriveFolderID)
}

// Keys returns the field names this record was built with
func (r Record) Keys() FieldKeys {
	return r.keys
}

func (r Record) stringField(key string) string {
	if key == "" {
		return ""
	}
	v, ok := r.fields[key]
	if !ok || v == nil {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}
