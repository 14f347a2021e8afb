package model

// Source identifies which address-book export a record came from. It is
// provenance metadata only: merge tie-breaking may consult it, duplicate
// detection never does.
type Source string

const (
	SourceGoogle Source = "google"
	SourceICloud Source = "icloud"
)

// Property is a single vCard property as it appeared in the input:
// name, raw parameter string (everything between the first ';' and the
// ':', may be empty) and the raw value text.
type Property struct {
	Name   string `json:"name"`
	Params string `json:"params,omitempty"`
	Value  string `json:"value"`
}

// ContactRecord is the canonical in-memory representation of one parsed
// contact. Records are never mutated after parsing; merging always
// produces a new record.
type ContactRecord struct {
	DisplayName  string   `json:"display_name"`
	PhoneNumbers []string `json:"phone_numbers,omitempty"`
	Emails       []string `json:"emails,omitempty"`
	Organization string   `json:"organization,omitempty"`
	Source       Source   `json:"source"`

	// RawFields preserves every property of the source card in original
	// order so unknown fields survive re-serialization untouched.
	RawFields []Property `json:"raw_fields,omitempty"`
}

// HasIdentity reports whether the record carries at least one field
// usable for duplicate detection (a phone number or an email).
func (c ContactRecord) HasIdentity() bool {
	return len(c.PhoneNumbers) > 0 || len(c.Emails) > 0
}

// RawValue returns the value of the first raw property with the given
// name, or "" if the card has none.
func (c ContactRecord) RawValue(name string) string {
	for _, p := range c.RawFields {
		if p.Name == name {
			return p.Value
		}
	}
	return ""
}

// MergedRecord is the result of collapsing one duplicate group. It has
// the shape of a ContactRecord plus the ordered list of records it was
// built from, kept for the audit log.
type MergedRecord struct {
	ContactRecord
	MergeSources []ContactRecord `json:"merge_sources"`
}
