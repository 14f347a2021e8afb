package dedupe

import (
	"github.com/hollis-labs/contacts-cli/internal/model"
)

// FieldConflict records a raw property that was discarded during a
// merge because the primary record defined the same property with a
// different value. Discarded values survive only in the audit log,
// never in the merged output.
type FieldConflict struct {
	Property  string
	Kept      string
	Discarded string
	LoserName string
	LoserSrc  model.Source
}

// MoreComplete is the total order used to pick a group's primary
// record: longer display name wins, ties prefer the icloud source
// (treated as the more recently curated export), remaining ties keep
// input order. Exposed so the tie-break policy is testable on its own.
func MoreComplete(a, b model.ContactRecord) bool {
	if len(a.DisplayName) != len(b.DisplayName) {
		return len(a.DisplayName) > len(b.DisplayName)
	}
	if (a.Source == model.SourceICloud) != (b.Source == model.SourceICloud) {
		return a.Source == model.SourceICloud
	}
	return false
}

// primaryIndex picks the group's primary record under MoreComplete.
// Strict "better than" comparison against the running best keeps the
// earliest record on full ties.
func primaryIndex(records []model.ContactRecord, group Group) int {
	best := group[0]
	for _, i := range group[1:] {
		if MoreComplete(records[i], records[best]) {
			best = i
		}
	}
	return best
}

// Merge collapses one duplicate group into a new record. Inputs are
// never mutated. The same group in the same order always produces the
// same output; a singleton merge is a structural copy of its record.
func Merge(records []model.ContactRecord, group Group) (model.MergedRecord, []FieldConflict) {
	pi := primaryIndex(records, group)
	primary := records[pi]

	out := model.MergedRecord{
		ContactRecord: model.ContactRecord{
			DisplayName: primary.DisplayName,
			Source:      primary.Source,
		},
	}

	// Union phones and emails across members in input order, deduped
	// by normalized form. The first-seen raw spelling is the one kept,
	// preserving formatting the user already knows.
	seenPhones := make(map[string]bool)
	seenEmails := make(map[string]bool)
	for _, i := range group {
		rec := records[i]
		for _, p := range rec.PhoneNumbers {
			n := NormalizePhone(p)
			if n == "" || seenPhones[n] {
				continue
			}
			seenPhones[n] = true
			out.PhoneNumbers = append(out.PhoneNumbers, p)
		}
		for _, e := range rec.Emails {
			n := NormalizeEmail(e)
			if n == "" || seenEmails[n] {
				continue
			}
			seenEmails[n] = true
			out.Emails = append(out.Emails, e)
		}
		if out.Organization == "" && rec.Organization != "" {
			out.Organization = rec.Organization
		}
		out.MergeSources = append(out.MergeSources, rec)
	}

	// Raw properties: union by property name with the primary record
	// first, so on a name collision the primary's value(s) win. A card
	// may legitimately repeat a property (several TEL, several ADR);
	// repeats within the owning record are all kept. Values lost to a
	// collision go to the audit log only.
	var conflicts []FieldConflict
	owner := make(map[string]int)
	kept := make(map[string]map[string]bool)
	appendProps := func(ordinal int, rec model.ContactRecord) {
		for _, prop := range rec.RawFields {
			if o, ok := owner[prop.Name]; !ok || o == ordinal {
				owner[prop.Name] = ordinal
				if kept[prop.Name] == nil {
					kept[prop.Name] = make(map[string]bool)
				}
				kept[prop.Name][prop.Value] = true
				out.RawFields = append(out.RawFields, prop)
				continue
			}
			if !kept[prop.Name][prop.Value] {
				conflicts = append(conflicts, FieldConflict{
					Property:  prop.Name,
					Kept:      firstKept(out.RawFields, prop.Name),
					Discarded: prop.Value,
					LoserName: rec.DisplayName,
					LoserSrc:  rec.Source,
				})
			}
		}
	}
	appendProps(0, primary)
	for ord, i := range group {
		if i != pi {
			appendProps(ord+1, records[i])
		}
	}

	return out, conflicts
}

func firstKept(props []model.Property, name string) string {
	for _, p := range props {
		if p.Name == name {
			return p.Value
		}
	}
	return ""
}
