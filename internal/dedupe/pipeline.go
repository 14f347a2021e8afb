package dedupe

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/hollis-labs/contacts-cli/internal/model"
)

// ErrEmptyInput is returned when both contact sources are empty. The
// pipeline fails fast, before any output is produced.
var ErrEmptyInput = eris.New("dedupe: both contact sources are empty")

// AuditEntry describes one non-trivial merge: which records were
// combined, what came out, and which raw values were discarded.
type AuditEntry struct {
	Sources   []model.ContactRecord
	Merged    model.MergedRecord
	Conflicts []FieldConflict
}

// Audit is the pipeline's merge log, consumed by the report writer.
type Audit struct {
	TotalBefore int
	TotalAfter  int
	Entries     []AuditEntry
}

// Run reconciles the two exports into one deduplicated list. Inputs
// are combined google-first then icloud, each preserving file order;
// that combined order drives every input-order tie-break downstream,
// so the same inputs always produce the same output. Malformed records
// (no name, no phone, no email) are logged and pass through as
// singletons; the only failure is both sources being empty.
func Run(google, icloud []model.ContactRecord) ([]model.MergedRecord, *Audit, error) {
	if len(google) == 0 && len(icloud) == 0 {
		return nil, nil, ErrEmptyInput
	}

	combined := make([]model.ContactRecord, 0, len(google)+len(icloud))
	combined = append(combined, google...)
	combined = append(combined, icloud...)

	for _, rec := range combined {
		if rec.DisplayName == "" && !rec.HasIdentity() {
			zap.L().Warn("dedupe: record has no name and no contact fields, keeping as-is",
				zap.String("source", string(rec.Source)),
			)
		}
	}

	groups := Detect(combined)

	merged := make([]model.MergedRecord, 0, len(groups))
	audit := &Audit{TotalBefore: len(combined)}
	for _, g := range groups {
		m, conflicts := Merge(combined, g)
		merged = append(merged, m)
		if len(g) > 1 {
			audit.Entries = append(audit.Entries, AuditEntry{
				Sources:   m.MergeSources,
				Merged:    m,
				Conflicts: conflicts,
			})
		}
	}
	audit.TotalAfter = len(merged)

	zap.L().Info("dedupe: merge complete",
		zap.Int("records_in", len(combined)),
		zap.Int("records_out", len(merged)),
		zap.Int("groups_merged", len(audit.Entries)),
	)

	return merged, audit, nil
}
