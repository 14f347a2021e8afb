// Package report renders the human-readable artifacts of a merge run:
// the merge log, the run summary, the exclusion report, and an
// optional spreadsheet form of the audit log.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/hollis-labs/contacts-cli/internal/dedupe"
	"github.com/hollis-labs/contacts-cli/internal/model"
)

const rule = "================================================================================"

const timeLayout = "2006-01-02 15:04:05"

// sourceID renders the identifying line for one source record.
func sourceID(rec model.ContactRecord) string {
	name := rec.DisplayName
	if name == "" {
		name = "(no name)"
	}
	if rec.Source == "" {
		return name
	}
	return fmt.Sprintf("%s [%s]", name, rec.Source)
}

// WriteMergeLog writes the audit log: one block per merged group,
// listing every source record and a kept/discarded line for each
// conflicting field.
func WriteMergeLog(w io.Writer, audit *dedupe.Audit, generated time.Time) error {
	var b strings.Builder
	b.WriteString("Contact Merge Log\n")
	fmt.Fprintf(&b, "Generated: %s\n", generated.Format(timeLayout))
	fmt.Fprintf(&b, "Total contacts before: %d\n", audit.TotalBefore)
	fmt.Fprintf(&b, "Total contacts after: %d\n", audit.TotalAfter)
	fmt.Fprintf(&b, "Merge operations: %d\n", len(audit.Entries))
	b.WriteString(rule + "\n\n")

	for _, entry := range audit.Entries {
		fmt.Fprintf(&b, "Merged %d contacts -> %s\n", len(entry.Sources), sourceID(entry.Merged.ContactRecord))
		for _, src := range entry.Sources {
			fmt.Fprintf(&b, "  source: %s\n", sourceID(src))
		}
		for _, c := range entry.Conflicts {
			fmt.Fprintf(&b, "  %s kept: %s\n", c.Property, c.Kept)
			fmt.Fprintf(&b, "  %s discarded: %s (from %s [%s])\n", c.Property, c.Discarded, c.LoserName, c.LoserSrc)
		}
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return eris.Wrap(err, "report: write merge log")
}

// WriteSummary writes the run summary companion to the master file.
func WriteSummary(w io.Writer, input model.RunInput, audit *dedupe.Audit, masterPath, logPath string, generated time.Time) error {
	var b strings.Builder
	b.WriteString("Master Contacts Summary\n")
	fmt.Fprintf(&b, "Generated: %s\n", generated.Format(timeLayout))
	b.WriteString(rule + "\n\n")

	fmt.Fprintf(&b, "Source: Google Contacts (%s)\n", input.GooglePath)
	fmt.Fprintf(&b, "  original count: %d\n", input.GoogleCount)
	if input.ICloudPath != "" {
		fmt.Fprintf(&b, "\nSource: iCloud Contacts (%s)\n", input.ICloudPath)
		fmt.Fprintf(&b, "  original count: %d\n", input.ICloudCount)
	}

	b.WriteString("\nResults:\n")
	fmt.Fprintf(&b, "  total contacts before merge: %d\n", audit.TotalBefore)
	fmt.Fprintf(&b, "  duplicates merged: %d\n", audit.TotalBefore-audit.TotalAfter)
	fmt.Fprintf(&b, "  final contact count: %d\n", audit.TotalAfter)
	fmt.Fprintf(&b, "\nOutput file: %s\n", masterPath)
	fmt.Fprintf(&b, "Merge log: %s\n", logPath)

	_, err := io.WriteString(w, b.String())
	return eris.Wrap(err, "report: write summary")
}

// WriteExclusionReport writes the filter pass report, listing each
// excluded contact with the rule that matched it.
func WriteExclusionReport(w io.Writer, inputPath, rulesPath string, kept, excluded []model.MergedRecord, reasons []string, generated time.Time) error {
	var b strings.Builder
	b.WriteString("Contact Exclusion Report\n")
	fmt.Fprintf(&b, "Generated: %s\n", generated.Format(timeLayout))
	b.WriteString(rule + "\n\n")

	fmt.Fprintf(&b, "Input file: %s\n", inputPath)
	fmt.Fprintf(&b, "Filter rules: %s\n\n", rulesPath)
	fmt.Fprintf(&b, "Total contacts: %d\n", len(kept)+len(excluded))
	fmt.Fprintf(&b, "Kept: %d\n", len(kept))
	fmt.Fprintf(&b, "Excluded: %d\n\n", len(excluded))

	b.WriteString("Excluded contacts:\n")
	b.WriteString(strings.Repeat("-", 80) + "\n\n")

	for i, rec := range excluded {
		fmt.Fprintf(&b, "%d. %s\n", i+1, sourceID(rec.ContactRecord))
		fmt.Fprintf(&b, "   reason: %s\n", reasons[i])
		if len(rec.Emails) > 0 {
			fmt.Fprintf(&b, "   emails: %s\n", strings.Join(rec.Emails, ", "))
		}
		if len(rec.PhoneNumbers) > 0 {
			fmt.Fprintf(&b, "   phones: %s\n", strings.Join(rec.PhoneNumbers, ", "))
		}
		if rec.Organization != "" {
			fmt.Fprintf(&b, "   organization: %s\n", rec.Organization)
		}
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return eris.Wrap(err, "report: write exclusion report")
}
