package report

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/hollis-labs/contacts-cli/internal/dedupe"
)

// WriteAuditXLSX writes the audit log as a spreadsheet: a Merges sheet
// with one row per merged group and a Conflicts sheet with one row per
// discarded value, for review outside the terminal.
func WriteAuditXLSX(path string, audit *dedupe.Audit) error {
	f := xlsx.NewFile()

	merges, err := f.AddSheet("Merges")
	if err != nil {
		return eris.Wrap(err, "report: add merges sheet")
	}
	addRow(merges, "merged_name", "records_merged", "sources", "phones", "emails")
	for _, entry := range audit.Entries {
		srcs := make([]string, len(entry.Sources))
		for i, s := range entry.Sources {
			srcs[i] = sourceID(s)
		}
		addRow(merges,
			entry.Merged.DisplayName,
			strconv.Itoa(len(entry.Sources)),
			strings.Join(srcs, "; "),
			strings.Join(entry.Merged.PhoneNumbers, "; "),
			strings.Join(entry.Merged.Emails, "; "),
		)
	}

	conflicts, err := f.AddSheet("Conflicts")
	if err != nil {
		return eris.Wrap(err, "report: add conflicts sheet")
	}
	addRow(conflicts, "merged_name", "property", "kept", "discarded", "discarded_from")
	for _, entry := range audit.Entries {
		for _, c := range entry.Conflicts {
			addRow(conflicts,
				entry.Merged.DisplayName,
				c.Property,
				c.Kept,
				c.Discarded,
				c.LoserName+" ["+string(c.LoserSrc)+"]",
			)
		}
	}

	return eris.Wrapf(f.Save(path), "report: save %s", path)
}

func addRow(sheet *xlsx.Sheet, values ...string) {
	row := sheet.AddRow()
	for _, v := range values {
		row.AddCell().Value = v
	}
}
