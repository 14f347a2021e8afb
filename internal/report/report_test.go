package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hollis-labs/contacts-cli/internal/dedupe"
	"github.com/hollis-labs/contacts-cli/internal/model"
)

var testTime = time.Date(2026, 8, 24, 10, 30, 0, 0, time.UTC)

func sampleAudit() *dedupe.Audit {
	google := model.ContactRecord{
		DisplayName:  "Jane Doe",
		PhoneNumbers: []string{"(555) 123-4567"},
		Source:       model.SourceGoogle,
	}
	icloud := model.ContactRecord{
		DisplayName: "J. Doe",
		Source:      model.SourceICloud,
	}
	return &dedupe.Audit{
		TotalBefore: 3,
		TotalAfter:  2,
		Entries: []dedupe.AuditEntry{
			{
				Sources: []model.ContactRecord{google, icloud},
				Merged: model.MergedRecord{
					ContactRecord: model.ContactRecord{
						DisplayName:  "Jane Doe",
						PhoneNumbers: []string{"(555) 123-4567"},
						Source:       model.SourceGoogle,
					},
					MergeSources: []model.ContactRecord{google, icloud},
				},
				Conflicts: []dedupe.FieldConflict{
					{
						Property:  "NOTE",
						Kept:      "met at conference",
						Discarded: "college friend",
						LoserName: "J. Doe",
						LoserSrc:  model.SourceICloud,
					},
				},
			},
		},
	}
}

func sampleAuditEmpty() *dedupe.Audit {
	return &dedupe.Audit{TotalBefore: 2, TotalAfter: 2}
}

func TestWriteMergeLog(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteMergeLog(&buf, sampleAudit(), testTime))
	out := buf.String()

	assert.Contains(t, out, "Contact Merge Log")
	assert.Contains(t, out, "Generated: 2026-08-24 10:30:00")
	assert.Contains(t, out, "Total contacts before: 3")
	assert.Contains(t, out, "Total contacts after: 2")
	assert.Contains(t, out, "Merge operations: 1")
	assert.Contains(t, out, "Merged 2 contacts -> Jane Doe [google]")
	assert.Contains(t, out, "source: Jane Doe [google]")
	assert.Contains(t, out, "source: J. Doe [icloud]")
	assert.Contains(t, out, "NOTE kept: met at conference")
	assert.Contains(t, out, "NOTE discarded: college friend (from J. Doe [icloud])")
}

func TestWriteMergeLog_NoMerges(t *testing.T) {
	var buf bytes.Buffer
	audit := &dedupe.Audit{TotalBefore: 2, TotalAfter: 2}
	require.NoError(t, WriteMergeLog(&buf, audit, testTime))

	assert.Contains(t, buf.String(), "Merge operations: 0")
}

func TestWriteSummary(t *testing.T) {
	var buf bytes.Buffer
	input := model.RunInput{
		GooglePath:  "g.vcf",
		ICloudPath:  "i.vcf",
		GoogleCount: 2,
		ICloudCount: 1,
	}
	require.NoError(t, WriteSummary(&buf, input, sampleAudit(), "out/master.vcf", "out/log.txt", testTime))
	out := buf.String()

	assert.Contains(t, out, "Source: Google Contacts (g.vcf)")
	assert.Contains(t, out, "Source: iCloud Contacts (i.vcf)")
	assert.Contains(t, out, "total contacts before merge: 3")
	assert.Contains(t, out, "duplicates merged: 1")
	assert.Contains(t, out, "final contact count: 2")
	assert.Contains(t, out, "Output file: out/master.vcf")
}

func TestWriteSummary_GoogleOnly(t *testing.T) {
	var buf bytes.Buffer
	input := model.RunInput{GooglePath: "g.vcf", GoogleCount: 3}
	require.NoError(t, WriteSummary(&buf, input, sampleAudit(), "m.vcf", "l.txt", testTime))

	assert.NotContains(t, buf.String(), "iCloud Contacts")
}

func TestWriteExclusionReport(t *testing.T) {
	var buf bytes.Buffer
	kept := []model.MergedRecord{
		{ContactRecord: model.ContactRecord{DisplayName: "Jane Doe"}},
	}
	excluded := []model.MergedRecord{
		{ContactRecord: model.ContactRecord{
			DisplayName:  "Spam Caller",
			Emails:       []string{"bot@spamlist.example"},
			PhoneNumbers: []string{"900-555-0100"},
			Organization: "Spamlist",
		}},
	}
	reasons := []string{"email domain: spamlist.example"}

	require.NoError(t, WriteExclusionReport(&buf, "in.vcf", "rules.yaml", kept, excluded, reasons, testTime))
	out := buf.String()

	assert.Contains(t, out, "Total contacts: 2")
	assert.Contains(t, out, "Kept: 1")
	assert.Contains(t, out, "Excluded: 1")
	assert.Contains(t, out, "1. Spam Caller")
	assert.Contains(t, out, "reason: email domain: spamlist.example")
	assert.Contains(t, out, "emails: bot@spamlist.example")
	assert.Contains(t, out, "phones: 900-555-0100")
	assert.Contains(t, out, "organization: Spamlist")
}
