package vcard

import (
	"bufio"
	"io"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/hollis-labs/contacts-cli/internal/model"
)

// foldWidth is the maximum emitted line length before folding, per
// RFC 2425.
const foldWidth = 75

// Serialize writes merged records as vCard 3.0 cards. FN, TEL, EMAIL
// and ORG come from the merged fields; every other raw property is
// re-emitted in its original order with its original parameters.
func Serialize(w io.Writer, records []model.MergedRecord) error {
	bw := bufio.NewWriter(w)

	for _, rec := range records {
		writeFolded(bw, "BEGIN:VCARD")
		writeFolded(bw, "VERSION:3.0")
		writeFolded(bw, "FN:"+escape(displayNameOrFallback(rec)))

		for _, prop := range rec.RawFields {
			switch baseName(prop.Name) {
			case "FN", "TEL", "EMAIL", "ORG":
				continue
			}
			line := prop.Name
			if prop.Params != "" {
				line += ";" + prop.Params
			}
			writeFolded(bw, line+":"+prop.Value)
		}

		for _, phone := range rec.PhoneNumbers {
			writeFolded(bw, "TEL;TYPE=CELL:"+phone)
		}
		for _, email := range rec.Emails {
			writeFolded(bw, "EMAIL;TYPE=INTERNET:"+email)
		}
		if rec.Organization != "" {
			writeFolded(bw, "ORG:"+escape(rec.Organization))
		}

		writeFolded(bw, "END:VCARD")
	}

	return eris.Wrap(bw.Flush(), "vcard: write output")
}

// displayNameOrFallback returns the merged display name, or the most
// useful stand-in when it is empty (FN is mandatory in vCard 3.0).
func displayNameOrFallback(rec model.MergedRecord) string {
	switch {
	case rec.DisplayName != "":
		return rec.DisplayName
	case len(rec.PhoneNumbers) > 0:
		return rec.PhoneNumbers[0]
	case len(rec.Emails) > 0:
		return rec.Emails[0]
	case rec.Organization != "":
		return rec.Organization
	}
	return "Unknown Contact"
}

// writeFolded emits one logical line, folding it with a leading space
// on continuation lines when it exceeds foldWidth bytes.
func writeFolded(bw *bufio.Writer, line string) {
	for len(line) > foldWidth {
		cut := foldWidth
		// Never split a UTF-8 rune across a fold.
		for cut > 1 && line[cut]&0xC0 == 0x80 {
			cut--
		}
		bw.WriteString(line[:cut])
		bw.WriteString("\r\n")
		line = " " + line[cut:]
	}
	bw.WriteString(line)
	bw.WriteString("\r\n")
}

// escape encodes vCard text escapes for values we generate ourselves.
func escape(value string) string {
	var b strings.Builder
	for _, r := range value {
		switch r {
		case '\\', ';', ',':
			b.WriteRune('\\')
			b.WriteRune(r)
		case '\n':
			b.WriteString("\\n")
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
