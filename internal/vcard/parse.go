// Package vcard reads and writes vCard 3.0 contact exports. Parsing
// keeps every property of a card, in order, so fields the model does
// not understand survive a merge round-trip untouched.
package vcard

import (
	"bufio"
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/hollis-labs/contacts-cli/internal/model"
)

// Parse reads all cards from r, tagging each record with the given
// source. Cards that cannot be understood are logged and skipped;
// a card without an FN parses with an empty display name.
func Parse(r io.Reader, src model.Source) ([]model.ContactRecord, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var records []model.ContactRecord
	var lines []string
	inCard := false

	flush := func() {
		if rec, ok := buildRecord(unfold(lines), src); ok {
			records = append(records, rec)
		}
		lines = lines[:0]
	}

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		upper := strings.ToUpper(strings.TrimSpace(line))
		switch {
		case upper == "BEGIN:VCARD":
			if inCard {
				zap.L().Warn("vcard: unterminated card, discarding")
				lines = lines[:0]
			}
			inCard = true
		case upper == "END:VCARD":
			if inCard {
				flush()
			}
			inCard = false
		case inCard:
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, eris.Wrap(err, "vcard: read input")
	}
	if inCard {
		zap.L().Warn("vcard: input ended inside a card, discarding")
	}

	return records, nil
}

// unfold joins RFC 2425 continuation lines (lines beginning with a
// space or tab continue the previous line).
func unfold(lines []string) []string {
	var out []string
	for _, line := range lines {
		if len(line) > 0 && (line[0] == ' ' || line[0] == '\t') && len(out) > 0 {
			out[len(out)-1] += line[1:]
			continue
		}
		out = append(out, line)
	}
	return out
}

// buildRecord extracts the structured fields from one card's unfolded
// property lines. Every property except VERSION is retained raw.
func buildRecord(lines []string, src model.Source) (model.ContactRecord, bool) {
	rec := model.ContactRecord{Source: src}

	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		prop, ok := parseProperty(line)
		if !ok {
			zap.L().Warn("vcard: skipping malformed property line", zap.String("line", line))
			continue
		}
		if baseName(prop.Name) == "VERSION" {
			continue
		}
		rec.RawFields = append(rec.RawFields, prop)

		switch baseName(prop.Name) {
		case "FN":
			if rec.DisplayName == "" {
				rec.DisplayName = unescape(prop.Value)
			}
		case "TEL":
			if v := strings.TrimSpace(prop.Value); v != "" {
				rec.PhoneNumbers = append(rec.PhoneNumbers, v)
			}
		case "EMAIL":
			if v := strings.TrimSpace(prop.Value); v != "" {
				rec.Emails = append(rec.Emails, v)
			}
		case "ORG":
			if rec.Organization == "" {
				// ORG is a structured value; the organization name is
				// the first component.
				rec.Organization = unescape(splitStructured(prop.Value)[0])
			}
		}
	}

	if len(rec.RawFields) == 0 {
		return rec, false
	}
	return rec, true
}

// parseProperty splits "NAME;PARAMS:VALUE". The name keeps any group
// prefix (item1.TEL) so grouped properties re-emit intact.
func parseProperty(line string) (model.Property, bool) {
	colon := strings.Index(line, ":")
	if colon < 0 {
		return model.Property{}, false
	}
	head, value := line[:colon], line[colon+1:]

	name, params := head, ""
	if semi := strings.Index(head, ";"); semi >= 0 {
		name, params = head[:semi], head[semi+1:]
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Property{}, false
	}
	return model.Property{Name: name, Params: params, Value: value}, true
}

// baseName strips a group prefix and uppercases the property name:
// "item1.tel" -> "TEL".
func baseName(name string) string {
	if dot := strings.LastIndex(name, "."); dot >= 0 {
		name = name[dot+1:]
	}
	return strings.ToUpper(name)
}

// splitStructured splits a structured value on unescaped semicolons.
func splitStructured(value string) []string {
	var parts []string
	var b strings.Builder
	escaped := false
	for _, r := range value {
		switch {
		case escaped:
			b.WriteRune('\\')
			b.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == ';':
			parts = append(parts, b.String())
			b.Reset()
		default:
			b.WriteRune(r)
		}
	}
	if escaped {
		b.WriteRune('\\')
	}
	parts = append(parts, b.String())
	return parts
}

// unescape decodes vCard text escapes.
func unescape(value string) string {
	var b strings.Builder
	escaped := false
	for _, r := range value {
		if escaped {
			switch r {
			case 'n', 'N':
				b.WriteRune('\n')
			default:
				b.WriteRune(r)
			}
			escaped = false
			continue
		}
		if r == '\\' {
			escaped = true
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
