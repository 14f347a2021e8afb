// Package filter applies user-defined exclusion rules to merged
// contacts. Rules run after the merge pipeline and never feed back
// into merge decisions.
package filter

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/hollis-labs/contacts-cli/internal/dedupe"
	"github.com/hollis-labs/contacts-cli/internal/model"
)

// Rules holds the exclusion configuration. All matching is
// case-insensitive; domain, organization and name-pattern rules are
// substring matches, email rules are exact, phone-prefix rules compare
// digit strings.
type Rules struct {
	ExcludeEmailDomains  []string `yaml:"exclude_email_domains"`
	ExcludeEmails        []string `yaml:"exclude_emails"`
	ExcludeOrganizations []string `yaml:"exclude_organizations"`
	ExcludePhonePrefixes []string `yaml:"exclude_phone_prefixes"`
	ExcludeNamePatterns  []string `yaml:"exclude_name_patterns"`

	// KeepIfNoteContains short-circuits every exclusion rule when the
	// contact's NOTE contains one of the phrases.
	KeepIfNoteContains []string `yaml:"keep_if_note_contains"`
}

// Load reads a rules file. A missing file is not an error: it yields
// empty rules that exclude nothing, matching the tool's opt-in design.
func Load(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			zap.L().Warn("filter: rules file not found, nothing will be excluded",
				zap.String("path", path),
			)
			return &Rules{}, nil
		}
		return nil, eris.Wrapf(err, "filter: read rules %s", path)
	}

	var rules Rules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, eris.Wrapf(err, "filter: parse rules %s", path)
	}
	return &rules, nil
}

// ActiveRuleCount returns how many exclusion values are configured.
func (r *Rules) ActiveRuleCount() int {
	return len(r.ExcludeEmailDomains) + len(r.ExcludeEmails) +
		len(r.ExcludeOrganizations) + len(r.ExcludePhonePrefixes) +
		len(r.ExcludeNamePatterns)
}

// ShouldExclude evaluates the rules against one merged record and
// returns the first matching reason. Keep-phrases win over every
// exclusion rule.
func (r *Rules) ShouldExclude(rec model.MergedRecord) (bool, string) {
	if note := rec.RawValue("NOTE"); note != "" {
		lower := strings.ToLower(note)
		for _, phrase := range r.KeepIfNoteContains {
			if phrase != "" && strings.Contains(lower, strings.ToLower(phrase)) {
				return false, ""
			}
		}
	}

	for _, email := range rec.Emails {
		lower := strings.ToLower(email)
		for _, domain := range r.ExcludeEmailDomains {
			if domain != "" && strings.Contains(lower, strings.ToLower(domain)) {
				return true, "email domain: " + domain
			}
		}
		for _, excluded := range r.ExcludeEmails {
			if excluded != "" && lower == strings.ToLower(excluded) {
				return true, "email: " + excluded
			}
		}
	}

	if rec.Organization != "" {
		org := strings.ToLower(rec.Organization)
		for _, excluded := range r.ExcludeOrganizations {
			if excluded != "" && strings.Contains(org, strings.ToLower(excluded)) {
				return true, "organization: " + excluded
			}
		}
	}

	for _, phone := range rec.PhoneNumbers {
		digits := dedupe.NormalizePhone(phone)
		for _, prefix := range r.ExcludePhonePrefixes {
			p := dedupe.NormalizePhone(prefix)
			if p != "" && strings.HasPrefix(digits, p) {
				return true, "phone prefix: " + prefix
			}
		}
	}

	name := strings.ToLower(rec.DisplayName)
	for _, pattern := range r.ExcludeNamePatterns {
		if pattern != "" && strings.Contains(name, strings.ToLower(pattern)) {
			return true, "name pattern: " + pattern
		}
	}

	return false, ""
}

// Apply partitions merged records into kept and excluded sets,
// returning one reason per excluded record.
func (r *Rules) Apply(records []model.MergedRecord) (kept, excluded []model.MergedRecord, reasons []string) {
	for _, rec := range records {
		if drop, reason := r.ShouldExclude(rec); drop {
			excluded = append(excluded, rec)
			reasons = append(reasons, reason)
			continue
		}
		kept = append(kept, rec)
	}
	return kept, excluded, reasons
}
