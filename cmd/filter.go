package main

import (
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hollis-labs/contacts-cli/internal/filter"
	"github.com/hollis-labs/contacts-cli/internal/model"
	"github.com/hollis-labs/contacts-cli/internal/report"
	"github.com/hollis-labs/contacts-cli/internal/vcard"
)

var (
	filterInputPath string
	filterRulesPath string
	filterOutputDir string
)

var filterCmd = &cobra.Command{
	Use:   "filter",
	Short: "Remove contacts from a merged file by exclusion rules",
	RunE: func(cmd *cobra.Command, _ []string) error {
		rulesPath := filterRulesPath
		if rulesPath == "" {
			rulesPath = cfg.Filter.RulesPath
		}
		outputDir := filterOutputDir
		if outputDir == "" {
			outputDir = cfg.Output.Dir
		}
		if err := os.MkdirAll(outputDir, 0o755); err != nil {
			return eris.Wrapf(err, "create output dir %s", outputDir)
		}

		rules, err := filter.Load(rulesPath)
		if err != nil {
			return err
		}
		zap.L().Info("filter rules loaded",
			zap.String("path", rulesPath),
			zap.Int("active_rules", rules.ActiveRuleCount()),
		)

		f, err := os.Open(filterInputPath)
		if err != nil {
			return eris.Wrapf(err, "open %s", filterInputPath)
		}
		parsed, err := vcard.Parse(f, "")
		f.Close() //nolint:errcheck
		if err != nil {
			return eris.Wrapf(err, "parse %s", filterInputPath)
		}

		// The filter pass runs on already-merged output, so each parsed
		// card stands alone.
		records := make([]model.MergedRecord, len(parsed))
		for i, rec := range parsed {
			records[i] = model.MergedRecord{
				ContactRecord: rec,
				MergeSources:  []model.ContactRecord{rec},
			}
		}

		kept, excluded, reasons := rules.Apply(records)
		zap.L().Info("filter applied",
			zap.Int("total", len(records)),
			zap.Int("kept", len(kept)),
			zap.Int("excluded", len(excluded)),
		)

		if len(excluded) == 0 {
			zap.L().Info("no contacts excluded, nothing to write",
				zap.String("rules", rulesPath),
			)
			return nil
		}

		filteredPath := filepath.Join(outputDir, "filtered_contacts.vcf")
		excludedPath := filepath.Join(outputDir, "excluded_contacts.vcf")
		reportPath := filepath.Join(outputDir, "exclusion_report.txt")

		if err := writeFile(filteredPath, func(f *os.File) error {
			return vcard.Serialize(f, kept)
		}); err != nil {
			return err
		}
		if err := writeFile(excludedPath, func(f *os.File) error {
			return vcard.Serialize(f, excluded)
		}); err != nil {
			return err
		}
		if err := writeFile(reportPath, func(f *os.File) error {
			return report.WriteExclusionReport(f, filterInputPath, rulesPath, kept, excluded, reasons, time.Now())
		}); err != nil {
			return err
		}

		zap.L().Info("filter complete",
			zap.String("filtered", filteredPath),
			zap.String("excluded", excludedPath),
			zap.String("report", reportPath),
		)
		return nil
	},
}

func init() {
	filterCmd.Flags().StringVar(&filterInputPath, "input", "", "path to merged contacts file (required)")
	filterCmd.Flags().StringVar(&filterRulesPath, "rules", "", "path to filter rules YAML (default from config)")
	filterCmd.Flags().StringVar(&filterOutputDir, "output-dir", "", "directory for output files (default from config)")
	_ = filterCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(filterCmd)
}
