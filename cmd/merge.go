package main

import (
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hollis-labs/contacts-cli/internal/dedupe"
	"github.com/hollis-labs/contacts-cli/internal/model"
	"github.com/hollis-labs/contacts-cli/internal/report"
	"github.com/hollis-labs/contacts-cli/internal/vcard"
)

var (
	mergeGooglePath string
	mergeICloudPath string
	mergeOutputDir  string
	mergeXLSX       bool
)

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Merge two vCard exports into one deduplicated master file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		outputDir := mergeOutputDir
		if outputDir == "" {
			outputDir = cfg.Output.Dir
		}
		if err := os.MkdirAll(outputDir, 0o755); err != nil {
			return eris.Wrapf(err, "create output dir %s", outputDir)
		}

		// The two exports are independent files; parse them concurrently.
		var google, icloud []model.ContactRecord
		g, _ := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			google, err = parseExport(mergeGooglePath, model.SourceGoogle)
			return err
		})
		if mergeICloudPath != "" {
			g.Go(func() error {
				var err error
				icloud, err = parseExport(mergeICloudPath, model.SourceICloud)
				return err
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		zap.L().Info("parsed exports",
			zap.Int("google", len(google)),
			zap.Int("icloud", len(icloud)),
		)

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		input := model.RunInput{
			GooglePath:  mergeGooglePath,
			ICloudPath:  mergeICloudPath,
			GoogleCount: len(google),
			ICloudCount: len(icloud),
		}
		run, err := st.CreateRun(ctx, input)
		if err != nil {
			return err
		}

		merged, audit, err := dedupe.Run(google, icloud)
		if err != nil {
			_ = st.CompleteRun(ctx, run.ID, &model.RunResult{Error: err.Error()})
			return eris.Wrap(err, "merge")
		}

		masterPath := filepath.Join(outputDir, "master_contacts.vcf")
		logPath := filepath.Join(outputDir, "merge_log.txt")
		summaryPath := filepath.Join(outputDir, "master_contacts_summary.txt")
		now := time.Now()

		if err := writeFile(masterPath, func(f *os.File) error {
			return vcard.Serialize(f, merged)
		}); err != nil {
			_ = st.CompleteRun(ctx, run.ID, &model.RunResult{Error: err.Error()})
			return err
		}
		if err := writeFile(logPath, func(f *os.File) error {
			return report.WriteMergeLog(f, audit, now)
		}); err != nil {
			_ = st.CompleteRun(ctx, run.ID, &model.RunResult{Error: err.Error()})
			return err
		}
		if err := writeFile(summaryPath, func(f *os.File) error {
			return report.WriteSummary(f, input, audit, masterPath, logPath, now)
		}); err != nil {
			_ = st.CompleteRun(ctx, run.ID, &model.RunResult{Error: err.Error()})
			return err
		}
		if mergeXLSX {
			xlsxPath := filepath.Join(outputDir, "merge_audit.xlsx")
			if err := report.WriteAuditXLSX(xlsxPath, audit); err != nil {
				_ = st.CompleteRun(ctx, run.ID, &model.RunResult{Error: err.Error()})
				return err
			}
			zap.L().Info("audit spreadsheet written", zap.String("path", xlsxPath))
		}

		result := &model.RunResult{
			TotalBefore:  audit.TotalBefore,
			TotalAfter:   audit.TotalAfter,
			GroupsMerged: len(audit.Entries),
			MasterPath:   masterPath,
			LogPath:      logPath,
		}
		if err := st.CompleteRun(ctx, run.ID, result); err != nil {
			return err
		}

		zap.L().Info("merge complete",
			zap.String("run_id", run.ID),
			zap.Int("contacts_before", audit.TotalBefore),
			zap.Int("contacts_after", audit.TotalAfter),
			zap.Int("groups_merged", len(audit.Entries)),
			zap.String("master", masterPath),
		)
		return nil
	},
}

// parseExport reads one vCard export file.
func parseExport(path string, src model.Source) ([]model.ContactRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "open %s export %s", src, path)
	}
	defer f.Close() //nolint:errcheck

	records, err := vcard.Parse(f, src)
	if err != nil {
		return nil, eris.Wrapf(err, "parse %s export %s", src, path)
	}
	return records, nil
}

// writeFile creates path and hands it to write, closing on the way out.
func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "create %s", path)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return eris.Wrapf(f.Close(), "close %s", path)
}

func init() {
	mergeCmd.Flags().StringVar(&mergeGooglePath, "google", "", "path to Google contacts vCard export (required)")
	mergeCmd.Flags().StringVar(&mergeICloudPath, "icloud", "", "path to iCloud contacts vCard export")
	mergeCmd.Flags().StringVar(&mergeOutputDir, "output-dir", "", "directory for output files (default from config)")
	mergeCmd.Flags().BoolVar(&mergeXLSX, "xlsx", false, "also write the audit log as merge_audit.xlsx")
	_ = mergeCmd.MarkFlagRequired("google")
	rootCmd.AddCommand(mergeCmd)
}
