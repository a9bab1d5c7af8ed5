package main

import (
	"fmt"

	"github.com/spf13/cobra"

	strex "github.com/FunnySaltyFish/android-kmp-cmp-string-extractor"
	"github.com/FunnySaltyFish/android-kmp-cmp-string-extractor/scanner"
	"github.com/FunnySaltyFish/android-kmp-cmp-string-extractor/session"
)

// ---------------------------------------------------------------------------
// scan (discover literals and merge into session)
// ---------------------------------------------------------------------------

func newScanCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan the source tree and merge discovered strings into the session",
		Long: `Scan the project for native-language string literals and merge them into
the curation session. Ignored and saved entries keep their state across
rescans; entries with unsaved translations are reset when their source
changed, which is why scanning refuses to run over unsaved translations
unless --force is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp()
			if err != nil {
				return err
			}
			if app.store.HasUnsavedTranslations() && !force {
				return fmt.Errorf("session has unsaved translations; run 'strx save' first or rescan with --force")
			}

			sc := scanner.New(scanner.Config{
				Root:           rootDir,
				FileTypes:      app.cfg.FileTypes,
				LogCalls:       app.cfg.LogCalls,
				ResourcePrefix: app.cfg.ResourcePrefix,
				SourceLang:     app.cfg.SourceLang,
			})
			result, err := sc.Scan(cmd.Context())
			if err != nil {
				return err
			}
			for _, scanErr := range result.Errors {
				logWarning("%v", scanErr)
			}
			logInfo("scanned %d files: %d candidate strings, %d already localized",
				result.FilesScanned, len(result.Entries), len(result.AlreadyLocalized))

			report, err := app.store.Merge(result.Entries)
			if err != nil {
				return err
			}
			printMergeReport(report)
			logSuccess("session saved to %s", app.store.Path())
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Rescan even if the session has unsaved translations")
	return cmd
}

func printMergeReport(report *session.MergeReport) {
	logInfo("merge: %d added, %d updated, %d removed, %d re-offered",
		len(report.Added), len(report.Updated), len(report.Removed), len(report.Reoffered))
	if len(report.OverwrittenTranslations) > 0 {
		logWarning("%d unsaved translations were discarded because their source changed:",
			len(report.OverwrittenTranslations))
		printEntries(report.OverwrittenTranslations)
	}
}

// ---------------------------------------------------------------------------
// status (read-only: session overview)
// ---------------------------------------------------------------------------

func newStatusCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show session statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp()
			if err != nil {
				return err
			}
			entries := app.store.Entries()
			counts := stateCounts(entries)

			fmt.Printf("Project:  %s (preset %s, %s -> %s)\n",
				rootDir, app.cfg.Preset, app.cfg.SourceLang, app.cfg.TargetLang)
			fmt.Printf("Session:  %s\n", app.store.Path())
			fmt.Printf("Entries:  %d total\n", len(entries))
			for _, st := range []strex.EntryState{
				strex.StateNew, strex.StateSelected, strex.StateTranslated,
				strex.StateSaved, strex.StateIgnored,
			} {
				if counts[st] > 0 {
					fmt.Printf("  %-11s %d\n", string(st)+":", counts[st])
				}
			}
			if verbose {
				printEntries(entries)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "List every entry")
	return cmd
}
