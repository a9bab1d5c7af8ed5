package main

import (
	"github.com/spf13/cobra"

	"github.com/FunnySaltyFish/android-kmp-cmp-string-extractor/rewrite"
)

// ---------------------------------------------------------------------------
// save (write resource files and rewrite sources)
// ---------------------------------------------------------------------------

func newSaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "save",
		Short: "Write translated entries into resource files and rewrite sources",
		Long: `Write back every translated entry: the per-module resource XML files for
both languages first, then the source edits replacing each literal with a
resource accessor. Entries whose source location changed since the scan are
skipped and reported; rescan to re-anchor them.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp()
			if err != nil {
				return err
			}
			hooks, err := app.cfg.Hooks()
			if err != nil {
				return err
			}

			saver := rewrite.NewSaver(rootDir, app.store,
				rewrite.NewResourceWriter(rootDir, app.cfg.ResourcePathTemplate, hooks,
					app.cfg.SourceLang, app.cfg.TargetLang),
				rewrite.NewCodeRewriter(rootDir, hooks),
			)
			report, err := saver.Save()
			if report != nil {
				for _, c := range report.Collisions {
					logWarning("%v", c)
				}
				for _, s := range report.Stale {
					logWarning("%v", s)
				}
			}
			if err != nil {
				return err
			}
			if len(report.Saved) == 0 && len(report.Stale) == 0 {
				logInfo("nothing to save; run 'strx translate' first")
				return nil
			}
			logSuccess("saved %d entries across %d files", len(report.Saved), len(report.Files))
			if len(report.Stale) > 0 {
				logWarning("%d entries were stale; run 'strx scan' to re-anchor them", len(report.Stale))
			}
			return nil
		},
	}
}
