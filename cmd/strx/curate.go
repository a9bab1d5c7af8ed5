package main

import (
	"fmt"

	"github.com/spf13/cobra"

	strex "github.com/FunnySaltyFish/android-kmp-cmp-string-extractor"
)

// ---------------------------------------------------------------------------
// select / deselect / ignore / unignore / rename (session curation)
// ---------------------------------------------------------------------------

func newSelectCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "select [fingerprint...]",
		Short: "Queue entries for translation",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp()
			if err != nil {
				return err
			}
			fps, err := curationTargets(app, args, all, strex.StateNew)
			if err != nil {
				return err
			}
			if err := app.store.Select(fps...); err != nil {
				return err
			}
			logSuccess("selected %d entries", len(fps))
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Select every new entry")
	return cmd
}

func newDeselectCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "deselect [fingerprint...]",
		Short: "Remove entries from the translation queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp()
			if err != nil {
				return err
			}
			fps, err := curationTargets(app, args, all, strex.StateSelected)
			if err != nil {
				return err
			}
			if err := app.store.Deselect(fps...); err != nil {
				return err
			}
			logSuccess("deselected %d entries", len(fps))
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Deselect every selected entry")
	return cmd
}

func newIgnoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ignore <fingerprint>...",
		Short: "Keep entries off the work queue, persistently across rescans",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp()
			if err != nil {
				return err
			}
			fps, err := app.resolveFingerprints(args)
			if err != nil {
				return err
			}
			if err := app.store.Ignore(fps...); err != nil {
				return err
			}
			logSuccess("ignored %d entries", len(fps))
			return nil
		},
	}
}

func newUnignoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unignore <fingerprint>...",
		Short: "Return ignored entries to the work queue",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp()
			if err != nil {
				return err
			}
			fps, err := app.resolveFingerprints(args)
			if err != nil {
				return err
			}
			if err := app.store.Unignore(fps...); err != nil {
				return err
			}
			logSuccess("unignored %d entries", len(fps))
			return nil
		},
	}
}

func newRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <fingerprint> <resource-name>",
		Short: "Override the generated resource name of an entry",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp()
			if err != nil {
				return err
			}
			fps, err := app.resolveFingerprints(args[:1])
			if err != nil {
				return err
			}
			if err := app.store.SetResourceName(fps[0], args[1]); err != nil {
				return err
			}
			logSuccess("renamed %s to %s", shortFP(fps[0]), args[1])
			return nil
		},
	}
}

// curationTargets resolves either --all (every entry in fromState) or the
// given fingerprint prefixes.
func curationTargets(app *app, args []string, all bool, fromState strex.EntryState) ([]string, error) {
	if all {
		if len(args) > 0 {
			return nil, fmt.Errorf("--all cannot be combined with explicit fingerprints")
		}
		var fps []string
		for _, e := range app.store.Entries() {
			if e.State == fromState {
				fps = append(fps, e.Fingerprint)
			}
		}
		if len(fps) == 0 {
			return nil, fmt.Errorf("no entries in state %q", fromState)
		}
		return fps, nil
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("pass fingerprints or --all")
	}
	return app.resolveFingerprints(args)
}
