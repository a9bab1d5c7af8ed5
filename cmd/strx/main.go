// strx extracts native-language string literals from Kotlin Multiplatform
// sources, translates them in batches with an AI provider, and writes back
// resource XML files plus the source edits that reference them.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	strex "github.com/FunnySaltyFish/android-kmp-cmp-string-extractor"
)

var (
	infoTag  = color.New(color.FgBlue).Sprint("[INFO]")
	okTag    = color.New(color.FgGreen).Sprint("[OK]")
	warnTag  = color.New(color.FgYellow).Sprint("[WARN]")
	errorTag = color.New(color.FgRed).Sprint("[ERROR]")
)

func logInfo(format string, args ...any) {
	fmt.Fprintf(os.Stderr, infoTag+" "+format+"\n", args...)
}

func logSuccess(format string, args ...any) {
	fmt.Fprintf(os.Stderr, okTag+" "+format+"\n", args...)
}

func logWarning(format string, args ...any) {
	fmt.Fprintf(os.Stderr, warnTag+" "+format+"\n", args...)
}

func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, errorTag+" "+format+"\n", args...)
}

// ---------------------------------------------------------------------------
// Global flag
// ---------------------------------------------------------------------------

var rootDir string

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "strx",
		Short: "Extract, translate, and write back mobile app string resources",
		Long: `strx is a native string extractor for Kotlin Multiplatform projects.

Scans a source tree for native-language string literals, keeps a durable
curation session across rescans, translates selected strings in batches
through an AI provider, and writes back resource XML files plus the source
edits that reference them.

Typical flow:
  strx scan          Discover literals and merge them into the session
  strx select --all  Queue entries for translation
  strx translate     Translate selected entries in batches
  strx save          Write resource files and rewrite sources`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global persistent flag, inherited by all subcommands
	root.PersistentFlags().StringVar(&rootDir, "root", ".", "Project root directory")

	root.AddCommand(
		newScanCmd(),
		newStatusCmd(),
		newSelectCmd(),
		newDeselectCmd(),
		newIgnoreCmd(),
		newUnignoreCmd(),
		newRenameCmd(),
		newTranslateCmd(),
		newSaveCmd(),
		newCacheCmd(),
		newVersionCmd(),
	)

	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logError("%v", err)
		os.Exit(1)
	}
}

// ---------------------------------------------------------------------------
// version (display version information)
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(strex.FullVersion())
		},
	}
}
