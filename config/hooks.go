// Package config holds the project configuration: scan and translation
// settings loaded from strex.yaml, the FormatHooks contract, and the
// built-in project presets.
package config

import (
	"fmt"
	"strings"

	strex "github.com/FunnySaltyFish/android-kmp-cmp-string-extractor"
)

// FormatHooks are the three pluggable formatting functions bound to a
// project configuration. The Resource Writer and Code Rewriter invoke them
// read-only; implementations must be pure and must not touch pipeline
// state, which is why every implementation passes ValidateHooks before a
// real run trusts it.
type FormatHooks interface {
	// FormatXMLText renders the body of one resource element. Placeholder
	// markers in text must survive into the output.
	FormatXMLText(text string, params []strex.Param) string

	// GetReplacedText renders the accessor expression that replaces the
	// original literal in source code.
	GetReplacedText(resourceName string, params []strex.Param, filePath string) string

	// GetImportStatements returns the import lines the replacement needs,
	// already formatted for the target dialect.
	GetImportStatements(moduleName, filePath string) []string
}

// ValidateHooks runs a self-test invocation against a hooks implementation
// before it is trusted in a real run. It checks the documented contract:
// placeholder markers survive FormatXMLText, the replacement expression
// references the resource name, and repeated identical calls return
// identical results.
func ValidateHooks(h FormatHooks) error {
	text := "共有{count}条消息"
	params := []strex.Param{{Name: "count", Value: "n"}}

	rendered := h.FormatXMLText(text, params)
	if rendered == "" {
		return fmt.Errorf("hooks self-test: FormatXMLText returned empty output")
	}
	want := strex.Placeholders(text)
	got := strex.Placeholders(rendered)
	if len(got) != len(want) {
		return fmt.Errorf("hooks self-test: FormatXMLText dropped placeholders: %d in, %d out",
			len(want), len(got))
	}

	replaced := h.GetReplacedText("msg_count", params, "app/src/Sample.kt")
	if replaced == "" {
		return fmt.Errorf("hooks self-test: GetReplacedText returned empty output")
	}
	if !strings.Contains(replaced, "msg_count") {
		return fmt.Errorf("hooks self-test: GetReplacedText output %q does not reference the resource name", replaced)
	}

	imports1 := h.GetImportStatements("com.example.app", "app/src/Sample.kt")
	imports2 := h.GetImportStatements("com.example.app", "app/src/Sample.kt")
	if len(imports1) != len(imports2) {
		return fmt.Errorf("hooks self-test: GetImportStatements is not stable across calls")
	}
	for i := range imports1 {
		if imports1[i] != imports2[i] {
			return fmt.Errorf("hooks self-test: GetImportStatements is not stable across calls")
		}
	}

	if h.FormatXMLText(text, params) != rendered {
		return fmt.Errorf("hooks self-test: FormatXMLText is not stable across calls")
	}
	return nil
}
