package config

import (
	"fmt"
	"sort"
	"strings"

	strex "github.com/FunnySaltyFish/android-kmp-cmp-string-extractor"
)

// argsNamed renders format arguments as "name = value" pairs, argsPositional
// as bare values in declaration order.
const (
	argsNamed      = "named"
	argsPositional = "positional"
)

// Preset bundles the formatting conventions of one Kotlin Multiplatform
// resource framework. A Preset is a FormatHooks implementation driven by
// templates, so the three built-in frameworks share one code path.
type Preset struct {
	Name string

	// ResourcePathTemplate locates the resource XML file of a module,
	// with {module} and {lang} placeholders.
	ResourcePathTemplate string

	// ResourcePrefix is the accessor prefix the scanner treats as an
	// already-localized reference, e.g. "ResStrings.".
	ResourcePrefix string

	// Accessor renders a replacement without parameters; AccessorArgs one
	// with parameters. Placeholders: {name} and, in AccessorArgs, {args}.
	Accessor     string
	AccessorArgs string

	// ArgsStyle selects how AccessorArgs renders its argument list.
	ArgsStyle string

	// Imports are the import lines a rewritten file needs, with an
	// optional {module} placeholder.
	Imports []string
}

var _ FormatHooks = (*Preset)(nil)

var presets = map[string]*Preset{
	"libres": {
		Name:                 "libres",
		ResourcePathTemplate: "{module}/src/commonMain/libres/strings/strings_{lang}.xml",
		ResourcePrefix:       "ResStrings.",
		Accessor:             "ResStrings.{name}",
		AccessorArgs:         "ResStrings.{name}.format({args})",
		ArgsStyle:            argsNamed,
		Imports:              []string{"import {module}.strings.ResStrings"},
	},
	"compose-resources": {
		Name:                 "compose-resources",
		ResourcePathTemplate: "{module}/src/commonMain/composeResources/values-{lang}/strings.xml",
		ResourcePrefix:       "Res.string.",
		Accessor:             "stringResource(Res.string.{name})",
		AccessorArgs:         "stringResource(Res.string.{name}, {args})",
		ArgsStyle:            argsPositional,
		Imports: []string{
			"import org.jetbrains.compose.resources.stringResource",
			"import {module}.generated.resources.Res",
		},
	},
	"moko-resources": {
		Name:                 "moko-resources",
		ResourcePathTemplate: "{module}/src/commonMain/moko-resources/{lang}/strings.xml",
		ResourcePrefix:       "MR.strings.",
		Accessor:             "stringResource(MR.strings.{name})",
		AccessorArgs:         "stringResource(MR.strings.{name}, {args})",
		ArgsStyle:            argsPositional,
		Imports: []string{
			"import dev.icerock.moko.resources.compose.stringResource",
			"import {module}.MR",
		},
	},
}

// PresetByName looks up a built-in preset. The second return is false for
// unknown names.
func PresetByName(name string) (*Preset, bool) {
	p, ok := presets[name]
	return p, ok
}

// PresetNames returns the built-in preset names, sorted.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FormatXMLText escapes text for use as the body of a <string> element.
// Placeholder markers pass through untouched and doubled braces collapse to
// literal braces, so the stored resource matches what the runtime formatter
// expects to see.
func (p *Preset) FormatXMLText(text string, params []strex.Param) string {
	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(text); {
		c := text[i]
		switch {
		case c == '{' && i+1 < len(text) && text[i+1] == '{':
			b.WriteByte('{')
			i += 2
		case c == '}' && i+1 < len(text) && text[i+1] == '}':
			b.WriteByte('}')
			i += 2
		case c == '{':
			end := strings.IndexByte(text[i:], '}')
			if end < 0 {
				b.WriteString(escapeXML(text[i:]))
				return b.String()
			}
			b.WriteString(text[i : i+end+1])
			i += end + 1
		case c == '}':
			b.WriteByte('}')
			i++
		default:
			next := strings.IndexAny(text[i:], "{}")
			if next < 0 {
				b.WriteString(escapeXML(text[i:]))
				return b.String()
			}
			b.WriteString(escapeXML(text[i : i+next]))
			i += next
		}
	}
	return b.String()
}

// GetReplacedText renders the accessor expression for one entry. Entries
// without parameters use the bare accessor form.
func (p *Preset) GetReplacedText(resourceName string, params []strex.Param, filePath string) string {
	if len(params) == 0 {
		return strings.ReplaceAll(p.Accessor, "{name}", resourceName)
	}
	expr := strings.ReplaceAll(p.AccessorArgs, "{name}", resourceName)
	return strings.ReplaceAll(expr, "{args}", p.renderArgs(params))
}

// GetImportStatements returns the import lines for a rewritten file in
// moduleName. Lines are returned in declaration order.
func (p *Preset) GetImportStatements(moduleName, filePath string) []string {
	lines := make([]string, len(p.Imports))
	for i, tmpl := range p.Imports {
		lines[i] = strings.ReplaceAll(tmpl, "{module}", moduleName)
	}
	return lines
}

// ResourcePath renders the resource file path for a module and language.
func (p *Preset) ResourcePath(module, lang string) string {
	path := strings.ReplaceAll(p.ResourcePathTemplate, "{module}", module)
	return strings.ReplaceAll(path, "{lang}", lang)
}

func (p *Preset) renderArgs(params []strex.Param) string {
	parts := make([]string, len(params))
	for i, param := range params {
		value := param.Value
		if value == "" {
			value = param.Name
		}
		if p.ArgsStyle == argsNamed {
			parts[i] = fmt.Sprintf("%s = %s", param.Name, value)
		} else {
			parts[i] = value
		}
	}
	return strings.Join(parts, ", ")
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	"\"", "&quot;",
	"'", "\\'",
)

func escapeXML(s string) string {
	return xmlEscaper.Replace(s)
}
