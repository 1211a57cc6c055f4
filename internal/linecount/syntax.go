package linecount

import (
	"bytes"
)

// commentSyntax describes how one language marks comments.
type commentSyntax struct {
	line       []string    // line comment prefixes
	blockPairs [][2]string // block comment open/close pairs
}

// cStyle is shared by the large family of C-like languages.
var cStyle = commentSyntax{
	line:       []string{"//"},
	blockPairs: [][2]string{{"/*", "*/"}},
}

// hashStyle covers languages with '#' line comments only.
var hashStyle = commentSyntax{
	line: []string{"#"},
}

// syntaxByLanguage maps enry language names to their comment syntax.
// Languages missing from the table count every non-blank line as code.
var syntaxByLanguage = map[string]commentSyntax{
	"C":           cStyle,
	"C++":         cStyle,
	"C#":          cStyle,
	"Go":          cStyle,
	"Java":        cStyle,
	"JavaScript":  cStyle,
	"TypeScript":  cStyle,
	"Kotlin":      cStyle,
	"Scala":       cStyle,
	"Swift":       cStyle,
	"Rust":        cStyle,
	"Objective-C": cStyle,
	"PHP":         {line: []string{"//", "#"}, blockPairs: [][2]string{{"/*", "*/"}}},
	"CSS":         {blockPairs: [][2]string{{"/*", "*/"}}},

	"Python":     {line: []string{"#"}, blockPairs: [][2]string{{`"""`, `"""`}, {"'''", "'''"}}},
	"Ruby":       {line: []string{"#"}, blockPairs: [][2]string{{"=begin", "=end"}}},
	"Perl":       hashStyle,
	"Shell":      hashStyle,
	"Elixir":     hashStyle,
	"R":          hashStyle,
	"YAML":       hashStyle,
	"TOML":       hashStyle,
	"INI":        {line: []string{";", "#"}},
	"Dockerfile": hashStyle,
	"Makefile":   hashStyle,
	"CMake":      hashStyle,

	"Haskell": {line: []string{"--"}, blockPairs: [][2]string{{"{-", "-}"}}},
	"SQL":     {line: []string{"--"}, blockPairs: [][2]string{{"/*", "*/"}}},
	"Lua":     {line: []string{"--"}, blockPairs: [][2]string{{"--[[", "]]"}}},
	"Erlang":  {line: []string{"%"}},
	"TeX":     {line: []string{"%"}},

	"HTML": {blockPairs: [][2]string{{"<!--", "-->"}}},
	"XML":  {blockPairs: [][2]string{{"<!--", "-->"}}},
}

// markdownFence opens and closes embedded code blocks in Markdown.
const markdownFence = "```"

// countLines classifies each line of content for the given language.
// Markdown is special-cased: prose counts as comment lines and fenced
// code blocks are reported as nested sub-language blocks.
func countLines(language string, content []byte) Report {
	if language == "Markdown" {
		return countMarkdown(content)
	}

	syntax := syntaxByLanguage[language]

	var (
		stats      Stats
		blockClose string
	)

	for _, raw := range splitLines(content) {
		line := bytes.TrimSpace(raw)

		switch {
		case blockClose != "":
			stats.Comments++

			if bytes.Contains(line, []byte(blockClose)) {
				blockClose = ""
			}
		case len(line) == 0:
			stats.Blanks++
		case hasLineComment(line, syntax):
			stats.Comments++
		default:
			if open, closing := startsBlockComment(line, syntax); open {
				stats.Comments++

				blockClose = closing

				// A block that opens and closes on the same line.
				rest := line[blockOpenLen(line, syntax):]
				if bytes.Contains(rest, []byte(closing)) {
					blockClose = ""
				}

				continue
			}

			stats.Code++
		}
	}

	return Report{Stats: stats}
}

// countMarkdown counts prose as comments and collects fenced code blocks
// as nested blocks of code lines.
func countMarkdown(content []byte) Report {
	var (
		report  Report
		inFence bool
		fence   Stats
	)

	for _, raw := range splitLines(content) {
		line := bytes.TrimSpace(raw)

		switch {
		case bytes.HasPrefix(line, []byte(markdownFence)):
			if inFence {
				report.Blocks = append(report.Blocks, fence)
				fence = Stats{}
			}

			inFence = !inFence
			report.Stats.Comments++
		case inFence:
			if len(line) == 0 {
				fence.Blanks++
			} else {
				fence.Code++
			}
		case len(line) == 0:
			report.Stats.Blanks++
		default:
			report.Stats.Comments++
		}
	}

	// Unterminated fence still contributes its lines.
	if inFence {
		report.Blocks = append(report.Blocks, fence)
	}

	return report
}

// splitLines splits content on newlines without producing a phantom
// empty line for a trailing newline.
func splitLines(content []byte) [][]byte {
	if len(content) == 0 {
		return nil
	}

	trimmed := bytes.TrimSuffix(content, []byte{'\n'})

	return bytes.Split(trimmed, []byte{'\n'})
}

// hasLineComment reports whether the trimmed line starts with one of the
// language's line comment prefixes.
func hasLineComment(line []byte, syntax commentSyntax) bool {
	for _, prefix := range syntax.line {
		if bytes.HasPrefix(line, []byte(prefix)) {
			return true
		}
	}

	return false
}

// startsBlockComment reports whether the trimmed line opens a block
// comment, returning the matching close marker.
func startsBlockComment(line []byte, syntax commentSyntax) (bool, string) {
	for _, pair := range syntax.blockPairs {
		if bytes.HasPrefix(line, []byte(pair[0])) {
			return true, pair[1]
		}
	}

	return false, ""
}

// blockOpenLen returns the length of the block open marker that matched
// the start of line.
func blockOpenLen(line []byte, syntax commentSyntax) int {
	for _, pair := range syntax.blockPairs {
		if bytes.HasPrefix(line, []byte(pair[0])) {
			return len(pair[0])
		}
	}

	return 0
}
