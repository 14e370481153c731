package chunking

import (
	"regexp"
	"strings"
)

// Code detection patterns. These are independent of heading detection
// and deliberately heuristic: they bias retrieval toward "How do I"
// questions, they do not parse anything.
var (
	// fencedRe matches a Markdown code fence line.
	fencedRe = regexp.MustCompile("(?m)^\\s*```")

	// shellRe matches a shell prompt followed by a well-known command.
	shellRe = regexp.MustCompile(`(?m)^\s*[$#]\s+(?:sudo|cd|ls|git|go|python3?|pip3?|npm|yarn|make|curl|wget|docker|kubectl|apt(?:-get)?|brew|cat|echo|export|mkdir|rm|cp|mv|tar|ssh)\b`)

	// keywordBraceRe matches a language keyword with an opening brace
	// on the same line.
	keywordBraceRe = regexp.MustCompile(`(?m)\b(?:func|def|class|struct|impl|fn|public|private|void|interface|switch|if|for|while)\b[^\n{]*\{`)
)

// minIndentedRun is the number of consecutive 4-space-indented lines
// that count as one code block.
const minIndentedRun = 3

// CountCodeBlocks estimates the number of embedded code blocks in text
// using four independent heuristics: fenced blocks, shell sessions,
// keyword-plus-brace lines and indented runs.
func CountCodeBlocks(text string) int {
	count := 0

	// A fence pair delimits one block; an unterminated fence still
	// counts as one.
	if fences := len(fencedRe.FindAllStringIndex(text, -1)); fences > 0 {
		count += (fences + 1) / 2
	}

	count += countRuns(text, func(line string) bool {
		return shellRe.MatchString(line)
	}, 1)

	count += len(keywordBraceRe.FindAllStringIndex(text, -1))

	count += countRuns(text, isIndentedCodeLine, minIndentedRun)

	return count
}

// HasCode reports whether any code heuristic fires on text.
func HasCode(text string) bool {
	return CountCodeBlocks(text) > 0
}

// isIndentedCodeLine reports whether a line is indented by at least
// four spaces (or a tab) and has content.
func isIndentedCodeLine(line string) bool {
	if strings.TrimSpace(line) == "" {
		return false
	}
	return strings.HasPrefix(line, "    ") || strings.HasPrefix(line, "\t")
}

// countRuns counts maximal runs of at least minLen consecutive lines
// matching the predicate.
func countRuns(text string, match func(string) bool, minLen int) int {
	runs := 0
	run := 0
	for _, line := range strings.Split(text, "\n") {
		if match(line) {
			run++
			continue
		}
		if run >= minLen {
			runs++
		}
		run = 0
	}
	if run >= minLen {
		runs++
	}
	return runs
}
