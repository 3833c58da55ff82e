// Package format normalizes raw model output into the layout the frontend
// renders: <strong> emphasis, list markers at line starts, one sentence per
// line, no blank-line runs. Pure, deterministic, idempotent.
package format

import (
	"regexp"
	"strings"
)

var (
	strongRe   = regexp.MustCompile(`\*\*(.*?)\*\*`)
	numberedRe = regexp.MustCompile(`(\d+\.)\s*`)
	bulletRe   = regexp.MustCompile(`(•)\s*`)
	blankRunRe = regexp.MustCompile(`\n\s*\n`)
)

// transforms run in order; later steps assume earlier ones already ran.
var transforms = []func(string) string{
	replaceStrong,
	breakNumbered,
	breakBullets,
	breakSentences,
	collapseBlankLines,
}

// Normalize applies the full transform chain.
func Normalize(raw string) string {
	out := raw
	for _, t := range transforms {
		out = t(out)
	}
	return out
}

// replaceStrong rewrites markdown **bold** as explicit <strong> markup,
// keeping the enclosed text untouched.
func replaceStrong(s string) string {
	return strongRe.ReplaceAllString(s, "<strong>$1</strong>")
}

// breakNumbered forces every numbered-list marker onto its own line start.
func breakNumbered(s string) string {
	return numberedRe.ReplaceAllString(s, "\n$1 ")
}

// breakBullets forces every bullet marker onto its own line start.
func breakBullets(s string) string {
	return bulletRe.ReplaceAllString(s, "\n$1 ")
}

// breakSentences inserts a line break after every period-plus-space.
// Heuristic only: abbreviations ending with a period split too.
func breakSentences(s string) string {
	return strings.ReplaceAll(s, ". ", ".\n")
}

// collapseBlankLines squashes blank-line runs left by the earlier steps
// into single breaks and trims the edges.
func collapseBlankLines(s string) string {
	return strings.TrimSpace(blankRunRe.ReplaceAllString(s, "\n"))
}
