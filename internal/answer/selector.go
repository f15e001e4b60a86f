package answer

import (
	"strings"
	"unicode"
)

// Selection is the outcome of comparing two path results.
type Selection struct {
	Answer string
	Source PathName
	Reason string
}

// Select picks the better of two generation results. The rules, in order:
// success beats failure, a substantive answer beats a refusal, and between
// two substantive answers the more specific one (length and fact density)
// wins. The local path wins exact ties.
func Select(local, alternate PathResult) Selection {
	localOK := local.OK()
	altOK := alternate.OK()

	switch {
	case !localOK && !altOK:
		return Selection{Source: local.Path, Reason: "both generation paths failed"}
	case localOK && !altOK:
		return Selection{Answer: local.Answer, Source: local.Path, Reason: "alternate path failed"}
	case !localOK && altOK:
		return Selection{Answer: alternate.Answer, Source: alternate.Path, Reason: "local path failed"}
	}

	localRefusal := isRefusal(local.Answer)
	altRefusal := isRefusal(alternate.Answer)
	if localRefusal != altRefusal {
		if altRefusal {
			return Selection{Answer: local.Answer, Source: local.Path, Reason: "alternate answer was a refusal"}
		}
		return Selection{Answer: alternate.Answer, Source: alternate.Path, Reason: "local answer was a refusal"}
	}

	localScore := specificity(local.Answer)
	altScore := specificity(alternate.Answer)
	if altScore > localScore {
		return Selection{Answer: alternate.Answer, Source: alternate.Path, Reason: "alternate answer is more specific"}
	}
	if localScore > altScore {
		return Selection{Answer: local.Answer, Source: local.Path, Reason: "local answer is more specific"}
	}
	return Selection{Answer: local.Answer, Source: local.Path, Reason: "comparable answers, local preferred"}
}

var refusalMarkers = []string{
	"i don't know",
	"i do not know",
	"cannot answer",
	"can't answer",
	"not contain",
	"no information",
	"not mentioned",
	"unable to find",
	"context does not",
	"context doesn't",
}

// isRefusal reports whether an answer declines to answer rather than
// providing information.
func isRefusal(answer string) bool {
	lower := strings.ToLower(answer)
	for _, marker := range refusalMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// specificity scores an answer by word count plus a bonus for tokens that
// carry digits (dates, quantities, identifiers).
func specificity(answer string) int {
	words := strings.Fields(answer)
	score := len(words)
	for _, w := range words {
		if hasDigit(w) {
			score += 5
		}
	}
	return score
}

func hasDigit(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
