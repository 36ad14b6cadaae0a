package cascade

import (
	"strconv"
	"strings"

	"github.com/KvFxKaido/SENTINEL-sub001/types"
)

// minKeywordLen filters out connective words; matches the significant-word
// cutoff used elsewhere in the engine.
const minKeywordLen = 4

// keywordSet extracts the lowercase keyword set of an event: words from its
// type plus string and numeric payload values. Numbers are stringified
// before the length filter, so small integers drop out.
func keywordSet(ev types.TurnEvent) map[string]bool {
	set := map[string]bool{}
	addWords(set, ev.EventType)
	for _, v := range ev.Payload {
		switch val := v.(type) {
		case string:
			addWords(set, val)
		case int:
			addWords(set, strconv.Itoa(val))
		case int64:
			addWords(set, strconv.FormatInt(val, 10))
		case float64:
			addWords(set, strconv.FormatFloat(val, 'f', -1, 64))
		}
	}
	return set
}

// addWords splits text on anything that is not a letter or digit and adds
// the significant words.
func addWords(set map[string]bool, text string) {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !isWordRune(r)
	})
	for _, w := range words {
		if len(w) >= minKeywordLen {
			set[w] = true
		}
	}
}

func isWordRune(r rune) bool {
	return r == '-' ||
		(r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9')
}

// matchKeywords returns the thread keywords present in the event set, in the
// thread's own order. One shared keyword is enough to surface a thread —
// this matcher is intentionally loose.
func matchKeywords(threadKeywords []string, eventSet map[string]bool) []string {
	var matched []string
	for _, k := range threadKeywords {
		if eventSet[strings.ToLower(k)] {
			matched = append(matched, strings.ToLower(k))
		}
	}
	return matched
}
