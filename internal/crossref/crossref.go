package crossref

import (
	"regexp"
	"strings"
)

// jiraKeyPattern matches Jira issue keys (e.g., PROJ-123, ABC-1).
var jiraKeyPattern = regexp.MustCompile(`\b([A-Z][A-Z0-9]+-\d+)\b`)

// DefaultCloseWords are the verbs that mark a referenced issue for closing
// when they directly precede its key (e.g., "fixes PROJ-1").
var DefaultCloseWords = []string{
	"close", "closes", "closed",
	"fix", "fixes", "fixed",
	"resolve", "resolves", "resolved",
}

// Reference is an issue key found in a commit message.
type Reference struct {
	Key   string
	Close bool
}

// ExtractJiraKeys extracts all Jira issue key matches from text.
// Returns a deduplicated list preserving the order of first occurrence.
func ExtractJiraKeys(text string) []string {
	matches := jiraKeyPattern.FindAllString(text, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]bool)
	var result []string
	for _, m := range matches {
		if seen[m] {
			continue
		}
		seen[m] = true
		result = append(result, m)
	}
	return result
}

// ParseCommit finds the issue references in a commit message. A key is
// marked for closing when the word right before it (ignoring case and a
// trailing colon) is one of closeWords. Keys are returned in order of
// first occurrence; a key closed anywhere in the message stays closed.
func ParseCommit(message string, closeWords []string) []Reference {
	words := make(map[string]bool, len(closeWords))
	for _, w := range closeWords {
		words[strings.ToLower(w)] = true
	}

	locs := jiraKeyPattern.FindAllStringIndex(message, -1)
	if len(locs) == 0 {
		return nil
	}

	index := make(map[string]int)
	var refs []Reference
	for _, loc := range locs {
		key := message[loc[0]:loc[1]]
		closing := words[precedingWord(message[:loc[0]])]

		if i, ok := index[key]; ok {
			refs[i].Close = refs[i].Close || closing
			continue
		}
		index[key] = len(refs)
		refs = append(refs, Reference{Key: key, Close: closing})
	}
	return refs
}

// precedingWord returns the lowercased last word of prefix with trailing
// punctuation such as ':' or '#' stripped.
func precedingWord(prefix string) string {
	fields := strings.Fields(prefix)
	if len(fields) == 0 {
		return ""
	}
	last := strings.ToLower(fields[len(fields)-1])
	return strings.TrimRight(last, ":#,")
}

// Keys returns the issue keys of refs in order.
func Keys(refs []Reference) []string {
	keys := make([]string, 0, len(refs))
	for _, r := range refs {
		keys = append(keys, r.Key)
	}
	return keys
}
