package rag

import (
	"fmt"
	"strings"

	"github.com/hyperseek/hyperseek/internal/search"
	"github.com/hyperseek/hyperseek/internal/store"
)

// maxFollowups caps how many sub-queries one round may propose.
const maxFollowups = 3

// noFollowupsMarker is what the model answers when retrieval is
// sufficient.
const noFollowupsMarker = "NONE"

// answerPrompt asks the model to answer query from the retrieved
// context only.
func answerPrompt(query string, docs []*store.Document) string {
	var sb strings.Builder
	sb.WriteString("Answer the question using only the context below. ")
	sb.WriteString("If the context is insufficient, say what is missing.\n\n")

	for i, doc := range docs {
		fmt.Fprintf(&sb, "[%d] %s\n%s\n\n", i+1, doc.Title, search.Excerpt(doc.Body, 1200))
	}

	fmt.Fprintf(&sb, "Question: %s\nAnswer:", query)
	return sb.String()
}

// followupPrompt asks the model for sub-queries that would fill gaps
// in the draft answer. The reply contract is one query per line, at
// most three, or the single word NONE.
func followupPrompt(query, draft string) string {
	return fmt.Sprintf(`The question was: %s

The draft answer so far:
%s

If more retrieval would improve this answer, list up to %d short search queries, one per line, that would find the missing information. If the answer is already complete, reply with the single word %s.`,
		query, draft, maxFollowups, noFollowupsMarker)
}

// parseFollowups extracts sub-queries from a model reply, honoring the
// one-per-line contract. Numbering and bullets are tolerated; the
// NONE marker or an empty reply means no further rounds.
func parseFollowups(reply string) []string {
	var queries []string
	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-*0123456789. )")
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.EqualFold(line, noFollowupsMarker) {
			return nil
		}
		queries = append(queries, line)
		if len(queries) == maxFollowups {
			break
		}
	}
	return queries
}
