package tfidf

// StopWords are filtered out of entity text before building term-frequency
// vectors — common words that add indexing cost without discriminating
// power.
var StopWords = map[string]bool{
	"a": true, "an": true, "the": true,
	"in": true, "on": true, "at": true, "to": true, "for": true,
	"of": true, "with": true, "by": true, "from": true, "as": true,
	"and": true, "or": true, "but": true, "nor": true,
	"is": true, "are": true, "was": true, "were": true,
	"be": true, "been": true, "being": true,
	"have": true, "has": true, "had": true,
	"do": true, "does": true, "did": true,
	"this": true, "that": true, "these": true, "those": true,
	"it": true, "its": true,
}
