package knowledge

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"

	"github.com/pizza-alchemy/chatbot-go/internal/domain/entities"
)

func init() {
	// Offline BPE loader so token counting needs no network access.
	tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
}

const (
	// entryDelimiter separates matched entries in the snippet.
	entryDelimiter = "\n\n---\n\n"

	// DefaultSnippet is returned when no entry matches, so the prompt is
	// never assembled with empty context.
	DefaultSnippet = "No specific match in the knowledge base for this question. " +
		"Help the customer with what you know about the restaurant and offer " +
		"the menu, deals, or opening hours."

	defaultMaxContextTokens = 1024
)

// RetrieverConfig carries the tunables the retriever exposes.
type RetrieverConfig struct {
	// MaxContextTokens bounds the snippet size in cl100k_base tokens.
	MaxContextTokens int
	// CaseSensitive disables query/keyword case folding.
	CaseSensitive bool
}

// KeywordRetriever implements ports.ContextRetriever with a linear scan over
// the knowledge base. O(entries x keywords) per query - fine because the
// knowledge base is small and static. No indexing, scoring, or ranking;
// matches come back in document order.
type KeywordRetriever struct {
	entries       []entities.KnowledgeEntry
	keywords      [][]string // folded copy, aligned with entries
	maxTokens     int
	caseSensitive bool
	encoding      *tiktoken.Tiktoken
}

// NewKeywordRetriever creates a retriever over an already-loaded knowledge base.
func NewKeywordRetriever(kb *entities.KnowledgeBase, cfg RetrieverConfig) (*KeywordRetriever, error) {
	if kb == nil || len(kb.Entries) == 0 {
		return nil, fmt.Errorf("knowledge base is empty")
	}
	if cfg.MaxContextTokens <= 0 {
		cfg.MaxContextTokens = defaultMaxContextTokens
	}

	encoding, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return nil, fmt.Errorf("loading token encoding: %w", err)
	}

	keywords := make([][]string, len(kb.Entries))
	for i, entry := range kb.Entries {
		kws := make([]string, len(entry.Keywords))
		for j, kw := range entry.Keywords {
			if cfg.CaseSensitive {
				kws[j] = kw
			} else {
				kws[j] = strings.ToLower(kw)
			}
		}
		keywords[i] = kws
	}

	return &KeywordRetriever{
		entries:       kb.Entries,
		keywords:      keywords,
		maxTokens:     cfg.MaxContextTokens,
		caseSensitive: cfg.CaseSensitive,
		encoding:      encoding,
	}, nil
}

// Retrieve scans the knowledge base for entries whose keywords appear in the
// query and concatenates their content, truncated to the token budget.
// When nothing matches it returns DefaultSnippet and false.
func (r *KeywordRetriever) Retrieve(query string) (string, bool) {
	folded := query
	if !r.caseSensitive {
		folded = strings.ToLower(query)
	}
	tokens := tokenize(folded)

	var blocks []string
	for i, entry := range r.entries {
		if matchesAny(r.keywords[i], folded, tokens) {
			blocks = append(blocks, "["+entry.Topic+"]\n"+entry.Content)
		}
	}

	if len(blocks) == 0 {
		return DefaultSnippet, false
	}
	return r.truncate(strings.Join(blocks, entryDelimiter)), true
}

// matchesAny reports whether any keyword is an exact query token or a
// substring of the query.
func matchesAny(keywords []string, folded string, tokens map[string]bool) bool {
	for _, kw := range keywords {
		if tokens[kw] || strings.Contains(folded, kw) {
			return true
		}
	}
	return false
}

// tokenize splits a query on anything that is not a letter or digit.
func tokenize(query string) map[string]bool {
	fields := strings.FieldsFunc(query, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	tokens := make(map[string]bool, len(fields))
	for _, f := range fields {
		tokens[f] = true
	}
	return tokens
}

// truncate cuts the snippet to the configured token budget.
func (r *KeywordRetriever) truncate(snippet string) string {
	ids := r.encoding.Encode(snippet, nil, nil)
	if len(ids) <= r.maxTokens {
		return snippet
	}
	return r.encoding.Decode(ids[:r.maxTokens])
}

// TokenCount returns the cl100k_base token count of text. Used by tests and
// callers that want to verify the budget.
func (r *KeywordRetriever) TokenCount(text string) int {
	return len(r.encoding.Encode(text, nil, nil))
}
