package scoring

import (
	"context"
	"strings"
	"unicode"
)

var (
	defaultPositive = []string{
		"excellent", "great", "professional", "experience", "recommend",
		"amazing", "perfect", "helpful", "quality", "on time",
		"отлично", "профессионал", "рекомендую", "качественно",
	}
	defaultNegative = []string{
		"terrible", "awful", "scam", "fraud", "worst", "horrible", "rude", "waste",
		"ужасно", "обман", "мошенник",
	}
	spamMarkers = []string{"http://", "https://", "www.", "telegram", "whatsapp", "@gmail"}
)

// Метки, которые ставит KeywordScorer.
const (
	FlagNegativeLanguage = "negative-language"
	FlagExternalContact  = "external-contact"
	FlagTooShort         = "too-short"
)

const minContentLength = 20

// KeywordScorer эвристика по словарям: 0.5, +0.1 за каждый найденный
// позитивный термин, -0.2 за каждый негативный.
type KeywordScorer struct {
	positive []string
	negative []string
}

// NewKeywordScorer создаёт оценщик со словарями по умолчанию.
func NewKeywordScorer() *KeywordScorer {
	return &KeywordScorer{positive: defaultPositive, negative: defaultNegative}
}

// NewKeywordScorerWith создаёт оценщик с собственными словарями.
func NewKeywordScorerWith(positive, negative []string) *KeywordScorer {
	return &KeywordScorer{positive: lower(positive), negative: lower(negative)}
}

func (k *KeywordScorer) Score(ctx context.Context, text string) (Assessment, error) {
	if err := ctx.Err(); err != nil {
		return Assessment{}, err
	}

	content := strings.ToLower(text)
	words := normalizeWords(content)
	pos := countWords(words, k.positive)
	neg := countWords(words, k.negative)

	var flags []string
	if neg > 0 {
		flags = append(flags, FlagNegativeLanguage)
	}
	if countTerms(content, spamMarkers) > 0 {
		flags = append(flags, FlagExternalContact)
	}
	if len([]rune(strings.TrimSpace(text))) < minContentLength {
		flags = append(flags, FlagTooShort)
	}

	return Assessment{
		Score: clamp(Neutral + 0.1*float64(pos) - 0.2*float64(neg)),
		Flags: flags,
	}, nil
}

// countTerms считает, сколько разных маркеров встречается в тексте как подстрока.
func countTerms(content string, terms []string) int {
	n := 0
	for _, term := range terms {
		if strings.Contains(content, term) {
			n++
		}
	}
	return n
}

// countWords считает разные термины, встречающиеся целыми словами:
// "rude" не совпадает с "prudent".
func countWords(words string, terms []string) int {
	n := 0
	for _, term := range terms {
		if t := normalizeWords(term); t != "  " && strings.Contains(words, t) {
			n++
		}
	}
	return n
}

// normalizeWords оставляет только слова, разделённые одним пробелом,
// и обрамляет результат пробелами.
func normalizeWords(s string) string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return " " + strings.Join(fields, " ") + " "
}

func lower(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			out = append(out, t)
		}
	}
	return out
}
