package analysis

import (
	"regexp"
	"strings"
)

const (
	polarityPositiveCut = 0.1
	polarityNegativeCut = -0.1
	lexicalWeight       = 0.7
	keywordWeight       = 0.3
	fusedBucketCut      = 0.3
)

var wordPattern = regexp.MustCompile(`[a-z]+`)

// SentimentAnalyzer fuses a lexical polarity signal with keyword counts
// over the business-term lexicon into one categorical sentiment.
type SentimentAnalyzer struct {
	taxonomy *Taxonomy
	positive map[string]bool
	negative map[string]bool
}

// NewSentimentAnalyzer builds word sets from the taxonomy lexicon.
func NewSentimentAnalyzer(taxonomy *Taxonomy) *SentimentAnalyzer {
	return &SentimentAnalyzer{
		taxonomy: taxonomy,
		positive: wordSet(taxonomy.Sentiment.Positive),
		negative: wordSet(taxonomy.Sentiment.Negative),
	}
}

func wordSet(words []string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[strings.ToLower(w)] = true
	}
	return set
}

// Analyze computes sentiment over the full announcement text.
func (a *SentimentAnalyzer) Analyze(text string) SentimentResult {
	lowered := strings.ToLower(text)

	polarity, subjectivity := a.lexicalSignal(lowered)
	counts := a.keywordCounts(lowered)

	lexical := bucketPolarity(polarity)
	keyword := bucketCounts(counts)

	fused := lexicalWeight*labelValue(lexical) + keywordWeight*labelValue(keyword)

	overall := SentimentNeutral
	if fused > fusedBucketCut {
		overall = SentimentPositive
	} else if fused < -fusedBucketCut {
		overall = SentimentNegative
	}

	confidence := fused
	if confidence < 0 {
		confidence = -confidence
	}

	return SentimentResult{
		Polarity:      polarity,
		Subjectivity:  subjectivity,
		KeywordCounts: counts,
		Combined: CombinedSentiment{
			Score:      fused,
			Overall:    overall,
			Confidence: confidence,
		},
	}
}

// lexicalSignal is a word-level polarity estimator: polarity is the signed
// share of sentiment-bearing words among those matched, subjectivity their
// share of all words.
func (a *SentimentAnalyzer) lexicalSignal(lowered string) (polarity, subjectivity float64) {
	words := wordPattern.FindAllString(lowered, -1)
	if len(words) == 0 {
		return 0, 0
	}

	positive, negative := 0, 0
	for _, w := range words {
		switch {
		case a.positive[w]:
			positive++
		case a.negative[w]:
			negative++
		}
	}

	charged := positive + negative
	if charged > 0 {
		polarity = float64(positive-negative) / float64(charged)
	}
	subjectivity = clamp01(float64(charged) / float64(len(words)))
	return polarity, subjectivity
}

func (a *SentimentAnalyzer) keywordCounts(lowered string) KeywordCounts {
	return KeywordCounts{
		Positive: countOccurrences(lowered, a.taxonomy.Sentiment.Positive),
		Negative: countOccurrences(lowered, a.taxonomy.Sentiment.Negative),
		Neutral:  countOccurrences(lowered, a.taxonomy.Sentiment.Neutral),
	}
}

func countOccurrences(text string, keywords []string) int {
	total := 0
	for _, k := range keywords {
		total += strings.Count(text, k)
	}
	return total
}

func bucketPolarity(polarity float64) SentimentLabel {
	switch {
	case polarity > polarityPositiveCut:
		return SentimentPositive
	case polarity < polarityNegativeCut:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

// bucketCounts derives the keyword-based categorical sentiment by majority.
func bucketCounts(c KeywordCounts) SentimentLabel {
	switch {
	case c.Positive > c.Negative && c.Positive > c.Neutral:
		return SentimentPositive
	case c.Negative > c.Positive && c.Negative > c.Neutral:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

func labelValue(l SentimentLabel) float64 {
	switch l {
	case SentimentPositive:
		return 1
	case SentimentNegative:
		return -1
	default:
		return 0
	}
}
