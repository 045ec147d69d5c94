package analysis

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Unit multipliers are applied exactly once, when the amount is extracted.
var unitMultipliers = map[string]float64{
	"crore":    1e7,
	"cr":       1e7,
	"lakh":     1e5,
	"lk":       1e5,
	"million":  1e6,
	"mn":       1e6,
	"billion":  1e9,
	"bn":       1e9,
	"thousand": 1e3,
}

type amountPattern struct {
	re       *regexp.Regexp
	currency Currency
}

// Currency-anchored patterns run first; the bare number-plus-unit pattern
// only claims spans the earlier patterns did not.
var (
	currencyAmountPatterns = []amountPattern{
		{regexp.MustCompile(`(?i)₹\s*([\d,]+(?:\.\d+)?)(?:\s*(crore|cr|lakh|lk|million|mn|billion|bn|thousand))?\b`), CurrencyINR},
		{regexp.MustCompile(`(?i)\bRs\.?\s*([\d,]+(?:\.\d+)?)(?:\s*(crore|cr|lakh|lk|million|mn|billion|bn|thousand))?\b`), CurrencyINR},
		{regexp.MustCompile(`(?i)\bINR\s*([\d,]+(?:\.\d+)?)(?:\s*(crore|cr|lakh|lk|million|mn|billion|bn|thousand))?\b`), CurrencyINR},
		{regexp.MustCompile(`(?i)\bUSD\s*([\d,]+(?:\.\d+)?)(?:\s*(million|mn|billion|bn|thousand))?\b`), CurrencyUSD},
	}
	bareAmountPattern = regexp.MustCompile(`(?i)\b(\d{1,3}(?:,\d{3})*(?:\.\d+)?|\d+(?:\.\d+)?)\s*(crore|cr|lakh|lk|million|mn|thousand)\b`)
)

type span struct{ start, end int }

func (s span) overlaps(o span) bool {
	return s.start < o.end && o.start < s.end
}

// NormalizeAmounts extracts monetary values from free text, applying unit
// multipliers once. Values that fail to parse after comma-stripping are
// dropped, not surfaced as errors.
func NormalizeAmounts(text string) []ExtractedAmount {
	var amounts []ExtractedAmount
	var claimed []span

	for _, p := range currencyAmountPatterns {
		for _, idx := range p.re.FindAllStringSubmatchIndex(text, -1) {
			s := span{idx[0], idx[1]}
			if overlapsAny(claimed, s) {
				continue
			}
			value, ok := parseNumber(text[idx[2]:idx[3]])
			if !ok {
				continue
			}
			unit := ""
			if idx[4] >= 0 {
				unit = strings.ToLower(text[idx[4]:idx[5]])
				value *= unitMultipliers[unit]
			}
			claimed = append(claimed, s)
			amounts = append(amounts, ExtractedAmount{
				Value:      value,
				Currency:   p.currency,
				RawUnit:    unit,
				SourceSpan: text[idx[0]:idx[1]],
			})
		}
	}

	for _, idx := range bareAmountPattern.FindAllStringSubmatchIndex(text, -1) {
		s := span{idx[0], idx[1]}
		if overlapsAny(claimed, s) {
			continue
		}
		value, ok := parseNumber(text[idx[2]:idx[3]])
		if !ok {
			continue
		}
		unit := strings.ToLower(text[idx[4]:idx[5]])
		claimed = append(claimed, s)
		amounts = append(amounts, ExtractedAmount{
			Value:      value * unitMultipliers[unit],
			Currency:   CurrencyINR,
			RawUnit:    unit,
			SourceSpan: text[idx[0]:idx[1]],
		})
	}

	return amounts
}

func overlapsAny(claimed []span, s span) bool {
	for _, c := range claimed {
		if c.overlaps(s) {
			return true
		}
	}
	return false
}

func parseNumber(raw string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

type percentagePattern struct {
	re   *regexp.Regexp
	kind PercentageKind
}

// Phrase-anchored patterns run first so a tagged number is not re-emitted
// as a standard percentage.
var percentagePatterns = []percentagePattern{
	{regexp.MustCompile(`(?i)\bincrease\s*of\s*(\d+(?:\.\d+)?)`), PercentIncrease},
	{regexp.MustCompile(`(?i)\bgrowth\s*of\s*(\d+(?:\.\d+)?)`), PercentGrowth},
	{regexp.MustCompile(`(?i)\bdecrease\s*of\s*(\d+(?:\.\d+)?)`), PercentDecrease},
	{regexp.MustCompile(`(?i)\bdecline\s*of\s*(\d+(?:\.\d+)?)`), PercentDecline},
	{regexp.MustCompile(`(\d+(?:\.\d+)?)\s*%`), PercentStandard},
	{regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*percent\b`), PercentStandard},
}

// NormalizePercentages extracts percentage values, tagging phrase-anchored
// matches (increase/growth/decrease/decline) with their kind.
func NormalizePercentages(text string) []ExtractedPercentage {
	var percentages []ExtractedPercentage
	var claimed []span

	for _, p := range percentagePatterns {
		for _, idx := range p.re.FindAllStringSubmatchIndex(text, -1) {
			numSpan := span{idx[2], idx[3]}
			if overlapsAny(claimed, numSpan) {
				continue
			}
			value, ok := parseNumber(text[idx[2]:idx[3]])
			if !ok {
				continue
			}
			claimed = append(claimed, numSpan)
			percentages = append(percentages, ExtractedPercentage{Value: value, Kind: p.kind})
		}
	}

	return percentages
}

type datePattern struct {
	re     *regexp.Regexp
	layout string
}

var datePatterns = []datePattern{
	{regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`), "2006-01-02"},
	{regexp.MustCompile(`\b\d{2}-\d{2}-\d{4}\b`), "02-01-2006"},
	{regexp.MustCompile(`\b\d{4}/\d{2}/\d{2}\b`), "2006/01/02"},
	{regexp.MustCompile(`\b\d{2}/\d{2}/\d{4}\b`), "02/01/2006"},
	{regexp.MustCompile(`\b\d{2}/\d{2}/\d{2}\b`), "02/01/06"},
	{regexp.MustCompile(`\b\d{2}-\d{2}-\d{2}\b`), "02-01-06"},
}

// NormalizeDate returns the first date in the text that parses under a
// recognized layout. Unparseable strings yield no result, not an error.
func NormalizeDate(text string) (time.Time, bool) {
	for _, p := range datePatterns {
		for _, raw := range p.re.FindAllString(text, -1) {
			if t, err := time.Parse(p.layout, raw); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}
