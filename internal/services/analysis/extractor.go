package analysis

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"
)

// ErrExtraction marks a filing payload that could not be parsed. The caller
// substitutes the empty result and continues with free text.
var ErrExtraction = errors.New("filing extraction failed")

const (
	minNarrativeLength = 20
	maxNarrativeParts  = 5
)

// Identifier-shaped values are dropped from narrative candidates: short
// all-caps tokens, bare ISO dates, ISIN and CIN codes.
var identifierPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^[A-Z0-9]{2,12}$`),
	regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`),
	regexp.MustCompile(`^[A-Z]{2}[A-Z0-9]{9}\d$`),
	regexp.MustCompile(`^[ULC]\d{5}[A-Z]{2}\d{4}[A-Z]{3}\d{6}$`),
}

var companyInfoTags = []string{"company", "entity", "name", "identifier"}

// Extractor pulls normalized financial facts out of structured filing
// payloads (XBRL-style XML).
type Extractor struct {
	taxonomy *Taxonomy
}

// NewExtractor returns an extractor bound to the taxonomy's metric names.
func NewExtractor(taxonomy *Taxonomy) *Extractor {
	return &Extractor{taxonomy: taxonomy}
}

type filingNode struct {
	tag  string // local name, lower-cased
	text string
}

// Extract parses one filing payload. A malformed payload returns the empty
// FilingData and ErrExtraction; the engine degrades to free text in that
// case rather than failing the analysis.
func (e *Extractor) Extract(payload []byte) (*FilingData, error) {
	data := &FilingData{Quality: QualityNone}
	if len(bytes.TrimSpace(payload)) == 0 {
		return data, nil
	}

	nodes, err := flattenFiling(payload)
	if err != nil {
		return &FilingData{Quality: QualityNone}, fmt.Errorf("%w: %v", ErrExtraction, err)
	}

	data.Metrics = e.extractMetrics(nodes)
	data.Company = extractCompanyInfo(nodes)
	data.Dates = extractDates(nodes)
	data.Narrative = extractNarrative(nodes)

	for _, n := range nodes {
		data.Amounts = append(data.Amounts, NormalizeAmounts(n.text)...)
		data.Percentages = append(data.Percentages, NormalizePercentages(n.text)...)
	}
	data.Events = extractEvents(nodes)

	data.Quality = gradeQuality(data)
	return data, nil
}

// flattenFiling walks the XML token stream into (local name, text) pairs,
// ignoring namespaces. Any decode error is treated as a malformed payload.
func flattenFiling(payload []byte) ([]filingNode, error) {
	decoder := xml.NewDecoder(bytes.NewReader(payload))
	var nodes []filingNode
	var stack []string

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			stack = append(stack, strings.ToLower(t.Name.Local))
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case xml.CharData:
			text := strings.TrimSpace(string(t))
			if text == "" || len(stack) == 0 {
				continue
			}
			nodes = append(nodes, filingNode{tag: stack[len(stack)-1], text: text})
		}
	}
	if len(nodes) == 0 {
		return nil, errors.New("no element content")
	}
	return nodes, nil
}

// extractMetrics matches element local names against the canonical metric
// name fragments. The last numeric value per metric wins when a filing
// repeats a metric across contexts.
func (e *Extractor) extractMetrics(nodes []filingNode) FinancialMetrics {
	metrics := FinancialMetrics{}
	for _, n := range nodes {
		for _, metric := range e.taxonomy.MetricNames {
			if !strings.Contains(n.tag, metric) {
				continue
			}
			if v, ok := parseNumber(n.text); ok {
				metrics[metric] = v
			}
		}
	}
	if len(metrics) == 0 {
		return nil
	}
	return metrics
}

func extractCompanyInfo(nodes []filingNode) CompanyInfo {
	info := CompanyInfo{}
	for _, n := range nodes {
		for _, keyword := range companyInfoTags {
			if strings.Contains(n.tag, keyword) {
				info[n.tag] = n.text
				break
			}
		}
	}
	if len(info) == 0 {
		return nil
	}
	return info
}

func extractDates(nodes []filingNode) []DateFact {
	var dates []DateFact
	seen := map[string]bool{}
	for _, n := range nodes {
		for _, p := range datePatterns {
			for _, raw := range p.re.FindAllString(n.text, -1) {
				if seen[raw] {
					continue
				}
				parsed, err := time.Parse(p.layout, raw)
				if err != nil {
					continue
				}
				seen[raw] = true
				dates = append(dates, DateFact{Raw: raw, Parsed: parsed})
			}
		}
	}
	return dates
}

// extractNarrative joins the first few meaningful text nodes, skipping
// identifier-shaped values.
func extractNarrative(nodes []filingNode) string {
	var parts []string
	for _, n := range nodes {
		if len(n.text) < minNarrativeLength || isIdentifier(n.text) {
			continue
		}
		parts = append(parts, n.text)
		if len(parts) == maxNarrativeParts {
			break
		}
	}
	return strings.Join(parts, " ")
}

func isIdentifier(text string) bool {
	for _, p := range identifierPatterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

// extractEvents surfaces elements whose names declare a business event.
func extractEvents(nodes []filingNode) []BusinessEvent {
	var events []BusinessEvent
	for _, n := range nodes {
		if !strings.Contains(n.tag, "event") || len(n.text) < minNarrativeLength {
			continue
		}
		events = append(events, BusinessEvent{Name: n.tag, Description: n.text})
	}
	return events
}

func gradeQuality(data *FilingData) FilingQuality {
	switch {
	case len(data.Metrics) > 0:
		return QualityStructured
	case len(data.Company) > 0 || len(data.Dates) > 0:
		return QualityPartial
	case len(data.Amounts) > 0 || len(data.Percentages) > 0 || data.Narrative != "":
		return QualityUnstructured
	default:
		return QualityNone
	}
}
