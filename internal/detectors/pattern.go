package detectors

import (
	"context"
	"regexp"

	"github.com/redactyl/gdprmask/internal/types"
)

// patternRules is the language-independent structured-data table. Order
// within the table does not matter for the final result; overlaps are settled
// by the merger.
var patternRules = []Rule{
	// Credit cards (Luhn-gated in validators.go)
	{ID: "credit_card", Type: types.CreditCard, Confidence: types.ConfHigh,
		Re: regexp.MustCompile(`\b(?:4\d{3}|5[0-5]\d{2}|6\d{3}|1\d{3}|3\d{3})[- ]?\d{3,4}[- ]?\d{3,4}[- ]?\d{3,5}\b`)},
	{ID: "credit_card_visa", Type: types.CreditCard, Confidence: types.ConfHigh,
		Re: regexp.MustCompile(`\b4[0-9]{12}(?:[0-9]{3})?\b`)},
	{ID: "credit_card_mastercard", Type: types.CreditCard, Confidence: types.ConfHigh,
		Re: regexp.MustCompile(`\b5[1-5][0-9]{14}\b`)},
	{ID: "credit_card_amex", Type: types.CreditCard, Confidence: types.ConfHigh,
		Re: regexp.MustCompile(`\b3[47][0-9]{13}\b`)},
	{ID: "credit_card_amex_spaced", Type: types.CreditCard, Confidence: types.ConfHigh,
		Re: regexp.MustCompile(`\b3[47]\d{2}[- ]?\d{6}[- ]?\d{5}\b`)},
	{ID: "credit_card_discover", Type: types.CreditCard, Confidence: types.ConfHigh,
		Re: regexp.MustCompile(`\b6(?:011|5[0-9]{2})[0-9]{12}\b`)},

	{ID: "email", Type: types.Email, Confidence: types.ConfHigh,
		Re: regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)},

	{ID: "ipv4", Type: types.IPAddress, Confidence: types.ConfHigh,
		Re: regexp.MustCompile(`\b(?:(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\.){3}(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\b`)},
	{ID: "ipv6", Type: types.IPAddress, Confidence: types.ConfHigh,
		Re: regexp.MustCompile(`\b(?:[0-9a-fA-F]{1,4}:){7}[0-9a-fA-F]{1,4}\b`)},

	{ID: "date_numeric", Type: types.Date, Confidence: types.ConfMed,
		Re: regexp.MustCompile(`\b\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\b`)},
	{ID: "date_iso", Type: types.Date, Confidence: types.ConfMed,
		Re: regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`)},
	{ID: "date_dotted", Type: types.Date, Confidence: types.ConfMed,
		Re: regexp.MustCompile(`\b\d{1,2}\.\s?\d{1,2}\.\s?\d{4}\b`)},
	{ID: "date_written", Type: types.Date, Confidence: types.ConfMed,
		Re: regexp.MustCompile(`\b\d{1,2}\.\s+\p{L}+\s+\d{4}\b`)},

	{ID: "url_http", Type: types.URL, Confidence: types.ConfHigh,
		Re: regexp.MustCompile(`https?://[^\s]+`)},
	{ID: "url_www", Type: types.URL, Confidence: types.ConfHigh,
		Re: regexp.MustCompile(`\bwww\.[^\s]+`)},
	{ID: "url_ftp", Type: types.URL, Confidence: types.ConfHigh,
		Re: regexp.MustCompile(`ftp://[^\s]+`)},

	{ID: "iban", Type: types.IBAN, Confidence: types.ConfHigh,
		Re: regexp.MustCompile(`\b[A-Z]{2}[0-9]{2}[A-Z0-9]{4}[0-9]{7}[A-Z0-9]{0,16}\b`)},
	{ID: "iban_spaced", Type: types.IBAN, Confidence: types.ConfHigh,
		Re: regexp.MustCompile(`\b[A-Z]{2}\d{2}(?: ?[A-Z0-9]{4}){2,7}(?: ?[A-Z0-9]{1,3})?\b`)},
}

// PatternDetector finds structured data (cards, e-mail, IP addresses, dates,
// URLs, IBANs) with the same table for every supported language.
type PatternDetector struct {
	rules []Rule
}

// NewPattern returns the structured-data detector.
func NewPattern() *PatternDetector { return &PatternDetector{rules: patternRules} }

func (d *PatternDetector) Method() types.Method { return types.MethodPattern }

func (d *PatternDetector) Detect(ctx context.Context, text string, lang types.Language) ([]types.Span, error) {
	if !lang.Supported() {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return findAll(text, runeIndex(text), d.rules, types.MethodPattern), nil
}
