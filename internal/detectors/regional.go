package detectors

import (
	"context"
	"regexp"

	"github.com/redactyl/gdprmask/internal/types"
)

// regionalRules holds the national identifier tables. Checksummed rules are
// high confidence; shape-only rules are medium.
var regionalRules = map[types.Language][]Rule{
	types.Slovenian: {
		{ID: "si_emso", Type: types.PersonalID, Confidence: types.ConfHigh,
			Re: regexp.MustCompile(`\b\d{13}\b`)},
		{ID: "si_tax_number", Type: types.TaxNumber, Confidence: types.ConfHigh,
			Re: regexp.MustCompile(`\b\d{8}\b`)},
		{ID: "si_vat", Type: types.VAT, Confidence: types.ConfHigh,
			Re: regexp.MustCompile(`\bSI ?\d{8}\b`)},
		{ID: "si_iban", Type: types.BankAccount, Confidence: types.ConfHigh,
			Re: regexp.MustCompile(`\bSI\d{2}(?: ?\d{4}){3} ?\d{3}\b`)},
		{ID: "si_trr", Type: types.BankAccount, Confidence: types.ConfMed,
			Re: regexp.MustCompile(`\b\d{3}-\d{2}-\d{13}\b`)},
		{ID: "si_trr_compact", Type: types.BankAccount, Confidence: types.ConfMed,
			Re: regexp.MustCompile(`\b\d{19}\b`)},
	},
	types.Croatian: {
		{ID: "hr_oib", Type: types.PersonalID, Confidence: types.ConfHigh,
			Re: regexp.MustCompile(`\b\d{11}\b`)},
		{ID: "hr_vat", Type: types.VAT, Confidence: types.ConfHigh,
			Re: regexp.MustCompile(`\bHR ?\d{11}\b`)},
		{ID: "hr_iban", Type: types.BankAccount, Confidence: types.ConfHigh,
			Re: regexp.MustCompile(`\bHR\d{2}(?: ?\d{4}){4} ?\d\b`)},
	},
	types.Serbian: {
		{ID: "rs_jmbg", Type: types.PersonalID, Confidence: types.ConfHigh,
			Re: regexp.MustCompile(`\b\d{13}\b`)},
		{ID: "rs_pib", Type: types.TaxNumber, Confidence: types.ConfHigh,
			Re: regexp.MustCompile(`\b\d{9}\b`)},
		{ID: "rs_vat", Type: types.VAT, Confidence: types.ConfHigh,
			Re: regexp.MustCompile(`\bRS ?\d{9}\b`)},
		{ID: "rs_iban", Type: types.BankAccount, Confidence: types.ConfHigh,
			Re: regexp.MustCompile(`\bRS\d{2} ?\d{3} ?\d{13} ?\d{2}\b`)},
		{ID: "rs_account", Type: types.BankAccount, Confidence: types.ConfHigh,
			Re: regexp.MustCompile(`\b\d{3}-\d{13}-\d{2}\b`)},
	},
	types.Bulgarian: {
		{ID: "bg_egn", Type: types.PersonalID, Confidence: types.ConfHigh,
			Re: regexp.MustCompile(`\b\d{10}\b`)},
		{ID: "bg_eik", Type: types.TaxNumber, Confidence: types.ConfHigh,
			Re: regexp.MustCompile(`\b\d{9}\b`)},
		{ID: "bg_vat", Type: types.VAT, Confidence: types.ConfHigh,
			Re: regexp.MustCompile(`\bBG ?\d{9,10}\b`)},
		{ID: "bg_iban", Type: types.BankAccount, Confidence: types.ConfHigh,
			Re: regexp.MustCompile(`\bBG\d{2}(?: ?[A-Z0-9]{4}){4} ?[A-Z0-9]{2}\b`)},
	},
	types.Macedonian: {
		{ID: "mk_embg", Type: types.PersonalID, Confidence: types.ConfHigh,
			Re: regexp.MustCompile(`\b\d{13}\b`)},
		{ID: "mk_edb", Type: types.TaxNumber, Confidence: types.ConfMed,
			Re: regexp.MustCompile(`\b4\d{12}\b`)},
		{ID: "mk_vat", Type: types.VAT, Confidence: types.ConfMed,
			Re: regexp.MustCompile(`\bMK ?4\d{12}\b`)},
		{ID: "mk_iban", Type: types.BankAccount, Confidence: types.ConfHigh,
			Re: regexp.MustCompile(`\bMK\d{2}(?: ?[A-Z0-9]{4}){3} ?[A-Z0-9]{3}\b`)},
	},
}

// RegionalDetector finds national identifiers, tax and VAT numbers and bank
// accounts using the table for the requested language.
type RegionalDetector struct {
	rules map[types.Language][]Rule
}

// NewRegional returns the national-identifier detector.
func NewRegional() *RegionalDetector { return &RegionalDetector{rules: regionalRules} }

func (d *RegionalDetector) Method() types.Method { return types.MethodRegional }

func (d *RegionalDetector) Detect(ctx context.Context, text string, lang types.Language) ([]types.Span, error) {
	rules, ok := d.rules[lang]
	if !ok {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return findAll(text, runeIndex(text), rules, types.MethodRegional), nil
}
