package detectors

import (
	"strings"

	v "github.com/redactyl/gdprmask/internal/validate"
)

// matchValidator checks a raw match. It returns the accepted text, which is
// the match itself or a prefix of it.
type matchValidator func(m string) (string, bool)

var ruleValidators = map[string]matchValidator{
	// Cards: Luhn on the compacted digits. Thirteen-digit numbers starting
	// with 1 are account numbers, not cards.
	"credit_card":             luhnCard,
	"credit_card_visa":        luhnCard,
	"credit_card_mastercard":  luhnCard,
	"credit_card_amex":        luhnCard,
	"credit_card_amex_spaced": luhnCard,
	"credit_card_discover":    luhnCard,
	"email": func(m string) (string, bool) {
		at := strings.Count(m, "@")
		if at != 1 {
			return m, false
		}
		domain := m[strings.IndexByte(m, '@')+1:]
		return m, strings.Contains(domain, ".") && !strings.HasPrefix(domain, ".") && !strings.Contains(domain, "..")
	},
	"url_http": trimURL,
	"url_www":  trimURL,
	"url_ftp":  trimURL,
	// IBAN: a spaced match may run into following groups; cut it at the
	// country length before checking mod-97.
	"iban":        ibanToLength,
	"iban_spaced": ibanToLength,

	// Slovenia
	"si_emso":       digitsOnly(v.JMBG),
	"si_tax_number": digitsOnly(v.SITaxNumber),
	"si_vat":        prefixed(v.SITaxNumber),
	"si_iban":       compactIBAN,
	// Croatia
	"hr_oib":  digitsOnly(v.OIB),
	"hr_vat":  prefixed(v.OIB),
	"hr_iban": compactIBAN,
	// Serbia
	"rs_jmbg":    digitsOnly(v.JMBG),
	"rs_pib":     digitsOnly(v.PIB),
	"rs_vat":     prefixed(v.PIB),
	"rs_iban":    compactIBAN,
	"rs_account": func(m string) (string, bool) { return m, v.Mod97(v.Digits(m)) },
	// Bulgaria
	"bg_egn": digitsOnly(v.EGN),
	"bg_eik": digitsOnly(v.EIK),
	"bg_vat": prefixed(func(s string) bool {
		if len(s) == 10 {
			return v.EGN(s)
		}
		return v.EIK(s)
	}),
	"bg_iban": compactIBAN,
	// North Macedonia
	"mk_embg": digitsOnly(v.JMBG),
	"mk_iban": compactIBAN,
}

// validateMatch applies the validator registered for id, if any.
func validateMatch(id, m string) (string, bool) {
	if vfn, ok := ruleValidators[id]; ok {
		return vfn(m)
	}
	return m, true
}

func luhnCard(m string) (string, bool) {
	d := v.Compact(m)
	if !v.IsDigits(d) || !v.LengthBetween(d, 13, 19) {
		return m, false
	}
	if len(d) == 13 && d[0] == '1' {
		return m, false
	}
	return m, v.Luhn(d)
}

// trimURL drops sentence punctuation that the greedy URL patterns swallow.
func trimURL(m string) (string, bool) {
	m = strings.TrimRight(m, `.,;:!?)]}"'`)
	return m, len(m) > len("www.")
}

func ibanToLength(m string) (string, bool) {
	want, ok := v.IBANLength(m)
	if !ok {
		return m, false
	}
	n := 0
	for i := 0; i < len(m); i++ {
		if m[i] == ' ' {
			continue
		}
		n++
		if n == want {
			m = m[:i+1]
			break
		}
	}
	return m, n == want && v.IBAN(v.Compact(m))
}

func compactIBAN(m string) (string, bool) { return m, v.IBAN(v.Compact(m)) }

func digitsOnly(check func(string) bool) matchValidator {
	return func(m string) (string, bool) { return m, check(v.Digits(m)) }
}

// prefixed validates "CC12345678"-style VAT numbers by the digits after the
// two-letter country prefix.
func prefixed(check func(string) bool) matchValidator {
	return func(m string) (string, bool) {
		if len(m) < 3 {
			return m, false
		}
		return m, check(v.Digits(m[2:]))
	}
}
