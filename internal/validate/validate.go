package validate

import (
	"math/big"
	"strconv"
	"strings"
)

// LengthBetween returns true if n is within [min,max].
func LengthBetween(s string, min, max int) bool {
	n := len(s)
	return n >= min && n <= max
}

// IsAlphabet returns true if all characters in s are in allowed set.
func IsAlphabet(s, allowed string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !strings.ContainsRune(allowed, rune(s[i])) {
			return false
		}
	}
	return true
}

// IsDigits reports whether s is non-empty and made of ASCII digits only.
func IsDigits(s string) bool {
	return IsAlphabet(s, "0123456789")
}

// Digits strips everything except ASCII digits from s.
func Digits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// Compact removes spaces and dashes, the separators people put into
// account and card numbers.
func Compact(s string) string {
	return strings.NewReplacer(" ", "", "-", "", "\u00a0", "").Replace(s)
}

// Luhn checks a digit string against the Luhn algorithm (ISO/IEC 7812).
func Luhn(number string) bool {
	n := len(number)
	if n < 2 || !IsDigits(number) {
		return false
	}
	sum := 0
	alt := false
	for i := n - 1; i >= 0; i-- {
		d := int(number[i] - '0')
		if alt {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		alt = !alt
	}
	return sum%10 == 0
}

// IBANLengths maps ISO 3166 country codes to their fixed IBAN length.
var IBANLengths = map[string]int{
	"AD": 24, "AT": 20, "BA": 20, "BE": 16, "BG": 22, "CH": 21, "CY": 28,
	"CZ": 24, "DE": 22, "DK": 18, "EE": 20, "ES": 24, "FI": 18, "FR": 27,
	"GB": 22, "GR": 27, "HR": 21, "HU": 28, "IE": 22, "IS": 26, "IT": 27,
	"LI": 21, "LT": 20, "LU": 20, "LV": 21, "ME": 22, "MK": 19, "MT": 31,
	"NL": 18, "NO": 15, "PL": 28, "PT": 25, "RO": 24, "RS": 22, "SE": 24,
	"SI": 19, "SK": 24, "TR": 26, "XK": 20, "AL": 28, "MD": 24,
}

// IBANLength returns the expected length for the IBAN's country code.
func IBANLength(iban string) (int, bool) {
	if len(iban) < 2 {
		return 0, false
	}
	n, ok := IBANLengths[strings.ToUpper(iban[:2])]
	return n, ok
}

// IBAN verifies a compact IBAN (no spaces): country length and the MOD-97
// check digits per ISO 13616.
func IBAN(iban string) bool {
	iban = strings.ToUpper(iban)
	want, ok := IBANLength(iban)
	if !ok || len(iban) != want {
		return false
	}
	rem, ok := mod97(iban[4:] + iban[:4])
	return ok && rem == 1
}

// IBANCheckDigits computes the two check digits for a country code and BBAN.
func IBANCheckDigits(country, bban string) string {
	rem, ok := mod97(strings.ToUpper(bban + country + "00"))
	if !ok {
		return ""
	}
	cd := 98 - rem
	if cd < 10 {
		return "0" + strconv.Itoa(cd)
	}
	return strconv.Itoa(cd)
}

// Mod97 reports whether a digit string leaves remainder 1 modulo 97
// (ISO 7064 MOD 97-10), used for domestic account numbers.
func Mod97(digits string) bool {
	if !IsDigits(digits) {
		return false
	}
	rem, ok := mod97(digits)
	return ok && rem == 1
}

// mod97 converts letters to numbers (A=10 ... Z=35) and reduces mod 97.
func mod97(s string) (int, bool) {
	var num strings.Builder
	for _, ch := range s {
		switch {
		case ch >= '0' && ch <= '9':
			num.WriteRune(ch)
		case ch >= 'A' && ch <= 'Z':
			num.WriteString(strconv.Itoa(int(ch-'A') + 10))
		default:
			return 0, false
		}
	}
	n := new(big.Int)
	if _, ok := n.SetString(num.String(), 10); !ok {
		return 0, false
	}
	return int(new(big.Int).Mod(n, big.NewInt(97)).Int64()), true
}

// JMBG validates the 13-digit unique master citizen number shared by the
// former Yugoslav states (Slovenian EMŠO, Serbian JMBG, Macedonian EMBG).
func JMBG(s string) bool {
	if len(s) != 13 || !IsDigits(s) {
		return false
	}
	weights := [12]int{7, 6, 5, 4, 3, 2, 7, 6, 5, 4, 3, 2}
	sum := 0
	for i, w := range weights {
		sum += int(s[i]-'0') * w
	}
	var check int
	switch rem := sum % 11; rem {
	case 0:
		check = 0
	case 1:
		return false
	default:
		check = 11 - rem
	}
	return check == int(s[12]-'0')
}

// ISO7064Mod11_10 validates the hybrid MOD 11,10 check digit used by the
// Croatian OIB (11 digits) and Serbian PIB (9 digits).
func ISO7064Mod11_10(s string) bool {
	if len(s) < 2 || !IsDigits(s) {
		return false
	}
	a := 10
	for i := 0; i < len(s)-1; i++ {
		a = (a + int(s[i]-'0')) % 10
		if a == 0 {
			a = 10
		}
		a = (a * 2) % 11
	}
	check := 11 - a
	if check == 10 {
		check = 0
	}
	return check == int(s[len(s)-1]-'0')
}

// OIB validates a Croatian personal identification number.
func OIB(s string) bool { return len(s) == 11 && ISO7064Mod11_10(s) }

// PIB validates a Serbian tax identification number.
func PIB(s string) bool { return len(s) == 9 && ISO7064Mod11_10(s) }

// SITaxNumber validates a Slovenian tax number (davčna številka): eight
// digits, first non-zero, weights 8..2 and a mod-11 check digit.
func SITaxNumber(s string) bool {
	if len(s) != 8 || !IsDigits(s) || s[0] == '0' {
		return false
	}
	sum := 0
	for i := 0; i < 7; i++ {
		sum += int(s[i]-'0') * (8 - i)
	}
	check := 11 - sum%11
	switch check {
	case 10:
		check = 0
	case 11:
		return false
	}
	return check == int(s[7]-'0')
}

// EGN validates a Bulgarian personal number (ЕГН).
func EGN(s string) bool {
	if len(s) != 10 || !IsDigits(s) {
		return false
	}
	weights := [9]int{2, 4, 8, 5, 10, 9, 7, 3, 6}
	sum := 0
	for i, w := range weights {
		sum += int(s[i]-'0') * w
	}
	check := sum % 11
	if check == 10 {
		check = 0
	}
	return check == int(s[9]-'0')
}

// EIK validates a 9-digit Bulgarian company identifier (ЕИК/BULSTAT).
func EIK(s string) bool {
	if len(s) != 9 || !IsDigits(s) {
		return false
	}
	sum := 0
	for i := 0; i < 8; i++ {
		sum += int(s[i]-'0') * (i + 1)
	}
	check := sum % 11
	if check == 10 {
		sum = 0
		for i := 0; i < 8; i++ {
			sum += int(s[i]-'0') * (i + 3)
		}
		check = sum % 11
		if check == 10 {
			check = 0
		}
	}
	return check == int(s[8]-'0')
}
