package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLengthBetween(t *testing.T) {
	if !LengthBetween("abcd", 2, 5) {
		t.Fatal("expected true for length between")
	}
	if LengthBetween("a", 2, 5) {
		t.Fatal("expected false for too short")
	}
	if LengthBetween("abcdef", 2, 5) {
		t.Fatal("expected false for too long")
	}
}

func TestIsAlphabet(t *testing.T) {
	if !IsAlphabet("abcXYZ09", "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789") {
		t.Fatal("expected alnum to be allowed")
	}
	if IsAlphabet("abc-", "abc") {
		t.Fatal("expected false when char not allowed")
	}
}

func TestDigitsAndCompact(t *testing.T) {
	assert.Equal(t, "4111111111111111", Digits("4111 1111-1111 1111"))
	assert.Equal(t, "SI56192001234567892", Compact("SI56 1920 0123 4567 892"))
	assert.True(t, IsDigits("0123"))
	assert.False(t, IsDigits(""))
	assert.False(t, IsDigits("12a"))
}

func TestLuhn(t *testing.T) {
	assert.True(t, Luhn("4111111111111111"))
	assert.True(t, Luhn("5500000000000004"))
	assert.False(t, Luhn("4111111111111112"))
	assert.False(t, Luhn("4"))
	assert.False(t, Luhn("4111-1111"))
}

func TestIBAN(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"germany", "DE89370400440532013000", true},
		{"uk", "GB82WEST12345698765432", true},
		{"lowercase", "de89370400440532013000", true},
		{"bad check digits", "DE88370400440532013000", false},
		{"wrong length", "DE8937040044053201300", false},
		{"unknown country", "QQ89370400440532013000", false},
		{"too short", "D", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IBAN(tt.in))
		})
	}
}

func TestIBANCheckDigits(t *testing.T) {
	assert.Equal(t, "89", IBANCheckDigits("DE", "370400440532013000"))
	bban := "1920012345678"
	iban := "SI" + IBANCheckDigits("SI", bban) + bban
	assert.Len(t, iban, 19)
	assert.True(t, IBAN(iban))
	assert.Equal(t, "", IBANCheckDigits("SI", "12-34"))
}

func TestMod97(t *testing.T) {
	// 97*k + 1 always leaves remainder one.
	assert.True(t, Mod97("9701"))
	assert.False(t, Mod97("9700"))
	assert.False(t, Mod97("97a1"))
}

func TestJMBG(t *testing.T) {
	assert.True(t, JMBG("0101990500003"))
	assert.False(t, JMBG("0101990500004"))
	assert.False(t, JMBG("010199050000"))
	assert.False(t, JMBG("01019905000a3"))
}

func TestMod11_10Family(t *testing.T) {
	assert.True(t, OIB("69435151530"))
	assert.False(t, OIB("69435151531"))
	assert.False(t, OIB("100000008"))
	assert.True(t, PIB("100000008"))
	assert.False(t, PIB("100000009"))
	assert.False(t, ISO7064Mod11_10("1"))
}

func TestSITaxNumber(t *testing.T) {
	assert.True(t, SITaxNumber("12345679"))
	assert.False(t, SITaxNumber("12345678"))
	assert.False(t, SITaxNumber("02345679"))
	assert.False(t, SITaxNumber("1234567"))
}

func TestBulgarianIdentifiers(t *testing.T) {
	assert.True(t, EGN("7523169263"))
	assert.False(t, EGN("7523169264"))
	assert.True(t, EIK("123456786"))
	assert.False(t, EIK("123456787"))
	assert.False(t, EIK("12345678"))
}
