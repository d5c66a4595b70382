// Package risk scores the residual privacy risk of a set of masked entities
// and builds the GDPR Article 4 summary.
package risk

import (
	"github.com/redactyl/gdprmask/internal/types"
)

// Compliance notes, emitted in this order when triggered.
const (
	NoteLegalBasis = "Ensure proper legal basis for processing personal data"
	NoteSpecial    = "Special category data detected - additional safeguards required"
	NoteFinancial  = "Financial data detected - restrict access and apply PCI DSS / banking secrecy controls"
	NoteOnline     = "Online identifiers detected - review tracking and logging retention"
)

// highRisk types alone make a result high risk.
var highRisk = map[types.EntityType]bool{
	types.PersonalID:  true,
	types.TaxNumber:   true,
	types.BankAccount: true,
	types.VAT:         true,
	types.CreditCard:  true,
	types.IBAN:        true,
}

// IsHighRisk reports whether t alone makes a result high risk.
func IsHighRisk(t types.EntityType) bool { return highRisk[t] }

var (
	nationalID = map[types.EntityType]bool{types.PersonalID: true, types.TaxNumber: true, types.VAT: true}
	financial  = map[types.EntityType]bool{types.CreditCard: true, types.IBAN: true, types.BankAccount: true}
	online     = map[types.EntityType]bool{types.IPAddress: true, types.URL: true}
)

// Score classifies entities: high for any national or financial identifier or
// three or more distinct types, medium for one or two other types, low when
// nothing was masked. The notes list is never nil.
func Score(entities []types.MaskedEntity) (types.RiskLevel, []string) {
	present := distinct(entities)
	return level(present), notes(present)
}

func level(present map[types.EntityType]bool) types.RiskLevel {
	if len(present) == 0 {
		return types.RiskLow
	}
	for t := range present {
		if highRisk[t] {
			return types.RiskHigh
		}
	}
	if len(present) >= 3 {
		return types.RiskHigh
	}
	return types.RiskMed
}

func notes(present map[types.EntityType]bool) []string {
	out := []string{}
	if len(present) == 0 {
		return out
	}
	out = append(out, NoteLegalBasis)
	if hasAny(present, nationalID) {
		out = append(out, NoteSpecial)
	}
	if hasAny(present, financial) {
		out = append(out, NoteFinancial)
	}
	if hasAny(present, online) {
		out = append(out, NoteOnline)
	}
	return out
}

func distinct(entities []types.MaskedEntity) map[types.EntityType]bool {
	present := make(map[types.EntityType]bool, len(entities))
	for _, e := range entities {
		present[e.Type] = true
	}
	return present
}

func hasAny(present, group map[types.EntityType]bool) bool {
	for t := range group {
		if present[t] {
			return true
		}
	}
	return false
}
