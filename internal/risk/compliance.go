package risk

import (
	"github.com/redactyl/gdprmask/internal/types"
)

// descriptions maps each entity type to its GDPR Article 4 category.
var descriptions = map[types.EntityType]string{
	types.PER:         "Personal data (names, identifiers)",
	types.Email:       "Personal data (contact information)",
	types.Phone:       "Personal data (contact information)",
	types.PersonalID:  "Special category data (national ID)",
	types.CreditCard:  "Financial data",
	types.IBAN:        "Financial data (bank account)",
	types.TaxNumber:   "Financial data (tax information)",
	types.BankAccount: "Financial data (bank account)",
	types.VAT:         "Financial data (VAT registration)",
	types.IPAddress:   "Personal data (online identifier)",
	types.Date:        "Personal data (birth dates, etc.)",
	types.LOC:         "Personal data (location)",
	types.ORG:         "Personal data (affiliation)",
	types.URL:         "Personal data (online activity)",
}

// Describe returns the Article 4 category for typ.
func Describe(typ types.EntityType) string {
	if d, ok := descriptions[typ]; ok {
		return d
	}
	return "Personal data"
}

// Assess builds the GDPR summary for masked entities. Categories appear in
// first-seen order without repeats. Only national identifiers are special
// categories, so a non-empty list always comes with NoteSpecial among the
// recommendations, which equal the Score notes.
func Assess(entities []types.MaskedEntity) types.Compliance {
	c := types.Compliance{
		Article4Compliant:    true,
		PersonalDataDetected: []string{},
		SpecialCategories:    []string{},
	}
	seen := map[string]bool{}
	special := map[string]bool{}
	for _, e := range entities {
		d := Describe(e.Type)
		if !seen[d] {
			seen[d] = true
			c.PersonalDataDetected = append(c.PersonalDataDetected, d)
		}
		if nationalID[e.Type] && !special[d] {
			special[d] = true
			c.SpecialCategories = append(c.SpecialCategories, d)
		}
	}
	_, c.Recommendations = Score(entities)
	return c
}
