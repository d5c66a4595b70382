package types

// RiskLevel is a coarse-grained privacy risk classification for a result.
type RiskLevel string

const (
	RiskLow  RiskLevel = "low"
	RiskMed  RiskLevel = "medium"
	RiskHigh RiskLevel = "high"
)

// Rank orders risk levels so callers can compare them (low < medium < high).
func (r RiskLevel) Rank() int {
	switch r {
	case RiskHigh:
		return 3
	case RiskMed:
		return 2
	case RiskLow:
		return 1
	default:
		return 0
	}
}

// Confidence is the detector's certainty that a span is the claimed entity.
type Confidence string

const (
	ConfLow  Confidence = "low"
	ConfMed  Confidence = "medium"
	ConfHigh Confidence = "high"
)

// Rank orders confidence levels (low < medium < high).
func (c Confidence) Rank() int {
	switch c {
	case ConfHigh:
		return 3
	case ConfMed:
		return 2
	case ConfLow:
		return 1
	default:
		return 0
	}
}

// Method names the detection strategy that produced a span.
type Method string

const (
	MethodNER      Method = "ner"
	MethodPhone    Method = "phone_lib"
	MethodPattern  Method = "pattern"
	MethodRegional Method = "regional"
)

// Methods lists every detection method in merge priority order (highest first).
func Methods() []Method {
	return []Method{MethodRegional, MethodPattern, MethodPhone, MethodNER}
}

// Priority returns the tie-break rank used when two spans cover the same
// range: structured, checksummed detections outrank generic NER.
func (m Method) Priority() int {
	switch m {
	case MethodRegional:
		return 4
	case MethodPattern:
		return 3
	case MethodPhone:
		return 2
	case MethodNER:
		return 1
	default:
		return 0
	}
}

// ParseMethod maps a method name to a Method.
func ParseMethod(s string) (Method, bool) {
	for _, m := range Methods() {
		if string(m) == s {
			return m, true
		}
	}
	return "", false
}

// EntityType is the closed set of entity categories the engine reports.
type EntityType string

const (
	PER         EntityType = "PER"
	LOC         EntityType = "LOC"
	ORG         EntityType = "ORG"
	Email       EntityType = "EMAIL"
	Phone       EntityType = "PHONE"
	CreditCard  EntityType = "CREDIT_CARD"
	IPAddress   EntityType = "IP_ADDRESS"
	Date        EntityType = "DATE"
	URL         EntityType = "URL"
	IBAN        EntityType = "IBAN"
	PersonalID  EntityType = "PERSONAL_ID"
	TaxNumber   EntityType = "TAX_NUMBER"
	BankAccount EntityType = "BANK_ACCOUNT"
	VAT         EntityType = "VAT"
)

var allEntityTypes = []EntityType{
	PER, LOC, ORG, Email, Phone, CreditCard, IPAddress, Date, URL, IBAN,
	PersonalID, TaxNumber, BankAccount, VAT,
}

// EntityTypes returns every supported entity type.
func EntityTypes() []EntityType {
	out := make([]EntityType, len(allEntityTypes))
	copy(out, allEntityTypes)
	return out
}

// ParseEntityType maps a type name (e.g. "LOC") to an EntityType.
func ParseEntityType(s string) (EntityType, bool) {
	for _, t := range allEntityTypes {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// Language is a supported input language code.
type Language string

const (
	Slovenian  Language = "sl"
	Croatian   Language = "hr"
	Serbian    Language = "sr"
	Bulgarian  Language = "bg"
	Macedonian Language = "mk"
)

// Languages returns the supported language codes.
func Languages() []Language {
	return []Language{Slovenian, Croatian, Serbian, Bulgarian, Macedonian}
}

// Supported reports whether l is one of the curated languages.
func (l Language) Supported() bool {
	for _, s := range Languages() {
		if l == s {
			return true
		}
	}
	return false
}

// Span is a half-open [Start,End) range of characters (runes, not bytes) in
// the source text tagged with an entity type. Text is the covered slice.
type Span struct {
	Start      int        `json:"start"`
	End        int        `json:"end"`
	Text       string     `json:"text"`
	Type       EntityType `json:"type"`
	Confidence Confidence `json:"confidence"`
	Method     Method     `json:"detection_method"`
}

// Len returns the span length in characters.
func (s Span) Len() int { return s.End - s.Start }

// MaskedEntity reports one span that was replaced in the output.
type MaskedEntity struct {
	Original   string     `json:"original"`
	Type       EntityType `json:"type"`
	Mask       string     `json:"mask"`
	Method     Method     `json:"detection_method"`
	Confidence Confidence `json:"confidence"`
	Start      int        `json:"start"`
	End        int        `json:"end"`
}

// Compliance is the GDPR Article 4 summary attached to each result.
type Compliance struct {
	Article4Compliant    bool     `json:"gdpr_article_4_compliant"`
	PersonalDataDetected []string `json:"personal_data_detected"`
	SpecialCategories    []string `json:"special_categories"`
	Recommendations      []string `json:"recommendations"`
}

// Result is the outcome of anonymizing one text. It is built once by the
// engine and never mutated afterwards.
type Result struct {
	Language         Language       `json:"language,omitempty"`
	OriginalText     string         `json:"original_text"`
	AnonymizedText   string         `json:"anonymized_text"`
	MaskedEntities   []MaskedEntity `json:"masked_entities"`
	TotalMasked      int            `json:"total_entities_masked"`
	DetectionMethods map[Method]int `json:"detection_methods"`
	PrivacyRisk      RiskLevel      `json:"privacy_risk"`
	ComplianceNotes  []string       `json:"compliance_notes"`
	Compliance       Compliance     `json:"gdpr_compliance"`
}
