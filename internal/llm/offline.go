package llm

import (
	"context"
	"strings"
	"unicode"

	"github.com/ppiankov/reliefdesk/internal/model"
)

// VerifiedThreshold is the minimum confidence at which the offline analyzer
// marks a claim as verified
const VerifiedThreshold = 60

// OfflineProvider is a deterministic, network-free provider. It scores the
// lexical overlap between the FIR narrative and the statement and answers
// questions from a fixed set of topics.
type OfflineProvider struct{}

// NewOfflineProvider creates the offline provider
func NewOfflineProvider() *OfflineProvider {
	return &OfflineProvider{}
}

// Name returns the provider name
func (p *OfflineProvider) Name() string {
	return "offline"
}

// IsAvailable always reports true
func (p *OfflineProvider) IsAvailable(ctx context.Context) bool {
	return true
}

// Analyze scores how much of the FIR narrative the statement corroborates
func (p *OfflineProvider) Analyze(ctx context.Context, record *model.CrimeRecord, statement string) (*model.VerificationResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stmt := significantWords(statement)

	if record == nil {
		if len(stmt) == 0 {
			return &model.VerificationResult{
				Remarks:       "No CCTNS record or statement available for comparison.",
				MatchedFields: []string{},
			}, nil
		}
		return &model.VerificationResult{
			Score:         50,
			Remarks:       "No CCTNS record linked; statement reviewed without FIR corroboration.",
			MatchedFields: []string{"Statement"},
		}, nil
	}

	matched := []string{}
	if strings.Contains(strings.ToLower(record.Complainant), "verified") {
		matched = append(matched, "Identity")
	}
	if len(record.Sections) > 0 {
		matched = append(matched, "Statute Section")
	}

	narrative := significantWords(record.Narrative)
	overlap := 0
	for w := range narrative {
		if _, ok := stmt[w]; ok {
			overlap++
		}
	}

	ratio := 0.0
	if len(narrative) > 0 {
		ratio = float64(overlap) / float64(len(narrative))
	}
	if overlap > 0 {
		matched = append(matched, "Incident Narrative")
	}

	score := 20 + 10*len(matched) + int(ratio*100)
	if score > 100 {
		score = 100
	}

	res := &model.VerificationResult{
		Verified:      score >= VerifiedThreshold,
		Score:         score,
		MatchedFields: matched,
	}
	if res.Verified {
		res.Remarks = "High semantic alignment with CCTNS FIR narrative."
	} else {
		res.Remarks = "Flagged: Semantic mismatch between FIR sections and victim narrative."
	}
	return res, nil
}

type topic struct {
	keywords []string
	answer   string
}

var guidanceTopics = []topic{
	{
		keywords: []string{"marriage", "inter-caste", "intercaste", "spouse"},
		answer: "Under the Dr. Ambedkar Scheme for Social Integration through Inter-Caste Marriages, an eligible couple " +
			"receives an incentive of Rs 2,50,000 via Direct Benefit Transfer. Apply with your marriage registration " +
			"certificate and a joint bank account linked to Aadhaar. The District Social Welfare Officer verifies and " +
			"sanctions the claim.",
	},
	{
		keywords: []string{"poa", "atrocit", "1989", "assault", "violence"},
		answer: "The SC/ST (Prevention of Atrocities) Act, 1989 entitles victims to monetary relief under Rule 12(4) " +
			"of the 1995 Rules. Relief is released in stages once an FIR is registered. Section 15A guarantees your " +
			"right to be informed of every proceeding and to be protected from intimidation.",
	},
	{
		keywords: []string{"pcr", "untouchab", "1955", "temple", "well"},
		answer: "The Protection of Civil Rights Act, 1955 punishes the enforcement of untouchability, including denial " +
			"of access to temples, wells, shops and public places (Sections 3 to 7). Report the incident to the police " +
			"and file a relief application citing your FIR number.",
	},
	{
		keywords: []string{"status", "track", "dbt", "payment", "bank", "delay"},
		answer: "Your application moves through Applied, Verified, Sanctioned and Settled stages. Payment is made by " +
			"Direct Benefit Transfer to your Aadhaar-linked bank account through PFMS. If it stalls, raise a grievance " +
			"with your application ID and the helpline will follow up.",
	},
}

const defaultGuidance = "I can help with relief under the PCR Act, 1955 and the SC/ST (Prevention of Atrocities) Act, 1989, " +
	"the Inter-caste Marriage Incentive, and tracking your DBT payment. Tell me what happened or which scheme you " +
	"are asking about."

// Converse answers from the fixed topic list
func (p *OfflineProvider) Converse(ctx context.Context, history []model.Turn, query string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	q := strings.ToLower(query)
	for _, t := range guidanceTopics {
		for _, k := range t.keywords {
			if strings.Contains(q, k) {
				return t.answer, nil
			}
		}
	}
	return defaultGuidance, nil
}

var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "was": {}, "were": {}, "with": {}, "from": {}, "that": {},
	"this": {}, "his": {}, "her": {}, "their": {}, "they": {}, "for": {}, "into": {},
	"while": {}, "been": {}, "had": {}, "have": {}, "are": {}, "not": {}, "who": {},
}

func significantWords(text string) map[string]struct{} {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := make(map[string]struct{}, len(words))
	for _, w := range words {
		if len(w) < 3 {
			continue
		}
		if _, stop := stopWords[w]; stop {
			continue
		}
		out[w] = struct{}{}
	}
	return out
}
