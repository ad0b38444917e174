package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ppiankov/reliefdesk/internal/model"
)

// AnalysisSystemPrompt frames the semantic-match request
const AnalysisSystemPrompt = "You are a Legal Compliance Officer for the Ministry of Social Justice. " +
	"You assess DBT relief eligibility and answer only with the requested JSON object."

// GuidanceSystemPrompt frames the legal-assistant conversation
const GuidanceSystemPrompt = `You are 'Justice Aide', a highly specialized legal assistant for the PCR Act 1955 and PoA Act 1989.
Your goal is to help marginalized communities understand their rights to financial relief and the DBT process.
Be compassionate, clear, and cite specific sections of the law when relevant.
Keep responses under 150 words.`

// BuildAnalysisPrompt renders the FIR record and statement for comparison
func BuildAnalysisPrompt(record *model.CrimeRecord, statement string) string {
	recordJSON := "null"
	if record != nil {
		if b, err := json.Marshal(record); err == nil {
			recordJSON = string(b)
		}
	}

	var sb strings.Builder
	sb.WriteString("Analyze the consistency between the CCTNS FIR record and the Victim's statement for DBT eligibility.\n\n")
	fmt.Fprintf(&sb, "CCTNS RECORD: %s\n", recordJSON)
	fmt.Fprintf(&sb, "VICTIM STATEMENT: %s\n\n", strings.TrimSpace(statement))
	sb.WriteString("Evaluate based on:\n")
	sb.WriteString("1. Direct identity match.\n")
	sb.WriteString("2. Consistency of incident details.\n")
	sb.WriteString("3. Proper section invocation (SC/ST Act 1989 or PCR Act 1955).\n\n")
	sb.WriteString(`Respond with a JSON object with keys "isVerified" (boolean), "score" (number, confidence 0-100), "remarks" (string) and "matchedFields" (array of strings).`)

	return sb.String()
}

// flattenTranscript renders a conversation for single-prompt backends
func flattenTranscript(msgs []model.Turn) string {
	var sb strings.Builder
	for i, m := range msgs {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		speaker := "User"
		if m.Role == model.RoleAI {
			speaker = "Assistant"
		}
		fmt.Fprintf(&sb, "%s: %s", speaker, m.Text)
	}
	return sb.String()
}
