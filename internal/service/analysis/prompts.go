package analysis

import (
	"fmt"
	"strings"

	"github.com/heartmarshall/voicedoc-backend/internal/domain"
)

const categorizeSystem = `You classify nursing voice notes recorded in care facilities.
Transcripts are usually Japanese and may contain speech recognition errors.
Answer with JSON only.`

const extractSystem = `You extract structured clinical data from nursing voice notes.
Transcripts are usually Japanese and may contain speech recognition errors.
Only report values that are stated in the transcript. Never guess.
Answer with JSON only.`

var categoryHints = map[domain.CategoryType]string{
	domain.CategoryVitals:       "vital signs: blood pressure, pulse, temperature (Celsius), SpO2, respiratory rate",
	domain.CategoryMedication:   "medication given or planned: name, dose, route, time",
	domain.CategoryClinicalNote: "free-text observation, assessment or plan",
	domain.CategoryADL:          "activities of daily living (meals, bathing, toileting, mobility) and the assistance needed",
	domain.CategoryIncident:     "falls, injuries or other adverse events",
	domain.CategoryCarePlan:     "care goals, planned interventions and review dates",
	domain.CategoryPain:         "pain assessment on a 0-10 scale, location and character",
}

func categorizePrompt(transcript string) string {
	var sb strings.Builder
	sb.WriteString("Which of the following categories does the transcript contain?\n\n")
	for _, ct := range domain.AllCategoryTypes() {
		fmt.Fprintf(&sb, "- %s: %s\n", ct, categoryHints[ct])
	}
	sb.WriteString(`
For each category present, give a confidence between 0 and 1.
Output: {"categories": [{"type": "<category>", "confidence": <0..1>}]}

Transcript:
`)
	sb.WriteString(transcript)
	return sb.String()
}

func extractPrompt(transcript string, ct domain.CategoryType) string {
	return fmt.Sprintf(`Extract the %s data (%s) from the transcript.

Output: {"data": {...}, "field_confidences": [{"field": "<json field>", "confidence": <0..1>}]}

Transcript:
%s`, ct, categoryHints[ct], transcript)
}
