package llm

import (
	"encoding/json"
	"strings"
)

// UserDirective is the fixed user message sent with every extraction call.
const UserDirective = "BEGIN EXTRACTION: Return the structured JSON immediately."

// BuildSystemPrompt composes the system instruction: schema definition,
// mandatory processing method, and fidelity rules, with the document text
// appended. Pure and deterministic given its inputs.
func BuildSystemPrompt(req ExtractRequest) string {
	schema := mustJSON(BuildDocumentJSONSchema())

	parts := []string{
		"You are an advanced AI Data Structuring and Extraction Engine. Your task is to transform the provided unstructured document text into a structured JSON format.",
		"",
		"## SCHEMA DEFINITION (CRITICAL):",
		"Your final output MUST be a JSON object that STRICTLY conforms to the following schema structure.",
		`The single top-level key MUST be "` + TopLevelField + `" containing an array of objects.`,
		"",
		schema,
		"",
		"## PROCESSING METHODOLOGY (MANDATORY):",
		"You MUST process the document by following these steps for every unique sentence or clause:",
		"1. IDENTIFY SOURCE: Select one complete, logical sentence or clause from the document text.",
		"2. EXTRACT CORE VALUE: From that source, extract the single, most important factual metric or phrase. This is the Value.",
		"3. DETERMINE KEY: Create the most appropriate, concise, and logical Key for the fact identified in Step 2.",
		"4. CAPTURE CONTEXT/RESIDUAL: Place any remaining associated text from the original source sentence that was NOT used in the Key or Value into the Comment. If the Key and Value capture the entire logical idea, the Comment MUST be EMPTY (\"\").",
		"",
		"## STRICT RULES FOR FIDELITY:",
		"1. 100% Capture: All content MUST be captured across the three columns (Key, Value, Comment). Nothing is summarized or omitted.",
		"2. Language Preservation: The Value MUST retain the exact original wording, sentence structure, and phrasing from the PDF. Avoid paraphrasing unless required to form a clean key:value pair. Do not introduce new information or fabricate details.",
		"3. Final Output: You MUST output ONLY the JSON object. DO NOT include any introductory text, markdown, or commentary outside of the JSON block.",
		"",
		"## DOCUMENT TEXT TO BE PROCESSED:",
		"---",
		req.DocumentText,
		"---",
	}
	return strings.Join(parts, "\n")
}

func mustJSON(v any) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}
