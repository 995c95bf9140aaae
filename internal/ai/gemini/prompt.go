package gemini

// analysisPrompt is the fixed instruction sent with every analysis. The
// response contract is a single JSON object with exactly these five keys;
// the normalizer downstream tolerates anything else the model returns.
const analysisPrompt = `Read the attached document and answer with a single JSON object and nothing else. ` +
	`The object must have exactly these five keys:
"ocr_text": the full text of the document,
"file_date": the document date in DD-MM-YYYY format, or the literal string "None" if no date is present,
"file_organization": the issuing organization name, or "None",
"file_subject": a short subject or description of the document, or "None",
"file_receiver": the name of the person or entity the document is addressed to, or "None".
Do not add any prose, explanation or markdown outside the JSON object.`

// Prompt exposes the fixed instruction for tests and for callers that log
// what was sent.
func Prompt() string {
	return analysisPrompt
}
