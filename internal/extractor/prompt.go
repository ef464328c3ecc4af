package extractor

import (
	"strconv"
)

// SystemPrompt frames every extraction call.
const SystemPrompt = `You extract contact-form fields from spoken or typed user input. You reply with a single JSON object and nothing else.`

// BuildTextPrompt returns the extraction prompt for a text utterance.
func BuildTextPrompt(input string) string {
	return `Extract the following fields from the user input and return them as a JSON object:
- name: the person's full name
- email: email address (convert spoken forms such as "john at example dot com" to "john@example.com")
- phone: phone number, digits only or with dashes
- address: street address including house number

Only include fields that are actually mentioned. Do not guess or invent values.
Use exactly these keys. Example: {"name": "John Doe", "email": "john@example.com"}
If nothing is mentioned, return {}.

User input: ` + strconv.Quote(input)
}

// BuildAudioPrompt returns the instruction sent alongside a recording to multimodal models.
func BuildAudioPrompt() string {
	return `Listen to the audio and transcribe it, then extract contact-form fields from what was said.

Return ONLY valid JSON with these keys:
{"transcript": "...", "name": "...", "email": "...", "phone": "...", "address": "..."}

Rules:
- Use null for any field that was not mentioned.
- Convert spoken email forms: "at" becomes "@" and "dot" becomes ".".
- Write phone numbers as digits.
- No markdown, no code fences, no explanation.`
}
