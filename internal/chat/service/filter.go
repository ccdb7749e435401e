package service

import "strings"

// filterReply rewrites model output that would leak internals to the
// customer: model names, UI command tokens, and knowledge-cutoff
// deflections. Each rule matches against the original text, so a later rule
// overrides an earlier rewrite.
func filterReply(content string) string {
	lowered := strings.ToLower(content)

	if strings.Contains(lowered, "model") &&
		(strings.Contains(lowered, "mistral") || strings.Contains(lowered, "codestral")) {
		content = "I’m focused on helping with your quote. What would you like to order?"
	}
	if strings.Contains(lowered, "command:download_file") ||
		strings.Contains(lowered, "[markdown]") ||
		strings.Contains(lowered, "[text]") ||
		strings.Contains(lowered, "[pdf]") {
		content = "Your quote is ready. Use the download buttons below."
	}
	if strings.Contains(lowered, "only assist") && strings.Contains(lowered, "2023") {
		content = "Thanks! I’ve noted the date. What quantity do you need, and which item should I quote?"
	}
	if strings.Contains(lowered, "last update") || strings.Contains(lowered, "knowledge cutoff") {
		content = "Got it. What date should I set for the order, and what quantity do you need?"
	}
	return content
}
