package service

import (
	"regexp"
	"strconv"
	"strings"

	"bakery_quote_backend/internal/chat/transport"
	"bakery_quote_backend/internal/pricing"
)

func lastUserMessage(messages []transport.ChatMessage) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "user" {
			return messages[i].Content
		}
	}
	return ""
}

func lastAssistantMessage(messages []transport.ChatMessage) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "assistant" {
			return messages[i].Content
		}
	}
	return ""
}

var dueDatePhrases = []string{
	"due date",
	"delivery date",
	"ready",
	"when would you like",
	"when should",
	"what date",
	"yyyy-mm-dd",
	"future date",
}

// assistantRequestedDueDate detects whether the assistant's last message was
// asking for a due date, so the next user message can be validated before
// the model sees it.
func assistantRequestedDueDate(text string) bool {
	if text == "" {
		return false
	}
	lowered := strings.ToLower(text)
	for _, phrase := range dueDatePhrases {
		if strings.Contains(lowered, phrase) {
			return true
		}
	}
	return false
}

// assistantRequestedEmail detects a request for the customer's address.
// Mentions of emailing the finished quote are not requests for an address.
func assistantRequestedEmail(text string) bool {
	if text == "" {
		return false
	}
	lowered := strings.ToLower(text)
	if strings.Contains(lowered, "email address") || strings.Contains(lowered, "e-mail address") {
		return true
	}
	if strings.Contains(lowered, "your email") || strings.Contains(lowered, "your e-mail") {
		return true
	}
	if strings.Contains(lowered, "emailed to") || strings.Contains(lowered, "email the") || strings.Contains(lowered, "send the quote") {
		return false
	}
	return strings.Contains(lowered, "email") && strings.Contains(lowered, "address")
}

// extractJobType pulls a known job type from freeform text. "cupcake" is a
// common singular customers use for the cupcakes job type.
func extractJobType(text string, jobTypes []string) string {
	lowered := strings.ToLower(text)
	if strings.Contains(lowered, "cupcake") {
		return "cupcakes"
	}
	for _, jt := range jobTypes {
		if strings.Contains(lowered, jt) {
			return jt
		}
	}
	return ""
}

func extractJobTypeFromMessages(messages []transport.ChatMessage, jobTypes []string) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role != "user" {
			continue
		}
		if jt := extractJobType(messages[i].Content, jobTypes); jt != "" {
			return jt
		}
	}
	return ""
}

var quantityRe = regexp.MustCompile(`(\d+)`)

func extractQuantity(text string) int {
	match := quantityRe.FindStringSubmatch(text)
	if match == nil {
		return 0
	}
	n, err := strconv.Atoi(match[1])
	if err != nil {
		return 0
	}
	return n
}

func findMaterialInText(text string, materials []pricing.Material) string {
	lowered := strings.ToLower(text)
	for _, mat := range materials {
		if strings.Contains(lowered, mat.Name) {
			return mat.Name
		}
	}
	return ""
}
