// Package service routes chat turns: deterministic interceptors first, the
// model with tools second, a content filter last.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bakery_quote_backend/internal/chat/agent"
	"bakery_quote_backend/internal/chat/transport"
	"bakery_quote_backend/internal/dates"
	"bakery_quote_backend/internal/pricing"
	"bakery_quote_backend/platform/ai/mistral"
	"bakery_quote_backend/platform/logger"
)

// ChatModel is the chat-completions capability the turn router consumes.
type ChatModel interface {
	Complete(ctx context.Context, messages []mistral.Message, tools []mistral.ToolDef, toolChoice string) (*mistral.Message, error)
}

const fallbackReply = "Done. Let me know if you need anything else."

// Service orchestrates one conversational turn. It never fails a turn:
// every error becomes a conversational reply.
type Service struct {
	model         ChatModel
	estimator     *pricing.Estimator
	catalog       pricing.Catalog
	resolver      *dates.Resolver
	holiday       dates.HolidayValidator
	emailVerifier EmailVerifier
	dispatcher    *agent.Dispatcher
	fxRates       map[string]float64
	log           *logger.Logger
}

// New creates the turn router. emailVerifier may be nil; the local format
// check then decides alone.
func New(model ChatModel, estimator *pricing.Estimator, catalog pricing.Catalog, resolver *dates.Resolver, holiday dates.HolidayValidator, emailVerifier EmailVerifier, dispatcher *agent.Dispatcher, fxRates map[string]float64, log *logger.Logger) *Service {
	if emailVerifier == nil {
		emailVerifier = NoopEmailVerifier{}
	}
	return &Service{
		model:         model,
		estimator:     estimator,
		catalog:       catalog,
		resolver:      resolver,
		holiday:       holiday,
		emailVerifier: emailVerifier,
		dispatcher:    dispatcher,
		fxRates:       fxRates,
		log:           log,
	}
}

// HandleTurn runs one turn of the conversation.
func (s *Service) HandleTurn(ctx context.Context, messages []transport.ChatMessage) *transport.ChatResponse {
	userText := lastUserMessage(messages)
	assistantText := lastAssistantMessage(messages)

	if userText != "" && assistantText != "" && assistantRequestedDueDate(assistantText) {
		return s.interceptDueDate(ctx, userText)
	}
	if userText != "" && assistantText != "" && assistantRequestedEmail(assistantText) {
		return s.interceptEmail(ctx, userText)
	}
	if userText != "" {
		if resp := s.interceptPriceQuestion(ctx, userText, messages); resp != nil {
			return resp
		}
	}

	return s.runAgent(ctx, messages)
}

// interceptDueDate validates a due-date answer before the model sees it.
// Unparseable answers, past dates, and dates the calendar service cannot
// vouch for all bounce back to the customer.
func (s *Service) interceptDueDate(ctx context.Context, userText string) *transport.ChatResponse {
	today := s.resolver.ReferenceToday(ctx)
	normalized, ok := s.resolver.Normalize(userText, today)
	if !ok {
		return &transport.ChatResponse{Reply: "Please provide the due date in YYYY-MM-DD format."}
	}

	date, err := time.Parse("2006-01-02", normalized)
	if err != nil {
		return &transport.ChatResponse{Reply: "Please provide the due date in YYYY-MM-DD format."}
	}
	if date.Before(today) {
		return &transport.ChatResponse{Reply: "That date is in the past. Please provide a future date in YYYY-MM-DD."}
	}
	if s.holiday != nil && s.holiday.Validate(ctx, date) != dates.VerdictValidated {
		return &transport.ChatResponse{Reply: "I couldn't validate that date with the date service. Please try again in YYYY-MM-DD format."}
	}
	return &transport.ChatResponse{Reply: fmt.Sprintf("Got it — %s. Is that correct?", normalized)}
}

func (s *Service) interceptEmail(ctx context.Context, userText string) *transport.ChatResponse {
	email := strings.TrimSpace(userText)
	verdict := s.emailVerifier.Verify(ctx, email)
	if verdict == EmailValid || (verdict == EmailAbstain && emailFormatOK(email)) {
		return &transport.ChatResponse{Reply: "Thanks! What currency should I use for the quote?"}
	}
	return &transport.ChatResponse{Reply: "Please provide a valid email address (name@domain.tld)."}
}

// interceptPriceQuestion answers price questions from the store directly.
// Returns nil when the question isn't about prices or names nothing known,
// handing the turn to the model.
func (s *Service) interceptPriceQuestion(ctx context.Context, userText string, messages []transport.ChatMessage) *transport.ChatResponse {
	lowered := strings.ToLower(userText)
	if !strings.Contains(lowered, "price") && !strings.Contains(lowered, "cost") && !strings.Contains(lowered, "how much") {
		return nil
	}

	jobTypes := s.estimator.JobTypes()
	jobType := extractJobType(userText, jobTypes)
	if jobType == "" {
		jobType = extractJobTypeFromMessages(messages, jobTypes)
	}
	if jobType != "" {
		quantity := extractQuantity(userText)
		if quantity == 0 {
			quantity = 1
		}
		defaults := s.estimator.Defaults()
		in := pricing.Inputs{
			JobType:   jobType,
			Quantity:  quantity,
			Currency:  defaults.Currency,
			LaborRate: defaults.LaborRate,
			MarkupPct: defaults.MarkupPct,
			VATPct:    defaults.VATPct,
		}
		_, summary, _, err := s.estimator.Estimate(ctx, in)
		if err != nil {
			return &transport.ChatResponse{Reply: fmt.Sprintf("Pricing estimate failed: %v", err)}
		}
		return &transport.ChatResponse{Reply: fmt.Sprintf(
			"Estimated unit price for %d %s: %g %s.", quantity, jobType, summary.UnitPrice, in.Currency)}
	}

	materials, err := s.catalog.List(ctx)
	if err != nil {
		return nil
	}
	name := findMaterialInText(userText, materials)
	if name == "" {
		return nil
	}
	mat, err := s.catalog.Get(ctx, name)
	if err != nil || mat == nil {
		return nil
	}
	return &transport.ChatResponse{Reply: fmt.Sprintf(
		"%s costs %g %s per %s.", mat.Name, mat.UnitCost, mat.Currency, mat.Unit)}
}

func (s *Service) runAgent(ctx context.Context, messages []transport.ChatMessage) *transport.ChatResponse {
	system := mistral.Message{Role: "system", Content: agent.SystemPrompt(s.estimator.JobTypes(), s.fxRates)}

	history := make([]mistral.Message, 0, len(messages)+1)
	history = append(history, system)
	for _, m := range messages {
		history = append(history, mistral.Message{Role: m.Role, Content: m.Content})
	}

	msg, err := s.model.Complete(ctx, history, agent.ToolDefs(), "auto")
	if err != nil {
		s.log.ExternalCallFailed("mistral", err)
		return &transport.ChatResponse{Reply: fmt.Sprintf("Error: %v", err)}
	}

	if len(msg.ToolCalls) == 0 {
		return &transport.ChatResponse{Reply: filterReply(msg.Content)}
	}

	outcome := s.dispatcher.Dispatch(ctx, msg.ToolCalls)

	// An unconfirmed preview ends the turn deterministically; the model
	// only speaks again once something actually happened.
	if outcome.Preview != nil && outcome.Quote == nil {
		return &transport.ChatResponse{Reply: renderPreview(outcome.Preview)}
	}

	followHistory := append(history, *msg)
	followHistory = append(followHistory, outcome.ToolMessages...)
	reply := fallbackReply
	if follow, err := s.model.Complete(ctx, followHistory, nil, ""); err == nil {
		reply = filterReply(follow.Content)
	}

	return &transport.ChatResponse{Reply: reply, Quote: outcome.Quote}
}

func renderPreview(p *agent.Preview) string {
	lines := []string{
		"Here’s your quote summary before I generate the files:",
		fmt.Sprintf("- Materials subtotal: %g %s", p.Summary.MaterialsSubtotal, p.Currency),
		fmt.Sprintf("- Labor cost: %g %s", p.Summary.LaborCost, p.Currency),
		fmt.Sprintf("- Subtotal: %g %s", p.Summary.Subtotal, p.Currency),
		fmt.Sprintf("- Markup (%.0f%%): %g %s", p.MarkupPct*100, p.Summary.MarkupValue, p.Currency),
		fmt.Sprintf("- Price before VAT: %g %s", p.Summary.PriceBeforeVAT, p.Currency),
		fmt.Sprintf("- VAT (%.0f%%): %g %s", p.VATPct*100, p.Summary.VATValue, p.Currency),
		fmt.Sprintf("- Total: %g %s", p.Summary.Total, p.Currency),
		fmt.Sprintf("- Unit price: %g %s", p.Summary.UnitPrice, p.Currency),
		"Reply 'confirm' to generate the quote.",
	}
	if len(p.Warnings) > 0 {
		lines = append(lines, "Warnings:")
		for _, w := range p.Warnings {
			lines = append(lines, "- "+w)
		}
	}
	return strings.Join(lines, "\n")
}
