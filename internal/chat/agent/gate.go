package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"bakery_quote_backend/internal/chat/transport"
	"bakery_quote_backend/internal/pricing"
	quoting "bakery_quote_backend/internal/quoting/service"
	"bakery_quote_backend/platform/logger"
)

// DueDateResolver resolves friendly date phrases into ISO dates.
type DueDateResolver interface {
	Resolve(ctx context.Context, text string) string
}

// QuoteBuilder writes the quote artifacts.
type QuoteBuilder interface {
	Build(ctx context.Context, in pricing.Inputs, lines []pricing.Line, summary *pricing.Summary, warnings []string) (*quoting.Result, error)
}

// EmailSender delivers the quote email.
type EmailSender interface {
	Enabled() bool
	SendQuote(ctx context.Context, to, subject, body string, attachmentPaths []string) error
}

// SheetAppender records the committed quote in the audit spreadsheet.
type SheetAppender interface {
	Enabled() bool
	Append(ctx context.Context, headers []string, row []interface{}) error
}

// Gate owns the generate_quote tool: without confirm=true nothing leaves the
// process — no files, no email, no sheet row. The unconfirmed path returns a
// preview for the customer to approve.
type Gate struct {
	estimator  *pricing.Estimator
	resolver   DueDateResolver
	builder    QuoteBuilder
	email      EmailSender
	sheets     SheetAppender
	senderName string
	log        *logger.Logger
}

// NewGate creates the confirmation gate.
func NewGate(estimator *pricing.Estimator, resolver DueDateResolver, builder QuoteBuilder, email EmailSender, sheets SheetAppender, senderName string, log *logger.Logger) *Gate {
	return &Gate{
		estimator:  estimator,
		resolver:   resolver,
		builder:    builder,
		email:      email,
		sheets:     sheets,
		senderName: senderName,
		log:        log,
	}
}

// Handle prices the request and either previews or commits it. The returned
// content is the tool result for the model; preview and quote are for the
// turn router.
func (g *Gate) Handle(ctx context.Context, args map[string]interface{}) (interface{}, *Preview, *transport.QuotePayload) {
	defaults := g.estimator.Defaults()

	resolvedDue := g.resolver.Resolve(ctx, argString(args, "due_date", ""))
	if resolvedDue == "" {
		resolvedDue = "TBD"
	}

	in := pricing.Inputs{
		JobType:       argString(args, "job_type", ""),
		Quantity:      argInt(args, "quantity", 0),
		DueDate:       resolvedDue,
		CompanyName:   argString(args, "company_name", "Bakery Co."),
		CustomerName:  argString(args, "customer_name", "Customer"),
		CustomerEmail: argString(args, "customer_email", ""),
		Currency:      argString(args, "currency", defaults.Currency),
		LaborRate:     argFloat(args, "labor_rate", defaults.LaborRate),
		MarkupPct:     pricing.ParsePct(argFloat(args, "markup_pct", defaults.MarkupPct*100)),
		VATPct:        pricing.ParsePct(argFloat(args, "vat_pct", defaults.VATPct*100)),
		Notes:         argString(args, "notes", "Please confirm delivery details."),
	}
	sendEmail := argBool(args, "send_email")
	confirmed := argBool(args, "confirm")

	lines, summary, warnings, err := g.estimator.Estimate(ctx, in)
	if err != nil {
		return map[string]string{"error": err.Error()}, nil, nil
	}

	if !confirmed {
		preview := &Preview{
			Summary:   summary,
			Currency:  in.Currency,
			MarkupPct: in.MarkupPct,
			VATPct:    in.VATPct,
			Warnings:  warnings,
		}
		content := map[string]interface{}{
			"summary":            summary,
			"currency":           in.Currency,
			"needs_confirmation": true,
		}
		return content, preview, nil
	}

	result, err := g.builder.Build(ctx, in, lines, summary, warnings)
	if err != nil {
		return map[string]string{"error": err.Error()}, nil, nil
	}

	emailState := g.sendQuoteEmail(ctx, in, result, summary, sendEmail)
	g.appendSheetRow(ctx, in, result, summary, lines, emailState)
	g.log.QuoteCommitted(result.QuoteID, in.Currency, emailState, summary.Total)

	content := map[string]interface{}{
		"quote_id":     result.QuoteID,
		"total":        summary.Total,
		"currency":     in.Currency,
		"out_path":     result.MDPath,
		"out_txt_path": result.TxtPath,
		"out_pdf_path": result.PDFPath,
		"email_status": emailState,
	}
	quote := &transport.QuotePayload{
		QuoteID:     result.QuoteID,
		Total:       summary.Total,
		Currency:    in.Currency,
		MDFilename:  result.MDFilename(),
		TxtFilename: result.TxtFilename(),
		PDFFilename: result.PDFFilename(),
	}
	return content, nil, quote
}

func (g *Gate) sendQuoteEmail(ctx context.Context, in pricing.Inputs, result *quoting.Result, summary *pricing.Summary, sendEmail bool) string {
	if !sendEmail {
		return "skipped"
	}
	if g.email == nil || !g.email.Enabled() {
		return "not_configured"
	}

	subject := fmt.Sprintf("Quotation %s from %s", result.QuoteID, g.senderName)
	body := fmt.Sprintf(
		"Hello %s,\n\nThank you for your order. Please find your quotation attached.\n\n"+
			"Quote ID: %s\nProject: %s x %d\nDue date: %s\nTotal: %g %s\n\nRegards,\n%s\n",
		in.CustomerName, result.QuoteID, in.JobType, in.Quantity, in.DueDate,
		summary.Total, in.Currency, g.senderName,
	)

	attachments := []string{result.MDPath, result.TxtPath}
	if result.PDFPath != "" {
		attachments = append(attachments, result.PDFPath)
	}

	if err := g.email.SendQuote(ctx, in.CustomerEmail, subject, body, attachments); err != nil {
		g.log.ExternalCallFailed("smtp", err)
		return "failed: " + err.Error()
	}
	return "sent"
}

// sheetHeaders is the audit sheet's column order. Changing it breaks every
// sheet already written.
var sheetHeaders = []string{
	"timestamp",
	"quote_id",
	"quote_date",
	"valid_until",
	"company_name",
	"customer_name",
	"customer_email",
	"job_type",
	"quantity",
	"due_date",
	"currency",
	"labor_rate",
	"labor_hours",
	"materials_subtotal",
	"labor_cost",
	"subtotal",
	"markup_pct",
	"markup_value",
	"price_before_vat",
	"vat_pct",
	"vat_value",
	"total",
	"unit_price",
	"notes",
	"email_status",
	"warnings",
	"quote_md_path",
	"quote_txt_path",
	"line_items_json",
}

func (g *Gate) appendSheetRow(ctx context.Context, in pricing.Inputs, result *quoting.Result, summary *pricing.Summary, lines []pricing.Line, emailState string) {
	if g.sheets == nil || !g.sheets.Enabled() {
		return
	}

	lineJSON, err := json.Marshal(lines)
	if err != nil {
		lineJSON = []byte("[]")
	}
	row := []interface{}{
		result.QuoteDate,
		result.QuoteID,
		result.QuoteDate,
		result.ValidUntil,
		in.CompanyName,
		in.CustomerName,
		in.CustomerEmail,
		in.JobType,
		in.Quantity,
		in.DueDate,
		in.Currency,
		in.LaborRate,
		summary.LaborHours,
		summary.MaterialsSubtotal,
		summary.LaborCost,
		summary.Subtotal,
		fmt.Sprintf("%.0f%%", in.MarkupPct*100),
		summary.MarkupValue,
		summary.PriceBeforeVAT,
		fmt.Sprintf("%.0f%%", in.VATPct*100),
		summary.VATValue,
		summary.Total,
		summary.UnitPrice,
		in.Notes,
		emailState,
		strings.Join(result.Warnings, ", "),
		result.MDPath,
		result.TxtPath,
		string(lineJSON),
	}

	// Best-effort: a lost audit row never fails a committed quote.
	if err := g.sheets.Append(ctx, sheetHeaders, row); err != nil {
		g.log.ExternalCallFailed("sheets", err)
	}
}
