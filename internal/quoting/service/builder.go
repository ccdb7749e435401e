// Package service builds quote documents: the committed side effect behind
// the confirmation gate.
package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"

	"bakery_quote_backend/internal/pdf"
	"bakery_quote_backend/internal/pricing"
	"bakery_quote_backend/platform/config"
	"bakery_quote_backend/platform/logger"
)

// HTMLConverter turns an HTML document into PDF bytes.
type HTMLConverter interface {
	ConvertHTML(ctx context.Context, indexHTML []byte, opts pdf.ConvertOpts) ([]byte, error)
}

// ArtifactArchiver stores a copy of the finished PDF in object storage.
type ArtifactArchiver interface {
	ArchivePDF(ctx context.Context, quoteID, filename string, content []byte) error
}

// Result describes the committed quote and its artifacts. PDFPath is empty
// when PDF rendering is disabled or failed; the markdown and text artifacts
// always exist once Build returns nil.
type Result struct {
	QuoteID    string
	QuoteDate  string
	ValidUntil string
	MDPath     string
	TxtPath    string
	PDFPath    string
	Warnings   []string
}

// MDFilename returns the markdown artifact's base name.
func (r *Result) MDFilename() string { return filepath.Base(r.MDPath) }

// TxtFilename returns the text artifact's base name.
func (r *Result) TxtFilename() string { return filepath.Base(r.TxtPath) }

// PDFFilename returns the PDF artifact's base name, or "" when absent.
func (r *Result) PDFFilename() string {
	if r.PDFPath == "" {
		return ""
	}
	return filepath.Base(r.PDFPath)
}

// Builder writes quote artifacts to the output directory.
type Builder struct {
	defaults  config.QuoteDefaultsConfig
	converter HTMLConverter
	archiver  ArtifactArchiver
	log       *logger.Logger
	now       func() time.Time
}

// NewBuilder creates a builder. converter and archiver may be nil; the
// corresponding artifacts are skipped with a warning.
func NewBuilder(defaults config.QuoteDefaultsConfig, converter HTMLConverter, archiver ArtifactArchiver, log *logger.Logger) *Builder {
	return &Builder{
		defaults:  defaults,
		converter: converter,
		archiver:  archiver,
		log:       log,
		now:       time.Now,
	}
}

// Build writes the markdown and text artifacts, renders the PDF when a
// converter is available, and archives the PDF best-effort. The returned
// warnings extend the pricing warnings with artifact-level ones.
func (b *Builder) Build(ctx context.Context, in pricing.Inputs, lines []pricing.Line, summary *pricing.Summary, warnings []string) (*Result, error) {
	now := b.now()
	quoteID := fmt.Sprintf("Q-%s-%s", now.Format("20060102"), strings.ReplaceAll(uuid.NewString(), "-", "")[:6])

	res := &Result{
		QuoteID:    quoteID,
		QuoteDate:  now.Format("2006-01-02"),
		ValidUntil: now.AddDate(0, 0, b.defaults.GetQuoteValidDays()).Format("2006-01-02"),
		Warnings:   append([]string(nil), warnings...),
	}

	outDir := b.defaults.GetOutputDir()
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	res.MDPath = filepath.Join(outDir, fmt.Sprintf("quote_%s.md", quoteID))
	if err := os.WriteFile(res.MDPath, []byte(renderMarkdown(res, in, lines, summary)), 0o644); err != nil {
		return nil, fmt.Errorf("write markdown artifact: %w", err)
	}

	res.TxtPath = filepath.Join(outDir, fmt.Sprintf("quote_%s.txt", quoteID))
	if err := os.WriteFile(res.TxtPath, []byte(renderText(res, in, lines, summary)), 0o644); err != nil {
		return nil, fmt.Errorf("write text artifact: %w", err)
	}

	b.renderPDF(ctx, res, in, lines, summary)

	b.log.QuoteCommitted(quoteID, in.Currency, "", summary.Total)
	return res, nil
}

func (b *Builder) renderPDF(ctx context.Context, res *Result, in pricing.Inputs, lines []pricing.Line, summary *pricing.Summary) {
	if b.converter == nil {
		res.Warnings = append(res.Warnings, "PDF rendering not configured")
		return
	}

	pdfName := fmt.Sprintf("quote_%s.pdf", res.QuoteID)
	downloadURL := strings.TrimRight(b.defaults.GetAppBaseURL(), "/") + "/download/" + pdfName

	content, err := b.converter.ConvertHTML(ctx, []byte(renderHTML(res, in, lines, summary, downloadURL)), pdf.QuoteDocumentOpts())
	if err != nil {
		b.log.ExternalCallFailed("gotenberg", err)
		res.Warnings = append(res.Warnings, "PDF rendering failed")
		return
	}

	path := filepath.Join(b.defaults.GetOutputDir(), pdfName)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		res.Warnings = append(res.Warnings, "PDF rendering failed")
		return
	}
	res.PDFPath = path

	if b.archiver != nil {
		if err := b.archiver.ArchivePDF(ctx, res.QuoteID, pdfName, content); err != nil {
			res.Warnings = append(res.Warnings, "PDF archival failed")
		}
	}
}

func renderMarkdown(res *Result, in pricing.Inputs, lines []pricing.Line, summary *pricing.Summary) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Quotation %s\n\n", res.QuoteID)
	fmt.Fprintf(&sb, "- **Company:** %s\n", in.CompanyName)
	fmt.Fprintf(&sb, "- **Customer:** %s\n", in.CustomerName)
	if in.CustomerEmail != "" {
		fmt.Fprintf(&sb, "- **Email:** %s\n", in.CustomerEmail)
	}
	fmt.Fprintf(&sb, "- **Project:** %s x %d\n", in.JobType, in.Quantity)
	fmt.Fprintf(&sb, "- **Due date:** %s\n", in.DueDate)
	fmt.Fprintf(&sb, "- **Quote date:** %s\n", res.QuoteDate)
	fmt.Fprintf(&sb, "- **Valid until:** %s\n\n", res.ValidUntil)

	sb.WriteString("| Material | Qty | Unit | Unit cost | Cost |\n")
	sb.WriteString("|---|---:|---|---:|---:|\n")
	for _, line := range lines {
		fmt.Fprintf(&sb, "| %s | %g | %s | %.2f | %.2f %s |\n",
			line.Name, line.Qty, line.Unit, line.UnitCost, line.Cost, line.Currency)
	}
	sb.WriteString("\n")

	writeSummaryLines(&sb, in, summary, "- **%s:** %s\n")

	if in.Notes != "" {
		fmt.Fprintf(&sb, "\n> %s\n", in.Notes)
	}
	if len(res.Warnings) > 0 {
		sb.WriteString("\n**Warnings**\n\n")
		for _, w := range res.Warnings {
			fmt.Fprintf(&sb, "- %s\n", w)
		}
	}
	return sb.String()
}

func renderText(res *Result, in pricing.Inputs, lines []pricing.Line, summary *pricing.Summary) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "QUOTATION %s\n\n", res.QuoteID)
	fmt.Fprintf(&sb, "Company:     %s\n", in.CompanyName)
	fmt.Fprintf(&sb, "Customer:    %s\n", in.CustomerName)
	if in.CustomerEmail != "" {
		fmt.Fprintf(&sb, "Email:       %s\n", in.CustomerEmail)
	}
	fmt.Fprintf(&sb, "Project:     %s x %d\n", in.JobType, in.Quantity)
	fmt.Fprintf(&sb, "Due date:    %s\n", in.DueDate)
	fmt.Fprintf(&sb, "Quote date:  %s\n", res.QuoteDate)
	fmt.Fprintf(&sb, "Valid until: %s\n\n", res.ValidUntil)

	for _, line := range lines {
		fmt.Fprintf(&sb, "  %-16s %10g %-5s @ %8.2f = %10.2f %s\n",
			line.Name, line.Qty, line.Unit, line.UnitCost, line.Cost, line.Currency)
	}
	sb.WriteString("\n")

	writeSummaryLines(&sb, in, summary, "%s: %s\n")

	if in.Notes != "" {
		fmt.Fprintf(&sb, "\nNotes: %s\n", in.Notes)
	}
	return sb.String()
}

func writeSummaryLines(sb *strings.Builder, in pricing.Inputs, summary *pricing.Summary, format string) {
	entries := []struct {
		label string
		value string
	}{
		{"Materials subtotal", money(summary.MaterialsSubtotal, in.Currency)},
		{fmt.Sprintf("Labor (%g h)", summary.LaborHours), money(summary.LaborCost, in.Currency)},
		{"Subtotal", money(summary.Subtotal, in.Currency)},
		{fmt.Sprintf("Markup (%.0f%%)", in.MarkupPct*100), money(summary.MarkupValue, in.Currency)},
		{"Price before VAT", money(summary.PriceBeforeVAT, in.Currency)},
		{fmt.Sprintf("VAT (%.0f%%)", in.VATPct*100), money(summary.VATValue, in.Currency)},
		{"Total", money(summary.Total, in.Currency)},
		{"Unit price", money(summary.UnitPrice, in.Currency)},
	}
	for _, e := range entries {
		fmt.Fprintf(sb, format, e.label, e.value)
	}
}

func money(v float64, currency string) string {
	return fmt.Sprintf("%.2f %s", v, currency)
}

func renderHTML(res *Result, in pricing.Inputs, lines []pricing.Line, summary *pricing.Summary, downloadURL string) string {
	var rows strings.Builder
	for _, line := range lines {
		fmt.Fprintf(&rows, "<tr><td>%s</td><td class=\"num\">%g %s</td><td class=\"num\">%.2f</td><td class=\"num\">%.2f %s</td></tr>",
			html.EscapeString(line.Name), line.Qty, line.Unit, line.UnitCost, line.Cost, line.Currency)
	}

	var qrImg string
	if png, err := qrcode.Encode(downloadURL, qrcode.Medium, 160); err == nil {
		qrImg = fmt.Sprintf(`<img class="qr" src="data:image/png;base64,%s" alt="download link">`,
			base64.StdEncoding.EncodeToString(png))
	}

	var sb strings.Builder
	sb.WriteString(`<!DOCTYPE html><html><head><meta charset="utf-8"><style>
body { font-family: Helvetica, Arial, sans-serif; color: #222; }
h1 { color: #4f3df5; }
table { width: 100%; border-collapse: collapse; margin: 16px 0; }
th, td { padding: 6px 8px; border-bottom: 1px solid #ddd; text-align: left; }
td.num, th.num { text-align: right; }
.summary td { border: none; padding: 3px 8px; }
.total { font-weight: bold; font-size: 1.1em; }
.qr { float: right; }
.meta { color: #555; }
</style></head><body>`)
	fmt.Fprintf(&sb, "%s<h1>Quotation %s</h1>", qrImg, html.EscapeString(res.QuoteID))
	fmt.Fprintf(&sb, `<p class="meta">%s — for %s (%s)<br>Project: %s x %d, due %s<br>Quote date %s, valid until %s</p>`,
		html.EscapeString(in.CompanyName), html.EscapeString(in.CustomerName), html.EscapeString(in.CustomerEmail),
		html.EscapeString(in.JobType), in.Quantity, html.EscapeString(in.DueDate),
		res.QuoteDate, res.ValidUntil)
	fmt.Fprintf(&sb, `<table><tr><th>Material</th><th class="num">Qty</th><th class="num">Unit cost</th><th class="num">Cost</th></tr>%s</table>`, rows.String())

	sb.WriteString(`<table class="summary">`)
	var summarySB strings.Builder
	writeSummaryLines(&summarySB, in, summary, "<tr><td>%s</td><td class=\"num\">%s</td></tr>")
	sb.WriteString(summarySB.String())
	sb.WriteString(`</table>`)

	if in.Notes != "" {
		fmt.Fprintf(&sb, "<p>%s</p>", html.EscapeString(in.Notes))
	}
	sb.WriteString("</body></html>")
	return sb.String()
}
