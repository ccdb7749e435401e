package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"bakery_quote_backend/internal/bom"
	"bakery_quote_backend/internal/pricing"
	quoting "bakery_quote_backend/internal/quoting/service"
	"bakery_quote_backend/platform/logger"
)

type fakeCatalog struct {
	materials map[string]pricing.Material
	listErr   error
}

func (f *fakeCatalog) Get(_ context.Context, name string) (*pricing.Material, error) {
	mat, ok := f.materials[name]
	if !ok {
		return nil, nil
	}
	return &mat, nil
}

func (f *fakeCatalog) List(_ context.Context) ([]pricing.Material, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]pricing.Material, 0, len(f.materials))
	for _, mat := range f.materials {
		out = append(out, mat)
	}
	return out, nil
}

func testCatalog() *fakeCatalog {
	return &fakeCatalog{materials: map[string]pricing.Material{
		"flour":         {Name: "flour", Unit: "kg", UnitCost: 1.20, Currency: "GBP"},
		"sugar":         {Name: "sugar", Unit: "kg", UnitCost: 0.90, Currency: "GBP"},
		"butter":        {Name: "butter", Unit: "kg", UnitCost: 6.50, Currency: "GBP"},
		"eggs":          {Name: "eggs", Unit: "each", UnitCost: 0.25, Currency: "GBP"},
		"milk":          {Name: "milk", Unit: "L", UnitCost: 1.10, Currency: "GBP"},
		"vanilla":       {Name: "vanilla", Unit: "ml", UnitCost: 0.15, Currency: "GBP"},
		"baking_powder": {Name: "baking_powder", Unit: "kg", UnitCost: 4.00, Currency: "GBP"},
	}}
}

func testEstimator(catalog pricing.Catalog) *pricing.Estimator {
	fx := map[string]float64{"GBP": 1.0, "EUR": 1.17}
	defaults := pricing.Defaults{Currency: "GBP", LaborRate: 20.0, MarkupPct: 0.15, VATPct: 0.20}
	return pricing.NewEstimator(bom.NewRegistry(), catalog, fx, defaults)
}

type fakeResolver struct{}

func (fakeResolver) Resolve(_ context.Context, text string) string { return text }

type fakeBuilder struct {
	calls  int
	err    error
	result quoting.Result
}

func (f *fakeBuilder) Build(_ context.Context, _ pricing.Inputs, _ []pricing.Line, _ *pricing.Summary, _ []string) (*quoting.Result, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := f.result
	return &out, nil
}

func builderWithResult() *fakeBuilder {
	return &fakeBuilder{result: quoting.Result{
		QuoteID:    "Q-20240101-abc123",
		QuoteDate:  "2024-01-01",
		ValidUntil: "2024-01-15",
		MDPath:     "/tmp/quotes/quote_Q-20240101-abc123.md",
		TxtPath:    "/tmp/quotes/quote_Q-20240101-abc123.txt",
		PDFPath:    "/tmp/quotes/quote_Q-20240101-abc123.pdf",
	}}
}

type fakeEmail struct {
	enabled     bool
	err         error
	calls       int
	to          string
	subject     string
	body        string
	attachments []string
}

func (f *fakeEmail) Enabled() bool { return f.enabled }

func (f *fakeEmail) SendQuote(_ context.Context, to, subject, body string, attachmentPaths []string) error {
	f.calls++
	f.to = to
	f.subject = subject
	f.body = body
	f.attachments = attachmentPaths
	return f.err
}

type fakeSheets struct {
	enabled bool
	err     error
	calls   int
	headers []string
	row     []interface{}
}

func (f *fakeSheets) Enabled() bool { return f.enabled }

func (f *fakeSheets) Append(_ context.Context, headers []string, row []interface{}) error {
	f.calls++
	f.headers = headers
	f.row = row
	return f.err
}

func newTestGate(builder *fakeBuilder, email *fakeEmail, sheets *fakeSheets) *Gate {
	est := testEstimator(testCatalog())
	return NewGate(est, fakeResolver{}, builder, email, sheets, "Bakery Quote Desk", logger.New("test"))
}

func quoteArgs(confirm, sendEmail bool) map[string]interface{} {
	return map[string]interface{}{
		"job_type":       "cupcakes",
		"quantity":       float64(100),
		"due_date":       "2024-02-01",
		"company_name":   "Acme Events",
		"customer_name":  "Dana",
		"customer_email": "dana@example.com",
		"currency":       "GBP",
		"vat_pct":        float64(20),
		"send_email":     sendEmail,
		"confirm":        confirm,
	}
}

func TestGateUnconfirmedHasNoSideEffects(t *testing.T) {
	builder := builderWithResult()
	email := &fakeEmail{enabled: true}
	sheets := &fakeSheets{enabled: true}
	gate := newTestGate(builder, email, sheets)

	content, preview, quote := gate.Handle(context.Background(), quoteArgs(false, true))

	if builder.calls != 0 || email.calls != 0 || sheets.calls != 0 {
		t.Fatalf("unconfirmed quote caused side effects: builder=%d email=%d sheets=%d",
			builder.calls, email.calls, sheets.calls)
	}
	if preview == nil {
		t.Fatal("expected a preview")
	}
	if quote != nil {
		t.Fatalf("expected no quote payload, got %+v", quote)
	}
	body, ok := content.(map[string]interface{})
	if !ok {
		t.Fatalf("unexpected content type %T", content)
	}
	if body["needs_confirmation"] != true {
		t.Fatalf("expected needs_confirmation=true, got %v", body["needs_confirmation"])
	}
	if preview.Summary == nil || preview.Summary.Total <= 0 {
		t.Fatalf("preview summary not priced: %+v", preview.Summary)
	}
}

func TestGateConfirmedCommitsAndEmails(t *testing.T) {
	builder := builderWithResult()
	email := &fakeEmail{enabled: true}
	sheets := &fakeSheets{enabled: true}
	gate := newTestGate(builder, email, sheets)

	content, preview, quote := gate.Handle(context.Background(), quoteArgs(true, true))

	if builder.calls != 1 {
		t.Fatalf("builder calls = %d, want 1", builder.calls)
	}
	if preview != nil {
		t.Fatal("confirmed quote should not produce a preview")
	}
	if quote == nil {
		t.Fatal("expected a quote payload")
	}
	if quote.QuoteID != "Q-20240101-abc123" {
		t.Fatalf("quote id = %q", quote.QuoteID)
	}
	if quote.MDFilename != "quote_Q-20240101-abc123.md" || quote.PDFFilename != "quote_Q-20240101-abc123.pdf" {
		t.Fatalf("unexpected filenames: %+v", quote)
	}

	body := content.(map[string]interface{})
	if body["email_status"] != "sent" {
		t.Fatalf("email_status = %v, want sent", body["email_status"])
	}
	if email.to != "dana@example.com" {
		t.Fatalf("email recipient = %q", email.to)
	}
	if !strings.Contains(email.subject, "Q-20240101-abc123") {
		t.Fatalf("subject missing quote id: %q", email.subject)
	}
	if !strings.Contains(email.body, "Hello Dana,") {
		t.Fatalf("body missing greeting: %q", email.body)
	}
	if len(email.attachments) != 3 {
		t.Fatalf("attachments = %v, want md, txt and pdf", email.attachments)
	}

	if sheets.calls != 1 {
		t.Fatalf("sheet appends = %d, want 1", sheets.calls)
	}
	if len(sheets.headers) != len(sheets.row) {
		t.Fatalf("headers/row mismatch: %d vs %d", len(sheets.headers), len(sheets.row))
	}
	if sheets.headers[0] != "timestamp" || sheets.headers[len(sheets.headers)-1] != "line_items_json" {
		t.Fatalf("unexpected header order: %v", sheets.headers)
	}
}

func TestGateEmailStates(t *testing.T) {
	tests := []struct {
		name      string
		sendEmail bool
		email     *fakeEmail
		want      string
	}{
		{name: "not requested", sendEmail: false, email: &fakeEmail{enabled: true}, want: "skipped"},
		{name: "smtp disabled", sendEmail: true, email: &fakeEmail{enabled: false}, want: "not_configured"},
		{name: "delivery fails", sendEmail: true, email: &fakeEmail{enabled: true, err: errors.New("relay refused")}, want: "failed: relay refused"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			gate := newTestGate(builderWithResult(), tc.email, &fakeSheets{})
			content, _, quote := gate.Handle(context.Background(), quoteArgs(true, tc.sendEmail))
			if quote == nil {
				t.Fatal("expected a committed quote")
			}
			body := content.(map[string]interface{})
			if body["email_status"] != tc.want {
				t.Fatalf("email_status = %v, want %q", body["email_status"], tc.want)
			}
		})
	}
}

func TestGateSheetFailureDoesNotBlockCommit(t *testing.T) {
	sheets := &fakeSheets{enabled: true, err: errors.New("webhook down")}
	gate := newTestGate(builderWithResult(), &fakeEmail{}, sheets)

	content, _, quote := gate.Handle(context.Background(), quoteArgs(true, false))
	if quote == nil {
		t.Fatal("sheet failure must not block the quote")
	}
	if _, hasErr := content.(map[string]interface{})["error"]; hasErr {
		t.Fatalf("unexpected error content: %v", content)
	}
	if sheets.calls != 1 {
		t.Fatalf("sheet appends = %d, want 1", sheets.calls)
	}
}

func TestGateBuilderFailureReturnsError(t *testing.T) {
	builder := &fakeBuilder{err: errors.New("disk full")}
	email := &fakeEmail{enabled: true}
	gate := newTestGate(builder, email, &fakeSheets{enabled: true})

	content, preview, quote := gate.Handle(context.Background(), quoteArgs(true, true))
	if preview != nil || quote != nil {
		t.Fatal("failed build must not preview or commit")
	}
	if email.calls != 0 {
		t.Fatal("failed build must not send email")
	}
	got := content.(map[string]string)
	if got["error"] != "disk full" {
		t.Fatalf("error content = %v", got)
	}
}

func TestGateUnknownJobTypeReturnsError(t *testing.T) {
	gate := newTestGate(builderWithResult(), &fakeEmail{}, &fakeSheets{})
	args := quoteArgs(true, false)
	args["job_type"] = "wedding_cake_tower"

	content, preview, quote := gate.Handle(context.Background(), args)
	if preview != nil || quote != nil {
		t.Fatal("invalid job type must not preview or commit")
	}
	if _, ok := content.(map[string]string)["error"]; !ok {
		t.Fatalf("expected error content, got %v", content)
	}
}
