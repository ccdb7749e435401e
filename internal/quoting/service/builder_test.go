package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"bakery_quote_backend/internal/pdf"
	"bakery_quote_backend/internal/pricing"
	"bakery_quote_backend/platform/logger"
)

type fakeDefaults struct {
	outDir string
}

func (f fakeDefaults) GetDefaultCurrency() string        { return "GBP" }
func (f fakeDefaults) GetDefaultLaborRate() float64      { return 22.5 }
func (f fakeDefaults) GetDefaultMarkupPct() float64      { return 0.15 }
func (f fakeDefaults) GetDefaultVATPct() float64         { return 0.20 }
func (f fakeDefaults) GetQuoteValidDays() int            { return 14 }
func (f fakeDefaults) GetOutputDir() string              { return f.outDir }
func (f fakeDefaults) GetAppBaseURL() string             { return "http://localhost:8080" }
func (f fakeDefaults) GetFXRates() map[string]float64    { return map[string]float64{"GBP": 1} }

type fakeConverter struct {
	err   error
	calls int
}

func (f *fakeConverter) ConvertHTML(_ context.Context, _ []byte, _ pdf.ConvertOpts) ([]byte, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF-1.4 fake"), nil
}

func testInputs() (pricing.Inputs, []pricing.Line, *pricing.Summary) {
	in := pricing.Inputs{
		JobType:      "cupcakes",
		Quantity:     100,
		DueDate:      "2024-01-05",
		CompanyName:  "Bakery Co.",
		CustomerName: "Ada",
		Currency:     "GBP",
		LaborRate:    20,
		MarkupPct:    0.15,
		VATPct:       0.20,
	}
	lines := []pricing.Line{
		{Name: "flour", Unit: "kg", Qty: 8, UnitCost: 1.2, Cost: 9.6, Currency: "GBP"},
	}
	summary := &pricing.Summary{
		MaterialsSubtotal: 9.6,
		LaborCost:         100,
		Subtotal:          109.6,
		MarkupValue:       16.44,
		PriceBeforeVAT:    126.04,
		VATValue:          25.21,
		Total:             151.25,
		UnitPrice:         1.51,
		LaborHours:        5,
	}
	return in, lines, summary
}

func newTestBuilder(t *testing.T, converter HTMLConverter) (*Builder, string) {
	t.Helper()
	dir := t.TempDir()
	b := NewBuilder(fakeDefaults{outDir: dir}, converter, nil, logger.New("development"))
	b.now = func() time.Time {
		return time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	}
	return b, dir
}

func TestBuildWritesArtifacts(t *testing.T) {
	b, dir := newTestBuilder(t, &fakeConverter{})
	in, lines, summary := testInputs()

	res, err := b.Build(context.Background(), in, lines, summary, nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if !regexp.MustCompile(`^Q-20240101-[0-9a-f]{6}$`).MatchString(res.QuoteID) {
		t.Fatalf("quote id %q has unexpected shape", res.QuoteID)
	}
	if res.QuoteDate != "2024-01-01" || res.ValidUntil != "2024-01-15" {
		t.Fatalf("dates = %s / %s", res.QuoteDate, res.ValidUntil)
	}

	for _, path := range []string{res.MDPath, res.TxtPath, res.PDFPath} {
		if path == "" {
			t.Fatalf("missing artifact path in %+v", res)
		}
		if filepath.Dir(path) != dir {
			t.Fatalf("artifact %s outside output dir", path)
		}
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("artifact not written: %v", err)
		}
	}

	md, err := os.ReadFile(res.MDPath)
	if err != nil {
		t.Fatalf("read markdown: %v", err)
	}
	for _, want := range []string{res.QuoteID, "cupcakes x 100", "151.25 GBP", "flour"} {
		if !strings.Contains(string(md), want) {
			t.Fatalf("markdown missing %q", want)
		}
	}
}

func TestBuildWithoutConverterWarnsAndSkipsPDF(t *testing.T) {
	b, _ := newTestBuilder(t, nil)
	in, lines, summary := testInputs()

	res, err := b.Build(context.Background(), in, lines, summary, []string{"no price for salt"})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if res.PDFPath != "" || res.PDFFilename() != "" {
		t.Fatalf("expected no PDF, got %q", res.PDFPath)
	}

	found := false
	for _, w := range res.Warnings {
		if w == "PDF rendering not configured" {
			found = true
		}
	}
	if !found {
		t.Fatalf("missing PDF warning in %v", res.Warnings)
	}
	if res.Warnings[0] != "no price for salt" {
		t.Fatalf("pricing warnings not preserved: %v", res.Warnings)
	}
}

func TestBuildPDFFailureIsNonFatal(t *testing.T) {
	conv := &fakeConverter{err: errors.New("gotenberg down")}
	b, _ := newTestBuilder(t, conv)
	in, lines, summary := testInputs()

	res, err := b.Build(context.Background(), in, lines, summary, nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if conv.calls != 1 {
		t.Fatalf("converter calls = %d", conv.calls)
	}
	if res.PDFPath != "" {
		t.Fatalf("expected empty PDF path after failure")
	}
	if len(res.Warnings) == 0 || res.Warnings[len(res.Warnings)-1] != "PDF rendering failed" {
		t.Fatalf("missing failure warning: %v", res.Warnings)
	}
	// The text and markdown artifacts still exist.
	if _, err := os.Stat(res.TxtPath); err != nil {
		t.Fatalf("text artifact missing: %v", err)
	}
}
