package agent

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"bakery_quote_backend/platform/ai/mistral"
	"bakery_quote_backend/platform/logger"
)

func newTestDispatcher(t *testing.T) *Dispatcher {
	t.Helper()
	catalog := testCatalog()
	est := testEstimator(catalog)
	gate := NewGate(est, fakeResolver{}, builderWithResult(), &fakeEmail{}, &fakeSheets{}, "Bakery Quote Desk", logger.New("test"))
	return NewDispatcher(catalog, est, gate, logger.New("test"))
}

func call(name, args string) mistral.ToolCall {
	return mistral.ToolCall{
		ID:       "call_" + name,
		Type:     "function",
		Function: mistral.FunctionCall{Name: name, Arguments: args},
	}
}

func decodeTool(t *testing.T, msg mistral.Message) map[string]interface{} {
	t.Helper()
	if msg.Role != "tool" {
		t.Fatalf("message role = %q, want tool", msg.Role)
	}
	var out map[string]interface{}
	if err := json.Unmarshal([]byte(msg.Content), &out); err != nil {
		t.Fatalf("tool content is not JSON: %v (%q)", err, msg.Content)
	}
	return out
}

func TestDispatchMaterialLookup(t *testing.T) {
	d := newTestDispatcher(t)

	out := d.Dispatch(context.Background(), []mistral.ToolCall{
		call(toolMaterialLookup, `{"name":"flour"}`),
		call(toolMaterialLookup, `{"name":"saffron"}`),
	})
	if len(out.ToolMessages) != 2 {
		t.Fatalf("tool messages = %d, want 2", len(out.ToolMessages))
	}

	found := decodeTool(t, out.ToolMessages[0])
	if found["name"] != "flour" || found["unit"] != "kg" {
		t.Fatalf("unexpected lookup result: %v", found)
	}
	missing := decodeTool(t, out.ToolMessages[1])
	if missing["error"] != "Material not found" {
		t.Fatalf("missing material result = %v", missing)
	}
}

func TestDispatchListMaterials(t *testing.T) {
	d := newTestDispatcher(t)

	out := d.Dispatch(context.Background(), []mistral.ToolCall{call(toolListMaterials, "{}")})
	var materials []map[string]interface{}
	if err := json.Unmarshal([]byte(out.ToolMessages[0].Content), &materials); err != nil {
		t.Fatalf("list content: %v", err)
	}
	if len(materials) != 7 {
		t.Fatalf("materials = %d, want 7", len(materials))
	}
}

func TestDispatchEstimateJobAppliesDefaults(t *testing.T) {
	d := newTestDispatcher(t)

	// Currency, labor rate and percentages are omitted on purpose.
	out := d.Dispatch(context.Background(), []mistral.ToolCall{
		call(toolEstimateJob, `{"job_type":"cupcakes","quantity":100}`),
	})
	body := decodeTool(t, out.ToolMessages[0])
	summary, ok := body["summary"].(map[string]interface{})
	if !ok {
		t.Fatalf("no summary in %v", body)
	}
	if summary["total"].(float64) <= 0 {
		t.Fatalf("total = %v", summary["total"])
	}
	if _, ok := body["lines"].([]interface{}); !ok {
		t.Fatalf("no lines in %v", body)
	}
}

func TestDispatchEstimateJobRejectsZeroQuantity(t *testing.T) {
	d := newTestDispatcher(t)

	out := d.Dispatch(context.Background(), []mistral.ToolCall{
		call(toolEstimateJob, `{"job_type":"cupcakes"}`),
	})
	body := decodeTool(t, out.ToolMessages[0])
	if _, ok := body["error"]; !ok {
		t.Fatalf("expected an error for missing quantity, got %v", body)
	}
}

func TestDispatchMalformedArgumentsFallBackToDefaults(t *testing.T) {
	d := newTestDispatcher(t)

	out := d.Dispatch(context.Background(), []mistral.ToolCall{
		call(toolMaterialLookup, `{"name":`),
	})
	body := decodeTool(t, out.ToolMessages[0])
	if body["error"] != "Material not found" {
		t.Fatalf("malformed args result = %v", body)
	}
}

func TestDispatchQuantityCoercion(t *testing.T) {
	d := newTestDispatcher(t)

	// Models sometimes send numbers as strings.
	out := d.Dispatch(context.Background(), []mistral.ToolCall{
		call(toolEstimateJob, `{"job_type":"cupcakes","quantity":"100"}`),
	})
	body := decodeTool(t, out.ToolMessages[0])
	if _, hasErr := body["error"]; hasErr {
		t.Fatalf("string quantity rejected: %v", body)
	}
}

func TestDispatchUnknownTool(t *testing.T) {
	d := newTestDispatcher(t)

	out := d.Dispatch(context.Background(), []mistral.ToolCall{call("launch_missiles", "{}")})
	body := decodeTool(t, out.ToolMessages[0])
	if body["error"] != "Unknown tool" {
		t.Fatalf("unknown tool result = %v", body)
	}
	if out.ToolMessages[0].ToolCallID != "call_launch_missiles" {
		t.Fatalf("tool call id = %q", out.ToolMessages[0].ToolCallID)
	}
}

func TestDispatchGenerateQuotePropagatesPreviewAndQuote(t *testing.T) {
	d := newTestDispatcher(t)

	preview := d.Dispatch(context.Background(), []mistral.ToolCall{
		call(toolGenerateQuote, `{"job_type":"cupcakes","quantity":100,"due_date":"2024-02-01","company_name":"Acme","customer_name":"Dana","customer_email":"dana@example.com","currency":"GBP","vat_pct":20}`),
	})
	if preview.Preview == nil || preview.Quote != nil {
		t.Fatalf("unconfirmed call: preview=%v quote=%v", preview.Preview, preview.Quote)
	}
	if !strings.Contains(preview.ToolMessages[0].Content, "needs_confirmation") {
		t.Fatalf("tool content missing confirmation flag: %q", preview.ToolMessages[0].Content)
	}

	commit := d.Dispatch(context.Background(), []mistral.ToolCall{
		call(toolGenerateQuote, `{"job_type":"cupcakes","quantity":100,"due_date":"2024-02-01","company_name":"Acme","customer_name":"Dana","customer_email":"dana@example.com","currency":"GBP","vat_pct":20,"confirm":true}`),
	})
	if commit.Quote == nil || commit.Preview != nil {
		t.Fatalf("confirmed call: preview=%v quote=%v", commit.Preview, commit.Quote)
	}
}
