// Package agent executes the tool calls requested by the chat model.
package agent

import (
	"context"
	"encoding/json"
	"strconv"

	"bakery_quote_backend/internal/chat/transport"
	"bakery_quote_backend/internal/pricing"
	"bakery_quote_backend/platform/ai/mistral"
	"bakery_quote_backend/platform/logger"
)

// Preview carries an unconfirmed quote summary back to the turn router,
// which renders it directly instead of consulting the model again.
type Preview struct {
	Summary   *pricing.Summary
	Currency  string
	MarkupPct float64
	VATPct    float64
	Warnings  []string
}

// Outcome is everything one batch of tool calls produced.
type Outcome struct {
	ToolMessages []mistral.Message
	Preview      *Preview
	Quote        *transport.QuotePayload
}

// Dispatcher routes tool calls to their handlers. Unknown tool names and
// malformed argument payloads degrade to error tool results; the model deals
// with them conversationally.
type Dispatcher struct {
	catalog   pricing.Catalog
	estimator *pricing.Estimator
	gate      *Gate
	log       *logger.Logger
}

// NewDispatcher creates a dispatcher.
func NewDispatcher(catalog pricing.Catalog, estimator *pricing.Estimator, gate *Gate, log *logger.Logger) *Dispatcher {
	return &Dispatcher{catalog: catalog, estimator: estimator, gate: gate, log: log}
}

// Dispatch executes every tool call in order. A commit and a preview in the
// same batch keep the commit; the preview only renders when no quote was
// committed.
func (d *Dispatcher) Dispatch(ctx context.Context, calls []mistral.ToolCall) *Outcome {
	out := &Outcome{}
	for _, call := range calls {
		d.log.ToolCall(call.Function.Name, call.ID)
		args := parseArgs(call.Function.Arguments)

		var content interface{}
		switch call.Function.Name {
		case toolMaterialLookup:
			content = d.materialLookup(ctx, args)
		case toolListMaterials:
			content = d.listMaterials(ctx)
		case toolEstimateJob:
			content = d.estimateJob(ctx, args)
		case toolGenerateQuote:
			var preview *Preview
			var quote *transport.QuotePayload
			content, preview, quote = d.gate.Handle(ctx, args)
			if preview != nil {
				out.Preview = preview
			}
			if quote != nil {
				out.Quote = quote
			}
		default:
			content = map[string]string{"error": "Unknown tool"}
		}

		out.ToolMessages = append(out.ToolMessages, toolMessage(call.ID, content))
	}
	return out
}

func (d *Dispatcher) materialLookup(ctx context.Context, args map[string]interface{}) interface{} {
	material, err := d.catalog.Get(ctx, argString(args, "name", ""))
	if err != nil || material == nil {
		return map[string]string{"error": "Material not found"}
	}
	return material
}

func (d *Dispatcher) listMaterials(ctx context.Context) interface{} {
	materials, err := d.catalog.List(ctx)
	if err != nil {
		return map[string]string{"error": err.Error()}
	}
	return materials
}

func (d *Dispatcher) estimateJob(ctx context.Context, args map[string]interface{}) interface{} {
	defaults := d.estimator.Defaults()
	in := pricing.Inputs{
		JobType:   argString(args, "job_type", ""),
		Quantity:  argInt(args, "quantity", 0),
		Currency:  argString(args, "currency", defaults.Currency),
		LaborRate: argFloat(args, "labor_rate", defaults.LaborRate),
		MarkupPct: pricing.ParsePct(argFloat(args, "markup_pct", defaults.MarkupPct*100)),
		VATPct:    pricing.ParsePct(argFloat(args, "vat_pct", defaults.VATPct*100)),
	}

	lines, summary, _, err := d.estimator.Estimate(ctx, in)
	if err != nil {
		return map[string]string{"error": err.Error()}
	}
	return map[string]interface{}{"summary": summary, "lines": lines}
}

func toolMessage(callID string, content interface{}) mistral.Message {
	encoded, err := json.Marshal(content)
	if err != nil {
		encoded = []byte(`{"error":"internal encoding failure"}`)
	}
	return mistral.Message{Role: "tool", ToolCallID: callID, Content: string(encoded)}
}

// parseArgs decodes the model's argument JSON. Malformed payloads yield an
// empty set; each argument then falls back to its default.
func parseArgs(raw string) map[string]interface{} {
	if raw == "" {
		return map[string]interface{}{}
	}
	var args map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &args); err != nil || args == nil {
		return map[string]interface{}{}
	}
	return args
}

func argString(args map[string]interface{}, key, fallback string) string {
	if v, ok := args[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

func argInt(args map[string]interface{}, key string, fallback int) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		return fallback
	default:
		return fallback
	}
}

func argFloat(args map[string]interface{}, key string, fallback float64) float64 {
	switch v := args[key].(type) {
	case float64:
		return v
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		return fallback
	default:
		return fallback
	}
}

func argBool(args map[string]interface{}, key string) bool {
	v, ok := args[key].(bool)
	return ok && v
}
