package agent

import (
	"bakery_quote_backend/platform/ai/mistral"
)

// Tool names form the wire contract with the model; clients and prompt
// engineering depend on them staying stable.
const (
	toolGenerateQuote  = "generate_quote"
	toolMaterialLookup = "material_lookup"
	toolListMaterials  = "list_materials"
	toolEstimateJob    = "estimate_job"
)

type schema map[string]interface{}

// ToolDefs returns the function declarations advertised to the model on
// every turn.
func ToolDefs() []mistral.ToolDef {
	return []mistral.ToolDef{
		{
			Type: "function",
			Function: mistral.FunctionDef{
				Name:        toolGenerateQuote,
				Description: "Generate a bakery quote after user confirmation.",
				Parameters: schema{
					"type": "object",
					"properties": schema{
						"job_type":       schema{"type": "string"},
						"quantity":       schema{"type": "integer"},
						"due_date":       schema{"type": "string"},
						"company_name":   schema{"type": "string"},
						"customer_name":  schema{"type": "string"},
						"customer_email": schema{"type": "string"},
						"currency":       schema{"type": "string"},
						"labor_rate":     schema{"type": "number"},
						"markup_pct":     schema{"type": "number"},
						"vat_pct":        schema{"type": "number"},
						"notes":          schema{"type": "string"},
						"send_email":     schema{"type": "boolean"},
						"confirm":        schema{"type": "boolean"},
					},
					"required": []string{
						"job_type",
						"quantity",
						"due_date",
						"company_name",
						"customer_name",
						"customer_email",
						"currency",
						"vat_pct",
					},
				},
			},
		},
		{
			Type: "function",
			Function: mistral.FunctionDef{
				Name:        toolMaterialLookup,
				Description: "Look up a material's unit cost, unit, and currency.",
				Parameters: schema{
					"type": "object",
					"properties": schema{
						"name": schema{"type": "string"},
					},
					"required": []string{"name"},
				},
			},
		},
		{
			Type: "function",
			Function: mistral.FunctionDef{
				Name:        toolListMaterials,
				Description: "List all materials with unit costs.",
				Parameters: schema{
					"type":       "object",
					"properties": schema{},
				},
			},
		},
		{
			Type: "function",
			Function: mistral.FunctionDef{
				Name:        toolEstimateJob,
				Description: "Estimate job totals and unit price from known fields.",
				Parameters: schema{
					"type": "object",
					"properties": schema{
						"job_type":   schema{"type": "string"},
						"quantity":   schema{"type": "integer"},
						"currency":   schema{"type": "string"},
						"labor_rate": schema{"type": "number"},
						"markup_pct": schema{"type": "number"},
						"vat_pct":    schema{"type": "number"},
					},
					"required": []string{"job_type", "quantity", "currency"},
				},
			},
		},
	}
}
