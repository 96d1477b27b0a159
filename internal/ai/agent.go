package ai

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
	"github.com/openai/openai-go/shared/constant"

	"instant-invoice/internal/core"
)

// ProposedItem is one line item extracted from a natural language description.
type ProposedItem struct {
	Name      string `json:"name" jsonschema_description:"Short billable item name, e.g. 'Consulting (2 days)'"`
	Quantity  string `json:"quantity" jsonschema_description:"Quantity as a positive decimal string, e.g. '2' or '1.5'"`
	UnitPrice string `json:"unit_price" jsonschema_description:"Price per unit as a non-negative decimal string, e.g. '400.00'"`
}

// ItemProposal is the structured interpretation of a billing description.
type ItemProposal struct {
	Items      []ProposedItem `json:"items" jsonschema_description:"The billable line items extracted from the description"`
	Confidence float64        `json:"confidence" jsonschema_description:"Confidence score between 0.0 and 1.0"`
	Reasoning  string         `json:"reasoning" jsonschema_description:"Brief explanation of how the description was interpreted"`
}

// ClarificationRequest is returned when the description is too ambiguous to
// extract items (e.g. an amount with no indication of what it is for).
type ClarificationRequest struct {
	Message string `json:"message" jsonschema_description:"A question asking the user for the missing details (e.g. 'What is the unit price for the consulting work?')."`
}

// InterpreterResponse wraps the AI output to handle branching between a valid
// ItemProposal or a ClarificationRequest. The model must return exactly one.
type InterpreterResponse struct {
	IsClarificationRequest bool                  `json:"is_clarification_request" jsonschema_description:"Set to true ONLY if you lack enough information to propose line items."`
	Clarification          *ClarificationRequest `json:"clarification,omitempty" jsonschema_description:"Required if is_clarification_request is true."`
	Proposal               *ItemProposal         `json:"proposal,omitempty" jsonschema_description:"Required if is_clarification_request is false."`
}

// LineItems converts the proposal into validated item inputs. Any item that
// fails parsing or validation aborts the whole conversion — a proposal is
// applied entirely or not at all.
func (p *ItemProposal) LineItems() ([]core.LineItemInput, error) {
	inputs := make([]core.LineItemInput, 0, len(p.Items))
	for i, item := range p.Items {
		in, err := core.ParseLineItemInput(item.Name, item.Quantity, item.UnitPrice)
		if err != nil {
			return nil, fmt.Errorf("proposed item %d: %w", i+1, err)
		}
		inputs = append(inputs, in)
	}
	return inputs, nil
}

// Agent interprets natural language billing descriptions into proposed line
// items using structured output. Proposals are never applied without explicit
// user confirmation by the calling adapter.
type Agent struct {
	client *openai.Client
}

func NewAgent(apiKey string) *Agent {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &Agent{client: &client}
}

func (a *Agent) InterpretItems(ctx context.Context, naturalLanguage string, currencySymbol string) (*InterpreterResponse, error) {
	prompt := fmt.Sprintf(`You are an invoicing assistant.
Your goal is to interpret a billing description in natural language and propose invoice line items.
Rules:
1. Each line item has a name, a quantity, and a unit price.
2. Quantities must be positive decimal strings; unit prices non-negative decimal strings (e.g. "400.00").
3. Do not invent prices: if an amount is missing or ambiguous, ask for clarification instead.
4. Prices are in the invoice currency (%s) — ignore any currency conversion.
5. Provide a confidence score (0.0-1.0) and brief reasoning.

Billing description: %s`, currencySymbol, naturalLanguage)

	// Dynamically generate the JSON schema from the Go struct
	schemaStruct := generateSchema()
	schemaJSON, err := json.Marshal(schemaStruct)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	var schemaMap map[string]any
	if err := json.Unmarshal(schemaJSON, &schemaMap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schema to map: %w", err)
	}

	params := responses.ResponseNewParams{
		Model: shared.ResponsesModel(shared.ChatModelGPT4o),
		Input: responses.ResponseNewParamsInputUnion{
			OfString: param.NewOpt(prompt),
		},
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Type:        constant.JSONSchema("json_schema"),
					Name:        "invoice_item_proposal",
					Strict:      param.NewOpt(true),
					Schema:      schemaMap,
					Description: param.NewOpt("Proposed invoice line items extracted from a billing description"),
				},
			},
		},
	}

	resp, err := a.client.Responses.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai responses error: %w", err)
	}

	content := resp.OutputText()
	if content == "" {
		return nil, fmt.Errorf("empty response content")
	}

	var response InterpreterResponse
	if err := json.Unmarshal([]byte(content), &response); err != nil {
		return nil, fmt.Errorf("failed to parse completion: %w", err)
	}

	if response.IsClarificationRequest {
		if response.Clarification == nil {
			return nil, fmt.Errorf("clarification requested without a message")
		}
		return &response, nil
	}
	if response.Proposal == nil {
		return nil, fmt.Errorf("response contains neither proposal nor clarification")
	}
	if _, err := response.Proposal.LineItems(); err != nil {
		return nil, fmt.Errorf("proposal validation failed: %w", err)
	}

	return &response, nil
}

func generateSchema() interface{} {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v InterpreterResponse
	return reflector.Reflect(v)
}
