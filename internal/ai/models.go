package ai

// ModelInfo describes a selectable model for the settings surface.
type ModelInfo struct {
	ID                 string
	Name               string
	Features           []string
	Context            int
	InputCost1KTokens  float64
	OutputCost1KTokens float64
}

// Models lists the models that support function calling.
var Models = []ModelInfo{
	{
		ID:                 "gpt-3.5-turbo-0613",
		Name:               "GPT-3.5 Turbo (0613) [recommended]",
		Features:           []string{"function-calling"},
		Context:            4000,
		InputCost1KTokens:  0.0015,
		OutputCost1KTokens: 0.002,
	},
	{
		ID:                 "gpt-3.5-turbo-16-0613",
		Name:               "GPT-3.5 Turbo (0613) (16K context)",
		Features:           []string{"function-calling"},
		Context:            16000,
		InputCost1KTokens:  0.003,
		OutputCost1KTokens: 0.004,
	},
	{
		ID:                 "gpt-4-0613",
		Name:               "GPT-4 (0613)",
		Features:           []string{"function-calling"},
		Context:            8000,
		InputCost1KTokens:  0.03,
		OutputCost1KTokens: 0.06,
	},
	{
		ID:                 "gpt-4-32k-0613",
		Name:               "GPT-4 (0613) (32K context)",
		Features:           []string{"function-calling"},
		Context:            32000,
		InputCost1KTokens:  0.06,
		OutputCost1KTokens: 0.12,
	},
}

// LookupModel finds a model by ID, returns nil if not found.
func LookupModel(id string) *ModelInfo {
	for i := range Models {
		if Models[i].ID == id {
			return &Models[i]
		}
	}
	return nil
}

// HasFeature reports whether the model lists feature.
func (m ModelInfo) HasFeature(feature string) bool {
	for _, f := range m.Features {
		if f == feature {
			return true
		}
	}
	return false
}

// EstimateCost returns the price in USD for the given token counts.
func (m ModelInfo) EstimateCost(inputTokens, outputTokens int) float64 {
	return float64(inputTokens)/1000*m.InputCost1KTokens +
		float64(outputTokens)/1000*m.OutputCost1KTokens
}
