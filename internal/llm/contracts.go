package llm

import "context"

// ExtractedPair is one structured row of the output workbook. The json tags
// are the wire contract: all three field names are capitalized on the wire,
// and Comment must be present even when empty.
type ExtractedPair struct {
	Key     string `json:"Key"`     // determined key/label for the data point
	Value   string `json:"Value"`   // exact original phrasing from the PDF
	Comment string `json:"Comment"` // residual text; "" when Key/Value is sufficient
}

// DocumentStructure is the only accepted top-level shape of the model's JSON
// response: one field holding the ordered pair sequence.
type DocumentStructure struct {
	ExtractedData []ExtractedPair `json:"extracted_data"`
}

// TopLevelField is the required top-level key of the response object.
const TopLevelField = "extracted_data"

// ExtractRequest carries one document through the LLM stage.
type ExtractRequest struct {
	DocumentText string
	SourceName   string // filename hint, logging only
}

// PairExtractor is the interface the pipeline depends on.
type PairExtractor interface {
	ExtractPairs(ctx context.Context, req ExtractRequest) ([]ExtractedPair, []byte /*rawJSON*/, error)
}
