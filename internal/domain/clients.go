package domain

import (
	"context"
	"encoding/json"
)

// GenerativeClient submits instructions plus an input payload to a
// language model and returns the raw JSON the model produced. It does
// no shape validation; callers decode the result through the contract
// package before trusting it.
type GenerativeClient interface {
	GenerateJSON(ctx context.Context, instructions string, input any) (json.RawMessage, error)
}
