package mockbackend

import (
	"strings"
	"sync"

	"github.com/tiktoken-go/tokenizer"
)

var (
	codecOnce sync.Once
	codec     tokenizer.Codec
	codecErr  error
)

// countTokens counts cl100k tokens, falling back to whitespace words if the codec is unavailable.
func countTokens(texts ...string) int {
	codecOnce.Do(func() {
		codec, codecErr = tokenizer.Get(tokenizer.Cl100kBase)
	})
	total := 0
	for _, text := range texts {
		if codecErr != nil {
			total += len(strings.Fields(text))
			continue
		}
		ids, _, err := codec.Encode(text)
		if err != nil {
			total += len(strings.Fields(text))
			continue
		}
		total += len(ids)
	}
	return total
}
