package engine

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/yunginnanet/oasis-ads8422/pkg/ads8422"
)

// Separator delimits raw words in the engine output.
const Separator = ','

// ParseRawWords parses the engine output: base-10 register words separated by [Separator].
// Any bad field invalidates the whole output.
func ParseRawWords(out []byte) ([]ads8422.RawWord, error) {
	out = bytes.TrimSpace(out)
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: empty engine output", ads8422.ErrMalformedSampleData)
	}

	words := make([]ads8422.RawWord, 0, bytes.Count(out, []byte{Separator})+1)
	for i, field := range bytes.Split(out, []byte{Separator}) {
		field = bytes.TrimSpace(field)
		if len(field) == 0 {
			return nil, fmt.Errorf("%w: field %d is empty", ads8422.ErrMalformedSampleData, i)
		}
		n, err := strconv.ParseUint(string(field), 10, ads8422.RegisterBits)
		if err != nil {
			return nil, fmt.Errorf("%w: field %d: %w", ads8422.ErrMalformedSampleData, i, err)
		}
		words = append(words, ads8422.RawWord(n))
	}

	return words, nil
}
