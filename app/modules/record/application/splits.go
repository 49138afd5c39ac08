package recordservice

import (
	"fmt"
	"strconv"
	"strings"
)

const splitsSeparator = "|"

// JoinSplits encodes an ordered split sequence into the stored string form.
// Formatting uses the shortest representation that round-trips exactly, so
// decoding recovers the original values.
func JoinSplits(splits []float64) string {
	parts := make([]string, len(splits))
	for i, split := range splits {
		parts[i] = strconv.FormatFloat(split, 'f', -1, 64)
	}
	return strings.Join(parts, splitsSeparator)
}

// ParseSplits decodes the stored string form back into the split sequence.
func ParseSplits(joined string) ([]float64, error) {
	if joined == "" {
		return nil, nil
	}
	parts := strings.Split(joined, splitsSeparator)
	splits := make([]float64, len(parts))
	for i, part := range parts {
		value, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid split %q: %w", part, err)
		}
		splits[i] = value
	}
	return splits, nil
}
