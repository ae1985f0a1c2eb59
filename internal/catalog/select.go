package catalog

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/everstacklabs/ask/internal/classify"
	"github.com/everstacklabs/ask/internal/provider"
)

// Select validates a 1-based menu selection against a count of entries.
// Anything but an integer in [1, count] is a fatal InvalidSelection; the
// caller must not reprompt.
func Select(input string, count int) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		return 0, classify.New(classify.InvalidSelection,
			fmt.Sprintf("selection %q is not an integer", input))
	}
	if n < 1 || n > count {
		return 0, classify.New(classify.InvalidSelection,
			fmt.Sprintf("selection %d out of range [1, %d]", n, count))
	}
	return n, nil
}

// GroupByProvider orders entries grouped by publisher in query order,
// preserving discovery order within each group.
func GroupByProvider(entries []Descriptor) []Descriptor {
	rank := make(map[provider.Provider]int)
	for i, p := range provider.All() {
		rank[p] = i
	}
	out := make([]Descriptor, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool {
		return rank[out[i].Provider] < rank[out[j].Provider]
	})
	return out
}
