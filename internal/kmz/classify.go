package kmz

import (
	"strings"

	"github.com/sells-group/ftth-cli/internal/design"
)

// rule maps a predicate over the normalized item path to a result. Rule
// tables are evaluated top to bottom and the first match wins. Reordering
// or renaming entries changes how existing designs classify.
type rule[C any] struct {
	name   string
	match  func(key string) bool
	result C
}

var pointRules = []rule[design.Category]{
	{
		name:   "nap",
		match:  anyOf(contains("CAJAS NAP"), hasSegment("NAP")),
		result: design.CategoryNAPBox,
	},
	{
		name:   "hub",
		match:  anyOf(contains("CAJAS HUB"), hasSegment("HUB")),
		result: design.CategoryHubBox,
	},
	{
		name:   "splice",
		match:  anyOf(contains("FOSC"), contains("BOTELLA")),
		result: design.CategorySpliceEnclosure,
	},
	{
		name:   "node",
		match:  anyOf(contains("/NODO"), hasPrefix("NODO"), contains(" NODO"), hasSuffix("/NODOS")),
		result: design.CategoryNode,
	},
}

var lineRules = []rule[design.CableClass]{
	{
		name:   "trunk",
		match:  anyOf(contains("CABLES TRONCALES"), contains("TRONCAL")),
		result: design.ClassTrunk,
	},
	{
		name:   "distribution",
		match:  anyOf(contains("CABLES DERIVACIONES"), contains("DERIV")),
		result: design.ClassDistribution,
	},
	{
		name:   "preconnectorized",
		match:  anyOf(contains("CABLES PRECONECTORIZADOS"), contains("PRECO")),
		result: design.ClassPreconnectorized,
	},
}

// Unmatched points are nodes and unmatched lines are trunk cables.
const (
	defaultCategory = design.CategoryNode
	defaultClass    = design.ClassTrunk
)

// ClassifyPoint returns the category for an upper-cased item path and
// whether a rule matched. Unmatched paths fall back to NODE.
func ClassifyPoint(key string) (design.Category, bool) {
	return classify(pointRules, defaultCategory, key)
}

// ClassifyLine returns the cable class for an upper-cased item path and
// whether a rule matched. Unmatched paths fall back to TRUNK.
func ClassifyLine(key string) (design.CableClass, bool) {
	return classify(lineRules, defaultClass, key)
}

func classify[C any](rules []rule[C], fallback C, key string) (C, bool) {
	for _, r := range rules {
		if r.match(key) {
			return r.result, true
		}
	}
	return fallback, false
}

func contains(sub string) func(string) bool {
	return func(key string) bool { return strings.Contains(key, sub) }
}

func hasPrefix(prefix string) func(string) bool {
	return func(key string) bool { return strings.HasPrefix(key, prefix) }
}

func hasSuffix(suffix string) func(string) bool {
	return func(key string) bool { return strings.HasSuffix(key, suffix) }
}

// hasSegment matches when one "/"-separated segment of the path equals seg
// once surrounding whitespace is trimmed.
func hasSegment(seg string) func(string) bool {
	return func(key string) bool {
		for _, s := range strings.Split(key, "/") {
			if strings.TrimSpace(s) == seg {
				return true
			}
		}
		return false
	}
}

func anyOf(preds ...func(string) bool) func(string) bool {
	return func(key string) bool {
		for _, p := range preds {
			if p(key) {
				return true
			}
		}
		return false
	}
}
