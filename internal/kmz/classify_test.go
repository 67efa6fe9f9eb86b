package kmz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/ftth-cli/internal/design"
)

func TestClassifyPoint(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		expected design.Category
		matched  bool
	}{
		{name: "cajas nap folder", key: "PROYECTO/CAJAS NAP/BOX1", expected: design.CategoryNAPBox, matched: true},
		{name: "nap segment", key: "RED/NAP/N1", expected: design.CategoryNAPBox, matched: true},
		{name: "nap segment with padding", key: "RED/ NAP /N1", expected: design.CategoryNAPBox, matched: true},
		{name: "naps is not a nap segment", key: "RED/NAPS/N1", expected: design.CategoryNode, matched: false},
		{name: "cajas hub folder", key: "RED/CAJAS HUB/H1", expected: design.CategoryHubBox, matched: true},
		{name: "hub segment", key: "RED/HUB/H1", expected: design.CategoryHubBox, matched: true},
		{name: "nap wins over hub", key: "RED/CAJAS NAP/HUB", expected: design.CategoryNAPBox, matched: true},
		{name: "hub wins over splice", key: "RED/HUB/FOSC 1", expected: design.CategoryHubBox, matched: true},
		{name: "fosc", key: "RED/FOSC/E1", expected: design.CategorySpliceEnclosure, matched: true},
		{name: "botella", key: "RED/BOTELLAS/B1", expected: design.CategorySpliceEnclosure, matched: true},
		{name: "splice wins over node", key: "NODOS/FOSC 2", expected: design.CategorySpliceEnclosure, matched: true},
		{name: "nodos folder", key: "RED/NODOS/N1", expected: design.CategoryNode, matched: true},
		{name: "starts with nodo", key: "NODO CENTRAL", expected: design.CategoryNode, matched: true},
		{name: "space nodo", key: "RED/MI NODO", expected: design.CategoryNode, matched: true},
		{name: "unmatched defaults to node", key: "RED/POSTES/P7", expected: design.CategoryNode, matched: false},
		{name: "empty key defaults to node", key: "", expected: design.CategoryNode, matched: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, matched := ClassifyPoint(tt.key)
			assert.Equal(t, tt.expected, got)
			assert.Equal(t, tt.matched, matched)
		})
	}
}

func TestClassifyLine(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		expected design.CableClass
		matched  bool
	}{
		{name: "cables troncales", key: "CABLES TRONCALES/T1", expected: design.ClassTrunk, matched: true},
		{name: "troncal keyword", key: "RED/TRONCAL NORTE", expected: design.ClassTrunk, matched: true},
		{name: "cables derivaciones", key: "CABLES DERIVACIONES/D1", expected: design.ClassDistribution, matched: true},
		{name: "deriv keyword", key: "RED/DERIV 3", expected: design.ClassDistribution, matched: true},
		{name: "cables preconectorizados", key: "CABLES PRECONECTORIZADOS/P1", expected: design.ClassPreconnectorized, matched: true},
		{name: "preco keyword", key: "RED/PRECO 12", expected: design.ClassPreconnectorized, matched: true},
		{name: "trunk wins over preco", key: "RED/TRONCAL/PRECO 1", expected: design.ClassTrunk, matched: true},
		{name: "distribution wins over preco", key: "DERIVACION/PRECO 1", expected: design.ClassDistribution, matched: true},
		{name: "unmatched defaults to trunk", key: "RED/FIBRA", expected: design.ClassTrunk, matched: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, matched := ClassifyLine(tt.key)
			assert.Equal(t, tt.expected, got)
			assert.Equal(t, tt.matched, matched)
		})
	}
}

func TestRuleTableOrder(t *testing.T) {
	var points []string
	for _, r := range pointRules {
		points = append(points, r.name)
	}
	assert.Equal(t, []string{"nap", "hub", "splice", "node"}, points)

	var lines []string
	for _, r := range lineRules {
		lines = append(lines, r.name)
	}
	assert.Equal(t, []string{"trunk", "distribution", "preconnectorized"}, lines)
}
