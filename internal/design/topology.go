package design

import "github.com/sells-group/ftth-cli/internal/geo"

// Link kinds in the logical feeder topology.
const (
	LinkHubToNode = "HUB→NODE"
	LinkNodeToNAP = "NODE→NAP"
)

// Link is a logical connection between two point entities.
type Link struct {
	Kind string `json:"kind" yaml:"kind"`
	From Point  `json:"from" yaml:"from"`
	To   Point  `json:"to" yaml:"to"`
}

// StraightKm returns the great-circle distance between the link endpoints.
func (l Link) StraightKm() float64 {
	return geo.Distance(l.From.Position(), l.To.Position())
}

// Topology derives the logical feeder links of a design: the first hub box
// feeds the first node, and that node feeds every NAP box. A design without
// a hub box or a node has no links.
func Topology(m *Model) []Link {
	hubs := m.HubBoxes()
	nodes := m.Nodes()
	if len(hubs) == 0 || len(nodes) == 0 {
		return nil
	}

	hub, node := hubs[0], nodes[0]
	links := []Link{{Kind: LinkHubToNode, From: hub, To: node}}
	for _, nap := range m.NAPBoxes() {
		links = append(links, Link{Kind: LinkNodeToNAP, From: node, To: nap})
	}
	return links
}
