package models

// GraphNode is a domain-agnostic view of a graph node, suitable for
// serializing to visualization clients.
type GraphNode struct {
	// ID is the decimal form of the node identity, the same value used by the
	// Ingredient and Recipe ID fields.
	ID string `json:"id"`

	// Labels lists the node labels, e.g. ["Recipe"].
	Labels []string `json:"labels"`

	Properties map[string]any `json:"properties"`
}

// Edge is a domain-agnostic view of a relationship between two nodes.
type Edge struct {
	// ID is the decimal form of the relationship identity (the Element ID).
	ID string `json:"id"`

	// Source and Target hold the IDs of the start and end nodes.
	Source string `json:"source"`
	Target string `json:"target"`

	// Type is the relationship type, e.g. "USES".
	Type string `json:"type"`

	Properties map[string]any `json:"properties"`
}

// GraphResult is a de-duplicated set of nodes and edges, the format most
// graph visualization libraries consume directly.
type GraphResult struct {
	Nodes []*GraphNode `json:"nodes"`
	Edges []*Edge      `json:"edges"`
}
