package flowdoc

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/ussdflow/pkg/domain"
	"gopkg.in/yaml.v3"
)

// Encode renders doc as indented JSON, the wire format of the catalog.
func Encode(doc domain.FlowDocument) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode flow document: %w", err)
	}
	return data, nil
}

// Decode parses a JSON flow document.
func Decode(data []byte) (domain.FlowDocument, error) {
	var doc domain.FlowDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return domain.FlowDocument{}, fmt.Errorf("failed to decode flow document: %w", err)
	}
	if doc.VisualState.Nodes == nil {
		doc.VisualState.Nodes = []domain.Node{}
	}
	if doc.VisualState.Edges == nil {
		doc.VisualState.Edges = []domain.Edge{}
	}
	return doc, nil
}

// Graph returns the nodes and edges a document was built from.
func Graph(doc domain.FlowDocument) ([]domain.Node, []domain.Edge) {
	return domain.CloneNodes(doc.VisualState.Nodes), append([]domain.Edge(nil), doc.VisualState.Edges...)
}

// EncodeYAML renders doc as YAML using the same field names as the JSON wire
// format.
func EncodeYAML(doc domain.FlowDocument) ([]byte, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode flow document: %w", err)
	}
	var tree map[string]any
	if err := json.Unmarshal(raw, &tree); err != nil {
		return nil, fmt.Errorf("failed to encode flow document: %w", err)
	}
	out, err := yaml.Marshal(tree)
	if err != nil {
		return nil, fmt.Errorf("failed to encode flow document as yaml: %w", err)
	}
	return out, nil
}
