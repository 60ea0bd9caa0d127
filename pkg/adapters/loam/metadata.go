package loam

// FlowMetadata is the frontmatter of a published flow file. The body of the
// file holds the JSON flow document.
type FlowMetadata struct {
	FlowName  string `json:"flow_name" mapstructure:"flow_name"`
	EntryNode string `json:"entry_node" mapstructure:"entry_node"`
	Records   int    `json:"records" mapstructure:"records"`
}
