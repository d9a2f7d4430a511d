package models

// IntegrationItem is a remote record reduced to a provider-agnostic shape.
// Items are derived on every fetch and never persisted.
type IntegrationItem struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Type             string `json:"type"`
	CreationTime     string `json:"creation_time,omitempty"`
	ParentPathOrName string `json:"parent_path_or_name"`
	Visibility       bool   `json:"visibility"`
}
