package mcp

import "github.com/sourcelens/semindex/internal/status"

// CodebaseSearchRequest is codebase_search's parsed argument set
// (spec.md §6.1).
type CodebaseSearchRequest struct {
	Query           string
	Limit           int
	Threshold       float64
	FileTypes       []string
	Paths           []string
	DirectoryPrefix string
	Languages       []string
	IncludeContext  bool
	ContextLines    int
}

// SearchResultView is one formatted codebase_search hit.
type SearchResultView struct {
	File           string   `json:"file"`
	Line           int      `json:"line"`
	EndLine        int      `json:"end_line"`
	Score          float64  `json:"score"`
	Type           string   `json:"type"`
	Name           string   `json:"name"`
	Language       string   `json:"language"`
	Code           string   `json:"code,omitempty"`
	Context        string   `json:"context,omitempty"`
	RelatedSymbols []string `json:"related_symbols,omitempty"`
}

// CodebaseSearchResponse is codebase_search's JSON payload.
type CodebaseSearchResponse struct {
	Query   string             `json:"query"`
	Total   int                `json:"total"`
	Results []SearchResultView `json:"results"`
}

// IndexingStatusResponse is indexing_status's JSON payload (spec.md
// §6.1: state icon, progress, stats, languages, file types, recent
// errors, watching flag, queue size, current branch).
type IndexingStatusResponse struct {
	StateIcon     string              `json:"state_icon"`
	State         status.State        `json:"state"`
	Progress      status.Progress     `json:"progress"`
	Stats         status.Stats        `json:"stats"`
	Errors        []status.ErrorEntry `json:"errors"`
	Watching      bool                `json:"watching"`
	QueueSize     int                 `json:"queue_size"`
	CurrentBranch string              `json:"current_branch"`
}

// stateIcons maps a status.State to the glyph indexing_status reports.
var stateIcons = map[status.State]string{
	status.StateStandby:  "○",
	status.StateIndexing: "◐",
	status.StateIndexed:  "●",
	status.StateError:    "✕",
}

// ReindexRequest is reindex's parsed argument set.
type ReindexRequest struct {
	Mode  string
	Paths []string
	Force bool
}

// ReindexResponse is reindex's JSON payload.
type ReindexResponse struct {
	Mode      string `json:"mode"`
	FilesDone int    `json:"files_done"`
	Status    string `json:"status"`
}

// ConfigureIndexerResponse is configure_indexer's JSON payload.
type ConfigureIndexerResponse struct {
	Applied bool   `json:"applied"`
	Message string `json:"message"`
}

// ClearIndexResponse is clear_index's JSON payload.
type ClearIndexResponse struct {
	Cleared bool   `json:"cleared"`
	Message string `json:"message"`
}

// ValidateConfigResponse is validate_config's JSON payload.
type ValidateConfigResponse struct {
	Component string `json:"component"`
	Healthy   bool   `json:"healthy"`
	Message   string `json:"message"`
}
