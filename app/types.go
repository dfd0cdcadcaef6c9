package app

// Logger receives structured log lines from the pipeline. The presentation
// layer decides where they go; passing nil discards them.
type Logger interface {
	Log(level, message string)
}

// LoadResult summarizes a freshly loaded dataset for the frontend
type LoadResult struct {
	Path        string   `json:"path"`
	Format      string   `json:"format"`
	Compression string   `json:"compression"`
	Hash        string   `json:"hash"`
	Columns     []string `json:"columns"`
	Rows        int      `json:"rows"`
}

// TablePage represents a page of table rows with metadata
type TablePage struct {
	Columns    []string `json:"columns"`
	Rows       [][]any  `json:"rows"` // float64, string, or nil for missing cells
	Start      int      `json:"start"`
	ReachedEnd bool     `json:"reachedEnd"`
	Total      int      `json:"total"`
}
