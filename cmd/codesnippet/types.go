package main

// CLIResult is the top-level JSON envelope for all query commands.
type CLIResult struct {
	Command    string `json:"command"`
	Results    any    `json:"results"`
	TotalCount *int   `json:"total_count,omitempty"`
	Error      string `json:"error,omitempty"`
}

// CLISnippet is a JSON-friendly snippet representation. Text is only set by
// get.
type CLISnippet struct {
	Root     string `json:"root"`
	File     string `json:"file"`
	Region   string `json:"region"`
	Language string `json:"language,omitempty"`
	Size     int    `json:"size"`
	Hash     string `json:"hash"`
	Text     string `json:"text,omitempty"`
}

// CLIType is one type index entry.
type CLIType struct {
	Name string `json:"name"`
	FQN  string `json:"fqn"`
}
