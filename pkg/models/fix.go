package models

// FixResult is the outcome of one dispatch attempt. It is produced exactly
// once per dispatched issue and never edited afterward.
type FixResult struct {
	Success      bool              `json:"success"`
	Fixer        string            `json:"fixer,omitempty"`
	IssueCode    string            `json:"issue_code,omitempty"`
	Message      string            `json:"message"`
	ChangedFiles []string          `json:"changed_files,omitempty"`
	Details      map[string]string `json:"details,omitempty"`
}

// ArtifactKind classifies a side-channel analysis artifact.
type ArtifactKind string

const (
	// ArtifactImageDescription is a candidate image description generated
	// during alt text repair, kept for human review whether or not it was
	// applied.
	ArtifactImageDescription ArtifactKind = "image_description"
	// ArtifactMetadataSuggestion is generated metadata content that a
	// strategy proposed but did not necessarily write.
	ArtifactMetadataSuggestion ArtifactKind = "metadata_suggestion"
)

// Artifact is a side-channel analysis product accumulated on the
// ProcessingContext, independent of whether it was ultimately used in a
// repair.
type Artifact struct {
	Kind    ArtifactKind `json:"kind"`
	File    string       `json:"file,omitempty"`
	Target  string       `json:"target,omitempty"` // e.g. image path within the container
	Source  string       `json:"source"`           // "inference", "cache", "fallback", ...
	Content string       `json:"content"`
	Applied bool         `json:"applied"`
}
