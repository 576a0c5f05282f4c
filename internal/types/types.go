// Package types contains the shared data structures passed between pipeline stages.
package types

// ResourceType identifies where creator-profile content came from.
const (
	// ResourceRemote means the profile page was scraped from its URL.
	ResourceRemote = "remote"
	// ResourceLocal means content was assembled from the local influencer directory.
	ResourceLocal = "local"
)

// AcquisitionResult holds extracted document text plus the image references that
// appeared alongside it, in document order. When Succeeded is false, Document
// carries a human-readable reason instead of content.
type AcquisitionResult struct {
	Document  string   `json:"document"`
	ImageRefs []string `json:"image_refs,omitempty"`
	Succeeded bool     `json:"succeeded"`
}

// Bundle groups everything Content Acquisition produces for one pipeline run.
type Bundle struct {
	Briefing     AcquisitionResult `json:"briefing"`
	Profile      AcquisitionResult `json:"profile"`
	Outline      string            `json:"outline"`
	ResourceType string            `json:"resource_type"`
}

// ShotEntry describes a single shot in a video shot list. All fields are
// optional; normalization fills what the model provided and leaves the rest empty.
type ShotEntry struct {
	ShotType  string `json:"shot_type,omitempty"`
	Visual    string `json:"visual,omitempty"`
	Voiceover string `json:"voiceover,omitempty"`
	Caption   string `json:"caption,omitempty"`
	Duration  string `json:"duration,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

// ShotList is an ordered, possibly-empty sequence of shots.
type ShotList []ShotEntry

// StyleSource values for StyleClassification.Source.
const (
	StyleSourceExtracted = "extracted"
	StyleSourceDefault   = "default"
)

// StyleClassification records which style type a run resolved to and whether it
// was extracted from the creator-style analysis or fell back to the caller's hint.
type StyleClassification struct {
	StyleType string `json:"style_type"`
	Source    string `json:"source"`
}
