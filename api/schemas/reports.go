// File: api/schemas/reports.go
package schemas

// -- Report building blocks --

// BoundingBox is [topLeftX, topLeftY, width, height], each a percentage (0-100)
// of the artifact's dimensions.
type BoundingBox []float64

// BoundingBoxLen is the number of components a well formed box carries.
const BoundingBoxLen = 4

// Threat is a single credible threat identified for a URL.
type Threat struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

// VisualCue marks a suspicious area of a still image.
type VisualCue struct {
	Description string      `json:"description"`
	Area        BoundingBox `json:"area"`
}

// VideoVisualCue marks a suspicious area of a video frame, located in time.
type VideoVisualCue struct {
	Description string      `json:"description"`
	Timestamp   float64     `json:"timestamp"` // seconds from the start of the video
	Area        BoundingBox `json:"area"`
}

// PdfVisualCue marks a suspicious visual element on a document page.
type PdfVisualCue struct {
	Description string      `json:"description"`
	Page        int         `json:"page"`
	Area        BoundingBox `json:"area"`
}

// DetectedLink is a hyperlink found inside a document with its assessed risk.
type DetectedLink struct {
	URL  string    `json:"url"`
	Risk RiskLevel `json:"risk"`
}

// -- Reports --

// SafetyReport is the verdict for a URL.
type SafetyReport struct {
	SafetyLevel SafetyLevel `json:"safetyLevel"`
	Summary     string      `json:"summary"`
	Threats     []Threat    `json:"threats"`
	TrustScore  int         `json:"trustScore"`
	KeyPoints   []string    `json:"keyPoints"`
}

// ImageAnalysisReport is the verdict for a still image.
type ImageAnalysisReport struct {
	Summary               string      `json:"summary"`
	DeepfakeConfidence    float64     `json:"deepfakeConfidence"`
	AIGeneratedConfidence float64     `json:"aiGeneratedConfidence"`
	ManipulationSigns     []string    `json:"manipulationSigns"`
	TrustScore            int         `json:"trustScore"`
	KeyPoints             []string    `json:"keyPoints"`
	VisualCues            []VisualCue `json:"visualCues"`
}

// VideoAnalysisReport is the verdict for a sampled frame sequence.
type VideoAnalysisReport struct {
	Summary                 string           `json:"summary"`
	DeepfakeConfidence      float64          `json:"deepfakeConfidence"`
	ManipulationSigns       []string         `json:"manipulationSigns"`
	TrustScore              int              `json:"trustScore"`
	KeyPoints               []string         `json:"keyPoints"`
	AudioAnalysisSummary    string           `json:"audioAnalysisSummary"`
	TemporalInconsistencies []string         `json:"temporalInconsistencies"`
	VisualCues              []VideoVisualCue `json:"visualCues"`
}

// PdfAnalysisReport is the verdict for a document.
type PdfAnalysisReport struct {
	Summary                  string         `json:"summary"`
	TrustScore               int            `json:"trustScore"`
	DetectedLinks            []DetectedLink `json:"detectedLinks"`
	MalwareIndicators        []string       `json:"malwareIndicators"`
	SocialEngineeringTactics []string       `json:"socialEngineeringTactics"`
	KeyPoints                []string       `json:"keyPoints"`
	VisualCues               []PdfVisualCue `json:"visualCues"`
}
