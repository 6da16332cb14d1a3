// internal/validation/sanitize.go
package validation

import (
	"fmt"

	"github.com/xkilldash9x/guardian/api/schemas"
)

const (
	minPercent = 0.0
	maxPercent = 100.0
)

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// nonNil returns an empty slice in place of nil so reports always serialize
// lists as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func sanitizeBox(box schemas.BoundingBox, field string, index int) (schemas.BoundingBox, error) {
	if len(box) != schemas.BoundingBoxLen {
		return nil, fmt.Errorf("%w: %s[%d] has %d values, want %d", ErrBadBoundingBox, field, index, len(box), schemas.BoundingBoxLen)
	}
	out := make(schemas.BoundingBox, schemas.BoundingBoxLen)
	for i, v := range box {
		out[i] = clamp(v, minPercent, maxPercent)
	}
	return out, nil
}

// SanitizeURL enforces the value ranges of a URL report in place.
func SanitizeURL(r *schemas.SafetyReport) error {
	if !r.SafetyLevel.Valid() {
		return fmt.Errorf("%w: safetyLevel %q", ErrInvalidEnum, r.SafetyLevel)
	}
	r.TrustScore = clampScore(r.TrustScore)
	r.Threats = nonNil(r.Threats)
	r.KeyPoints = nonNil(r.KeyPoints)
	return nil
}

// SanitizeImage enforces the value ranges of an image report in place.
func SanitizeImage(r *schemas.ImageAnalysisReport) error {
	r.DeepfakeConfidence = clamp(r.DeepfakeConfidence, minPercent, maxPercent)
	r.AIGeneratedConfidence = clamp(r.AIGeneratedConfidence, minPercent, maxPercent)
	r.TrustScore = clampScore(r.TrustScore)
	r.ManipulationSigns = nonNil(r.ManipulationSigns)
	r.KeyPoints = nonNil(r.KeyPoints)
	r.VisualCues = nonNil(r.VisualCues)

	for i := range r.VisualCues {
		box, err := sanitizeBox(r.VisualCues[i].Area, "visualCues", i)
		if err != nil {
			return err
		}
		r.VisualCues[i].Area = box
	}
	return nil
}

// SanitizeVideo enforces the value ranges of a video report in place.
func SanitizeVideo(r *schemas.VideoAnalysisReport, duration float64) error {
	r.DeepfakeConfidence = clamp(r.DeepfakeConfidence, minPercent, maxPercent)
	r.TrustScore = clampScore(r.TrustScore)
	r.ManipulationSigns = nonNil(r.ManipulationSigns)
	r.KeyPoints = nonNil(r.KeyPoints)
	r.TemporalInconsistencies = nonNil(r.TemporalInconsistencies)
	r.VisualCues = nonNil(r.VisualCues)

	if duration < 0 {
		duration = 0
	}
	for i := range r.VisualCues {
		box, err := sanitizeBox(r.VisualCues[i].Area, "visualCues", i)
		if err != nil {
			return err
		}
		r.VisualCues[i].Area = box
		r.VisualCues[i].Timestamp = clamp(r.VisualCues[i].Timestamp, 0, duration)
	}
	return nil
}

// SanitizePDF enforces the value ranges of a document report in place. Link
// risks outside the declared set become Unknown.
func SanitizePDF(r *schemas.PdfAnalysisReport) error {
	r.TrustScore = clampScore(r.TrustScore)
	r.DetectedLinks = nonNil(r.DetectedLinks)
	r.MalwareIndicators = nonNil(r.MalwareIndicators)
	r.SocialEngineeringTactics = nonNil(r.SocialEngineeringTactics)
	r.KeyPoints = nonNil(r.KeyPoints)
	r.VisualCues = nonNil(r.VisualCues)

	for i := range r.DetectedLinks {
		if !r.DetectedLinks[i].Risk.Valid() {
			r.DetectedLinks[i].Risk = schemas.RiskUnknown
		}
	}
	for i := range r.VisualCues {
		box, err := sanitizeBox(r.VisualCues[i].Area, "visualCues", i)
		if err != nil {
			return err
		}
		r.VisualCues[i].Area = box
		if r.VisualCues[i].Page < 1 {
			r.VisualCues[i].Page = 1
		}
	}
	return nil
}
