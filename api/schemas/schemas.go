// File: api/schemas/schemas.go
package schemas

import (
	"fmt"
	"strings"
)

// TaskKind identifies the kind of artifact an analysis request carries.
type TaskKind string

const (
	KindURL   TaskKind = "url"
	KindImage TaskKind = "image"
	KindVideo TaskKind = "video"
	KindPDF   TaskKind = "pdf"
	KindChat  TaskKind = "chat"
)

// AnalysisKinds lists the one-shot analysis kinds, in a stable order.
var AnalysisKinds = []TaskKind{KindURL, KindImage, KindVideo, KindPDF}

// ParseTaskKind converts a user supplied string into a TaskKind.
func ParseTaskKind(s string) (TaskKind, error) {
	switch k := TaskKind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindURL, KindImage, KindVideo, KindPDF, KindChat:
		return k, nil
	default:
		return "", fmt.Errorf("unknown task kind %q", s)
	}
}

// Label is the human readable name used in progress and error messages.
func (k TaskKind) Label() string {
	switch k {
	case KindURL:
		return "URL"
	case KindPDF:
		return "PDF"
	default:
		return string(k)
	}
}

// SafetyLevel is the overall verdict for a URL.
type SafetyLevel string

const (
	SafetySafe     SafetyLevel = "Safe"
	SafetyLow      SafetyLevel = "Low Risk"
	SafetyMedium   SafetyLevel = "Medium Risk"
	SafetyHigh     SafetyLevel = "High Risk"
	SafetyCritical SafetyLevel = "Critical"
)

// SafetyLevels is the enumeration advertised to the model.
var SafetyLevels = []SafetyLevel{SafetySafe, SafetyLow, SafetyMedium, SafetyHigh, SafetyCritical}

// Valid reports whether the level is one of the declared values.
func (s SafetyLevel) Valid() bool {
	for _, l := range SafetyLevels {
		if s == l {
			return true
		}
	}
	return false
}

// RiskLevel is the assessed risk of a link found inside a document.
type RiskLevel string

const (
	RiskHigh    RiskLevel = "High"
	RiskMedium  RiskLevel = "Medium"
	RiskLow     RiskLevel = "Low"
	RiskUnknown RiskLevel = "Unknown"
)

// RiskLevels is the enumeration advertised to the model.
var RiskLevels = []RiskLevel{RiskHigh, RiskMedium, RiskLow, RiskUnknown}

// Valid reports whether the level is one of the declared values.
func (r RiskLevel) Valid() bool {
	for _, l := range RiskLevels {
		if r == l {
			return true
		}
	}
	return false
}

// ChatMode controls how verbose chat answers are.
type ChatMode string

const (
	ModeDetailed ChatMode = "Detailed"
	ModeConcise  ChatMode = "Concise"
)

// ParseChatMode accepts the two modes case-insensitively.
func ParseChatMode(s string) (ChatMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "detailed":
		return ModeDetailed, nil
	case "concise":
		return ModeConcise, nil
	default:
		return "", fmt.Errorf("unknown chat mode %q (expected %s or %s)", s, ModeDetailed, ModeConcise)
	}
}

// ProgressFunc receives human readable stage descriptions while an analysis runs.
// It is invoked synchronously on the calling goroutine.
type ProgressFunc func(message string)

// Report calls the sink if one is set.
func (p ProgressFunc) Report(message string) {
	if p != nil {
		p(message)
	}
}

// EnumStrings converts a typed enum slice into the plain strings a response schema needs.
func EnumStrings[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}
