// File: api/schemas/requests.go
package schemas

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultLanguage is used when a request does not name a target language.
const DefaultLanguage = "English"

// FrameMIMEType is the MIME type of every sampled video frame.
const FrameMIMEType = "image/jpeg"

// PDFMIMEType is the MIME type attached to document payloads.
const PDFMIMEType = "application/pdf"

// ErrInvalidRequest is returned when a payload does not match its task kind.
var ErrInvalidRequest = errors.New("invalid analysis request")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidRequest, fmt.Sprintf(format, args...))
}

// URLRequest asks for a safety verdict on a URL.
type URLRequest struct {
	URL      string `json:"url"`
	Language string `json:"language,omitempty"`
}

// Validate checks the payload shape.
func (r URLRequest) Validate() error {
	if strings.TrimSpace(r.URL) == "" {
		return invalid("url must not be empty")
	}
	return nil
}

// ImageRequest carries a base64 encoded still image.
type ImageRequest struct {
	Data     string `json:"data"`
	MIMEType string `json:"mimeType"`
	Language string `json:"language,omitempty"`
}

// Validate checks the payload shape.
func (r ImageRequest) Validate() error {
	if r.Data == "" {
		return invalid("image data must not be empty")
	}
	if !strings.HasPrefix(r.MIMEType, "image/") {
		return invalid("image mime type %q is not an image type", r.MIMEType)
	}
	return nil
}

// VideoRequest carries frames sampled evenly from a video, in playback order,
// each a base64 encoded JPEG, plus the video's total duration in seconds.
type VideoRequest struct {
	Frames   []string `json:"frames"`
	Duration float64  `json:"duration"`
	Language string   `json:"language,omitempty"`
}

// Validate checks the payload shape.
func (r VideoRequest) Validate() error {
	if len(r.Frames) == 0 {
		return invalid("at least one video frame is required")
	}
	for i, f := range r.Frames {
		if f == "" {
			return invalid("video frame %d is empty", i)
		}
	}
	if r.Duration <= 0 {
		return invalid("video duration must be positive, got %v", r.Duration)
	}
	return nil
}

// PDFRequest carries a base64 encoded PDF document.
type PDFRequest struct {
	Data     string `json:"data"`
	Language string `json:"language,omitempty"`
}

// Validate checks the payload shape.
func (r PDFRequest) Validate() error {
	if r.Data == "" {
		return invalid("pdf data must not be empty")
	}
	return nil
}

// AnalysisRequest is the transport envelope for a single one-shot analysis.
// Which payload fields are meaningful depends on Kind.
type AnalysisRequest struct {
	Kind     TaskKind `json:"kind"`
	Language string   `json:"language,omitempty"`
	URL      string   `json:"url,omitempty"`
	Data     string   `json:"data,omitempty"`
	MIMEType string   `json:"mimeType,omitempty"`
	Frames   []string `json:"frames,omitempty"`
	Duration float64  `json:"duration,omitempty"`
}

// Validate checks that the payload matches the task kind.
func (r AnalysisRequest) Validate() error {
	switch r.Kind {
	case KindURL:
		return r.URLRequest().Validate()
	case KindImage:
		return r.ImageRequest().Validate()
	case KindVideo:
		return r.VideoRequest().Validate()
	case KindPDF:
		return r.PDFRequest().Validate()
	case KindChat:
		return invalid("chat is not a one-shot analysis")
	default:
		return invalid("unknown task kind %q", r.Kind)
	}
}

func (r AnalysisRequest) URLRequest() URLRequest {
	return URLRequest{URL: r.URL, Language: r.Language}
}

func (r AnalysisRequest) ImageRequest() ImageRequest {
	return ImageRequest{Data: r.Data, MIMEType: r.MIMEType, Language: r.Language}
}

func (r AnalysisRequest) VideoRequest() VideoRequest {
	return VideoRequest{Frames: r.Frames, Duration: r.Duration, Language: r.Language}
}

func (r AnalysisRequest) PDFRequest() PDFRequest {
	return PDFRequest{Data: r.Data, Language: r.Language}
}

// LanguageOrDefault returns lang, or DefaultLanguage when it is blank.
func LanguageOrDefault(lang string) string {
	if l := strings.TrimSpace(lang); l != "" {
		return l
	}
	return DefaultLanguage
}
