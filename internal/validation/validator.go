// internal/validation/validator.go
package validation

import (
	"errors"
	"fmt"
	"strings"

	json "github.com/json-iterator/go"

	"github.com/xkilldash9x/guardian/api/schemas"
	"github.com/xkilldash9x/guardian/internal/llmutil"
	"github.com/xkilldash9x/guardian/internal/registry"
)

var (
	// ErrMalformed means the response is not a JSON object of the expected shape.
	ErrMalformed = errors.New("malformed model response")
	// ErrMissingField means a load-bearing field is absent, null or blank.
	ErrMissingField = errors.New("model response is missing a required field")
	// ErrBadBoundingBox means a visual cue does not carry exactly four numbers.
	ErrBadBoundingBox = errors.New("visual cue bounding box is malformed")
	// ErrInvalidEnum means an enumerated field holds a value outside its set.
	ErrInvalidEnum = errors.New("model response holds an unknown enum value")
)

// Decode turns raw model output into a T after confirming the kind's
// load-bearing fields are present. A field that is absent, null, or a blank
// string counts as missing. Decode performs no range sanitization; use the
// kind-specific helpers for that.
func Decode[T any](raw string, kind schemas.TaskKind) (*T, error) {
	body, err := llmutil.ExtractJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	data := []byte(body)
	if !json.Valid(data) || json.Get(data).ValueType() != json.ObjectValue {
		return nil, fmt.Errorf("%w: response is not a JSON object", ErrMalformed)
	}

	required, err := registry.LoadBearing(kind)
	if err != nil {
		return nil, err
	}
	for _, name := range required {
		if !present(json.Get(data, name)) {
			return nil, fmt.Errorf("%w: %s", ErrMissingField, name)
		}
	}

	out, err := llmutil.ParseJSONResponse[T](body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return out, nil
}

// present reports whether a field carries a usable value.
func present(v json.Any) bool {
	switch v.ValueType() {
	case json.InvalidValue, json.NilValue:
		return false
	case json.StringValue:
		return strings.TrimSpace(v.ToString()) != ""
	default:
		return true
	}
}

// DecodeURL decodes and sanitizes a URL safety report.
func DecodeURL(raw string) (*schemas.SafetyReport, error) {
	r, err := Decode[schemas.SafetyReport](raw, schemas.KindURL)
	if err != nil {
		return nil, err
	}
	if err := SanitizeURL(r); err != nil {
		return nil, err
	}
	return r, nil
}

// DecodeImage decodes and sanitizes an image report.
func DecodeImage(raw string) (*schemas.ImageAnalysisReport, error) {
	r, err := Decode[schemas.ImageAnalysisReport](raw, schemas.KindImage)
	if err != nil {
		return nil, err
	}
	if err := SanitizeImage(r); err != nil {
		return nil, err
	}
	return r, nil
}

// DecodeVideo decodes and sanitizes a video report. Cue timestamps are
// clamped to [0, duration].
func DecodeVideo(raw string, duration float64) (*schemas.VideoAnalysisReport, error) {
	r, err := Decode[schemas.VideoAnalysisReport](raw, schemas.KindVideo)
	if err != nil {
		return nil, err
	}
	if err := SanitizeVideo(r, duration); err != nil {
		return nil, err
	}
	return r, nil
}

// DecodePDF decodes and sanitizes a document report.
func DecodePDF(raw string) (*schemas.PdfAnalysisReport, error) {
	r, err := Decode[schemas.PdfAnalysisReport](raw, schemas.KindPDF)
	if err != nil {
		return nil, err
	}
	if err := SanitizePDF(r); err != nil {
		return nil, err
	}
	return r, nil
}
