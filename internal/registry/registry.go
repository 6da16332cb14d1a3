// internal/registry/registry.go
package registry

import (
	"fmt"

	"google.golang.org/genai"

	"github.com/xkilldash9x/guardian/api/schemas"
)

// -- Shared schema fragments --

func str(desc string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeString, Description: desc}
}

func integer(desc string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeInteger, Description: desc}
}

func number(desc string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeNumber, Description: desc}
}

func stringList(desc string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}, Description: desc}
}

func boundingBox(relativeTo string) *genai.Schema {
	return &genai.Schema{
		Type:  genai.TypeArray,
		Items: &genai.Schema{Type: genai.TypeNumber},
		Description: "A bounding box for the suspicious area, represented as [topLeftX, topLeftY, width, height]. " +
			"All values are percentages (0-100) relative to the " + relativeTo + " dimensions.",
	}
}

func cueList(item *genai.Schema, desc string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeArray, Items: item, Description: desc}
}

// -- Per-kind schemas --

var urlSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"safetyLevel": {Type: genai.TypeString, Enum: schemas.EnumStrings(schemas.SafetyLevels)},
		"summary":     str(""),
		"threats": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"type":        str(""),
					"description": str(""),
				},
				Required: []string{"type", "description"},
			},
		},
		"trustScore": integer("A score from 0 (very untrustworthy) to 100 (very trustworthy)."),
		"keyPoints":  stringList("A bulleted list of 3-4 key findings."),
	},
	Required: []string{"safetyLevel", "summary", "threats", "trustScore", "keyPoints"},
}

var imageSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"summary":               str("A brief summary of the findings."),
		"deepfakeConfidence":    number("A confidence score (0-100) on whether the image is a deepfake."),
		"aiGeneratedConfidence": number("A confidence score (0-100) on whether the image is AI-generated."),
		"manipulationSigns":     stringList("Observed manipulation signs (e.g. 'Unnatural lighting', 'Distorted background')."),
		"trustScore":            integer("A score from 0 (likely manipulated) to 100 (likely authentic)."),
		"keyPoints":             stringList("A bulleted list of 3-4 key findings about the image's authenticity."),
		"visualCues": cueList(&genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"description": str("What is suspicious about this area."),
				"area":        boundingBox("image"),
			},
			Required: []string{"description", "area"},
		}, "Areas of the image that show signs of manipulation. Return an empty array if none are found."),
	},
	Required: []string{"summary", "deepfakeConfidence", "aiGeneratedConfidence", "manipulationSigns", "trustScore", "keyPoints", "visualCues"},
}

var videoSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"summary":              str("A brief summary of the video analysis findings."),
		"deepfakeConfidence":   number("A confidence score (0-100) on whether the video content is a deepfake."),
		"manipulationSigns":    stringList("Observed visual manipulation signs (e.g. 'Unnatural facial movements')."),
		"trustScore":           integer("An overall score from 0 (likely manipulated) to 100 (likely authentic)."),
		"keyPoints":            stringList("A bulleted list of 3-4 key findings about the video's authenticity."),
		"audioAnalysisSummary": str("Audio track assessment inferred from visual evidence such as lip sync, since the audio itself is not available."),
		"temporalInconsistencies": stringList(
			"Inconsistencies observed over time (e.g. 'Objects disappearing', 'Lighting changes between frames')."),
		"visualCues": cueList(&genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"description": str("What is suspicious about this area."),
				"timestamp":   number("Approximate time in seconds where the suspicious event occurs, inferred from the frame sequence."),
				"area":        boundingBox("video frame"),
			},
			Required: []string{"description", "timestamp", "area"},
		}, "Areas in the video that show signs of manipulation. Return an empty array if none are found."),
	},
	Required: []string{"summary", "deepfakeConfidence", "manipulationSigns", "trustScore", "keyPoints", "audioAnalysisSummary", "temporalInconsistencies", "visualCues"},
}

var pdfSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"summary":    str("A brief summary of the PDF analysis findings, starting with a clear conclusion."),
		"trustScore": integer("An overall score from 0 (likely malicious) to 100 (likely safe)."),
		"detectedLinks": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"url":  str(""),
					"risk": {Type: genai.TypeString, Enum: schemas.EnumStrings(schemas.RiskLevels)},
				},
				Required: []string{"url", "risk"},
			},
			Description: "All URLs found in the PDF and their assessed risk level.",
		},
		"malwareIndicators":        stringList("Observed signs of potential malware (e.g. 'Obfuscated scripts')."),
		"socialEngineeringTactics": stringList("Observed psychological manipulation tactics (e.g. 'Urgent language', 'Impersonation')."),
		"keyPoints":                stringList("A bulleted list of 3-4 key findings about the PDF's safety."),
		"visualCues": cueList(&genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"description": str("What is suspicious about this visual element."),
				"page":        integer("The page number where the suspicious element appears."),
				"area":        boundingBox("page"),
			},
			Required: []string{"description", "page", "area"},
		}, "Visual elements in the PDF that appear suspicious. Return an empty array if none are found."),
	},
	Required: []string{"summary", "trustScore", "detectedLinks", "malwareIndicators", "socialEngineeringTactics", "keyPoints", "visualCues"},
}

// loadBearing lists the fields whose absence makes a response unusable. They
// are re-checked after decoding because the model does not always honor the
// schema's required list.
var loadBearing = map[schemas.TaskKind][]string{
	schemas.KindURL:   {"safetyLevel", "summary"},
	schemas.KindImage: {"deepfakeConfidence", "visualCues"},
	schemas.KindVideo: {"deepfakeConfidence", "summary"},
	schemas.KindPDF:   {"summary", "trustScore"},
}

var byKind = map[schemas.TaskKind]*genai.Schema{
	schemas.KindURL:   urlSchema,
	schemas.KindImage: imageSchema,
	schemas.KindVideo: videoSchema,
	schemas.KindPDF:   pdfSchema,
}

// For returns the response schema for an analysis kind. The returned value is
// shared and must not be modified.
func For(kind schemas.TaskKind) (*genai.Schema, error) {
	s, ok := byKind[kind]
	if !ok {
		return nil, fmt.Errorf("no response schema registered for task kind %q", kind)
	}
	return s, nil
}

// Required returns a copy of the top-level required fields for a kind.
func Required(kind schemas.TaskKind) ([]string, error) {
	s, err := For(kind)
	if err != nil {
		return nil, err
	}
	return append([]string(nil), s.Required...), nil
}

// LoadBearing returns a copy of the fields the validator insists on for a kind.
func LoadBearing(kind schemas.TaskKind) ([]string, error) {
	fields, ok := loadBearing[kind]
	if !ok {
		return nil, fmt.Errorf("no load-bearing fields registered for task kind %q", kind)
	}
	return append([]string(nil), fields...), nil
}
