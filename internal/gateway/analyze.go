// internal/gateway/analyze.go
package gateway

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/xkilldash9x/guardian/api/schemas"
	"github.com/xkilldash9x/guardian/internal/llmutil"
	"github.com/xkilldash9x/guardian/internal/prompts"
	"github.com/xkilldash9x/guardian/internal/registry"
	"github.com/xkilldash9x/guardian/internal/validation"
)

// MsgAnalysisComplete is the final progress message of every successful analysis.
const MsgAnalysisComplete = "Analysis complete."

// analysisCall describes one oracle round trip.
type analysisCall[T any] struct {
	kind     schemas.TaskKind
	start    string
	parts    []schemas.Part
	decode   func(raw string) (*T, error)
	progress schemas.ProgressFunc
}

// run performs exactly one oracle call and validates the result. A report is
// either returned whole or not at all.
func run[T any](ctx context.Context, g *Gateway, c analysisCall[T]) (*T, error) {
	c.progress.Report(c.start)

	schema, err := registry.For(c.kind)
	if err != nil {
		return nil, g.fail(c.kind, err)
	}

	raw, err := g.oracle.Generate(ctx, schemas.GenerationRequest{
		Model:           g.model,
		Parts:           c.parts,
		ResponseSchema:  schema,
		ForceJSON:       true,
		MinimalThinking: true,
	})
	if err != nil {
		return nil, g.fail(c.kind, fmt.Errorf("oracle call failed: %w", err))
	}

	report, err := c.decode(raw)
	if err != nil {
		g.logger.Debug("Rejected model response", zap.String("kind", string(c.kind)), zap.String("response", llmutil.Truncate(raw, 1000)))
		return nil, g.fail(c.kind, fmt.Errorf("response failed validation: %w", err))
	}

	c.progress.Report(MsgAnalysisComplete)
	return report, nil
}

// AnalyzeURL returns a safety verdict for a URL.
func (g *Gateway) AnalyzeURL(ctx context.Context, req schemas.URLRequest, progress schemas.ProgressFunc) (*schemas.SafetyReport, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return run(ctx, g, analysisCall[schemas.SafetyReport]{
		kind:     schemas.KindURL,
		start:    "Analyzing URL...",
		parts:    []schemas.Part{schemas.TextPart(prompts.URL(req.URL, req.Language))},
		decode:   validation.DecodeURL,
		progress: progress,
	})
}

// AnalyzeImage returns a forensic verdict for a still image.
func (g *Gateway) AnalyzeImage(ctx context.Context, req schemas.ImageRequest, progress schemas.ProgressFunc) (*schemas.ImageAnalysisReport, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	data, err := decodePayload("image data", req.Data)
	if err != nil {
		return nil, err
	}
	return run(ctx, g, analysisCall[schemas.ImageAnalysisReport]{
		kind:  schemas.KindImage,
		start: "Analyzing image...",
		parts: []schemas.Part{
			schemas.BlobPart(data, req.MIMEType),
			schemas.TextPart(prompts.Image(req.Language)),
		},
		decode:   validation.DecodeImage,
		progress: progress,
	})
}

// AnalyzeVideo returns a forensic verdict for frames sampled evenly from a
// video. Frames are sent in the order given.
func (g *Gateway) AnalyzeVideo(ctx context.Context, req schemas.VideoRequest, progress schemas.ProgressFunc) (*schemas.VideoAnalysisReport, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if g.maxFrames > 0 && len(req.Frames) > g.maxFrames {
		return nil, fmt.Errorf("%w: %d frames exceeds the limit of %d", schemas.ErrInvalidRequest, len(req.Frames), g.maxFrames)
	}

	parts := make([]schemas.Part, 0, len(req.Frames)+1)
	for i, f := range req.Frames {
		data, err := decodePayload(fmt.Sprintf("frame %d", i), f)
		if err != nil {
			return nil, err
		}
		parts = append(parts, schemas.BlobPart(data, schemas.FrameMIMEType))
	}
	parts = append(parts, schemas.TextPart(prompts.Video(len(req.Frames), req.Duration, req.Language)))

	return run(ctx, g, analysisCall[schemas.VideoAnalysisReport]{
		kind:  schemas.KindVideo,
		start: fmt.Sprintf("Analyzing %d video frames... This may take a moment.", len(req.Frames)),
		parts: parts,
		decode: func(raw string) (*schemas.VideoAnalysisReport, error) {
			return validation.DecodeVideo(raw, req.Duration)
		},
		progress: progress,
	})
}

// AnalyzePDF returns a security verdict for a document.
func (g *Gateway) AnalyzePDF(ctx context.Context, req schemas.PDFRequest, progress schemas.ProgressFunc) (*schemas.PdfAnalysisReport, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	data, err := decodePayload("pdf data", req.Data)
	if err != nil {
		return nil, err
	}
	return run(ctx, g, analysisCall[schemas.PdfAnalysisReport]{
		kind:  schemas.KindPDF,
		start: "Analyzing PDF document...",
		parts: []schemas.Part{
			schemas.BlobPart(data, schemas.PDFMIMEType),
			schemas.TextPart(prompts.PDF(req.Language)),
		},
		decode:   validation.DecodePDF,
		progress: progress,
	})
}

// Analyze dispatches a transport envelope to the matching operation and
// returns the report as a pointer to its concrete type.
func (g *Gateway) Analyze(ctx context.Context, req schemas.AnalysisRequest, progress schemas.ProgressFunc) (any, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	switch req.Kind {
	case schemas.KindURL:
		return report(g.AnalyzeURL(ctx, req.URLRequest(), progress))
	case schemas.KindImage:
		return report(g.AnalyzeImage(ctx, req.ImageRequest(), progress))
	case schemas.KindVideo:
		return report(g.AnalyzeVideo(ctx, req.VideoRequest(), progress))
	case schemas.KindPDF:
		return report(g.AnalyzePDF(ctx, req.PDFRequest(), progress))
	default:
		return nil, fmt.Errorf("%w: unsupported kind %q", schemas.ErrInvalidRequest, req.Kind)
	}
}

// report drops the typed nil a failed operation returns, so callers can rely
// on a nil interface when err is set.
func report[T any](r *T, err error) (any, error) {
	if err != nil {
		return nil, err
	}
	return r, nil
}
