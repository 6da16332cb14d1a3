// internal/gateway/gateway.go
package gateway

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/xkilldash9x/guardian/api/schemas"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

// ErrAnalysisFailed matches every *AnalysisError via errors.Is.
var ErrAnalysisFailed = errors.New("analysis failed")

// AnalysisError is the single failure callers see when an analysis could not
// produce a validated report. The underlying cause is logged, not carried.
type AnalysisError struct {
	Kind schemas.TaskKind
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("failed to get a valid %s analysis from the AI service", e.Kind.Label())
}

// Is reports whether target is ErrAnalysisFailed.
func (e *AnalysisError) Is(target error) bool {
	return target == ErrAnalysisFailed
}

// Gateway turns user artifacts into validated reports by way of an Oracle.
// It holds no per-call state and is safe for concurrent use.
type Gateway struct {
	oracle    schemas.Oracle
	model     string
	maxFrames int
	logger    *zap.Logger
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithModel sets the model name sent with every oracle call.
func WithModel(model string) Option {
	return func(g *Gateway) {
		if model != "" {
			g.model = model
		}
	}
}

// WithLogger sets the logger. The gateway names it "gateway".
func WithLogger(logger *zap.Logger) Option {
	return func(g *Gateway) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithMaxVideoFrames bounds how many frames a video request may carry. Zero
// means unbounded.
func WithMaxVideoFrames(n int) Option {
	return func(g *Gateway) {
		if n >= 0 {
			g.maxFrames = n
		}
	}
}

// New creates a Gateway around an oracle.
func New(oracle schemas.Oracle, opts ...Option) *Gateway {
	g := &Gateway{
		oracle: oracle,
		model:  DefaultModel,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = g.logger.Named("gateway")
	return g
}

// fail logs the cause and returns the uniform error for kind.
func (g *Gateway) fail(kind schemas.TaskKind, cause error) error {
	g.logger.Error("Analysis failed",
		zap.String("kind", string(kind)),
		zap.Error(cause),
	)
	return &AnalysisError{Kind: kind}
}

// decodePayload decodes standard base64, tolerating a data URL prefix such as
// "data:image/png;base64,".
func decodePayload(field, data string) ([]byte, error) {
	if strings.HasPrefix(data, "data:") {
		if i := strings.Index(data, ","); i != -1 {
			data = data[i+1:]
		}
	}
	b, err := base64.StdEncoding.DecodeString(strings.TrimSpace(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s is not valid base64: %v", schemas.ErrInvalidRequest, field, err)
	}
	if len(b) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", schemas.ErrInvalidRequest, field)
	}
	return b, nil
}
