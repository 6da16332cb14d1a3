// File: cmd/analyze.go
package cmd

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xkilldash9x/guardian/api/schemas"
	"github.com/xkilldash9x/guardian/internal/gateway"
	"github.com/xkilldash9x/guardian/internal/observability"
)

// maxFrameReaders bounds concurrent frame file reads.
const maxFrameReaders = 8

type analyzeOptions struct {
	lang  string
	quiet bool
}

func newAnalyzeCmd(provider oracleProvider) *cobra.Command {
	opts := &analyzeOptions{}

	analyzeCmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run a one-shot threat analysis and print the report as JSON",
		Long: `Sends a URL, image, sampled video frames or a PDF document to the model
and prints the structured report on stdout. Progress messages go to stderr.`,
	}
	analyzeCmd.PersistentFlags().StringVarP(&opts.lang, "lang", "l", "", "language of the report (default from config)")
	analyzeCmd.PersistentFlags().BoolVarP(&opts.quiet, "quiet", "q", false, "suppress progress messages")

	analyzeCmd.AddCommand(newAnalyzeURLCmd(provider, opts))
	analyzeCmd.AddCommand(newAnalyzeImageCmd(provider, opts))
	analyzeCmd.AddCommand(newAnalyzeVideoCmd(provider, opts))
	analyzeCmd.AddCommand(newAnalyzePDFCmd(provider, opts))
	return analyzeCmd
}

func newAnalyzeURLCmd(provider oracleProvider, opts *analyzeOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "url [url]",
		Short: "Assess whether a URL is safe to visit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalysis(cmd, provider, opts, func(ctx context.Context, gw *gateway.Gateway, lang string, progress schemas.ProgressFunc) (any, error) {
				return gw.AnalyzeURL(ctx, schemas.URLRequest{URL: args[0], Language: lang}, progress)
			})
		},
	}
}

func newAnalyzeImageCmd(provider oracleProvider, opts *analyzeOptions) *cobra.Command {
	var mimeType string
	cmd := &cobra.Command{
		Use:   "image [file]",
		Short: "Check an image for deepfake or AI generation signs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readFile(args[0])
			if err != nil {
				return err
			}
			if mimeType == "" {
				if mimeType, err = detectImageType(args[0], data); err != nil {
					return err
				}
			}
			req := schemas.ImageRequest{Data: base64.StdEncoding.EncodeToString(data), MIMEType: mimeType}
			return runAnalysis(cmd, provider, opts, func(ctx context.Context, gw *gateway.Gateway, lang string, progress schemas.ProgressFunc) (any, error) {
				req.Language = lang
				return gw.AnalyzeImage(ctx, req, progress)
			})
		},
	}
	cmd.Flags().StringVar(&mimeType, "mime", "", "image MIME type (detected from content when empty)")
	return cmd
}

func newAnalyzeVideoCmd(provider oracleProvider, opts *analyzeOptions) *cobra.Command {
	var duration float64
	cmd := &cobra.Command{
		Use:   "video [frames-dir]",
		Short: "Check sampled video frames for manipulation",
		Long: `Analyzes frames already sampled evenly from a video. The directory must hold
JPEG files whose names sort in playback order, for example frame_000.jpg.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			frames, err := loadFrames(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			req := schemas.VideoRequest{Frames: frames, Duration: duration}
			return runAnalysis(cmd, provider, opts, func(ctx context.Context, gw *gateway.Gateway, lang string, progress schemas.ProgressFunc) (any, error) {
				req.Language = lang
				return gw.AnalyzeVideo(ctx, req, progress)
			})
		},
	}
	cmd.Flags().Float64VarP(&duration, "duration", "d", 0, "total video duration in seconds")
	_ = cmd.MarkFlagRequired("duration")
	return cmd
}

func newAnalyzePDFCmd(provider oracleProvider, opts *analyzeOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "pdf [file]",
		Short: "Check a PDF document for phishing and malware indicators",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readFile(args[0])
			if err != nil {
				return err
			}
			req := schemas.PDFRequest{Data: base64.StdEncoding.EncodeToString(data)}
			return runAnalysis(cmd, provider, opts, func(ctx context.Context, gw *gateway.Gateway, lang string, progress schemas.ProgressFunc) (any, error) {
				req.Language = lang
				return gw.AnalyzePDF(ctx, req, progress)
			})
		},
	}
}

type analysisFunc func(ctx context.Context, gw *gateway.Gateway, lang string, progress schemas.ProgressFunc) (any, error)

// runAnalysis builds the gateway, runs fn and writes the report to stdout.
func runAnalysis(cmd *cobra.Command, provider oracleProvider, opts *analyzeOptions, fn analysisFunc) error {
	ctx := cmd.Context()
	cfg, err := getConfigFromContext(ctx)
	if err != nil {
		return err
	}

	gw, cleanup, err := newGateway(ctx, cfg, provider)
	if err != nil {
		return fmt.Errorf("failed to initialize LLM client: %w", err)
	}
	defer cleanup()

	lang := opts.lang
	if lang == "" {
		lang = cfg.Analysis().DefaultLanguage
	}

	var progress schemas.ProgressFunc
	if !opts.quiet {
		progress = func(msg string) { fmt.Fprintln(cmd.ErrOrStderr(), msg) }
	}

	report, err := fn(ctx, gw, lang, progress)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), report)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

func readFile(path string) ([]byte, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("failed to expand path %s: %w", path, err)
	}
	data, err := os.ReadFile(expanded)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", expanded, err)
	}
	return data, nil
}

// detectImageType prefers content sniffing and falls back to the file
// extension. Files that are neither are rejected rather than guessed at.
func detectImageType(path string, data []byte) (string, error) {
	if ct := http.DetectContentType(data); strings.HasPrefix(ct, "image/") {
		return ct, nil
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".jpg", ".jpeg":
		return schemas.FrameMIMEType, nil
	case ".png":
		return "image/png", nil
	case ".webp":
		return "image/webp", nil
	case ".gif":
		return "image/gif", nil
	case ".heic":
		return "image/heic", nil
	default:
		return "", fmt.Errorf("%w: cannot determine an image type for %s; pass --mime", schemas.ErrInvalidRequest, filepath.Base(path))
	}
}

// loadFrames reads every JPEG in dir, sorted by name, and returns them base64 encoded.
func loadFrames(ctx context.Context, dir string) ([]string, error) {
	expanded, err := homedir.Expand(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to expand path %s: %w", dir, err)
	}
	entries, err := os.ReadDir(expanded)
	if err != nil {
		return nil, fmt.Errorf("failed to read frames directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".jpg", ".jpeg":
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no .jpg frames found in %s", expanded)
	}
	sort.Strings(names)

	frames := make([]string, len(names))
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(maxFrameReaders)
	for i, name := range names {
		g.Go(func() error {
			data, err := os.ReadFile(filepath.Join(expanded, name))
			if err != nil {
				return fmt.Errorf("failed to read frame %s: %w", name, err)
			}
			frames[i] = base64.StdEncoding.EncodeToString(data)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	observability.GetLogger().Debug("Loaded video frames", zap.Int("count", len(frames)), zap.String("dir", expanded))
	return frames, nil
}
