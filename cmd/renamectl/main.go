// renamectl previews documents, runs the AI analysis, and renames files
// from the extracted metadata. It drives the same session the desktop
// surface uses, one file per invocation.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rinomina/facile/internal/ai/gemini"
	"github.com/rinomina/facile/internal/classify"
	"github.com/rinomina/facile/internal/config"
	"github.com/rinomina/facile/internal/core/domain"
	"github.com/rinomina/facile/internal/core/usecase"
	"github.com/rinomina/facile/internal/extract"
	"github.com/rinomina/facile/internal/observability/logging"
	"github.com/rinomina/facile/internal/observability/metrics"
	"github.com/rinomina/facile/internal/resilience"
)

var (
	viewportWidth  int
	viewportHeight int

	// analyze options
	forceRefresh bool

	// rename options
	applyRename bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "renamectl",
		Short: "Document preview, AI analysis and renaming",
		Long: `renamectl classifies a document, extracts a preview, sends it to the
configured Gemini model and renames the file from the returned metadata.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().IntVar(&viewportWidth, "width", 0, "Preview surface width in pixels")
	rootCmd.PersistentFlags().IntVar(&viewportHeight, "height", 0, "Preview surface height in pixels")

	classifyCmd := &cobra.Command{
		Use:   "classify <path>",
		Short: "Print the preview category of a file",
		Args:  cobra.ExactArgs(1),
		RunE:  runClassify,
	}

	previewCmd := &cobra.Command{
		Use:   "preview <path>",
		Short: "Extract and print the original preview",
		Args:  cobra.ExactArgs(1),
		RunE:  runPreview,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze <path>",
		Short: "Run the AI analysis and print the extracted fields",
		Args:  cobra.ExactArgs(1),
		RunE:  runAnalyze,
	}
	analyzeCmd.Flags().BoolVar(&forceRefresh, "refresh", false, "Bypass the cached analysis for this file")

	renameCmd := &cobra.Command{
		Use:   "rename <path>",
		Short: "Analyze a file and rename it from the result",
		Args:  cobra.ExactArgs(1),
		RunE:  runRename,
	}
	renameCmd.Flags().BoolVar(&applyRename, "yes", false, "Apply the rename instead of printing the new name")

	keyCmd := &cobra.Command{
		Use:   "set-key <api-key>",
		Short: "Store the Gemini API key in the encrypted config",
		Args:  cobra.ExactArgs(1),
		RunE:  runSetKey,
	}

	rootCmd.AddCommand(classifyCmd, previewCmd, analyzeCmd, renameCmd, keyCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// app bundles the wired components behind every subcommand.
type app struct {
	log     *slog.Logger
	cfg     *config.Config
	session *usecase.PreviewSession
	sink    *fieldCapture
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log := logging.NewJSONLogger("renamectl", cfg.LogLevel)
	m := metrics.NewPreviewMetrics("renamectl")
	service := extract.NewService(log, m)

	var opts []gemini.Option
	if cfg.BaseURL != "" {
		opts = append(opts, gemini.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Model != "" {
		opts = append(opts, gemini.WithModel(cfg.Model))
	}
	client := gemini.New(cfg, opts...)
	analyzer := resilience.NewGuardedAnalyzer(client, resilience.DefaultConfig(), log)

	sink := &fieldCapture{}
	session := usecase.NewPreviewSession(log, classify.Detect, service, service, analyzer,
		usecase.WithViewport(domain.Viewport{Width: viewportWidth, Height: viewportHeight}),
		usecase.WithFieldSink(sink),
		usecase.WithMetrics(m),
	)

	return &app{log: log, cfg: cfg, session: session, sink: sink}, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runClassify(cmd *cobra.Command, args []string) error {
	fmt.Println(classify.Detect(args[0]))
	return nil
}

func runPreview(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx, stop := signalContext()
	defer stop()
	defer a.session.Clear()

	result := a.session.Load(ctx, args[0])
	printResult(result, a.session.Cursor())
	return nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx, stop := signalContext()
	defer stop()
	defer a.session.Clear()

	a.session.Load(ctx, args[0])
	result := a.session.RunAnalysis(ctx, forceRefresh)
	if result.Failed() {
		return fmt.Errorf("%s: %s", result.Header, result.Body)
	}

	printResult(result, domain.PageCursor{})
	a.sink.print()
	return nil
}

func runRename(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx, stop := signalContext()
	defer stop()
	defer a.session.Clear()

	a.session.Load(ctx, args[0])
	result := a.session.RunAnalysis(ctx, false)
	if result.Failed() {
		return fmt.Errorf("%s: %s", result.Header, result.Body)
	}

	newName := usecase.GenerateFilename(a.session.Path(), a.sink.fields())
	if !applyRename {
		fmt.Printf("would rename to: %s\n", newName)
		return nil
	}

	target, err := usecase.ApplyRename(a.session.Path(), newName)
	if err != nil {
		return err
	}
	fmt.Printf("renamed to: %s\n", target)
	return nil
}

func runSetKey(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.SetGeminiAPIKeyPlain(args[0]); err != nil {
		return fmt.Errorf("store api key: %w", err)
	}
	fmt.Printf("api key stored in %s\n", cfg.Location())
	return nil
}

func printResult(result domain.ExtractionResult, cursor domain.PageCursor) {
	switch result.Kind {
	case domain.ResultRendered:
		bounds := result.Image.Bounds()
		fmt.Printf("%s\n[rendered %dx%d]\n", result.Header, bounds.Dx(), bounds.Dy())
		if cursor.Total > 1 {
			fmt.Printf("page %d of %d\n", cursor.Current+1, cursor.Total)
		}
	default:
		fmt.Printf("%s\n\n%s\n", result.Header, result.Body)
	}
}

// fieldCapture implements ports.FieldSink for the terminal: it remembers
// the notified values so the rename step can reuse them.
type fieldCapture struct {
	date         string
	organization string
	subject      string
	receiver     string
}

func (f *fieldCapture) SetDate(value string)         { f.date = value }
func (f *fieldCapture) SetOrganization(value string) { f.organization = value }
func (f *fieldCapture) SetSubject(value string)      { f.subject = value }
func (f *fieldCapture) SetReceiver(value string)     { f.receiver = value }

func (f *fieldCapture) fields() usecase.RenameFields {
	return usecase.RenameFields{
		Date:         f.date,
		Organization: f.organization,
		Subject:      f.subject,
		Receiver:     f.receiver,
	}
}

func (f *fieldCapture) print() {
	for _, pair := range [][2]string{
		{"date", f.date},
		{"organization", f.organization},
		{"subject", f.subject},
		{"receiver", f.receiver},
	} {
		if pair[1] != "" {
			fmt.Printf("%s: %s\n", pair[0], pair[1])
		}
	}
}
