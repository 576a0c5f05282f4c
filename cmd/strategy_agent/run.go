package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/content-strategist/internal/config"
	"github.com/jonathan/content-strategist/internal/feishu"
	"github.com/jonathan/content-strategist/internal/model"
	"github.com/jonathan/content-strategist/internal/observability"
	"github.com/jonathan/content-strategist/internal/strategy"
	"github.com/jonathan/content-strategist/internal/types"
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Run the content strategy pipeline once and print the result",
	Long: `Runs the full pipeline end-to-end: acquisition -> parallel analysis -> direction dispatch -> script generation -> spreadsheet persistence.

Configuration can be loaded from a JSON file using --config. Command-line arguments override config file values.`,
	RunE: runPipelineCmd,
}

var (
	runConfigPath     string
	runPPT            string
	runURL            string
	runStyleType      string
	runBrand          string
	runOutline        string
	runAdditionalInfo string
	runDownloadImages bool
	runLocal          bool
	runUseBrowser     bool
	runVerbose        bool
)

func init() {
	runCommand.Flags().StringVar(&runConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")

	runCommand.Flags().StringVarP(&runPPT, "ppt", "p", "", "Path to the product briefing .pptx file")
	runCommand.Flags().StringVarP(&runURL, "url", "u", "", "Creator profile URL")
	runCommand.Flags().StringVarP(&runStyleType, "style-type", "s", "", "Requested style type (e.g. 测评类 or 种草类)")
	runCommand.Flags().StringVarP(&runBrand, "brand", "b", "", "Brand name")
	runCommand.Flags().StringVarP(&runOutline, "outline", "o", "", "Path to the video outline text file")
	runCommand.Flags().StringVar(&runAdditionalInfo, "additional-info", "", "Extra guidance passed to the strategy prompts")
	runCommand.Flags().BoolVar(&runDownloadImages, "download-images", false, "Attach profile images to the creator-style analysis")
	runCommand.Flags().BoolVar(&runLocal, "local-influencer", false, "Use the local influencer directory instead of scraping")
	runCommand.Flags().BoolVar(&runUseBrowser, "use-browser", false, "Use headless browser for SPA profile pages (requires Chrome)")
	runCommand.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "Print detailed debug information")

	rootCmd.AddCommand(runCommand)
}

func runPipelineCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg := config.Load()
	if runConfigPath != "" {
		if err := config.LoadFile(runConfigPath, cfg); err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if runVerbose {
			_, _ = fmt.Fprintf(os.Stdout, "Loaded config from: %s\n", runConfigPath)
		}
	}
	if cmd.Flags().Changed("use-browser") {
		cfg.UseBrowser = runUseBrowser
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = runVerbose
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	req := &types.GenerateRequest{
		PPTPath:            firstNonEmpty(runPPT, cfg.PPTPath),
		URL:                firstNonEmpty(runURL, cfg.DefaultURL),
		StyleType:          runStyleType,
		BrandName:          firstNonEmpty(runBrand, cfg.DefaultBrand),
		VideoOutlinePath:   firstNonEmpty(runOutline, cfg.OutlinePath),
		AdditionalInfo:     firstNonEmpty(runAdditionalInfo, cfg.AdditionalInfo),
		DownloadImages:     runDownloadImages,
		UseLocalInfluencer: runLocal,
	}

	gateway, err := model.NewGateway(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create model gateway: %w", err)
	}
	defer func() { _ = gateway.Close() }()

	sheets, err := feishu.NewSheetManager(cfg)
	if err != nil {
		return fmt.Errorf("failed to create sheet manager: %w", err)
	}

	result, err := strategy.New(gateway, sheets, cfg).Run(ctx, req)
	if err != nil {
		return err
	}

	printer := observability.NewPrinter(os.Stdout)
	if cfg.Verbose {
		printer.PrintStrategy(result.Strategy, result.StyleTypeUsed, result.FinalDirectionUsed)
		printer.PrintScript(result.Script.Title, result.Script.Text, result.Script.Label)
		printer.PrintShotList(result.Shots)
		printer.PrintTimingChart(result.Timings.RenderChart())
	}

	fmt.Printf("Status:  %s\n", result.Status)
	fmt.Printf("Message: %s\n", result.Message)
	if result.SpreadsheetURL != "" {
		fmt.Printf("Sheet:   %s\n", result.SpreadsheetURL)
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
