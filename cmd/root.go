package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/tanq16/rangedl/internal/config"
	"github.com/tanq16/rangedl/internal/downloader"
	"github.com/tanq16/rangedl/internal/output"
	"github.com/tanq16/rangedl/internal/utils"
)

var RangedlVersion = "dev"

type rootFlags struct {
	configFile string
	url        string
	target     string
	chunkSize  string
	workers    int
	mode       string
	strict     bool
	limit      string
	timeout    time.Duration
	kaTimeout  time.Duration
	userAgent  string
	headers    []string
	debug      bool
	noProgress bool
}

func newRootCmd() *cobra.Command {
	var f rootFlags
	defaults := config.Default()

	cmd := &cobra.Command{
		Use:           "rangedl --url URL --target PATH",
		Short:         "rangedl downloads a file over parallel byte-range connections and resumes partial files",
		Version:       RangedlVersion,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd.Flags(), f)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runDownload(ctx, cmd, cfg)
		},
	}

	cmd.Flags().StringVarP(&f.configFile, "config", "c", "", "Path to a YAML config file (flags override its values)")
	cmd.Flags().StringVarP(&f.url, "url", "u", "", "URL to download (required)")
	cmd.Flags().StringVarP(&f.target, "target", "t", "", "Output file path (required)")
	cmd.Flags().StringVarP(&f.chunkSize, "chunk-size", "s", utils.FormatBytes(defaults.ChunkSize), "Size of each byte-range chunk (eg. 512KiB, 100MiB)")
	cmd.Flags().IntVarP(&f.workers, "workers", "w", defaults.Workers, "Concurrent chunk connections (0 = one per chunk)")
	cmd.Flags().StringVar(&f.mode, "mode", defaults.Mode, "Existing target handling: resume or refuse-if-exists")
	cmd.Flags().BoolVar(&f.strict, "strict", false, "Exit non-zero when any chunk fails")
	cmd.Flags().StringVar(&f.limit, "limit", "0", "Bandwidth limit per second across all connections (eg. 2MiB, 0 = unlimited)")
	cmd.Flags().DurationVar(&f.timeout, "timeout", defaults.Timeout, "Timeout for connecting and receiving response headers; body reads are not limited (eg. 5s, 10m)")
	cmd.Flags().DurationVarP(&f.kaTimeout, "keep-alive-timeout", "k", defaults.KeepAliveTimeout, "Keep-alive timeout for idle connections")
	cmd.Flags().StringVarP(&f.userAgent, "user-agent", "a", utils.ToolUserAgent, "User agent (\"randomize\" picks a browser agent)")
	cmd.Flags().StringArrayVarP(&f.headers, "header", "H", []string{}, "Extra request header ('Name: value'); can be specified multiple times")
	cmd.Flags().BoolVar(&f.debug, "debug", false, "Enable debug logging")
	cmd.Flags().BoolVar(&f.noProgress, "no-progress", false, "Disable the progress display")
	return cmd
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		output.PrintError(fmt.Sprintf("Error: %v", err))
		os.Exit(1)
	}
}

// resolveConfig layers explicitly set flags over the config file (or the
// defaults when no file is given).
func resolveConfig(flags *pflag.FlagSet, f rootFlags) (config.Config, error) {
	cfg := config.Default()
	if f.configFile != "" {
		var err error
		if cfg, err = config.LoadFromFile(f.configFile); err != nil {
			return cfg, err
		}
	}
	if flags.Changed("url") {
		cfg.URL = f.url
	}
	if flags.Changed("target") {
		cfg.Target = f.target
	}
	if flags.Changed("chunk-size") {
		size, err := config.ParseSize(f.chunkSize)
		if err != nil {
			return cfg, fmt.Errorf("invalid --chunk-size: %w", err)
		}
		cfg.ChunkSize = size
	}
	if flags.Changed("workers") {
		cfg.Workers = f.workers
	}
	if flags.Changed("mode") {
		cfg.Mode = f.mode
	}
	if flags.Changed("strict") {
		cfg.Strict = f.strict
	}
	if flags.Changed("limit") {
		limit, err := config.ParseSize(f.limit)
		if err != nil {
			return cfg, fmt.Errorf("invalid --limit: %w", err)
		}
		cfg.BandwidthLimit = limit
	}
	if flags.Changed("timeout") {
		cfg.Timeout = f.timeout
	}
	if flags.Changed("keep-alive-timeout") {
		cfg.KeepAliveTimeout = f.kaTimeout
	}
	if flags.Changed("user-agent") {
		cfg.UserAgent = f.userAgent
	}
	for k, v := range utils.ParseHeaderArgs(f.headers) {
		cfg.Headers[k] = v
	}
	if flags.Changed("debug") {
		cfg.Debug = f.debug
	}
	if flags.Changed("no-progress") {
		cfg.NoProgress = f.noProgress
	}
	if cfg.UserAgent == "randomize" {
		cfg.UserAgent = utils.GetRandomUserAgent()
	}
	return cfg, cfg.Validate()
}

func runDownload(ctx context.Context, cmd *cobra.Command, cfg config.Config) error {
	logger := utils.NewLogger(cmd.ErrOrStderr(), cfg.Debug)
	client := utils.NewRangeHTTPClient(utils.HTTPClientConfig{
		Timeout:        cfg.Timeout,
		KATimeout:      cfg.KeepAliveTimeout,
		UserAgent:      cfg.UserAgent,
		Headers:        cfg.Headers,
		HighThreadMode: cfg.Workers == 0 || cfg.Workers > 5,
	})
	progress := output.NewReporter(os.Stderr, logger, cfg.NoProgress)
	engine := downloader.NewEngine(client, logger, progress, downloader.Options{
		Workers:        cfg.Workers,
		Mode:           downloader.Mode(cfg.Mode),
		Strict:         cfg.Strict,
		BandwidthLimit: cfg.BandwidthLimit,
	})

	res, err := engine.Download(ctx, downloader.DownloadTask{
		URL:        cfg.URL,
		TargetPath: cfg.Target,
		ChunkSize:  cfg.ChunkSize,
	})
	reportResume(res)
	reportFailedChunks(res)
	if err != nil {
		return err
	}
	output.PrintSuccess(fmt.Sprintf("Download completed successfully! %s %s", cfg.Target,
		output.FDebug(fmt.Sprintf("(%s in %s)", utils.FormatBytes(res.Written), res.Elapsed.Round(time.Millisecond)))))
	return nil
}

func reportResume(res downloader.Result) {
	switch {
	case res.Path == downloader.StateFallback:
		output.PrintInfo("Server did not report a size; downloaded in a single stream")
	case res.ExistingBytes > 0:
		output.PrintInfo(fmt.Sprintf("Resumed with %s already on disk", utils.FormatBytes(res.ExistingBytes)))
	}
}

func reportFailedChunks(res downloader.Result) {
	failed := res.Failed()
	if len(failed) == 0 {
		return
	}
	output.PrintWarning(fmt.Sprintf("%d of %d chunks failed; the target file is incomplete", len(failed), len(res.Chunks)))
	for _, c := range failed {
		output.PrintDetail(fmt.Sprintf("bytes %s: %v", c.Range, c.Err))
	}
}
