package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"shelfwatch-product-harvester/config"
	appfx "shelfwatch-product-harvester/internal/app/fx"
	"shelfwatch-product-harvester/internal/envutil"
	"shelfwatch-product-harvester/internal/harvest"
	"shelfwatch-product-harvester/internal/jobspec"
	"shelfwatch-product-harvester/internal/pkg/crawlapi"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "harvester",
		Short:         "Harvest product pages and submit crawl jobs",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	rootCmd.AddCommand(newHarvestCmd())
	rootCmd.AddCommand(newSubmitJobCmd())

	return rootCmd
}

func newHarvestCmd() *cobra.Command {
	var (
		urls     []string
		urlsFile string
		outDir   string
		headers  []string
		mobile   bool
	)

	harvestCmd := &cobra.Command{
		Use:           "harvest",
		Short:         "Run one harvest pass and write a JSON result file",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			targets, err := collectURLs(urls, urlsFile)
			if err != nil {
				return err
			}
			if len(targets) == 0 {
				_ = cmd.Help()
				return errUsage
			}

			hdrs, err := parseHeaders(headers)
			if err != nil {
				return err
			}

			return withApp(func(ctx context.Context, cfg *config.Config, h *harvest.Harvester, _ *zap.SugaredLogger) error {
				if mobile && hdrs["User-Agent"] == "" {
					if hdrs == nil {
						hdrs = map[string]string{}
					}
					hdrs["User-Agent"] = cfg.Harvest.UserAgentMobile
				}

				outPath, result, err := h.RunOnce(ctx, harvest.Options{
					URLs:    targets,
					Headers: hdrs,
					OutDir:  outDir,
				})
				if outPath != "" {
					fmt.Fprintln(cmd.OutOrStdout(), outPath)
				}
				if err != nil {
					return err
				}
				if result.Skipped > 0 {
					fmt.Fprintf(cmd.ErrOrStderr(), "skipped %d of %d urls\n", result.Skipped, len(targets))
				}
				return nil
			})
		},
	}

	harvestCmd.Flags().StringSliceVar(&urls, "url", nil, "Product page URL (repeatable)")
	harvestCmd.Flags().StringVar(&urlsFile, "urls-file", "", "File with one URL per line")
	harvestCmd.Flags().StringVar(&outDir, "out-dir", envutil.String(os.Getenv, "HARVEST_OUT_DIR", "out"), "Output directory for result JSON")
	harvestCmd.Flags().StringSliceVar(&headers, "header", nil, "Extra request header as key=value (repeatable)")
	harvestCmd.Flags().BoolVar(&mobile, "mobile", false, "Fetch with the mobile user agent")

	return harvestCmd
}

func newSubmitJobCmd() *cobra.Command {
	var (
		url             string
		crawlPatterns   []string
		processPatterns []string
		maxDepth        int
		userAgentType   string
		outputType      string
	)

	submitCmd := &cobra.Command{
		Use:           "submit-job",
		Short:         "Submit a crawl job payload to the crawl API",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(url) == "" {
				_ = cmd.Help()
				return errUsage
			}

			b := jobspec.NewBuilder(url)
			if len(crawlPatterns) > 0 {
				b.CrawlPatterns(crawlPatterns...)
			}
			if len(processPatterns) > 0 {
				b.ProcessPatterns(processPatterns...)
			}
			if maxDepth > 0 {
				b.MaxDepth(maxDepth)
			}
			if userAgentType != "" {
				b.UserAgent(jobspec.UserAgentType(userAgentType))
			}
			if outputType != "" {
				b.OutputType(jobspec.OutputType(outputType))
			}

			job, err := b.Build()
			if err != nil {
				return err
			}

			return withApp(func(ctx context.Context, cfg *config.Config, _ *harvest.Harvester, logger *zap.SugaredLogger) error {
				jobID, err := crawlapi.NewClient(cfg, logger).Submit(ctx, job)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), jobID)
				return nil
			})
		},
	}

	submitCmd.Flags().StringVar(&url, "url", "", "Seed URL for the crawl job")
	submitCmd.Flags().StringSliceVar(&crawlPatterns, "crawl", nil, "Regex pattern for URLs to follow (repeatable)")
	submitCmd.Flags().StringSliceVar(&processPatterns, "process", nil, "Regex pattern for URLs to process (repeatable)")
	submitCmd.Flags().IntVar(&maxDepth, "max-depth", 0, "Crawl depth limit (default 1)")
	submitCmd.Flags().StringVar(&userAgentType, "user-agent-type", "", "desktop, desktop_chrome, mobile or mobile_chrome")
	submitCmd.Flags().StringVar(&outputType, "output-type", "", "sitemap, html or parsed")

	return submitCmd
}

// withApp spins up the fx graph without the HTTP surface, runs fn, and tears
// the graph down again.
func withApp(fn func(ctx context.Context, cfg *config.Config, h *harvest.Harvester, logger *zap.SugaredLogger) error) error {
	var (
		cfg    *config.Config
		h      *harvest.Harvester
		logger *zap.SugaredLogger
	)

	app := fx.New(
		fx.NopLogger,
		appfx.Module,
		fx.Populate(&cfg, &h, &logger),
	)

	startCtx, startCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startCancel()
	if err := app.Start(startCtx); err != nil {
		return err
	}

	runErr := fn(context.Background(), cfg, h, logger)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer stopCancel()
	if err := app.Stop(stopCtx); err != nil && runErr == nil {
		return err
	}
	return runErr
}

func collectURLs(urls []string, urlsFile string) ([]string, error) {
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if v := strings.TrimSpace(u); v != "" {
			out = append(out, v)
		}
	}

	if strings.TrimSpace(urlsFile) != "" {
		f, err := os.Open(urlsFile)
		if err != nil {
			return nil, fmt.Errorf("open urls file: %w", err)
		}
		defer func() { _ = f.Close() }()

		sc := bufio.NewScanner(f)
		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			out = append(out, line)
		}
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("read urls file: %w", err)
		}
	}

	return out, nil
}

func parseHeaders(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("invalid header %q, want key=value", p)
		}
		out[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return out, nil
}
