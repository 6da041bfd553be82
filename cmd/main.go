package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	// конфиг и клиент платформы
	"skillogs_validator/internal/cache"
	"skillogs_validator/internal/config"
	"skillogs_validator/internal/transport/http/platform"

	// оркестратор
	"skillogs_validator/internal/service/runner"
)

// version выставляется через -ldflags при сборке.
var version = "(devel)"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		color.Red("❌ %v", err)
		os.Exit(1)
	}
}

type flags struct {
	envFile      string
	cacheFile    string
	time         int
	inferAnswers bool
	contentOnly  bool
}

func newRootCmd() *cobra.Command {
	var f flags

	root := &cobra.Command{
		Use:           "skillogs-validator [session-url]",
		Short:         "Mark every content item of a Skillogs session as done",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, f)
		},
	}

	root.Flags().StringVar(&f.envFile, "env-file", "", "Path to .env file with MAIL and PASSWORD (default: ./.env if present)")
	root.Flags().StringVar(&f.cacheFile, "cache", "", "Where to cache the raw session content (overrides CACHE_FILE)")
	root.Flags().IntVar(&f.time, "time", 0, "Elapsed time in seconds sent for each sub-item (overrides VALIDATION_TIME)")
	root.Flags().BoolVar(&f.inferAnswers, "infer-answers", false, "Fetch content details and submit answers flagged correct")
	root.Flags().BoolVar(&f.contentOnly, "content-only", false, "Only validate the content/<id> given in the URL")

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the current version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "skillogs-validator", version)
		},
	})
	return root
}

func run(cmd *cobra.Command, args []string, f flags) error {
	color.Cyan("🚀 Starting Skillogs validator...")

	cfg, err := config.Load(f.envFile)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("cache") {
		cfg.CacheFile = f.cacheFile
	}
	if cmd.Flags().Changed("time") {
		cfg.Time = f.time
	}
	if cmd.Flags().Changed("infer-answers") {
		cfg.InferAnswers = f.inferAnswers
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	color.Blue("🔧 Configuration:")
	log.Printf("   BASE_URL:      %s", cfg.BaseURL)
	log.Printf("   MAIL:          %s", cfg.Email)
	log.Printf("   CACHE_FILE:    %s", cfg.CacheFile)
	log.Printf("   TIME:          %d", cfg.Time)
	log.Printf("   INFER_ANSWERS: %t", cfg.InferAnswers)

	var rawURL string
	if len(args) > 0 {
		rawURL = args[0]
	} else {
		if rawURL, err = prompt(cmd.InOrStdin(), cmd.OutOrStdout()); err != nil {
			return err
		}
	}

	client := platform.NewClient(cfg, nil)
	r := runner.NewRunner(client, cache.New(cfg.CacheFile), runner.Options{
		Time:         cfg.Time,
		InferAnswers: cfg.InferAnswers,
		ContentOnly:  f.contentOnly,
		Out:          cmd.OutOrStdout(),
	})

	sum, err := r.Run(cmd.Context(), rawURL)
	if err != nil {
		return err
	}
	if sum.Failed > 0 {
		color.Yellow("⚠️  %d of %d layout groups failed, see log above", sum.Failed, sum.Groups)
	} else {
		color.Green("✅ Done")
	}
	return nil
}

func prompt(in io.Reader, out io.Writer) (string, error) {
	fmt.Fprint(out, "Enter the Skillogs session URL: ")
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read session URL: %w", err)
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", errors.New("no session URL given")
	}
	return line, nil
}
