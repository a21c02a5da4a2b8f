package main

import (
	"context"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/brizzai/subcount-bot/internal/app"
	"github.com/brizzai/subcount-bot/internal/auth"
	"github.com/brizzai/subcount-bot/internal/config"
	"github.com/brizzai/subcount-bot/internal/errs"
	"github.com/brizzai/subcount-bot/internal/logger"
	"github.com/brizzai/subcount-bot/internal/publisher"
	"github.com/brizzai/subcount-bot/internal/report"
)

func main() {
	Execute()
}

var (
	plain  bool
	dryRun bool
)

// rootCmd represents the base command. Without a subcommand it posts.
var rootCmd = &cobra.Command{
	Use:   "subcount-bot",
	Short: "Post the subscriber counts of a group of YouTube channels",
	Long: `subcount-bot fetches the YouTube subscriber counts of the tracked channels
and posts them to X. An unchanged report is posted as "Same as before."
followed by a random suffix, since identical posts are rejected.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runPost,
}

var postCmd = &cobra.Command{
	Use:   "post",
	Short: "Post the current report",
	RunE:  runPost,
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authorize the bot and rewrite the token file",
	RunE:  runLogin,
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the report that would be posted",
	RunE:  runReport,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		pterm.Info.Println(config.GetVersionInfo())
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	// Place version check in PreRun to ensure flags are parsed first
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		versionFlag, _ := cmd.Flags().GetBool("version")
		if versionFlag {
			pterm.Info.Println(config.GetVersionInfo())
			os.Exit(0)
		}
	}

	if err := rootCmd.Execute(); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}

func init() {
	config.InitFlags(rootCmd.PersistentFlags())
	rootCmd.PersistentFlags().BoolVar(&plain, "plain", false, "Read the authorization code from a plain line prompt instead of the TUI")
	rootCmd.PersistentFlags().BoolP("version", "v", false, "Show version information")

	for _, cmd := range []*cobra.Command{rootCmd, postCmd} {
		cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the report without posting it")
	}

	rootCmd.AddCommand(postCmd, loginCmd, reportCmd, versionCmd)
}

// setup loads the configuration and opens the log sink. Nothing else runs
// if the sink cannot be written.
func setup(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, err
	}
	if err := logger.InitLogger(&cfg.Logging); err != nil {
		return nil, err
	}
	return cfg, nil
}

func terminal() app.Terminal {
	return app.Terminal{In: os.Stdin, Out: os.Stdout, Plain: plain}
}

// run executes fn with a context cancelled on SIGINT/SIGTERM. A failure is
// appended to the log sink with its timestamp before being returned.
func run(cmd *cobra.Command, fn func(ctx context.Context, cfg *config.Config) error) error {
	defer func() {
		if r := recover(); r != nil {
			pterm.Error.Printf("\nCaught panic: %v\n", r)
			pterm.Error.Printf("%s\n", debug.Stack())
			os.Exit(2)
		}
	}()

	cfg, err := setup(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := fn(ctx, cfg); err != nil {
		logger.Error("Run failed",
			zap.Time("timestamp", time.Now().UTC()),
			zap.Stringer("kind", errs.KindOf(err)),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func runPost(cmd *cobra.Command, args []string) error {
	if dryRun {
		return runReport(cmd, args)
	}
	return run(cmd, func(ctx context.Context, cfg *config.Config) error {
		var pub *publisher.Publisher
		if err := app.Populate(ctx, cfg, terminal(), &pub); err != nil {
			return err
		}
		resp, err := pub.Run(ctx)
		if err != nil {
			return err
		}
		pterm.Success.Printfln("Success (post %s)", resp.Data.ID)
		return nil
	})
}

func runLogin(cmd *cobra.Command, args []string) error {
	return run(cmd, func(ctx context.Context, cfg *config.Config) error {
		var service *auth.Service
		if err := app.Populate(ctx, cfg, terminal(), &service); err != nil {
			return err
		}
		token, err := service.Login(ctx)
		if err != nil {
			return err
		}
		pterm.Success.Printfln("Success, token valid until %s", token.Expires.Format(time.RFC3339))
		return nil
	})
}

func runReport(cmd *cobra.Command, args []string) error {
	return run(cmd, func(ctx context.Context, cfg *config.Config) error {
		var builder *report.Builder
		if err := app.Populate(ctx, cfg, terminal(), &builder); err != nil {
			return err
		}
		text, err := builder.Build(ctx)
		if err != nil {
			return err
		}
		pterm.DefaultBox.WithTitle("Report").Println(text)
		return nil
	})
}
