package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"quizzone/internal/config"
	"quizzone/internal/lib/logger"
)

// options are the persistent flags shared by every subcommand. Each flag
// can also be set through a QUIZZONE_ environment variable.
type options struct {
	configPath string
	port       string
	locale     string
	dataDir    string
	logLevel   string
	noColor    bool

	flags *pflag.FlagSet
}

// Execute runs the CLI.
func Execute() error {
	cmd, _ := newRootCmd()
	err := cmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
	}
	return err
}

func newRootCmd() (*cobra.Command, *options) {
	opts := &options{}

	v := viper.New()
	v.SetEnvPrefix("QUIZZONE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "quizzone",
		Short:         "Multiplayer trivia quiz server",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	fs := cmd.PersistentFlags()
	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})
	fs.StringVar(&opts.configPath, "config", "config/config.yaml", "path to YAML config (env: QUIZZONE_CONFIG)")
	fs.StringVar(&opts.port, "port", "", "port to listen on (env: QUIZZONE_PORT)")
	fs.StringVar(&opts.locale, "locale", "", "question bank locale, no or en (env: QUIZZONE_LOCALE)")
	fs.StringVar(&opts.dataDir, "data-dir", "", "directory holding data/questions-*.json (env: QUIZZONE_DATA_DIR)")
	fs.StringVar(&opts.logLevel, "log-level", "", "debug, info, warn or error (env: QUIZZONE_LOG_LEVEL)")
	fs.BoolVar(&opts.noColor, "no-color", false, "disable coloured log levels (env: QUIZZONE_NO_COLOR)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})
	opts.flags = fs

	cmd.AddCommand(NewStartCmd(opts))
	cmd.AddCommand(NewMigrateCmd(opts))
	cmd.AddCommand(NewSeedCmd(opts))
	cmd.CompletionOptions.HiddenDefaultCmd = true
	return cmd, opts
}

// load reads the config file and applies the flags that were set.
func (o *options) load() (config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return cfg, fmt.Errorf("load config %s: %w", o.configPath, err)
	}
	if o.flags.Changed("port") {
		cfg.Server.Port = o.port
	}
	if o.flags.Changed("locale") {
		cfg.Quiz.Locale = o.locale
	}
	if o.flags.Changed("data-dir") {
		cfg.Quiz.DataDir = o.dataDir
	}
	if o.flags.Changed("log-level") {
		cfg.Log.Level = o.logLevel
	}
	if o.noColor {
		cfg.Log.Color = false
	}
	return cfg, nil
}

func newLogger(cfg config.Config, out io.Writer) *slog.Logger {
	log := logger.New(out, logger.ParseLevel(cfg.Log.Level), cfg.Log.Color)
	slog.SetDefault(log)
	return log
}
