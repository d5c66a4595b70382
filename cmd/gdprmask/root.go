package gdprmask

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/redactyl/gdprmask/internal/config"
)

var (
	flagJSON      bool
	flagThreads   int
	flagNoColor   bool
	flagLang      string
	flagLogLevel  string
	flagLogFormat string
	flagVerbose   bool
	flagNoAudit   bool

	version = "0.1.0"

	// loaded in PersistentPreRunE; CLI > local > global
	localCfg, globalCfg config.FileConfig
)

// errThreshold makes Execute exit with status 1 without printing an error.
var errThreshold = errors.New("privacy risk threshold reached")

// rootCmd is the base Cobra command for the Gdprmask CLI.
var rootCmd = &cobra.Command{
	Use:   "gdprmask",
	Short: "Mask personal data in South Slavic and Bulgarian text",
	Long: `Gdprmask finds personal data in Slovenian, Croatian, Serbian, Bulgarian and
Macedonian text (names, places, organisations, contact details, national
identifiers and bank data), masks it and reports the residual GDPR risk.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// Execute runs the Gdprmask CLI. It should be called by the main package.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, errThreshold) {
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(2)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "emit JSON")
	rootCmd.PersistentFlags().IntVar(&flagThreads, "threads", 0, "worker count (0 = GOMAXPROCS)")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable colorized output")
	rootCmd.PersistentFlags().StringVarP(&flagLang, "lang", "l", "", "input language: sl|hr|sr|bg|mk (default sl)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level (debug, info, warn, error; default warn)")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "console", "log format (console, json)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().BoolVar(&flagNoAudit, "no-audit", false, "do not append to the audit log")
}

func setup(_ *cobra.Command, _ []string) error {
	localCfg, globalCfg = config.FileConfig{}, config.FileConfig{}
	if c, err := config.LoadGlobal(); err == nil {
		globalCfg = c
	}
	wd, _ := os.Getwd()
	if c, err := config.LoadLocal(wd); err == nil {
		localCfg = c
	}
	setupLogging(pickString(flagLogLevel, localCfg.LogLevel, globalCfg.LogLevel))
	return nil
}

func setupLogging(levelName string) {
	level, err := zerolog.ParseLevel(levelName)
	if err != nil || levelName == "" {
		level = zerolog.WarnLevel
	}
	zerolog.SetGlobalLevel(level)

	// Logs go to stderr so stdout stays clean for piping.
	if flagLogFormat == "json" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	} else {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, NoColor: flagNoColor}).
			With().
			Timestamp().
			Logger()
	}

	if flagVerbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
}
