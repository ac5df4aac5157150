package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/proofpanel/docvault/internal/config"
	"github.com/proofpanel/docvault/internal/hostdoc"
	"github.com/proofpanel/docvault/internal/store"
)

var (
	cfgFile string
	cfg     *config.Configuration
)

var rootCmd = &cobra.Command{
	Use:   "docvault",
	Short: "Embedded database and attachment vault for host documents",
	Long: `docvault keeps a relational database and binary file attachments inside
the customXml parts of a workbook file, with no external storage service.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return err
		}
		return setupLogging()
	},
	SilenceUsage: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "path to a config file")
	flags.String("workbook", "vault.xlsx", "path to the vault workbook")
	flags.String("log-level", "info", "log verbosity (debug, info, warn, error)")

	bindFlag("vault.workbook", flags.Lookup("workbook"))
	bindFlag("log_level", flags.Lookup("log-level"))
}

func bindFlag(key string, flag *pflag.Flag) {
	if err := viper.BindPFlag(key, flag); err != nil {
		panic(err)
	}
}

func loadConfig() error {
	var err error
	cfg, err = config.NewDefault()
	if err != nil {
		return err
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			return err
		}
	} else {
		viper.SetConfigName("docvault")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		if err := viper.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return err
			}
		}
	}

	viper.SetEnvPrefix("DOCVAULT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	return viper.Unmarshal(cfg)
}

func setupLogging() error {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}

	zapCfg := zap.NewDevelopmentConfig()
	if cfg.LogFormat == "json" {
		zapCfg = zap.NewProductionConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return err
	}
	zap.ReplaceGlobals(logger)
	return nil
}

// openStore opens the configured workbook and fails fast when it is not
// usable, instead of surfacing HostUnavailable on first access.
func openStore() (*store.Store, error) {
	host := hostdoc.OpenWorkbook(cfg.Vault.WorkbookPath)
	if !host.Available() {
		return nil, fmt.Errorf("workbook %s is not available; run \"docvault init\" first", cfg.Vault.WorkbookPath)
	}
	return store.NewStore(host), nil
}
