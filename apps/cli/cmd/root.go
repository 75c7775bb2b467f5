package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/aislelist/aislelist/pkg/debounce"
	"github.com/aislelist/aislelist/pkg/errmap"
	"github.com/aislelist/aislelist/pkg/store"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	ConfigFileName      = ".aislelist"
	ConfigFileExtension = ".yaml"
	DatabaseFileName    = ".aislelist.db"
	EnvPrefix           = "AISLELIST"
)

// Config keys, also the names of the persistent flags bound to them.
const (
	keyDB       = "db"
	keyLogLevel = "log-level"
	keyDebounce = "debounce"
)

// app carries what every subcommand needs. Each root command owns its own
// viper instance so tests can build as many as they like.
type app struct {
	v           *viper.Viper
	cfgFilePath string
	cfgExplicit bool
	logger      *slog.Logger
}

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New(), logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	home, err := homedir.Dir()
	if err != nil {
		log.Fatal(err)
	}
	a.cfgFilePath = filepath.Join(home, ConfigFileName+ConfigFileExtension)

	root := &cobra.Command{
		Use:   "aislelist",
		Short: "aislelist keeps ranked shopping lists per shop",
		Long: `aislelist keeps a shopping list per shop or home, grouped into aisles you
can reorder. Lists are filtered by stock state, searched by product name and
sorted alphabetically on demand.
  `,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.cfgExplicit = cmd.Flags().Changed("config")
			if err := a.initConfig(); err != nil {
				return err
			}
			a.logger = newLogger(cmd.ErrOrStderr(), a.v.GetString(keyLogLevel))
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}

	root.PersistentFlags().StringVar(&a.cfgFilePath, "config", a.cfgFilePath, "config file (default is $HOME/.aislelist.yaml)")
	root.PersistentFlags().String(keyDB, filepath.Join(home, DatabaseFileName), "SQLite database file")
	root.PersistentFlags().String(keyLogLevel, "ERROR", "log level: DEBUG, INFO, WARNING or ERROR")
	root.PersistentFlags().Duration(keyDebounce, debounce.DefaultDelay, "delay applied to search and quantity edits")
	for _, key := range []string{keyDB, keyLogLevel, keyDebounce} {
		if err := a.v.BindPFlag(key, root.PersistentFlags().Lookup(key)); err != nil {
			log.Fatal(err)
		}
	}

	root.AddCommand(
		newSeedCmd(a),
		newShowCmd(a),
		newMoveCmd(a),
		newSortCmd(a),
		newQtyCmd(a),
		newStockCmd(a),
		newSearchCmd(a),
		newVersionCmd(),
	)
	return root
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("error executing root command: %s", err)
	}
}

// initConfig reads the config file if there is one. Flags win over the
// environment, which wins over the file.
func (a *app) initConfig() error {
	a.v.SetEnvPrefix(EnvPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	a.v.SetConfigType("yaml")
	if a.cfgExplicit {
		a.v.SetConfigFile(a.cfgFilePath)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			return fmt.Errorf("error finding home directory: %w", err)
		}
		a.v.AddConfigPath(home)
		a.v.SetConfigName(ConfigFileName)
	}

	err := a.v.ReadInConfig()
	if err == nil {
		return nil
	}
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("error reading config file: %w", err)
}

func newLogger(w io.Writer, level string) *slog.Logger {
	var logLevel slog.Level
	switch strings.ToUpper(level) {
	case "DEBUG":
		logLevel = slog.LevelDebug
	case "INFO":
		logLevel = slog.LevelInfo
	case "WARNING", "WARN":
		logLevel = slog.LevelWarn
	case "ERROR":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelError
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: logLevel,
	})
	return slog.New(handler)
}

func (a *app) debounce() time.Duration {
	return a.v.GetDuration(keyDebounce)
}

func (a *app) openStore(ctx context.Context) (*store.Store, error) {
	path, err := homedir.Expand(a.v.GetString(keyDB))
	if err != nil {
		return nil, err
	}
	a.logger.Debug("opening store", "path", path)
	return store.Open(ctx, path, a.logger)
}

// userError keeps err's chain but reads like errmap.Friendly.
func userError(err error) error {
	if err == nil {
		return nil
	}
	return errmap.New(errmap.CodeOf(err), errmap.Friendly(err), err)
}
