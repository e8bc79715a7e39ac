package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"fxapply/internal/config"
	"fxapply/internal/logging"
)

var (
	cfgPath   string
	verbosity int
	langFlag  string

	// shellVerbosity carries the level chosen with the shell's log built-in
	// across re-executions of the root command. Negative means unset.
	shellVerbosity = -1

	loaded *config.Config
)

// skipConfig marks commands that must run without a valid configuration.
const skipConfig = "fxapply/skip-config"

// errReported is returned after the failure has already been shown to the user.
var errReported = errors.New("effect failed")

// IsReported reports whether err was already shown to the user and only needs
// a non-zero exit status.
func IsReported(err error) bool {
	return errors.Is(err, errReported)
}

// NewRootCmd creates the root CLI command.
// This is the primary adapter that translates CLI inputs to use case calls.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "fxapply",
		Short:         "オーディオプロジェクトにエフェクトを適用するCLI/Webサーバー",
		Long:          "選択範囲の解決・設定の構築・履歴の記録・リピートを行うエフェクト適用ツール",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&cfgPath, "config", config.DefaultPath(), "設定ファイルのパス")
	cmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "ロギングを詳細化 (-v, -vv, ... 最大4回)")
	cmd.PersistentFlags().StringVar(&langFlag, "lang", "", "メッセージの言語 (en|ja)。未指定なら設定値")
	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if cmd.Annotations[skipConfig] == "true" {
			logging.SetVerbosity(verbosity)
			return nil
		}
		cfg, resolved, exists, err := config.Load(cfgPath)
		if err != nil {
			return err
		}
		if err := logging.Configure(logging.Options{
			Format: cfg.Logging.Format,
			Output: cmd.ErrOrStderr(),
			Level:  cfg.Logging.Level,
		}); err != nil {
			return err
		}
		switch {
		case verbosity > 0:
			logging.SetVerbosity(verbosity)
		case shellVerbosity >= 0:
			logging.SetVerbosity(shellVerbosity)
		}
		logging.Debugf("config: %s (exists=%t)", resolved, exists)
		loaded = cfg
		return nil
	}

	cmd.AddCommand(
		newEffectsCmd(),
		newApplyCmd(),
		newRepeatCmd(),
		newSelectCmd(),
		newHistoryCmd(),
		newProjectCmd(),
		newConfigCmd(),
		newServeCmd(),
		newShellCmd(),
	)

	return cmd
}

func currentConfig() *config.Config {
	if loaded == nil {
		cfg := config.Default()
		loaded = &cfg
	}
	return loaded
}

func language(cfg *config.Config) string {
	if langFlag != "" {
		return langFlag
	}
	return cfg.Locale.Language
}

func exactArgsOrUsage(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return fmt.Errorf("%s: 引数は%d個必要です (usage: %s)", cmd.Name(), n, cmd.UseLine())
		}
		return nil
	}
}
