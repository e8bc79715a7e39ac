package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"fxapply/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "設定ファイルの作成・確認を行うサブコマンド",
	}
	cmd.AddCommand(newConfigInitCmd(), newConfigShowCmd())
	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:         "init",
		Short:       "サンプル設定ファイルを書き出す",
		Annotations: map[string]string{skipConfig: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.ExpandPath(cfgPath)
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s は既に存在します (--force で上書き)", path)
			}
			if err := config.CreateSample(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "書き出しました: %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "既存の設定ファイルを上書き")
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "読み込んだ設定(TOML)を表示",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := config.Encode(currentConfig())
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}
