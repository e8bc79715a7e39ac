package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/google/shlex"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"fxapply/internal/logging"
)

func newShellCmd() *cobra.Command {
	var prompt string
	cmd := &cobra.Command{
		Use:   "shell",
		Short: "サブコマンドを対話的に叩けるシェルを起動",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractiveShell(cmd.OutOrStdout(), prompt)
		},
	}
	cmd.Flags().StringVar(&prompt, "prompt", "fxapply> ", "シェルのプロンプト文字列")
	return cmd
}

func runInteractiveShell(out io.Writer, prompt string) error {
	historyFile := filepath.Join(os.TempDir(), "fxapply-shell.history")
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		HistoryFile:     historyFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	session := shellSession{out: out, verbosity: logging.Verbosity(), execute: executeArgs}
	fmt.Fprintln(out, "対話型シェルを開始します。'help' で使い方、'exit' で終了。")

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			fmt.Fprintln(out)
			continue
		}
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(out)
			return nil
		}
		if session.handle(line) {
			return nil
		}
	}
}

// shellSession interprets one shell line at a time.
type shellSession struct {
	out       io.Writer
	verbosity int
	execute   func(args []string) error
}

// handle runs line and reports whether the shell should exit.
func (s *shellSession) handle(line string) bool {
	line = strings.TrimSpace(line)
	switch line {
	case "":
		return false
	case "exit", "quit":
		fmt.Fprintln(s.out, "Bye!")
		return true
	case "help":
		printShellHelp(s.out)
		return false
	}
	tokens, err := shlex.Split(line)
	if err != nil {
		fmt.Fprintf(s.out, "Parse error: %v\n", err)
		return false
	}
	if len(tokens) == 0 {
		return false
	}
	switch tokens[0] {
	case "log":
		if err := s.log(tokens[1:]); err != nil {
			fmt.Fprintf(s.out, "log: %v\n", err)
		}
		return false
	case "shell":
		fmt.Fprintln(s.out, "すでにシェル内です。他のコマンドを入力するか 'exit' で終了してください。")
		return false
	}

	if err := s.execute(tokens); err != nil && !IsReported(err) {
		fmt.Fprintf(s.out, "command error: %v\n", err)
	}
	return false
}

func executeArgs(args []string) error {
	if len(args) == 0 {
		return nil
	}
	root := NewRootCmd()
	root.SetArgs(args)
	return root.Execute()
}

func (s *shellSession) log(args []string) error {
	fs := pflag.NewFlagSet("log", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var vcount int
	var level string
	var show bool
	fs.CountVarP(&vcount, "verbose", "v", "Increase verbosity (-v... up to 4)")
	fs.StringVar(&level, "level", "", "指定レベル(error|warn|info|debug|trace)")
	fs.BoolVarP(&show, "show", "s", false, "現在のレベルを表示")
	if err := fs.Parse(args); err != nil {
		return err
	}

	switch {
	case level != "":
		_, count, err := logging.ParseLevel(level)
		if err != nil {
			return err
		}
		s.verbosity = count
	case vcount > 0 && !show:
		s.verbosity = vcount
	default:
		fmt.Fprintf(s.out, "log level: %s (-v x%d)\n", logging.LevelName(), logging.Verbosity())
		return nil
	}

	shellVerbosity = s.verbosity
	logging.SetVerbosity(s.verbosity)
	fmt.Fprintf(s.out, "log level set to %s (-v x%d)\n", logging.LevelName(), logging.Verbosity())
	return nil
}

func printShellHelp(out io.Writer) {
	fmt.Fprintln(out, `利用可能な入力例:
  effects list                          # エフェクト一覧
  project add-clip --track t1 --clip a --start 0 --end 4
  select time --start 1 --end 3         # 時間範囲を選択
  select clips t1:a t1:b                # クリップを選択
  apply amplify                         # 選択範囲に適用
  apply echo --configured               # 保存済み設定で適用
  repeat                                # 直前のエフェクトを再適用
  history --limit 5                     # 履歴を確認
  log -vv                               # ログ出力を詳細化
  log --show                            # 現在のログレベルを確認
  exit / quit                           # シェル終了`)
}
