package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"fxapply/internal/domain"
	"fxapply/internal/i18n"
)

func newEffectsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "effects",
		Short: "利用可能なエフェクトの一覧",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "登録済みエフェクトを表形式で表示",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(appOptions{dryRun: true}, func(a *app) error {
				var rows [][]string
				for _, m := range a.catalog.List() {
					duration := ""
					if m.IsGenerator() {
						duration = strconv.FormatFloat(m.DefaultDuration, 'f', -1, 64) + "s"
					}
					rows = append(rows, []string{
						string(m.ID), m.Title, m.Type.String(),
						yesNo(m.Interactive), yesNo(m.SupportsMultiClip), duration,
					})
				}
				headers := []string{"ID", "Title", "Type", "Interactive", "Multi-clip", "Duration"}
				aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows, aligns))
				return nil
			})
		},
	})
	return cmd
}

func newApplyCmd() *cobra.Command {
	var (
		configured  bool
		skipHistory bool
		dontRepeat  bool
		dryRun      bool
		interactive bool
	)
	cmd := &cobra.Command{
		Use:   "apply <effect-id>",
		Short: "現在の選択範囲にエフェクトを適用",
		Args:  exactArgsOrUsage(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := domain.EffectRequest{EffectID: domain.EffectID(args[0])}
			if configured {
				req.Flags |= domain.FlagConfigured
			}
			if skipHistory {
				req.Flags |= domain.FlagSkipHistory
			}
			if dontRepeat {
				req.Flags |= domain.FlagDontRepeatLast
			}
			if dryRun {
				// Dry runs never touch history or repeat memory.
				req.Flags |= domain.FlagSkipHistory | domain.FlagDontRepeatLast
			}
			opts := appOptions{interactive: interactive, dryRun: dryRun}
			return withApp(opts, func(a *app) error {
				return runEffect(cmd, a, req.EffectID, func() error {
					return a.uc.PerformRequest(cmd.Context(), req)
				})
			})
		},
	}
	cmd.Flags().BoolVar(&configured, "configured", false, "設定画面を出さず保存済みの設定で適用")
	cmd.Flags().BoolVar(&skipHistory, "skip-history", false, "履歴に記録しない")
	cmd.Flags().BoolVar(&dontRepeat, "dont-repeat", false, "リピート対象として記憶しない")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "プロジェクトを変更せずに手順だけ確認")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", true, "端末なら対話的に設定を編集")
	return cmd
}

func newRepeatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repeat",
		Short: "最後に適用したエフェクトを同じ設定で再適用",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(appOptions{}, func(a *app) error {
				id, ok := a.uc.LastProcessor()
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), a.printer.Sprintf(i18n.MsgRepeatUnavailable))
					return nil
				}
				return runEffect(cmd, a, id, func() error {
					return a.uc.RepeatLastProcessor(cmd.Context())
				})
			})
		},
	}
}

// runEffect runs one invocation and prints its outcome. Failures were already
// shown by the reporter, so they surface as errReported.
func runEffect(cmd *cobra.Command, a *app, id domain.EffectID, run func() error) error {
	out := cmd.OutOrStdout()
	if err := run(); err != nil {
		if domain.IsCancel(err) {
			fmt.Fprintln(out, "キャンセルしました")
			return nil
		}
		return fmt.Errorf("%s: %w", id, errReported)
	}

	title := string(id)
	if meta, err := a.catalog.Meta(id); err == nil {
		title = meta.Title
	}
	fmt.Fprintln(out, a.printer.Sprintf(i18n.MsgAppliedEffect, title))
	if w, ok := a.uc.LastWindow(id); ok {
		fmt.Fprintf(out, "selection: %s - %s\n", a.renderTime(w.Start), a.renderTime(w.End))
	}
	if a.dryRun {
		fmt.Fprintln(out, "(dry-run: プロジェクトは保存されません)")
	}
	return nil
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "-"
}
