package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"fxapply/internal/adapter/secondary/project"
	"fxapply/internal/domain"
)

func newProjectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "プロジェクト(トラック・クリップ)を操作するサブコマンド",
	}
	cmd.AddCommand(newProjectInitCmd(), newProjectAddClipCmd(), newProjectShowCmd())
	return cmd
}

func newProjectInitCmd() *cobra.Command {
	var (
		rate  float64
		force bool
	)
	cmd := &cobra.Command{
		Use:   "init",
		Short: "空のプロジェクトを作成",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(appOptions{}, func(a *app) error {
				if a.projects.Exists() && !force {
					return fmt.Errorf("%s は既に存在します (--force で上書き)", a.projects.Path())
				}
				if !cmd.Flags().Changed("rate") {
					rate = a.cfg.Project.SampleRate
				}
				a.project = project.New(rate)
				fmt.Fprintf(cmd.OutOrStdout(), "作成しました: %s (%g Hz)\n", a.projects.Path(), a.project.SampleRate())
				return nil
			})
		},
	}
	cmd.Flags().Float64Var(&rate, "rate", 0, "サンプルレート(Hz)。未指定なら設定値")
	cmd.Flags().BoolVar(&force, "force", false, "既存のプロジェクトを上書き")
	return cmd
}

func newProjectAddClipCmd() *cobra.Command {
	var (
		track, clip string
		start, end  float64
	)
	cmd := &cobra.Command{
		Use:   "add-clip",
		Short: "トラックにクリップを追加 (トラックが無ければ作成)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if track == "" || clip == "" {
				return errors.New("--track と --clip は必須です")
			}
			return withApp(appOptions{}, func(a *app) error {
				c := project.Clip{ID: domain.ClipID(clip), Start: start, End: end}
				if err := a.project.AddClip(domain.TrackID(track), c); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "追加しました: %s:%s [%s - %s]\n",
					track, clip, a.renderTime(start), a.renderTime(end))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&track, "track", "", "トラックID")
	cmd.Flags().StringVar(&clip, "clip", "", "クリップID")
	cmd.Flags().Float64Var(&start, "start", 0, "開始時刻(秒)")
	cmd.Flags().Float64Var(&end, "end", 0, "終了時刻(秒)")
	return cmd
}

func newProjectShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "トラックとクリップを表形式で表示",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(appOptions{dryRun: true}, func(a *app) error {
				var rows [][]string
				for _, t := range a.project.Tracks() {
					for _, c := range t.Clips {
						rows = append(rows, []string{
							string(t.ID), string(c.ID),
							a.renderTime(c.Start), a.renderTime(c.End),
							strings.Join(c.Tags, ", "),
						})
					}
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%s (%g Hz)\n", a.projects.Path(), a.project.SampleRate())
				headers := []string{"Track", "Clip", "Start", "End", "Effects"}
				aligns := []columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft}
				fmt.Fprintln(out, renderTable(headers, rows, aligns))
				return nil
			})
		},
	}
}

func newHistoryCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "適用履歴を新しい順に表示",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(appOptions{dryRun: true}, func(a *app) error {
				entries, err := a.store.History(cmd.Context(), limit)
				if err != nil {
					return err
				}
				rows := make([][]string, 0, len(entries))
				for _, e := range entries {
					rows = append(rows, []string{
						strconv.FormatInt(e.ID, 10),
						e.LongDescription,
						e.CreatedAt.Local().Format(time.DateTime),
					})
				}
				headers := []string{"#", "Description", "Time"}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows, []columnAlignment{alignRight}))
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "表示する件数")
	return cmd
}
