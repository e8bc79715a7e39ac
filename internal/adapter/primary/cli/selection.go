package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"fxapply/internal/domain"
)

func newSelectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "select",
		Short: "選択範囲の設定・確認を行うサブコマンド",
	}
	cmd.AddCommand(newSelectTimeCmd(), newSelectClipsCmd(), newSelectShowCmd())
	return cmd
}

func newSelectTimeCmd() *cobra.Command {
	var (
		start, end float64
		tracks     []string
		f0, f1     float64
	)
	cmd := &cobra.Command{
		Use:   "time",
		Short: "時間範囲を選択 (クリップ選択は解除)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if end < start {
				return fmt.Errorf("--end (%g) は --start (%g) 以上にしてください", end, start)
			}
			return withApp(appOptions{}, func(a *app) error {
				ids := make([]domain.TrackID, 0, len(tracks))
				for _, t := range tracks {
					ids = append(ids, domain.TrackID(t))
				}
				a.project.SelectTime(domain.TimeWindow{Start: start, End: end}, ids)

				bounds := domain.NoFrequencyBounds()
				if cmd.Flags().Changed("f0") {
					bounds.F0 = f0
				}
				if cmd.Flags().Changed("f1") {
					bounds.F1 = f1
				}
				a.project.SetFrequencySelection(bounds)
				printSelection(cmd.OutOrStdout(), a)
				return nil
			})
		},
	}
	cmd.Flags().Float64Var(&start, "start", 0, "開始時刻(秒)")
	cmd.Flags().Float64Var(&end, "end", 0, "終了時刻(秒)")
	cmd.Flags().StringSliceVar(&tracks, "track", nil, "対象トラック (未指定なら全トラック)")
	cmd.Flags().Float64Var(&f0, "f0", domain.UndefinedFrequency, "下限周波数(Hz)")
	cmd.Flags().Float64Var(&f1, "f1", domain.UndefinedFrequency, "上限周波数(Hz)")
	return cmd
}

func newSelectClipsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clips <track:clip>...",
		Short: "クリップを選択 (時間選択は解除)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			keys := make([]domain.ClipKey, 0, len(args))
			for _, arg := range args {
				key, err := domain.ParseClipKey(arg)
				if err != nil {
					return err
				}
				keys = append(keys, key)
			}
			return withApp(appOptions{}, func(a *app) error {
				if err := a.project.SelectClips(keys); err != nil {
					return err
				}
				printSelection(cmd.OutOrStdout(), a)
				return nil
			})
		},
	}
}

func newSelectShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "現在の選択範囲を表示",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(appOptions{dryRun: true}, func(a *app) error {
				printSelection(cmd.OutOrStdout(), a)
				return nil
			})
		},
	}
}

func printSelection(out io.Writer, a *app) {
	p := a.project
	if p.HasSelectedClips() {
		keys := make([]string, 0)
		for _, k := range p.SelectedClips() {
			keys = append(keys, k.String())
		}
		fmt.Fprintf(out, "clips:  %s\n", strings.Join(keys, ", "))
		fmt.Fprintf(out, "span:   %s - %s\n", a.renderTime(p.SelectedClipStartTime()), a.renderTime(p.SelectedClipEndTime()))
	} else {
		fmt.Fprintf(out, "time:   %s - %s\n", a.renderTime(p.DataSelectedStartTime()), a.renderTime(p.DataSelectedEndTime()))
	}

	tracks := make([]string, 0)
	for _, t := range p.SelectedTracks() {
		tracks = append(tracks, string(t))
	}
	fmt.Fprintf(out, "tracks: %s\n", strings.Join(tracks, ", "))

	if f := p.FrequencySelection(); len(f.Controls()) > 0 {
		fmt.Fprintf(out, "freq:   %s - %s\n", formatFrequency(f.F0), formatFrequency(f.F1))
	}
}

func formatFrequency(v float64) string {
	if v == domain.UndefinedFrequency {
		return "-"
	}
	return fmt.Sprintf("%g Hz", v)
}
