package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"fxapply/internal/adapter/primary/web"
	"fxapply/internal/adapter/secondary/report"
	"fxapply/internal/logging"
)

func newServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Web UIとREST APIを起動",
		RunE: func(cmd *cobra.Command, args []string) error {
			recorder := &report.Recorder{}
			a, err := openApp(appOptions{reporter: recorder})
			if err != nil {
				return err
			}
			defer a.close()

			if !cmd.Flags().Changed("addr") {
				addr = a.cfg.Server.Addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			srv := web.NewServer(web.Dependencies{
				UseCase:   a.uc,
				Effects:   a.catalog,
				Selection: a.project,
				History:   a.store,
				Reports:   recorder,
				Formats:   a.formats,
				Save:      a.save,
			}, addr)
			fmt.Fprintf(cmd.OutOrStdout(), "fxapply UI running at http://%s\n", addr)
			logging.Infof("fxapply UI: http://%s", addr)

			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = srv.Shutdown(shutdownCtx)
			}()

			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return a.save()
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "HTTPサーバーのアドレス:ポート (未指定なら設定値)")
	return cmd
}
