package web

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"f1dashboard/log"
	"f1dashboard/pkg/cmd/setup"
	"f1dashboard/pkg/webserver"
)

var addr string

func NewWebCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "web",
		Short: "serves the web dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			return startWeb()
		},
	}
	cmd.Flags().StringVar(&addr,
		"addr",
		":8080",
		"Listen address of the web dashboard")
	return cmd
}

func startWeb() error {
	setup.InitLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := setup.Start(ctx)
	if err != nil {
		log.Error("web dashboard could not be started", log.ErrorField(err))
		return err
	}
	defer app.Close()

	srv, err := webserver.NewServer(app.Pages, app.Live, app.PubSub)
	if err != nil {
		return err
	}
	if err := srv.Serve(ctx, addr); err != nil {
		log.Error("webserver stopped", log.ErrorField(err))
		return err
	}
	log.Info("Web dashboard terminated")
	return nil
}
