package bot

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"f1dashboard/log"
	"f1dashboard/pkg/apps/mainapp"
	tgbot "f1dashboard/pkg/bot"
	"f1dashboard/pkg/cmd/setup"
	"f1dashboard/pkg/config"
	"f1dashboard/pkg/notification"
	"f1dashboard/pkg/settings"
	"f1dashboard/pkg/webserver"
)

func NewBotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bot",
		Short: "starts the telegram bot",
		RunE: func(cmd *cobra.Command, args []string) error {
			return startBot()
		},
	}
	cmd.Flags().StringVar(&config.TelegramToken,
		"telegram-token",
		"",
		"Token of the telegram bot")
	cmd.Flags().BoolVar(&config.TelegramDebug,
		"telegram-debug",
		false,
		"Log all interactions with the telegram servers")
	cmd.Flags().StringVar(&config.DBFile,
		"db",
		settings.DefaultDBFile,
		"sqlite file holding the notification settings")
	cmd.Flags().StringVar(&config.WebAddr,
		"web-addr",
		"",
		"Also serve the web dashboard on this address")
	return cmd
}

//nolint:funlen // by design
func startBot() error {
	setup.InitLogger()
	if config.TelegramToken == "" {
		return errors.New("a telegram token is required (--telegram-token or F1DASH_TELEGRAM_TOKEN)")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := setup.Start(ctx)
	if err != nil {
		log.Error("bot could not be started", log.ErrorField(err))
		return err
	}
	defer app.Close()

	botAPI, err := tgbotapi.NewBotAPI(config.TelegramToken)
	if err != nil {
		log.Error("could not connect to telegram", log.ErrorField(err))
		return err
	}
	botAPI.Debug = config.TelegramDebug
	log.Info("Authorized on account", log.String("account", botAPI.Self.UserName))

	sm, err := settings.NewManager(config.DBFile)
	if err != nil {
		log.Error("could not open settings", log.ErrorField(err))
		return err
	}
	defer sm.Close()

	nm := notification.NewManager(ctx, botAPI, sm, app.PubSub)
	go nm.Start(app.Done())

	mainApp := mainapp.NewMainApp(botAPI, app.Pages, app.PubSub, sm)
	router := tgbot.NewRouter(botAPI, mainApp)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := botAPI.GetUpdatesChan(u)
	go router.ReceiveUpdates(ctx, updates)

	if config.WebAddr != "" {
		srv, err := webserver.NewServer(app.Pages, app.Live, app.PubSub)
		if err != nil {
			return err
		}
		go func() {
			if err := srv.Serve(ctx, config.WebAddr); err != nil {
				log.Error("webserver stopped", log.ErrorField(err))
			}
		}()
	}

	log.Info("Start listening for updates. Press Ctrl-C to stop it")
	<-ctx.Done()
	botAPI.StopReceivingUpdates()
	log.Info("Bot terminated")
	return nil
}
