package notification

import (
	"context"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/nikoksr/notify"

	"f1dashboard/log"
	"f1dashboard/pkg/caster"
	"f1dashboard/pkg/livetiming"
	"f1dashboard/pkg/pubsub"
	"f1dashboard/pkg/settings"
)

const title = "New session started:"

type Lister interface {
	ListUsersForSessionStarted(sessionType string) ([]settings.TelegramUser, error)
}

// SendFunc delivers one message to a set of telegram chats.
type SendFunc func(ctx context.Context, chatIDs []int64, subject, message string) error

type Manager struct {
	ctx       context.Context
	lister    Lister
	send      SendFunc
	startedCh <-chan string
	caster    caster.ChannelCaster[livetiming.SessionStarted]
}

func NewManager(ctx context.Context, bot *tgbotapi.BotAPI, lister Lister, pubsubMgr *pubsub.PubSub[string]) *Manager {
	return NewManagerWithSender(ctx, lister, pubsubMgr, telegramSender(bot))
}

func NewManagerWithSender(ctx context.Context, lister Lister, pubsubMgr *pubsub.PubSub[string], send SendFunc) *Manager {
	return &Manager{
		ctx:       ctx,
		lister:    lister,
		send:      send,
		startedCh: pubsubMgr.Subscribe(livetiming.PubSubSessionStartedTopic),
		caster:    caster.JSONChannelCaster[livetiming.SessionStarted]{},
	}
}

func (m *Manager) Start(exitChan <-chan bool) {
	for {
		select {
		case <-exitChan:
			return
		case <-m.ctx.Done():
			return
		case payload, ok := <-m.startedCh:
			if !ok {
				return
			}
			started, err := m.caster.From(payload)
			if err != nil {
				log.Warn("could not decode session started", log.ErrorField(err))
				continue
			}
			m.HandleSessionStarted(started)
		}
	}
}

// HandleSessionStarted notifies every user subscribed to the kind of the
// started session. Unknown kinds are ignored.
func (m *Manager) HandleSessionStarted(started livetiming.SessionStarted) {
	kind := started.Kind()
	if !settings.IsSessionType(kind) {
		log.Debug("session not notifiable", log.String("session", started.SessionName), log.String("kind", kind))
		return
	}

	recipients, err := m.lister.ListUsersForSessionStarted(kind)
	if err != nil {
		log.Error("listing users for session started", log.ErrorField(err))
		return
	}
	log.Info("sending notification",
		log.String("meeting", started.MeetingName),
		log.String("kind", kind),
		log.Int("recipients", len(recipients)))

	if err := m.sendNotification(recipients, started); err != nil {
		log.Error("notifying users", log.ErrorField(err))
	}
}

func (m *Manager) sendNotification(tusers []settings.TelegramUser, started livetiming.SessionStarted) error {
	if len(tusers) == 0 {
		return nil
	}

	chatIDs := make([]int64, 0, len(tusers))
	for _, tuser := range tusers {
		chatID, err := strconv.ParseInt(tuser.ChatID, 10, 64)
		if err != nil {
			log.Warn("invalid chat id", log.String("user", tuser.ID), log.String("chat", tuser.ChatID))
			continue
		}
		chatIDs = append(chatIDs, chatID)
	}
	if len(chatIDs) == 0 {
		return nil
	}
	return m.send(m.ctx, chatIDs, title, started.String())
}

func telegramSender(bot BotSender) SendFunc {
	return func(ctx context.Context, chatIDs []int64, subject, message string) error {
		tg := &Telegram{}
		tg.SetClient(bot)
		tg.AddReceivers(chatIDs...)

		return notify.NewWithServices(tg).Send(ctx, subject, message)
	}
}
