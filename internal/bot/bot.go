package bot

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/studieplan/internal/app"
)

// Bot answers read-only questions about the schedule and grades. Only the
// configured owners get answers.
type Bot struct {
	config  *Config
	service *app.Service
	api     *tgbotapi.BotAPI
	owners  map[int64]bool
}

func New(config *Config, service *app.Service) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(config.Bot.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot API: %w", err)
	}

	return &Bot{
		config:  config,
		service: service,
		api:     api,
		owners:  owners(config.Bot.OwnerIDs),
	}, nil
}

func owners(ids []int64) map[int64]bool {
	m := make(map[int64]bool, len(ids))
	for _, id := range ids {
		m[id] = true
	}
	return m
}

func (b *Bot) Start() error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	logger.Info.Printf("Authorized on account %s", b.api.Self.UserName)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case update := <-updates:
			if update.Message == nil {
				continue
			}

			go b.handleMessage(update.Message)

		case <-sigChan:
			logger.Info.Println("Shutting down bot...")
			b.api.StopReceivingUpdates()
			return nil
		}
	}
}

func (b *Bot) handleMessage(msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}

	text, err := b.reply(msg.From.ID, msg.Command(), msg.CommandArguments())
	if err != nil {
		logger.Error.Printf("Command /%s failed: %v", msg.Command(), err)
		text = fmt.Sprintf("Error: %v", err)
	}
	if err := b.sendMessage(msg.Chat.ID, text); err != nil {
		logger.Error.Printf("Failed to send message: %v", err)
	}
}

func (b *Bot) sendMessage(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	_, err := b.api.Send(msg)
	return err
}
