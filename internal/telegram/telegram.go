package telegram

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"mipy/internal/bot"
	"mipy/internal/constants"
	"mipy/internal/dialogue"
	"mipy/internal/voucher"
)

// Client adapts the Telegram Bot API to bot.Messenger.
type Client struct {
	api *tgbotapi.BotAPI

	// AllowedChat, when non-zero, restricts the bot to a single chat.
	AllowedChat int64
}

func New(token string) (*Client, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram login: %w", err)
	}
	return &Client{api: api}, nil
}

func (c *Client) Username() string {
	return c.api.Self.UserName
}

func (c *Client) SendText(chatID int64, text string) error {
	_, err := c.api.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

func (c *Client) SendChoice(chatID int64, prompt string, options []dialogue.Option) error {
	msg := tgbotapi.NewMessage(chatID, prompt)
	msg.ReplyMarkup = Keyboard(options)
	_, err := c.api.Send(msg)
	return err
}

func (c *Client) SendQR(chatID int64, content, caption string) error {
	png, err := voucher.LoginQR(content)
	if err != nil {
		return err
	}
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: "voucher.png", Bytes: png})
	photo.Caption = caption
	_, err = c.api.Send(photo)
	return err
}

// Keyboard lays options out one per row.
func Keyboard(options []dialogue.Option) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(options))
	for _, o := range options {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(o.Label, o.Data()),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// Run long-polls for updates until ctx is done. Updates from one identity
// are handled in arrival order; /cancel skips that queue so a slow router
// call never blocks it.
func (c *Client) Run(ctx context.Context, h bot.Handler) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = constants.TelegramPollTimeout
	updates := c.api.GetUpdatesChan(u)

	log.Printf("🤖 Polling Telegram as @%s", c.Username())

	var wg sync.WaitGroup
	defer wg.Wait()
	var queue serialQueue

	for {
		select {
		case <-ctx.Done():
			c.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			wg.Add(1)
			job := func() {
				defer wg.Done()
				if id := c.dispatch(ctx, h, update); id != "" {
					if _, err := c.api.Request(tgbotapi.NewCallback(id, "")); err != nil {
						log.Printf("⚠️  Failed to answer callback: %v", err)
					}
				}
			}
			key, ordered := sequenceKey(update)
			if !ordered {
				go job()
				continue
			}
			queue.push(key, job)
		}
	}
}

// sequenceKey returns the identity whose updates must be applied in order.
// Cancel commands and updates without a sender are not ordered.
func sequenceKey(update tgbotapi.Update) (string, bool) {
	switch {
	case update.CallbackQuery != nil:
		q := update.CallbackQuery
		if q.Message == nil || q.From == nil {
			return "", false
		}
		return origin(q.Message.Chat.ID, q.From).Identity(), true
	case update.Message != nil:
		msg := update.Message
		if msg.From == nil || msg.Chat == nil {
			return "", false
		}
		if msg.IsCommand() && msg.Command() == "cancel" {
			return "", false
		}
		return origin(msg.Chat.ID, msg.From).Identity(), true
	}
	return "", false
}

// dispatch routes one update and returns the callback id to acknowledge,
// if any.
func (c *Client) dispatch(ctx context.Context, h bot.Handler, update tgbotapi.Update) string {
	switch {
	case update.CallbackQuery != nil:
		q := update.CallbackQuery
		if q.Message == nil || q.From == nil {
			return q.ID
		}
		o := origin(q.Message.Chat.ID, q.From)
		if !c.allowed(o.ChatID) {
			return q.ID
		}
		h.HandleChoice(ctx, o, q.Data)
		return q.ID
	case update.Message != nil:
		msg := update.Message
		if msg.From == nil || msg.Chat == nil {
			return ""
		}
		o := origin(msg.Chat.ID, msg.From)
		if !c.allowed(o.ChatID) {
			log.Printf("⚠️  Ignoring message from unauthorised chat %d", o.ChatID)
			return ""
		}
		if msg.IsCommand() {
			h.HandleCommand(ctx, o, msg.Command())
			return ""
		}
		h.HandleText(ctx, o, msg.Text)
	}
	return ""
}

func (c *Client) allowed(chatID int64) bool {
	return c.AllowedChat == 0 || c.AllowedChat == chatID
}

func origin(chatID int64, from *tgbotapi.User) bot.Origin {
	return bot.Origin{
		ChatID: chatID,
		UserID: strconv.FormatInt(from.ID, 10),
		Name:   from.FirstName,
	}
}

// Test validates the token and, when chatID is non-zero, sends a test
// message to it.
func Test(token string, chatID int64) (string, error) {
	c, err := New(token)
	if err != nil {
		return "", err
	}
	if chatID != 0 {
		if err := c.SendText(chatID, constants.MsgTelegramTest); err != nil {
			return c.Username(), fmt.Errorf("send test message: %w", err)
		}
	}
	return c.Username(), nil
}
