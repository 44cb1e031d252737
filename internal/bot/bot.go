package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"mipy/internal/config"
	"mipy/internal/constants"
	"mipy/internal/dialogue"
	"mipy/internal/logger"
	"mipy/internal/router"
	"mipy/internal/utils"
	"mipy/internal/voucher"
)

// Messenger delivers replies to one chat.
type Messenger interface {
	SendText(chatID int64, text string) error
	SendChoice(chatID int64, prompt string, options []dialogue.Option) error
	// SendQR delivers content as a QR code; each transport renders it its own way.
	SendQR(chatID int64, content, caption string) error
}

// Router is the set of router operations the bot drives.
type Router interface {
	dialogue.Backend
	Status(ctx context.Context) (*router.Resource, error)
	Recent(ctx context.Context, limit int) ([]voucher.Record, error)
}

// Handler receives decoded operator input; transports drive a Handler.
type Handler interface {
	HandleCommand(ctx context.Context, o Origin, cmd string)
	HandleText(ctx context.Context, o Origin, text string)
	HandleChoice(ctx context.Context, o Origin, data string)
}

// Origin identifies who sent an update.
type Origin struct {
	ChatID int64
	UserID string
	Name   string
}

// Identity is the dialogue key: one dialogue per user per chat.
func (o Origin) Identity() string {
	return strconv.FormatInt(o.ChatID, 10) + ":" + o.UserID
}

// ChatOf recovers the chat id from an identity built by Origin.Identity.
func ChatOf(identity string) (int64, bool) {
	head, _, ok := strings.Cut(identity, ":")
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(head, 10, 64)
	return id, err == nil
}

// Bot maps operator commands and replies onto the router and the
// provisioning dialogues. It is safe for concurrent use.
type Bot struct {
	messenger Messenger
	router    Router
	machine   *dialogue.Machine
	journal   *logger.Journal

	// Settings, when set, supplies the router host for status reports and
	// the hotspot login URL for voucher QR codes.
	Settings func() (config.Settings, error)
}

func New(m Messenger, r Router, store dialogue.Store, journal *logger.Journal) *Bot {
	b := &Bot{
		messenger: m,
		router:    r,
		machine:   dialogue.NewMachine(store, r),
		journal:   journal,
	}
	b.machine.Progress = func(chatID int64, text string) {
		b.send(chatID, text)
	}
	store.OnExpire(b.expired)
	return b
}

// Machine exposes the dialogue machine.
func (b *Bot) Machine() *dialogue.Machine {
	return b.machine
}

// HandleCommand runs a slash command; cmd is given without the slash.
func (b *Bot) HandleCommand(ctx context.Context, o Origin, cmd string) {
	switch cmd {
	case "start", "help":
		b.send(o.ChatID, fmt.Sprintf(constants.MsgWelcome, o.Name))
	case "list":
		b.list(ctx, o)
	case "status":
		b.status(ctx, o)
	case "detail":
		b.send(o.ChatID, constants.MsgCheckingStatus)
		b.step(ctx, o, dialogue.Event{Input: dialogue.InputDetail})
	case "voucher":
		b.step(ctx, o, dialogue.Event{Input: dialogue.InputVoucher})
	case "cancel":
		op := b.journal.Begin("cancel", o.Identity(), o.ChatID)
		switch b.machine.Cancel(o.Identity()) {
		case dialogue.Cancelled:
			log.Printf("🛑 Dialogue %s cancelled by operator", o.Identity())
			op.Done("cancelled", nil)
			b.send(o.ChatID, constants.MsgCancelled)
		case dialogue.CancelTooLate:
			op.Done("voucher already being created", nil)
			b.send(o.ChatID, constants.MsgCancelTooLate)
		default:
			op.Done("nothing to cancel", nil)
			b.send(o.ChatID, constants.MsgNothingToCancel)
		}
	default:
		b.send(o.ChatID, constants.MsgUnknownCommand)
	}
}

// HandleText feeds free text into the sender's dialogue.
func (b *Bot) HandleText(ctx context.Context, o Origin, text string) {
	b.step(ctx, o, dialogue.Event{Input: dialogue.InputText, Value: text})
}

// HandleChoice feeds a button press, encoded by dialogue.Option.Data.
func (b *Bot) HandleChoice(ctx context.Context, o Origin, data string) {
	in, value, ok := dialogue.ParseChoice(data)
	if !ok {
		log.Printf("⚠️  Ignoring unknown choice %q from %s", data, o.Identity())
		b.send(o.ChatID, constants.MsgPickOption)
		return
	}
	b.step(ctx, o, dialogue.Event{Input: in, Value: value})
}

func (b *Bot) step(ctx context.Context, o Origin, ev dialogue.Event) {
	ev.ID = o.Identity()
	ev.ChatID = o.ChatID

	reply, err := b.machine.Step(ctx, ev)
	if errors.Is(err, dialogue.ErrNoDialogue) {
		b.send(o.ChatID, constants.MsgNoDialogue)
		return
	}
	if err != nil {
		log.Printf("❌ Dialogue step for %s failed: %v", ev.ID, err)
		b.send(o.ChatID, RenderError(err))
		return
	}
	b.deliver(o, reply)
}

func (b *Bot) deliver(o Origin, reply dialogue.Reply) {
	switch {
	case reply.Err != nil:
		op := b.journal.Begin(dialogueOp(reply), o.Identity(), o.ChatID)
		op.Done("", reply.Err)
		b.send(o.ChatID, RenderError(reply.Err))
	case reply.Created != nil:
		op := b.journal.Begin("submit", o.Identity(), o.ChatID)
		op.Done(fmt.Sprintf("voucher %s created (%s)", reply.Created.Username, reply.VoucherID), nil)
		b.send(o.ChatID, RenderCreated(*reply.Created))
		b.sendQR(o.ChatID, *reply.Created)
	case reply.Detail != nil:
		op := b.journal.Begin("detail", o.Identity(), o.ChatID)
		op.Done(reply.Detail.Name, nil)
		b.send(o.ChatID, RenderDetail(reply.Detail))
	case len(reply.Options) > 0:
		if err := b.messenger.SendChoice(o.ChatID, reply.Text, reply.Options); err != nil {
			log.Printf("❌ Failed to send choice to %d: %v", o.ChatID, err)
		}
	case reply.Text != "":
		b.send(o.ChatID, reply.Text)
	}
}

func dialogueOp(reply dialogue.Reply) string {
	if router.IsKind(reply.Err, router.KindRecordNotFound) {
		return "detail"
	}
	return "dialogue"
}

func (b *Bot) list(ctx context.Context, o Origin) {
	op := b.journal.Begin("list", o.Identity(), o.ChatID)
	b.send(o.ChatID, constants.MsgFetchingList)

	records, err := b.router.Recent(ctx, constants.RecentVoucherLimit)
	if err != nil {
		log.Printf("❌ Listing vouchers failed: %v", err)
		op.Done("", err)
		b.send(o.ChatID, RenderError(err))
		return
	}
	op.Done(fmt.Sprintf("%d vouchers", len(records)), nil)
	b.send(o.ChatID, RenderList(records))
}

func (b *Bot) status(ctx context.Context, o Origin) {
	op := b.journal.Begin("status", o.Identity(), o.ChatID)
	b.send(o.ChatID, constants.MsgCheckingStatus)

	res, err := b.router.Status(ctx)
	if err != nil {
		log.Printf("❌ Status check failed: %v", err)
		op.Done("", err)
		b.send(o.ChatID, RenderError(err))
		return
	}
	op.Done("connected", nil)
	b.send(o.ChatID, RenderStatus(b.settings().RouterHost, res))
}

func (b *Bot) settings() config.Settings {
	if b.Settings == nil {
		return config.Settings{}
	}
	s, err := b.Settings()
	if err != nil {
		return config.Settings{}
	}
	return s
}

func (b *Bot) sendQR(chatID int64, d voucher.Draft) {
	base := b.settings().HotspotLoginURL
	if base == "" {
		return
	}
	caption := fmt.Sprintf(constants.MsgQRCaption, d.Username)
	if err := b.messenger.SendQR(chatID, voucher.LoginURL(base, d), caption); err != nil {
		log.Printf("⚠️  Failed to send voucher QR to %d: %v", chatID, err)
	}
}

func (b *Bot) expired(identity string) {
	chatID, ok := ChatOf(identity)
	if !ok {
		return
	}
	b.journal.Begin("expire", identity, chatID).Done("dialogue expired", nil)
	b.send(chatID, fmt.Sprintf(constants.MsgExpired, utils.FormatDuration(constants.DialogueTTL)))
}

func (b *Bot) send(chatID int64, text string) {
	if err := b.messenger.SendText(chatID, text); err != nil {
		log.Printf("❌ Failed to send message to %d: %v", chatID, err)
	}
}
