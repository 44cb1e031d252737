package bot

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"mipy/internal/config"
	"mipy/internal/constants"
	"mipy/internal/dialogue"
	"mipy/internal/logger"
	"mipy/internal/router"
	"mipy/internal/voucher"
)

type sent struct {
	chatID  int64
	text    string
	options []dialogue.Option
	qr      string
}

type fakeMessenger struct {
	mu   sync.Mutex
	msgs []sent
}

func (f *fakeMessenger) SendText(chatID int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, sent{chatID: chatID, text: text})
	return nil
}

func (f *fakeMessenger) SendChoice(chatID int64, prompt string, options []dialogue.Option) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, sent{chatID: chatID, text: prompt, options: options})
	return nil
}

func (f *fakeMessenger) SendQR(chatID int64, content, caption string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, sent{chatID: chatID, text: caption, qr: content})
	return nil
}

func (f *fakeMessenger) last() sent {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.msgs) == 0 {
		return sent{}
	}
	return f.msgs[len(f.msgs)-1]
}

func (f *fakeMessenger) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.msgs))
	for _, m := range f.msgs {
		out = append(out, m.text)
	}
	return out
}

type fakeRouter struct {
	profiles  []string
	records   []voucher.Record
	resource  *router.Resource
	err       error
	submitted []voucher.Draft
	limit     int
}

func (f *fakeRouter) Ping(ctx context.Context) error { return f.err }

func (f *fakeRouter) Profiles(ctx context.Context) ([]string, error) {
	return f.profiles, f.err
}

func (f *fakeRouter) Submit(ctx context.Context, d voucher.Draft) (string, error) {
	f.submitted = append(f.submitted, d)
	return "*9", f.err
}

func (f *fakeRouter) Detail(ctx context.Context, username string) (*voucher.Detail, error) {
	for _, r := range f.records {
		if r.Name == username {
			return &voucher.Detail{Record: r}, nil
		}
	}
	return nil, router.NewError(router.KindRecordNotFound, "detail", username)
}

func (f *fakeRouter) Status(ctx context.Context) (*router.Resource, error) {
	return f.resource, f.err
}

func (f *fakeRouter) Recent(ctx context.Context, limit int) ([]voucher.Record, error) {
	f.limit = limit
	return f.records, f.err
}

var operator = Origin{ChatID: 42, UserID: "7", Name: "Ana"}

func newTestBot(t *testing.T, r *fakeRouter) (*Bot, *fakeMessenger, *bytes.Buffer) {
	t.Helper()
	store := dialogue.NewMemoryStore()
	t.Cleanup(func() { store.Close() })
	var journal bytes.Buffer
	m := &fakeMessenger{}
	return New(m, r, store, logger.New(&journal)), m, &journal
}

func TestHandleStart(t *testing.T) {
	b, m, _ := newTestBot(t, &fakeRouter{})
	b.HandleCommand(context.Background(), operator, "start")
	if got := m.last().text; !strings.HasPrefix(got, "Welcome Ana") {
		t.Errorf("start reply = %q", got)
	}
}

func TestHandleUnknownCommand(t *testing.T) {
	b, m, _ := newTestBot(t, &fakeRouter{})
	b.HandleCommand(context.Background(), operator, "reboot")
	if got := m.last().text; got != constants.MsgUnknownCommand {
		t.Errorf("reply = %q, want %q", got, constants.MsgUnknownCommand)
	}
}

func TestVoucherDialogueEndToEnd(t *testing.T) {
	r := &fakeRouter{profiles: []string{"default", "1day"}}
	b, m, journal := newTestBot(t, r)
	b.Settings = func() (config.Settings, error) {
		return config.Settings{HotspotLoginURL: "http://hotspot.lan/login"}, nil
	}
	ctx := context.Background()

	b.HandleCommand(ctx, operator, "voucher")
	choice := m.last()
	if len(choice.options) != 2 {
		t.Fatalf("profile choice = %+v", choice)
	}
	b.HandleChoice(ctx, operator, choice.options[1].Data())
	b.HandleChoice(ctx, operator, "custom:")
	b.HandleText(ctx, operator, "lobby")
	b.HandleChoice(ctx, operator, "same:")
	b.HandleText(ctx, operator, "1d")
	b.HandleText(ctx, operator, "none")

	if len(r.submitted) != 1 {
		t.Fatalf("submitted %d vouchers, want 1", len(r.submitted))
	}
	want := voucher.Draft{Profile: "1day", Username: "lobby", Password: "lobby", LimitUptime: "1d"}
	if r.submitted[0] != want {
		t.Errorf("submitted = %+v, want %+v", r.submitted[0], want)
	}

	texts := m.texts()
	created := texts[len(texts)-2]
	if !strings.Contains(created, "Voucher created") || !strings.Contains(created, "Comment: None") {
		t.Errorf("created message = %q", created)
	}
	qr := m.last()
	if qr.qr != "http://hotspot.lan/login?password=lobby&username=lobby" {
		t.Errorf("QR content = %q", qr.qr)
	}
	if !strings.Contains(journal.String(), `"operation":"submit"`) {
		t.Errorf("journal missing submit entry: %s", journal.String())
	}
}

func TestTextWithoutDialogue(t *testing.T) {
	b, m, _ := newTestBot(t, &fakeRouter{})
	b.HandleText(context.Background(), operator, "hello")
	if got := m.last().text; got != constants.MsgNoDialogue {
		t.Errorf("reply = %q, want %q", got, constants.MsgNoDialogue)
	}
}

func TestHandleChoiceRejectsGarbage(t *testing.T) {
	b, m, _ := newTestBot(t, &fakeRouter{})
	b.HandleChoice(context.Background(), operator, "drop-table")
	if got := m.last().text; got != constants.MsgPickOption {
		t.Errorf("reply = %q, want %q", got, constants.MsgPickOption)
	}
}

func TestCancel(t *testing.T) {
	b, m, _ := newTestBot(t, &fakeRouter{profiles: []string{"default"}})
	ctx := context.Background()

	b.HandleCommand(ctx, operator, "cancel")
	if got := m.last().text; got != constants.MsgNothingToCancel {
		t.Errorf("reply = %q, want %q", got, constants.MsgNothingToCancel)
	}

	b.HandleCommand(ctx, operator, "voucher")
	b.HandleCommand(ctx, operator, "cancel")
	if got := m.last().text; got != constants.MsgCancelled {
		t.Errorf("reply = %q, want %q", got, constants.MsgCancelled)
	}
	b.HandleChoice(ctx, operator, "profile:0")
	if got := m.last().text; got != constants.MsgNoDialogue {
		t.Errorf("reply after cancel = %q, want %q", got, constants.MsgNoDialogue)
	}
}

type gatedRouter struct {
	*fakeRouter
	started chan struct{}
	release chan struct{}
}

func (g *gatedRouter) Submit(ctx context.Context, d voucher.Draft) (string, error) {
	close(g.started)
	<-g.release
	return g.fakeRouter.Submit(ctx, d)
}

func TestCancelDuringSubmit(t *testing.T) {
	g := &gatedRouter{
		fakeRouter: &fakeRouter{profiles: []string{"default"}},
		started:    make(chan struct{}),
		release:    make(chan struct{}),
	}
	store := dialogue.NewMemoryStore()
	defer store.Close()
	m := &fakeMessenger{}
	b := New(m, g, store, logger.New(&bytes.Buffer{}))
	ctx := context.Background()

	b.HandleCommand(ctx, operator, "voucher")
	b.HandleChoice(ctx, operator, "profile:0")
	b.HandleChoice(ctx, operator, "random:")
	b.HandleChoice(ctx, operator, "same:")
	b.HandleText(ctx, operator, "none")

	done := make(chan struct{})
	go func() {
		b.HandleText(ctx, operator, "none")
		close(done)
	}()
	<-g.started
	b.HandleCommand(ctx, operator, "cancel")
	if got := m.last().text; got != constants.MsgCancelTooLate {
		t.Errorf("cancel reply = %q, want %q", got, constants.MsgCancelTooLate)
	}
	close(g.release)
	<-done

	for _, text := range m.texts() {
		if text == constants.MsgCancelled {
			t.Errorf("cancel reported after a completed create: %q", m.texts())
		}
	}
	if len(g.submitted) != 1 {
		t.Errorf("submitted %d vouchers, want 1", len(g.submitted))
	}
	if !strings.Contains(strings.Join(m.texts(), "\n"), "Voucher created") {
		t.Errorf("no created message in %q", m.texts())
	}
}

func TestDialoguesAreIsolatedPerUser(t *testing.T) {
	b, _, _ := newTestBot(t, &fakeRouter{profiles: []string{"default"}})
	other := Origin{ChatID: 42, UserID: "8", Name: "Ben"}
	ctx := context.Background()

	b.HandleCommand(ctx, operator, "voucher")
	b.HandleCommand(ctx, other, "voucher")
	b.HandleChoice(ctx, operator, "profile:0")

	d, ok := b.Machine().Store().Get(other.Identity())
	if !ok || d.State != dialogue.StateProfile {
		t.Errorf("other dialogue = %+v, %v; want untouched profile step", d, ok)
	}
}

func TestListAndStatus(t *testing.T) {
	r := &fakeRouter{
		records:  []voucher.Record{{Name: "a", Profile: "default"}, {Name: "b", Profile: "1day", LimitUptime: "1d"}},
		resource: &router.Resource{Version: "7.14", Uptime: "1w", CPULoad: "3", FreeMemory: 64 << 20},
	}
	b, m, _ := newTestBot(t, r)
	b.Settings = func() (config.Settings, error) { return config.Settings{RouterHost: "10.0.0.1"}, nil }
	ctx := context.Background()

	b.HandleCommand(ctx, operator, "list")
	if r.limit != constants.RecentVoucherLimit {
		t.Errorf("Recent limit = %d, want %d", r.limit, constants.RecentVoucherLimit)
	}
	list := m.last().text
	if !strings.Contains(list, "Username: b") || !strings.Contains(list, "Limit: None") {
		t.Errorf("list = %q", list)
	}

	b.HandleCommand(ctx, operator, "status")
	status := m.last().text
	for _, want := range []string{"IP: 10.0.0.1", "Version: 7.14", "CPU: 3%", "Free memory: 64.00 MB"} {
		if !strings.Contains(status, want) {
			t.Errorf("status missing %q: %q", want, status)
		}
	}
}

func TestDetailFlow(t *testing.T) {
	r := &fakeRouter{records: []voucher.Record{{ID: "*1", Name: "guest", Profile: "default", UptimeUsed: "5m"}}}
	b, m, _ := newTestBot(t, r)
	ctx := context.Background()

	b.HandleCommand(ctx, operator, "detail")
	if got := m.last().text; got != constants.MsgEnterDetailUser {
		t.Fatalf("reply = %q, want %q", got, constants.MsgEnterDetailUser)
	}
	b.HandleText(ctx, operator, "guest")
	detail := m.last().text
	if !strings.Contains(detail, "OFFLINE") || !strings.Contains(detail, "ID: *1") {
		t.Errorf("detail = %q", detail)
	}

	b.HandleCommand(ctx, operator, "detail")
	b.HandleText(ctx, operator, "ghost")
	if got := m.last().text; !strings.Contains(got, `"ghost" was not found`) {
		t.Errorf("not found reply = %q", got)
	}
}

func TestRouterFailureRendered(t *testing.T) {
	r := &fakeRouter{err: router.NewError(router.KindAuthentication, "login", "")}
	b, m, journal := newTestBot(t, r)
	b.HandleCommand(context.Background(), operator, "voucher")
	if got := m.last().text; !strings.Contains(got, "wrong username or password") {
		t.Errorf("reply = %q", got)
	}
	if !strings.Contains(journal.String(), `"error_kind":"authentication failed"`) {
		t.Errorf("journal = %s", journal.String())
	}
}

func TestExpiredDialogueNotifiesChat(t *testing.T) {
	store := dialogue.NewMemoryStore()
	defer store.Close()
	m := &fakeMessenger{}
	New(m, &fakeRouter{}, store, nil)

	store.Save(&dialogue.Dialogue{ID: operator.Identity(), ChatID: 42, ExpiresAt: time.Now().Add(-time.Second)})
	store.Get(operator.Identity())

	got := m.last()
	if got.chatID != 42 || got.text != "⌛ Your unfinished dialogue was idle for 15 minutes and has been discarded." {
		t.Errorf("expiry message = %+v", got)
	}
}

func TestChatOf(t *testing.T) {
	if id, ok := ChatOf(operator.Identity()); !ok || id != 42 {
		t.Errorf("ChatOf = %d, %v; want 42, true", id, ok)
	}
	if _, ok := ChatOf("console"); ok {
		t.Error("ChatOf accepted an identity without a chat id")
	}
}

func TestRenderErrorCoversEveryKind(t *testing.T) {
	kinds := []router.Kind{
		router.KindUnknown, router.KindUnreachable, router.KindNameResolution,
		router.KindAuthentication, router.KindConnectionClosed, router.KindProtocol,
		router.KindTLSConfiguration, router.KindInvalidSettings, router.KindRecordNotFound,
		router.KindDuplicateName, router.KindEmptyProfileList,
	}
	seen := map[string]router.Kind{}
	for _, k := range kinds {
		msg := RenderError(router.NewError(k, "op", "x"))
		if prev, dup := seen[msg]; dup {
			t.Errorf("%s and %s render the same message %q", prev, k, msg)
		}
		seen[msg] = k
	}
	if got := RenderError(config.ErrNotFound); got != constants.MsgNoSettings {
		t.Errorf("RenderError(ErrNotFound) = %q", got)
	}
}

func TestRenderDetailOnline(t *testing.T) {
	d := &voucher.Detail{
		Record: voucher.Record{ID: "*2", Name: "guest", Profile: "default", Comment: "room 4"},
		Active: &voucher.ActiveSession{User: "guest", Address: "10.5.50.2", BytesIn: 1536, BytesOut: 1048576},
	}
	out := RenderDetail(d)
	for _, want := range []string{"ONLINE", "Download: 1.50 KB", "Upload: 1.00 MB", "Total usage: 1.00 MB", "Comment: room 4"} {
		if !strings.Contains(out, want) {
			t.Errorf("detail missing %q:\n%s", want, out)
		}
	}
}
