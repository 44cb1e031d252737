package dialogue

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"mipy/internal/constants"
	"mipy/internal/security"
	"mipy/internal/voucher"
)

// ErrNoDialogue is returned for input that arrives outside any dialogue.
var ErrNoDialogue = errors.New("no dialogue in progress")

// errStay keeps the dialogue in its current state and re-prompts.
var errStay = errors.New("stay in state")

// Backend is the router-facing side of the dialogues.
type Backend interface {
	Ping(ctx context.Context) error
	Profiles(ctx context.Context) ([]string, error)
	Submit(ctx context.Context, d voucher.Draft) (string, error)
	Detail(ctx context.Context, username string) (*voucher.Detail, error)
}

type action func(m *Machine, ctx context.Context, d *Dialogue, ev Event) (Reply, error)

type transition struct {
	next   State
	action action
}

// transitions is the complete state × input table. Cancellation is valid
// from every state and is handled by Machine.Cancel.
var transitions = map[State]map[Input]transition{
	StateStart: {
		InputVoucher: {StateProfile, (*Machine).loadProfiles},
		InputDetail:  {StateAwaitDetail, (*Machine).checkRouter},
	},
	StateProfile: {
		InputProfile: {StateUsernameType, (*Machine).pickProfile},
	},
	StateUsernameType: {
		InputRandom: {StatePassword, (*Machine).randomUsername},
		InputCustom: {StateAwaitUsername, nil},
	},
	StateAwaitUsername: {
		InputText: {StatePassword, (*Machine).customUsername},
	},
	StatePassword: {
		InputRandom: {StateLimit, (*Machine).randomPassword},
		InputSame:   {StateLimit, (*Machine).samePassword},
		InputCustom: {StateAwaitPassword, nil},
	},
	StateAwaitPassword: {
		InputText: {StateLimit, (*Machine).customPassword},
	},
	StateLimit: {
		InputText: {StateComment, (*Machine).setLimit},
	},
	StateComment: {
		InputText: {StateSubmit, (*Machine).setComment},
	},
	StateSubmit: {
		inputSubmit: {StateEnd, (*Machine).submit},
	},
	StateAwaitDetail: {
		InputText: {StateEnd, (*Machine).lookupDetail},
	},
}

// Machine drives provisioning and detail dialogues. Each identity's state
// lives in the Store; steps for one identity are serialized.
type Machine struct {
	store   Store
	backend Backend
	ttl     time.Duration

	// Random generates credentials; RandomString by default.
	Random func(n int) string
	// Progress, when set, receives interim notices before slow router calls.
	Progress func(chatID int64, text string)

	locks    keyedMutex
	inflight sync.Map
}

func NewMachine(store Store, backend Backend) *Machine {
	return &Machine{
		store:   store,
		backend: backend,
		ttl:     constants.DialogueTTL,
		Random:  voucher.RandomString,
	}
}

// Store exposes the dialogue store, e.g. to register expiry callbacks.
func (m *Machine) Store() Store {
	return m.store
}

// Step feeds one event into the dialogue identified by ev.ID. Starting
// inputs always begin a fresh dialogue, discarding any previous draft.
func (m *Machine) Step(ctx context.Context, ev Event) (Reply, error) {
	unlock := m.locks.lock(ev.ID)
	defer unlock()

	var d *Dialogue
	switch ev.Input {
	case InputVoucher, InputDetail:
		d = &Dialogue{ID: ev.ID, ChatID: ev.ChatID, State: StateStart}
	default:
		existing, ok := m.store.Get(ev.ID)
		if !ok {
			return Reply{}, ErrNoDialogue
		}
		d = existing
	}

	ctx, cancel := context.WithCancel(ctx)
	run := &running{cancel: cancel}
	m.inflight.Store(ev.ID, run)
	defer func() {
		m.inflight.Delete(ev.ID)
		cancel()
	}()

	reply := m.apply(ctx, d, ev)
	if d.State == StateSubmit {
		if run.beginSubmit() {
			m.progress(d.ChatID, constants.MsgCreating)
			// Record creation is a single call that must reach a definite
			// outcome, so it is not interrupted by a cancel.
			reply = m.apply(context.WithoutCancel(ctx), d, Event{ID: d.ID, ChatID: d.ChatID, Input: inputSubmit})
		} else {
			log.Printf("🛑 Dialogue %s cancelled before submit", d.ID)
			d.State = StateEnd
			reply = Reply{}
		}
	}

	if d.State == StateEnd {
		m.store.Delete(d.ID)
		reply.Done = true
		return reply, nil
	}
	now := time.Now()
	d.UpdatedAt = now
	d.ExpiresAt = now.Add(m.ttl)
	m.store.Save(d)
	return reply, nil
}

// CancelResult reports what Machine.Cancel did.
type CancelResult int

const (
	// CancelNothing means there was no dialogue and no step in flight.
	CancelNothing CancelResult = iota
	// Cancelled means the dialogue was discarded and any router call it had
	// in flight was interrupted.
	Cancelled
	// CancelTooLate means the voucher is already being created. The create
	// call runs to completion and its outcome is delivered as usual.
	CancelTooLate
)

// Cancel discards the dialogue for id and interrupts any router call it
// has in flight, unless that call is the final create.
func (m *Machine) Cancel(id string) CancelResult {
	interrupted := false
	if v, ok := m.inflight.Load(id); ok {
		if !v.(*running).interrupt() {
			return CancelTooLate
		}
		interrupted = true
	}

	unlock := m.locks.lock(id)
	defer unlock()
	if _, ok := m.store.Get(id); ok {
		m.store.Delete(id)
		return Cancelled
	}
	if interrupted {
		return Cancelled
	}
	return CancelNothing
}

// running is the step currently executing for one identity.
type running struct {
	mu         sync.Mutex
	cancel     context.CancelFunc
	submitting bool
	cancelled  bool
}

// beginSubmit marks the step as creating the voucher. It fails when a
// cancel already arrived.
func (r *running) beginSubmit() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancelled {
		return false
	}
	r.submitting = true
	return true
}

// interrupt cancels the step unless it is submitting.
func (r *running) interrupt() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.submitting {
		return false
	}
	r.cancelled = true
	r.cancel()
	return true
}

func (m *Machine) apply(ctx context.Context, d *Dialogue, ev Event) Reply {
	t, ok := transitions[d.State][ev.Input]
	if !ok {
		return m.reprompt(d, constants.MsgPickOption)
	}

	var reply Reply
	var err error
	if t.action != nil {
		reply, err = t.action(m, ctx, d, ev)
	}

	switch {
	case err == nil:
		d.State = t.next
	case errors.Is(err, errStay):
		return m.reprompt(d, reply.Text)
	case ctx.Err() != nil:
		log.Printf("🛑 Dialogue %s cancelled in %s", d.ID, d.State)
		d.State = StateEnd
		return Reply{}
	default:
		log.Printf("❌ Dialogue %s failed in %s: %v", d.ID, d.State, err)
		d.State = StateEnd
		return Reply{Err: err}
	}

	if reply.empty() {
		reply = m.prompt(d)
	}
	return reply
}

// prompt is what each state asks of the operator on entry.
func (m *Machine) prompt(d *Dialogue) Reply {
	dr := d.Draft
	switch d.State {
	case StateProfile:
		opts := make([]Option, 0, len(d.Profiles))
		for i, p := range d.Profiles {
			opts = append(opts, Option{Label: p, Input: InputProfile, Value: strconv.Itoa(i)})
		}
		return Reply{Text: constants.MsgChooseProfile, Options: opts}
	case StateUsernameType:
		return Reply{
			Text: fmt.Sprintf(constants.MsgChooseUserType, dr.Profile),
			Options: []Option{
				{Label: constants.LabelRandom, Input: InputRandom},
				{Label: constants.LabelCustom, Input: InputCustom},
			},
		}
	case StateAwaitUsername:
		return Reply{Text: constants.MsgEnterUsername}
	case StatePassword:
		return Reply{
			Text: fmt.Sprintf(constants.MsgChoosePassType, dr.Profile, dr.Username),
			Options: []Option{
				{Label: constants.LabelRandom, Input: InputRandom},
				{Label: constants.LabelSame, Input: InputSame},
				{Label: constants.LabelCustom, Input: InputCustom},
			},
		}
	case StateAwaitPassword:
		return Reply{Text: constants.MsgEnterPassword}
	case StateLimit:
		return Reply{Text: fmt.Sprintf(constants.MsgEnterLimit, dr.Profile, dr.Username, dr.Password)}
	case StateComment:
		return Reply{Text: fmt.Sprintf(constants.MsgEnterComment, dr.Profile, dr.Username, dr.Password, orNone(dr.LimitUptime))}
	case StateAwaitDetail:
		return Reply{Text: constants.MsgEnterDetailUser}
	}
	return Reply{}
}

func (m *Machine) reprompt(d *Dialogue, notice string) Reply {
	p := m.prompt(d)
	if notice != "" {
		p.Text = notice + "\n\n" + p.Text
	}
	return p
}

func (m *Machine) progress(chatID int64, text string) {
	if m.Progress != nil {
		m.Progress(chatID, text)
	}
}

func (m *Machine) loadProfiles(ctx context.Context, d *Dialogue, _ Event) (Reply, error) {
	m.progress(d.ChatID, constants.MsgConnecting)
	profiles, err := m.backend.Profiles(ctx)
	if err != nil {
		return Reply{}, err
	}
	d.Profiles = profiles
	return Reply{}, nil
}

func (m *Machine) checkRouter(ctx context.Context, d *Dialogue, _ Event) (Reply, error) {
	return Reply{}, m.backend.Ping(ctx)
}

func (m *Machine) pickProfile(_ context.Context, d *Dialogue, ev Event) (Reply, error) {
	name, ok := d.profileAt(ev.Value)
	if !ok {
		return Reply{Text: constants.MsgPickOption}, errStay
	}
	d.Draft.Profile = name
	return Reply{}, nil
}

func (m *Machine) randomUsername(_ context.Context, d *Dialogue, _ Event) (Reply, error) {
	d.Draft.Username = m.Random(constants.RandomCredentialLen)
	return Reply{}, nil
}

func (m *Machine) customUsername(_ context.Context, d *Dialogue, ev Event) (Reply, error) {
	name, err := security.ValidateCredential(ev.Value)
	if err != nil {
		return Reply{Text: err.Error()}, errStay
	}
	d.Draft.Username = name
	return Reply{}, nil
}

func (m *Machine) randomPassword(_ context.Context, d *Dialogue, _ Event) (Reply, error) {
	d.Draft.Password = m.Random(constants.RandomCredentialLen)
	return Reply{}, nil
}

func (m *Machine) samePassword(_ context.Context, d *Dialogue, _ Event) (Reply, error) {
	d.Draft.Password = d.Draft.Username
	return Reply{}, nil
}

func (m *Machine) customPassword(_ context.Context, d *Dialogue, ev Event) (Reply, error) {
	pass, err := security.ValidateCredential(ev.Value)
	if err != nil {
		return Reply{Text: err.Error()}, errStay
	}
	d.Draft.Password = pass
	return Reply{}, nil
}

func (m *Machine) setLimit(_ context.Context, d *Dialogue, ev Event) (Reply, error) {
	token, ok := optionalText(ev.Value)
	if !ok {
		return Reply{Text: constants.MsgEmptyInput}, errStay
	}
	d.Draft.LimitUptime = token
	return Reply{}, nil
}

func (m *Machine) setComment(_ context.Context, d *Dialogue, ev Event) (Reply, error) {
	text, ok := optionalText(ev.Value)
	if !ok {
		return Reply{Text: constants.MsgEmptyInput}, errStay
	}
	d.Draft.Comment = text
	return Reply{}, nil
}

func (m *Machine) submit(ctx context.Context, d *Dialogue, _ Event) (Reply, error) {
	if !d.Draft.Complete() {
		return Reply{}, fmt.Errorf("submit: incomplete voucher draft")
	}
	id, err := m.backend.Submit(ctx, d.Draft)
	if err != nil {
		return Reply{}, err
	}
	created := d.Draft
	log.Printf("🎫 Voucher %s created (%s) for dialogue %s", created.Username, id, d.ID)
	return Reply{Created: &created, VoucherID: id}, nil
}

func (m *Machine) lookupDetail(ctx context.Context, d *Dialogue, ev Event) (Reply, error) {
	username := strings.TrimSpace(security.SanitizeInput(ev.Value))
	if username == "" {
		return Reply{Text: constants.MsgEmptyInput}, errStay
	}
	m.progress(d.ChatID, fmt.Sprintf(constants.MsgSearching, username))
	detail, err := m.backend.Detail(ctx, username)
	if err != nil {
		return Reply{}, err
	}
	return Reply{Detail: detail}, nil
}

// optionalText trims operator input; the keyword "none" (any case) means
// unset. ok is false for blank input.
func optionalText(raw string) (string, bool) {
	text := strings.TrimSpace(security.SanitizeInput(raw))
	if text == "" {
		return "", false
	}
	if strings.EqualFold(text, constants.NoneKeyword) {
		return "", true
	}
	return text, true
}

func orNone(s string) string {
	if s == "" {
		return constants.NoneKeyword
	}
	return s
}
