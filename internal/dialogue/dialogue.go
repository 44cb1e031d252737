package dialogue

import (
	"strconv"
	"strings"
	"time"

	"mipy/internal/voucher"
)

// State is a step of a provisioning or detail dialogue.
type State string

const (
	StateStart         State = "start"
	StateProfile       State = "profile"
	StateUsernameType  State = "username_type"
	StateAwaitUsername State = "await_username"
	StatePassword      State = "password"
	StateAwaitPassword State = "await_password"
	StateLimit         State = "limit"
	StateComment       State = "comment"
	StateSubmit        State = "submit"
	StateAwaitDetail   State = "await_detail"
	StateEnd           State = "end"
)

// Input is the kind of operator signal fed into the machine.
type Input string

const (
	InputVoucher Input = "voucher"
	InputDetail  Input = "detail"
	InputProfile Input = "profile"
	InputRandom  Input = "random"
	InputCustom  Input = "custom"
	InputSame    Input = "same"
	InputText    Input = "text"

	// inputSubmit fires automatically when a dialogue enters StateSubmit.
	inputSubmit Input = "submit"
)

// Event is one operator signal for the dialogue identified by ID.
type Event struct {
	ID     string
	ChatID int64
	Input  Input
	Value  string
}

// Option is one button offered to the operator.
type Option struct {
	Label string
	Input Input
	Value string
}

// Data encodes the option as a compact callback payload.
func (o Option) Data() string {
	return string(o.Input) + ":" + o.Value
}

// ParseChoice decodes a payload produced by Option.Data.
func ParseChoice(data string) (Input, string, bool) {
	in, value, ok := strings.Cut(data, ":")
	if !ok {
		return "", "", false
	}
	switch Input(in) {
	case InputProfile, InputRandom, InputCustom, InputSame:
		return Input(in), value, true
	}
	return "", "", false
}

// Reply is what the operator should see after a step.
type Reply struct {
	Text    string
	Options []Option
	// Done is set when the dialogue reached its end and was discarded.
	Done bool
	// Err is the classified failure that ended the dialogue.
	Err error
	// Created holds the submitted draft after a successful SUBMIT.
	Created   *voucher.Draft
	VoucherID string
	Detail    *voucher.Detail
}

func (r Reply) empty() bool {
	return r.Text == "" && len(r.Options) == 0 && r.Err == nil && r.Created == nil && r.Detail == nil
}

// Dialogue is the per-identity state of one conversation.
type Dialogue struct {
	ID        string        `json:"id"`
	ChatID    int64         `json:"chat_id"`
	State     State         `json:"state"`
	Draft     voucher.Draft `json:"draft"`
	Profiles  []string      `json:"profiles,omitempty"`
	UpdatedAt time.Time     `json:"updated_at"`
	ExpiresAt time.Time     `json:"expires_at"`
}

func (d *Dialogue) IsExpired() bool {
	return time.Now().After(d.ExpiresAt)
}

// profileAt resolves a profile option value, the index into Profiles.
func (d *Dialogue) profileAt(value string) (string, bool) {
	i, err := strconv.Atoi(value)
	if err != nil || i < 0 || i >= len(d.Profiles) {
		return "", false
	}
	return d.Profiles[i], true
}
