package voucher

import "mipy/internal/router"

// Draft accumulates a voucher definition during a provisioning dialogue.
// Empty LimitUptime or Comment means the field is unset on the router.
type Draft struct {
	Profile     string `json:"profile"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	LimitUptime string `json:"limit_uptime,omitempty"`
	Comment     string `json:"comment,omitempty"`
}

// Complete reports whether the mandatory fields are resolved.
func (d Draft) Complete() bool {
	return d.Profile != "" && d.Username != "" && d.Password != ""
}

// Record is a hotspot user as stored on the router.
type Record struct {
	ID          string
	Name        string
	Profile     string
	LimitUptime string
	UptimeUsed  string
	Disabled    bool
	Comment     string
}

// ActiveSession is a currently connected hotspot user.
type ActiveSession struct {
	User            string
	Uptime          string
	SessionTimeLeft string
	Address         string
	BytesIn         uint64
	BytesOut        uint64
}

// TotalBytes is the combined traffic of the session.
func (a ActiveSession) TotalBytes() uint64 {
	return a.BytesIn + a.BytesOut
}

// Detail merges a voucher record with its live session, if any.
type Detail struct {
	Record
	Active *ActiveSession
}

// Online reports whether the voucher currently has an active session.
func (d Detail) Online() bool {
	return d.Active != nil
}

var userFields = []string{".id", "name", "profile", "limit-uptime", "uptime", "disabled", "comment"}

var activeFields = []string{"user", "uptime", "session-time-left", "address", "bytes-in", "bytes-out"}

func recordFrom(r router.Record) Record {
	return Record{
		ID:          r[".id"],
		Name:        r["name"],
		Profile:     r["profile"],
		LimitUptime: r["limit-uptime"],
		UptimeUsed:  r.Get("uptime", "0s"),
		Disabled:    r.Bool("disabled"),
		Comment:     r["comment"],
	}
}

func activeFrom(r router.Record) ActiveSession {
	return ActiveSession{
		User:            r["user"],
		Uptime:          r["uptime"],
		SessionTimeLeft: r["session-time-left"],
		Address:         r["address"],
		BytesIn:         r.Uint("bytes-in"),
		BytesOut:        r.Uint("bytes-out"),
	}
}
