package voucher

import (
	"fmt"
	"strings"
	"testing"

	"mipy/internal/constants"
	"mipy/internal/router"
)

func TestCreateOmitsUnsetOptionalFields(t *testing.T) {
	sess := &fakeSession{}
	d := Draft{Profile: "default", Username: "ab12CD34", Password: "ab12CD34"}
	if _, err := Create(sess, d); err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if len(sess.created) != 1 {
		t.Fatalf("create calls = %d, want 1", len(sess.created))
	}
	call := sess.created[0]
	if call.path != constants.PathHotspotUser {
		t.Errorf("create path = %q, want %q", call.path, constants.PathHotspotUser)
	}
	for _, key := range []string{"limit-uptime", "comment"} {
		if _, ok := call.fields[key]; ok {
			t.Errorf("field %q sent although unset", key)
		}
	}
	if call.fields["name"] != "ab12CD34" || call.fields["password"] != "ab12CD34" || call.fields["profile"] != "default" {
		t.Errorf("fields = %v", call.fields)
	}
}

func TestCreatePassesLimitVerbatim(t *testing.T) {
	sess := &fakeSession{}
	d := Draft{Profile: "default", Username: "guest", Password: "pw", LimitUptime: "1d", Comment: "Room 12"}
	if _, err := Create(sess, d); err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	fields := sess.created[0].fields
	if fields["limit-uptime"] != "1d" {
		t.Errorf("limit-uptime = %q, want %q", fields["limit-uptime"], "1d")
	}
	if fields["comment"] != "Room 12" {
		t.Errorf("comment = %q, want %q", fields["comment"], "Room 12")
	}
}

func TestCreateDuplicateName(t *testing.T) {
	sess := &fakeSession{createErr: fmt.Errorf("add: %w", router.NewError(router.KindDuplicateName, "add", ""))}
	_, err := Create(sess, Draft{Profile: "p", Username: "taken", Password: "x"})
	if !router.IsKind(err, router.KindDuplicateName) {
		t.Fatalf("Create() error = %v, want kind %v", err, router.KindDuplicateName)
	}
	if !strings.Contains(err.Error(), "taken") {
		t.Errorf("error %q should name the username", err)
	}
}

func TestCreateRejectsIncompleteDraft(t *testing.T) {
	sess := &fakeSession{}
	if _, err := Create(sess, Draft{Profile: "p", Username: "u"}); err == nil {
		t.Fatal("Create() accepted a draft without password")
	}
	if len(sess.created) != 0 {
		t.Error("incomplete draft reached the router")
	}
}

func TestProfiles(t *testing.T) {
	sess := &fakeSession{rows: map[string][]router.Record{
		constants.PathHotspotProfile: {{"name": "default"}, {"name": ""}, {"name": "1day"}},
	}}
	got, err := Profiles(sess)
	if err != nil {
		t.Fatalf("Profiles() error: %v", err)
	}
	if strings.Join(got, ",") != "default,1day" {
		t.Errorf("Profiles() = %v, want [default 1day]", got)
	}

	if _, err := Profiles(&fakeSession{}); !router.IsKind(err, router.KindEmptyProfileList) {
		t.Errorf("Profiles(empty) error = %v, want kind %v", err, router.KindEmptyProfileList)
	}
}

func TestRandomString(t *testing.T) {
	a, b := RandomString(8), RandomString(8)
	for _, s := range []string{a, b} {
		if len(s) != 8 {
			t.Errorf("len(%q) = %d, want 8", s, len(s))
		}
		for _, r := range s {
			if !strings.ContainsRune(alphanumeric, r) {
				t.Errorf("%q contains %q outside the alphanumeric alphabet", s, r)
			}
		}
	}
	if len(alphanumeric) != 62 {
		t.Errorf("alphabet size = %d, want 62", len(alphanumeric))
	}
}

func TestLoginURL(t *testing.T) {
	got := LoginURL("http://hotspot.lan/login", Draft{Username: "guest", Password: "p&ss"})
	if got != "http://hotspot.lan/login?password=p%26ss&username=guest" {
		t.Errorf("LoginURL() = %q", got)
	}
	if LoginURL("", Draft{Username: "guest"}) != "" {
		t.Error("LoginURL() without base should be empty")
	}
	png, err := LoginQR(got)
	if err != nil || len(png) == 0 {
		t.Errorf("LoginQR() = %d bytes, %v", len(png), err)
	}
}
