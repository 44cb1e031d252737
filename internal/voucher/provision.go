package voucher

import (
	"fmt"

	"mipy/internal/constants"
	"mipy/internal/router"
)

// Profiles lists the names of the hotspot user profiles.
func Profiles(sess router.Session) ([]string, error) {
	rows, err := sess.Query(constants.PathHotspotProfile, "name")
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(rows))
	for _, row := range rows {
		if name := row["name"]; name != "" {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return nil, router.NewError(router.KindEmptyProfileList, "profiles", "no hotspot user profiles configured")
	}
	return names, nil
}

// Fields returns the attributes sent to the router for d. Optional fields
// are omitted rather than sent empty, since RouterOS treats an empty value
// differently from an unset one.
func (d Draft) Fields() map[string]string {
	fields := map[string]string{
		"name":     d.Username,
		"password": d.Password,
		"profile":  d.Profile,
	}
	if d.LimitUptime != "" {
		fields["limit-uptime"] = d.LimitUptime
	}
	if d.Comment != "" {
		fields["comment"] = d.Comment
	}
	return fields
}

// Create adds the voucher in one call and returns the router's id for it.
func Create(sess router.Session, d Draft) (string, error) {
	if !d.Complete() {
		return "", fmt.Errorf("create voucher: profile, username and password are required")
	}
	id, err := sess.Create(constants.PathHotspotUser, d.Fields())
	if err != nil {
		if router.IsKind(err, router.KindDuplicateName) {
			return "", &router.Error{Kind: router.KindDuplicateName, Op: "create", Detail: d.Username, Err: err}
		}
		return "", err
	}
	return id, nil
}
