package voucher

import (
	"log"

	"mipy/internal/constants"
	"mipy/internal/router"
)

// ListRecent returns the last limit hotspot users in the router's own
// listing order. RouterOS exposes no creation time for these records, so
// "recent" means the tail of that order.
func ListRecent(sess router.Session, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = constants.RecentVoucherLimit
	}
	rows, err := sess.Query(constants.PathHotspotUser, userFields...)
	if err != nil {
		return nil, err
	}
	if len(rows) > limit {
		rows = rows[len(rows)-limit:]
	}
	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, recordFrom(row))
	}
	return records, nil
}

// FindDetail looks up a voucher by exact name and enriches it with the
// matching active session. A failed active-session fetch degrades to
// offline instead of failing the lookup.
func FindDetail(sess router.Session, username string) (*Detail, error) {
	rows, err := sess.Query(constants.PathHotspotUser, userFields...)
	if err != nil {
		return nil, err
	}

	var detail *Detail
	for _, row := range rows {
		if row["name"] == username {
			detail = &Detail{Record: recordFrom(row)}
			break
		}
	}
	if detail == nil {
		return nil, router.NewError(router.KindRecordNotFound, "detail", username)
	}

	active, err := sess.Query(constants.PathHotspotActive, activeFields...)
	if err != nil {
		log.Printf("⚠️  Active sessions unavailable for %s, reporting offline: %v", username, err)
		return detail, nil
	}
	for _, row := range active {
		if row["user"] == username {
			a := activeFrom(row)
			detail.Active = &a
			break
		}
	}
	return detail, nil
}
