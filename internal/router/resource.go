package router

import "mipy/internal/constants"

// Resource is the subset of /system/resource shown in status reports.
type Resource struct {
	BoardName   string
	Version     string
	Uptime      string
	CPULoad     string
	FreeMemory  uint64
	TotalMemory uint64
}

// SystemResource reads the router's resource summary. A nil Resource with
// a nil error means the router answered without any rows.
func SystemResource(sess Session) (*Resource, error) {
	rows, err := sess.Query(constants.PathSystemResource)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	row := rows[0]
	return &Resource{
		BoardName:   row.Get("board-name", "unknown"),
		Version:     row.Get("version", "unknown"),
		Uptime:      row.Get("uptime", "unknown"),
		CPULoad:     row.Get("cpu-load", "0"),
		FreeMemory:  row.Uint("free-memory"),
		TotalMemory: row.Uint("total-memory"),
	}, nil
}
