package voucher

import (
	"net/url"

	"github.com/skip2/go-qrcode"
)

const qrSize = 256

// LoginURL builds the hotspot login link carrying the voucher credentials.
// It returns "" when no login page is configured.
func LoginURL(base string, d Draft) string {
	if base == "" {
		return ""
	}
	u, err := url.Parse(base)
	if err != nil {
		return ""
	}
	q := u.Query()
	q.Set("username", d.Username)
	q.Set("password", d.Password)
	u.RawQuery = q.Encode()
	return u.String()
}

// LoginQR renders the login link as a PNG QR code.
func LoginQR(content string) ([]byte, error) {
	return qrcode.Encode(content, qrcode.Medium, qrSize)
}

// LoginQRText renders the login link as a terminal-friendly QR code.
func LoginQRText(content string) (string, error) {
	q, err := qrcode.New(content, qrcode.Medium)
	if err != nil {
		return "", err
	}
	return q.ToSmallString(false), nil
}
