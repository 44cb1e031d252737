package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"mipy/internal/config"
	"mipy/internal/constants"
	"mipy/internal/router"
	"mipy/internal/utils"
	"mipy/internal/voucher"
)

// RenderError turns a classified failure into an operator message.
// Every router.Kind has its own wording.
func RenderError(err error) string {
	if errors.Is(err, config.ErrNotFound) {
		return constants.MsgNoSettings
	}
	if errors.Is(err, context.Canceled) {
		return constants.MsgCancelled
	}

	detail := ""
	var rerr *router.Error
	if errors.As(err, &rerr) {
		detail = rerr.Detail
	}

	switch router.KindOf(err) {
	case router.KindUnreachable:
		return fmt.Sprintf("❌ Cannot reach Mikrotik at %s. Check the IP address and API port.", detail)
	case router.KindNameResolution:
		return fmt.Sprintf("❌ Cannot resolve the router address %s.", detail)
	case router.KindAuthentication:
		return "❌ Login to Mikrotik failed: wrong username or password."
	case router.KindConnectionClosed:
		return "❌ Mikrotik closed the connection. Make sure the API service is enabled for this port."
	case router.KindProtocol:
		msg := router.DeviceMessage(err)
		if msg == "" {
			msg = err.Error()
		}
		return fmt.Sprintf("❌ Mikrotik returned an unexpected response: %s", msg)
	case router.KindTLSConfiguration:
		return "❌ TLS negotiation failed. Check USE_SSL, VERIFY_SSL and the API-SSL port."
	case router.KindInvalidSettings:
		return fmt.Sprintf("❌ Invalid settings: %s. Run `mipy config` to fix them.", detail)
	case router.KindRecordNotFound:
		return fmt.Sprintf("❌ Username %q was not found among the hotspot users.", detail)
	case router.KindDuplicateName:
		return fmt.Sprintf("❌ A voucher named %q already exists. Start again with /voucher.", detail)
	case router.KindEmptyProfileList:
		return "❌ No hotspot profiles are defined on the router."
	case router.KindUnknown:
		return fmt.Sprintf("❌ Unexpected error: %v", err)
	}
	return fmt.Sprintf("❌ Error: %v", err)
}

func orNotSet(s string) string {
	if s == "" {
		return constants.MsgNotSet
	}
	return s
}

func RenderCreated(d voucher.Draft) string {
	var b strings.Builder
	b.WriteString("✅ Voucher created successfully!\n\n")
	fmt.Fprintf(&b, "👤 Username: %s\n", d.Username)
	fmt.Fprintf(&b, "🔑 Password: %s\n", d.Password)
	fmt.Fprintf(&b, "📦 Profile: %s\n", d.Profile)
	fmt.Fprintf(&b, "⏱️ Limit: %s\n", orNotSet(d.LimitUptime))
	fmt.Fprintf(&b, "📝 Comment: %s", orNotSet(d.Comment))
	return b.String()
}

func RenderList(records []voucher.Record) string {
	if len(records) == 0 {
		return constants.MsgNoVouchers
	}
	var b strings.Builder
	fmt.Fprintf(&b, "📋 Last %d hotspot users:\n\n", len(records))
	for _, r := range records {
		fmt.Fprintf(&b, "👤 Username: %s\n", r.Name)
		fmt.Fprintf(&b, "🔑 Profile: %s\n", r.Profile)
		fmt.Fprintf(&b, "⏱️ Limit: %s\n", orNotSet(r.LimitUptime))
		fmt.Fprintf(&b, "📝 Comment: %s\n", orNotSet(r.Comment))
		b.WriteString("----------------------\n")
	}
	return b.String()
}

func RenderDetail(d *voucher.Detail) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📋 Voucher detail: %s\n\n", d.Name)
	fmt.Fprintf(&b, "👤 Username: %s\n", d.Name)
	fmt.Fprintf(&b, "🔑 Profile: %s\n", d.Profile)
	status := "Enabled"
	if d.Disabled {
		status = "Disabled"
	}
	fmt.Fprintf(&b, "🔴 Status: %s\n", status)
	fmt.Fprintf(&b, "⏱️ Uptime limit: %s\n", orNotSet(d.LimitUptime))
	fmt.Fprintf(&b, "⌛ Uptime used: %s\n", d.UptimeUsed)

	if a := d.Active; a != nil {
		b.WriteString("\n📲 Connection: ONLINE\n")
		fmt.Fprintf(&b, "🕐 Session time left: %s\n", orNotSet(a.SessionTimeLeft))
		fmt.Fprintf(&b, "🖥️ IP address: %s\n", orNotSet(a.Address))
		fmt.Fprintf(&b, "📥 Download: %s\n", utils.FormatBytes(a.BytesIn))
		fmt.Fprintf(&b, "📤 Upload: %s\n", utils.FormatBytes(a.BytesOut))
		fmt.Fprintf(&b, "📊 Total usage: %s\n", utils.FormatBytes(a.TotalBytes()))
	} else {
		b.WriteString("\n📲 Connection: OFFLINE\n")
	}

	if d.Comment != "" {
		fmt.Fprintf(&b, "\n📝 Comment: %s\n", d.Comment)
	}
	fmt.Fprintf(&b, "\n🔢 ID: %s", d.ID)
	return b.String()
}

func RenderStatus(host string, res *router.Resource) string {
	if res == nil {
		return "✅ Connected to Mikrotik, but no system information was returned."
	}
	var b strings.Builder
	b.WriteString("✅ Connected to Mikrotik\n\n")
	if host != "" {
		fmt.Fprintf(&b, "🖥️ IP: %s\n", host)
	}
	fmt.Fprintf(&b, "📟 Board: %s\n", res.BoardName)
	fmt.Fprintf(&b, "🔄 Version: %s\n", res.Version)
	fmt.Fprintf(&b, "⏱️ Uptime: %s\n", res.Uptime)
	fmt.Fprintf(&b, "📊 CPU: %s%%\n", res.CPULoad)
	fmt.Fprintf(&b, "🧠 Free memory: %.2f MB", float64(res.FreeMemory)/1024/1024)
	return b.String()
}
