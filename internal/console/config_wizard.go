package console

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"mipy/internal/config"
	"mipy/internal/constants"
	"mipy/internal/security"
)

// RunConfigWizard walks the operator through every setting, keeping the
// current value whenever the answer is blank.
func RunConfigWizard(reader *bufio.Reader, current config.Settings) config.Settings {
	s := current

	PrintStep(1, "Router address")
	s.RouterHost = ask(reader, "IP / host", s.RouterHost)
	fmt.Println()

	PrintStep(2, "API transport")
	s.UseSSL = askBool(reader, "Use API-SSL", s.UseSSL)
	if s.UseSSL {
		s.VerifySSL = askBool(reader, "Verify cert", s.VerifySSL)
		if !s.VerifySSL {
			PrintHint(ColorYellow + "⚠️  certificate verification disabled" + ColorReset)
		}
		if s.RouterPort == "" || s.RouterPort == constants.DefaultRouterPort {
			s.RouterPort = constants.DefaultRouterTLSPort
		}
	} else if s.RouterPort == "" || s.RouterPort == constants.DefaultRouterTLSPort {
		s.RouterPort = constants.DefaultRouterPort
	}
	port := ask(reader, "API port", s.RouterPort)
	if n, err := strconv.Atoi(port); err == nil && security.ValidatePort(n) {
		s.RouterPort = port
	} else {
		s.RouterPort = constants.DefaultRouterPort
		if s.UseSSL {
			s.RouterPort = constants.DefaultRouterTLSPort
		}
		PrintHint(fmt.Sprintf("%s-> invalid port, using %s%s", ColorRed, s.RouterPort, ColorReset))
	}
	fmt.Println()

	PrintStep(3, "Router login")
	s.Username = ask(reader, "Username", s.Username)
	PrintHint("Current password: " + Mask(s.Password))
	s.Password = ask(reader, "Password", s.Password)
	fmt.Println()

	PrintStep(4, "Telegram")
	PrintHint("Token from @BotFather, e.g. 123456:ABC-DEF")
	PrintHint("Current token: " + Mask(s.TelegramToken))
	s.TelegramToken = ask(reader, "Bot token", s.TelegramToken)
	PrintHint("Only this chat may use the bot; leave empty to allow any chat")
	s.TelegramChatID = ask(reader, "Chat ID", s.TelegramChatID)
	fmt.Println()

	PrintStep(5, "Hotspot login page (optional)")
	PrintHint("When set, each new voucher also gets a login QR code")
	s.HotspotLoginURL = ask(reader, "Login URL", s.HotspotLoginURL)
	fmt.Println()

	return s
}

func ask(reader *bufio.Reader, label, current string) string {
	if current != "" {
		fmt.Printf("  %s%s [%s]:%s ", ColorBold, label, current, ColorReset)
	} else {
		fmt.Printf("  %s%s:%s ", ColorBold, label, ColorReset)
	}
	line, _ := reader.ReadString('\n')
	line = strings.TrimSpace(security.SanitizeInput(line))
	if line == "" {
		return current
	}
	return line
}

func askBool(reader *bufio.Reader, label string, current bool) bool {
	def := "y/N"
	if current {
		def = "Y/n"
	}
	for {
		answer := strings.ToLower(ask(reader, label+" ("+def+")", ""))
		switch answer {
		case "":
			return current
		case "y", "yes", "true":
			return true
		case "n", "no", "false":
			return false
		}
		PrintHint("-> answer y or n")
	}
}
