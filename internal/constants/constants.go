package constants

import "time"

const (
	AppName = "mipy"
	Version = "1.2.0"
)

// Router defaults
const (
	DefaultRouterPort    = "8728"
	DefaultRouterTLSPort = "8729"
	ProbeTimeout         = 5 * time.Second
	RecentVoucherLimit   = 10
	RandomCredentialLen  = 8
)

// RouterOS menu paths
const (
	PathHotspotUser    = "/ip/hotspot/user"
	PathHotspotProfile = "/ip/hotspot/user/profile"
	PathHotspotActive  = "/ip/hotspot/active"
	PathSystemResource = "/system/resource"
)

// Settings store
const (
	EnvConfigPath    = "MIPY_CONFIG"
	EnvSecretKey     = "MIPY_SECRET_KEY"
	DefaultConfigRef = "config.json"
	SealedPrefix     = "sealed:"
)

// Dialogue store
const (
	DialogueTTL         = 15 * time.Minute
	CleanupInterval     = 30 * time.Second
	RedisKeyPrefix      = "mipy:dialogue:"
	RedisExpiryIndexKey = "mipy:dialogue-expiry"
	TelegramPollTimeout = 60
	NoneKeyword         = "none"
)

// ANSI color codes
const (
	ColorReset  = "\033[0m"
	ColorBold   = "\033[1m"
	ColorDim    = "\033[2m"
	ColorCyan   = "\033[36m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorRed    = "\033[31m"
)

// Messages
const (
	MsgWelcome = "Welcome %s to the Mikrotik Hotspot Voucher Generator!\n" +
		"Use /voucher to create a new hotspot voucher.\n" +
		"Use /list to see the most recent vouchers.\n" +
		"Use /status to check the router connection.\n" +
		"Use /detail to see the usage of a voucher.\n" +
		"Use /cancel to abort the current operation."
	MsgNoSettings       = "❌ Settings not found. Configure the bot with `mipy config` first."
	MsgConnecting       = "🔄 Connecting to Mikrotik..."
	MsgCheckingStatus   = "🔄 Checking the connection to Mikrotik..."
	MsgFetchingList     = "🔄 Fetching the voucher list..."
	MsgCreating         = "🔄 Creating voucher..."
	MsgCancelled        = "Operation cancelled."
	MsgNothingToCancel  = "Nothing to cancel."
	MsgCancelTooLate    = "⏳ The voucher is already being created and can no longer be cancelled."
	MsgExpired          = "⌛ Your unfinished dialogue was idle for %s and has been discarded."
	MsgUnknownCommand   = "Unknown command. Use /start to see what I can do."
	MsgNoDialogue       = "There is no operation in progress. Use /voucher or /detail to start one."
	MsgPickOption       = "Please pick one of the offered options."
	MsgEmptyInput       = "Please send a non-empty value."
	MsgChooseProfile    = "Choose a hotspot profile:"
	MsgChooseUserType   = "Profile: %s\nChoose the username type:"
	MsgEnterUsername    = "Enter the desired username:"
	MsgChoosePassType   = "Profile: %s\nUsername: %s\nChoose the password type:"
	MsgEnterPassword    = "Enter the desired password:"
	MsgEnterLimit       = "Profile: %s\nUsername: %s\nPassword: %s\n\nEnter the uptime limit (e.g. 1h, 1d, none for unlimited):"
	MsgEnterComment     = "Profile: %s\nUsername: %s\nPassword: %s\nLimit: %s\n\nEnter a comment (optional, type 'none' to leave it empty):"
	MsgEnterDetailUser  = "Enter the username of the voucher to inspect:"
	MsgSearching        = "🔍 Looking up %s..."
	MsgNoVouchers       = "ℹ️ No hotspot users found."
	MsgNotSet           = "None"
	MsgQRCaption        = "Scan to log in as %s"
	MsgTelegramTest     = "✅ Test message from the Mikrotik voucher bot."
)

// Choice labels
const (
	LabelRandom = "Random"
	LabelCustom = "Custom"
	LabelSame   = "Same as username"
)
