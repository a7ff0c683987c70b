package config

import (
	"io/fs"
	"time"
)

// -----------------------------------------------------------------------------
// Build Information
// -----------------------------------------------------------------------------

// Build variables are injected via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// UserAgent identifies the HTTP client.
var UserAgent = "Birthdays/" + Version

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName           = "Birthdays"
	AppID             = "com.github.tartampluch.birthdays"
	CommandName       = "birthdays"
	LocalhostBindAddr = "127.0.0.1"
	LogFileName       = "app.log"
	ServeLogFileName  = "serve.log"
)

// -----------------------------------------------------------------------------
// Exit Codes
// -----------------------------------------------------------------------------

const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
	ExitCodeUsage   = 2
)

// -----------------------------------------------------------------------------
// System & File Permissions
// -----------------------------------------------------------------------------

const (
	// FilePermUserRW represents -rw------- (Read/Write for owner only).
	FilePermUserRW fs.FileMode = 0600

	// DirPermUserRWX represents drwx------ (Read/Write/Exec for owner only).
	DirPermUserRWX fs.FileMode = 0700

	// ChannelBufferSize defines the standard buffer size for internal signaling channels.
	ChannelBufferSize = 1
)

// -----------------------------------------------------------------------------
// CLI Flags & Descriptions
// -----------------------------------------------------------------------------

const (
	FlagDebug    = "debug"
	FlagAPIURL   = "api-url"
	FlagSource   = "source"
	FlagVCard    = "vcard"
	FlagLang     = "lang"
	FlagLeapDay  = "leap-day"
	FlagLimit    = "limit"
	FlagToday    = "today"
	FlagOutput   = "output"
	FlagPort     = "port"
	FlagReminder = "reminder"

	FlagDescDebug    = "Enable debug logging"
	FlagDescAPIURL   = "Base URL of the birthdays API"
	FlagDescSource   = "Record source: api or vcard"
	FlagDescVCard    = "Path to a .vcf file (source=vcard)"
	FlagDescLang     = "Display language (en, de)"
	FlagDescLeapDay  = "Feb 29 birthdays in non-leap years: feb28 or mar1"
	FlagDescLimit    = "Show at most N upcoming birthdays (0 = all)"
	FlagDescToday    = "Reference date (YYYY-MM-DD) instead of the system clock"
	FlagDescOutput   = "Output format: json"
	FlagDescPort     = "Port of the HTTP feed"
	FlagDescReminder = "ISO 8601 alarm trigger for calendar events (e.g. -P1D)"

	FlagOutputShort = "o"

	CmdList    = "list"
	CmdToday   = "today"
	CmdAdd     = "add"
	CmdDelete  = "delete"
	CmdServe   = "serve"
	CmdVersion = "version"

	OutputJSON       = "json"
	MsgVersionOutput = "%s version %s (%s/%s)\n"
)

// -----------------------------------------------------------------------------
// Environment Variables
// -----------------------------------------------------------------------------

const (
	EnvAPIURL    = "BIRTHDAYS_API_URL"
	EnvSource    = "BIRTHDAYS_SOURCE"
	EnvVCardPath = "BIRTHDAYS_VCARD_PATH"
	EnvPort      = "BIRTHDAYS_PORT"
	EnvLanguage  = "BIRTHDAYS_LANG"
	EnvLeapDay   = "BIRTHDAYS_LEAP_DAY"
	EnvRefresh   = "BIRTHDAYS_REFRESH"
	EnvReminder  = "BIRTHDAYS_REMINDER"
	EnvTimezone  = "BIRTHDAYS_TZ"
	EnvLimit     = "BIRTHDAYS_LIMIT"
)

// -----------------------------------------------------------------------------
// Default Values & Business Logic
// -----------------------------------------------------------------------------

const (
	SourceModeAPI   = "api"
	SourceModeVCard = "vcard"

	LeapDayFeb28 = "feb28"
	LeapDayMar1  = "mar1"

	DefaultAPIURL   = "http://127.0.0.1:9000/"
	DefaultPort     = "18080"
	DefaultRefresh  = time.Hour
	DefaultLanguage = "en"
	DefaultLeapYear = 2000 // Leap year used to validate month/day pairs like --02-29
	UIDSalt         = "birthdays-v1-"

	// MaxNameLength is exclusive: names must be shorter than this.
	MaxNameLength = 30
)

// SupportedLanguages defines the list of available display languages (ISO 639-1).
var SupportedLanguages = []string{"en", "de"}

// -----------------------------------------------------------------------------
// API Routes & Payload Fields
// -----------------------------------------------------------------------------

const (
	APIPathBirthdays = "api/birthdays"
	RouteRoot        = "/{$}"
	RouteICS         = "/birthdays.ics"
	RouteUpcoming    = "/upcoming"
	AddrSeparator    = ":"
	SchemeHTTP       = "http"
	SchemeHTTPS      = "https"
)

// -----------------------------------------------------------------------------
// Standards: iCalendar & vCard
// -----------------------------------------------------------------------------

const (
	ICalVersion   = "2.0"
	ICalProdid    = "-//Birthdays//Engine//EN"
	ICalCalName   = "Birthdays"
	ICalMethod    = "PUBLISH"
	ICalScale     = "GREGORIAN"
	ICalComponent = "VALARM"
	ICalAction    = "DISPLAY"
	ICalDomain    = "birthdays"

	PropUID         = "UID"
	PropSummary     = "SUMMARY"
	PropDTStart     = "DTSTART"
	PropDTStamp     = "DTSTAMP"
	PropRefresh     = "REFRESH-INTERVAL"
	PropAction      = "ACTION"
	PropDescription = "DESCRIPTION"
	PropTrigger     = "TRIGGER"
	PropVersion     = "VERSION"
	PropProdid      = "PRODID"
	PropXWRCalName  = "X-WR-CALNAME"
	PropCalScale    = "CALSCALE"
	PropMethod      = "METHOD"

	VCardBDAY = "BDAY"
	VCardFN   = "FN"
	VCardN    = "N"

	DefaultICalRefresh = 1 * time.Hour

	// StubVCalendar is the minimal valid iCalendar object used when no events are found.
	StubVCalendar = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:" + ICalProdid + "\r\nEND:VCALENDAR\r\n"
)

// -----------------------------------------------------------------------------
// Data Formats & Limits
// -----------------------------------------------------------------------------

const (
	DateFormatISO     = "2006-01-02"
	DateFormatDisplay = "2006-01-02"

	// ISO 8601 alarm trigger, optionally negative (before the event).
	ReminderPattern = `^-?PT?\d+[DHM]$`

	UIDHashLength   = 16
	FormatHashInput = "%s|%s|%s"
	FormatUID       = "%s-%d@%s"

	MinPort = 1
	MaxPort = 65535

	MaxAPIResponseSize = 8 * 1024 * 1024  // 8MB
	MaxErrorBodySize   = 4 * 1024         // Error bodies are only kept for diagnostics
	MaxVCardFileSize   = 64 * 1024 * 1024 // 64MB
)

// -----------------------------------------------------------------------------
// Network & Timeouts
// -----------------------------------------------------------------------------

const (
	HTTPTimeout        = 30 * time.Second
	ShutdownTimeout    = 5 * time.Second
	ServerReadTimeout  = 10 * time.Second
	ServerWriteTimeout = 30 * time.Second
	ServerIdleTimeout  = 60 * time.Second
	RetryAfterSeconds  = "10"
	AllowedMethods     = "GET, HEAD"
)

// -----------------------------------------------------------------------------
// HTTP Headers & MIME Types
// -----------------------------------------------------------------------------

const (
	HeaderContentType     = "Content-Type"
	HeaderAccept          = "Accept"
	HeaderCacheControl    = "Cache-Control"
	HeaderETag            = "ETag"
	HeaderLastModified    = "Last-Modified"
	HeaderRetryAfter      = "Retry-After"
	HeaderAllow           = "Allow"
	HeaderXContentType    = "X-Content-Type-Options"
	HeaderUserAgent       = "User-Agent"
	HeaderIfNoneMatch     = "If-None-Match"
	HeaderIfModifiedSince = "If-Modified-Since"

	MimeTextCalendar    = "text/calendar; charset=utf-8"
	MimeJSON            = "application/json"
	MimeJSONUTF8        = "application/json; charset=utf-8"
	MimeNoSniff         = "nosniff"
	CacheControlPrivate = "private, no-cache"

	// FormatETag expects a string argument.
	FormatETag = `"%s"`
)

// -----------------------------------------------------------------------------
// Translation Keys (I18n)
// -----------------------------------------------------------------------------

const (
	TKeyCountdownToday  = "countdown_today"
	TKeyCountdownIn     = "countdown_in"  // Requires Span
	TKeyCountdownAnd    = "countdown_and" // Requires Months, Days
	TKeySpanMonths      = "span_months"   // Plural, requires Count
	TKeySpanDays        = "span_days"     // Plural, requires Count
	TKeyEvtSummary      = "event_summary"
	TKeyEvtSummaryAge   = "event_summary_age"
	TKeyEvtSummaryBirth = "event_summary_birth"
	TKeyFormatDate      = "format_date_short"
	TKeyColName         = "col_name"
	TKeyColBirthDate    = "col_birthdate"
	TKeyColNext         = "col_next"
	TKeyColCountdown    = "col_countdown"
	TKeyColAge          = "col_age"
	TKeyGreeting        = "greeting_today"
	TKeyNoBirthdays     = "no_birthdays_today"
	TKeyFooterTotal     = "footer_total" // Plural, requires Count
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrDateMissing      = "birth date is missing"
	ErrDateFormat       = "unable to parse date"
	ErrDateRange        = "date out of range"
	ErrInvalidRecord    = "invalid birthday record"
	ErrNameRequired     = "name is required"
	ErrNameTooLong      = "name must be shorter than 30 characters"
	ErrYearRequired     = "birth date must include a year"
	ErrIDRequired       = "birthday id is required"
	ErrInvalidURL       = "invalid URL structure"
	ErrProtocol         = "unsupported protocol scheme (http/https only)"
	ErrAPIStatus        = "birthdays API returned an error"
	ErrAPIDecode        = "failed to decode birthdays API response"
	ErrAPIRequest       = "failed to build birthdays API request"
	ErrAPINetwork       = "network error while calling birthdays API"
	ErrSourceMissing    = "internal error: record source is not initialized"
	ErrRecordFetch      = "failed to load birthday records"
	ErrVCardOpen        = "failed to open vCard file"
	ErrVCardPathEmpty   = "configuration error: vCard path is empty"
	ErrModeUnsupport    = "configuration error: unsupported source mode"
	ErrLeapDayUnsupport = "configuration error: unsupported leap-day policy"
	ErrLangUnsupport    = "configuration error: unsupported language"
	ErrReminderFormat   = "configuration error: reminder must be an ISO 8601 duration like -P1D"
	ErrRefreshInterval  = "configuration error: refresh interval must be positive"
	ErrLimitNegative    = "configuration error: limit must not be negative"
	ErrTimezone         = "configuration error: unknown time zone"
	ErrEnvParse         = "failed to parse environment"
	ErrICalEncode       = "failed to encode iCalendar data"
	ErrJSONEncode       = "failed to encode JSON data"
	ErrServerStartup    = "server startup failed"
	ErrServerShutdown   = "server shutdown failed"
	ErrPortRequired     = "server port is required"
	ErrPortNumber       = "server port must be a number"
	ErrPortRange        = "server port must be between 1 and 65535"
	ErrLogFile          = "failed to open log file"
	ErrCacheDir         = "could not determine user cache dir"
	ErrCreateDir        = "could not create app cache dir"
	ErrAppFailed        = "application failed unexpectedly"
	ErrWriteResp        = "failed to write response body"
	ErrLocalesAccess    = "failed to access embedded locales"
	ErrLocaleLoad       = "failed to load locale file"
	ErrNeedsAPI         = "this command needs source=api"
	ErrTodayFormat      = "--today must be a date like 2006-01-02"
)

// -----------------------------------------------------------------------------
// HTTP Server Responses
// -----------------------------------------------------------------------------

const (
	HTTPMsgInitializing = "Birthdays initializing, please try again shortly."
	HTTPMsgMethodNotAll = "Method Not Allowed"
)

// -----------------------------------------------------------------------------
// Fallbacks & Messages
// -----------------------------------------------------------------------------

const (
	FallbackSummary      = "Birthday: %s"
	FallbackSummaryAge   = "Birthday: %s (%d)"
	FallbackSummaryBirth = "Birthday: %s (birth)"
	FallbackName         = "Unknown"
	AgeUnknown           = "-"

	MsgSyncStarted   = "Synchronization started"
	MsgSyncFailed    = "Synchronization failed"
	MsgSyncReq       = "Sync requested"
	MsgWorkerStart   = "Background worker started"
	MsgWorkerStop    = "Worker stopping due to context cancellation"
	MsgAppStop       = "Application stopped gracefully"
	MsgAppStarting   = "Starting application"
	MsgSkippedCard   = "Skipping malformed vCard"
	MsgSkippedRecord = "Skipping birthday with invalid date"
	MsgGenSuccess    = "Snapshot generation successful"
	MsgServerListen  = "HTTP server listening"
	MsgServerStop    = "Shutting down HTTP server..."
	MsgCacheUpdated  = "Snapshot cache updated"
	MsgLocaleSkip    = "Skipping non-locale file"
	MsgLocaleBadName = "Skipping malformed locale filename"
	MsgLocaleLoaded  = "Locale loaded successfully"
	MsgTransMissing  = "Missing translation key"
	MsgLogWarning    = "Warning: %s at %s: %v\n"
	MsgBdayToday     = "Birthday found today"
	MsgRecordAdded   = "Birthday added"
	MsgRecordDeleted = "Birthday deleted"
	MsgAPIRequest    = "Calling birthdays API"
	MsgAPIStatus     = "Birthdays API returned error status"
	MsgFailuresHead  = "%d record(s) could not be read:\n"
	MsgFailureLine   = "  - %s\n"
	MsgAdded         = "Added %s (id %s)\n"
	MsgDeleted       = "Deleted %s\n"
	MsgRefreshSignal = "Refresh requested by signal"
)

// -----------------------------------------------------------------------------
// Structured Logging Keys (slog)
// -----------------------------------------------------------------------------

const (
	LogKeyComponent = "component"
	LogKeyError     = "error"
	LogKeyURL       = "url"
	LogKeyMethod    = "method"
	LogKeyStatus    = "status_code"
	LogKeyFile      = "file"
	LogKeyLang      = "lang"
	LogKeyKey       = "key"
	LogKeyPort      = "port"
	LogKeyMode      = "mode"
	LogKeyInterval  = "interval"
	LogKeyManual    = "manual"
	LogKeyValue     = "value"
	LogKeyStats     = "stats"
	LogKeyTotal     = "records_total"
	LogKeyFound     = "birthdays_found"
	LogKeyFailed    = "records_failed"
	LogKeyToday     = "birthdays_today"
	LogKeySizeBytes = "size_bytes"
	LogKeyETag      = "etag"
	LogKeyCount     = "count"
	LogKeyID        = "id"
	LogKeyName      = "name"
	LogKeyDOB       = "date_of_birth"
	LogKeyDuration  = "duration_ms"
	LogKeyCommand   = "command"
	LogKeyCommit    = "commit"
	LogKeyBuildDate = "build_date"

	// Startup Info Keys
	LogKeyBuild   = "build"
	LogKeyApp     = "app"
	LogKeyVersion = "version"
	LogKeyGoVer   = "go_version"
	LogKeyEnv     = "env"
	LogKeyOS      = "os"
	LogKeyArch    = "arch"
	LogKeyPID     = "pid"
)

// -----------------------------------------------------------------------------
// Log Components
// -----------------------------------------------------------------------------

const (
	CompEngine = "engine"
	CompServer = "server"
	CompClient = "client"
	CompWorker = "worker"
	CompMain   = "main"
	CompI18n   = "i18n"
)
