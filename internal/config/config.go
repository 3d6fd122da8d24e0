package config

import (
	"errors"
	"os"
	"strconv"
	"time"
)

type Config struct {
	DBHost    string
	DBPort    string
	DBUser    string
	DBPass    string
	DBName    string
	DBSSLMode string

	JWTSecret string
	Port      string
	Env       string
	LogLevel  string

	// Public host used to build verification/confirmation links in emails.
	PublicHost string

	// Registrations are refused after this instant.
	RegistrationDeadline time.Time
	EventStartsAt        time.Time

	CVDir         string
	MaxUploadSize int64

	Mail    MailConfig
	Passkit PasskitConfig
}

type MailConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	ReplyTo  string

	// Outbound throttle for bulk sends, messages per second.
	MessagesPerSecond int
	// Bulk sending halts once this many sends have failed.
	MaxErrors int

	VerificationSubject string
	VerifiedSubject     string
	ConfirmationSubject string
}

type PasskitConfig struct {
	TeamID      string
	PassTypeID  string
	P12Path     string
	P12Password string
	WWDRPath    string

	OrgName     string
	EventName   string
	Description string

	ForegroundColor string
	BackgroundColor string
	LabelColor      string

	// Icon and logo accept a local path or an http(s) URL (SVG sources are rasterized).
	IconSource  string
	LogoSource  string
	StripSource string
	AssetsDir   string

	PassDir string
	QRDir   string
}

func NewConfigFromEnv() (*Config, error) {
	maxUploadSize, _ := strconv.ParseInt(getenv("MAX_UPLOAD_SIZE", "10485760"), 10, 64)
	mailPort, _ := strconv.Atoi(getenv("MAIL_PORT", "465"))
	mailRate, _ := strconv.Atoi(getenv("MAIL_MESSAGES_PER_SECOND", "10"))
	mailMaxErrors, _ := strconv.Atoi(getenv("MAIL_MAX_ERRORS", "5"))

	deadline, err := parseTime(getenv("REGISTRATION_DEADLINE", ""))
	if err != nil {
		return nil, errors.New("REGISTRATION_DEADLINE must be a valid RFC 3339 timestamp")
	}
	eventStart, err := parseTime(getenv("EVENT_STARTS_AT", ""))
	if err != nil {
		return nil, errors.New("EVENT_STARTS_AT must be a valid RFC 3339 timestamp")
	}

	cfg := &Config{
		DBHost:    getenv("DB_HOST", "localhost"),
		DBPort:    getenv("DB_PORT", "5432"),
		DBUser:    getenv("DB_USER", "postgres"),
		DBPass:    getenv("DB_PASSWORD", "postgres"),
		DBName:    getenv("DB_NAME", "hackathondb"),
		DBSSLMode: getenv("DB_SSLMODE", "disable"),

		JWTSecret: getenv("JWT_SECRET", ""),
		Port:      getenv("PORT", "3000"),
		Env:       getenv("ENV", "development"),
		LogLevel:  getenv("LOG_LEVEL", "info"),

		PublicHost:           getenv("PUBLIC_HOST", "http://localhost:3000"),
		RegistrationDeadline: deadline,
		EventStartsAt:        eventStart,

		CVDir:         getenv("CV_DIR", "./uploads/cv"),
		MaxUploadSize: maxUploadSize,

		Mail: MailConfig{
			Host:              getenv("MAIL_HOST", "localhost"),
			Port:              mailPort,
			User:              getenv("MAIL_USER", ""),
			Password:          getenv("MAIL_PASSWORD", ""),
			From:              getenv("MAIL_FROM", "no-reply@localhost"),
			ReplyTo:           getenv("MAIL_REPLY_TO", ""),
			MessagesPerSecond: mailRate,
			MaxErrors:         mailMaxErrors,

			VerificationSubject: getenv("MAIL_VERIFICATION_SUBJECT", "Confirm your email address"),
			VerifiedSubject:     getenv("MAIL_VERIFIED_SUBJECT", "Registration received"),
			ConfirmationSubject: getenv("MAIL_CONFIRMATION_SUBJECT", "Confirm your seat!"),
		},

		Passkit: PasskitConfig{
			TeamID:      getenv("PASSKIT_TEAM_ID", ""),
			PassTypeID:  getenv("PASSKIT_PASS_TYPE_ID", ""),
			P12Path:     getenv("PASSKIT_CERT_P12_PATH", ""),
			P12Password: getenv("PASSKIT_CERT_P12_PASSWORD", ""),
			WWDRPath:    getenv("PASSKIT_WWDR_CERT_PATH", ""),

			OrgName:     getenv("PASSKIT_ORG_NAME", "Hackathon"),
			EventName:   getenv("PASSKIT_EVENT_NAME", "Hackathon"),
			Description: getenv("PASSKIT_DESCRIPTION", "Event access pass"),

			ForegroundColor: getenv("PASSKIT_FG_COLOR", "rgb(255, 255, 255)"),
			BackgroundColor: getenv("PASSKIT_BG_COLOR", "rgb(40, 40, 40)"),
			LabelColor:      getenv("PASSKIT_LABEL_COLOR", "rgb(255, 255, 255)"),

			IconSource:  getenv("PASSKIT_ICON", ""),
			LogoSource:  getenv("PASSKIT_LOGO", ""),
			StripSource: getenv("PASSKIT_STRIP", ""),
			AssetsDir:   getenv("PASSKIT_ASSETS_DIR", "./assets/img"),

			PassDir: getenv("PASSKIT_PKPASS_DIR", "./passkit/pkpasses"),
			QRDir:   getenv("PASSKIT_QR_DIR", "./passkit/qr"),
		},
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	return cfg, nil
}

func parseTime(value string) (time.Time, error) {
	if value == "" {
		// A zero deadline means registration never closes; mostly for dev setups.
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, value)
}

func getenv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
