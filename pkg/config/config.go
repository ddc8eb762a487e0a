package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/City-Bureau/seerchat/pkg/chat"
	"github.com/City-Bureau/seerchat/pkg/pane"
)

// State backends for the selection store
const (
	StateNone     = "none"
	StatePostgres = "postgres"
	StateS3       = "s3"
)

// RDS holds the postgres connection settings
type RDS struct {
	Host     string
	Port     string
	Username string
	DBName   string
	Password string
}

// PostgresDSN is the connection string gorm opens
func (r RDS) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s dbname=%s password=%s",
		r.Host,
		r.Port,
		r.Username,
		r.DBName,
		r.Password,
	)
}

// RDSFromEnv reads the RDS_* variables
func RDSFromEnv() RDS {
	return RDS{
		Host:     os.Getenv("RDS_HOST"),
		Port:     os.Getenv("RDS_PORT"),
		Username: os.Getenv("RDS_USERNAME"),
		DBName:   os.Getenv("RDS_DB_NAME"),
		Password: os.Getenv("RDS_PASSWORD"),
	}
}

// Twilio holds the SMS account settings
type Twilio struct {
	AccountSID string
	AuthToken  string
	From       string
}

// TwilioFromEnv reads the TWILIO_* variables
func TwilioFromEnv() Twilio {
	return Twilio{
		AccountSID: os.Getenv("TWILIO_ACCOUNT_SID"),
		AuthToken:  os.Getenv("TWILIO_AUTH_TOKEN"),
		From:       os.Getenv("TWILIO_FROM"),
	}
}

// Config is everything the chat client reads from its environment
type Config struct {
	APIURL           string
	APIToken         string
	UserID           chat.ID
	UserType         chat.UserType
	ActingSeerID     chat.ID
	ActingSeerUserID chat.ID
	DeepLinkID       chat.ID
	Language         string
	// Pane scroll distances are left zero unless set so each view can
	// apply defaults in its own units
	Pane             pane.Config
	StateBackend     string
	LogFile          string
	NotifyBell       bool
	AlertPhoneNumber string
	S3Bucket         string
	SNSTopicArn      string
	RDS              RDS
	Twilio           Twilio
}

// Load reads envFile if it exists, then the environment
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		_ = godotenv.Load(envFile)
	}
	return FromEnv()
}

// FromEnv builds a Config from environment variables
func FromEnv() (*Config, error) {
	cfg := &Config{
		APIURL:           strings.TrimRight(os.Getenv("API_URL"), "/"),
		APIToken:         os.Getenv("API_TOKEN"),
		UserID:           chat.ID(os.Getenv("USER_ID")),
		ActingSeerID:     chat.ID(os.Getenv("ACTING_SEER_ID")),
		ActingSeerUserID: chat.ID(os.Getenv("ACTING_SEER_USER_ID")),
		DeepLinkID:       chat.ID(os.Getenv("CHAT_WITH")),
		Language:         envOr("LANGUAGE", "fr"),
		Pane:             pane.Config{PollInterval: pane.DefaultConfig().PollInterval},
		StateBackend:     strings.ToLower(envOr("STATE_BACKEND", StateNone)),
		LogFile:          envOr("LOG_FILE", "seerchat.log"),
		AlertPhoneNumber: os.Getenv("ALERT_PHONE_NUMBER"),
		S3Bucket:         os.Getenv("S3_BUCKET"),
		SNSTopicArn:      os.Getenv("SNS_TOPIC_ARN"),
		RDS:              RDSFromEnv(),
		Twilio:           TwilioFromEnv(),
	}

	if cfg.APIURL == "" {
		return nil, fmt.Errorf("API_URL is required")
	}
	if cfg.UserID.IsZero() {
		return nil, fmt.Errorf("USER_ID is required")
	}

	var err error
	if cfg.UserType, err = parseUserType(os.Getenv("USER_TYPE")); err != nil {
		return nil, err
	}
	if cfg.NotifyBell, err = parseBool("NOTIFY_BELL", true); err != nil {
		return nil, err
	}
	if cfg.Pane.PollInterval, err = parseDuration("POLL_INTERVAL", cfg.Pane.PollInterval); err != nil {
		return nil, err
	}
	if cfg.Pane.BottomTolerance, err = parseInt("SCROLL_TOLERANCE", cfg.Pane.BottomTolerance); err != nil {
		return nil, err
	}
	if cfg.Pane.TopThreshold, err = parseInt("TOP_THRESHOLD", cfg.Pane.TopThreshold); err != nil {
		return nil, err
	}

	switch cfg.StateBackend {
	case StateNone:
	case StatePostgres:
		if cfg.RDS.Host == "" {
			return nil, fmt.Errorf("STATE_BACKEND=postgres requires RDS_HOST")
		}
	case StateS3:
		if cfg.S3Bucket == "" {
			return nil, fmt.Errorf("STATE_BACKEND=s3 requires S3_BUCKET")
		}
	default:
		return nil, fmt.Errorf("unknown STATE_BACKEND %q", cfg.StateBackend)
	}
	return cfg, nil
}

// Identity is who the client acts as
func (c *Config) Identity() chat.Identity {
	identity := chat.Identity{UserID: c.UserID, Type: c.UserType}
	if !c.ActingSeerID.IsZero() || !c.ActingSeerUserID.IsZero() {
		identity.ActingSeer = &chat.Participant{ID: c.ActingSeerID, User: c.ActingSeerUserID}
	}
	return identity
}

func envOr(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

// parseUserType accepts role names or the numeric profile user_type
func parseUserType(value string) (chat.UserType, error) {
	value = strings.ToUpper(strings.TrimSpace(value))
	switch value {
	case "":
		return "", nil
	case string(chat.Seer), string(chat.Client), string(chat.Admin):
		return chat.UserType(value), nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return "", fmt.Errorf("invalid USER_TYPE %q", value)
	}
	return chat.UserTypeFromProfile(n), nil
}

func parseBool(key string, fallback bool) (bool, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return parsed, nil
}

func parseInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return fallback, fmt.Errorf("invalid %s %q", key, value)
	}
	return parsed, nil
}

// parseDuration accepts Go durations or a number of seconds
func parseDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}
	if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second, nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil || parsed <= 0 {
		return fallback, fmt.Errorf("invalid %s %q", key, value)
	}
	return parsed, nil
}
