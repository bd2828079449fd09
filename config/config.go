package config

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/linesmerrill/wepass-api/logging"
	"github.com/linesmerrill/wepass-api/models"
)

// Config holds the project config values
type Config struct {
	URL          string
	DatabaseName string
	BaseURL      string
	Port         string
	Env          string

	JWTSecret    string
	TokenTTL     time.Duration
	PublicRoutes []string

	// TimezoneOffsetHours is the canonical offset from UTC every access-code
	// timestamp and day boundary is computed in.
	TimezoneOffsetHours int
	CodeValidity        time.Duration
	CodeMaxAttempts     int

	RedisURL         string
	VerifyRateLimit  int
	VerifyRateWindow time.Duration

	RequestTimeout    time.Duration
	CapacitySchedule  string
	CapacityWarnRatio float64
}

// New sets up all config related services
func New() *Config {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	conf := &Config{
		URL:                 v.GetString("DB_URI"),
		DatabaseName:        v.GetString("DB_NAME"),
		BaseURL:             v.GetString("BASE_URL"),
		Port:                v.GetString("PORT"),
		Env:                 v.GetString("ENV"),
		JWTSecret:           v.GetString("JWT_SECRET"),
		TokenTTL:            v.GetDuration("TOKEN_TTL"),
		PublicRoutes:        splitList(v.GetString("PUBLIC_ROUTES")),
		TimezoneOffsetHours: v.GetInt("TIMEZONE_OFFSET_HOURS"),
		CodeValidity:        v.GetDuration("CODE_VALIDITY"),
		CodeMaxAttempts:     v.GetInt("CODE_MAX_ATTEMPTS"),
		RedisURL:            v.GetString("REDIS_URL"),
		VerifyRateLimit:     v.GetInt("VERIFY_RATE_LIMIT"),
		VerifyRateWindow:    v.GetDuration("VERIFY_RATE_WINDOW"),
		RequestTimeout:      v.GetDuration("REQUEST_TIMEOUT"),
		CapacitySchedule:    v.GetString("CAPACITY_SCHEDULE"),
		CapacityWarnRatio:   v.GetFloat64("CAPACITY_WARN_RATIO"),
	}

	//setup zap logger and replace default logger
	logger, err := setLogger(conf.Env)
	if err != nil {
		logger = zap.NewExample()
	}
	_ = zap.ReplaceGlobals(logger)

	return conf
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "production")
	v.SetDefault("TOKEN_TTL", "24h")
	v.SetDefault("PUBLIC_ROUTES", "/health")
	v.SetDefault("TIMEZONE_OFFSET_HOURS", -6)
	v.SetDefault("CODE_VALIDITY", "7h")
	v.SetDefault("CODE_MAX_ATTEMPTS", 50)
	v.SetDefault("VERIFY_RATE_LIMIT", 30)
	v.SetDefault("VERIFY_RATE_WINDOW", "1m")
	v.SetDefault("REQUEST_TIMEOUT", "15s")
	v.SetDefault("CAPACITY_SCHEDULE", "*/15 * * * *")
	v.SetDefault("CAPACITY_WARN_RATIO", 0.8)
}

func setLogger(env string) (*zap.Logger, error) {
	return logging.New(env)
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ErrorStatus is a useful function that will log, write http headers and body for a
// give message, status code and err
func ErrorStatus(message string, httpStatusCode int, w http.ResponseWriter, err error) {
	errText := ""
	if err != nil {
		errText = err.Error()
	}
	zap.S().Errorw(message, "status", httpStatusCode, "error", errText)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatusCode)
	b, _ := json.Marshal(models.ErrorMessageResponse{Response: models.MessageError{Message: message, Error: errText}})
	_, _ = w.Write(b)
}
