package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config is the typed view over viper settings used by the server.
type Config struct {
	Port    string
	Session SessionConfig
	Admin   AdminConfig
	Argon2  Argon2Config
	SMS     SMSConfig
	Uploads UploadsConfig
	Face    FaceConfig
	Captcha CaptchaConfig
	Sweep   SweepConfig
}

type SessionConfig struct {
	SecretKey    string
	TTL          time.Duration
	CookieName   string
	CookieSecure bool
}

type AdminConfig struct {
	Username     string
	PasswordHash string
}

// Argon2Config holds argon2id parameters for admin password hashes.
type Argon2Config struct {
	Time       uint32
	Memory     uint32
	Threads    uint8
	KeyLength  uint32
	SaltLength int
}

type SMSConfig struct {
	APIKey      string
	BaseURL     string
	Template    string
	CountryCode string
	Timeout     time.Duration
}

type UploadsConfig struct {
	IDDir      string
	AadhaarDir string
	PhotoDir   string
	SymbolDir  string
	MaxBytes   int64
}

type FaceConfig struct {
	ModelsDir string
	Tolerance float64
}

type CaptchaConfig struct {
	TTL time.Duration
}

// SweepConfig controls removal of registrations that never enrolled a face.
// A zero AbandonAfter disables the sweep.
type SweepConfig struct {
	AbandonAfter time.Duration
	Interval     time.Duration
}

var envBindings = map[string]string{
	"server.port":                 "PORT",
	"session.secret_key":          "SESSION_SECRET_KEY",
	"session.ttl":                 "SESSION_TTL",
	"session.cookie_secure":       "SESSION_COOKIE_SECURE",
	"admin.username":              "ADMIN_USERNAME",
	"admin.password_hash":         "ADMIN_PASSWORD_HASH",
	"argon2.time":                 "ARGON2_TIME",
	"argon2.memory":               "ARGON2_MEMORY",
	"argon2.threads":              "ARGON2_THREADS",
	"argon2.key_length":           "ARGON2_KEY_LENGTH",
	"argon2.salt_length":          "ARGON2_SALT_LENGTH",
	"sms.api_key":                 "SMS_API_KEY",
	"sms.base_url":                "SMS_BASE_URL",
	"sms.template":                "SMS_TEMPLATE",
	"sms.country_code":            "SMS_COUNTRY_CODE",
	"sms.timeout":                 "SMS_TIMEOUT",
	"uploads.id_dir":              "UPLOADS_ID_DIR",
	"uploads.aadhaar_dir":         "UPLOADS_AADHAAR_DIR",
	"uploads.photo_dir":           "UPLOADS_PHOTO_DIR",
	"uploads.symbol_dir":          "UPLOADS_SYMBOL_DIR",
	"uploads.max_bytes":           "UPLOADS_MAX_BYTES",
	"face.models_dir":             "FACE_MODELS_DIR",
	"face.tolerance":              "FACE_TOLERANCE",
	"captcha.ttl":                 "CAPTCHA_TTL",
	"registration.abandon_after":  "REGISTRATION_ABANDON_AFTER",
	"registration.sweep_interval": "REGISTRATION_SWEEP_INTERVAL",
}

func setDefaults() {
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("session.ttl", 30*time.Minute)
	viper.SetDefault("session.cookie_secure", false)
	viper.SetDefault("admin.username", "admin")
	viper.SetDefault("argon2.time", 1)
	viper.SetDefault("argon2.memory", 64*1024)
	viper.SetDefault("argon2.threads", 4)
	viper.SetDefault("argon2.key_length", 32)
	viper.SetDefault("argon2.salt_length", 16)
	viper.SetDefault("sms.base_url", "https://2factor.in/API/V1")
	viper.SetDefault("sms.template", "SmartVoting")
	viper.SetDefault("sms.country_code", "+91")
	viper.SetDefault("sms.timeout", 10*time.Second)
	viper.SetDefault("uploads.id_dir", "static/uploads/ids")
	viper.SetDefault("uploads.aadhaar_dir", "static/uploads/aadhaar")
	viper.SetDefault("uploads.photo_dir", "static/voter_photos")
	viper.SetDefault("uploads.symbol_dir", "static/symbols")
	viper.SetDefault("uploads.max_bytes", 12*1024*1024)
	viper.SetDefault("face.models_dir", "models")
	viper.SetDefault("face.tolerance", 0.45)
	viper.SetDefault("captcha.ttl", 10*time.Minute)
	viper.SetDefault("registration.abandon_after", time.Duration(0))
	viper.SetDefault("registration.sweep_interval", time.Hour)
}

// Load reads .env (if present) and the environment into a Config.
func Load() *Config {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()
	for key, env := range envBindings {
		viper.BindEnv(key, env)
	}
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Config file not found, using defaults: %v", err)
	}

	cfg := &Config{
		Port: viper.GetString("server.port"),
		Session: SessionConfig{
			SecretKey:    viper.GetString("session.secret_key"),
			TTL:          viper.GetDuration("session.ttl"),
			CookieName:   "sv_session",
			CookieSecure: viper.GetBool("session.cookie_secure"),
		},
		Admin: AdminConfig{
			Username:     viper.GetString("admin.username"),
			PasswordHash: viper.GetString("admin.password_hash"),
		},
		Argon2: Argon2Config{
			Time:       viper.GetUint32("argon2.time"),
			Memory:     viper.GetUint32("argon2.memory"),
			Threads:    uint8(viper.GetUint("argon2.threads")),
			KeyLength:  viper.GetUint32("argon2.key_length"),
			SaltLength: viper.GetInt("argon2.salt_length"),
		},
		SMS: SMSConfig{
			APIKey:      viper.GetString("sms.api_key"),
			BaseURL:     viper.GetString("sms.base_url"),
			Template:    viper.GetString("sms.template"),
			CountryCode: viper.GetString("sms.country_code"),
			Timeout:     viper.GetDuration("sms.timeout"),
		},
		Uploads: UploadsConfig{
			IDDir:      viper.GetString("uploads.id_dir"),
			AadhaarDir: viper.GetString("uploads.aadhaar_dir"),
			PhotoDir:   viper.GetString("uploads.photo_dir"),
			SymbolDir:  viper.GetString("uploads.symbol_dir"),
			MaxBytes:   viper.GetInt64("uploads.max_bytes"),
		},
		Face: FaceConfig{
			ModelsDir: viper.GetString("face.models_dir"),
			Tolerance: viper.GetFloat64("face.tolerance"),
		},
		Captcha: CaptchaConfig{
			TTL: viper.GetDuration("captcha.ttl"),
		},
		Sweep: SweepConfig{
			AbandonAfter: viper.GetDuration("registration.abandon_after"),
			Interval:     viper.GetDuration("registration.sweep_interval"),
		},
	}

	return cfg
}
