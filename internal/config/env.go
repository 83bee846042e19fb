package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Env struct {
	AppAddr string
	GinMode string

	DBDSN string

	JWTSecret    string
	SessionTTL   time.Duration
	CookieSecure bool
	CORSOrigins  []string
	RedisURL     string

	PendingTTL          time.Duration
	ExpirySweepInterval time.Duration

	AdminEmail    string
	AdminPassword string

	AppBaseURL string
	EmailJS    EmailJSEnv

	MediaDir     string
	MediaBaseURL string
	Cloudinary   CloudinaryEnv
}

type EmailJSEnv struct {
	PublicKey             string
	ServiceID             string
	TemplateAdmin         string
	TemplateClientRecap   string
	TemplateClientPayment string
	Endpoint              string
}

type CloudinaryEnv struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

// Enabled reports whether every credential needed for a signed upload is set.
func (c CloudinaryEnv) Enabled() bool {
	return c.CloudName != "" && c.APIKey != "" && c.APISecret != ""
}

func LoadEnv() Env {
	// .env is optional; real deployments set variables directly.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("warning: gagal membaca .env: %v", err)
	}

	appAddr := str("APP_ADDR", ":8080")
	appBase := str("APP_BASE_URL", "http://localhost"+appAddr)

	return Env{
		AppAddr: appAddr,
		GinMode: str("GIN_MODE", ""),

		DBDSN: dsnFromEnv(),

		JWTSecret:    str("JWT_SECRET", "dev-secret-change-me"),
		SessionTTL:   duration("SESSION_TTL", 24*time.Hour),
		CookieSecure: boolean("COOKIE_SECURE", false),
		CORSOrigins:  list("CORS_ALLOWED_ORIGINS"),
		RedisURL:     str("REDIS_URL", ""),

		PendingTTL:          duration("PENDING_TTL", 72*time.Hour),
		ExpirySweepInterval: duration("EXPIRY_SWEEP_INTERVAL", 10*time.Minute),

		AdminEmail:    str("ADMIN_EMAIL", ""),
		AdminPassword: str("ADMIN_PASSWORD", ""),

		AppBaseURL: appBase,
		EmailJS: EmailJSEnv{
			PublicKey:             str("EMAILJS_PUBLIC_KEY", ""),
			ServiceID:             str("EMAILJS_SERVICE_ID", ""),
			TemplateAdmin:         str("EMAILJS_TEMPLATE_ADMIN", ""),
			TemplateClientRecap:   str("EMAILJS_TEMPLATE_CLIENT_RECAP", ""),
			TemplateClientPayment: str("EMAILJS_TEMPLATE_CLIENT_PAYMENT", ""),
			Endpoint:              str("EMAILJS_ENDPOINT", "https://api.emailjs.com/api/v1.0/email/send"),
		},

		MediaDir:     str("MEDIA_DIR", "./media"),
		MediaBaseURL: str("MEDIA_BASE_URL", strings.TrimRight(appBase, "/")+"/media"),
		Cloudinary: CloudinaryEnv{
			CloudName: str("CLOUDINARY_CLOUD_NAME", ""),
			APIKey:    str("CLOUDINARY_API_KEY", ""),
			APISecret: str("CLOUDINARY_API_SECRET", ""),
			Folder:    str("CLOUDINARY_FOLDER", ""),
		},
	}
}

func dsnFromEnv() string {
	if dsn := str("DB_DSN", ""); dsn != "" {
		return dsn
	}
	return str("DB_USER", "root") + ":" + str("DB_PASSWORD", "") +
		"@tcp(" + str("DB_HOST", "127.0.0.1:3306") + ")/" + str("DB_NAME", "rentals") +
		"?parseTime=true&loc=UTC&clientFoundRows=true&charset=utf8mb4&timeout=5s&readTimeout=30s&writeTimeout=30s"
}

func str(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func duration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("warning: %s=%q bukan durasi valid, pakai default %s", key, v, def)
		return def
	}
	return d
}

func boolean(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func list(key string) []string {
	out := []string{}
	for _, p := range strings.Split(os.Getenv(key), ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
