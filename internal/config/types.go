package config

import (
	"strconv"
	"time"
)

// AppConfig holds runtime startup configuration loaded from YAML and the environment.
type AppConfig struct {
	Env            string          `yaml:"env" env:"APP_ENV"` // "development" | "production"
	Host           string          `yaml:"host" env:"LISTEN_HOST"`
	Port           int             `yaml:"port" env:"PORT"`
	AllowedOrigins []string        `yaml:"allowed_origins" env:"ALLOWED_ORIGINS" env-separator:","`
	Site           SiteConfig      `yaml:"site"`
	Mongo          MongoConfig     `yaml:"mongo"`
	Redis          RedisConfig     `yaml:"redis"`
	Auth           AuthConfig      `yaml:"auth"`
	Media          MediaConfig     `yaml:"media"`
	Push           PushConfig      `yaml:"push"`
	Bark           BarkConfig      `yaml:"bark"`
	Mail           MailConfig      `yaml:"mail"`
	Log            LogConfig       `yaml:"log"`
	RateLimit      RateLimitConfig `yaml:"rate_limit"`
}

type SiteConfig struct {
	URL   string `yaml:"url" env:"SITE_URL"`
	Title string `yaml:"title" env:"SITE_TITLE"`
}

type MongoConfig struct {
	URI      string        `yaml:"uri" env:"MONGODB_URI"`
	Database string        `yaml:"database" env:"MONGODB_DATABASE"`
	Timeout  time.Duration `yaml:"timeout" env:"MONGODB_TIMEOUT"`
}

type RedisConfig struct {
	URL string `yaml:"url" env:"REDIS_URL"`
}

type AuthConfig struct {
	JWTSecret      string `yaml:"jwt_secret" env:"JWT_SECRET"`
	Issuer         string `yaml:"issuer" env:"JWT_ISSUER"`
	CookieName     string `yaml:"cookie_name" env:"AUTH_COOKIE_NAME"`
	AdminLoginPath string `yaml:"admin_login_path" env:"ADMIN_LOGIN_PATH"`
	AdminDir       string `yaml:"admin_dir" env:"ADMIN_DIR"`
}

type MediaConfig struct {
	Driver   string            `yaml:"driver" env:"MEDIA_DRIVER"`
	Local    LocalMediaConfig  `yaml:"local"`
	S3       S3MediaConfig     `yaml:"s3"`
	GCS      GCSMediaConfig    `yaml:"gcs"`
	Defaults MediaDefaultsURLs `yaml:"defaults"`
}

type LocalMediaConfig struct {
	Dir       string `yaml:"dir" env:"MEDIA_LOCAL_DIR"`
	URLPrefix string `yaml:"url_prefix" env:"MEDIA_LOCAL_URL_PREFIX"`
}

type S3MediaConfig struct {
	Bucket          string `yaml:"bucket" env:"S3_BUCKET"`
	Region          string `yaml:"region" env:"S3_REGION"`
	Endpoint        string `yaml:"endpoint" env:"S3_ENDPOINT"`
	AccessKeyID     string `yaml:"access_key_id" env:"S3_ACCESS_KEY_ID"`
	SecretAccessKey string `yaml:"secret_access_key" env:"S3_SECRET_ACCESS_KEY"`
	PathStyle       bool   `yaml:"path_style" env:"S3_PATH_STYLE"`
	PublicURL       string `yaml:"public_url" env:"S3_PUBLIC_URL"`
}

type GCSMediaConfig struct {
	Bucket          string `yaml:"bucket" env:"GCS_BUCKET"`
	CredentialsFile string `yaml:"credentials_file" env:"GOOGLE_APPLICATION_CREDENTIALS"`
	PublicURL       string `yaml:"public_url" env:"GCS_PUBLIC_URL"`
}

// MediaDefaultsURLs are the placeholder images used when content is created without one.
type MediaDefaultsURLs struct {
	Podcast string `yaml:"podcast" env:"MEDIA_DEFAULT_PODCAST"`
	Blog    string `yaml:"blog" env:"MEDIA_DEFAULT_BLOG"`
	Ad      string `yaml:"ad" env:"MEDIA_DEFAULT_AD"`
}

type PushConfig struct {
	VAPIDPublicKey  string        `yaml:"vapid_public_key" env:"VAPID_PUBLIC_KEY"`
	VAPIDPrivateKey string        `yaml:"vapid_private_key" env:"VAPID_PRIVATE_KEY"`
	Subscriber      string        `yaml:"subscriber" env:"VAPID_SUBJECT"`
	TTL             int           `yaml:"ttl" env:"PUSH_TTL"`
	Concurrency     int           `yaml:"concurrency" env:"PUSH_CONCURRENCY"`
	DispatchTimeout time.Duration `yaml:"dispatch_timeout" env:"PUSH_DISPATCH_TIMEOUT"`
}

type BarkConfig struct {
	Enable    bool   `yaml:"enable" env:"BARK_ENABLE"`
	Key       string `yaml:"key" env:"BARK_KEY"`
	ServerURL string `yaml:"server_url" env:"BARK_SERVER_URL"`
}

type MailConfig struct {
	Enable    bool   `yaml:"enable" env:"MAIL_ENABLE"`
	Provider  string `yaml:"provider" env:"MAIL_PROVIDER"` // "smtp" | "resend"
	Host      string `yaml:"host" env:"SMTP_HOST"`
	Port      int    `yaml:"port" env:"SMTP_PORT"`
	User      string `yaml:"user" env:"SMTP_USER"`
	Pass      string `yaml:"pass" env:"SMTP_PASS"`
	Secure    bool   `yaml:"secure" env:"SMTP_SECURE"`
	From      string `yaml:"from" env:"MAIL_FROM"`
	Owner     string `yaml:"owner" env:"MAIL_OWNER"`
	ResendKey string `yaml:"resend_key" env:"RESEND_API_KEY"`
}

type LogConfig struct {
	Dir   string `yaml:"dir" env:"LOG_DIR"`
	Level string `yaml:"level" env:"LOG_LEVEL"`
}

type RateLimitConfig struct {
	PerSecond int `yaml:"per_second" env:"RATE_LIMIT_PER_SECOND"`
}

// IsDev reports whether the app runs outside production.
func (c *AppConfig) IsDev() bool {
	return c.Env != EnvProduction
}

// Addr returns the listen address.
func (c *AppConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
