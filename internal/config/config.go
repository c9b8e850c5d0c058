package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"
)

// Load reads defaults, then the optional YAML file, then environment overrides.
// A missing file is only an error when the path was given explicitly.
func Load(configPath string) (*AppConfig, error) {
	path := strings.TrimSpace(configPath)
	explicit := path != ""
	if path == "" {
		path = DefaultConfigPath
	}

	cfg := defaultAppConfig()

	content, err := os.ReadFile(path)
	switch {
	case err == nil:
		decoder := yaml.NewDecoder(bytes.NewReader(content))
		decoder.KnownFields(true)
		if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parse config file %q: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("read config file %q: %w", path, err)
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}

	normalize(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func defaultAppConfig() AppConfig {
	return AppConfig{
		Env:  defaultEnv,
		Host: defaultHost,
		Port: defaultPort,
		Site: SiteConfig{
			URL:   defaultSiteURL,
			Title: defaultSiteTitle,
		},
		Mongo: MongoConfig{
			URI:      defaultMongoURI,
			Database: defaultMongoDatabase,
			Timeout:  defaultMongoTimeout,
		},
		Redis: RedisConfig{URL: defaultRedisURL},
		Auth: AuthConfig{
			CookieName:     defaultCookieName,
			AdminLoginPath: defaultAdminLoginPath,
		},
		Media: MediaConfig{
			Driver: defaultMediaDriver,
			Local: LocalMediaConfig{
				Dir:       defaultMediaLocalDir,
				URLPrefix: defaultMediaLocalPrefix,
			},
		},
		Push: PushConfig{
			TTL:             defaultPushTTL,
			Concurrency:     defaultPushConcurrency,
			DispatchTimeout: defaultDispatchTimeout,
		},
		Mail:      MailConfig{Provider: "smtp", Port: 465, Secure: true},
		Log:       LogConfig{Level: defaultLogLevel},
		RateLimit: RateLimitConfig{PerSecond: defaultRateLimitPerSec},
	}
}

func normalize(cfg *AppConfig) {
	cfg.Env = strings.ToLower(strings.TrimSpace(cfg.Env))
	cfg.Media.Driver = strings.ToLower(strings.TrimSpace(cfg.Media.Driver))
	cfg.Site.URL = strings.TrimRight(strings.TrimSpace(cfg.Site.URL), "/")
	cfg.Media.Local.URLPrefix = "/" + strings.Trim(cfg.Media.Local.URLPrefix, "/")
	if cfg.Push.Subscriber != "" && !strings.HasPrefix(cfg.Push.Subscriber, "mailto:") && !strings.HasPrefix(cfg.Push.Subscriber, "https://") {
		cfg.Push.Subscriber = "mailto:" + cfg.Push.Subscriber
	}

	origins := cfg.AllowedOrigins[:0]
	for _, o := range cfg.AllowedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	cfg.AllowedOrigins = origins
}

// Validate reports the first setting that would prevent the server from starting.
func (c *AppConfig) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d, expected 1-65535", c.Port)
	}
	if c.Env != EnvProduction && c.Env != EnvDevelopment {
		return fmt.Errorf("invalid env %q, expected %q or %q", c.Env, EnvDevelopment, EnvProduction)
	}
	if strings.TrimSpace(c.Mongo.URI) == "" {
		return errors.New("mongo.uri is required")
	}
	if strings.TrimSpace(c.Mongo.Database) == "" {
		return errors.New("mongo.database is required")
	}
	if strings.TrimSpace(c.Redis.URL) == "" {
		return errors.New("redis.url is required")
	}
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		return errors.New("auth.jwt_secret is required")
	}
	if p := strings.TrimRight(c.Auth.AdminLoginPath, "/"); p == "" || !strings.HasPrefix(p, "/") {
		return fmt.Errorf("invalid auth.admin_login_path %q, expected an absolute path other than /", c.Auth.AdminLoginPath)
	}
	if c.Push.VAPIDPublicKey == "" || c.Push.VAPIDPrivateKey == "" {
		return errors.New("push.vapid_public_key and push.vapid_private_key are required")
	}
	if c.Push.Concurrency < 1 {
		return fmt.Errorf("invalid push.concurrency %d, expected >= 1", c.Push.Concurrency)
	}

	switch c.Media.Driver {
	case MediaDriverLocal:
		if strings.TrimSpace(c.Media.Local.Dir) == "" {
			return errors.New("media.local.dir is required")
		}
	case MediaDriverS3:
		s3 := c.Media.S3
		if s3.Bucket == "" || s3.Region == "" || s3.AccessKeyID == "" || s3.SecretAccessKey == "" {
			return errors.New("media.s3 requires bucket, region, access_key_id and secret_access_key")
		}
	case MediaDriverGCS:
		if c.Media.GCS.Bucket == "" {
			return errors.New("media.gcs.bucket is required")
		}
	default:
		return fmt.Errorf("unknown media.driver %q", c.Media.Driver)
	}

	if c.Mail.Enable {
		switch c.Mail.Provider {
		case "smtp":
			if c.Mail.Host == "" || c.Mail.Owner == "" {
				return errors.New("mail.host and mail.owner are required when mail is enabled")
			}
		case "resend":
			if c.Mail.ResendKey == "" || c.Mail.Owner == "" {
				return errors.New("mail.resend_key and mail.owner are required when mail is enabled")
			}
		default:
			return fmt.Errorf("unknown mail.provider %q", c.Mail.Provider)
		}
	}
	if c.Bark.Enable && c.Bark.Key == "" {
		return errors.New("bark.key is required when bark is enabled")
	}
	return nil
}
