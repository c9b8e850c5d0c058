package config

import "time"

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"

	defaultHost             = "0.0.0.0"
	defaultPort             = 3000
	defaultEnv              = "development"
	defaultMongoURI         = "mongodb://localhost:27017"
	defaultMongoDatabase    = "podcastify"
	defaultMongoTimeout     = 10 * time.Second
	defaultRedisURL         = "redis://localhost:6379/0"
	defaultMediaDriver      = MediaDriverLocal
	defaultMediaLocalDir    = "static"
	defaultMediaLocalPrefix = "/static"
	defaultPushTTL          = 24 * 60 * 60
	defaultPushConcurrency  = 8
	defaultDispatchTimeout  = 30 * time.Second
	defaultCookieName       = "token"
	defaultAdminLoginPath   = "/admin/login"
	defaultRateLimitPerSec  = 10
	defaultLogLevel         = "info"
	defaultSiteURL          = "http://localhost:3000"
	defaultSiteTitle        = "PodCastify"
)

const (
	EnvProduction  = "production"
	EnvDevelopment = "development"
)

const (
	MediaDriverLocal = "local"
	MediaDriverS3    = "s3"
	MediaDriverGCS   = "gcs"
)
