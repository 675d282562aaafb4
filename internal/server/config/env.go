package config

import (
	"strings"
	"time"
)

// parseEnv overlays values from environment variables. lookup is usually
// os.LookupEnv; a .env file, when present, is loaded into the process
// environment by the caller beforehand.
//
// Recognised variables:
//
//	PORT, ENVIRONMENT, LOG_BACKEND, STORAGE_DRIVER, DATABASE_DSN,
//	MONGODB_URI, MONGODB_DATABASE, ACCESS_TOKEN_SECRET, REFRESH_TOKEN_SECRET,
//	ACCESS_TOKEN_EXPIRY, REFRESH_TOKEN_EXPIRY (Go durations, e.g. "15m", "240h"),
//	S3_ROOT_USER, S3_ROOT_PASSWORD, S3_BUCKET, S3_REGION, S3_BASE_ENDPOINT,
//	S3_PUBLIC_BASE_URL, UPLOAD_TEMP_DIR, CORS_ORIGIN
//
// An unparsable duration panics, matching the JSON loader.
func parseEnv(config *Config, lookup func(string) (string, bool)) {
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	if v, ok := get("PORT"); ok {
		if !strings.Contains(v, ":") {
			v = ":" + v
		}
		config.EndpointAddrHTTP = v
	}

	strs := map[string]*string{
		"ENVIRONMENT":          &config.Environment,
		"LOG_BACKEND":          &config.LogBackend,
		"STORAGE_DRIVER":       &config.StorageDriver,
		"DATABASE_DSN":         &config.DatabaseDSN,
		"MONGODB_URI":          &config.MongoURI,
		"MONGODB_DATABASE":     &config.MongoDatabase,
		"ACCESS_TOKEN_SECRET":  &config.AccessTokenSecret,
		"REFRESH_TOKEN_SECRET": &config.RefreshTokenSecret,
		"S3_ROOT_USER":         &config.S3RootUser,
		"S3_ROOT_PASSWORD":     &config.S3RootPassword,
		"S3_BUCKET":            &config.S3Bucket,
		"S3_REGION":            &config.S3Region,
		"S3_BASE_ENDPOINT":     &config.S3BaseEndpoint,
		"S3_PUBLIC_BASE_URL":   &config.S3PublicBaseURL,
		"UPLOAD_TEMP_DIR":      &config.UploadTempDir,
		"CORS_ORIGIN":          &config.CorsOrigin,
	}
	for key, dst := range strs {
		if v, ok := get(key); ok {
			*dst = v
		}
	}

	durations := map[string]*time.Duration{
		"ACCESS_TOKEN_EXPIRY":  &config.AccessTokenValidityDuration,
		"REFRESH_TOKEN_EXPIRY": &config.RefreshTokenValidityDuration,
	}
	for key, dst := range durations {
		if v, ok := get(key); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				panic(err)
			}
			*dst = d
		}
	}
}
