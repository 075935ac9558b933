package config

import (
	"os"
	"strings"
)

type R2 struct {
	AccountID  string
	AccessKey  string
	SecretKey  string
	BucketName string
	PublicURL  string
}

// BrandCredentials holds the Meta identifiers for one brand's
// Instagram business account and Facebook page.
type BrandCredentials struct {
	InstagramAccountID string
	FacebookPageID     string
	MetaAccessToken    string
}

type Config struct {
	TiktokClientKey    string
	TiktokClientSecret string
	GoogleClientID     string
	GoogleClientSecret string
	PostgresURI        string
	RedisURI           string
	FrontendURL        string
	R2                 R2
	SecretKey          string
	CookieName         string
	APIKey             string
	Brands             map[string]BrandCredentials
}

func LoadConfig() *Config {
	cfg := &Config{
		TiktokClientKey:    getEnv("TIKTOK_CLIENT_KEY", ""),
		TiktokClientSecret: getEnv("TIKTOK_CLIENT_SECRET", ""),
		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		PostgresURI:        getEnv("POSTGRES_URI", ""),
		RedisURI:           getEnv("REDIS_URI", ""),
		FrontendURL:        getEnv("FRONTEND_URL", "http://localhost:5173"),
		R2: R2{
			AccountID:  getEnv("R2_ACCOUNT_ID", ""),
			AccessKey:  getEnv("R2_ACCESS_KEY", ""),
			SecretKey:  getEnv("R2_SECRET_KEY", ""),
			BucketName: getEnv("R2_BUCKET_NAME", ""),
			PublicURL:  getEnv("R2_PUBLIC_URL", ""),
		},
		SecretKey:  getEnv("SECRET_KEY", ""),
		CookieName: getEnv("COOKIE_NAME", ""),
		APIKey:     getEnv("API_KEY", ""),
		Brands:     make(map[string]BrandCredentials),
	}

	// Brand credentials use prefixed env vars, e.g.
	// GYMCOLLEGE_INSTAGRAM_BUSINESS_ACCOUNT_ID, GYMCOLLEGE_META_ACCESS_TOKEN.
	for _, brand := range []string{"gymcollege", "healthycollege", "vitalitycollege", "longevitycollege"} {
		prefix := strings.ToUpper(brand)
		creds := BrandCredentials{
			InstagramAccountID: getEnv(prefix+"_INSTAGRAM_BUSINESS_ACCOUNT_ID", ""),
			FacebookPageID:     getEnv(prefix+"_FACEBOOK_PAGE_ID", ""),
			MetaAccessToken:    getEnv(prefix+"_META_ACCESS_TOKEN", ""),
		}
		if creds.InstagramAccountID != "" || creds.FacebookPageID != "" {
			cfg.Brands[brand] = creds
		}
	}

	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
