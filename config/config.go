package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultSessionKey is only a placeholder, serve replaces it with a random key
const DefaultSessionKey = "change-this-session-key"

var (
	BIND_ADDRESS    = "0.0.0.0:5000"
	TLS_DOMAINS     = ""                      // e.g. "example.com,example2.com"
	MYSQL_DSN       = ""                      // MySQL will be used if this is set
	SQLITE_FILE     = "database.sqlite"       // SQLite will be used if MYSQL_DSN is not configured
	DEBUG_MODE      = true
	SESSION_KEY     = DefaultSessionKey
	SESSION_MAX_AGE = 7 * 86400 // seconds
	CORS_ORIGINS    = []string{"http://localhost:3000"}

	// Image storage. A S3 bucket is used when S3_BUCKET is set, otherwise UPLOAD_DIR on local disk
	UPLOAD_DIR    = "./uploads"
	MAX_FILE_SIZE = int64(16 * 1024 * 1024)
	S3_BUCKET     = ""
	S3_REGION     = "us-east-1"
	S3_ENDPOINT   = "" // for S3 compatible services, e.g. MinIO
	S3_KEY        = ""
	S3_SECRET     = ""

	// Generative AI extraction
	GEMINI_API_KEY  = ""
	GEMINI_MODEL    = "gemini-1.5-flash"
	GEMINI_ENDPOINT = "https://generativelanguage.googleapis.com"
	GEMINI_VERSION  = "v1beta"
	GEMINI_TIMEOUT  = 60 * time.Second

	// Images wider or taller than IMAGE_MAX_SIZE are downscaled before extraction
	IMAGE_MAX_SIZE      = 2048
	THUMB_SIZE          = 400
	PROCESSING_INTERVAL = 30 * time.Second
)

func init() {
	Load()
}

// Load reads the configuration from the environment (and an optional .env file in the working dir).
// Values not present keep their defaults.
func Load() {
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded .env file")
	}
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("BIND_ADDRESS", BIND_ADDRESS)
	v.SetDefault("TLS_DOMAINS", TLS_DOMAINS)
	v.SetDefault("MYSQL_DSN", MYSQL_DSN)
	v.SetDefault("SQLITE_FILE", SQLITE_FILE)
	v.SetDefault("DEBUG_MODE", DEBUG_MODE)
	v.SetDefault("SESSION_KEY", SESSION_KEY)
	v.SetDefault("SESSION_MAX_AGE", SESSION_MAX_AGE)
	v.SetDefault("CORS_ORIGINS", strings.Join(CORS_ORIGINS, ","))
	v.SetDefault("UPLOAD_DIR", UPLOAD_DIR)
	v.SetDefault("MAX_FILE_SIZE", MAX_FILE_SIZE)
	v.SetDefault("S3_BUCKET", S3_BUCKET)
	v.SetDefault("S3_REGION", S3_REGION)
	v.SetDefault("S3_ENDPOINT", S3_ENDPOINT)
	v.SetDefault("S3_KEY", S3_KEY)
	v.SetDefault("S3_SECRET", S3_SECRET)
	v.SetDefault("GEMINI_API_KEY", GEMINI_API_KEY)
	v.SetDefault("GEMINI_MODEL", GEMINI_MODEL)
	v.SetDefault("GEMINI_ENDPOINT", GEMINI_ENDPOINT)
	v.SetDefault("GEMINI_VERSION", GEMINI_VERSION)
	v.SetDefault("GEMINI_TIMEOUT", GEMINI_TIMEOUT)
	v.SetDefault("IMAGE_MAX_SIZE", IMAGE_MAX_SIZE)
	v.SetDefault("THUMB_SIZE", THUMB_SIZE)
	v.SetDefault("PROCESSING_INTERVAL", PROCESSING_INTERVAL)

	BIND_ADDRESS = v.GetString("BIND_ADDRESS")
	TLS_DOMAINS = v.GetString("TLS_DOMAINS")
	MYSQL_DSN = v.GetString("MYSQL_DSN")
	SQLITE_FILE = v.GetString("SQLITE_FILE")
	DEBUG_MODE = v.GetBool("DEBUG_MODE")
	SESSION_KEY = v.GetString("SESSION_KEY")
	SESSION_MAX_AGE = v.GetInt("SESSION_MAX_AGE")
	CORS_ORIGINS = splitList(v.GetString("CORS_ORIGINS"))
	UPLOAD_DIR = v.GetString("UPLOAD_DIR")
	MAX_FILE_SIZE = v.GetInt64("MAX_FILE_SIZE")
	S3_BUCKET = v.GetString("S3_BUCKET")
	S3_REGION = v.GetString("S3_REGION")
	S3_ENDPOINT = v.GetString("S3_ENDPOINT")
	S3_KEY = v.GetString("S3_KEY")
	S3_SECRET = v.GetString("S3_SECRET")
	GEMINI_API_KEY = v.GetString("GEMINI_API_KEY")
	GEMINI_MODEL = v.GetString("GEMINI_MODEL")
	GEMINI_ENDPOINT = strings.TrimRight(v.GetString("GEMINI_ENDPOINT"), "/")
	GEMINI_VERSION = v.GetString("GEMINI_VERSION")
	GEMINI_TIMEOUT = v.GetDuration("GEMINI_TIMEOUT")
	IMAGE_MAX_SIZE = v.GetInt("IMAGE_MAX_SIZE")
	THUMB_SIZE = v.GetInt("THUMB_SIZE")
	PROCESSING_INTERVAL = v.GetDuration("PROCESSING_INTERVAL")
}

func splitList(in string) (result []string) {
	for _, s := range strings.Split(in, ",") {
		if s = strings.TrimSpace(s); s != "" {
			result = append(result, s)
		}
	}
	return
}
