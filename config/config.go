package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// AppConfig holds environment driven configuration values.
// Sensitive data should never have defaults inside code and must be provided via env files or the environment.
type AppConfig struct {
	AppPort            string
	RateLimitPerMinute int
	AllowedOrigins     []string
	// Bearer token for the admin dashboard endpoints
	AdminToken string
	// Gin framework configuration
	GinMode string
	GinPath string
	// Attendance persistence backend: "sheet" or "database"
	StorageBackend string
	// Timezone for lateness and weekly aggregation (IANA name)
	Timezone string
	// Attendance rules
	WorkdayStart      string   // HH:MM local time, check-ins after this are late
	LateExemptActions []string // action labels never marked late
	CheckinActions    []string // action labels counted as check-ins in summaries
	CooldownSeconds   int
	// Weekly summary scheduler window
	SchedulerWeekday int // 0=Sunday ... 6=Saturday
	SchedulerHour    int // summary runs at or after this hour
	// Messaging platform (NAVER Works style bot API)
	WorksAPIURL         string
	WorksAuthURL        string
	WorksBotID          string
	WorksBotSecret      string
	WorksClientID       string
	WorksClientSecret   string
	WorksServiceAccount string
	WorksPrivateKey     string
	WorksScope          string
	// Google Sheets service account
	SheetURL            string
	SheetWorksheet      string // sheet name, or numeric index resolved via metadata
	SheetSummaryName    string
	GoogleClientEmail   string
	GooglePrivateKey    string
	GooglePrivateKeyID  string
	GoogleTokenURI      string
	// Blob storage for uploaded images: "s3" or "local"
	BlobDriver      string
	S3Endpoint      string
	S3AccessKey     string
	S3SecretKey     string
	S3Bucket        string
	S3UseSSL        bool
	S3PublicBaseURL string
	LocalUploadDir  string
	LocalUploadBase string
	// Relational store (only used when StorageBackend == "database")
	DatabaseURI string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	// Redis for caching sheet metadata and summaries
	RedisHost     string
	RedisPort     int
	RedisDB       int
	RedisPassword string
	// Logging configuration
	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool
}

var cfg AppConfig
var loaded bool

// Load loads the application configuration from environment variables. It should be called once during boot.
func Load() AppConfig {
	if loaded {
		return cfg
	}

	// Sentinels so Sunday (0) and midnight (0) survive the defaulting pass.
	cfg.SchedulerWeekday = -1
	cfg.SchedulerHour = -1

	// Precedence: config/config.json -> defaults -> environment variable overrides
	_ = loadJSONConfig(filepath.Join("config", "config.json"), &cfg)

	applyDefaults(&cfg)

	applyEnvOverrides(&cfg)

	// Private keys often arrive with escaped newlines when sourced from env files.
	cfg.WorksPrivateKey = strings.ReplaceAll(cfg.WorksPrivateKey, `\n`, "\n")
	cfg.GooglePrivateKey = strings.ReplaceAll(cfg.GooglePrivateKey, `\n`, "\n")

	loaded = true
	return cfg
}

// Get returns the cached configuration, loading it if necessary.
func Get() AppConfig {
	if !loaded {
		return Load()
	}
	return cfg
}

// Reset clears the cached configuration; intended for tests only.
func Reset() {
	cfg = AppConfig{}
	loaded = false
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// loadJSONConfig reads JSON file into cfg if present. Returns error only for invalid JSON.
func loadJSONConfig(path string, out *AppConfig) error {
	f, err := os.Open(path)
	if err != nil {
		return nil // silently ignore missing file
	}
	defer f.Close()

	var raw map[string]any
	dec := json.NewDecoder(f)
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	getString := func(m map[string]any, key string) string {
		if v, ok := m[key]; ok {
			if s, ok := v.(string); ok {
				return s
			}
		}
		return ""
	}
	getIntOpt := func(m map[string]any, key string) (int, bool) {
		if v, ok := m[key]; ok {
			switch t := v.(type) {
			case float64:
				return int(t), true
			case int:
				return t, true
			case json.Number:
				i, _ := t.Int64()
				return int(i), true
			}
		}
		return 0, false
	}
	getInt := func(m map[string]any, key string) int {
		v, _ := getIntOpt(m, key)
		return v
	}
	getBool := func(m map[string]any, key string) bool {
		if v, ok := m[key]; ok {
			if b, ok := v.(bool); ok {
				return b
			}
		}
		return false
	}
	getStringSlice := func(m map[string]any, key string) []string {
		if v, ok := m[key]; ok {
			if arr, ok := v.([]any); ok {
				res := make([]string, 0, len(arr))
				for _, it := range arr {
					if s, ok := it.(string); ok {
						res = append(res, s)
					}
				}
				return res
			}
		}
		return nil
	}

	if app, ok := raw["app"].(map[string]any); ok {
		out.AppPort = getString(app, "AppPort")
		out.AdminToken = getString(app, "AdminToken")
		out.StorageBackend = getString(app, "StorageBackend")
		out.Timezone = getString(app, "Timezone")
		if v := getInt(app, "RateLimitPerMinute"); v != 0 {
			out.RateLimitPerMinute = v
		}
		if list := getStringSlice(app, "AllowedOrigins"); len(list) > 0 {
			out.AllowedOrigins = list
		}
	}

	if at, ok := raw["attendance"].(map[string]any); ok {
		out.WorkdayStart = getString(at, "WorkdayStart")
		if list := getStringSlice(at, "LateExemptActions"); len(list) > 0 {
			out.LateExemptActions = list
		}
		if list := getStringSlice(at, "CheckinActions"); len(list) > 0 {
			out.CheckinActions = list
		}
		if v := getInt(at, "CooldownSeconds"); v != 0 {
			out.CooldownSeconds = v
		}
		if v, ok := getIntOpt(at, "SchedulerWeekday"); ok {
			out.SchedulerWeekday = v
		}
		if v, ok := getIntOpt(at, "SchedulerHour"); ok {
			out.SchedulerHour = v
		}
	}

	if wk, ok := raw["works"].(map[string]any); ok {
		out.WorksAPIURL = getString(wk, "APIURL")
		out.WorksAuthURL = getString(wk, "AuthURL")
		out.WorksBotID = getString(wk, "BotID")
		out.WorksBotSecret = getString(wk, "BotSecret")
		out.WorksClientID = getString(wk, "ClientID")
		out.WorksClientSecret = getString(wk, "ClientSecret")
		out.WorksServiceAccount = getString(wk, "ServiceAccount")
		out.WorksPrivateKey = getString(wk, "PrivateKey")
		out.WorksScope = getString(wk, "Scope")
	}

	if gs, ok := raw["sheets"].(map[string]any); ok {
		out.SheetURL = getString(gs, "SheetURL")
		out.SheetWorksheet = getString(gs, "Worksheet")
		out.SheetSummaryName = getString(gs, "SummarySheet")
		out.GoogleClientEmail = getString(gs, "ClientEmail")
		out.GooglePrivateKey = getString(gs, "PrivateKey")
		out.GooglePrivateKeyID = getString(gs, "PrivateKeyID")
		out.GoogleTokenURI = getString(gs, "TokenURI")
	}

	if bl, ok := raw["blob"].(map[string]any); ok {
		out.BlobDriver = getString(bl, "Driver")
		out.S3Endpoint = getString(bl, "S3Endpoint")
		out.S3AccessKey = getString(bl, "S3AccessKey")
		out.S3SecretKey = getString(bl, "S3SecretKey")
		out.S3Bucket = getString(bl, "S3Bucket")
		out.S3UseSSL = getBool(bl, "S3UseSSL")
		out.S3PublicBaseURL = getString(bl, "S3PublicBaseURL")
		out.LocalUploadDir = getString(bl, "LocalUploadDir")
		out.LocalUploadBase = getString(bl, "LocalUploadBase")
	}

	if dbs, ok := raw["database"].(map[string]any); ok {
		out.DatabaseURI = getString(dbs, "DatabaseURI")
		out.DBHost = getString(dbs, "DBHost")
		out.DBPort = getString(dbs, "DBPort")
		out.DBUser = getString(dbs, "DBUser")
		out.DBPassword = getString(dbs, "DBPassword")
		out.DBName = getString(dbs, "DBName")
	}

	if rds, ok := raw["redis"].(map[string]any); ok {
		out.RedisHost = getString(rds, "RedisHost")
		if v := getInt(rds, "RedisPort"); v != 0 {
			out.RedisPort = v
		}
		if v := getInt(rds, "RedisDB"); v != 0 {
			out.RedisDB = v
		}
		out.RedisPassword = getString(rds, "RedisPassword")
	}

	if lg, ok := raw["log"].(map[string]any); ok {
		if v := getString(lg, "Level"); v != "" {
			out.LogLevel = v
		}
		if v := getString(lg, "Path"); v != "" {
			out.LogPath = v
		}
		if v := getString(lg, "GinMode"); v != "" {
			out.GinMode = v
		}
		if v := getString(lg, "GinPath"); v != "" {
			out.GinPath = v
		}
		if v := getInt(lg, "MaxSizeMB"); v != 0 {
			out.LogMaxSizeMB = v
		}
		if v := getInt(lg, "MaxBackups"); v != 0 {
			out.LogMaxBackups = v
		}
		if v := getInt(lg, "MaxAgeDays"); v != 0 {
			out.LogMaxAgeDays = v
		}
		out.LogCompress = getBool(lg, "Compress")
	}

	return nil
}

// applyDefaults sets sane defaults for zero-value fields.
func applyDefaults(c *AppConfig) {
	if c.AppPort == "" {
		c.AppPort = "8080"
	}
	if c.GinMode == "" {
		c.GinMode = "release"
	}
	if c.GinPath == "" {
		c.GinPath = "logs/go_gin.log"
	}
	if c.RateLimitPerMinute == 0 {
		c.RateLimitPerMinute = 120
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
	}
	if c.StorageBackend == "" {
		c.StorageBackend = "sheet"
	}
	if c.Timezone == "" {
		c.Timezone = "Asia/Seoul"
	}
	if c.WorkdayStart == "" {
		c.WorkdayStart = "09:00"
	}
	if len(c.LateExemptActions) == 0 {
		c.LateExemptActions = []string{"연차", "반차", "외근", "출장"}
	}
	if len(c.CheckinActions) == 0 {
		c.CheckinActions = []string{"출근", "위치출근"}
	}
	if c.CooldownSeconds == 0 {
		c.CooldownSeconds = 30
	}
	if c.SchedulerWeekday < 0 || c.SchedulerWeekday > 6 {
		c.SchedulerWeekday = 5 // Friday
	}
	if c.SchedulerHour < 0 || c.SchedulerHour > 23 {
		c.SchedulerHour = 14
	}
	if c.WorksAPIURL == "" {
		c.WorksAPIURL = "https://www.worksapis.com/v1.0"
	}
	if c.WorksAuthURL == "" {
		c.WorksAuthURL = "https://auth.worksmobile.com/oauth2/v2.0/token"
	}
	if c.WorksScope == "" {
		c.WorksScope = "bot user.read"
	}
	if c.SheetWorksheet == "" {
		c.SheetWorksheet = "0"
	}
	if c.SheetSummaryName == "" {
		c.SheetSummaryName = "주간결산"
	}
	if c.GoogleTokenURI == "" {
		c.GoogleTokenURI = "https://oauth2.googleapis.com/token"
	}
	if c.BlobDriver == "" {
		c.BlobDriver = "local"
	}
	if c.LocalUploadDir == "" {
		c.LocalUploadDir = "static/uploads"
	}
	if c.LocalUploadBase == "" {
		c.LocalUploadBase = "/static/uploads"
	}
	if c.DBHost == "" {
		c.DBHost = "127.0.0.1"
	}
	if c.DBPort == "" {
		c.DBPort = "3306"
	}
	if c.DBUser == "" {
		c.DBUser = "attendbot"
	}
	if c.DBName == "" {
		c.DBName = "attendbot"
	}
	if c.RedisHost == "" {
		c.RedisHost = "127.0.0.1"
	}
	if c.RedisPort == 0 {
		c.RedisPort = 6379
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogPath == "" {
		c.LogPath = "logs/attendbot.log"
	}
}

// applyEnvOverrides lets the environment win over file values.
func applyEnvOverrides(c *AppConfig) {
	c.AppPort = getEnv("APP_PORT", c.AppPort)
	c.AdminToken = getEnv("ADMIN_TOKEN", c.AdminToken)
	c.StorageBackend = getEnv("STORAGE_BACKEND", c.StorageBackend)
	c.Timezone = getEnv("ATTEND_TIMEZONE", c.Timezone)
	c.WorkdayStart = getEnv("WORKDAY_START", c.WorkdayStart)
	if v := os.Getenv("COOLDOWN_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.CooldownSeconds = n
		}
	}
	if v := os.Getenv("RATE_LIMIT_PER_MINUTE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.RateLimitPerMinute = n
		}
	}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		parts := strings.Split(v, ",")
		c.AllowedOrigins = c.AllowedOrigins[:0]
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				c.AllowedOrigins = append(c.AllowedOrigins, p)
			}
		}
	}
	if v := os.Getenv("LATE_EXEMPT_ACTIONS"); v != "" {
		c.LateExemptActions = splitTrim(v)
	}
	if v := os.Getenv("CHECKIN_ACTIONS"); v != "" {
		c.CheckinActions = splitTrim(v)
	}
	if v := os.Getenv("SCHEDULER_WEEKDAY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 && n <= 6 {
			c.SchedulerWeekday = n
		}
	}
	if v := os.Getenv("SCHEDULER_HOUR"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 && n <= 23 {
			c.SchedulerHour = n
		}
	}

	c.WorksAPIURL = getEnv("NAVER_WORKS_API_URL", c.WorksAPIURL)
	c.WorksAuthURL = getEnv("NAVER_WORKS_AUTH_URL", c.WorksAuthURL)
	c.WorksBotID = getEnv("NAVER_WORKS_BOT_ID", c.WorksBotID)
	c.WorksBotSecret = getEnv("NAVER_WORKS_BOT_SECRET", c.WorksBotSecret)
	c.WorksClientID = getEnv("NAVER_WORKS_CLIENT_ID", c.WorksClientID)
	c.WorksClientSecret = getEnv("NAVER_WORKS_CLIENT_SECRET", c.WorksClientSecret)
	c.WorksServiceAccount = getEnv("NAVER_WORKS_SERVICE_ACCOUNT", c.WorksServiceAccount)
	c.WorksPrivateKey = getEnv("NAVER_WORKS_PRIVATE_KEY", c.WorksPrivateKey)
	c.WorksScope = getEnv("NAVER_WORKS_SCOPE", c.WorksScope)

	c.SheetURL = getEnv("GOOGLE_SHEET_URL", c.SheetURL)
	c.SheetWorksheet = getEnv("GOOGLE_SHEET_WORKSHEET", c.SheetWorksheet)
	c.SheetSummaryName = getEnv("GOOGLE_SHEET_SUMMARY", c.SheetSummaryName)
	c.GoogleClientEmail = getEnv("GOOGLE_SERVICE_ACCOUNT_CLIENT_EMAIL", c.GoogleClientEmail)
	c.GooglePrivateKey = getEnv("GOOGLE_SERVICE_ACCOUNT_PRIVATE_KEY", c.GooglePrivateKey)
	c.GooglePrivateKeyID = getEnv("GOOGLE_SERVICE_ACCOUNT_PRIVATE_KEY_ID", c.GooglePrivateKeyID)
	c.GoogleTokenURI = getEnv("GOOGLE_SERVICE_ACCOUNT_TOKEN_URI", c.GoogleTokenURI)

	c.BlobDriver = getEnv("BLOB_DRIVER", c.BlobDriver)
	c.S3Endpoint = getEnv("S3_ENDPOINT", c.S3Endpoint)
	c.S3AccessKey = getEnv("S3_ACCESS_KEY", c.S3AccessKey)
	c.S3SecretKey = getEnv("S3_SECRET_KEY", c.S3SecretKey)
	c.S3Bucket = getEnv("S3_BUCKET", c.S3Bucket)
	if v := os.Getenv("S3_USE_SSL"); v != "" {
		c.S3UseSSL = v == "1" || strings.EqualFold(v, "true")
	}
	c.S3PublicBaseURL = getEnv("S3_PUBLIC_BASE_URL", c.S3PublicBaseURL)
	c.LocalUploadDir = getEnv("LOCAL_UPLOAD_DIR", c.LocalUploadDir)
	c.LocalUploadBase = getEnv("LOCAL_UPLOAD_BASE", c.LocalUploadBase)

	c.DatabaseURI = getEnv("DATABASE_URI", c.DatabaseURI)
	c.DBHost = getEnv("DB_HOST", c.DBHost)
	c.DBPort = getEnv("DB_PORT", c.DBPort)
	c.DBUser = getEnv("DB_USER", c.DBUser)
	c.DBPassword = getEnv("DB_PASSWORD", c.DBPassword)
	c.DBName = getEnv("DB_NAME", c.DBName)

	c.RedisHost = getEnv("REDIS_HOST", c.RedisHost)
	if v := os.Getenv("REDIS_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RedisPort = n
		}
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RedisDB = n
		}
	}
	c.RedisPassword = getEnv("REDIS_PASSWORD", c.RedisPassword)

	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogPath = getEnv("LOG_PATH", c.LogPath)
}

func splitTrim(v string) []string {
	parts := strings.Split(v, ",")
	res := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			res = append(res, p)
		}
	}
	return res
}
