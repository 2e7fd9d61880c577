package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	APIPort        string
	RequestTimeout time.Duration
	JWTKey         []byte
	JWTExp         time.Duration

	OperatorUsername     string
	OperatorPasswordHash string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string
	DBConnStr  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JobQueueName      string
	JobLockKey        string
	JobLockTTLSeconds int

	DataDir        string
	ScratchDir     string
	CatalogFile    string
	StarfitVersion string

	FitServiceURL            string
	FitServiceTimeoutSeconds int

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	MailHostname string
	MailBcc      string

	EmailCheckDeliverability bool

	LogLevel  string
	LogFormat string
}

var AppConfig *Config

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found, relying on environment variables")
	}

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}

	AppConfig = &Config{
		APIPort:        getEnv("API_PORT", "8080"),
		RequestTimeout: time.Duration(getEnvAsInt("REQUEST_TIMEOUT_SECONDS", 150)) * time.Second,
		JWTKey:         []byte(getEnv("JWT_SECRET", "defaultsecret")),
		JWTExp:         time.Duration(getEnvAsInt("JWT_EXPIRATION_HOURS", 72)) * time.Hour,

		OperatorUsername:     getEnv("OPERATOR_USERNAME", "operator"),
		OperatorPasswordHash: getEnv("OPERATOR_PASSWORD_HASH", ""),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "starfit"),
		DBPassword: getEnv("DB_PASSWORD", "password"),
		DBName:     getEnv("DB_NAME", "starfit"),
		DBSslMode:  getEnv("DB_SSLMODE", "disable"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		JobQueueName:      getEnv("JOB_QUEUE_NAME", "starfit_jobs_queue"),
		JobLockKey:        getEnv("JOB_LOCK_KEY", "starfit_job_lock"),
		JobLockTTLSeconds: getEnvAsInt("JOB_LOCK_TTL_SECONDS", 1800),

		DataDir:        getEnv("STARFIT_DATA", "/usr/share/starfit"),
		ScratchDir:     getEnv("SCRATCH_DIR", os.TempDir()),
		CatalogFile:    getEnv("CATALOG_FILE", ""),
		StarfitVersion: getEnv("STARFIT_VERSION", "unknown"),

		FitServiceURL:            getEnv("FIT_SERVICE_URL", "http://localhost:9090"),
		FitServiceTimeoutSeconds: getEnvAsInt("FIT_SERVICE_TIMEOUT_SECONDS", 1200),

		SMTPHost:     getEnv("SMTP_HOST", hostname),
		SMTPPort:     getEnvAsInt("SMTP_PORT", 25),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		MailHostname: getEnv("MAIL_HOSTNAME", hostname),
		MailBcc:      getEnv("MAIL_BCC", "starfit.results@gmail.com"),

		EmailCheckDeliverability: getEnvAsBool("EMAIL_CHECK_DELIVERABILITY", true),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}

	if AppConfig.CatalogFile == "" {
		AppConfig.CatalogFile = AppConfig.DataDir + "/databases.yaml"
	}

	AppConfig.DBConnStr = "host=" + AppConfig.DBHost +
		" port=" + AppConfig.DBPort +
		" user=" + AppConfig.DBUser +
		" password=" + AppConfig.DBPassword +
		" dbname=" + AppConfig.DBName +
		" sslmode=" + AppConfig.DBSslMode
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	valueStr := strings.TrimSpace(getEnv(key, ""))
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return fallback
}
