package core

import (
	"log"
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage engines
const (
	EnginePostgres = "postgres"
	EngineMongo    = "mongo"
	EngineMemory   = "memory"
)

type (
	Config struct {
		Debug            bool
		TestMode         bool
		Env              string
		Build            string
		AppName          string
		SecretKey        string
		RollbarToken     string
		SendgridApiKey   string
		FrontendBaseURL  string
		DefaultFromEmail mail.Address

		Server   ServerConfig
		Database DatabaseConfig
		Session  SessionConfig
		School   SchoolConfig
	}

	ServerConfig struct {
		Host               string
		Address            string
		DebugAddress       string
		ReadTimeout        time.Duration
		WriteTimeout       time.Duration
		ShutdownTimeout    time.Duration
		JWTExpirationDelta time.Duration
		DisableReqLogs     bool
	}

	DatabaseConfig struct {
		Engine          string
		Host            string
		Port            string
		Name            string
		User            string
		Password        string
		AdminUser       string
		AdminPassword   string
		DisableTLS      bool
		MongoURI        string
		UseTransactions bool
		Timeout         time.Duration
	}

	SessionConfig struct {
		Backend       string // memory | redis
		RedisAddress  string
		RedisPassword string
		RedisDB       int
		TTL           time.Duration
	}

	SchoolConfig struct {
		TimeZone               string
		Location               *time.Location
		DefaultLocation        string
		MonthlyFee             float64
		DefaultTeacherPassword string
	}
)

// Address returns the postgres host:port pair.
func (c DatabaseConfig) Address() string {
	return net.JoinHostPort(c.Host, c.Port)
}

func newViper() *viper.Viper {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("build", "develop")
	v.SetDefault("appName", "Vidyalaya")
	v.SetDefault("secretKey", "w8c!4q-k2v#pz0x$7n@3hd+6t=ry1mb&9ej%5fu^oa(gs)li")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("sendgridApiKey", "")
	v.SetDefault("frontendBaseURL", "http://localhost:3000")
	v.SetDefault("defaultFromEmail", "Vidyalaya <noreply@localhost>")

	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.address", ":8000")
	v.SetDefault("server.debugAddress", ":8001")
	v.SetDefault("server.readTimeout", 5*time.Second)
	v.SetDefault("server.writeTimeout", 10*time.Second)
	v.SetDefault("server.shutdownTimeout", 10*time.Second)
	v.SetDefault("server.jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("server.disableReqLogs", false)

	v.SetDefault("database.engine", EnginePostgres)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.name", "vidyalaya")
	v.SetDefault("database.user", "vidyalaya")
	v.SetDefault("database.password", "vidyalaya")
	v.SetDefault("database.adminUser", "postgres")
	v.SetDefault("database.adminPassword", "postgres")
	v.SetDefault("database.disableTLS", true)
	v.SetDefault("database.mongoURI", "mongodb://localhost:27017")
	v.SetDefault("database.useTransactions", true)
	v.SetDefault("database.timeout", 10*time.Second)

	v.SetDefault("session.backend", "memory")
	v.SetDefault("session.redisAddress", "localhost:6379")
	v.SetDefault("session.redisPassword", "")
	v.SetDefault("session.redisDB", 0)
	v.SetDefault("session.ttl", 7*24*time.Hour)

	v.SetDefault("school.timeZone", "UTC")
	v.SetDefault("school.defaultLocation", "Main Building")
	v.SetDefault("school.monthlyFee", 0.0)
	v.SetDefault("school.defaultTeacherPassword", "password123")

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetDefault("env", env)
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()
	return v
}

// NewConfig loads the application configuration from defaults, the optional .env file and the environment.
func NewConfig() *Config {
	v := newViper()

	conf := &Config{
		Debug:           v.GetBool("debug"),
		TestMode:        v.GetBool("testMode"),
		Env:             v.GetString("env"),
		Build:           v.GetString("build"),
		AppName:         v.GetString("appName"),
		SecretKey:       v.GetString("secretKey"),
		RollbarToken:    v.GetString("rollbarToken"),
		SendgridApiKey:  v.GetString("sendgridApiKey"),
		FrontendBaseURL: v.GetString("frontendBaseURL"),
		Server: ServerConfig{
			Host:               v.GetString("server.host"),
			Address:            v.GetString("server.address"),
			DebugAddress:       v.GetString("server.debugAddress"),
			ReadTimeout:        v.GetDuration("server.readTimeout"),
			WriteTimeout:       v.GetDuration("server.writeTimeout"),
			ShutdownTimeout:    v.GetDuration("server.shutdownTimeout"),
			JWTExpirationDelta: v.GetDuration("server.jwtExpirationDelta"),
			DisableReqLogs:     v.GetBool("server.disableReqLogs"),
		},
		Database: DatabaseConfig{
			Engine:          v.GetString("database.engine"),
			Host:            v.GetString("database.host"),
			Port:            v.GetString("database.port"),
			Name:            v.GetString("database.name"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			AdminUser:       v.GetString("database.adminUser"),
			AdminPassword:   v.GetString("database.adminPassword"),
			DisableTLS:      v.GetBool("database.disableTLS"),
			MongoURI:        v.GetString("database.mongoURI"),
			UseTransactions: v.GetBool("database.useTransactions"),
			Timeout:         v.GetDuration("database.timeout"),
		},
		Session: SessionConfig{
			Backend:       v.GetString("session.backend"),
			RedisAddress:  v.GetString("session.redisAddress"),
			RedisPassword: v.GetString("session.redisPassword"),
			RedisDB:       v.GetInt("session.redisDB"),
			TTL:           v.GetDuration("session.ttl"),
		},
		School: SchoolConfig{
			TimeZone:               v.GetString("school.timeZone"),
			DefaultLocation:        v.GetString("school.defaultLocation"),
			MonthlyFee:             v.GetFloat64("school.monthlyFee"),
			DefaultTeacherPassword: v.GetString("school.defaultTeacherPassword"),
		},
	}

	if addr, err := mail.ParseAddress(v.GetString("defaultFromEmail")); err == nil {
		conf.DefaultFromEmail = *addr
	} else {
		log.Fatalf("config.defaultFromEmail: %v", err)
	}

	loc, err := time.LoadLocation(conf.School.TimeZone)
	if err != nil {
		log.Fatalf("config.school.timeZone(%s): %v", conf.School.TimeZone, err)
	}
	conf.School.Location = loc
	return conf
}
