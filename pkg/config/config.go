package config

import (
	"time"

	"github.com/shopspring/decimal"
)

type DB struct {
	Url         string `envconfig:"URL"`
	AutoMigrate bool   `envconfig:"AUTO_MIGRATE" default:"true"`
	MaxConns    int    `envconfig:"MAX_CONNS" default:"25"`
}

type Jwt struct {
	Secret string `envconfig:"SECRET"`
	// Role claim a token must carry to approve or reject transfers. Empty accepts any valid token.
	ReviewerRole string `envconfig:"REVIEWER_ROLE" default:""`
}

type Auth struct {
	Jwt *Jwt `envconfig:"JWT"`
}

type Redis struct {
	URL    string `envconfig:"URL"`
	Stream string `envconfig:"STREAM" default:"transfers.audit"`
	Group  string `envconfig:"GROUP" default:"transfers-audit"`
}

type Kafka struct {
	Brokers     string `envconfig:"BROKERS"`
	TopicPrefix string `envconfig:"TOPIC_PREFIX" default:"transfers.audit"`
	GroupID     string `envconfig:"GROUP_ID" default:"transfers-audit"`
}

type Mongo struct {
	URL        string `envconfig:"URL"`
	Database   string `envconfig:"DATABASE" default:"transfers"`
	Collection string `envconfig:"COLLECTION" default:"audit_logs"`
}

type RateLimit struct {
	MaxRequests int           `envconfig:"MAX_REQUESTS" default:"100"`
	Window      time.Duration `envconfig:"WINDOW" default:"1m"`
}

type Transfer struct {
	AutoApproveThreshold decimal.Decimal `envconfig:"AUTO_APPROVE_THRESHOLD" default:"50000"`
}

type Log struct {
	Level      int    `envconfig:"LEVEL" default:"0"`
	Format     string `envconfig:"FORMAT" default:"text"`
	TimeFormat string `envconfig:"TIME_FORMAT" default:"2006-01-02 15:04:05"`
	Prefix     string `envconfig:"PREFIX" default:"[transfers]"`
}

type Server struct {
	Scheme          string        `envconfig:"SCHEME" default:"http"`
	Host            string        `envconfig:"HOST" default:"localhost"`
	Port            int           `envconfig:"PORT" default:"3000"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

type App struct {
	Env       string     `envconfig:"APP_ENV" default:"development"`
	Server    *Server    `envconfig:"SERVER"`
	Log       *Log       `envconfig:"LOG"`
	DB        *DB        `envconfig:"DATABASE"`
	Auth      *Auth      `envconfig:"AUTH"`
	Redis     *Redis     `envconfig:"REDIS"`
	Kafka     *Kafka     `envconfig:"KAFKA"`
	Mongo     *Mongo     `envconfig:"MONGO"`
	RateLimit *RateLimit `envconfig:"RATE_LIMIT"`
	Transfer  *Transfer  `envconfig:"TRANSFER"`
}
