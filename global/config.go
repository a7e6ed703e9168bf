package global

import (
	"os"
	"strconv"
	"time"

	"Alvin/tools/ids"
)

// AppConfig holds everything the gateway reads from the environment. All
// fields have working local-dev defaults so `go run .` comes up without any
// env set (Redis/Mongo stay optional, see ConfigRedis/ConfigMongo).
type AppConfig struct {
	ListenAddr string
	NodeID     int64

	JWTSecret []byte

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	MongoURI      string
	MongoDatabase string

	AuthTimeout time.Duration // bound on Authenticate / HasProjectAccess calls
	UnauthTTL   time.Duration // how long a socket may stay unauthenticated
	TypingTTL   time.Duration // typing entries expire this long after upsert

	FanoutWorkers int
	FanoutQueue   int
	SendQueueSize int // per-connection outbound buffer
}

func LoadConfig() *AppConfig {
	return &AppConfig{
		ListenAddr: envStr("ALVIN_LISTEN_ADDR", ":8080"),
		NodeID:     envInt64("ALVIN_NODE_ID", 1),

		JWTSecret: []byte(envStr("ALVIN_JWT_SECRET", "dev-only-secret-change-me")),

		RedisAddr:     os.Getenv("ALVIN_REDIS_ADDR"), // empty disables the mirror
		RedisPassword: os.Getenv("ALVIN_REDIS_PASSWORD"),
		RedisDB:       int(envInt64("ALVIN_REDIS_DB", 0)),

		MongoURI:      envStr("ALVIN_MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase: envStr("ALVIN_MONGO_DB", "alvin"),

		AuthTimeout: envDur("ALVIN_AUTH_TIMEOUT", 3*time.Second),
		UnauthTTL:   envDur("ALVIN_UNAUTH_TTL", 30*time.Second),
		TypingTTL:   envDur("ALVIN_TYPING_TTL", 30*time.Second),

		FanoutWorkers: int(envInt64("ALVIN_FANOUT_WORKERS", 4)),
		FanoutQueue:   int(envInt64("ALVIN_FANOUT_QUEUE", 1024)),
		SendQueueSize: int(envInt64("ALVIN_SEND_QUEUE", 256)),
	}
}

func ConfigIds(cfg *AppConfig) {
	ids.SetNodeID(cfg.NodeID)
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt64(key string, def int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return def
	}
	return n
}

func envDur(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
