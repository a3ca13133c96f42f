package config

import (
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Port string
	}
	Redis struct {
		Addr     string
		Password string
		DB       int
	}
	JWT struct {
		Secret string
		TTL    int // seconds
	}
	Log struct {
		Level string
	}
	Match struct {
		Pool      string
		PlayerTTL int `mapstructure:"player_ttl"` // seconds
	}
	Game struct {
		Seed       int64 // 0: seed from the clock
		FollowSuit bool  `mapstructure:"follow_suit"`
	}
}

var C Config

// Load reads path (YAML) on top of the defaults; UDR_* environment
// variables override both, e.g. UDR_REDIS_ADDR.
func Load(path string) error {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("udr")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return err
		}
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return err
	}
	C = c
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", ":8080")
	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.ttl", 86400)
	v.SetDefault("log.level", "info")
	v.SetDefault("match.pool", "default")
	v.SetDefault("match.player_ttl", 300)
	v.SetDefault("game.seed", 0)
	v.SetDefault("game.follow_suit", true)
}
