package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel   string `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort   string `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	SocketPort string `yaml:"socket-port" env:"SOCKET_PORT" env-default:"9091"`
	Redis      Redis  `yaml:"redis"`
	Game       Game   `yaml:"game"`
}

type Redis struct {
	Host string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
}

// Game holds the match defaults: board dimension, win length, and the
// per-move countdown. A zero move-time-limit disables the clocks.
type Game struct {
	BoardSize            int `yaml:"board-size" env:"GAME_BOARD_SIZE" env-default:"15"`
	WinLength            int `yaml:"win-length" env:"GAME_WIN_LENGTH" env-default:"5"`
	MoveTimeLimitSeconds int `yaml:"move-time-limit-seconds" env:"GAME_MOVE_TIME_LIMIT_SECONDS" env-default:"0"`
}

// MustLoad - load all configurations from the given yaml file.
func MustLoad(path string) *Config {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}

func (that *Game) MoveTimeLimit() time.Duration {
	return time.Duration(that.MoveTimeLimitSeconds) * time.Second
}
