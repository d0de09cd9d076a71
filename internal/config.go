package internal

import (
	"chat-sim/errors"
	"chat-sim/notify"
	"chat-sim/runtime"
	"chat-sim/store"
	"fmt"
	"strings"
	"time"

	"github.com/Netflix/go-env"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/samber/lo"
)

type Config struct {
	LogLevel         string        `env:"LOG_LEVEL,default=INFO"`
	DeliveryDelay    time.Duration `env:"DELIVERY_DELAY,default=1s" validate:"gt=0"`
	TypingDelay      time.Duration `env:"TYPING_DELAY,default=500ms" validate:"gt=0"`
	TypingDuration   time.Duration `env:"TYPING_DURATION,default=3s" validate:"gt=0"`
	NoticeTTL        time.Duration `env:"NOTICE_TTL,default=5s" validate:"gt=0"`
	SinkTimeout      time.Duration `env:"SINK_TIMEOUT,default=1s" validate:"gt=0"`
	BufferSize       int           `env:"BUFFER_SIZE,default=100" validate:"gt=0"`
	RestartInterval  time.Duration `env:"RESTART_INTERVAL,default=200ms" validate:"gt=0"`
	SeedFile         string        `env:"SEED_FILE"`
	EnableModeration bool          `env:"ENABLE_MODERATION,default=false"`
	// Comma separated, e.g. "en,fr". Empty loads every embedded list.
	ModerationLanguages string `env:"MODERATION_LANGUAGES"`
	CharReplacement     string `env:"CHARACTER_REPLACEMENT,default=*"`
	TimeZone            string `env:"TIME_ZONE,default=Local"`
}

var validate = validator.New()

// LoadConfig reads the environment, after a .env file when one is present.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return Config{}, fmt.Errorf("%w: %v", errors.ErrInvalidConfig, err)
	}
	if err := validate.Struct(config); err != nil {
		return Config{}, fmt.Errorf("%w: %v", errors.ErrInvalidConfig, err)
	}
	if _, err := CharacterRune(config.CharReplacement); err != nil {
		return Config{}, fmt.Errorf("%w: %v", errors.ErrInvalidConfig, err)
	}
	if _, err := time.LoadLocation(config.TimeZone); err != nil {
		return Config{}, fmt.Errorf("%w: %v", errors.ErrInvalidConfig, err)
	}
	return config, nil
}

// SessionOptions maps the configuration onto the session options.
// The config is expected to come from LoadConfig.
func (c Config) SessionOptions() runtime.Options {
	char, _ := CharacterRune(c.CharReplacement)
	return runtime.Options{
		Store: store.Config{
			DeliveryDelay:  c.DeliveryDelay,
			TypingDelay:    c.TypingDelay,
			TypingDuration: c.TypingDuration,
		},
		NoticeTTL:       c.NoticeTTL,
		BufferSize:      c.BufferSize,
		SinkTimeout:     c.SinkTimeout,
		RestartInterval: c.RestartInterval,
		Moderation:      c.EnableModeration,
		Languages:       c.Languages(),
		CharReplacement: char,
	}
}

// Languages splits MODERATION_LANGUAGES, ignoring blanks.
func (c Config) Languages() []string {
	return lo.Compact(lo.Map(strings.Split(c.ModerationLanguages, ","), func(l string, _ int) string {
		return strings.ToLower(strings.TrimSpace(l))
	}))
}

func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.Local
	}
	return loc
}

func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}
