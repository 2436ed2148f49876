package state

import (
	"context"
	"os"
	"time"

	"talon/auth"
	"talon/config"
	"talon/database"
	"talon/feed"
	"talon/tweets"
	"talon/types"
	"talon/users"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/infinitybotlist/eureka/genconfig"
	"github.com/infinitybotlist/eureka/snippets"
	"github.com/redis/go-redis/v9"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var (
	Pool      *gorm.DB
	Redis     *redis.Client
	Logger    *zap.Logger
	Context   = context.Background()
	Validator = validator.New()
	Config    *config.Config

	// Composition root: the services below receive their repositories and
	// loggers here and nowhere else.
	Store    database.Store
	Tweets   *tweets.Store
	Users    *users.Directory
	Feed     *feed.Assembler
	Sessions *auth.RedisSessions
)

func Setup() {
	Validator.RegisterValidation("notblank", validators.NotBlank)
	Validator.RegisterValidation("nospaces", snippets.ValidatorNoSpaces)
	Validator.RegisterValidation("https", snippets.ValidatorIsHttps)
	Validator.RegisterValidation("httporhttps", snippets.ValidatorIsHttpOrHttps)

	genconfig.GenConfig(config.Config{})

	cfg, err := os.ReadFile("config.yaml")
	if err != nil {
		panic("Failed to read config file: " + err.Error())
	}

	err = yaml.Unmarshal(cfg, &Config)
	if err != nil {
		panic("Failed to parse config file: " + err.Error())
	}

	err = Validator.Struct(Config)
	if err != nil {
		panic("config validation error: " + err.Error())
	}

	sessionTTL, err := time.ParseDuration(Config.Auth.SessionTTL)
	if err != nil {
		panic("Failed to parse auth.session_ttl: " + err.Error())
	}

	// Initialize Gorm connection
	Pool, err = gorm.Open(postgres.Open(Config.Database.DatabaseURL), &gorm.Config{})
	if err != nil {
		panic("Failed to connect to database: " + err.Error())
	}

	Pool.AutoMigrate(&types.User{})
	Pool.AutoMigrate(&types.Tweet{})

	// Initialize Redis connection
	rOptions, err := redis.ParseURL(Config.Database.RedisURL)
	if err != nil {
		panic("Failed to parse Redis URL: " + err.Error())
	}

	Redis = redis.NewClient(rOptions)
	if err := Redis.Ping(Context).Err(); err != nil {
		panic("Failed to connect to Redis: " + err.Error())
	}

	// Initialize Logger
	Logger = snippets.CreateZap()

	// Wire services
	Store = database.NewGorm(Pool)
	Tweets = tweets.New(Store, Logger.Named("tweets"))
	Users = users.New(Store, Logger.Named("users"))
	Feed = feed.New(Store)
	Sessions = auth.NewRedisSessions(Redis, sessionTTL)
}
