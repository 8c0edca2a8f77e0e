// internal/config/config.go
package config

import (
	"log"

	"github.com/spf13/viper"
)

type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
}

type AppConfig struct {
	// MatchExtraSession が true のとき、通常セッションと加餐セッションの
	// 新規プレイリストは別キューとして扱われ、再利用検索でフラグまで一致させます。
	// false のときは当日の未完了new型プレイリストを無条件に再利用します。
	MatchExtraSession bool `mapstructure:"match_extra_session"`
	ReviewLimit       int  `mapstructure:"review_limit"`
}

type MediaConfig struct {
	Dir string `mapstructure:"dir"` // ブロブストアのルートディレクトリ
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type JWTConfig struct {
	SecretKey string `mapstructure:"secret_key"`
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Server   ServerConfig   `mapstructure:"server"`
	App      AppConfig      `mapstructure:"app"`
	Media    MediaConfig    `mapstructure:"media"`
	Log      LogConfig      `mapstructure:"log"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	CORS     CORSConfig     `mapstructure:"cors"`
}

var Cfg Config

func LoadConfig(path string) error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(path)
	viper.AddConfigPath(".")

	// 環境変数での上書き (例: APP_DATABASE_URL, APP_JWT_SECRET_KEY)
	viper.SetEnvPrefix("APP")
	viper.AutomaticEnv()
	viper.BindEnv("database.url", "APP_DATABASE_URL")
	viper.BindEnv("jwt.secret_key", "APP_JWT_SECRET_KEY")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("Warning: Config file not found. Using default settings or environment variables if available.")
		} else {
			log.Printf("Error reading config file: %s\n", err)
			return err
		}
	}

	if err := viper.Unmarshal(&Cfg); err != nil {
		log.Printf("Error unmarshalling config: %s\n", err)
		return err
	}

	// --- デフォルト値の設定 ---
	if Cfg.Server.Port == "" {
		Cfg.Server.Port = DefaultServerPort
	}
	if Cfg.Database.URL == "" {
		// ローカル専用アプリなのでsqliteファイルをデフォルトにする
		Cfg.Database.URL = DefaultDatabaseURL
	}
	if Cfg.Media.Dir == "" {
		Cfg.Media.Dir = DefaultMediaDir
	}
	if Cfg.Log.Level == "" {
		Cfg.Log.Level = DefaultLogLevel
	}
	if Cfg.App.ReviewLimit <= 0 {
		Cfg.App.ReviewLimit = MaxReviewPerDay
	}
	// 加餐と通常を別キューにするのが既定 (明示的に設定された場合のみ尊重)
	if !viper.IsSet("app.match_extra_session") {
		Cfg.App.MatchExtraSession = true
	}

	log.Println("Config loaded successfully")
	log.Printf("Server Port: %s", Cfg.Server.Port)
	log.Printf("Database URL: %s", Cfg.Database.URL)
	log.Printf("Media Dir: %s", Cfg.Media.Dir)

	return nil
}
