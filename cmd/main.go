package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	staking "staking_wallet_back"
	"staking_wallet_back/pkg/handler"
	"staking_wallet_back/pkg/repository"
	"staking_wallet_back/pkg/service"
	"staking_wallet_back/pkg/worker"
)

func main() {
	logrus.SetFormatter(new(logrus.JSONFormatter))
	logrus.Infoln("starting server")
	if err := godotenv.Load(); err != nil {
		logrus.Infof("no .env file loaded: %s", err)
	}

	if err := InitConfig(); err != nil {
		logrus.Fatalf("failed to read config: %s", err.Error())
	}
	if level, err := logrus.ParseLevel(viper.GetString("log.level")); err == nil {
		logrus.SetLevel(level)
	}

	ctx := context.Background()

	db, err := repository.NewPostgresDB(ctx, repository.Config{
		Host:            viper.GetString("db.host"),
		Port:            viper.GetString("db.port"),
		Username:        viper.GetString("db.username"),
		Password:        os.Getenv("DB_PASSWORD"),
		DBName:          viper.GetString("db.dbname"),
		SSLMode:         viper.GetString("db.sslmode"),
		MaxOpenConns:    viper.GetInt("db.max_open_conns"),
		MaxIdleConns:    viper.GetInt("db.max_idle_conns"),
		ConnMaxLifetime: viper.GetDuration("db.conn_max_lifetime"),
	})
	if err != nil {
		logrus.Fatalf("failed to connect to database: %s", err.Error())
	}
	defer db.Close()

	if err := repository.Migrate(db); err != nil {
		logrus.Fatalf("failed to run migrations: %s", err.Error())
	}

	rdb, err := repository.NewRedisClient(ctx, repository.RedisConfig{
		URL:      viper.GetString("redis.url"),
		Password: os.Getenv("REDIS_PASSWORD"),
		PoolSize: viper.GetInt("redis.pool_size"),
	})
	if err != nil {
		logrus.Fatalf("failed to connect to redis: %s", err.Error())
	}
	defer rdb.Close()

	annualRate, err := decimal.NewFromString(viper.GetString("staking.annual_rate"))
	if err != nil {
		logrus.Fatalf("invalid staking.annual_rate: %s", err.Error())
	}

	repos := repository.NewRepository(db)
	services := service.NewService(repos, repository.NewWalletMirrorRedis(rdb), service.Config{
		AnnualRate:        annualRate,
		ReferralCacheTTL:  viper.GetDuration("referral.cache_ttl"),
		StrictAddresses:   viper.GetBool("wallet.strict_address"),
		MirrorBatchSize:   viper.GetInt("mirror.batch_size"),
		StakeHistoryLimit: viper.GetInt("staking.history_limit"),
	})
	handlers := handler.NewHandler(services, handler.Config{
		AllowOrigins: viper.GetStringSlice("http.allow_origins"),
	})

	scheduler := worker.NewScheduler()
	if _, err := worker.ScheduleMirrorRelay(scheduler, viper.GetString("mirror.schedule"), services.Mirror, viper.GetDuration("mirror.timeout")); err != nil {
		logrus.Fatalf("failed to schedule mirror relay: %s", err.Error())
	}
	scheduler.Start()

	srv := staking.NewServer(staking.ServerConfig{
		Port:              viper.GetString("port"),
		ReadHeaderTimeout: viper.GetDuration("http.read_header_timeout"),
		ReadTimeout:       viper.GetDuration("http.read_timeout"),
		WriteTimeout:      viper.GetDuration("http.write_timeout"),
		IdleTimeout:       viper.GetDuration("http.idle_timeout"),
	}, handlers.InitRoute())
	go func() {
		if err := srv.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("failed to run http server: %s", err.Error())
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), viper.GetDuration("http.shutdown_timeout"))
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("http shutdown: %s", err.Error())
	}
	<-scheduler.Stop().Done()
}

func InitConfig() error {
	viper.AddConfigPath("configs")
	viper.SetConfigName("config")

	viper.SetDefault("port", "3001")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("db.sslmode", "disable")
	viper.SetDefault("db.max_open_conns", 20)
	viper.SetDefault("db.max_idle_conns", 5)
	viper.SetDefault("db.conn_max_lifetime", 30*time.Minute)
	viper.SetDefault("redis.url", "redis://localhost:6379/0")
	viper.SetDefault("redis.pool_size", 10)
	viper.SetDefault("staking.annual_rate", "0.05")
	viper.SetDefault("staking.history_limit", 50)
	viper.SetDefault("referral.cache_ttl", time.Minute)
	viper.SetDefault("wallet.strict_address", false)
	viper.SetDefault("mirror.schedule", "@every 5s")
	viper.SetDefault("mirror.batch_size", 100)
	viper.SetDefault("mirror.timeout", 30*time.Second)
	viper.SetDefault("http.allow_origins", []string{"*"})
	viper.SetDefault("http.read_header_timeout", 10*time.Second)
	viper.SetDefault("http.read_timeout", 30*time.Second)
	viper.SetDefault("http.write_timeout", 30*time.Second)
	viper.SetDefault("http.idle_timeout", 2*time.Minute)
	viper.SetDefault("http.shutdown_timeout", 10*time.Second)

	viper.AutomaticEnv()
	if err := viper.BindEnv("port", "PORT"); err != nil {
		return err
	}
	return viper.ReadInConfig()
}
