package cmd

import (
	"context"
	"database/sql"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-bike-bookings/app/booking"
	"github.com/vibast-solutions/ms-go-bike-bookings/app/cache"
	"github.com/vibast-solutions/ms-go-bike-bookings/app/events"
	"github.com/vibast-solutions/ms-go-bike-bookings/app/indexer"
	"github.com/vibast-solutions/ms-go-bike-bookings/app/probe"
	"github.com/vibast-solutions/ms-go-bike-bookings/app/repository"
	"github.com/vibast-solutions/ms-go-bike-bookings/app/service"
	"github.com/vibast-solutions/ms-go-bike-bookings/app/signature"
	"github.com/vibast-solutions/ms-go-bike-bookings/config"
)

func mustCreateBookingService() (*config.Config, *service.BookingService, func()) {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	if err := configureLogging(cfg); err != nil {
		logrus.WithError(err).Fatal("Failed to configure logging")
	}

	policy := booking.NewPricePolicy(cfg.Booking.Currency, cfg.Booking.FullPrice, cfg.Booking.DiscountPrice)
	catalog, err := booking.LoadCatalog(cfg.Booking.SlotsFile, booking.SlotAmount(cfg.Booking.FullPrice))
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load slot catalog")
	}
	if err := catalog.CheckPricing(policy); err != nil {
		logrus.WithError(err).Fatal("Slot catalog is priced below BOOKING_FULL_PRICE")
	}

	reconciler := booking.NewReconciler(policy)
	if cfg.Yodl.SigningAddress == "" {
		logrus.Warn("YODL_SIGNING_ADDRESS is not set, webhooks will be refused")
	}

	bookingService := service.NewBookingService(
		indexer.NewClient(indexer.Config{BaseURL: cfg.Yodl.IndexerURL, HTTPTimeout: cfg.Yodl.IndexerTimeout}),
		probe.NewClient(cfg.Probe.URL, cfg.Probe.Timeout),
		reconciler,
		catalog,
		signature.NewVerifier(cfg.Yodl.SigningAddress),
		cfg.Booking,
		cfg.Yodl,
	)

	closers := make([]func(), 0, 3)

	if cfg.MySQL.DSN != "" {
		db := mustOpenDatabase(cfg.MySQL)
		bookingService.WithDeliveryRepository(repository.NewWebhookDeliveryRepository(db))
		closers = append(closers, func() {
			if err := db.Close(); err != nil {
				logrus.WithError(err).Warn("Failed to close database")
			}
		})
	}

	if cfg.Redis.Addr != "" {
		guard := cache.NewDeliveryGuard(cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, cfg.Redis.DeliveryTTL)

		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := guard.Ping(pingCtx); err != nil {
			logrus.WithError(err).Warn("Redis is unreachable, duplicate webhooks will be detected once it recovers")
		}
		cancel()

		bookingService.WithDeliveryGuard(guard)
		closers = append(closers, func() {
			if err := guard.Close(); err != nil {
				logrus.WithError(err).Warn("Failed to close redis client")
			}
		})
	}

	if len(cfg.Kafka.Brokers) > 0 {
		producer := events.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.SettledTopic)
		bookingService.WithEventPublisher(producer)
		closers = append(closers, func() {
			if err := producer.Close(); err != nil {
				logrus.WithError(err).Warn("Failed to close kafka producer")
			}
		})
	}

	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	return cfg, bookingService, cleanup
}

func mustOpenDatabase(cfg config.MySQLConfig) *sql.DB {
	dsn, err := mysql.ParseDSN(cfg.DSN)
	if err != nil {
		logrus.WithError(err).Fatal("Invalid MYSQL_DSN")
	}
	// created_at is scanned into time.Time
	dsn.ParseTime = true

	db, err := sql.Open("mysql", dsn.FormatDSN())
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		logrus.WithError(err).Fatal("Failed to ping database")
	}

	return db
}
