package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"review-core/internal/event"
	"review-core/internal/gateway"
	"review-core/internal/handler"
	"review-core/internal/model"
	"review-core/internal/notary"
	"review-core/internal/review"
	"review-core/internal/server"
	"review-core/internal/service"
	"review-core/internal/service/mq"
	"review-core/internal/submit"
	"review-core/pkg/config"
	"review-core/pkg/database"
	"review-core/pkg/logger"
)

func main() {
	config.Init()

	logger.Init(config.Global.App.Env)
	defer logger.Sync()

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		config.Global.DB.Host,
		config.Global.DB.User,
		config.Global.DB.Password,
		config.Global.DB.Name,
		config.Global.DB.Port,
	)

	db, err := database.ConnectPostgres(dsn)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}

	rdb, err := database.ConnectRedis(config.Global.Redis.Addr, config.Global.Redis.Password, config.Global.Redis.DB)
	if err != nil {
		logger.Fatal("redis connection failed", zap.Error(err))
	}

	if config.Global.App.Env == "development" {
		logger.Info("development env: running GORM AutoMigrate")
		if err := db.AutoMigrate(model.AllModels()...); err != nil {
			logger.Fatal("auto migration failed", zap.Error(err))
		}
	} else {
		logger.Info("production env: skipping AutoMigrate, use the migrate tool")
	}

	// Message queue for terminal submission events.
	var producer mq.Producer
	var consumer mq.Consumer
	if config.Global.Redis.MQType == "kafka" {
		logger.Info("using kafka for submission events")
		producer = mq.NewKafkaProducer(config.Global.Kafka.Brokers, event.TopicSubmissionTerminal)
		consumer = mq.NewKafkaConsumer(config.Global.Kafka.Brokers, "review_audit_group")
	} else {
		logger.Info("using redis streams for submission events")
		producer = mq.NewRedisProducer(rdb)
		consumer = mq.NewRedisConsumer(rdb, "review_audit", "audit-0")
	}

	// Tail terminal events back off the queue; downstream notification
	// fan-out subscribes the same way.
	consumerCtx, stopConsumer := context.WithCancel(context.Background())
	defer stopConsumer()
	go func() {
		err := consumer.Subscribe(consumerCtx, event.TopicSubmissionTerminal, func(msg *mq.Message) error {
			var ev event.SubmissionTerminalEvent
			if err := json.Unmarshal(msg.Payload, &ev); err != nil {
				logger.Warn("malformed terminal event", zap.Error(err))
				return nil
			}
			logger.Info("submission reached terminal state",
				zap.String("session", ev.SessionID),
				zap.String("phase", ev.Phase),
				zap.String("tx_id", ev.TxID),
				zap.Bool("outcome_known", ev.OutcomeKnown))
			return nil
		})
		if err != nil {
			logger.Error("terminal event consumer failed", zap.Error(err))
		}
	}()

	// Gateway client covers preview, metadata, and submission.
	gw := gateway.NewClient(
		config.Global.Gateway.BaseURL,
		config.Global.Gateway.NetworkID,
		time.Duration(config.Global.Gateway.RequestTimeoutMS)*time.Millisecond,
	)

	signer, err := notary.Load(config.Global.Notary.KeyFile, os.Getenv("NOTARY_PASSPHRASE"))
	if err != nil {
		logger.Fatal("notary key load failed", zap.Error(err))
	}

	accountStore := service.NewSQLAccountStore(db, config.Global.Gateway.NetworkID)

	deps := review.SessionDeps{
		Preview:  gw,
		Metadata: gw,
		Accounts: accountStore,
		Signer:   signer,
		Submit:   gw,
		Poll: submit.PollStrategy{
			Interval: time.Duration(config.Global.Gateway.PollIntervalMS) * time.Millisecond,
			MaxTries: config.Global.Gateway.MaxPollTries,
		},
		NetworkID:               config.Global.Gateway.NetworkID,
		DefaultGuaranteePercent: config.Global.Review.DefaultGuaranteePercent,
		MetadataWorkers:         config.Global.Review.MetadataWorkers,
	}

	reviews := service.NewReviewService(deps, db, producer)

	r := server.NewHTTPRouter(handler.NewReviewHandler(reviews))
	app := server.New(server.Config{HttpPort: config.Global.App.HttpPort}, r)
	app.Run()

	logger.Info("closing database connections...")
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	rdb.Close()
	logger.Info("system exited")
}
