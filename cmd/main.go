package main

import (
	"context"
	"log"
	"time"

	"rental-service/config"
	"rental-service/internal/module/booking/gateway"
	"rental-service/internal/module/booking/handler"
	"rental-service/internal/module/booking/repositories"
	"rental-service/internal/module/booking/usecases"
	"rental-service/internal/pkg/database"
	"rental-service/internal/pkg/http"
	"rental-service/internal/pkg/httpclient"
	log_internal "rental-service/internal/pkg/log"
	"rental-service/internal/pkg/messagestream"
	"rental-service/internal/pkg/middleware"
	"rental-service/internal/pkg/redis"
	"rental-service/internal/pkg/scheduler"
	router "rental-service/internal/route"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-playground/validator/v10"
	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
)

func main() {
	cfg := config.InitConfig()

	app, messageRouters, bookingHandler := initService(cfg)

	for _, router := range messageRouters {
		ctx := context.Background()
		go func(router *message.Router) {
			err := router.Run(ctx)
			if err != nil {
				log.Fatal(err)
			}
		}(router)
	}

	// start scheduler workers and monitoring
	sch := scheduler.Scheduler{Log: log_internal.GetLogger()}
	go sch.StartHandler(&cfg.Redis,
		[]string{scheduler.TypeSetPaymentExpired, scheduler.TypeSetBookingCompleted},
		[]func(ctx context.Context, t *asynq.Task) error{bookingHandler.SetPaymentExpired, bookingHandler.SetBookingCompleted},
	)
	go sch.StartMonitoring(&cfg.Redis)

	// start http server
	http.StartHttpServer(app, cfg.HttpServer.Port)
}

func initService(cfg *config.Config) (*fiber.App, []*message.Router, *handler.BookingHandler) {

	// init database
	db := database.GetConnection(&cfg.Database)
	// init redis
	redisClient := redis.SetupClient(&cfg.Redis)
	// init logger
	logZap := log_internal.SetupLogger()
	log_internal.Init(logZap)
	logger := log_internal.GetLogger()
	// init http client
	cb := httpclient.InitCircuitBreaker(&cfg.HttpClient, cfg.HttpClient.Type)
	httpClient := httpclient.InitHttpClient(&cfg.HttpClient, cb)

	ctx := context.Background()

	// init per-car lock manager
	pool := goredis.NewPool(redisClient)
	rs := redsync.New(pool)

	// init scheduler client
	sch := scheduler.Scheduler{Log: logger}
	asynqClient := sch.InitClient(&cfg.Redis)
	asynqInspector := asynq.NewInspector(asynq.RedisClientOpt{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// init message stream
	amqp := messagestream.NewAmpq(&cfg.MessageStream)

	// Init Subscriber
	subscriber, err := amqp.NewSubscriber()
	if err != nil {
		logger.Error(ctx, "Failed to create subscriber", err)
	}

	// Init Publisher
	publisher, err := amqp.NewPublisher()
	if err != nil {
		logger.Error(ctx, "Failed to create publisher", err)
	}

	bookingRepo := repositories.New(db, logger, httpClient, redisClient, rs, asynqClient, asynqInspector, &cfg.UserService, &cfg.CarService)
	paymentGateway := gateway.New(httpClient, &cfg.PaymentGateway, logger)
	paymentWindow := time.Duration(cfg.Booking.PaymentWindowMinutes) * time.Minute
	bookingUsecase := usecases.New(bookingRepo, paymentGateway, logger, publisher, paymentWindow, cfg.PaymentGateway.Currency)
	middleware := middleware.Middleware{
		Log:  logZap,
		Repo: bookingRepo,
	}

	validator := validator.New()
	bookingHandler := handler.BookingHandler{
		Log:       logZap,
		Validator: validator,
		Usecase:   bookingUsecase,
		Publish:   publisher,
		Gateway:   paymentGateway,
	}

	var messageRouters []*message.Router

	consumePaymentEventsRouter, err := messagestream.NewRouter(publisher, "payment_events_poisoned", "payment_events_handler", "payment_events", subscriber, bookingHandler.ConsumePaymentEventQueue)
	if err != nil {
		logger.Error(ctx, "Failed to create consume_payment_events router", err)
	}

	messageRouters = append(messageRouters, consumePaymentEventsRouter)

	serverHttp := http.SetupHttpEngine()

	r := router.Initialize(serverHttp, &bookingHandler, &middleware)

	return r, messageRouters, &bookingHandler

}
