package deps

import (
	"context"
	"sync"
	"time"

	"remindbot/internal/config"
	"remindbot/internal/core/domain/bot"
	dl "remindbot/internal/core/domain/logging"
	"remindbot/internal/core/domain/localtime"
	"remindbot/internal/core/domain/metrics"
	drl "remindbot/internal/core/domain/rate_limiter"
	"remindbot/internal/core/domain/reminder"
	"remindbot/internal/db"
	dbreminder "remindbot/internal/db/reminder"
	deliveryguard "remindbot/internal/implementations/delivery_guard"
	"remindbot/internal/implementations/logging"
	pmetrics "remindbot/internal/implementations/metrics"
	randomstringgenerator "remindbot/internal/implementations/random_string_generator"
	ratelimiter "remindbot/internal/implementations/rate_limiter"
	reminderevents "remindbot/internal/implementations/reminder_events"
	remindernotifier "remindbot/internal/implementations/reminder_notifier"
	reminderstore "remindbot/internal/implementations/reminder_store"
	telegrambotmessagesender "remindbot/internal/implementations/telegram_bot_message_sender"
	"remindbot/internal/rabbitmq"
	rabbitmqevents "remindbot/internal/rabbitmq/publishers/reminder_events"

	"github.com/go-redis/redis/v9"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/r3labs/sse/v2"
)

type Deps struct {
	Config *config.Config
	Logger dl.Logger

	// DB, Redis and Rabbitmq stay nil unless their URLs are configured.
	DB        *pgxpool.Pool
	Redis     *redis.Client
	Rabbitmq  *rabbitmq.Connection
	SseServer *sse.Server
	Registry  *prometheus.Registry

	Now func() time.Time

	Metrics    metrics.Sink
	Normalizer *localtime.Normalizer
	Renderer   reminder.Renderer

	RateLimiter drl.RateLimiter

	ReminderStore   reminder.Store
	ReminderJournal reminder.Journal
	DeliveryGuard   reminder.DeliveryGuard
	EventPublisher  reminder.EventPublisher

	TelegramBotMessageSender bot.TelegramBotMessageSender
	ReminderNotifier         reminder.Notifier
}

func InitDeps() (*Deps, func()) {
	deps := &Deps{}

	deps.initConfig()

	closeLogger := deps.initLogger()
	closePgxPool := deps.initPgxPool()
	closeRedisClient := deps.initRedisClient()
	closeRabbitmqConn := deps.initRabbitmqConnection()
	closeSseServer := deps.initSseServer()

	deps.Now = func() time.Time { return time.Now().UTC() }
	deps.initMetrics()
	deps.Normalizer = localtime.NewNormalizer(localtime.SystemZoneProvider{})
	deps.Renderer = reminder.NewRenderer(deps.Config.DisplayZoneAbbreviation)

	deps.initRateLimiter()
	deps.initReminderStore()
	deps.initDeliveryGuard()
	closeEventPublisher := deps.initEventPublisher()

	deps.TelegramBotMessageSender = telegrambotmessagesender.New(
		deps.Config.TelegramBaseURL,
		deps.Config.TelegramToken,
		deps.Config.TelegramRequestTimeout,
		telegrambotmessagesender.NewLimiter(deps.Config.TelegramMessagesPerSecond),
	)
	deps.initReminderNotifier()

	return deps, func() {
		closeFuncs := []func(){
			closeSseServer,
			closeEventPublisher,
			closeRabbitmqConn,
			closeRedisClient,
			closePgxPool,
		}

		var wg sync.WaitGroup
		wg.Add(len(closeFuncs))
		for _, closeFunc := range closeFuncs {
			closeFunc := closeFunc
			go func() {
				closeFunc()
				wg.Done()
			}()
		}

		wg.Wait()
		closeLogger()
	}
}

func (deps *Deps) initConfig() {
	config, err := config.Load()
	if err != nil {
		panic(err)
	}
	deps.Config = config
}

func (deps *Deps) initLogger() func() {
	logger := logging.NewZapLogger(deps.Config.IsTestMode)
	deps.Logger = logger
	return func() { logger.Sync() }
}

func (deps *Deps) initPgxPool() func() {
	if deps.Config.PostgresqlURL == "" {
		deps.Logger.Info(context.Background(), "PostgreSQL journal is disabled.")
		return func() {}
	}
	if err := db.ApplyMigrations(deps.Config.PostgresqlURL, deps.Config.MigrationsPath); err != nil {
		deps.Logger.Error(context.Background(), "Could not apply DB migrations.", dl.Entry("err", err))
		panic(err)
	}
	pool, err := db.Connect(context.Background(), deps.Config.PostgresqlURL)
	if err != nil {
		deps.Logger.Error(context.Background(), "Could not connect to DB.", dl.Entry("err", err))
		panic(err)
	}
	deps.DB = pool
	return func() {
		deps.Logger.Info(context.Background(), "Shutting down DB connection.")
		pool.Close()
		deps.Logger.Info(context.Background(), "DB connection shut down.")
	}
}

func (deps *Deps) initRedisClient() func() {
	if deps.Config.RedisURL == "" {
		deps.Logger.Info(context.Background(), "Redis delivery guard is disabled.")
		return func() {}
	}
	redisOpt, err := redis.ParseURL(deps.Config.RedisURL)
	if err != nil {
		deps.Logger.Error(context.Background(), "Could not connect to Redis.", dl.Entry("err", err))
		panic(err)
	}
	redisClient := redis.NewClient(redisOpt)
	deps.Redis = redisClient
	return func() {
		deps.Logger.Info(context.Background(), "Shutting down Redis client.")
		redisClient.Close()
		deps.Logger.Info(context.Background(), "Redis client shut down.")
	}
}

func (deps *Deps) initRabbitmqConnection() func() {
	if deps.Config.RabbitmqURL == "" {
		deps.Logger.Info(context.Background(), "RabbitMQ event publishing is disabled.")
		return func() {}
	}
	rabbitmqConnection, err := rabbitmq.Dial(deps.Config.RabbitmqURL, deps.Logger)
	if err != nil {
		deps.Logger.Error(context.Background(), "Could not connect to RabbitMQ.", dl.Entry("err", err))
		panic("could not connect to RabbitMQ")
	}
	deps.Rabbitmq = rabbitmqConnection
	return func() {
		deps.Logger.Info(context.Background(), "Shutting down RabbitMQ connection.")
		rabbitmqConnection.Close()
		deps.Logger.Info(context.Background(), "RabbitMQ connection shut down.")
	}
}

func (deps *Deps) initSseServer() func() {
	deps.SseServer = sse.New()
	deps.SseServer.AutoStream = false
	deps.SseServer.AutoReplay = false
	return func() {
		deps.Logger.Info(context.Background(), "Shutting down SSE server.")
		deps.SseServer.Close()
		deps.Logger.Info(context.Background(), "SSE server shut down.")
	}
}

func (deps *Deps) initMetrics() {
	deps.Registry = prometheus.NewRegistry()
	deps.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	deps.Metrics = pmetrics.NewPrometheusSink(deps.Registry, deps.Logger)
}

func (deps *Deps) initReminderStore() {
	store := reminderstore.NewMemoryStore(randomstringgenerator.NewGenerator())
	if deps.DB == nil {
		deps.ReminderStore = store
		return
	}
	deps.ReminderJournal = dbreminder.NewPgxJournal(deps.DB, localtime.SystemZoneProvider{})
	deps.ReminderStore = reminderstore.NewJournaledStore(store, deps.ReminderJournal, deps.Logger)
}

func (deps *Deps) initRateLimiter() {
	if deps.Redis == nil {
		deps.RateLimiter = ratelimiter.NewMemory(deps.Now)
		return
	}
	deps.RateLimiter = ratelimiter.NewRedis(deps.Redis, deps.Logger, deps.Now)
}

func (deps *Deps) initDeliveryGuard() {
	if deps.Redis == nil {
		deps.DeliveryGuard = deliveryguard.NewMemory()
		return
	}
	deps.DeliveryGuard = deliveryguard.NewRedis(deps.Redis, deps.Config.DeliveryClaimTTL)
}

func (deps *Deps) initEventPublisher() func() {
	fanout := reminderevents.NewFanout(reminderevents.NewSSE(deps.SseServer))
	deps.EventPublisher = fanout
	if deps.Rabbitmq == nil {
		return func() {}
	}

	rabbitmqChannel, err := deps.Rabbitmq.Channel()
	if err != nil {
		deps.Logger.Error(context.Background(), "Could not create RabbitMQ channel.", dl.Entry("err", err))
		panic(err)
	}
	if err := rabbitmqChannel.DeclareFanout(deps.Config.RabbitmqEventsExchange); err != nil {
		deps.Logger.Error(context.Background(), "Could not create RabbitMQ exchange.", dl.Entry("err", err))
		panic(err)
	}
	fanout.Add(rabbitmqevents.NewRabbitMQ(deps.Logger, rabbitmqChannel, deps.Config.RabbitmqEventsExchange))

	return func() {
		deps.Logger.Info(context.Background(), "Shutting down reminder event publisher.")
		rabbitmqChannel.Close()
		deps.Logger.Info(context.Background(), "Reminder event publisher shut down.")
	}
}

func (deps *Deps) initReminderNotifier() {
	var notifier reminder.Notifier = remindernotifier.NewTelegram(deps.TelegramBotMessageSender)
	if deps.Config.DeliveryMaxRetries > 0 {
		notifier = remindernotifier.NewRetrying(notifier, deps.Logger, deps.Config.DeliveryMaxRetries)
	}
	deps.ReminderNotifier = notifier
}
