package container

import (
	"context"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor" // CBOR format support for huma
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nmarks/kurz/internal/handlers"
	"github.com/nmarks/kurz/internal/messaging"
	"github.com/nmarks/kurz/internal/middleware"
	"github.com/nmarks/kurz/internal/shortener"
	"github.com/nmarks/kurz/internal/store"
	"github.com/nmarks/kurz/internal/visits"
	visitstore "github.com/nmarks/kurz/internal/visits/store"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"go.uber.org/zap"
)

// Options is the configuration surface of all binaries.
type Options struct {
	Port         int    `default:"8080"                  help:"Port to listen on"                                        short:"p"`
	DatabaseURL  string `default:""                      help:"PostgreSQL connection string; empty selects the in-memory store"`
	RedisAddr    string `default:"localhost:6379"        help:"Redis server address; empty disables caching and messaging" short:"r"`
	BaseDomain   string `default:"http://localhost:8080" help:"Public base domain used to build short links"`
	Alphabet     string `default:""                      help:"Override for the short code alphabet"`
	ValidateURLs bool   `default:"false"                 help:"Verify that target URLs respond before shortening"`
	CacheTTL     int    `default:"3600"                  help:"Resolution cache TTL in seconds"`
	LogFormat    string `default:"console"               help:"Log format: console or json"`
}

// checkerTimeout bounds the whole reachability request, redirects included.
const checkerTimeout = 10 * time.Second

// LoggerPackage provides the zap logger.
func LoggerPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*zap.Logger, error) {
		options := do.MustInvoke[*Options](i)

		if options.LogFormat == "json" {
			return zap.NewProduction()
		}

		return zap.NewDevelopment()
	})
}

// RedisPackage provides the Redis client.
func RedisPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*redis.Client, error) {
		options := do.MustInvoke[*Options](i)

		return redis.NewClient(&redis.Options{
			Addr: options.RedisAddr,
		}), nil
	})
}

// PostgresPackage provides the pgx connection pool.
func PostgresPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*pgxpool.Pool, error) {
		options := do.MustInvoke[*Options](i)

		return pgxpool.New(context.Background(), options.DatabaseURL)
	})
}

// RepositoryPackage provides the short URL repository: Postgres when a
// database is configured, in-memory otherwise, with a Redis read cache on
// top when Redis is available.
func RepositoryPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (shortener.Repository, error) {
		options := do.MustInvoke[*Options](i)

		var repo shortener.Repository

		if options.DatabaseURL != "" {
			pool := do.MustInvoke[*pgxpool.Pool](i)
			repo = store.NewPostgresRepository(pool)
		} else {
			repo = store.NewMemoryRepository()
		}

		if options.RedisAddr != "" {
			client := do.MustInvoke[*redis.Client](i)
			repo = store.NewCachedRepository(repo, client, time.Duration(options.CacheTTL)*time.Second)
		}

		return repo, nil
	})
}

// ShortenerPackage provides the alphabet, the shortening service, and the
// resolver.
func ShortenerPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*shortener.Alphabet, error) {
		options := do.MustInvoke[*Options](i)

		return shortener.NewAlphabet(options.Alphabet)
	})

	do.Provide(injector, func(i *do.Injector) (*shortener.Shortener, error) {
		options := do.MustInvoke[*Options](i)
		repo := do.MustInvoke[shortener.Repository](i)
		alphabet := do.MustInvoke[*shortener.Alphabet](i)
		logger := do.MustInvoke[*zap.Logger](i)

		var checker shortener.Checker
		if options.ValidateURLs {
			checker = shortener.NewHTTPChecker(checkerTimeout)
		}

		return shortener.NewShortener(repo, alphabet, shortener.NewSlugProcessor(repo), checker, logger), nil
	})

	do.Provide(injector, func(i *do.Injector) (*shortener.Resolver, error) {
		repo := do.MustInvoke[shortener.Repository](i)
		alphabet := do.MustInvoke[*shortener.Alphabet](i)

		return shortener.NewResolver(repo, alphabet), nil
	})
}

// VisitsPackage provides the visit store.
func VisitsPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (visits.Store, error) {
		options := do.MustInvoke[*Options](i)

		if options.DatabaseURL != "" {
			pool := do.MustInvoke[*pgxpool.Pool](i)

			return visitstore.NewPostgres(pool), nil
		}

		return visitstore.NewMemory(), nil
	})
}

// PublisherGroupPackage provides the event publisher and the typed visit
// publish function. Without Redis, visits are saved synchronously instead
// of going through the stream.
func PublisherGroupPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*messaging.PublisherGroup, error) {
		client := do.MustInvoke[*redis.Client](i)

		publisher, err := redisstream.NewPublisher(redisstream.PublisherConfig{
			Client: client,
		}, watermill.NopLogger{})
		if err != nil {
			return nil, err
		}

		return messaging.NewPublisherGroup(publisher), nil
	})

	do.Provide(injector, func(i *do.Injector) (messaging.Publish[visits.VisitOccurredEvent], error) {
		options := do.MustInvoke[*Options](i)

		if options.RedisAddr == "" {
			visitStore := do.MustInvoke[visits.Store](i)
			logger := do.MustInvoke[*zap.Logger](i)
			handler := visits.NewEventHandler(visitStore, logger)

			return func(event *visits.VisitOccurredEvent) error {
				return handler(context.Background(), event)
			}, nil
		}

		group := do.MustInvoke[*messaging.PublisherGroup](i)

		return messaging.NewPublish[visits.VisitOccurredEvent](group.Publisher(), visits.TopicVisitOccurred), nil
	})
}

// ConsumerGroupPackage provides the consumer group that persists visit
// events. Without a database the events are only logged.
func ConsumerGroupPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*messaging.ConsumerGroup, error) {
		options := do.MustInvoke[*Options](i)
		client := do.MustInvoke[*redis.Client](i)
		logger := do.MustInvoke[*zap.Logger](i)

		var visitStore visits.Store
		if options.DatabaseURL != "" {
			visitStore = do.MustInvoke[visits.Store](i)
		} else {
			visitStore = visitstore.NewNoop(logger)
		}

		subscriber, err := redisstream.NewSubscriber(redisstream.SubscriberConfig{
			Client:        client,
			ConsumerGroup: "visit-tracker",
		}, watermill.NopLogger{})
		if err != nil {
			return nil, err
		}

		group := messaging.NewConsumerGroup(subscriber, logger)
		group.Add(messaging.NewConsumer(
			subscriber,
			visits.TopicVisitOccurred,
			visits.NewEventHandler(visitStore, logger),
			logger,
		))

		return group, nil
	})
}

// poolHealth adapts pgxpool.Pool to handlers.HealthChecker.
type poolHealth struct {
	pool *pgxpool.Pool
}

func (p poolHealth) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// HTTPPackage provides the router and the API with all routes registered.
func HTTPPackage(injector *do.Injector) {
	do.Provide(injector, func(_ *do.Injector) (*chi.Mux, error) {
		return chi.NewMux(), nil
	})

	do.Provide(injector, func(i *do.Injector) (huma.API, error) {
		options := do.MustInvoke[*Options](i)
		router := do.MustInvoke[*chi.Mux](i)
		logger := do.MustInvoke[*zap.Logger](i)

		api := humachi.New(router, huma.DefaultConfig("kurz URL Shortener", "1.0.0"))
		api.UseMiddleware(middleware.RequestMeta(api))

		urlHandler := handlers.NewURLHandler(
			do.MustInvoke[*shortener.Shortener](i),
			do.MustInvoke[*shortener.Resolver](i),
			do.MustInvoke[visits.Store](i),
			options.BaseDomain,
			do.MustInvoke[messaging.Publish[visits.VisitOccurredEvent]](i),
			logger,
		)

		var redisChecker, dbChecker handlers.HealthChecker

		if options.RedisAddr != "" {
			redisChecker = handlers.NewRedisHealthChecker(do.MustInvoke[*redis.Client](i))
		}

		if options.DatabaseURL != "" {
			dbChecker = poolHealth{pool: do.MustInvoke[*pgxpool.Pool](i)}
		}

		handlers.RegisterRoutes(api, urlHandler, handlers.NewHealthHandler(redisChecker, dbChecker))

		return api, nil
	})
}
