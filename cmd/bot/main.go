package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"

	"github.com/opentracing/opentracing-go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	jaegercfg "github.com/uber/jaeger-client-go/config"
	"go.uber.org/zap"

	memcached "max.ks1230/exchange-bot/internal/clients/cache"
	"max.ks1230/exchange-bot/internal/clients/coingecko"
	"max.ks1230/exchange-bot/internal/clients/exchangerate"
	"max.ks1230/exchange-bot/internal/clients/tg"
	"max.ks1230/exchange-bot/internal/config"
	"max.ks1230/exchange-bot/internal/logger"
	"max.ks1230/exchange-bot/internal/model/messages"
	"max.ks1230/exchange-bot/internal/model/rates"
	"max.ks1230/exchange-bot/internal/model/storage"
)

const (
	serviceName = "exchange-bot"
	metricsAddr = ":8081"
)

func main() {
	logger.Info("Bot init - start")

	conf, err := config.New()
	if err != nil {
		logger.Fatal("failed to init config:", zap.Error(err))
	}

	initTracing()
	go serveMetrics()

	client, err := tg.New(conf.Telegram())
	if err != nil {
		logger.Fatal("failed to init client:", zap.Error(err))
	}

	cache := rates.NewCache(
		exchangerate.New(conf.ExchangeRate()),
		coingecko.New(conf.Coingecko()),
		conf.App(),
	)

	deps := messages.HandlerDeps{
		Converter: rates.NewConverter(cache),
		Trends:    rates.NewAnalyzer(cache),
		Cache:     cache,
		Storage:   newUserStorage(conf),
		Screens:   newScreenCache(conf),
	}

	msgService := messages.NewService(client, deps)

	logger.Info("Bot init - end")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	client.ListenUpdates(ctx, msgService)
}

func newUserStorage(conf *config.Service) messages.UserStorage {
	if conf.Postgres().Host() == "" {
		logger.Info("no postgres configured, using in-mem user storage")
		return storage.NewInMemStorage()
	}
	db, err := storage.NewPostgresStorage(conf.Postgres())
	if err != nil {
		logger.Fatal("failed to init postgres:", zap.Error(err))
	}
	return db
}

func newScreenCache(conf *config.Service) messages.ScreenCache {
	if len(conf.Memcached().Hosts()) == 0 {
		logger.Info("no memcached configured, screen caching disabled")
		return nil
	}
	mc, err := memcached.NewMemcache(conf.Memcached())
	if err != nil {
		logger.Fatal("failed to init memcached:", zap.Error(err))
	}
	return mc
}

func initTracing() {
	cfg := jaegercfg.Configuration{
		ServiceName: serviceName,
		Sampler: &jaegercfg.SamplerConfig{
			Type:  "const",
			Param: 1,
		},
	}
	tracer, _, err := cfg.NewTracer()
	if err != nil {
		logger.Warn("failed to init tracing", zap.Error(err))
		return
	}
	opentracing.SetGlobalTracer(tracer)
}

func serveMetrics() {
	http.Handle("/metrics", promhttp.Handler())
	if err := http.ListenAndServe(metricsAddr, nil); err != nil {
		logger.Error("metrics endpoint stopped", zap.Error(err))
	}
}
