package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"openalgo"
	"openalgo/config"
	"openalgo/internal/metrics"
	"openalgo/logger"
	"openalgo/stream"
	"openalgo/writer"
)

func main() {
	log := logger.GetLogger()

	// Load environment variables from .env if present
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn("Error loading .env file")
	}

	configPath := flag.String("config", "", "Path to configuration file (defaults to config/config.yml or config/config.<APP_ENV>.yml)")
	ltp := flag.String("ltp", "", "Comma separated EXCHANGE:SYMBOL list to stream in ltp mode")
	quote := flag.String("quote", "", "Comma separated EXCHANGE:SYMBOL list to stream in quote mode")
	depth := flag.String("depth", "", "Comma separated EXCHANGE:SYMBOL list to stream in depth mode")
	checkFunds := flag.Bool("check-funds", false, "Query account funds over REST before streaming")
	flag.Parse()

	cfg, err := config.LoadConfig(config.ResolvePath(*configPath))
	if err != nil {
		log.WithError(err).Error("Failed to load configuration")
		os.Exit(1)
	}

	if err := log.Configure(cfg.Logging); err != nil {
		log.WithError(err).Error("Failed to configure logger")
		os.Exit(1)
	}

	log.WithFields(logger.Fields{
		"service":     cfg.OpenAlgo.Name,
		"version":     cfg.OpenAlgo.Version,
		"environment": config.AppEnvironment(),
	}).Info("starting openalgo stream")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	metrics.Configure(cfg.Metrics)
	if cfg.Metrics.CloudWatch.Enabled {
		if err := metrics.InitCloudWatch(ctx, cfg.Metrics.CloudWatch); err != nil {
			log.WithError(err).Warn("CloudWatch disabled")
		}
	}

	reportInterval := cfg.Metrics.ReportInterval
	if reportInterval <= 0 && strings.ToLower(cfg.Logging.Level) == "report" {
		reportInterval = 30 * time.Second
	}
	logger.StartReport(ctx, log, reportInterval)

	subs, err := mergeSubscriptions(cfg.Stream.Subscriptions, *ltp, *quote, *depth)
	if err != nil {
		log.WithError(err).Error("invalid subscriptions")
		os.Exit(1)
	}
	if subs.empty() {
		log.Error("nothing to subscribe; set stream.subscriptions or pass -ltp/-quote/-depth")
		os.Exit(1)
	}

	oa := openalgo.FromAppConfig(cfg)

	if *checkFunds {
		funds, err := oa.Account.Funds(ctx)
		if err != nil {
			log.WithError(err).Warn("funds check failed")
		} else if funds.Data != nil {
			log.WithComponent("main").WithFields(logger.Fields{
				"available_cash": funds.Data.AvailableCash,
				"collateral":     funds.Data.Collateral,
			}).Info("account funds")
		}
	}

	var recorder *writer.TickWriter
	if cfg.Recorder.Enabled {
		store, err := writer.NewStore(ctx, cfg)
		if err != nil {
			log.WithError(err).Error("failed to create recorder store")
			os.Exit(1)
		}
		recorder, err = writer.NewTickWriter(cfg.Recorder, store)
		if err != nil {
			log.WithError(err).Error("failed to create tick writer")
			os.Exit(1)
		}
		if err := recorder.Start(ctx); err != nil {
			log.WithError(err).Error("failed to start tick writer")
			os.Exit(1)
		}
		defer recorder.Stop()
	} else {
		log.WithComponent("main").Info("recorder disabled; events are only logged")
	}

	ws := oa.WebSocket(openalgo.StreamOptions(cfg.Stream)...)
	sender, receiver, err := ws.Connect(ctx)
	if err != nil {
		metrics.EmitConnectionMetric(log, metrics.ConnectionError, ws.URL())
		log.WithError(err).Error("failed to connect")
		os.Exit(1)
	}
	defer receiver.Close()

	metrics.StartChannelSizeMetrics(ctx, time.Second, sender, receiver)

	sub := stream.NewSubscriber(sender)
	if err := subs.apply(ctx, sub); err != nil {
		log.WithError(err).Error("failed to queue subscriptions")
	}

	run(ctx, log, ws.URL(), sub, receiver, recorder, cfg.Stream.CloseGracePeriod)
}

// run consumes events until the stream ends. Once ctx is done it asks the
// server side to close and keeps draining until the terminal event arrives.
func run(ctx context.Context, log *logger.Log, host string, sub *stream.Subscriber, receiver *stream.EventReceiver, recorder *writer.TickWriter, grace time.Duration) {
	entry := log.WithComponent("main")
	counter := metrics.NewEventCounter()
	counterCtx, stopCounter := context.WithCancel(context.Background())
	defer stopCounter()
	counter.Start(counterCtx, log, 30*time.Second)

	shutdown := ctx.Done()
	var deadline <-chan time.Time
	events := receiver.Events()

	for {
		select {
		case <-shutdown:
			shutdown = nil
			entry.Info("shutdown requested; disconnecting")
			dctx, dcancel := context.WithTimeout(context.Background(), time.Second)
			if err := sub.Disconnect(dctx); err != nil {
				entry.WithError(err).Debug("disconnect not queued")
			}
			dcancel()
			if grace <= 0 {
				grace = stream.DefaultCloseGracePeriod
			}
			deadline = time.After(2 * grace)

		case <-deadline:
			entry.Warn("stream did not close in time")
			return

		case ev, ok := <-events:
			if !ok {
				return
			}
			counter.Observe(ev.Kind.String())
			handleEvent(entry, host, ev, recorder)
			if ev.IsTerminal() {
				return
			}
		}
	}
}

func handleEvent(entry *logger.Entry, host string, ev stream.Event, recorder *writer.TickWriter) {
	switch ev.Kind {
	case stream.EventConnected:
		metrics.EmitConnectionMetric(nil, metrics.ConnectionConnected, host)
		entry.WithField("host", host).Info("connected")
	case stream.EventDisconnected:
		metrics.EmitConnectionMetric(nil, metrics.ConnectionDisconnected, host)
		entry.Info("disconnected")
	case stream.EventError:
		if ev.IsTerminal() {
			metrics.EmitConnectionMetric(nil, metrics.ConnectionError, host)
			entry.WithField("error", ev.Message).Error("stream failed")
			return
		}
		entry.WithField("error", ev.Message).Warn("stream error")
	default:
		entry.WithField("event", ev.String()).Debug("market data")
		if recorder != nil {
			recorder.Record(ev)
		}
	}
}
