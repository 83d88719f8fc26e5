package writer

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"openalgo/config"
	"openalgo/internal/metrics"
	"openalgo/logger"
	"openalgo/models"
	"openalgo/stream"
)

const (
	defaultTickFlush     = time.Minute
	defaultTickMaxBuffer = 1000
	defaultTimeFormat    = "2006-01-02/15"
)

type tickBatch struct {
	Exchange string
	Mode     string
	Symbol   string
	Rows     []tickRecord
	Started  time.Time
	ID       string
}

// TickWriter buffers market-data events per exchange, mode and symbol and
// writes each buffer as one parquet object when it fills up or ages out.
type TickWriter struct {
	cfg   config.RecorderConfig
	store ObjectStore
	log   *logger.Log
	now   func() time.Time

	mu        sync.Mutex
	running   bool
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	buffer    map[seriesKey][]tickRecord
	firstSeen map[seriesKey]time.Time
}

func NewTickWriter(cfg config.RecorderConfig, store ObjectStore) (*TickWriter, error) {
	if store == nil {
		return nil, fmt.Errorf("tick writer needs an object store")
	}
	if cfg.MaxBuffer <= 0 {
		cfg.MaxBuffer = defaultTickMaxBuffer
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = defaultTickFlush
	}
	if cfg.Partitioning.TimeFormat == "" {
		cfg.Partitioning.TimeFormat = defaultTimeFormat
	}

	w := &TickWriter{
		cfg:       cfg,
		store:     store,
		log:       logger.GetLogger(),
		now:       time.Now,
		ctx:       context.Background(),
		buffer:    make(map[seriesKey][]tickRecord),
		firstSeen: make(map[seriesKey]time.Time),
	}

	w.log.WithComponent("tick_writer").WithFields(logger.Fields{
		"store":          store.String(),
		"max_buffer":     cfg.MaxBuffer,
		"flush_interval": cfg.FlushInterval.String(),
	}).Info("tick writer initialized")

	return w, nil
}

// Start launches the flush worker that writes buffers older than the flush
// interval.
func (w *TickWriter) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("tick writer already running")
	}
	w.running = true
	w.ctx, w.cancel = context.WithCancel(ctx)
	tick := w.tickerInterval()
	w.mu.Unlock()

	w.wg.Add(1)
	go w.flushWorker(w.ctx, tick)

	w.log.WithComponent("tick_writer").WithField("ticker_interval", tick.String()).Info("starting tick writer")
	return nil
}

// Stop ends the flush worker and writes whatever is still buffered.
func (w *TickWriter) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	cancel := w.cancel
	w.cancel = nil
	w.mu.Unlock()

	cancel()
	w.wg.Wait()
	w.flushAll("stop")
	w.log.WithComponent("tick_writer").Info("tick writer stopped")
}

// Record buffers a data event. Non-data events are ignored and reported as
// false.
func (w *TickWriter) Record(ev stream.Event) bool {
	rec, ok := recordFromEvent(ev, w.now())
	if !ok {
		return false
	}

	key := newSeriesKey(rec.Exchange, rec.Mode, rec.Symbol)
	w.mu.Lock()
	w.buffer[key] = append(w.buffer[key], rec)
	if _, ok := w.firstSeen[key]; !ok {
		w.firstSeen[key] = w.now()
	}
	full := len(w.buffer[key]) >= w.cfg.MaxBuffer
	w.mu.Unlock()

	if full {
		w.flushKey(key)
	}
	return true
}

// Buffered returns the number of rows waiting to be written.
func (w *TickWriter) Buffered() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	n := 0
	for _, rows := range w.buffer {
		n += len(rows)
	}
	return n
}

func (w *TickWriter) flushWorker(ctx context.Context, interval time.Duration) {
	defer w.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.flushTimedOut()
		}
	}
}

func (w *TickWriter) tickerInterval() time.Duration {
	if w.cfg.FlushInterval < time.Second {
		return w.cfg.FlushInterval
	}
	return time.Second
}

func (w *TickWriter) flushTimedOut() {
	now := w.now()
	w.mu.Lock()
	var keys []seriesKey
	for key, rows := range w.buffer {
		if len(rows) > 0 && now.Sub(w.firstSeen[key]) >= w.cfg.FlushInterval {
			keys = append(keys, key)
		}
	}
	w.mu.Unlock()

	for _, key := range keys {
		w.flushKey(key)
	}
}

func (w *TickWriter) flushAll(reason string) {
	w.mu.Lock()
	keys := make([]seriesKey, 0, len(w.buffer))
	for key, rows := range w.buffer {
		if len(rows) > 0 {
			keys = append(keys, key)
		}
	}
	w.mu.Unlock()

	if len(keys) == 0 {
		return
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })

	w.log.WithComponent("tick_writer").WithFields(logger.Fields{
		"flushed_buffers": len(keys),
		"reason":          reason,
	}).Info("flushing tick buffers")

	for _, key := range keys {
		w.flushKey(key)
	}
}

func (w *TickWriter) flushKey(key seriesKey) {
	w.mu.Lock()
	rows := w.buffer[key]
	started := w.firstSeen[key]
	delete(w.buffer, key)
	delete(w.firstSeen, key)
	ctx := w.ctx
	w.mu.Unlock()

	if len(rows) == 0 {
		return
	}

	batch := tickBatch{
		Exchange: key.Exchange,
		Mode:     key.Mode,
		Symbol:   key.Symbol,
		Rows:     rows,
		Started:  started,
		ID:       uuid.NewString(),
	}
	w.writeBatch(context.WithoutCancel(ctx), batch)
}

func (w *TickWriter) writeBatch(ctx context.Context, batch tickBatch) {
	entry := w.log.WithComponent("tick_writer")
	start := time.Now()

	for i := range batch.Rows {
		batch.Rows[i].BatchID = batch.ID
	}
	data, err := encodeParquet(batch.Rows)
	if err != nil {
		entry.WithError(err).WithField("batch_id", batch.ID).Error("failed to encode tick batch")
		return
	}

	key := w.objectKey(batch)
	if err := w.store.Put(ctx, key, data); err != nil {
		entry.WithError(err).WithField("key", key).Error("failed to store tick batch")
		return
	}

	logger.IncrementRecorderWrite(int64(len(data)))
	metrics.EmitMetric(w.log, "tick_writer", "recorder_objects_written", 1, "counter", logger.Fields{
		"mode": batch.Mode,
	})
	logger.LogDataFlowEntry(entry, "stream", w.store.String(), len(batch.Rows), batch.Mode)
	logger.LogPerformanceEntry(entry, "tick_writer", "write_batch", time.Since(start), logger.Fields{
		"key":     key,
		"records": len(batch.Rows),
		"bytes":   len(data),
	})
}

// objectKey lays out
// [exchange=x/][mode=m/][symbol=s/]<time partition>/<exchange>_<mode>_<symbol>_<ts>_<id>.parquet
func (w *TickWriter) objectKey(batch tickBatch) string {
	ts := batch.Started.UTC()

	var parts []string
	for _, k := range w.cfg.Partitioning.AdditionalKeys {
		switch strings.ToLower(strings.TrimSpace(k)) {
		case "exchange":
			parts = append(parts, "exchange="+sanitizeKeyPart(strings.ToLower(batch.Exchange)))
		case "mode":
			parts = append(parts, "mode="+batch.Mode)
		case "symbol":
			parts = append(parts, "symbol="+sanitizeKeyPart(batch.Symbol))
		}
	}
	parts = append(parts, ts.Format(w.cfg.Partitioning.TimeFormat))

	short := batch.ID
	if len(short) > 8 {
		short = short[:8]
	}
	name := fmt.Sprintf("%s_%s_%s_%s_%s.parquet",
		sanitizeKeyPart(strings.ToLower(batch.Exchange)), batch.Mode, sanitizeKeyPart(batch.Symbol), ts.Format("20060102150405"), short)
	return path.Join(append(parts, name)...)
}

// sanitizeKeyPart keeps a value inside one object key segment.
func sanitizeKeyPart(s string) string {
	return strings.NewReplacer("/", "_", "\\", "_", " ", "_").Replace(s)
}

// seriesKey identifies one buffer. Exchange and symbol are upper-cased, with
// UNKNOWN standing in for missing values.
type seriesKey struct {
	Exchange string
	Mode     string
	Symbol   string
}

func newSeriesKey(exchange, mode, symbol string) seriesKey {
	exch := strings.ToUpper(strings.TrimSpace(exchange))
	if exch == "" {
		exch = "UNKNOWN"
	}
	sym := strings.ToUpper(strings.TrimSpace(symbol))
	if sym == "" {
		sym = "UNKNOWN"
	}
	return seriesKey{Exchange: exch, Mode: mode, Symbol: sym}
}

func (k seriesKey) String() string {
	return k.Exchange + ":" + k.Mode + ":" + k.Symbol
}

func recordFromEvent(ev stream.Event, received time.Time) (tickRecord, bool) {
	rec := tickRecord{ReceivedTime: received.UTC().UnixMilli()}

	switch ev.Kind {
	case stream.EventLtp:
		if ev.Ltp == nil {
			return tickRecord{}, false
		}
		d := ev.Ltp
		rec.Mode = models.ModeLTP.String()
		rec.Exchange = models.StringValue(d.Exchange)
		rec.Symbol = models.StringValue(d.Symbol)
		rec.Ltp = models.Float64Value(d.Ltp)
		rec.FeedTimestamp = models.Int64Value(d.Timestamp)
	case stream.EventQuote:
		if ev.Quote == nil {
			return tickRecord{}, false
		}
		d := ev.Quote
		rec.Mode = models.ModeQuote.String()
		rec.Exchange = models.StringValue(d.Exchange)
		rec.Symbol = models.StringValue(d.Symbol)
		rec.Ltp = models.Float64Value(d.Ltp)
		rec.Open = models.Float64Value(d.Open)
		rec.High = models.Float64Value(d.High)
		rec.Low = models.Float64Value(d.Low)
		rec.Close = models.Float64Value(d.Close)
		rec.Volume = models.Int64Value(d.Volume)
		rec.FeedTimestamp = models.Int64Value(d.Timestamp)
	case stream.EventDepth:
		if ev.Depth == nil {
			return tickRecord{}, false
		}
		d := ev.Depth
		rec.Mode = models.ModeDepth.String()
		rec.Exchange = models.StringValue(d.Exchange)
		rec.Symbol = models.StringValue(d.Symbol)
		rec.Ltp = models.Float64Value(d.Ltp)
		rec.Open = models.Float64Value(d.Open)
		rec.High = models.Float64Value(d.High)
		rec.Low = models.Float64Value(d.Low)
		rec.Close = models.Float64Value(d.Close)
		rec.Volume = models.Int64Value(d.Volume)
		rec.FeedTimestamp = models.Int64Value(d.Timestamp)
		if bid, ok := d.BestBid(); ok {
			rec.BidPrice, rec.BidQuantity = bid.Price, bid.Quantity
		}
		if ask, ok := d.BestAsk(); ok {
			rec.AskPrice, rec.AskQuantity = ask.Price, ask.Quantity
		}
		rec.BidLevels = int32(len(d.Bids))
		rec.AskLevels = int32(len(d.Asks))
	default:
		return tickRecord{}, false
	}

	rec.Exchange = strings.ToUpper(strings.TrimSpace(rec.Exchange))
	rec.Symbol = strings.ToUpper(strings.TrimSpace(rec.Symbol))
	return rec, true
}
