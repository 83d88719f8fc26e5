package logger

import (
	"context"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

type channelStat struct {
	messages int64
	bytes    int64
}

var (
	errorsStream    int64
	errorsRecorder  int64
	warnsStream     int64
	warnsRecorder   int64
	framesRead      int64
	eventsEmitted   int64
	decodeErrors    int64
	commandsWritten int64
	recorderWrites  int64
	channels        sync.Map // map[string]*channelStat
)

func recordWarn(component string) {
	if strings.HasPrefix(component, "stream") {
		atomic.AddInt64(&warnsStream, 1)
	} else if strings.Contains(component, "writer") {
		atomic.AddInt64(&warnsRecorder, 1)
	}
}

func recordError(component string) {
	if strings.HasPrefix(component, "stream") {
		atomic.AddInt64(&errorsStream, 1)
	} else if strings.Contains(component, "writer") {
		atomic.AddInt64(&errorsRecorder, 1)
	}
}

// IncrementFrameRead counts an inbound text frame of the given size.
func IncrementFrameRead(size int) {
	atomic.AddInt64(&framesRead, 1)
	recordChannel("ws_inbound", size)
}

func IncrementEventEmitted() {
	atomic.AddInt64(&eventsEmitted, 1)
}

func IncrementDecodeError() {
	atomic.AddInt64(&decodeErrors, 1)
}

// IncrementCommandWritten counts an outbound command frame of the given size.
func IncrementCommandWritten(size int) {
	atomic.AddInt64(&commandsWritten, 1)
	recordChannel("ws_outbound", size)
}

func IncrementRecorderWrite(size int64) {
	atomic.AddInt64(&recorderWrites, 1)
	recordChannel("recorder_write", int(size))
}

// RecordChannelMessage counts one message of size bytes on a named channel
// of the runtime report.
func RecordChannelMessage(name string, size int) {
	recordChannel(name, size)
}

func recordChannel(name string, size int) {
	v, _ := channels.LoadOrStore(name, &channelStat{})
	cs := v.(*channelStat)
	atomic.AddInt64(&cs.messages, 1)
	atomic.AddInt64(&cs.bytes, int64(size))
}

// Snapshot returns the current value of every report counter.
func Snapshot() Fields {
	channelData := map[string]map[string]int64{}
	channels.Range(func(k, v any) bool {
		cs := v.(*channelStat)
		channelData[k.(string)] = map[string]int64{
			"messages": atomic.LoadInt64(&cs.messages),
			"bytes":    atomic.LoadInt64(&cs.bytes),
		}
		return true
	})

	return Fields{
		"errors_stream":    atomic.LoadInt64(&errorsStream),
		"errors_recorder":  atomic.LoadInt64(&errorsRecorder),
		"warns_stream":     atomic.LoadInt64(&warnsStream),
		"warns_recorder":   atomic.LoadInt64(&warnsRecorder),
		"frames_read":      atomic.LoadInt64(&framesRead),
		"events_emitted":   atomic.LoadInt64(&eventsEmitted),
		"decode_errors":    atomic.LoadInt64(&decodeErrors),
		"commands_written": atomic.LoadInt64(&commandsWritten),
		"recorder_writes":  atomic.LoadInt64(&recorderWrites),
		"goroutines":       runtime.NumGoroutine(),
		"channels":         channelData,
	}
}

// StartReport begins periodic logging of stream and channel statistics.
func StartReport(ctx context.Context, log *Log, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				logReport(log)
			}
		}
	}()
}

func logReport(log *Log) {
	log.WithComponent("report").WithFields(Snapshot()).Info("runtime report")
}
