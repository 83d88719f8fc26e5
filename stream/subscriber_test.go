package stream

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"openalgo/internal/channel"
	"openalgo/models"
)

func newTestSender(size int) (*CommandSender, *channel.Bounded[Command], chan struct{}) {
	commands := channel.NewBounded[Command]("test_commands", size)
	done := make(chan struct{})
	return &CommandSender{commands: commands, done: done}, commands, done
}

func TestSubscriberQueuesCommands(t *testing.T) {
	sender, commands, _ := newTestSender(16)
	sub := NewSubscriber(sender)
	ctx := context.Background()
	list := []models.Instrument{models.NewInstrument("NSE", "RELIANCE"), models.NewInstrument("BSE", "TCS")}

	calls := []func(context.Context, []models.Instrument) error{
		sub.SubscribeLTP, sub.UnsubscribeLTP,
		sub.SubscribeQuote, sub.UnsubscribeQuote,
		sub.SubscribeDepth, sub.UnsubscribeDepth,
	}
	for _, call := range calls {
		if err := call(ctx, list); err != nil {
			t.Fatalf("send: %v", err)
		}
	}
	if err := sub.Disconnect(ctx); err != nil {
		t.Fatalf("disconnect: %v", err)
	}

	want := []Command{
		CommandSubscribe(models.ModeLTP, list),
		CommandUnsubscribe(models.ModeLTP, list),
		CommandSubscribe(models.ModeQuote, list),
		CommandUnsubscribe(models.ModeQuote, list),
		CommandSubscribe(models.ModeDepth, list),
		CommandUnsubscribe(models.ModeDepth, list),
		CommandDisconnect(),
	}
	for i, w := range want {
		got := <-commands.C
		if !reflect.DeepEqual(got, w) {
			t.Fatalf("command %d = %+v, want %+v", i, got, w)
		}
	}
}

func TestSendAfterWriterExit(t *testing.T) {
	sender, _, done := newTestSender(1)
	close(done)

	err := NewSubscriber(sender).SubscribeLTP(context.Background(), nil)
	if !errors.Is(err, ErrChannelClosed) {
		t.Fatalf("expected ErrChannelClosed, got %v", err)
	}
}

func TestSendAfterClose(t *testing.T) {
	sender, _, _ := newTestSender(1)
	sender.Close()
	sender.Close()

	if err := sender.Send(context.Background(), CommandDisconnect()); !errors.Is(err, ErrChannelClosed) {
		t.Fatalf("expected ErrChannelClosed, got %v", err)
	}
}

func TestSendRespectsContextWhenFull(t *testing.T) {
	sender, _, _ := newTestSender(1)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := sender.Send(ctx, CommandDisconnect()); err != nil {
		t.Fatalf("first send: %v", err)
	}
	if err := sender.Send(ctx, CommandDisconnect()); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}
