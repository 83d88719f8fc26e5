package stream

import (
	"context"

	"openalgo/models"
)

// Subscriber turns subscription calls into commands. It keeps no state and
// forwards instrument lists as given.
type Subscriber struct {
	sender *CommandSender
}

func NewSubscriber(sender *CommandSender) *Subscriber {
	return &Subscriber{sender: sender}
}

func (s *Subscriber) Subscribe(ctx context.Context, mode models.Mode, instruments []models.Instrument) error {
	return s.sender.Send(ctx, CommandSubscribe(mode, instruments))
}

func (s *Subscriber) Unsubscribe(ctx context.Context, mode models.Mode, instruments []models.Instrument) error {
	return s.sender.Send(ctx, CommandUnsubscribe(mode, instruments))
}

func (s *Subscriber) SubscribeLTP(ctx context.Context, instruments []models.Instrument) error {
	return s.Subscribe(ctx, models.ModeLTP, instruments)
}

func (s *Subscriber) UnsubscribeLTP(ctx context.Context, instruments []models.Instrument) error {
	return s.Unsubscribe(ctx, models.ModeLTP, instruments)
}

func (s *Subscriber) SubscribeQuote(ctx context.Context, instruments []models.Instrument) error {
	return s.Subscribe(ctx, models.ModeQuote, instruments)
}

func (s *Subscriber) UnsubscribeQuote(ctx context.Context, instruments []models.Instrument) error {
	return s.Unsubscribe(ctx, models.ModeQuote, instruments)
}

func (s *Subscriber) SubscribeDepth(ctx context.Context, instruments []models.Instrument) error {
	return s.Subscribe(ctx, models.ModeDepth, instruments)
}

func (s *Subscriber) UnsubscribeDepth(ctx context.Context, instruments []models.Instrument) error {
	return s.Unsubscribe(ctx, models.ModeDepth, instruments)
}

// Disconnect asks the writer to close the connection. It does not wait for
// the close to complete; watch the event channel for EventDisconnected.
func (s *Subscriber) Disconnect(ctx context.Context) error {
	return s.sender.Send(ctx, CommandDisconnect())
}
