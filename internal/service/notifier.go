package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/d60-Lab/tierlist/config"
	"github.com/d60-Lab/tierlist/internal/metrics"
	"github.com/d60-Lab/tierlist/internal/model"
	"github.com/d60-Lab/tierlist/internal/push"
	"github.com/d60-Lab/tierlist/internal/repository"
	"github.com/d60-Lab/tierlist/internal/tracing"
	"github.com/d60-Lab/tierlist/pkg/logger"
)

const notificationTitle = "New items to rank!"

// NotifyResult 单次批处理统计
type NotifyResult struct {
	Sent    int
	Skipped int
	Removed int
	Failed  int
}

// Notifier 推送"待投票条目"提醒，带去抖窗口。
//
// Triggers coalesce into a one-slot channel drained by a single worker, so
// batches never overlap and a subscription is stamped before the next batch
// reads it.
type Notifier struct {
	subs   repository.PushSubscriptionRepository
	items  repository.ItemRepository
	votes  repository.VoteRepository
	sender push.Sender
	window time.Duration
	url    string
	icon   string
	now    func() time.Time
	ch     chan struct{}
}

// NewNotifier returns a notifier; a nil sender disables delivery.
func NewNotifier(subs repository.PushSubscriptionRepository, items repository.ItemRepository, votes repository.VoteRepository, sender push.Sender, cfg config.PushConfig) *Notifier {
	window := cfg.DebounceWindow
	if window <= 0 {
		window = time.Hour
	}
	return &Notifier{
		subs:   subs,
		items:  items,
		votes:  votes,
		sender: sender,
		window: window,
		url:    cfg.URL,
		icon:   cfg.Icon,
		now:    func() time.Time { return time.Now().UTC() },
		ch:     make(chan struct{}, 1),
	}
}

// Enabled reports whether push delivery is configured.
func (n *Notifier) Enabled() bool { return n != nil && n.sender != nil }

// Start runs the worker and returns its stop function.
func (n *Notifier) Start() func(context.Context) error {
	stopCh := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-n.ch:
				ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
				if _, err := n.NotifyPending(ctx); err != nil {
					logger.Error("push notification batch failed", zap.Error(err))
				}
				cancel()
			case <-stopCh:
				return
			}
		}
	}()
	return func(ctx context.Context) error {
		close(stopCh)
		select {
		case <-done:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Trigger requests a batch without blocking. A pending request absorbs it.
func (n *Notifier) Trigger() {
	if !n.Enabled() {
		return
	}
	select {
	case n.ch <- struct{}{}:
	default:
		logger.Debug("notification batch already pending")
	}
}

// NotifyPending runs one batch synchronously over every eligible subscription.
func (n *Notifier) NotifyPending(ctx context.Context) (NotifyResult, error) {
	var res NotifyResult
	if !n.Enabled() {
		return res, nil
	}
	ctx, span := tracing.Tracer().Start(ctx, "notifier.NotifyPending")
	defer span.End()

	now := n.now()
	subs, err := n.subs.ListEligible(ctx, now.Add(-n.window))
	if err != nil {
		return res, fmt.Errorf("list eligible subscriptions: %w", err)
	}
	if len(subs) == 0 {
		return res, nil
	}
	total, err := n.items.Count(ctx)
	if err != nil {
		return res, fmt.Errorf("count items: %w", err)
	}

	for _, sub := range subs {
		n.notifyOne(ctx, sub, total, &res)
	}
	span.SetAttributes(
		attribute.Int("push.eligible", len(subs)),
		attribute.Int("push.sent", res.Sent),
		attribute.Int("push.removed", res.Removed),
		attribute.Int("push.failed", res.Failed),
	)
	return res, nil
}

func (n *Notifier) notifyOne(ctx context.Context, sub *model.PushSubscription, total int64, res *NotifyResult) {
	log := logger.With(zap.String("user_id", sub.UserID), zap.String("subscription_id", sub.ID))

	voted, err := n.votes.CountCounted(ctx, sub.UserID)
	if err != nil {
		res.Failed++
		metrics.PushNotificationsTotal.WithLabelValues("failed").Inc()
		log.Warn("count votes failed", zap.Error(err))
		return
	}
	unvoted := total - voted
	if unvoted <= 0 {
		res.Skipped++
		metrics.PushNotificationsTotal.WithLabelValues("skipped").Inc()
		return
	}

	err = n.sender.Send(ctx, push.Subscription{Endpoint: sub.Endpoint, P256dh: sub.P256dh, Auth: sub.Auth}, push.Message{
		Title: notificationTitle,
		Body:  PendingBody(unvoted),
		URL:   n.url,
		Icon:  n.icon,
	})
	if err != nil {
		var te *push.TransportError
		if errors.As(err, &te) && te.Permanent() {
			if derr := n.subs.Delete(ctx, sub.ID); derr != nil {
				log.Warn("delete expired subscription failed", zap.Error(derr))
			}
			res.Removed++
			metrics.PushNotificationsTotal.WithLabelValues("gone").Inc()
			log.Info("removed expired push subscription", zap.Int("status", te.StatusCode))
			return
		}
		res.Failed++
		metrics.PushNotificationsTotal.WithLabelValues("failed").Inc()
		log.Warn("push delivery failed", zap.Error(err))
		return
	}

	if err := n.subs.MarkNotified(ctx, sub.ID, n.now()); err != nil {
		log.Warn("stamp lastNotifiedAt failed", zap.Error(err))
	}
	res.Sent++
	metrics.PushNotificationsTotal.WithLabelValues("sent").Inc()
}

// PendingBody renders the notification body, e.g. "1 item waiting for your
// vote" or "1,204 items waiting for your vote".
func PendingBody(count int64) string {
	noun := "items"
	if count == 1 {
		noun = "item"
	}
	return fmt.Sprintf("%s %s waiting for your vote", humanize.Comma(count), noun)
}
