package service

import (
	"context"
	"strings"

	"github.com/d60-Lab/tierlist/config"
	"github.com/d60-Lab/tierlist/internal/model"
	"github.com/d60-Lab/tierlist/internal/repository"
	"github.com/d60-Lab/tierlist/pkg/apperr"
)

// PushService 订阅管理
type PushService interface {
	// PublicKey returns the VAPID public key, or "" when push is off.
	PublicKey() string
	Subscribe(ctx context.Context, userID, endpoint, p256dh, auth string) error
	Unsubscribe(ctx context.Context, userID, endpoint string) error
	Subscribed(ctx context.Context, userID string) (bool, error)
}

type pushService struct {
	subs      repository.PushSubscriptionRepository
	publicKey string
}

func NewPushService(subs repository.PushSubscriptionRepository, cfg config.PushConfig) PushService {
	key := ""
	if cfg.Enabled() {
		key = cfg.VAPIDPublicKey
	}
	return &pushService{subs: subs, publicKey: key}
}

func (s *pushService) PublicKey() string { return s.publicKey }

func (s *pushService) Subscribe(ctx context.Context, userID, endpoint, p256dh, auth string) error {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" || p256dh == "" || auth == "" {
		return apperr.Validation("invalid subscription data")
	}
	return s.subs.Upsert(ctx, &model.PushSubscription{
		Endpoint: endpoint,
		UserID:   userID,
		P256dh:   p256dh,
		Auth:     auth,
	})
}

func (s *pushService) Unsubscribe(ctx context.Context, userID, endpoint string) error {
	if strings.TrimSpace(endpoint) == "" {
		return apperr.Validation("endpoint is required")
	}
	_, err := s.subs.DeleteByEndpoint(ctx, userID, strings.TrimSpace(endpoint))
	return err
}

func (s *pushService) Subscribed(ctx context.Context, userID string) (bool, error) {
	return s.subs.ExistsForUser(ctx, userID)
}
