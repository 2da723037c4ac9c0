package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/cinemax-auth/internal/config"
	"github.com/spec-kit/cinemax-auth/internal/events"
)

// AuditService records authentication events in the log and, when Redis is
// configured, in a capped Redis stream.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	client     *redis.Client
	cfg        config.RedisConfig
}

// NewAuditService creates the service. client may be nil.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger, client *redis.Client, cfg config.RedisConfig) *AuditService {
	return &AuditService{
		dispatcher: dispatcher,
		logger:     logger,
		client:     client,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventAccountRegistered, a.handleAccountRegistered)
	a.dispatcher.Subscribe(events.EventAccountLoggedIn, a.handleAccountLoggedIn)
}

func (a *AuditService) handleAccountRegistered(ctx context.Context, event events.Event) error {
	a.logger.Info("AccountRegistered",
		zap.Int64("account_id", event.AccountID),
		zap.String("user_type", string(event.UserType)),
		zap.String("username", event.Username))
	return a.appendToStream(ctx, event)
}

func (a *AuditService) handleAccountLoggedIn(ctx context.Context, event events.Event) error {
	a.logger.Info("AccountLoggedIn",
		zap.Int64("account_id", event.AccountID),
		zap.String("user_type", string(event.UserType)),
		zap.Any("payload", event.Payload))
	return a.appendToStream(ctx, event)
}

func (a *AuditService) appendToStream(ctx context.Context, event events.Event) error {
	if a.client == nil || a.cfg.EventsStream == "" {
		return nil
	}

	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("encode event payload: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: a.cfg.EventsStream,
		Values: map[string]interface{}{
			"id":         event.ID,
			"type":       string(event.Type),
			"account_id": strconv.FormatInt(event.AccountID, 10),
			"user_type":  string(event.UserType),
			"username":   event.Username,
			"timestamp":  event.Timestamp.Format(time.RFC3339Nano),
			"payload":    string(payload),
		},
	}
	if a.cfg.StreamMaxLen > 0 {
		args.MaxLen = a.cfg.StreamMaxLen
		args.Approx = true
	}

	if err := a.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("append auth event: %w", err)
	}
	return nil
}
