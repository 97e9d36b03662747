package recommend

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"cartCompanion/domain"
	"cartCompanion/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// EventLog is the append-only feedback store.
type EventLog interface {
	Append(ctx context.Context, event domain.FeedbackEvent) error
	// Recent returns at most limit events, newest first.
	Recent(ctx context.Context, limit int) ([]domain.FeedbackEvent, error)
}

const (
	defaultAcceptReason = "unknown"

	// appends outlive the request so a client disconnect does not drop feedback
	eventAppendTimeout = 2 * time.Second
)

// Service validates requests, applies defaults, calls the engine and writes
// feedback events. Event log failures never fail a call.
type Service struct {
	engine   *Engine
	events   EventLog
	validate *validator.Validate
	now      func() time.Time
}

func NewService(engine *Engine, events EventLog) *Service {
	v := validator.New()
	v.RegisterTagNameFunc(jsonFieldName)
	return &Service{
		engine:   engine,
		events:   events,
		validate: v,
		now:      time.Now,
	}
}

func (s *Service) Engine() *Engine { return s.engine }

func (s *Service) Recommend(ctx context.Context, req domain.RecommendationRequest) (domain.RecommendationResponse, error) {
	q, rc, err := s.prepare(ctx, &req)
	if err != nil {
		RecommendRequestsTotal.WithLabelValues("invalid").Inc()
		return domain.RecommendationResponse{}, err
	}

	resp, err := s.engine.Recommend(ctx, q, rc)
	if err != nil {
		RecommendRequestsTotal.WithLabelValues("error").Inc()
		return domain.RecommendationResponse{}, err
	}
	RecommendRequestsTotal.WithLabelValues("ok").Inc()

	now := s.now()
	for _, rec := range resp.Recommendations {
		s.appendEvent(ctx, "impression", domain.FeedbackEvent{
			EventID:           uuid.NewString(),
			UserID:            req.UserID,
			RestaurantID:      req.RestaurantID,
			RestaurantCuisine: rc.Cuisine,
			City:              req.City,
			TimeOfDay:         req.TimeOfDay,
			CartItemIDs:       req.CartItemIDs,
			ItemID:            rec.ItemID,
			Reason:            string(rec.Reason),
			Accepted:          false,
			CreatedAt:         now,
		})
	}
	return resp, nil
}

// Explain is Recommend without side effects, returning score components.
func (s *Service) Explain(ctx context.Context, req domain.RecommendationRequest) ([]domain.DebugRecommendation, error) {
	q, rc, err := s.prepare(ctx, &req)
	if err != nil {
		return nil, err
	}
	return s.engine.Explain(ctx, q, rc)
}

func (s *Service) Accept(ctx context.Context, req domain.AcceptRequest) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}
	if err := s.check(&req); err != nil {
		return err
	}
	reason := req.Reason
	if reason == "" {
		reason = defaultAcceptReason
	}
	cuisine := req.RestaurantCuisine
	if cuisine == "" {
		cuisine = s.engine.cfg.DefaultCuisine
	}

	if _, ok := s.engine.catalog.Item(req.ItemID); ok {
		s.engine.LogAccept(req.ItemID)
	} else {
		logger.Warn("accept for unknown item, bandit not updated",
			"trace_id", TraceIDFromContext(ctx),
			"item_id", req.ItemID,
		)
	}

	s.appendEvent(ctx, "accept", domain.FeedbackEvent{
		EventID:           uuid.NewString(),
		UserID:            req.UserID,
		RestaurantID:      req.RestaurantID,
		RestaurantCuisine: cuisine,
		City:              req.City,
		TimeOfDay:         req.TimeOfDay,
		CartItemIDs:       req.CartItemIDs,
		ItemID:            req.ItemID,
		Reason:            reason,
		Accepted:          true,
		CreatedAt:         s.now(),
	})

	logger.Info("recommendation accepted",
		"trace_id", TraceIDFromContext(ctx),
		"user_id", req.UserID,
		"item_id", req.ItemID,
		"reason", reason,
	)
	return nil
}

func (s *Service) prepare(ctx context.Context, req *domain.RecommendationRequest) (Query, domain.RestaurantContext, error) {
	if err := ctx.Err(); err != nil {
		return Query{}, domain.RestaurantContext{}, fmt.Errorf("context error: %w", err)
	}
	if err := s.check(req); err != nil {
		return Query{}, domain.RestaurantContext{}, err
	}

	cfg := s.engine.cfg
	topK := cfg.TopK
	if req.TopK != nil {
		topK = *req.TopK
	}
	cuisine := req.RestaurantCuisine
	if cuisine == "" {
		cuisine = cfg.DefaultCuisine
	}
	price := req.RestaurantPriceLevel
	if price == "" {
		price = cfg.DefaultPriceLevel
	}

	q := Query{
		UserID:    req.UserID,
		TimeOfDay: req.TimeOfDay,
		Cart:      req.CartItemIDs,
		TopK:      topK,
	}
	rc := domain.RestaurantContext{
		RestaurantID: req.RestaurantID,
		Cuisine:      cuisine,
		PriceLevel:   price,
		City:         req.City,
	}
	return q, rc, nil
}

// check maps the first failed required rule to a MissingFieldError named by its JSON key.
func (s *Service) check(req any) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return &domain.MissingFieldError{Field: verrs[0].Field()}
	}
	return fmt.Errorf("validate request: %w", err)
}

func (s *Service) appendEvent(ctx context.Context, kind string, ev domain.FeedbackEvent) {
	if s.events == nil {
		return
	}
	appendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), eventAppendTimeout)
	defer cancel()
	if err := s.events.Append(appendCtx, ev); err != nil {
		EventLogFailuresTotal.WithLabelValues(kind).Inc()
		logger.Warn("failed to append feedback event",
			"trace_id", TraceIDFromContext(ctx),
			"kind", kind,
			"item_id", ev.ItemID,
			"error", err,
		)
	}
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return fld.Name
	}
	return name
}
