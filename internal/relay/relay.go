package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/samvad-hq/unzer-simple/internal/logger"
	"github.com/samvad-hq/unzer-simple/internal/storage"
	"github.com/samvad-hq/unzer-simple/pkg/publishers"
	"github.com/samvad-hq/unzer-simple/pkg/unzer"
)

const maxNotificationBytes = 64 << 10

// Service receives Unzer webhook notifications, resolves the resource each
// one points at and forwards it to the configured publishers.
type Service struct {
	webhooks WebhookAPI
	fanout   EventPublisher
	store    storage.Store
	log      logger.Logger
}

// NewService wires the relay. A nil store disables de-duplication.
func NewService(webhooks WebhookAPI, fanout EventPublisher, store storage.Store, log logger.Logger) (*Service, error) {
	if webhooks == nil {
		return nil, fmt.Errorf("webhook api must not be nil")
	}
	if fanout == nil {
		return nil, fmt.Errorf("event publisher must not be nil")
	}
	if store == nil {
		store, _ = storage.NewStore("none", "", storage.Options{})
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Service{webhooks: webhooks, fanout: fanout, store: store, log: log}, nil
}

// Router exposes the relay endpoints.
func (s *Service) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeStatus(w, http.StatusOK, "ok")
	})
	r.Post("/webhooks/unzer", s.HandleNotification)
	return r
}

// HandleNotification processes a single webhook call. Unzer redelivers on
// non-2xx answers, so failures release the claim for the next delivery.
func (s *Service) HandleNotification(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxNotificationBytes))
	if err != nil {
		writeStatus(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var n unzer.Notification
	if err := json.Unmarshal(body, &n); err != nil {
		writeStatus(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	n.RetrieveURL = strings.TrimSpace(n.RetrieveURL)
	if n.RetrieveURL == "" {
		writeStatus(w, http.StatusBadRequest, "retrieveUrl is required")
		return
	}
	if !strings.HasPrefix(n.RetrieveURL, s.webhooks.Endpoint()+"/") {
		s.log.WarnObj("notification rejected", "relay_foreign_retrieve_url", map[string]any{
			"event":        n.Event,
			"retrieve_url": n.RetrieveURL,
		})
		writeStatus(w, http.StatusBadRequest, "retrieveUrl is outside the api endpoint")
		return
	}

	key := notificationKey(n)
	claim, err := s.store.Claim(key)
	if err != nil {
		s.log.ErrorObj("notification store claim failed", "relay_store_error", map[string]any{
			"key":   key,
			"error": err.Error(),
		})
		writeStatus(w, http.StatusInternalServerError, "store unavailable")
		return
	}
	if !claim.Acquired {
		s.log.DebugObj("notification already claimed", "relay_duplicate", map[string]any{
			"key":    key,
			"status": claim.Status.String(),
		})
		if claim.Status == storage.StatusDelivered {
			writeStatus(w, http.StatusOK, "duplicate")
			return
		}
		// another delivery is being processed; Unzer retries non-2xx answers
		writeStatus(w, http.StatusConflict, "in progress")
		return
	}

	ctx := r.Context()
	resource, err := s.webhooks.ResolveRetrieveURL(ctx, n)
	if err != nil {
		s.log.ErrorObj("retrieve url resolution failed", "relay_resolve_error", map[string]any{
			"event":        n.Event,
			"retrieve_url": n.RetrieveURL,
			"attempt":      claim.Attempts,
			"error":        err.Error(),
		})
		s.release(key)
		writeStatus(w, http.StatusBadGateway, "resolve failed")
		return
	}

	evt := publishers.NewEvent(n.Event, n.PaymentID, n.RetrieveURL, resource.Body)
	delivered, err := s.fanout.Publish(ctx, evt)
	if err != nil {
		s.log.ErrorObj("notification publish failed", "relay_publish_error", map[string]any{
			"event":     n.Event,
			"delivered": delivered,
			"attempt":   claim.Attempts,
			"error":     err.Error(),
		})
		s.release(key)
		writeStatus(w, http.StatusBadGateway, "publish failed")
		return
	}

	if err := s.store.Complete(key); err != nil {
		s.log.ErrorObj("notification completion failed", "relay_store_error", map[string]any{
			"key":   key,
			"error": err.Error(),
		})
	}
	s.log.InfoObj("notification relayed", "relay_result", map[string]any{
		"event":      n.Event,
		"payment_id": n.PaymentID,
		"delivered":  delivered,
		"attempt":    claim.Attempts,
		"api_error":  resource.IsError(),
	})
	writeStatus(w, http.StatusOK, "relayed")
}

// EnsureRegistered registers publicURL for every event that is not yet
// registered and returns how many were created.
func (s *Service) EnsureRegistered(ctx context.Context, publicURL string, events []string) (int, error) {
	publicURL = strings.TrimSpace(publicURL)
	if publicURL == "" || len(events) == 0 {
		return 0, nil
	}

	created := 0
	for _, event := range events {
		existing, err := s.webhooks.IsRegistered(ctx, publicURL, event)
		if err != nil {
			return created, fmt.Errorf("check webhook %s: %w", event, err)
		}
		if existing != nil {
			s.log.DebugObj("webhook already registered", "relay_webhook", map[string]any{
				"id":    existing.ID,
				"event": event,
			})
			continue
		}

		resp, err := s.webhooks.Create(ctx, map[string]any{"url": publicURL, "event": event})
		if err != nil {
			return created, fmt.Errorf("register webhook %s: %w", event, err)
		}
		if resp.IsError() {
			return created, fmt.Errorf("register webhook %s: api error: %s", event, strings.TrimSpace(string(resp.Body)))
		}
		created++
		s.log.InfoObj("webhook registered", "relay_webhook", map[string]any{
			"event": event,
			"url":   publicURL,
		})
	}
	return created, nil
}

func (s *Service) release(key string) {
	if err := s.store.Release(key); err != nil {
		s.log.ErrorObj("notification release failed", "relay_store_error", map[string]any{
			"key":   key,
			"error": err.Error(),
		})
	}
}

func notificationKey(n unzer.Notification) string {
	return n.Event + "|" + n.RetrieveURL
}

func writeStatus(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": status})
}
