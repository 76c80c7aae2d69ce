package web

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"sermon-subscription-billing/internal/domain/model"
	"sermon-subscription-billing/internal/usecase"
)

// eventView flattens a WebhookEvent for JSON; the raw payload is included
// verbatim so audit tooling sees exactly what the provider sent.
type eventView struct {
	ID        string          `json:"id"`
	Source    string          `json:"source"`
	EventType string          `json:"event_type,omitempty"`
	Payload   json.RawMessage `json:"payload"`
	Processed bool            `json:"processed"`
	Error     *string         `json:"error,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

func toEventViews(events []*model.WebhookEvent) []eventView {
	out := make([]eventView, 0, len(events))
	for _, e := range events {
		payload := json.RawMessage(e.Payload)
		if !json.Valid(e.Payload) {
			quoted, _ := json.Marshal(string(e.Payload))
			payload = quoted
		}
		out = append(out, eventView{
			ID:        e.ID,
			Source:    e.Source,
			EventType: e.EventType,
			Payload:   payload,
			Processed: e.Processed,
			Error:     e.Error,
			CreatedAt: e.CreatedAt,
		})
	}
	return out
}

// eventsListHandler returns a page of the audit log, newest first.
// It accepts 'offset' and 'limit' query parameters.
func eventsListHandler(eventUC usecase.EventUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		if limit <= 0 {
			limit = 50
		}
		if offset < 0 {
			offset = 0
		}

		events, err := eventUC.ListRecent(ctx, limit, offset)
		if err != nil {
			http.Error(w, "Failed to list events", http.StatusInternalServerError)
			return
		}

		response := struct {
			Data   []eventView `json:"data"`
			Limit  int         `json:"limit"`
			Offset int         `json:"offset"`
		}{
			Data:   toEventViews(events),
			Limit:  limit,
			Offset: offset,
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(response)
	}
}

// eventsUnprocessedHandler lists events awaiting processing, for manual
// inspection of store failures.
func eventsUnprocessedHandler(eventUC usecase.EventUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		events, err := eventUC.ListUnprocessed(ctx, 0, limit)
		if err != nil {
			http.Error(w, "Failed to list unprocessed events", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(struct {
			Data []eventView `json:"data"`
		}{Data: toEventViews(events)})
	}
}

// eventsPurgeHandler deletes processed events older than 'retention_days'
// (default 90). The administrative purge is the only delete path.
func eventsPurgeHandler(eventUC usecase.EventUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		days, _ := strconv.Atoi(r.URL.Query().Get("retention_days"))
		if days <= 0 {
			days = 90
		}

		deleted, err := eventUC.Purge(ctx, time.Duration(days)*24*time.Hour)
		if err != nil {
			http.Error(w, "Failed to purge events", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(struct {
			Deleted int64 `json:"deleted"`
		}{Deleted: deleted})
	}
}

// statsHandler serves aggregate counters for dashboards.
func statsHandler(statsUC usecase.StatsUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		accounts, subsByStatus, unprocessed, err := statsUC.Totals(ctx)
		if err != nil {
			http.Error(w, "Failed to get totals", http.StatusInternalServerError)
			return
		}

		byStatus := make(map[string]int, len(subsByStatus))
		for k, v := range subsByStatus {
			byStatus[string(k)] = v
		}

		response := struct {
			TotalAccounts     int            `json:"total_accounts"`
			SubsByStatus      map[string]int `json:"subscriptions_by_status"`
			UnprocessedEvents int            `json:"unprocessed_events"`
		}{
			TotalAccounts:     accounts,
			SubsByStatus:      byStatus,
			UnprocessedEvents: unprocessed,
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(response)
	}
}
