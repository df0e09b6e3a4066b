package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Simplici0/feeworks/internal/batch"
	"github.com/Simplici0/feeworks/internal/pricing"
	"github.com/Simplici0/feeworks/internal/store"
)

const maxPreviewBody = 1 << 20

type itemReader interface {
	ListItems(ctx context.Context, statuses ...pricing.Status) ([]store.ItemRecord, error)
	GetItem(ctx context.Context, id int64) (store.ItemRecord, error)
}

type calculator interface {
	Run(ctx context.Context) (batch.Report, error)
	Preview(ctx context.Context, item pricing.CatalogItem) (pricing.ComputedFees, error)
}

type server struct {
	items  itemReader
	calc   calculator
	logger *zap.Logger
}

func (s *server) routes(limiter *rate.Limiter) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(s.rateLimit(limiter))
		r.Get("/items", s.handleItemsList)
		r.Get("/items/{id}", s.handleItemDetail)
		r.Post("/calculate", s.handleCalculate)
		r.Post("/preview", s.handlePreview)
	})
	return r
}

type breakdownResponse struct {
	ReferralFee      float64 `json:"referral_fee"`
	ClosingFee       float64 `json:"closing_fee"`
	FulfillmentFee   float64 `json:"fulfillment_fee"`
	PickPackFee      float64 `json:"pick_pack_fee"`
	FulfillmentTotal float64 `json:"fulfillment_total"`
	StorageFee       float64 `json:"storage_fee"`
	Tax              float64 `json:"tax"`
	ReturnFee        float64 `json:"return_fee"`
}

type totalsResponse struct {
	TotalFees             float64 `json:"total_fees"`
	NetProfit             float64 `json:"net_profit"`
	MarginPercent         float64 `json:"margin_percent"`
	ReturnProcessingCost  float64 `json:"return_processing_cost"`
	AdjustedNetProfit     float64 `json:"adjusted_net_profit"`
	AdjustedMarginPercent float64 `json:"adjusted_margin_percent"`
}

type itemResponse struct {
	ID            int64             `json:"id"`
	Identifier    string            `json:"identifier"`
	Title         string            `json:"title"`
	Price         float64           `json:"price"`
	Weight        float64           `json:"weight"`
	Dimensions    string            `json:"dimensions"`
	Category      string            `json:"category"`
	CategoryPath  string            `json:"category_path"`
	NodeID        string            `json:"node_id"`
	SizeTier      string            `json:"size_tier"`
	ServiceTier   string            `json:"service_tier"`
	ReturnPercent float64           `json:"return_percent"`
	Status        string            `json:"status"`
	ErrorMessage  string            `json:"error_message,omitempty"`
	FeeCategory   string            `json:"fee_category,omitempty"`
	Breakdown     breakdownResponse `json:"breakdown"`
	Totals        totalsResponse    `json:"totals"`
	CalculatedAt  *time.Time        `json:"calculated_at,omitempty"`
}

type diagnosticResponse struct {
	Stage   string `json:"stage"`
	Message string `json:"message"`
}

type previewResponse struct {
	Status         string               `json:"status"`
	ErrorMessage   string               `json:"error_message,omitempty"`
	FeeCategory    string               `json:"fee_category"`
	CategorySource string               `json:"category_source,omitempty"`
	ClosingSource  string               `json:"closing_source,omitempty"`
	Breakdown      breakdownResponse    `json:"breakdown"`
	Totals         totalsResponse       `json:"totals"`
	Diagnostics    []diagnosticResponse `json:"diagnostics"`
}

type previewRequest struct {
	Identifier    string  `json:"identifier"`
	Title         string  `json:"title"`
	Price         float64 `json:"price"`
	Weight        float64 `json:"weight"`
	Dimensions    string  `json:"dimensions"`
	Category      string  `json:"category"`
	CategoryPath  string  `json:"category_path"`
	NodeID        string  `json:"node_id"`
	SizeTier      string  `json:"size_tier"`
	ServiceTier   string  `json:"service_tier"`
	ReturnPercent float64 `json:"return_percent"`
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handleItemsList(w http.ResponseWriter, r *http.Request) {
	statuses, err := parseStatuses(r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	records, err := s.items.ListItems(r.Context(), statuses...)
	if err != nil {
		s.logger.Error("list items", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list items")
		return
	}

	out := make([]itemResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, toItemResponse(rec))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *server) handleItemDetail(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	rec, err := s.items.GetItem(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}
	if err != nil {
		s.logger.Error("get item", zap.Int64("item_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load item")
		return
	}
	writeJSON(w, http.StatusOK, toItemResponse(rec))
}

func (s *server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	report, err := s.calc.Run(r.Context())
	if err != nil {
		s.logger.Error("calculation run failed", zap.String("run_id", report.RunID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "calculation failed")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *server) handlePreview(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxPreviewBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	item, err := req.toItem()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	fees, err := s.calc.Preview(r.Context(), item)
	if err != nil {
		s.logger.Error("preview failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load fee catalog")
		return
	}

	diags := make([]diagnosticResponse, 0, len(fees.Diagnostics))
	for _, d := range fees.Diagnostics {
		diags = append(diags, diagnosticResponse{Stage: d.Stage, Message: d.Message})
	}
	writeJSON(w, http.StatusOK, previewResponse{
		Status:         string(fees.Status),
		ErrorMessage:   fees.ErrorMessage,
		FeeCategory:    fees.Category.Category,
		CategorySource: fees.Category.Source,
		ClosingSource:  fees.Closing.Source,
		Breakdown:      toBreakdownResponse(fees.Result.Breakdown),
		Totals:         toTotalsResponse(fees.Result.Totals),
		Diagnostics:    diags,
	})
}

func (req previewRequest) toItem() (pricing.CatalogItem, error) {
	if err := requireNonNegative(req.Weight, "weight"); err != nil {
		return pricing.CatalogItem{}, err
	}
	if err := requirePercent(req.ReturnPercent, "return_percent"); err != nil {
		return pricing.CatalogItem{}, err
	}
	switch req.SizeTier {
	case "", pricing.SizeStandard, pricing.SizeHeavy, pricing.SizeOversize:
	default:
		return pricing.CatalogItem{}, fmt.Errorf("size_tier must be one of %s, %s, %s", pricing.SizeStandard, pricing.SizeHeavy, pricing.SizeOversize)
	}

	return pricing.CatalogItem{
		Identifier:    strings.TrimSpace(req.Identifier),
		Title:         strings.TrimSpace(req.Title),
		Price:         req.Price,
		Weight:        req.Weight,
		Dimensions:    req.Dimensions,
		Category:      strings.TrimSpace(req.Category),
		CategoryPath:  strings.TrimSpace(req.CategoryPath),
		NodeID:        strings.TrimSpace(req.NodeID),
		SizeTier:      req.SizeTier,
		ServiceTier:   strings.TrimSpace(req.ServiceTier),
		ReturnPercent: req.ReturnPercent,
		Status:        pricing.StatusFetched,
	}, nil
}

func parseStatuses(raw string) ([]pricing.Status, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var out []pricing.Status
	for _, part := range strings.Split(raw, ",") {
		st := pricing.Status(strings.ToLower(strings.TrimSpace(part)))
		switch st {
		case pricing.StatusPending, pricing.StatusFetched, pricing.StatusCalculated, pricing.StatusError:
			out = append(out, st)
		default:
			return nil, fmt.Errorf("unknown status %q", part)
		}
	}
	return out, nil
}

func requireNonNegative(v float64, field string) error {
	if v < 0 {
		return fmt.Errorf("%s must be zero or greater", field)
	}
	return nil
}

func requirePercent(v float64, field string) error {
	if v < 0 || v > 100 {
		return fmt.Errorf("%s must be between 0 and 100", field)
	}
	return nil
}

func toItemResponse(rec store.ItemRecord) itemResponse {
	it := rec.Item
	return itemResponse{
		ID:            it.ID,
		Identifier:    it.Identifier,
		Title:         it.Title,
		Price:         it.Price,
		Weight:        it.Weight,
		Dimensions:    it.Dimensions,
		Category:      it.Category,
		CategoryPath:  it.CategoryPath,
		NodeID:        it.NodeID,
		SizeTier:      it.SizeTier,
		ServiceTier:   it.ServiceTier,
		ReturnPercent: it.ReturnPercent,
		Status:        string(it.Status),
		ErrorMessage:  it.ErrorMessage,
		FeeCategory:   rec.FeeCategory,
		Breakdown:     toBreakdownResponse(rec.Result.Breakdown),
		Totals:        toTotalsResponse(rec.Result.Totals),
		CalculatedAt:  rec.CalculatedAt,
	}
}

func toBreakdownResponse(b pricing.Breakdown) breakdownResponse {
	return breakdownResponse{
		ReferralFee:      b.ReferralFee,
		ClosingFee:       b.ClosingFee,
		FulfillmentFee:   b.FulfillmentFee,
		PickPackFee:      b.PickPackFee,
		FulfillmentTotal: b.FulfillmentTotal,
		StorageFee:       b.StorageFee,
		Tax:              b.Tax,
		ReturnFee:        b.ReturnFee,
	}
}

func toTotalsResponse(t pricing.Totals) totalsResponse {
	return totalsResponse{
		TotalFees:             t.TotalFees,
		NetProfit:             t.NetProfit,
		MarginPercent:         t.MarginPercent,
		ReturnProcessingCost:  t.ReturnProcessingCost,
		AdjustedNetProfit:     t.AdjustedNetProfit,
		AdjustedMarginPercent: t.AdjustedMarginPercent,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
