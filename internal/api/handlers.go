package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/aarambhveda/counselor/internal/catalog"
	"github.com/aarambhveda/counselor/internal/storage/sqlite"
	"github.com/aarambhveda/counselor/pkg/logger"
	"github.com/bytedance/sonic"
	"github.com/go-chi/chi/v5"
)

// IssuanceStore records and lists credential issuances
type IssuanceStore interface {
	Record(ctx context.Context, clientAddr string, issueErr error) (*sqlite.TokenIssuance, error)
	List(ctx context.Context, limit, offset int) ([]sqlite.TokenIssuance, error)
}

// Handler contains the catalog and admin API handlers
type Handler struct {
	catalog   *catalog.Service
	issuances IssuanceStore
	logger    *logger.Logger
}

// NewHandler creates a new API handler
func NewHandler(catalogService *catalog.Service, issuances IssuanceStore, logger *logger.Logger) *Handler {
	return &Handler{
		catalog:   catalogService,
		issuances: issuances,
		logger:    logger.Named("api-handler"),
	}
}

// CollegeView is a college plus its display-formatted money fields
type CollegeView struct {
	catalog.College
	AvgFeesText        string `json:"avg_fees_text"`
	AvgPackageText     string `json:"avg_package_text"`
	HighestPackageText string `json:"highest_package_text"`
}

func newCollegeView(c catalog.College) CollegeView {
	return CollegeView{
		College:            c,
		AvgFeesText:        catalog.FormatCurrency(c.AvgFees),
		AvgPackageText:     catalog.FormatCurrency(c.AvgPackage),
		HighestPackageText: catalog.FormatCurrency(c.HighestPackage),
	}
}

func collegeViews(cs []catalog.College) []CollegeView {
	out := make([]CollegeView, 0, len(cs))
	for _, c := range cs {
		out = append(out, newCollegeView(c))
	}
	return out
}

// Health reports liveness
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"colleges": h.catalog.Count(),
	})
}

// ListColleges returns colleges filtered by search, category, state, type and sort
func (h *Handler) ListColleges(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := catalog.Query{
		Search:   q.Get("search"),
		Category: q.Get("category"),
		States:   splitList(q["state"]),
		Types:    splitList(q["type"]),
		SortBy:   q.Get("sort"),
	}

	colleges := h.catalog.Filter(query)
	h.logger.Debug("Listed colleges",
		logger.String("search", query.Search),
		logger.String("category", query.Category),
		logger.Int("count", len(colleges)))

	h.writeJSON(w, http.StatusOK, map[string]any{
		"count":    len(colleges),
		"colleges": collegeViews(colleges),
	})
}

// TopColleges returns the highest rated colleges
func (h *Handler) TopColleges(w http.ResponseWriter, r *http.Request) {
	limit := 6
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}
	h.writeJSON(w, http.StatusOK, collegeViews(h.catalog.Top(limit)))
}

// GetCollege returns one college
func (h *Handler) GetCollege(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	c, err := h.catalog.Get(id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			http.Error(w, "College not found", http.StatusNotFound)
			return
		}
		h.logger.Error("Failed to get college", logger.String("id", id), logger.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, newCollegeView(c))
}

// CompareColleges returns up to the compare limit of colleges side by side
func (h *Handler) CompareColleges(w http.ResponseWriter, r *http.Request) {
	ids := splitList(r.URL.Query()["ids"])
	colleges, err := h.catalog.Compare(ids)
	switch {
	case errors.Is(err, catalog.ErrTooMany):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case errors.Is(err, catalog.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	case err != nil:
		h.logger.Error("Failed to compare colleges", logger.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"limit":    h.catalog.CompareLimit(),
		"colleges": collegeViews(colleges),
	})
}

// ListCourses returns the course categories
func (h *Handler) ListCourses(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.catalog.Courses())
}

// ListExams returns the entrance exams
func (h *Handler) ListExams(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.catalog.Exams())
}

// GetFilters returns the values the college list can be filtered on
func (h *Handler) GetFilters(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.catalog.Filters())
}

// ListTokenIssuances returns the credential issuance audit, newest first
func (h *Handler) ListTokenIssuances(w http.ResponseWriter, r *http.Request) {
	if h.issuances == nil {
		http.Error(w, "Issuance audit disabled", http.StatusServiceUnavailable)
		return
	}

	limit, err := intParam(r, "limit", 50)
	if err != nil {
		http.Error(w, "Invalid limit", http.StatusBadRequest)
		return
	}
	offset, err := intParam(r, "offset", 0)
	if err != nil {
		http.Error(w, "Invalid offset", http.StatusBadRequest)
		return
	}

	records, err := h.issuances.List(r.Context(), limit, offset)
	if err != nil {
		h.logger.Error("Failed to list token issuances", logger.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []sqlite.TokenIssuance{}
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"limit":     limit,
		"offset":    offset,
		"issuances": records,
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	writeJSON(w, status, v, h.logger)
}

func writeJSON(w http.ResponseWriter, status int, v any, log *logger.Logger) {
	data, err := sonic.Marshal(v)
	if err != nil {
		log.Error("Failed to encode response", logger.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		log.Debug("Failed to write response", logger.Error(err))
	}
}

// splitList accepts both repeated parameters and comma separated values
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func intParam(r *http.Request, name string, def int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, errors.New("invalid " + name)
	}
	return n, nil
}
