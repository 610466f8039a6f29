package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/hamed0406/storewatch/internal/domain"
	apimw "github.com/hamed0406/storewatch/internal/httpapi/middleware"
	"github.com/hamed0406/storewatch/internal/report"
)

type Server struct {
	Logger  *zap.Logger
	Reports *report.Registry
}

func NewServer(l *zap.Logger, reg *report.Registry) *Server {
	return &Server{Logger: l, Reports: reg}
}

func (s *Server) Router(keys apimw.Keys, allowedOrigins []string, publicRPM, publicBurst, adminRPM, adminBurst int) http.Handler {
	r := chi.NewRouter()

	if len(allowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: allowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost},
			AllowedHeaders: []string{"Authorization", "X-API-Key", "Content-Type"},
		}))
	} else {
		r.Use(cors.AllowAll().Handler)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	// trigger: admin only
	r.Group(func(r chi.Router) {
		r.Use(apimw.RequireAdmin(keys))
		r.Use(apimw.RateLimit(adminRPM, adminBurst))
		r.Post("/api/reports", s.handleTriggerReport)
	})

	// poll + download: any key
	r.Group(func(r chi.Router) {
		r.Use(apimw.RequireAny(keys))
		r.Use(apimw.RateLimit(publicRPM, publicBurst))
		r.Get("/api/reports/{reportID}", s.handleGetReport)
		r.Get("/api/reports/{reportID}/download", s.handleDownloadReport)
	})

	return r
}

type triggerPayload struct {
	StoreID   string `json:"store_id"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

func (s *Server) handleTriggerReport(w http.ResponseWriter, r *http.Request) {
	var p triggerPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "bad payload")
		return
	}

	req := domain.ReportRequest{StoreID: domain.StoreID(p.StoreID)}
	if p.StartTime != "" {
		t, err := parseInstant(p.StartTime)
		if err != nil {
			writeError(w, http.StatusBadRequest, "start_time must be ISO format, e.g. 2006-01-02T15:04:05")
			return
		}
		req.Start = &t
	}
	if p.EndTime != "" {
		t, err := parseInstant(p.EndTime)
		if err != nil {
			writeError(w, http.StatusBadRequest, "end_time must be ISO format, e.g. 2006-01-02T15:04:05")
			return
		}
		req.End = &t
	}

	id, err := s.Reports.Submit(req)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRange) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.Logger.Error("trigger_error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not queue report")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"report_id": id})
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "reportID")
	view, err := s.Reports.Poll(id)
	if err != nil {
		if errors.Is(err, domain.ErrReportNotFound) {
			writeError(w, http.StatusNotFound, "invalid report_id")
			return
		}
		s.Logger.Error("poll_error", zap.String("report_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "poll failed")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleDownloadReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "reportID")
	view, err := s.Reports.Poll(id)
	if err != nil {
		if errors.Is(err, domain.ErrReportNotFound) {
			writeError(w, http.StatusNotFound, "invalid report_id")
			return
		}
		s.Logger.Error("poll_error", zap.String("report_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "poll failed")
		return
	}
	if view.State != domain.StateCompleted {
		writeError(w, http.StatusConflict, "report not ready: "+string(view.State))
		return
	}
	if _, err := os.Stat(view.Path); err != nil {
		// COMPLETED but artifact gone (evicted or removed out of band)
		s.Logger.Warn("artifact_missing", zap.String("report_id", id), zap.String("path", view.Path))
		writeError(w, http.StatusInternalServerError, "report file not found")
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="`+id+filepath.Ext(view.Path)+`"`)
	http.ServeFile(w, r, view.Path)
}

// parseInstant accepts RFC 3339 and the zone-less ISO form the service has
// always taken; the latter is read as UTC.
func parseInstant(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02T15:04:05", s)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
