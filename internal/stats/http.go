package stats

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"ShopCore/internal/cache"
	"ShopCore/pkg/kit"
)

// Server exposes the four dashboard reads, each read-through-cached under
// its fixed key and invalidated only by the admin rule.
type Server struct {
	Agg   *Aggregator
	Cache cache.Cache
	Log   *zap.Logger
}

func (s *Server) Routes(admin func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(admin)

	r.Get("/stats", s.stats)
	r.Get("/pie", s.pie)
	r.Get("/bar", s.bar)
	r.Get("/line", s.line)

	return r
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	out, err := cache.Through(r.Context(), s.Cache, cache.AdminStats,
		func(ctx context.Context) (DashboardStats, error) {
			return s.Agg.Dashboard(ctx)
		})
	if err != nil {
		s.fail(w, r, "dashboard stats", err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "stats": out})
}

func (s *Server) pie(w http.ResponseWriter, r *http.Request) {
	out, err := cache.Through(r.Context(), s.Cache, cache.AdminPieCharts,
		func(ctx context.Context) (PieCharts, error) {
			return s.Agg.Pie(ctx)
		})
	if err != nil {
		s.fail(w, r, "pie charts", err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "charts": out})
}

func (s *Server) bar(w http.ResponseWriter, r *http.Request) {
	out, err := cache.Through(r.Context(), s.Cache, cache.AdminBarCharts,
		func(ctx context.Context) (BarCharts, error) {
			return s.Agg.Bar(ctx)
		})
	if err != nil {
		s.fail(w, r, "bar charts", err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "charts": out})
}

func (s *Server) line(w http.ResponseWriter, r *http.Request) {
	out, err := cache.Through(r.Context(), s.Cache, cache.AdminLineCharts,
		func(ctx context.Context) (LineCharts, error) {
			return s.Agg.Line(ctx)
		})
	if err != nil {
		s.fail(w, r, "line charts", err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "charts": out})
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	if _, ok := err.(*kit.Error); !ok && s.Log != nil {
		s.Log.Error(op+" failed", zap.Error(err))
	}
	kit.WriteErr(w, r, err)
}
