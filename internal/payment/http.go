package payment

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"ShopCore/pkg/kit"
)

const defaultCurrency = "inr"

type Server struct {
	Coupons  CouponStore
	Provider IntentProvider
	Log      *zap.Logger
}

func (s *Server) Routes(admin func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()

	r.Post("/create", s.createIntent)
	r.Get("/discount", s.applyDiscount)
	r.With(admin).Post("/coupon/new", s.newCoupon)
	r.With(admin).Get("/coupon/all", s.allCoupons)
	r.With(admin).Delete("/coupon/{id}", s.deleteCoupon)

	return r
}

func (s *Server) createIntent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount float64 `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Amount <= 0 {
		kit.WriteErr(w, r, kit.Validation("Please enter amount"))
		return
	}

	secret, err := s.Provider.CreateIntent(r.Context(), req.Amount, defaultCurrency)
	if err != nil {
		s.fail(w, r, "create payment intent", err)
		return
	}

	kit.WriteJSON(w, http.StatusCreated, map[string]any{
		"success":       true,
		"client_secret": secret,
	})
}

func (s *Server) applyDiscount(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("coupon")

	c, ok, err := s.Coupons.ByCode(r.Context(), code)
	if err != nil {
		s.fail(w, r, "coupon lookup", err)
		return
	}
	if !ok {
		kit.WriteErr(w, r, kit.Validation("Invalid Coupon Code"))
		return
	}

	kit.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "discount": c.Amount})
}

func (s *Server) newCoupon(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Coupon string  `json:"coupon"`
		Amount float64 `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Coupon == "" || req.Amount <= 0 {
		kit.WriteErr(w, r, kit.Validation("Please enter both coupon and amount"))
		return
	}

	c := Coupon{ID: uuid.NewString(), Code: req.Coupon, Amount: req.Amount}
	if err := s.Coupons.Create(r.Context(), c); err != nil {
		s.fail(w, r, "create coupon", err)
		return
	}

	kit.WriteJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "Coupon " + c.Code + " Created Successfully",
	})
}

func (s *Server) allCoupons(w http.ResponseWriter, r *http.Request) {
	coupons, err := s.Coupons.All(r.Context())
	if err != nil {
		s.fail(w, r, "list coupons", err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "coupons": coupons})
}

func (s *Server) deleteCoupon(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	deleted, err := s.Coupons.Delete(r.Context(), id)
	if err != nil {
		s.fail(w, r, "delete coupon", err)
		return
	}
	if !deleted {
		kit.WriteErr(w, r, kit.NotFound("Invalid Coupon ID"))
		return
	}

	kit.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Coupon Deleted Successfully",
	})
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	if _, ok := err.(*kit.Error); !ok && s.Log != nil {
		s.Log.Error(op+" failed", zap.Error(err))
	}
	kit.WriteErr(w, r, err)
}
