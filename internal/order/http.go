package order

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"ShopCore/internal/cache"
	"ShopCore/internal/catalog"
	"ShopCore/internal/user"
	"ShopCore/pkg/kit"
)

const maxCreateBody = 1 << 20

type Server struct {
	Store    Store
	Products catalog.Store
	Users    user.Store
	Cache    cache.Cache
	Inv      *cache.Invalidator
	Log      *zap.Logger
}

func (s *Server) Routes(admin func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()

	r.Post("/new", s.create)
	r.Get("/my", s.my)
	r.With(admin).Get("/all", s.all)
	r.Get("/{id}", s.get)
	r.With(admin).Put("/{id}", s.process)
	r.With(admin).Delete("/{id}", s.delete)

	return r
}

func (s *Server) my(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("id")

	orders, err := cache.Through(r.Context(), s.Cache, cache.MyOrders(userID),
		func(ctx context.Context) ([]Order, error) {
			return s.Store.ByUser(ctx, userID)
		})
	if err != nil {
		s.fail(w, r, "my orders", err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "orders": orders})
}

func (s *Server) all(w http.ResponseWriter, r *http.Request) {
	orders, err := cache.Through(r.Context(), s.Cache, cache.AllOrders,
		func(ctx context.Context) ([]Order, error) {
			out, err := s.Store.All(ctx)
			if err != nil {
				return nil, err
			}
			if err := s.populateUserNames(ctx, out); err != nil {
				return nil, err
			}
			return out, nil
		})
	if err != nil {
		s.fail(w, r, "all orders", err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "orders": orders})
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	o, err := cache.Through(r.Context(), s.Cache, cache.OrderKey(id),
		func(ctx context.Context) (Order, error) {
			o, ok, err := s.Store.Get(ctx, id)
			if err != nil {
				return Order{}, err
			}
			if !ok {
				return Order{}, kit.NotFound("Order not found")
			}
			if u, ok, err := s.Users.Get(ctx, o.UserID); err == nil && ok {
				o.UserName = u.Name
			}
			return o, nil
		})
	if err != nil {
		s.fail(w, r, "get order", err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "order": o})
}

type createReq struct {
	ShippingInfo    ShippingInfo `json:"shipping_info"`
	Items           []Item       `json:"order_items"`
	UserID          string       `json:"user"`
	Subtotal        float64      `json:"subtotal"`
	Tax             float64      `json:"tax"`
	ShippingCharges float64      `json:"shipping_charges"`
	Discount        float64      `json:"discount"`
	Total           float64      `json:"total"`
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	req, err := decodeCreateRequest(w, r)
	if err != nil {
		kit.WriteErr(w, r, kit.Validation("Please enter all fields"))
		return
	}
	if req.UserID == "" || len(req.Items) == 0 {
		kit.WriteErr(w, r, kit.Validation("Please enter all fields"))
		return
	}

	// Inventory first, all-or-nothing: a missing product aborts the whole
	// placement before any order row exists.
	reductions := make([]catalog.StockReduction, len(req.Items))
	for i, it := range req.Items {
		reductions[i] = catalog.StockReduction{ProductID: it.ProductID, Quantity: it.Quantity}
	}
	if err := s.Products.ReduceStock(r.Context(), reductions); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			kit.WriteErr(w, r, kit.NotFound("Product not found"))
			return
		}
		s.fail(w, r, "reduce stock", err)
		return
	}

	o := Order{
		ID:              uuid.NewString(),
		UserID:          req.UserID,
		ShippingInfo:    req.ShippingInfo,
		Items:           req.Items,
		Subtotal:        req.Subtotal,
		Tax:             req.Tax,
		ShippingCharges: req.ShippingCharges,
		Discount:        req.Discount,
		Total:           req.Total,
		Status:          StatusProcessing,
		CreatedAt:       time.Now().UTC(),
	}
	if err := s.Store.Create(r.Context(), o); err != nil {
		s.restock(r.Context(), reductions)
		s.fail(w, r, "create order", err)
		return
	}

	productIDs := make([]string, len(req.Items))
	for i, it := range req.Items {
		productIDs[i] = it.ProductID
	}
	ev := cache.Event{
		Product:    true,
		Order:      true,
		Admin:      true,
		UserID:     req.UserID,
		ProductIDs: productIDs,
	}
	if !s.invalidate(w, r, ev) {
		return
	}

	kit.WriteJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "Order Placed Successfully",
	})
}

func (s *Server) process(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	o, ok, err := s.Store.Get(r.Context(), id)
	if err != nil {
		s.fail(w, r, "get order", err)
		return
	}
	if !ok {
		kit.WriteErr(w, r, kit.NotFound("Order not found"))
		return
	}

	if err := s.Store.UpdateStatus(r.Context(), id, NextStatus(o.Status)); err != nil {
		s.fail(w, r, "update order status", err)
		return
	}

	ev := cache.Event{Order: true, Admin: true, UserID: o.UserID, OrderID: o.ID}
	if !s.invalidate(w, r, ev) {
		return
	}
	kit.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Order Processed Successfully",
	})
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	o, ok, err := s.Store.Get(r.Context(), id)
	if err != nil {
		s.fail(w, r, "get order", err)
		return
	}
	if !ok {
		kit.WriteErr(w, r, kit.NotFound("Order not found"))
		return
	}

	if err := s.Store.Delete(r.Context(), id); err != nil {
		s.fail(w, r, "delete order", err)
		return
	}

	ev := cache.Event{Order: true, Admin: true, UserID: o.UserID, OrderID: o.ID}
	if !s.invalidate(w, r, ev) {
		return
	}
	kit.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Order Deleted Successfully",
	})
}

// restock compensates an already-applied reduction when order persistence
// fails afterwards.
func (s *Server) restock(ctx context.Context, applied []catalog.StockReduction) {
	reversed := make([]catalog.StockReduction, len(applied))
	for i, it := range applied {
		reversed[i] = catalog.StockReduction{ProductID: it.ProductID, Quantity: -it.Quantity}
	}
	if err := s.Products.ReduceStock(ctx, reversed); err != nil && s.Log != nil {
		s.Log.Error("restock failed", zap.Error(err))
	}
}

func (s *Server) populateUserNames(ctx context.Context, orders []Order) error {
	names := map[string]string{}
	for i := range orders {
		name, ok := names[orders[i].UserID]
		if !ok {
			u, found, err := s.Users.Get(ctx, orders[i].UserID)
			if err != nil {
				return err
			}
			if found {
				name = u.Name
			}
			names[orders[i].UserID] = name
		}
		orders[i].UserName = name
	}
	return nil
}

func decodeCreateRequest(w http.ResponseWriter, r *http.Request) (createReq, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxCreateBody)
	defer func() { _ = r.Body.Close() }()

	dec := json.NewDecoder(r.Body)

	var req createReq
	if err := dec.Decode(&req); err != nil {
		return createReq{}, err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return createReq{}, errors.New("extra data after json object")
	}
	return req, nil
}

func (s *Server) invalidate(w http.ResponseWriter, r *http.Request, ev cache.Event) bool {
	if err := s.Inv.Invalidate(r.Context(), ev); err != nil {
		s.fail(w, r, "invalidate cache", err)
		return false
	}
	return true
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	if _, ok := err.(*kit.Error); !ok && s.Log != nil {
		s.Log.Error(op+" failed", zap.Error(err))
	}
	kit.WriteErr(w, r, err)
}
