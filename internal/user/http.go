package user

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"ShopCore/pkg/kit"
)

type Server struct {
	Store Store
	Log   *zap.Logger
}

func (s *Server) Routes(admin func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()

	r.Post("/new", s.create)
	r.With(admin).Get("/all", s.all)
	r.Get("/{id}", s.get)
	r.With(admin).Delete("/{id}", s.delete)

	return r
}

type createReq struct {
	ID     string    `json:"id"`
	Name   string    `json:"name"`
	Email  string    `json:"email"`
	Photo  string    `json:"photo"`
	Gender string    `json:"gender"`
	DOB    time.Time `json:"dob"`
}

// create is idempotent on id: a known user is just greeted again. Ids come
// from the identity provider on the client side, not from this service.
func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	var req createReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		kit.WriteErr(w, r, kit.Validation("Please add all fields"))
		return
	}

	if req.ID != "" {
		existing, ok, err := s.Store.Get(r.Context(), req.ID)
		if err != nil {
			s.fail(w, r, "get user", err)
			return
		}
		if ok {
			kit.WriteJSON(w, http.StatusOK, map[string]any{
				"success": true,
				"message": "Welcome, " + existing.Name,
			})
			return
		}
	}

	if req.ID == "" || req.Name == "" || req.Email == "" || req.Photo == "" ||
		req.Gender == "" || req.DOB.IsZero() {
		kit.WriteErr(w, r, kit.Validation("Please add all fields"))
		return
	}

	u := User{
		ID:        req.ID,
		Name:      req.Name,
		Email:     req.Email,
		Photo:     req.Photo,
		Gender:    req.Gender,
		DOB:       req.DOB,
		Role:      RoleUser,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Store.Create(r.Context(), u); err != nil {
		s.fail(w, r, "create user", err)
		return
	}

	kit.WriteJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "Welcome, " + u.Name,
	})
}

func (s *Server) all(w http.ResponseWriter, r *http.Request) {
	users, err := s.Store.All(r.Context())
	if err != nil {
		s.fail(w, r, "list users", err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "users": users})
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	u, ok, err := s.Store.Get(r.Context(), id)
	if err != nil {
		s.fail(w, r, "get user", err)
		return
	}
	if !ok {
		kit.WriteErr(w, r, kit.NotFound("Invalid Id"))
		return
	}
	kit.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "user": u})
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	_, ok, err := s.Store.Get(r.Context(), id)
	if err != nil {
		s.fail(w, r, "get user", err)
		return
	}
	if !ok {
		kit.WriteErr(w, r, kit.NotFound("Invalid Id"))
		return
	}

	if err := s.Store.Delete(r.Context(), id); err != nil {
		s.fail(w, r, "delete user", err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "User Deleted Successfully",
	})
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	if _, ok := err.(*kit.Error); !ok && s.Log != nil {
		s.Log.Error(op+" failed", zap.Error(err))
	}
	kit.WriteErr(w, r, err)
}
