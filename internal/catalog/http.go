package catalog

import (
	"context"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"ShopCore/internal/cache"
	"ShopCore/pkg/kit"
)

const (
	latestCount   = 5
	maxUploadSize = 10 << 20
)

type Server struct {
	Store    Store
	Photos   PhotoStore
	Cache    cache.Cache
	Inv      *cache.Invalidator
	Log      *zap.Logger
	PageSize int
}

func (s *Server) Routes(admin func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()

	r.Get("/latest", s.latest)
	r.Get("/all", s.search)
	r.Get("/categories", s.categories)
	r.Get("/{id}", s.get)

	r.With(admin).Post("/new", s.create)
	r.With(admin).Get("/admin-products", s.adminProducts)
	r.With(admin).Put("/{id}", s.update)
	r.With(admin).Delete("/{id}", s.delete)

	return r
}

// Revalidated on new/updated/deleted product and on new order.
func (s *Server) latest(w http.ResponseWriter, r *http.Request) {
	products, err := cache.Through(r.Context(), s.Cache, cache.LatestProducts,
		func(ctx context.Context) ([]Product, error) {
			return s.Store.Latest(ctx, latestCount)
		})
	if err != nil {
		s.fail(w, r, "latest products", err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "products": products})
}

func (s *Server) categories(w http.ResponseWriter, r *http.Request) {
	categories, err := cache.Through(r.Context(), s.Cache, cache.Categories,
		func(ctx context.Context) ([]string, error) {
			return s.Store.Categories(ctx)
		})
	if err != nil {
		s.fail(w, r, "categories", err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "categories": categories})
}

func (s *Server) adminProducts(w http.ResponseWriter, r *http.Request) {
	products, err := cache.Through(r.Context(), s.Cache, cache.AllProducts,
		func(ctx context.Context) ([]Product, error) {
			return s.Store.All(ctx)
		})
	if err != nil {
		s.fail(w, r, "admin products", err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "products": products})
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	product, err := cache.Through(r.Context(), s.Cache, cache.ProductKey(id),
		func(ctx context.Context) (Product, error) {
			p, ok, err := s.Store.Get(ctx, id)
			if err != nil {
				return Product{}, err
			}
			if !ok {
				return Product{}, kit.NotFound("Product not found.")
			}
			return p, nil
		})
	if err != nil {
		s.fail(w, r, "get product", err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "product": product})
}

// search is the one uncached product listing: its key space (query
// combinations) is unbounded.
func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	q := SearchQuery{
		Search:   r.URL.Query().Get("search"),
		Category: r.URL.Query().Get("category"),
		Sort:     r.URL.Query().Get("sort"),
		Page:     1,
		Limit:    s.PageSize,
	}
	if v := r.URL.Query().Get("price"); v != "" {
		q.MaxPrice, _ = strconv.ParseFloat(v, 64)
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 0 {
		q.Page = v
	}

	products, total, err := s.Store.Search(r.Context(), q)
	if err != nil {
		s.fail(w, r, "search products", err)
		return
	}

	totalPage := (total + q.Limit - 1) / q.Limit
	kit.WriteJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"products":  products,
		"totalPage": totalPage,
	})
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		kit.WriteErr(w, r, kit.Validation("Please enter photo"))
		return
	}

	file, header, err := r.FormFile("photo")
	if err != nil {
		kit.WriteErr(w, r, kit.Validation("Please enter photo"))
		return
	}
	defer file.Close()

	name := r.FormValue("name")
	category := r.FormValue("category")
	price, priceErr := strconv.ParseFloat(r.FormValue("price"), 64)
	stock, stockErr := strconv.Atoi(r.FormValue("stock"))
	if name == "" || category == "" || priceErr != nil || stockErr != nil {
		kit.WriteErr(w, r, kit.Validation("Please enter all fields"))
		return
	}

	path, err := s.Photos.Save(file, header)
	if err != nil {
		s.fail(w, r, "save photo", err)
		return
	}

	p := Product{
		ID:        uuid.NewString(),
		Name:      name,
		Price:     price,
		Stock:     stock,
		Category:  strings.ToLower(category),
		Photo:     path,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Store.Create(r.Context(), p); err != nil {
		_ = s.Photos.Remove(path)
		s.fail(w, r, "create product", err)
		return
	}

	if !s.invalidate(w, r, cache.Event{Product: true, Admin: true}) {
		return
	}
	kit.WriteJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "Product created successfully.",
	})
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	p, ok, err := s.Store.Get(r.Context(), id)
	if err != nil {
		s.fail(w, r, "get product", err)
		return
	}
	if !ok {
		kit.WriteErr(w, r, kit.NotFound("Product not found."))
		return
	}

	var (
		file   multipart.File
		header *multipart.FileHeader
	)
	if err := r.ParseMultipartForm(maxUploadSize); err == nil {
		if f, h, err := r.FormFile("photo"); err == nil {
			file, header = f, h
			defer f.Close()
		}
	}

	if file != nil {
		path, err := s.Photos.Save(file, header)
		if err != nil {
			s.fail(w, r, "save photo", err)
			return
		}
		_ = s.Photos.Remove(p.Photo)
		p.Photo = path
	}

	if v := r.FormValue("name"); v != "" {
		p.Name = v
	}
	if v := r.FormValue("category"); v != "" {
		p.Category = strings.ToLower(v)
	}
	if v, err := strconv.ParseFloat(r.FormValue("price"), 64); err == nil {
		p.Price = v
	}
	if v, err := strconv.Atoi(r.FormValue("stock")); err == nil {
		p.Stock = v
	}

	if err := s.Store.Update(r.Context(), p); err != nil {
		s.fail(w, r, "update product", err)
		return
	}

	if !s.invalidate(w, r, cache.Event{Product: true, Admin: true, ProductIDs: []string{id}}) {
		return
	}
	kit.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Product updated successfully.",
	})
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	p, ok, err := s.Store.Get(r.Context(), id)
	if err != nil {
		s.fail(w, r, "get product", err)
		return
	}
	if !ok {
		kit.WriteErr(w, r, kit.NotFound("Product not found."))
		return
	}

	if err := s.Photos.Remove(p.Photo); err != nil && s.Log != nil {
		s.Log.Warn("remove photo failed", zap.Error(err), zap.String("path", p.Photo))
	}

	if err := s.Store.Delete(r.Context(), id); err != nil {
		s.fail(w, r, "delete product", err)
		return
	}

	if !s.invalidate(w, r, cache.Event{Product: true, Admin: true, ProductIDs: []string{id}}) {
		return
	}
	kit.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Product deleted successfully.",
	})
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
