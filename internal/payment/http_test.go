package payment

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func noAuth(next http.Handler) http.Handler { return next }

func newPaymentServer(t *testing.T) (*httptest.Server, *MemStore) {
	t.Helper()

	store := NewMemStore()
	if err := store.Create(context.Background(), Coupon{ID: "c1", Code: "WELCOME10", Amount: 10}); err != nil {
		t.Fatalf("seed coupon: %v", err)
	}

	s := &Server{
		Coupons:  store,
		Provider: LocalIntentProvider{},
		Log:      zap.NewNop(),
	}
	ts := httptest.NewServer(s.Routes(noAuth))
	t.Cleanup(ts.Close)
	return ts, store
}

func TestCreateIntent(t *testing.T) {
	ts, _ := newPaymentServer(t)

	resp, err := http.Post(ts.URL+"/create", "application/json",
		strings.NewReader(`{"amount": 499.5}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body struct {
		Success      bool   `json:"success"`
		ClientSecret string `json:"client_secret"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Success || !strings.HasPrefix(body.ClientSecret, "pi_inr_secret_") {
		t.Fatalf("body = %+v", body)
	}
}

func TestCreateIntent_RejectsBadAmount(t *testing.T) {
	ts, _ := newPaymentServer(t)

	for _, payload := range []string{`{}`, `{"amount": 0}`, `{"amount": -5}`, `junk`} {
		resp, err := http.Post(ts.URL+"/create", "application/json", strings.NewReader(payload))
		if err != nil {
			t.Fatalf("post: %v", err)
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("payload %q: status = %d", payload, resp.StatusCode)
		}
	}
}

func TestApplyDiscount(t *testing.T) {
	ts, _ := newPaymentServer(t)

	resp, err := http.Get(ts.URL + "/discount?coupon=WELCOME10")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body struct {
		Success  bool    `json:"success"`
		Discount float64 `json:"discount"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Success || body.Discount != 10 {
		t.Fatalf("body = %+v", body)
	}
}

func TestApplyDiscount_InvalidCode(t *testing.T) {
	ts, _ := newPaymentServer(t)

	resp, err := http.Get(ts.URL + "/discount?coupon=NOPE")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body struct {
		Message string `json:"message"`
	}
	json.NewDecoder(resp.Body).Decode(&body)
	if body.Message != "Invalid Coupon Code" {
		t.Fatalf("message = %q", body.Message)
	}
}

func TestCouponLifecycle(t *testing.T) {
	ts, store := newPaymentServer(t)
	ctx := context.Background()

	resp, err := http.Post(ts.URL+"/coupon/new", "application/json",
		strings.NewReader(`{"coupon": "DIWALI25", "amount": 25}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var created struct {
		Message string `json:"message"`
	}
	json.NewDecoder(resp.Body).Decode(&created)
	if created.Message != "Coupon DIWALI25 Created Successfully" {
		t.Fatalf("message = %q", created.Message)
	}

	all, _ := store.All(ctx)
	if len(all) != 2 {
		t.Fatalf("coupon count = %d", len(all))
	}
	var id string
	for _, c := range all {
		if c.Code == "DIWALI25" {
			id = c.ID
		}
	}
	if id == "" {
		t.Fatalf("created coupon not found in store")
	}

	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/coupon/"+id, nil)
	dresp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	io.Copy(io.Discard, dresp.Body)
	dresp.Body.Close()
	if dresp.StatusCode != http.StatusOK {
		t.Fatalf("delete status = %d", dresp.StatusCode)
	}

	if _, ok, _ := store.ByCode(ctx, "DIWALI25"); ok {
		t.Fatalf("coupon survived delete")
	}
}

func TestDeleteCoupon_UnknownID(t *testing.T) {
	ts, _ := newPaymentServer(t)

	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/coupon/ghost", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body struct {
		Message string `json:"message"`
	}
	json.NewDecoder(resp.Body).Decode(&body)
	if body.Message != "Invalid Coupon ID" {
		t.Fatalf("message = %q", body.Message)
	}
}

func TestNewCoupon_RejectsIncompleteBody(t *testing.T) {
	ts, _ := newPaymentServer(t)

	for _, payload := range []string{`{"coupon": "X"}`, `{"amount": 5}`, `{}`} {
		resp, err := http.Post(ts.URL+"/coupon/new", "application/json", strings.NewReader(payload))
		if err != nil {
			t.Fatalf("post: %v", err)
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("payload %q: status = %d", payload, resp.StatusCode)
		}
	}
}
