package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"furnistore/storefront/internal/config"
	"furnistore/storefront/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) StorefrontClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c := NewStorefrontClient(config.APIConfig{
		BaseURL:    server.URL,
		Timeout:    5,
		MaxRetries: 0,
		UserAgent:  "storefront-test",
	})
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestGetProducts(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/products", r.URL.Path)
		assert.Equal(t, "storefront-test", r.Header.Get("User-Agent"))
		writeJSON(w, http.StatusOK, []map[string]any{
			{"id": 1, "title": "Arc lamp", "price": 89.5, "category": "Floor Lamps", "imageUrl": "/a.jpg",
				"description": "<p>Brass <b>arc</b> lamp</p><p>Dimmable</p>"},
			{"id": 2, "title": "Old chair", "price": 10, "category": "Chair", "archived": true},
		})
	})

	products, err := c.GetProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)

	assert.Equal(t, domain.Product{
		ID:          1,
		Title:       "Arc lamp",
		Price:       89.5,
		Description: "Brass arc lamp Dimmable",
		ImageURL:    "/a.jpg",
		Category:    "Floor Lamps",
	}, products[0])
	assert.True(t, products[1].Archived)
}

func TestGetFeatured(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "6", r.URL.Query().Get("limit"))
		writeJSON(w, http.StatusOK, []map[string]any{{"id": 3, "title": "Vase"}})
	})

	products, err := c.GetFeatured(context.Background(), 6)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, int64(3), products[0].ID)
}

func TestGetProduct(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/products/42" {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "Product not found"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"id": 42, "title": "Mirror", "category": "Mirrors"})
	})

	p, err := c.GetProduct(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, "Mirror", p.Title)

	_, err = c.GetProduct(context.Background(), 7)
	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, http.StatusNotFound, fetchErr.StatusCode)
	assert.Equal(t, "Product not found", fetchErr.Message)
}

func TestGetProducts_ServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	products, err := c.GetProducts(context.Background())
	assert.Nil(t, products)

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, "get products", fetchErr.Op)
	assert.Equal(t, http.StatusBadGateway, fetchErr.StatusCode)
	assert.False(t, fetchErr.IsNetwork())
}

func TestGetProducts_MalformedBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"not":"a list"}`))
	})

	_, err := c.GetProducts(context.Background())
	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, http.StatusOK, fetchErr.StatusCode)
}

func TestNetworkError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	c := NewStorefrontClient(config.APIConfig{BaseURL: url, Timeout: 2})
	defer c.Close()

	_, err := c.GetProducts(context.Background())
	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.True(t, fetchErr.IsNetwork())
	assert.NotNil(t, errors.Unwrap(fetchErr))
}

func TestLogin(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/login", r.URL.Path)

		var creds domain.Credentials
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		if creds.Password != "hunter22" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Wrong email or password"})
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"access_token": "tok-" + creds.Email})
	})

	token, err := c.Login(context.Background(), domain.Credentials{Email: "ana@example.com", Password: "hunter22"})
	require.NoError(t, err)
	assert.Equal(t, "tok-ana@example.com", token)

	_, err = c.Login(context.Background(), domain.Credentials{Email: "ana@example.com", Password: "nope"})
	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, http.StatusUnauthorized, fetchErr.StatusCode)
	assert.Equal(t, "Wrong email or password", fetchErr.Message)
}

func TestLogin_MissingToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{})
	})

	_, err := c.Login(context.Background(), domain.Credentials{Email: "a@b.co", Password: "x"})
	require.Error(t, err)
}

func TestSignup_ValidationMessages(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/signup", r.URL.Path)
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"message": []string{"email must be an email", "password is too short"},
		})
	})

	err := c.Signup(context.Background(), domain.SignupRequest{Name: "Ana", Email: "bad", Password: "x"})
	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, "email must be an email; password is too short", fetchErr.Message)
}

func TestPlaceOrder(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/orders", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("Idempotency-Key"))

		var req domain.OrderRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []domain.OrderLine{{ProductID: 1, Quantity: 2}}, req.Items)
		assert.Equal(t, "Berlin", req.ShippingInfo.City)

		writeJSON(w, http.StatusCreated, map[string]any{"id": 501, "status": "pending"})
	})

	order, err := c.PlaceOrder(context.Background(), "tok", domain.OrderRequest{
		Items:        []domain.OrderLine{{ProductID: 1, Quantity: 2}},
		ShippingInfo: domain.ShippingInfo{City: "Berlin"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(501), order.ID)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
}

func TestGetCustomerOrders(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Unauthorized"})
			return
		}
		writeJSON(w, http.StatusOK, []map[string]any{
			{"id": 1, "status": "shipped", "total": 99.5, "createdAt": "2025-05-01T10:00:00Z"},
		})
	})

	orders, err := c.GetCustomerOrders(context.Background(), "tok")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, domain.OrderStatusShipped, orders[0].Status)
	assert.Equal(t, 2025, orders[0].CreatedAt.Year())

	_, err = c.GetCustomerOrders(context.Background(), "stale")
	require.Error(t, err)
}

func TestSubscribe(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["email"] == "dup@example.com" {
			writeJSON(w, http.StatusConflict, map[string]string{"message": "Already subscribed"})
			return
		}
		w.WriteHeader(http.StatusCreated)
	})

	require.NoError(t, c.Subscribe(context.Background(), "new@example.com"))

	err := c.Subscribe(context.Background(), "dup@example.com")
	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, http.StatusConflict, fetchErr.StatusCode)
	assert.Equal(t, "Already subscribed", fetchErr.Message)
}

func TestParseErrorMessage(t *testing.T) {
	assert.Equal(t, "boom", parseErrorMessage(`{"message":"boom"}`))
	assert.Equal(t, "a; b", parseErrorMessage(`{"message":["a","b"]}`))
	assert.Equal(t, "", parseErrorMessage(`{"error":"x"}`))
	assert.Equal(t, "", parseErrorMessage(`<html>`))
	assert.Equal(t, "", parseErrorMessage(`{"message":42}`))
}

func TestForgotPassword(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/forgot-password", r.URL.Path)

		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["email"] != "ana@example.com" {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "No account with that email"})
			return
		}
		w.WriteHeader(http.StatusCreated)
	})

	require.NoError(t, c.ForgotPassword(context.Background(), "ana@example.com"))

	err := c.ForgotPassword(context.Background(), "who@example.com")
	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, "No account with that email", fetchErr.Message)
}

func TestResetPassword(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/reset-password", r.URL.Path)

		var reset domain.PasswordReset
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&reset))
		if reset.Token != "good" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		assert.Equal(t, "newsecret", reset.NewPassword)
		w.WriteHeader(http.StatusOK)
	})

	require.NoError(t, c.ResetPassword(context.Background(), domain.PasswordReset{Token: "good", NewPassword: "newsecret"}))

	err := c.ResetPassword(context.Background(), domain.PasswordReset{Token: "old", NewPassword: "newsecret"})
	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, http.StatusBadRequest, fetchErr.StatusCode)
}

func TestChangePassword(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/change-password", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		var change domain.PasswordChange
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&change))
		if change.OldPassword != "hunter22" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	require.NoError(t, c.ChangePassword(context.Background(), "tok", domain.PasswordChange{OldPassword: "hunter22", NewPassword: "hunter33"}))

	err := c.ChangePassword(context.Background(), "tok", domain.PasswordChange{OldPassword: "wrong", NewPassword: "hunter33"})
	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, http.StatusUnauthorized, fetchErr.StatusCode)
}

func TestContact(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/contact", r.URL.Path)

		var msg domain.ContactMessage
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&msg))
		assert.Equal(t, domain.ContactMessage{Name: "Ana", Email: "ana@example.com", Message: "Do you ship to Oslo?"}, msg)
		w.WriteHeader(http.StatusCreated)
	})

	require.NoError(t, c.Contact(context.Background(), domain.ContactMessage{
		Name: "Ana", Email: "ana@example.com", Message: "Do you ship to Oslo?",
	}))
}
