package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"furnistore/storefront/internal/config"
	"furnistore/storefront/internal/domain"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.uber.org/ratelimit"
	"resty.dev/v3"
)

type StorefrontClient interface {
	GetProducts(ctx context.Context) ([]domain.Product, error)
	GetFeatured(ctx context.Context, limit int) ([]domain.Product, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	Login(ctx context.Context, creds domain.Credentials) (string, error)
	Signup(ctx context.Context, req domain.SignupRequest) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, req domain.PasswordReset) error
	ChangePassword(ctx context.Context, token string, req domain.PasswordChange) error
	PlaceOrder(ctx context.Context, token string, req domain.OrderRequest) (*domain.Order, error)
	GetCustomerOrders(ctx context.Context, token string) ([]domain.Order, error)
	Subscribe(ctx context.Context, email string) error
	Contact(ctx context.Context, msg domain.ContactMessage) error
	Close() error
}

type storefrontClient struct {
	rl         ratelimit.Limiter
	baseURL    string
	httpClient *resty.Client
}

func NewStorefrontClient(cfg config.APIConfig) StorefrontClient {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(timeout).
		SetRetryCount(cfg.MaxRetries).
		SetRetryWaitTime(500*time.Millisecond).
		SetRetryMaxWaitTime(5*time.Second).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", cfg.UserAgent)

	rl := ratelimit.NewUnlimited()
	if cfg.MaxRequestsPerSecond > 0 {
		rl = ratelimit.New(cfg.MaxRequestsPerSecond)
	}

	return &storefrontClient{
		rl:         rl,
		baseURL:    cfg.BaseURL,
		httpClient: client,
	}
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
}

type emailRequest struct {
	Email string `json:"email"`
}

func (c *storefrontClient) GetProducts(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	if err := c.do(ctx, "get products", c.request(ctx), "GET", "/products", &products); err != nil {
		return nil, err
	}

	normalizeProducts(products)
	log.Debugf("Fetched %d products", len(products))
	return products, nil
}

func (c *storefrontClient) GetFeatured(ctx context.Context, limit int) ([]domain.Product, error) {
	req := c.request(ctx).SetQueryParam("limit", strconv.Itoa(limit))

	var products []domain.Product
	if err := c.do(ctx, "get featured products", req, "GET", "/products", &products); err != nil {
		return nil, err
	}

	normalizeProducts(products)
	return products, nil
}

func (c *storefrontClient) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	req := c.request(ctx).SetPathParam("id", strconv.FormatInt(id, 10))

	var product domain.Product
	if err := c.do(ctx, "get product", req, "GET", "/products/{id}", &product); err != nil {
		return nil, err
	}

	product.Description = plainDescription(product.Description)
	return &product, nil
}

func (c *storefrontClient) Login(ctx context.Context, creds domain.Credentials) (string, error) {
	req := c.request(ctx).SetBody(creds)

	var resp loginResponse
	if err := c.do(ctx, "login", req, "POST", "/auth/login", &resp); err != nil {
		return "", err
	}
	if resp.AccessToken == "" {
		return "", &FetchError{Op: "login", StatusCode: 200, Err: fmt.Errorf("response carried no access_token")}
	}
	return resp.AccessToken, nil
}

func (c *storefrontClient) Signup(ctx context.Context, signup domain.SignupRequest) error {
	req := c.request(ctx).SetBody(signup)
	return c.do(ctx, "signup", req, "POST", "/auth/signup", nil)
}

func (c *storefrontClient) ForgotPassword(ctx context.Context, email string) error {
	req := c.request(ctx).SetBody(emailRequest{Email: email})
	return c.do(ctx, "forgot password", req, "POST", "/auth/forgot-password", nil)
}

func (c *storefrontClient) ResetPassword(ctx context.Context, reset domain.PasswordReset) error {
	req := c.request(ctx).SetBody(reset)
	return c.do(ctx, "reset password", req, "POST", "/auth/reset-password", nil)
}

func (c *storefrontClient) ChangePassword(ctx context.Context, token string, change domain.PasswordChange) error {
	req := c.request(ctx).
		SetAuthToken(token).
		SetBody(change)
	return c.do(ctx, "change password", req, "POST", "/auth/change-password", nil)
}

func (c *storefrontClient) PlaceOrder(ctx context.Context, token string, order domain.OrderRequest) (*domain.Order, error) {
	req := c.request(ctx).
		SetAuthToken(token).
		SetHeader("Idempotency-Key", uuid.NewString()).
		SetBody(order)

	var placed domain.Order
	if err := c.do(ctx, "place order", req, "POST", "/orders", &placed); err != nil {
		return nil, err
	}

	log.Debugf("Placed order %d with %d lines", placed.ID, len(order.Items))
	return &placed, nil
}

func (c *storefrontClient) GetCustomerOrders(ctx context.Context, token string) ([]domain.Order, error) {
	req := c.request(ctx).SetAuthToken(token)

	var orders []domain.Order
	if err := c.do(ctx, "get customer orders", req, "GET", "/customer/orders", &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (c *storefrontClient) Subscribe(ctx context.Context, email string) error {
	req := c.request(ctx).SetBody(emailRequest{Email: email})
	return c.do(ctx, "subscribe", req, "POST", "/subscribers", nil)
}

func (c *storefrontClient) Contact(ctx context.Context, msg domain.ContactMessage) error {
	req := c.request(ctx).SetBody(msg)
	return c.do(ctx, "contact", req, "POST", "/contact", nil)
}

func (c *storefrontClient) Close() error {
	return c.httpClient.Close()
}

func (c *storefrontClient) request(ctx context.Context) *resty.Request {
	return c.httpClient.R().SetContext(ctx)
}

// do paces and sends req, turning every failure into a *FetchError and
// decoding a successful body into out when out is non-nil.
func (c *storefrontClient) do(ctx context.Context, op string, req *resty.Request, method, path string, out any) error {
	c.rl.Take()

	resp, err := req.Execute(method, path)
	if err != nil {
		if ctx.Err() != nil {
			return &FetchError{Op: op, Err: fmt.Errorf("request cancelled: %w", ctx.Err())}
		}
		return &FetchError{Op: op, Err: err}
	}

	body := resp.String()
	if resp.IsError() {
		log.Debugf("%s %s returned %s", method, path, resp.Status())
		return &FetchError{
			Op:         op,
			StatusCode: resp.StatusCode(),
			Message:    parseErrorMessage(body),
		}
	}

	if out == nil || body == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(body), out); err != nil {
		return &FetchError{
			Op:         op,
			StatusCode: resp.StatusCode(),
			Err:        fmt.Errorf("failed to decode response: %w", err),
		}
	}
	return nil
}

func normalizeProducts(products []domain.Product) {
	for i := range products {
		products[i].Description = plainDescription(products[i].Description)
	}
}
