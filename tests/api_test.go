package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

const baseURL = "http://localhost:8080"

// TokenResponse структура ответа при получении пары токенов
type TokenResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// ProductResponse – структура товара в ответах каталога
type ProductResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Price string `json:"price"`
	Stock int    `json:"stock"`
}

// CartResponse – структура ответа от /api/cart/
type CartResponse struct {
	Items []struct {
		ID         int64  `json:"id"`
		Quantity   int    `json:"quantity"`
		TotalPrice string `json:"total_price"`
	} `json:"items"`
	GrandTotal string `json:"grand_total"`
}

// уникальное имя пользователя, чтобы повторные прогоны не упирались в дубликаты
func uniqueUsername(prefix string) string {
	return fmt.Sprintf("%s_%d", prefix, time.Now().UnixNano())
}

func signupUser(t *testing.T, username, password string) {
	reqBody := []byte(`{"username": "` + username + `", "email": "` + username + `@test.com", "password": "` + password + `"}`)
	resp, err := http.Post(baseURL+"/signup", "application/json", bytes.NewBuffer(reqBody))
	assert.NoError(t, err, "Signup request should not error")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode, "Expected 200 OK for valid signup")
}

func obtainToken(t *testing.T, username, password string) string {
	reqBody := []byte(`{"username": "` + username + `", "password": "` + password + `"}`)
	resp, err := http.Post(baseURL+"/api/token/", "application/json", bytes.NewBuffer(reqBody))
	assert.NoError(t, err, "Token request should not error")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode, "Expected 200 OK for valid credentials")

	var tokenResp TokenResponse
	err = json.NewDecoder(resp.Body).Decode(&tokenResp)
	assert.NoError(t, err, "Decoding token response should succeed")
	assert.NotEmpty(t, tokenResp.Access, "Access token should not be empty")
	return tokenResp.Access
}

func registerAndLogin(t *testing.T, prefix string) string {
	username := uniqueUsername(prefix)
	signupUser(t, username, "testpass123")
	return obtainToken(t, username, "testpass123")
}

func authorizedRequest(t *testing.T, method, url, token string, body []byte) *http.Response {
	var reader *bytes.Buffer
	if body != nil {
		reader = bytes.NewBuffer(body)
	} else {
		reader = bytes.NewBuffer(nil)
	}
	req, err := http.NewRequest(method, url, reader)
	assert.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{}
	resp, err := client.Do(req)
	assert.NoError(t, err)
	return resp
}

// сценарий с успешной регистрацией и входом
func TestSignupAndLogin(t *testing.T) {
	token := registerAndLogin(t, "signup_user")
	assert.NotEmpty(t, token, "token should be obtained")
}

// сценарий с повторной регистрацией под тем же именем
func TestSignupDuplicate(t *testing.T) {
	username := uniqueUsername("dup_user")
	signupUser(t, username, "testpass123")

	reqBody := []byte(`{"username": "` + username + `", "email": "` + username + `@test.com", "password": "testpass123"}`)
	resp, err := http.Post(baseURL+"/signup", "application/json", bytes.NewBuffer(reqBody))
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "expected 400 for duplicate username")
}

// сценарий входа с неверным паролем
func TestTokenInvalidCredentials(t *testing.T) {
	username := uniqueUsername("badpass_user")
	signupUser(t, username, "testpass123")

	reqBody := []byte(`{"username": "` + username + `", "password": "wrongpass"}`)
	resp, err := http.Post(baseURL+"/api/token/", "application/json", bytes.NewBuffer(reqBody))
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "expected 401 for wrong password")
}

// сценарий обновления пары токенов
func TestTokenRefresh(t *testing.T) {
	username := uniqueUsername("refresh_user")
	signupUser(t, username, "testpass123")

	reqBody := []byte(`{"username": "` + username + `", "password": "testpass123"}`)
	resp, err := http.Post(baseURL+"/api/token/", "application/json", bytes.NewBuffer(reqBody))
	assert.NoError(t, err)
	defer resp.Body.Close()

	var tokenResp TokenResponse
	err = json.NewDecoder(resp.Body).Decode(&tokenResp)
	assert.NoError(t, err)
	assert.NotEmpty(t, tokenResp.Refresh)

	refreshBody := []byte(`{"refresh": "` + tokenResp.Refresh + `"}`)
	resp2, err := http.Post(baseURL+"/api/token/refresh/", "application/json", bytes.NewBuffer(refreshBody))
	assert.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusOK, resp2.StatusCode, "expected 200 for valid refresh token")

	var newPair TokenResponse
	err = json.NewDecoder(resp2.Body).Decode(&newPair)
	assert.NoError(t, err)
	assert.NotEmpty(t, newPair.Access, "refreshed access token should not be empty")
}

// сценарий получения списка категорий без авторизации
func TestCategories(t *testing.T) {
	resp, err := http.Get(baseURL + "/api/categories/")
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode, "expected 200 OK for /api/categories/")
}

// сценарий поиска товаров с фильтром по цене
func TestProductSearch(t *testing.T) {
	resp, err := http.Get(baseURL + "/api/products/?q=laptop&max_price=2000&sort=price_asc")
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode, "expected 200 OK for product search")
}

// сценарий запроса несуществующей категории
func TestCategoryNotFound(t *testing.T) {
	resp, err := http.Get(baseURL + "/api/category/no-such-category/")
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "expected 404 for unknown category")
}

// сценарий доступа к корзине без токена
func TestCartUnauthorized(t *testing.T) {
	req, err := http.NewRequest("GET", baseURL+"/api/cart/", nil)
	assert.NoError(t, err)
	client := &http.Client{}
	resp, err := client.Do(req)
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "expected 401 unauthorized for missing token")
}

// находим любой товар с ненулевым остатком
func findAvailableProduct(t *testing.T) int64 {
	resp, err := http.Get(baseURL + "/api/products/")
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var products []ProductResponse
	err = json.NewDecoder(resp.Body).Decode(&products)
	assert.NoError(t, err)
	for _, p := range products {
		if p.Stock > 0 {
			return p.ID
		}
	}
	t.Fatal("no available products in catalog")
	return 0
}

// сценарий добавления товара в корзину и просмотра корзины
func TestAddToCartAndView(t *testing.T) {
	token := registerAndLogin(t, "cart_user")
	productID := findAvailableProduct(t)

	resp := authorizedRequest(t, "POST", fmt.Sprintf("%s/api/cart/add/%d/", baseURL, productID), token, []byte(`{"quantity": 1}`))
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode, "expected 200 for adding item to cart")

	cartResp := authorizedRequest(t, "GET", baseURL+"/api/cart/", token, nil)
	defer cartResp.Body.Close()
	assert.Equal(t, http.StatusOK, cartResp.StatusCode)

	var cart CartResponse
	err := json.NewDecoder(cartResp.Body).Decode(&cart)
	assert.NoError(t, err)
	assert.NotEmpty(t, cart.Items, "cart should contain the added item")
}

// сценарий добавления несуществующего товара
func TestAddToCartNotFound(t *testing.T) {
	token := registerAndLogin(t, "cart404_user")

	resp := authorizedRequest(t, "POST", baseURL+"/api/cart/add/999999/", token, nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "expected 404 for nonexistent product")
}

// сценарий оформления заказа: корзина закрывается, новая корзина пуста
func TestCheckoutFlow(t *testing.T) {
	token := registerAndLogin(t, "checkout_user")
	productID := findAvailableProduct(t)

	addResp := authorizedRequest(t, "POST", fmt.Sprintf("%s/api/cart/add/%d/", baseURL, productID), token, nil)
	defer addResp.Body.Close()
	assert.Equal(t, http.StatusOK, addResp.StatusCode)

	checkoutResp := authorizedRequest(t, "POST", baseURL+"/api/checkout/", token, nil)
	defer checkoutResp.Body.Close()
	assert.Equal(t, http.StatusOK, checkoutResp.StatusCode, "expected 200 for checkout with items")

	// После оформления корзина должна быть пустой
	cartResp := authorizedRequest(t, "GET", baseURL+"/api/cart/", token, nil)
	defer cartResp.Body.Close()
	var cart CartResponse
	err := json.NewDecoder(cartResp.Body).Decode(&cart)
	assert.NoError(t, err)
	assert.Empty(t, cart.Items, "cart should be empty after checkout")

	// Заказ должен появиться в истории
	ordersResp := authorizedRequest(t, "GET", baseURL+"/api/my-orders/", token, nil)
	defer ordersResp.Body.Close()
	assert.Equal(t, http.StatusOK, ordersResp.StatusCode)
}

// сценарий оформления пустой корзины
func TestCheckoutEmptyCart(t *testing.T) {
	token := registerAndLogin(t, "empty_checkout_user")

	resp := authorizedRequest(t, "POST", baseURL+"/api/checkout/", token, nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "expected 400 for empty cart checkout")
}

// сценарий добавления отзыва на товар
func TestAddReview(t *testing.T) {
	token := registerAndLogin(t, "review_user")
	productID := findAvailableProduct(t)

	body := []byte(`{"rating": 5, "comment": "works as expected"}`)
	resp := authorizedRequest(t, "POST", fmt.Sprintf("%s/api/product/%d/", baseURL, productID), token, body)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode, "expected 200 for valid review")
}

// сценарий отзыва с рейтингом вне диапазона
func TestAddReviewInvalidRating(t *testing.T) {
	token := registerAndLogin(t, "badreview_user")
	productID := findAvailableProduct(t)

	body := []byte(`{"rating": 7, "comment": "too good"}`)
	resp := authorizedRequest(t, "POST", fmt.Sprintf("%s/api/product/%d/", baseURL, productID), token, body)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "expected 400 for rating outside 1..5")
}

// сценарий доступа обычного пользователя к админ-панели
func TestDashboardForbidden(t *testing.T) {
	token := registerAndLogin(t, "nonstaff_user")

	resp := authorizedRequest(t, "GET", baseURL+"/api/dashboard/", token, nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode, "expected 403 for non-staff user")
}
