package admin

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sokoyetu/marketplace/internal/config"
	"github.com/sokoyetu/marketplace/internal/db"
	"github.com/sokoyetu/marketplace/internal/models"
	"github.com/sokoyetu/marketplace/internal/security"
	"gorm.io/gorm"
)

type testServer struct {
	engine *gin.Engine
	conn   *gorm.DB
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	conn, err := db.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}

	hashed, errHash := security.HashPassword("admin-pass-1")
	if errHash != nil {
		t.Fatalf("hash password: %v", errHash)
	}
	admin := models.Admin{Username: "root", Password: hashed, Active: true}
	if errCreate := conn.Create(&admin).Error; errCreate != nil {
		t.Fatalf("create admin: %v", errCreate)
	}

	engine := gin.New()
	RegisterAdminRoutes(engine, conn, config.JWTConfig{Secret: "test-secret", Expiry: time.Hour})
	return &testServer{engine: engine, conn: conn}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, errMarshal := json.Marshal(body)
		if errMarshal != nil {
			t.Fatalf("marshal body: %v", errMarshal)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)

	var decoded map[string]any
	if len(rec.Body.Bytes()) > 0 {
		if errDecode := json.Unmarshal(rec.Body.Bytes(), &decoded); errDecode != nil {
			t.Fatalf("decode response %q: %v", rec.Body.String(), errDecode)
		}
	}
	return rec, decoded
}

func (s *testServer) login(t *testing.T) string {
	t.Helper()
	rec, body := s.do(t, http.MethodPost, "/v0/admin/login", "", gin.H{
		"username": "root",
		"password": "admin-pass-1",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatalf("login: missing token")
	}
	return token
}

func TestLogin(t *testing.T) {
	s := newTestServer(t)
	s.login(t)

	rec, _ := s.do(t, http.MethodPost, "/v0/admin/login", "", gin.H{
		"username": "root",
		"password": "wrong",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong password, got %d", rec.Code)
	}
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer(t)
	rec, _ := s.do(t, http.MethodGet, "/v0/admin/plans", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
}

func TestUserTokenRejected(t *testing.T) {
	s := newTestServer(t)
	userToken, errSign := security.SignUserToken("test-secret", 1, time.Hour)
	if errSign != nil {
		t.Fatalf("sign user token: %v", errSign)
	}
	rec, _ := s.do(t, http.MethodGet, "/v0/admin/plans", userToken, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("user token must not open admin routes, got %d", rec.Code)
	}
}

func TestPlanCRUD(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)

	rec, body := s.do(t, http.MethodPost, "/v0/admin/plans", token, gin.H{
		"name":          "Weekend Boost",
		"plan_type":     "ad_boost",
		"price":         150,
		"duration_days": 2,
		"features":      []string{"Top of search for 48h"},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create plan: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	planID := int(body["id"].(float64))

	rec, body = s.do(t, http.MethodGet, fmt.Sprintf("/v0/admin/plans/%d", planID), token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get plan: expected 200, got %d", rec.Code)
	}
	if body["currency"] != "KES" {
		t.Fatalf("expected KES default currency, got %v", body["currency"])
	}

	rec, _ = s.do(t, http.MethodPut, fmt.Sprintf("/v0/admin/plans/%d", planID), token, gin.H{"price": 200})
	if rec.Code != http.StatusOK {
		t.Fatalf("update plan: expected 200, got %d", rec.Code)
	}

	rec, _ = s.do(t, http.MethodPost, fmt.Sprintf("/v0/admin/plans/%d/disable", planID), token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("disable plan: expected 200, got %d", rec.Code)
	}
	var plan models.PricingPlan
	if errFind := s.conn.First(&plan, planID).Error; errFind != nil {
		t.Fatalf("load plan: %v", errFind)
	}
	if plan.IsActive || plan.Price != 200 {
		t.Fatalf("expected disabled plan priced 200, got active=%v price=%v", plan.IsActive, plan.Price)
	}

	rec, _ = s.do(t, http.MethodDelete, fmt.Sprintf("/v0/admin/plans/%d", planID), token, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete plan: expected 204, got %d", rec.Code)
	}
	rec, _ = s.do(t, http.MethodGet, fmt.Sprintf("/v0/admin/plans/%d", planID), token, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get deleted plan: expected 404, got %d", rec.Code)
	}
}

func TestPlanValidation(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)

	cases := []gin.H{
		{"name": "", "plan_type": "ad_boost", "price": 1, "duration_days": 7},
		{"name": "x", "plan_type": "mystery", "price": 1, "duration_days": 7},
		{"name": "x", "plan_type": "ad_boost", "price": -1, "duration_days": 7},
		{"name": "x", "plan_type": "ad_boost", "price": 1, "duration_days": 0},
	}
	for i, payload := range cases {
		rec, _ := s.do(t, http.MethodPost, "/v0/admin/plans", token, payload)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("case %d: expected 400, got %d", i, rec.Code)
		}
	}
}

func TestCategoryCRUD(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)

	rec, body := s.do(t, http.MethodPost, "/v0/admin/categories", token, gin.H{
		"name": "Vehicles",
		"slug": "vehicles",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create category: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	categoryID := int(body["id"].(float64))

	rec, _ = s.do(t, http.MethodPost, "/v0/admin/categories", token, gin.H{
		"name": "Vehicles Again",
		"slug": "vehicles",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate slug: expected 409, got %d", rec.Code)
	}

	rec, _ = s.do(t, http.MethodPut, fmt.Sprintf("/v0/admin/categories/%d", categoryID), token, gin.H{
		"sort_order": 5,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update category: expected 200, got %d", rec.Code)
	}

	rec, _ = s.do(t, http.MethodDelete, fmt.Sprintf("/v0/admin/categories/%d", categoryID), token, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete category: expected 204, got %d", rec.Code)
	}
}

func TestCategoryDeleteWithAdsDeactivates(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)

	category := models.Category{Name: "Furniture", Slug: "furniture", IsActive: true}
	if err := s.conn.Create(&category).Error; err != nil {
		t.Fatalf("create category: %v", err)
	}
	seller := models.User{Email: "seller@example.com", Username: "seller", Password: "x", Active: true}
	if err := s.conn.Create(&seller).Error; err != nil {
		t.Fatalf("create seller: %v", err)
	}
	ad := models.Ad{
		Title: "Sofa", Slug: "sofa-1", Description: "d", Currency: "KES",
		Condition: models.AdConditionUsed, CategoryID: category.ID,
		SellerID: seller.ID, Status: models.AdStatusActive, PremiumType: models.PremiumTypeBasic,
	}
	if err := s.conn.Create(&ad).Error; err != nil {
		t.Fatalf("create ad: %v", err)
	}

	rec, body := s.do(t, http.MethodDelete, fmt.Sprintf("/v0/admin/categories/%d", category.ID), token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 deactivate, got %d", rec.Code)
	}
	if deactivated, _ := body["deactivated"].(bool); !deactivated {
		t.Fatalf("expected deactivated flag, got %v", body)
	}

	var stored models.Category
	if errFind := s.conn.First(&stored, category.ID).Error; errFind != nil {
		t.Fatalf("category must survive: %v", errFind)
	}
	if stored.IsActive {
		t.Fatalf("expected category deactivated")
	}
}
