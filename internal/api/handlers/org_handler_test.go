package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"

	apiContext "burnstop/internal/api/context"
	"burnstop/internal/api/middleware"
	"burnstop/internal/engine/reminders"
	"burnstop/internal/platform/auth"
	"burnstop/internal/platform/models"
	"burnstop/internal/platform/repositories"
	"burnstop/internal/platform/store"
)

type orgFixture struct {
	handler         *OrgHandler
	userRepo        *repositories.UserRepository
	orgRepo         *repositories.OrganizationRepository
	serviceRepo     *repositories.ServiceRepository
	integrationRepo *repositories.IntegrationRepository
	index           *reminders.Index
	kv              *store.Store
}

func newOrgFixture(t *testing.T) *orgFixture {
	t.Helper()
	kv := newTestStore(t)
	userRepo := repositories.NewUserRepository(kv)
	orgRepo := repositories.NewOrganizationRepository(kv)
	serviceRepo := repositories.NewServiceRepository(kv)
	integrationRepo := repositories.NewIntegrationRepository(kv)
	index := reminders.NewIndex(kv)
	return &orgFixture{
		handler:         NewOrgHandler(orgRepo, userRepo, serviceRepo, integrationRepo, index),
		userRepo:        userRepo,
		orgRepo:         orgRepo,
		serviceRepo:     serviceRepo,
		integrationRepo: integrationRepo,
		index:           index,
		kv:              kv,
	}
}

func authedRequest(method, path, body, userID string) *http.Request {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	ctx := context.WithValue(req.Context(), apiContext.Claims, &auth.Claims{UserID: userID})
	return req.WithContext(ctx)
}

func withOrg(req *http.Request, org *models.Organization, role models.Role) *http.Request {
	ctx := context.WithValue(req.Context(), apiContext.Org, &middleware.OrgContext{Org: org, Role: role})
	return req.WithContext(ctx)
}

func withParams(req *http.Request, params httprouter.Params) *http.Request {
	ctx := context.WithValue(req.Context(), apiContext.Params, params)
	return req.WithContext(ctx)
}

func TestCreateOrgMakesActorOwnerAndMember(t *testing.T) {
	f := newOrgFixture(t)
	ctx := context.Background()

	user := &models.User{ID: "u1", Email: "dev@acme.io", Organizations: []string{}}
	if err := f.userRepo.Create(ctx, user); err != nil {
		t.Fatalf("create user failed: %v", err)
	}

	rec := httptest.NewRecorder()
	f.handler.Create(rec, authedRequest(http.MethodPost, "/api/v1/organizations", `{"name":"Acme","budget":5000}`, "u1"))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var org models.Organization
	if err := json.Unmarshal(rec.Body.Bytes(), &org); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if org.OwnerID != "u1" {
		t.Errorf("owner = %s, want u1", org.OwnerID)
	}
	if len(org.Members) != 1 || org.Members[0] != "u1" {
		t.Errorf("members = %v, want [u1]", org.Members)
	}
	if org.Budget == nil || *org.Budget != 5000 {
		t.Errorf("budget = %v, want 5000", org.Budget)
	}

	// The org lands on the user's membership list.
	loaded, _ := f.userRepo.GetByID(ctx, "u1")
	if len(loaded.Organizations) != 1 || loaded.Organizations[0] != org.ID {
		t.Errorf("user organizations = %v, want [%s]", loaded.Organizations, org.ID)
	}
}

func TestDeleteOrgCascades(t *testing.T) {
	f := newOrgFixture(t)
	ctx := context.Background()

	owner := &models.User{ID: "u1", Email: "owner@acme.io", Organizations: []string{"org1"}}
	member := &models.User{ID: "u2", Email: "member@acme.io", Organizations: []string{"org1"}}
	for _, u := range []*models.User{owner, member} {
		if err := f.userRepo.Create(ctx, u); err != nil {
			t.Fatalf("create user failed: %v", err)
		}
	}

	org := &models.Organization{ID: "org1", Name: "Acme", OwnerID: "u1", Members: []string{"u1", "u2"}, Moderators: []string{}}
	if err := f.orgRepo.Create(ctx, org); err != nil {
		t.Fatalf("create org failed: %v", err)
	}

	svc := &models.Service{ID: "s1", OrgID: "org1", Name: "db", Status: models.StatusActive}
	if err := f.serviceRepo.Create(ctx, svc); err != nil {
		t.Fatalf("create service failed: %v", err)
	}
	if err := f.serviceRepo.AppendCostHistory(ctx, "org1", "s1", models.CostPoint{Date: "2026-01-01", Cost: 100}); err != nil {
		t.Fatalf("append history failed: %v", err)
	}
	if err := f.index.Schedule(ctx, "org1", "s1", time.Now().Unix()+1000); err != nil {
		t.Fatalf("schedule failed: %v", err)
	}
	integration := &models.Integration{ID: "i1", OrganizationID: "org1", Type: models.IntegrationSlack, Enabled: true}
	if err := f.integrationRepo.Save(ctx, integration); err != nil {
		t.Fatalf("save integration failed: %v", err)
	}

	req := withOrg(authedRequest(http.MethodDelete, "/api/v1/organizations/org1", "", "u1"), org, models.RoleOwner)
	rec := httptest.NewRecorder()
	f.handler.Delete(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	if loaded, _ := f.orgRepo.GetByID(ctx, "org1"); loaded != nil {
		t.Error("organization record should be gone")
	}
	if loaded, _ := f.serviceRepo.GetByID(ctx, "s1"); loaded != nil {
		t.Error("service record should be gone")
	}
	if points, _ := f.serviceRepo.CostHistory(ctx, "org1", "s1"); len(points) != 0 {
		t.Error("cost history should be gone")
	}
	if entries, _ := f.index.DueWithin(ctx, "org1", 0, time.Now().Unix()+10000); len(entries) != 0 {
		t.Error("reminder index should be gone")
	}
	if remaining, _ := f.integrationRepo.ListByOrg(ctx, "org1"); len(remaining) != 0 {
		t.Error("integrations should be gone")
	}
	for _, userID := range []string{"u1", "u2"} {
		u, _ := f.userRepo.GetByID(ctx, userID)
		if len(u.Organizations) != 0 {
			t.Errorf("user %s still lists the deleted org: %v", userID, u.Organizations)
		}
	}
}

func TestRemoveUserRejectsOwner(t *testing.T) {
	f := newOrgFixture(t)

	org := &models.Organization{ID: "org1", Name: "Acme", OwnerID: "u1", Members: []string{"u1", "u2"}, Moderators: []string{}}
	if err := f.orgRepo.Create(context.Background(), org); err != nil {
		t.Fatalf("create org failed: %v", err)
	}

	req := withOrg(authedRequest(http.MethodDelete, "/api/v1/organizations/org1/members/u1", "", "u1"), org, models.RoleOwner)
	req = withParams(req, httprouter.Params{{Key: "org_id", Value: "org1"}, {Key: "user_id", Value: "u1"}})
	rec := httptest.NewRecorder()
	f.handler.RemoveUser(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("removing the owner should 400, got %d", rec.Code)
	}
}

func TestModeratorRules(t *testing.T) {
	f := newOrgFixture(t)
	ctx := context.Background()

	owner := &models.User{ID: "u1", Email: "owner@acme.io", Organizations: []string{"org1"}}
	member := &models.User{ID: "u2", Email: "member@acme.io", Organizations: []string{"org1"}}
	outsider := &models.User{ID: "u3", Email: "outsider@acme.io", Organizations: []string{}}
	for _, u := range []*models.User{owner, member, outsider} {
		if err := f.userRepo.Create(ctx, u); err != nil {
			t.Fatalf("create user failed: %v", err)
		}
	}
	org := &models.Organization{ID: "org1", Name: "Acme", OwnerID: "u1", Members: []string{"u1", "u2"}, Moderators: []string{}}
	if err := f.orgRepo.Create(ctx, org); err != nil {
		t.Fatalf("create org failed: %v", err)
	}

	promote := func(email string) *httptest.ResponseRecorder {
		loaded, _ := f.orgRepo.GetByID(ctx, "org1")
		req := withOrg(authedRequest(http.MethodPost, "/api/v1/organizations/org1/moderators", `{"user_email":"`+email+`"}`, "u1"), loaded, models.RoleOwner)
		rec := httptest.NewRecorder()
		f.handler.AddModerator(rec, req)
		return rec
	}

	if rec := promote("outsider@acme.io"); rec.Code != http.StatusBadRequest {
		t.Errorf("promoting a non-member should 400, got %d", rec.Code)
	}
	if rec := promote("owner@acme.io"); rec.Code != http.StatusBadRequest {
		t.Errorf("promoting the owner should 400, got %d", rec.Code)
	}
	if rec := promote("member@acme.io"); rec.Code != http.StatusOK {
		t.Fatalf("promoting a member should succeed, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec := promote("member@acme.io"); rec.Code != http.StatusBadRequest {
		t.Errorf("double promotion should 400, got %d", rec.Code)
	}

	loaded, _ := f.orgRepo.GetByID(ctx, "org1")
	if len(loaded.Moderators) != 1 || loaded.Moderators[0] != "u2" {
		t.Errorf("moderators = %v, want [u2]", loaded.Moderators)
	}
}
