package supabase_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/catalogo-ips/registration-gateway/internal/domain"
	"github.com/catalogo-ips/registration-gateway/internal/infra/resilience"
	"github.com/catalogo-ips/registration-gateway/internal/infra/supabase"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.Handler) (*supabase.Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := supabase.NewClient(
		srv.Client(),
		srv.URL,
		"anon-key",
		"service-role-key",
		resilience.NewCircuitBreaker("test"),
		zap.NewNop(),
	)
	return client, srv
}

func assertAuthHeaders(t *testing.T, r *http.Request) {
	t.Helper()
	if got := r.Header.Get("apikey"); got != "anon-key" {
		t.Errorf("expected apikey header 'anon-key', got '%s'", got)
	}
	if got := r.Header.Get("Authorization"); got != "Bearer service-role-key" {
		t.Errorf("expected bearer service role key, got '%s'", got)
	}
}

func TestUpsertProfile(t *testing.T) {
	var gotPrefer string
	var gotPayload map[string]any

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/rest/v1/profiles" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if got := r.URL.Query().Get("on_conflict"); got != "id" {
			t.Errorf("expected on_conflict=id, got '%s'", got)
		}
		assertAuthHeaders(t, r)
		gotPrefer = r.Header.Get("Prefer")
		json.NewDecoder(r.Body).Decode(&gotPayload)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`[{"id":"user-1","email":"a@x.com","full_name":"Ana","status":"pending"}]`))
	}))

	stored, err := client.UpsertProfile(context.Background(), &domain.Profile{
		ID:                "user-1",
		Email:             "a@x.com",
		FullName:          "Ana",
		PersonType:        "fisica",
		DeviceFingerprint: "fp-1",
		Status:            domain.StatusPending,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if gotPrefer != "resolution=merge-duplicates,return=representation" {
		t.Errorf("unexpected Prefer header: %s", gotPrefer)
	}
	if gotPayload["country"] != nil {
		t.Errorf("empty optional fields must serialize as null, got %v", gotPayload["country"])
	}
	if stored.ID != "user-1" || stored.Status != domain.StatusPending {
		t.Errorf("unexpected stored row: %+v", stored)
	}
}

func TestListProfiles_QueryBuilding(t *testing.T) {
	var gotQuery map[string]string

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		gotQuery = map[string]string{
			"order":  q.Get("order"),
			"status": q.Get("status"),
			"or":     q.Get("or"),
		}
		w.Write([]byte(`[]`))
	}))

	items, err := client.ListProfiles(context.Background(), domain.ProfileFilter{
		Status: "pending",
		Search: "ana",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if items == nil || len(items) != 0 {
		t.Errorf("expected empty slice, got %v", items)
	}
	if gotQuery["order"] != "created_at.asc" {
		t.Errorf("expected order=created_at.asc, got '%s'", gotQuery["order"])
	}
	if gotQuery["status"] != "eq.pending" {
		t.Errorf("expected status=eq.pending, got '%s'", gotQuery["status"])
	}
	want := "(full_name.ilike.*ana*,email.ilike.*ana*,cpf_cnpj.ilike.*ana*,city.ilike.*ana*)"
	if gotQuery["or"] != want {
		t.Errorf("expected or=%s, got '%s'", want, gotQuery["or"])
	}
}

func TestListProfiles_SearchSpecialCharsBlanked(t *testing.T) {
	var gotOr string

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotOr = r.URL.Query().Get("or")
		w.Write([]byte(`[]`))
	}))

	_, err := client.ListProfiles(context.Background(), domain.ProfileFilter{Search: "a,b(c)*"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if gotOr != "(full_name.ilike.*a b c*,email.ilike.*a b c*,cpf_cnpj.ilike.*a b c*,city.ilike.*a b c*)" {
		t.Errorf("group delimiters must be blanked from the term, got '%s'", gotOr)
	}
}

func TestGetProfileByEmail_NoMatch(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))

	p, err := client.GetProfileByEmail(context.Background(), "nobody@x.com")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if p != nil {
		t.Errorf("expected nil profile, got %+v", p)
	}
}

func TestUpdateStatus_RefusesEmptyFilter(t *testing.T) {
	called := false
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	_, err := client.UpdateStatus(context.Background(), "", "", domain.StatusApproved)
	var verr *domain.ErrValidation
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if called {
		t.Error("an unfiltered PATCH must never reach the backend")
	}
}

func TestUpdateStatus_CombinesFiltersWithAnd(t *testing.T) {
	var gotID, gotEmail, gotStatus string

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			t.Errorf("expected PATCH, got %s", r.Method)
		}
		q := r.URL.Query()
		gotID, gotEmail = q.Get("id"), q.Get("email")
		var payload map[string]string
		json.NewDecoder(r.Body).Decode(&payload)
		gotStatus = payload["status"]
		w.Write([]byte(`[{"id":"user-1","status":"approved"}]`))
	}))

	updated, err := client.UpdateStatus(context.Background(), "user-1", "a@x.com", domain.StatusApproved)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if gotID != "eq.user-1" || gotEmail != "eq.a@x.com" {
		t.Errorf("expected both eq filters, got id='%s' email='%s'", gotID, gotEmail)
	}
	if gotStatus != domain.StatusApproved {
		t.Errorf("expected status payload '%s', got '%s'", domain.StatusApproved, gotStatus)
	}
	if len(updated) != 1 {
		t.Errorf("expected 1 updated row, got %d", len(updated))
	}
}

func TestDeleteProfiles_RefusesEmptyFilter(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("an unfiltered DELETE must never reach the backend")
	}))

	_, err := client.DeleteProfiles(context.Background(), "", "")
	var verr *domain.ErrValidation
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDeleteProfiles_ReturnsDeletedRows(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("expected DELETE, got %s", r.Method)
		}
		if got := r.Header.Get("Prefer"); got != "return=representation" {
			t.Errorf("expected return=representation, got '%s'", got)
		}
		w.Write([]byte(`[{"id":"user-1"}]`))
	}))

	deleted, err := client.DeleteProfiles(context.Background(), "user-1", "")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(deleted) != 1 || deleted[0].ID != "user-1" {
		t.Errorf("unexpected deleted rows: %v", deleted)
	}
}

func TestGetUserByEmail_MatchesCaseInsensitively(t *testing.T) {
	id := uuid.NewString()
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/v1/admin/users" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("email"); got != "a@x.com" {
			t.Errorf("expected email filter 'a@x.com', got '%s'", got)
		}
		// A page with unrelated accounts, as older GoTrue versions return.
		json.NewEncoder(w).Encode(map[string]any{
			"users": []map[string]string{
				{"id": uuid.NewString(), "email": "other@x.com"},
				{"id": id, "email": "A@X.com"},
			},
		})
	}))

	user, err := client.GetUserByEmail(context.Background(), "a@x.com")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if user == nil || user.ID != id {
		t.Errorf("expected user %s, got %+v", id, user)
	}
}

func TestGetUserByEmail_Absent(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"users":[]}`))
	}))

	user, err := client.GetUserByEmail(context.Background(), "nobody@x.com")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if user != nil {
		t.Errorf("expected nil user, got %+v", user)
	}
}

func TestCreateUser(t *testing.T) {
	id := uuid.NewString()
	var gotPayload map[string]any

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/auth/v1/admin/users" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		assertAuthHeaders(t, r)
		json.NewDecoder(r.Body).Decode(&gotPayload)
		json.NewEncoder(w).Encode(map[string]string{"id": id, "email": "a@x.com"})
	}))

	user, err := client.CreateUser(context.Background(), "a@x.com")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if gotPayload["email_confirm"] != true {
		t.Error("expected email_confirm=true in the creation payload")
	}
	if user.ID != id {
		t.Errorf("expected id %s, got '%s'", id, user.ID)
	}
}

func TestCreateUser_MissingIDIsAnError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"email":"a@x.com"}`))
	}))

	_, err := client.CreateUser(context.Background(), "a@x.com")
	var eerr *domain.ErrExternalService
	if !errors.As(err, &eerr) {
		t.Fatalf("expected external service error, got %v", err)
	}
}

func TestDeleteUser_NotFoundIsNotAnError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("expected DELETE, got %s", r.Method)
		}
		w.WriteHeader(http.StatusNotFound)
	}))

	if err := client.DeleteUser(context.Background(), uuid.NewString()); err != nil {
		t.Fatalf("a 404 means the account is already gone, got %v", err)
	}
}

func TestPingRest_SurfacesBackendErrors(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))

	if err := client.PingRest(context.Background()); err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestPingAuth(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/v1/health" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(`{"name":"GoTrue"}`))
	}))

	if err := client.PingAuth(context.Background()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}
