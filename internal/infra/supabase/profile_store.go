package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/catalogo-ips/registration-gateway/internal/domain"

	"go.opentelemetry.io/otel/attribute"
)

// ============================================================
// ProfileStore implementation — profiles table via PostgREST
// ============================================================

// UpsertProfile inserts or replaces the profiles row keyed by p.ID and
// returns the stored representation.
func (c *Client) UpsertProfile(ctx context.Context, p *domain.Profile) (*domain.Profile, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpsertProfile")
	defer span.End()
	span.SetAttributes(attribute.String("profile.id", p.ID))

	data := map[string]any{
		"id":                 p.ID,
		"email":              p.Email,
		"full_name":          p.FullName,
		"person_type":        p.PersonType,
		"country":            nullable(p.Country),
		"state":              nullable(p.State),
		"city":               nullable(p.City),
		"cpf_cnpj":           nullable(p.CpfCnpj),
		"phone_area":         nullable(p.PhoneArea),
		"phone_number":       nullable(p.PhoneNumber),
		"device_fingerprint": p.DeviceFingerprint,
		"status":             p.Status,
	}

	body, err := c.doPost(ctx, "profiles?on_conflict=id", data,
		"resolution=merge-duplicates,return=representation")
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/profiles", Err: err}
	}

	rows, err := decodeProfiles(body)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, &domain.ErrExternalService{
			Service: "supabase/profiles",
			Err:     errors.New("upsert returned no representation"),
		}
	}
	return &rows[0], nil
}

// ListProfiles returns profile rows ordered by created_at ascending,
// optionally narrowed by status and free-text search.
func (c *Client) ListProfiles(ctx context.Context, filter domain.ProfileFilter) ([]domain.Profile, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListProfiles")
	defer span.End()

	path := "profiles?select=*&order=created_at.asc"
	if filter.Status != "" {
		path += "&status=eq." + url.QueryEscape(filter.Status)
	}
	if filter.Search != "" {
		path += "&or=" + url.QueryEscape(orSearchGroup(filter.Search))
	}

	body, err := c.doRequest(ctx, http.MethodGet, path)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/profiles", Err: err}
	}

	return decodeProfiles(body)
}

// GetProfileByEmail returns nil, nil when no row matches.
func (c *Client) GetProfileByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetProfileByEmail")
	defer span.End()

	path := "profiles?email=eq." + url.QueryEscape(email) + "&limit=1"
	body, err := c.doRequest(ctx, http.MethodGet, path)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/profiles", Err: err}
	}

	rows, err := decodeProfiles(body)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// UpdateStatus patches status on all rows matching id and/or email and
// returns the updated rows. The id/email pair must never both be empty:
// an unfiltered PATCH would rewrite the whole table.
func (c *Client) UpdateStatus(ctx context.Context, id, email, status string) ([]domain.Profile, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateStatus")
	defer span.End()
	span.SetAttributes(attribute.String("profile.status", status))

	match := matchQuery(id, email)
	if match == "" {
		return nil, &domain.ErrValidation{Field: "id/email", Message: "filtro obrigatório"}
	}

	body, err := c.doPatch(ctx, "profiles?"+match, map[string]any{"status": status})
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/profiles", Err: err}
	}

	return decodeProfiles(body)
}

// DeleteProfiles removes all rows matching id and/or email and returns the
// deleted rows. Same guard as UpdateStatus.
func (c *Client) DeleteProfiles(ctx context.Context, id, email string) ([]domain.Profile, error) {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteProfiles")
	defer span.End()

	match := matchQuery(id, email)
	if match == "" {
		return nil, &domain.ErrValidation{Field: "id/email", Message: "filtro obrigatório"}
	}

	body, err := c.doDelete(ctx, "profiles?"+match)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/profiles", Err: err}
	}

	return decodeProfiles(body)
}

// --- helpers ---

// matchQuery builds the id/email equality filter shared by the admin write
// operations. Both filters combine with AND when both are present.
func matchQuery(id, email string) string {
	params := url.Values{}
	if id != "" {
		params.Set("id", "eq."+id)
	}
	if email != "" {
		params.Set("email", "eq."+email)
	}
	return params.Encode()
}

// orSearchGroup builds the PostgREST or=() disjunction for the free-text
// search. Commas, parens and wildcards inside the term would break the
// group syntax, so they are blanked before building the pattern.
func orSearchGroup(q string) string {
	term := strings.NewReplacer(",", " ", "(", " ", ")", " ", "*", " ", `"`, " ").Replace(q)
	term = strings.TrimSpace(term)

	pattern := "*" + term + "*"
	fields := []string{"full_name", "email", "cpf_cnpj", "city"}
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s.ilike.%s", f, pattern))
	}
	return "(" + strings.Join(parts, ",") + ")"
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func decodeProfiles(body []byte) ([]domain.Profile, error) {
	if len(body) == 0 {
		return []domain.Profile{}, nil
	}
	var rows []domain.Profile
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode profiles: %w", err)
	}
	return rows, nil
}
