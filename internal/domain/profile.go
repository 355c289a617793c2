// Package domain holds the core types of the registration gateway.
package domain

// Profile status values. A profile is created as pending and only moves
// to approved/block through an explicit admin action.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusBlock    = "block"
)

// Profile is the registrant record mirrored in the Supabase profiles table.
// Its id equals the GoTrue user id of the corresponding auth account.
type Profile struct {
	ID                string `json:"id"`
	Email             string `json:"email"`
	FullName          string `json:"full_name"`
	PersonType        string `json:"person_type"`
	Country           string `json:"country,omitempty"`
	State             string `json:"state,omitempty"`
	City              string `json:"city,omitempty"`
	CpfCnpj           string `json:"cpf_cnpj,omitempty"`
	PhoneArea         string `json:"phone_area,omitempty"`
	PhoneNumber       string `json:"phone_number,omitempty"`
	DeviceFingerprint string `json:"device_fingerprint"`
	Status            string `json:"status"`
	CreatedAt         string `json:"created_at,omitempty"`
}

// AuthUser is the GoTrue account, distinct from the mirrored Profile row.
type AuthUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// RegistrationRequest is the public registration form payload.
type RegistrationRequest struct {
	Email             string `json:"email"`
	FullName          string `json:"full_name"`
	PersonType        string `json:"person_type"`
	Country           string `json:"country,omitempty"`
	State             string `json:"state,omitempty"`
	City              string `json:"city,omitempty"`
	CpfCnpj           string `json:"cpf_cnpj,omitempty"`
	PhoneArea         string `json:"phone_area,omitempty"`
	PhoneNumber       string `json:"phone_number,omitempty"`
	DeviceFingerprint string `json:"device_fingerprint"`
}

// RegistrationResponse is returned by POST /auth/register.
type RegistrationResponse struct {
	OK      bool     `json:"ok"`
	UserID  string   `json:"user_id"`
	Profile *Profile `json:"profile"`
}

// AdminActionRequest targets profiles by id and/or email. When both are
// present they act as an AND filter.
type AdminActionRequest struct {
	ID    string `json:"id,omitempty"`
	Email string `json:"email,omitempty"`
}

// ProfileFilter narrows a profile listing. An empty Status means no status
// filter; Search matches case-insensitively against full_name, email,
// cpf_cnpj and city.
type ProfileFilter struct {
	Status string
	Search string
}

// ServiceHealth reports the availability of one dependency.
type ServiceHealth struct {
	Name        string `json:"name"`
	Status      string `json:"status"`
	LatencyMs   int64  `json:"latency_ms"`
	LastChecked string `json:"last_checked"`
}

// HealthStatus aggregates dependency health for GET /healthz.
type HealthStatus struct {
	Status   string          `json:"status"`
	Services []ServiceHealth `json:"services"`
}

// GatewayStats is the counters snapshot served at GET /admin/stats.
type GatewayStats struct {
	TotalRequests int64   `json:"total_requests"`
	ErrorRate     float64 `json:"error_rate"`
	Registrations int64   `json:"registrations"`
	Approved      int64   `json:"approved"`
	Blocked       int64   `json:"blocked"`
	Deleted       int64   `json:"deleted"`
}
