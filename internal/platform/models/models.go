package models

// User records round-trip through the store as JSON, so the password hash
// has a real JSON tag. Handlers call Sanitize before encoding a response.
type User struct {
	ID             string   `json:"id"`
	Email          string   `json:"email"`
	HashedPassword string   `json:"hashed_password,omitempty"`
	Organizations  []string `json:"organizations"`
	CreatedAt      string   `json:"created_at"`
}

func (u *User) Sanitize() *User {
	u.HashedPassword = ""
	return u
}

type Organization struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Budget     *float64 `json:"budget,omitempty"`
	OwnerID    string   `json:"owner_id"`
	Members    []string `json:"members"`
	Moderators []string `json:"moderators"`
	CreatedAt  string   `json:"created_at"`
}

type Role int

const (
	RoleNone Role = iota
	RoleMember
	RoleModerator
	RoleOwner
)

// RoleOf is the single authorization policy for organization access.
// Owner outranks moderator outranks member.
func (o *Organization) RoleOf(userID string) Role {
	if o.OwnerID == userID {
		return RoleOwner
	}
	for _, id := range o.Moderators {
		if id == userID {
			return RoleModerator
		}
	}
	for _, id := range o.Members {
		if id == userID {
			return RoleMember
		}
	}
	return RoleNone
}

func (o *Organization) IsOwner(userID string) bool  { return o.RoleOf(userID) == RoleOwner }
func (o *Organization) IsMember(userID string) bool { return o.RoleOf(userID) >= RoleMember }

// HasModeratorAccess reports whether the user is the owner or a moderator.
func (o *Organization) HasModeratorAccess(userID string) bool {
	return o.RoleOf(userID) >= RoleModerator
}

type CloudPlatform string

const (
	PlatformAWS   CloudPlatform = "aws"
	PlatformGCP   CloudPlatform = "gcp"
	PlatformAzure CloudPlatform = "azure"
	PlatformOther CloudPlatform = "other"
)

func (p CloudPlatform) Valid() bool {
	switch p {
	case PlatformAWS, PlatformGCP, PlatformAzure, PlatformOther:
		return true
	}
	return false
}

type ServiceStatus string

const (
	StatusActive          ServiceStatus = "active"
	StatusPendingDeletion ServiceStatus = "pending_deletion"
	StatusSuspended       ServiceStatus = "suspended"
	StatusTerminated      ServiceStatus = "terminated"
)

func (s ServiceStatus) Valid() bool {
	switch s {
	case StatusActive, StatusPendingDeletion, StatusSuspended, StatusTerminated:
		return true
	}
	return false
}

// Service is a tracked cloud subscription. ServiceType is an opaque catalog
// tag (ec2, cloud_sql, t3_micro, subscription, ...), not behaviorally
// significant, so it is left as a free string.
type Service struct {
	ID           string        `json:"id"`
	OrgID        string        `json:"org_id"`
	Name         string        `json:"name"`
	Platform     CloudPlatform `json:"platform"`
	ServiceType  string        `json:"service_type"`
	Cost         float64       `json:"cost"`
	ReminderDate string        `json:"reminder_date"`
	Status       ServiceStatus `json:"status"`
	CreatedAt    string        `json:"created_at"`
	UpdatedAt    string        `json:"updated_at,omitempty"`

	// Infrastructure tracking
	IAMNumber  string `json:"iam_number,omitempty"`
	InstanceID string `json:"instance_id,omitempty"`
	ProviderID string `json:"provider_id,omitempty"`
	Region     string `json:"region,omitempty"`

	// API quota tracking
	APIQuotaTokens *int `json:"api_quota_tokens,omitempty"`
	APIUsageTokens *int `json:"api_usage_tokens,omitempty"`

	// Additional metadata
	Description string `json:"description,omitempty"`
	Tags        string `json:"tags,omitempty"`
	OwnerEmail  string `json:"owner_email,omitempty"`
}

// CostPoint is one entry of a service's append-only cost history.
// Synthetic marks fabricated backfill points so consumers can tell
// presentation smoothing from measured history.
type CostPoint struct {
	Date      string  `json:"date"`
	Cost      float64 `json:"cost"`
	Synthetic bool    `json:"synthetic,omitempty"`
}

type IntegrationType string

const (
	IntegrationSlack           IntegrationType = "slack"
	IntegrationGoogleWorkspace IntegrationType = "google_workspace"
	IntegrationEmail           IntegrationType = "email"
	IntegrationDiscord         IntegrationType = "discord"
	IntegrationTeams           IntegrationType = "teams"
)

// AllIntegrationTypes in stable order, used by list and bulk endpoints.
var AllIntegrationTypes = []IntegrationType{
	IntegrationSlack,
	IntegrationGoogleWorkspace,
	IntegrationEmail,
	IntegrationDiscord,
	IntegrationTeams,
}

func (t IntegrationType) Valid() bool {
	for _, known := range AllIntegrationTypes {
		if t == known {
			return true
		}
	}
	return false
}

// IntegrationConfig is the union of per-sink settings; each sink type reads
// the fields it needs.
type IntegrationConfig struct {
	// Chat webhooks
	WebhookURL string `json:"webhook_url,omitempty"`
	Channel    string `json:"channel,omitempty"`
	Username   string `json:"username,omitempty"`
	SpaceName  string `json:"space_name,omitempty"`

	// SMTP email
	SMTPServer  string `json:"smtp_server,omitempty"`
	SMTPPort    int    `json:"smtp_port,omitempty"`
	Email       string `json:"email,omitempty"`
	AppPassword string `json:"app_password,omitempty"`
	ToEmail     string `json:"to_email,omitempty"`
	FromName    string `json:"from_name,omitempty"`
}

type Integration struct {
	ID             string            `json:"id"`
	OrganizationID string            `json:"organization_id"`
	Type           IntegrationType   `json:"type"`
	Config         IntegrationConfig `json:"config"`
	Enabled        bool              `json:"enabled"`
	IsTest         bool              `json:"is_test,omitempty"`
	CreatedAt      string            `json:"created_at"`
	UpdatedAt      string            `json:"updated_at"`
}

// Reminder is derived on read from the Reminder Index plus the Service
// record; it is never stored as its own record.
type Reminder struct {
	ID           string  `json:"id"`
	ServiceID    string  `json:"service_id"`
	ServiceName  string  `json:"service_name"`
	Cost         float64 `json:"cost"`
	ReminderDate string  `json:"reminder_date"`
	OrgID        string  `json:"org_id"`
}

type Acknowledgment struct {
	ReminderID     string `json:"reminder_id"`
	ServiceID      string `json:"service_id"`
	UserID         string `json:"user_id"`
	ActionTaken    string `json:"action_taken"`
	AcknowledgedAt string `json:"acknowledged_at"`
}
