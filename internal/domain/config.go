package domain

// IdentityConfig is the static record identifying the identity project.
// It is read once at startup and never mutated.
type IdentityConfig struct {
	APIKey            string
	AuthDomain        string
	ProjectID         string
	StorageBucket     string
	MessagingSenderID string
	AppID             string
}
