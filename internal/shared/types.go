package shared

// Asynq task type names shared between the API (producer) and the worker
// (consumer).
const (
	TypeSendResetEmail       = "email:reset_password"
	TypeSendWelcomeEmail     = "email:welcome"
	TypeCleanupExpiredTokens = "auth:cleanup_expired_tokens"
)

// ResetEmailPayload carries everything the worker needs to send a
// password-reset email.
type ResetEmailPayload struct {
	Email    string `json:"email"`
	ResetURL string `json:"resetUrl"`
}

// WelcomeEmailPayload is enqueued after a successful registration.
type WelcomeEmailPayload struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}
