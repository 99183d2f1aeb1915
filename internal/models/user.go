package models

// User is an end user of the wallet. Accounts are provisioned by the
// upstream identity layer together with their settlement-rail handle and
// wallet; this service reads users and updates their verification flag.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string

	// Handle is the user's settlement-rail handle. Expected to be
	// unique, but uniqueness is not enforced by this service.
	Handle string

	// PrivateKey is the user's rail signing credential.
	PrivateKey string

	// WalletAddress is the user's rail wallet address.
	WalletAddress string

	// DisplayName is the human-readable name shown in notifications.
	DisplayName string

	// Token is the push-notification device token, empty when the user
	// has no registered device.
	Token string

	// Verified is true once the rail has reported a passed KYC check.
	Verified bool

	// CreatedAt is the Unix timestamp when the user was created.
	CreatedAt int64
}
