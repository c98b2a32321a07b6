package ports

// TokenCodec issues and verifies stateless session tokens.
type TokenCodec interface {
	Issue(userID string) (string, error)
	// Verify returns the token subject and true only when the signature is
	// valid for the current secret and the token has not expired.
	Verify(token string) (string, bool)
}
