package nonce

// Service issues single-use values for login attempts. A value obtained
// with Get must be redeemed exactly once; redeeming an unknown or already
// redeemed value fails.
type Service interface {
	Get() (string, error)
	Redeem(nonceStr string) error
}
