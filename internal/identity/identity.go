package identity

import "sync"

// Provider supplies the current authenticated user id and a signed-out event.
// Session state is created against a Provider and discarded when it signs out.
type Provider struct {
	userID    uint64
	signedOut chan struct{}
	once      sync.Once
}

// NewProvider creates a provider for an authenticated user.
func NewProvider(userID uint64) *Provider {
	return &Provider{
		userID:    userID,
		signedOut: make(chan struct{}),
	}
}

// UserID returns the authenticated user's id.
func (p *Provider) UserID() uint64 {
	return p.userID
}

// SignedOut returns a channel that closes when the user signs out.
func (p *Provider) SignedOut() <-chan struct{} {
	return p.signedOut
}

// SignOut fires the signed-out event. Safe to call multiple times.
func (p *Provider) SignOut() {
	p.once.Do(func() { close(p.signedOut) })
}
