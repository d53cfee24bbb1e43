package sparebank1

import (
	"context"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"
)

const (
	// DefaultBaseURL is the production API host. Tests point clients at
	// an httptest server instead.
	DefaultBaseURL = "https://api.sparebank1.no"

	// DefaultRedirectURI is where the bank sends the authorization code.
	// The helper page just displays the code for pasting back into the
	// interactive prompt.
	DefaultRedirectURI = "https://auth-helper.herokuapp.com"

	// DefaultFinInst selects the member bank on the authorization page.
	DefaultFinInst = "fid-sr-bank"
)

// Tokens is the current OAuth2 token pair. The refresh token is
// single-use: every successful refresh rotates it, invalidating the
// previous one.
type Tokens struct {
	Access  string
	Refresh string
}

// ExchangeError is a failed authorization-code exchange. The user has
// to re-run the authorization flow with a fresh code.
type ExchangeError struct {
	Err error
}

func (e *ExchangeError) Error() string {
	return "authorization code exchange failed: " + e.Err.Error()
}

func (e *ExchangeError) Unwrap() error { return e.Err }

// RefreshError is a rejected refresh-token exchange. There is no
// automatic recovery; the user must re-authorize.
type RefreshError struct {
	Err error
}

func (e *RefreshError) Error() string {
	return "refresh token rejected, re-authorization required: " + e.Err.Error()
}

func (e *RefreshError) Unwrap() error { return e.Err }

// TokenManager performs the two OAuth2 grant exchanges against the
// bank's token endpoint. It never touches storage itself; callers feed
// the returned Tokens into a TokenStore.
type TokenManager struct {
	conf    *oauth2.Config
	finInst string
	logger  *log.Logger
}

// NewTokenManager creates a TokenManager for the token endpoint under
// baseURL.
func NewTokenManager(clientID, clientSecret, baseURL string, logger *log.Logger) *TokenManager {
	return &TokenManager{
		conf: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  DefaultRedirectURI,
			Endpoint: oauth2.Endpoint{
				AuthURL:   baseURL + "/oauth/authorize",
				TokenURL:  baseURL + "/oauth/token",
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		finInst: DefaultFinInst,
		logger:  logger,
	}
}

// AuthCodeURL builds the interactive authorization URL, including the
// bank-selection parameter.
func (m *TokenManager) AuthCodeURL(state string) string {
	return m.conf.AuthCodeURL(state, oauth2.SetAuthURLParam("finInst", m.finInst))
}

// Exchange trades an authorization code for the initial token pair.
func (m *TokenManager) Exchange(ctx context.Context, code string) (Tokens, error) {
	m.logger.Debug("exchanging authorization code")
	tok, err := m.conf.Exchange(ctx, code)
	if err != nil {
		return Tokens{}, &ExchangeError{Err: err}
	}
	return Tokens{Access: tok.AccessToken, Refresh: tok.RefreshToken}, nil
}

// Refresh trades the current refresh token for a new token pair. The
// token source starts without an access token, which forces exactly one
// refresh_token grant against the endpoint.
func (m *TokenManager) Refresh(ctx context.Context, current Tokens) (Tokens, error) {
	m.logger.Debug("refreshing access token")
	src := m.conf.TokenSource(ctx, &oauth2.Token{RefreshToken: current.Refresh})
	tok, err := src.Token()
	if err != nil {
		return Tokens{}, &RefreshError{Err: err}
	}
	next := Tokens{Access: tok.AccessToken, Refresh: tok.RefreshToken}
	if next.Refresh == "" {
		// Endpoint chose not to rotate; the old refresh token stays valid.
		next.Refresh = current.Refresh
	}
	return next, nil
}
