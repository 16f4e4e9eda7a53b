package oauth

import (
	"context"
	"fmt"
	"time"

	"txapp-service/pkg/logger"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
)

// GmailOAuth builds the token source used to send notification mails
type GmailOAuth struct {
	config       *oauth2.Config
	refreshToken string
	logger       logger.Logger
}

// NewGmailOAuth creates a new Gmail OAuth handler. redirectURL is only
// needed by the interactive token tool.
func NewGmailOAuth(clientID, clientSecret, refreshToken, redirectURL string, logger logger.Logger) *GmailOAuth {
	return &GmailOAuth{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     google.Endpoint,
			RedirectURL:  redirectURL,
			Scopes:       []string{gmail.GmailSendScope},
		},
		refreshToken: refreshToken,
		logger:       logger,
	}
}

// Configured reports whether credentials and a refresh token are present
func (o *GmailOAuth) Configured() bool {
	return o.config.ClientID != "" && o.config.ClientSecret != "" && o.refreshToken != ""
}

// TokenSource returns a refreshing token source for the Gmail API
func (o *GmailOAuth) TokenSource(ctx context.Context) oauth2.TokenSource {
	token := &oauth2.Token{
		RefreshToken: o.refreshToken,
		Expiry:       time.Now(), // force refresh
	}
	return o.config.TokenSource(ctx, token)
}

// AuthURL is the consent page that grants offline send access
func (o *GmailOAuth) AuthURL(state string) string {
	return o.config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// ExchangeCode exchanges an authorization code for a token
func (o *GmailOAuth) ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := o.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}
	if token.RefreshToken == "" {
		o.logger.Warn("No refresh token returned, revoke the previous grant and retry")
	}
	return token, nil
}
