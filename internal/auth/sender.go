package auth

import (
	"context"

	"github.com/psychmag/psychmag/internal/logger"
)

// LinkSender delivers a sign-in link to its recipient.
type LinkSender interface {
	SendSignInLink(ctx context.Context, email, link string) error
}

// LogLinkSender writes sign-in links to the log. It is the bundled sender
// for development and single-operator deployments.
type LogLinkSender struct{}

func (LogLinkSender) SendSignInLink(ctx context.Context, email, link string) error {
	logger.Infof("Sign-in link for %s: %s", email, link)
	return nil
}
