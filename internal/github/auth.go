package github

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/google/go-github/v73/github"
)

// NewAppClient builds a Client authenticated as a GitHub App installation.
// The installation transport refreshes its token automatically, so the client
// stays valid for long-running server processes.
func NewAppClient(appID, installationID int64, privateKeyPath string, logger *slog.Logger) (Client, error) {
	logger.Info("creating GitHub App installation client",
		"app_id", appID, "installation_id", installationID)

	transport, err := ghinstallation.NewKeyFromFile(http.DefaultTransport, appID, installationID, privateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub App transport from %s: %w", privateKeyPath, err)
	}

	client := github.NewClient(&http.Client{Transport: transport})
	return NewClient(client, logger), nil
}
