package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"

	"tripsync-service/internal/domain/entity"
	"tripsync-service/internal/infrastructure/oauth"

	oauth2pkg "golang.org/x/oauth2"
)

// Obtains a refresh token for one mail provider. Run it once per user,
// then store the printed tokens through the web application.
func main() {
	provider := flag.String("provider", "gmail", "gmail or outlook")
	clientID := flag.String("client-id", os.Getenv("OAUTH_CLIENT_ID"), "OAuth client id")
	clientSecret := flag.String("client-secret", os.Getenv("OAUTH_CLIENT_SECRET"), "OAuth client secret")
	flag.Parse()

	var config *oauth2pkg.Config
	switch entity.Provider(*provider) {
	case entity.ProviderGmail:
		config = oauth.GoogleConfig(*clientID, *clientSecret)
	case entity.ProviderOutlook:
		config = oauth.MicrosoftConfig(*clientID, *clientSecret)
	default:
		log.Fatalf("unknown provider %q", *provider)
	}
	config.RedirectURL = "http://localhost:8090/oauth2callback"

	// Create a random state
	state := "random-state"

	// Start an HTTP server to handle the OAuth callback
	http.HandleFunc("/oauth2callback", func(w http.ResponseWriter, r *http.Request) {
		// Check state parameter
		if r.URL.Query().Get("state") != state {
			http.Error(w, "Invalid state parameter", http.StatusBadRequest)
			return
		}

		// Exchange the authorization code for a token
		code := r.URL.Query().Get("code")
		token, err := config.Exchange(context.Background(), code)
		if err != nil {
			http.Error(w, fmt.Sprintf("Failed to exchange code: %v", err), http.StatusInternalServerError)
			return
		}

		fmt.Printf("\nAccess Token:  %s\n", token.AccessToken)
		fmt.Printf("Refresh Token: %s\n", token.RefreshToken)
		fmt.Printf("Expires At:    %s\n\n", token.Expiry)

		// Respond to the user
		fmt.Fprintf(w, "Authentication successful! You can close this window.")
		os.Exit(0)
	})

	// Generate the authorization URL
	authURL := config.AuthCodeURL(state, oauth2pkg.AccessTypeOffline, oauth2pkg.ApprovalForce)
	fmt.Printf("Open this URL in your browser:\n%s\n", authURL)

	log.Fatal(http.ListenAndServe(":8090", nil))
}
