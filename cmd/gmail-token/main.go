// gmail-token runs the OAuth consent flow once and prints the refresh token
// to put in GMAIL_REFRESH_TOKEN.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"txapp-service/internal/infrastructure/oauth"
	"txapp-service/pkg/logger"
)

const callbackAddr = "localhost:8090"

func main() {
	godotenv.Load()
	log := logger.NewLogger("info")

	gmailOAuth := oauth.NewGmailOAuth(
		os.Getenv("GMAIL_CLIENT_ID"),
		os.Getenv("GMAIL_CLIENT_SECRET"),
		"",
		"http://"+callbackAddr+"/oauth2callback",
		log,
	)
	state := uuid.NewString()
	done := make(chan string, 1)

	http.HandleFunc("/oauth2callback", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("state") != state {
			http.Error(w, "Invalid state parameter", http.StatusBadRequest)
			return
		}
		token, err := gmailOAuth.ExchangeCode(r.Context(), r.URL.Query().Get("code"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		fmt.Fprintln(w, "Authentication successful! You can close this window.")
		done <- token.RefreshToken
	})

	server := &http.Server{Addr: callbackAddr}
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Callback server error", "error", err)
		}
	}()

	fmt.Printf("Open this URL in your browser:\n%s\n", gmailOAuth.AuthURL(state))
	refreshToken := <-done
	fmt.Printf("\nGMAIL_REFRESH_TOKEN=%s\n\n", refreshToken)
	server.Shutdown(context.Background())
}
