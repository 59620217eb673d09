// gestor-oauth walks through the one-time Google authorization for the
// spreadsheet mirror and saves the resulting token where the worker
// expects it (GOOGLE_OAUTH_TOKEN_FILE, default token.json).
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"golang.org/x/oauth2"

	gsheet "gestor/internal/sheets/google"
)

func main() {
	cfg, err := gsheet.OAuthConfigFromEnv()
	if err != nil {
		log.Fatalf("oauth config: %v", err)
	}

	// The redirect URI must be registered on the OAuth client.
	redirectPort := os.Getenv("OAUTH_REDIRECT_PORT")
	if redirectPort == "" {
		redirectPort = "8085"
	}
	cfg.RedirectURL = "http://localhost:" + redirectPort + "/callback"

	codeCh := make(chan string, 1)
	srv := &http.Server{Addr: ":" + redirectPort}
	http.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		if errStr := r.URL.Query().Get("error"); errStr != "" {
			http.Error(w, "Erro de autorização: "+errStr, http.StatusBadRequest)
			return
		}
		fmt.Fprintln(w, "Autorizado. Pode fechar esta janela e voltar ao terminal.")
		codeCh <- r.URL.Query().Get("code")
		go func() { time.Sleep(500 * time.Millisecond); _ = srv.Close() }()
	})
	go func() { _ = srv.ListenAndServe() }()

	authURL := cfg.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	fmt.Printf("Abra esta URL para autorizar o acesso à planilha:\n%s\n", authURL)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)

	select {
	case code := <-codeCh:
		token, err := cfg.Exchange(context.Background(), code)
		if err != nil {
			log.Fatalf("token exchange: %v", err)
		}
		saveToken(token)
	case <-time.After(5 * time.Minute):
		log.Fatal("authorization timed out")
	case <-sigCh:
		log.Fatal("interrupted")
	}
}

func saveToken(token *oauth2.Token) {
	outFile := os.Getenv("GOOGLE_OAUTH_TOKEN_FILE")
	if outFile == "" {
		outFile = "token.json"
	}
	f, err := os.OpenFile(outFile, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		log.Fatalf("open token file: %v", err)
	}
	defer f.Close()
	if err := json.NewEncoder(f).Encode(token); err != nil {
		log.Fatalf("write token: %v", err)
	}
	fmt.Printf("Token salvo em %s\n", outFile)
}
