package handlers

import (
	"html/template"
	"net/http"

	"foodie/src/token"
	"foodie/src/types"
)

// NewGatewayMux wires the restaurant search and favorites endpoints.
func NewGatewayMux(dir types.Directory, store types.FavoriteStore, tmpl *template.Template) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /reservations", func(w http.ResponseWriter, r *http.Request) {
		HandleSearchAPI(w, r, dir)
	})
	mux.HandleFunc("GET /recommendations", func(w http.ResponseWriter, r *http.Request) {
		HandleRecommendAPI(w, r, dir)
	})

	mux.HandleFunc("GET /favorites", func(w http.ResponseWriter, r *http.Request) {
		HandleListFavoritesAPI(w, r, store)
	})
	mux.HandleFunc("GET /favorites/page", func(w http.ResponseWriter, r *http.Request) {
		HandleFavoritesHTML(w, r, store, tmpl)
	})
	mux.HandleFunc("GET /favorite/{id}", func(w http.ResponseWriter, r *http.Request) {
		HandleGetFavoriteAPI(w, r, store)
	})
	mux.HandleFunc("POST /favorite/{id}", func(w http.ResponseWriter, r *http.Request) {
		HandleSaveFavoriteAPI(w, r, dir, store)
	})
	mux.HandleFunc("DELETE /favorite/{id}", func(w http.ResponseWriter, r *http.Request) {
		HandleDeleteFavoriteAPI(w, r, store)
	})

	return mux
}

// NewAccountsMux wires registration, login, logout and the session check.
func NewAccountsMux(accounts types.AccountStore, sessions types.SessionStore, signer *token.Signer) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /register", func(w http.ResponseWriter, r *http.Request) {
		HandleRegister(w, r, accounts)
	})
	mux.HandleFunc("POST /login", func(w http.ResponseWriter, r *http.Request) {
		HandleLogin(w, r, accounts, sessions, signer)
	})

	logout := func(w http.ResponseWriter, r *http.Request) {
		HandleLogout(w, r, sessions, signer)
	}
	mux.HandleFunc("GET /logout", logout)
	mux.HandleFunc("POST /logout", logout)

	mux.Handle("GET /me", token.SessionMiddleware(signer, sessions, accounts, WriteError, http.HandlerFunc(HandleMe)))

	return mux
}
