package handlers

import (
	"net/http"

	"foodie/src/logger"
	"foodie/src/token"
	"foodie/src/types"
)

type AccountID struct {
	ID string `json:"id"`
}

type AccountInfo struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type LogoutMessage struct {
	Msg string `json:"msg"`
}

func HandleRegister(w http.ResponseWriter, r *http.Request, accounts types.AccountStore) {
	p, err := readParams(r)
	if err != nil {
		WriteError(w, err)
		return
	}
	if err := p.require("email", "password"); err != nil {
		WriteError(w, err)
		return
	}

	hash, err := token.HashPassword(p["password"])
	if err != nil {
		WriteError(w, err)
		return
	}
	id, err := accounts.CreateAccount(r.Context(), p["email"], hash)
	if err != nil {
		WriteError(w, err)
		return
	}
	logger.Info("registered account %s", id)
	writeJSON(w, http.StatusOK, AccountID{ID: id})
}

// HandleLogin answers every failed attempt the same way, whether the email
// is unknown or the password is wrong.
func HandleLogin(w http.ResponseWriter, r *http.Request, accounts types.AccountStore, sessions types.SessionStore, signer *token.Signer) {
	p, err := readParams(r)
	if err != nil {
		WriteError(w, err)
		return
	}
	if err := p.require("email", "password"); err != nil {
		WriteError(w, err)
		return
	}

	account, err := token.Authenticate(r.Context(), accounts, p["email"], p["password"])
	if err != nil {
		WriteError(w, err)
		return
	}
	session, err := sessions.CreateSession(r.Context(), account.ID)
	if err != nil {
		WriteError(w, err)
		return
	}
	value, expires, err := signer.Sign(session.Token)
	if err != nil {
		_ = sessions.DeleteSession(r.Context(), session.Token)
		WriteError(w, err)
		return
	}

	http.SetCookie(w, signer.Cookie(value, expires))
	writeJSON(w, http.StatusOK, AccountID{ID: account.ID})
}

// HandleLogout always succeeds. The session named by a cookie this service
// signed is destroyed, expired or not, and the cookie is cleared either way.
func HandleLogout(w http.ResponseWriter, r *http.Request, sessions types.SessionStore, signer *token.Signer) {
	if sessionToken, err := signer.TeardownToken(r); err == nil {
		if err := sessions.DeleteSession(r.Context(), sessionToken); err != nil {
			logger.Warn("deleting session: %v", err)
		}
	}
	http.SetCookie(w, token.ClearCookie())
	writeJSON(w, http.StatusOK, LogoutMessage{Msg: "user logged out"})
}

// HandleMe must run behind token.SessionMiddleware.
func HandleMe(w http.ResponseWriter, r *http.Request) {
	account, ok := token.AccountFrom(r.Context())
	if !ok {
		WriteError(w, types.ErrUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, AccountInfo{ID: account.ID, Email: account.Email})
}
