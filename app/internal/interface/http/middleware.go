package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

const sessionCookieName = "shop_session"

type ctxSessionKey struct{}

var errNoSession = errors.New("no session")

// sessionMiddleware resolves the session id from the signed cookie, issuing a
// new id and cookie when it is missing or invalid, and mounts the session.
func (a *API) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var sessionID string
		if c, err := r.Cookie(sessionCookieName); err == nil {
			if id, err := a.tokenSvc.ParseToken(c.Value); err == nil {
				sessionID = id
			}
		}

		if sessionID == "" {
			id, err := a.issueSession(w)
			if err != nil {
				respondError(w, http.StatusInternalServerError, err)
				return
			}
			sessionID = id
		}

		if _, err := a.storefrontSvc.Mount(sessionID); err != nil {
			handleDomainError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), ctxSessionKey{}, sessionID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *API) issueSession(w http.ResponseWriter) (string, error) {
	id := a.tokenSvc.NewSessionID()
	token, err := a.tokenSvc.GenerateToken(id)
	if err != nil {
		return "", err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(a.sessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id, nil
}

func getSessionID(ctx context.Context) (string, error) {
	if id, ok := ctx.Value(ctxSessionKey{}).(string); ok && id != "" {
		return id, nil
	}
	return "", errNoSession
}

func (a *API) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			a.logger.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", chimw.GetReqID(r.Context())),
			)
		}()
		next.ServeHTTP(ww, r)
	})
}
