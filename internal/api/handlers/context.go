package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	apiContext "burnstop/internal/api/context"
	"burnstop/internal/api/middleware"
	"burnstop/internal/platform/auth"
)

// Context accessors shared by the handlers. Auth middleware guarantees
// claims exist on protected routes, so the assertion is unconditional there.
func claimsFrom(r *http.Request) *auth.Claims {
	claims, _ := r.Context().Value(apiContext.Claims).(*auth.Claims)
	return claims
}

func orgFrom(r *http.Request) *middleware.OrgContext {
	org, _ := r.Context().Value(apiContext.Org).(*middleware.OrgContext)
	return org
}

func paramFrom(r *http.Request, name string) string {
	params, _ := r.Context().Value(apiContext.Params).(httprouter.Params)
	return params.ByName(name)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
