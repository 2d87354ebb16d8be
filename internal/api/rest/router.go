// Package rest serves the JSON API used by the mobile client.
package rest

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mmynk/settleup/internal/auth"
	"github.com/mmynk/settleup/internal/middleware"
)

// Register mounts every API route on r behind bearer-token authentication.
func Register(r *mux.Router, h *Handler, jwtManager *auth.JWTManager) {
	api := r.NewRoute().Subrouter()
	api.Use(middleware.Authenticate(jwtManager, unauthorized))

	api.HandleFunc("/api/auth/me", h.Me).Methods(http.MethodGet)
	api.HandleFunc("/api/auth/logout", h.Logout).Methods(http.MethodPost)
	api.HandleFunc("/users/search", h.SearchUsers).Methods(http.MethodGet)

	api.HandleFunc("/groups", h.CreateGroup).Methods(http.MethodPost)
	api.HandleFunc("/groups", h.ListGroups).Methods(http.MethodGet)
	api.HandleFunc("/groups/{groupId}", h.GetGroup).Methods(http.MethodGet)
	api.HandleFunc("/groups/{groupId}", h.UpdateGroup).Methods(http.MethodPut)
	api.HandleFunc("/groups/{groupId}", h.DeleteGroup).Methods(http.MethodDelete)
	api.HandleFunc("/groups/{groupId}/members", h.AddMember).Methods(http.MethodPost)
	api.HandleFunc("/groups/{groupId}/members/{userId}", h.RemoveMember).Methods(http.MethodDelete)

	api.HandleFunc("/expenses", h.CreateExpense).Methods(http.MethodPost)
	api.HandleFunc("/expenses/group/{groupId}", h.ListExpenses).Methods(http.MethodGet)
	api.HandleFunc("/expenses/group/{groupId}/monthly", h.MonthlyExpenses).Methods(http.MethodGet)
	api.HandleFunc("/expenses/{expenseId}", h.UpdateExpense).Methods(http.MethodPut)
	api.HandleFunc("/expenses/{expenseId}", h.DeleteExpense).Methods(http.MethodDelete)

	api.HandleFunc("/settlements/group/{groupId}", h.GetSettlements).Methods(http.MethodGet)
}

// NewRouter returns a router serving only the REST API.
func NewRouter(h *Handler, jwtManager *auth.JWTManager) *mux.Router {
	r := mux.NewRouter()
	Register(r, h, jwtManager)
	return r
}
