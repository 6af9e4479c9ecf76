package server

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/james2654817/sales-dashboard-backend/internal/auth"
	"github.com/james2654817/sales-dashboard-backend/internal/model"
)

// Error messages surface in the dashboard UI, so they are written in
// the language its users read.
const (
	msgMissingFields  = "請提供帳號和密碼"
	msgBadCredentials = "帳號或密碼錯誤"
	msgMissingToken   = "未提供認證令牌"
	msgInvalidToken   = "認證令牌無效或已過期"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Success    bool            `json:"success"`
	Token      string          `json:"token"`
	Username   string          `json:"username"`
	Permission auth.Permission `json:"permission"`
}

type salesResponse struct {
	Success    bool                 `json:"success"`
	Data       []*model.StoreRecord `json:"data"`
	TodayTotal float64              `json:"todayTotal"`
	TodayDate  string               `json:"todayDate"`
	Timestamp  string               `json:"timestamp"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, msgMissingFields)
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, msgMissingFields)
		return
	}

	token, perm, err := s.gate.Login(req.Username, req.Password)
	if err != nil {
		zap.L().Info("login rejected", zap.String("username", req.Username))
		writeError(w, http.StatusUnauthorized, msgBadCredentials)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Success:    true,
		Token:      token,
		Username:   req.Username,
		Permission: perm,
	})
}

func (s *Server) handleSales(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, msgMissingToken)
		return
	}

	rep, err := s.assembler.Build(r.Context(), claims.Permission, s.now())
	if err != nil {
		zap.L().Error("sales report failed",
			zap.String("request_id", requestIDFrom(r.Context())),
			zap.String("username", claims.Username),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, salesResponse{
		Success:    true,
		Data:       rep.Data,
		TodayTotal: rep.TodayTotal,
		TodayDate:  rep.TodayDate,
		Timestamp:  rep.Timestamp,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": s.now().Format(time.RFC3339),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Success: false, Error: msg})
}
