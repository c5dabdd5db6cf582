package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/quotelink/referral-api/internal/utils"
)

type LoginRequest struct {
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// POST /api/admin/login
//
// Compara a senha com o hash bcrypt de ADMIN_PASSWORD_HASH.
func LoginHandler(tokens *Tokens, passwordHash string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "payload inválido", http.StatusBadRequest)
			return
		}
		if err := utils.Validate(req); err != nil {
			http.Error(w, "senha é obrigatória", http.StatusBadRequest)
			return
		}

		if passwordHash == "" || !utils.VerificarSenha(passwordHash, req.Password) {
			slog.Warn("tentativa de login inválida", "ip", r.RemoteAddr)
			http.Error(w, "Senha incorreta", http.StatusUnauthorized)
			return
		}

		access, err := tokens.GenerateAccessToken()
		if err != nil {
			slog.Error("falha ao gerar token", "err", err)
			http.Error(w, "erro ao gerar token", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(LoginResponse{
			AccessToken: access,
			TokenType:   "Bearer",
			ExpiresIn:   int(tokens.TTL().Seconds()),
		})
	}
}
