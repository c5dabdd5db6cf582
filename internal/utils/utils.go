package utils

import (
	"crypto/rand"
	"math/big"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// AgentIDAlphabet exclui caracteres ambíguos (0/O, 1/I/l).
const AgentIDAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz23456789"

const AgentIDLength = 6

// MinPhoneDigits é o mínimo de dígitos para considerar um telefone presente.
const MinPhoneDigits = 8

// HashSenha gera um hash bcrypt para a senha informada.
func HashSenha(senha string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(senha), bcrypt.DefaultCost)
	return string(hash), err
}

// VerificarSenha compara hash bcrypt com a senha em texto puro.
func VerificarSenha(hash, senha string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(senha))
	return err == nil
}

// GenerateAgentID sorteia um identificador curto de agente.
func GenerateAgentID() (string, error) {
	result := make([]byte, AgentIDLength)
	max := big.NewInt(int64(len(AgentIDAlphabet)))
	for i := range result {
		num, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		result[i] = AgentIDAlphabet[num.Int64()]
	}
	return string(result), nil
}

// IsValidAgentID confere tamanho e alfabeto de um id recebido de fora.
func IsValidAgentID(id string) bool {
	if len(id) != AgentIDLength {
		return false
	}
	for _, c := range id {
		if !strings.ContainsRune(AgentIDAlphabet, c) {
			return false
		}
	}
	return true
}

// NormalizePhone mantém só os dígitos; retorna "" quando sobram menos de 8.
func NormalizePhone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r <= unicode.MaxASCII && unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	if b.Len() < MinPhoneDigits {
		return ""
	}
	return b.String()
}
