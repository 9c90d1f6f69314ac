package util

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CredentialExpired локально проверяет срок действия access токена.
// Подпись не проверяется - секрет принадлежит backend; шлюзу достаточно
// знать, что истёкший токен не имеет смысла отправлять в GET /me.
// Не-JWT credential считается живым и прозрачно передаётся backend.
func CredentialExpired(tokenString string) bool {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}

	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}

	return exp.Before(time.Now())
}
