package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword는 bcrypt 해시를 생성합니다
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword는 비밀번호가 해시와 일치하는지 확인합니다
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
