package utils

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// bcrypt 只使用前 72 字节，超长口令直接拒绝
const maxPasswordBytes = 72

var ErrPasswordLength = errors.New("password must be 1-72 bytes")

// HashPassword 生成管理员口令的 bcrypt 哈希（写进 admin.password_hash）
func HashPassword(pw string) (string, error) {
	if len(pw) == 0 || len(pw) > maxPasswordBytes {
		return "", ErrPasswordLength
	}
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// IsPasswordHash 配置里的值是否为合法 bcrypt 哈希
func IsPasswordHash(hashed string) bool {
	_, err := bcrypt.Cost([]byte(hashed))
	return err == nil
}

// CheckPassword 空哈希或格式不对一律不匹配
func CheckPassword(pw, hashed string) bool {
	if !IsPasswordHash(hashed) {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(pw)) == nil
}
