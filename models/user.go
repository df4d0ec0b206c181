// Package models, uygulamanın domain modellerini (veri yapıları) tanımlar.
//
// Model nedir?
// Veritabanındaki bir tablonun Go karşılığıdır.
// Aynı zamanda API'den gelen/giden verilerin şeklini de belirler.
//
// Go'da `json:"email"` gibi tag'ler, struct field'larının JSON'a
// nasıl serialize/deserialize edileceğini belirler.
package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// UserRole, kullanıcının platformdaki rolünü temsil eder.
// Go'da enum yoktur, bunun yerine typed constant'lar kullanılır.
//
// Rol, karşı taraf listelerini belirler:
//   - employer → konuşma başlatabileceği kişiler = ilanlarına başvuranlar
//   - employee → konuşma başlatabileceği kişiler = işverenler
type UserRole string

// İzin verilen UserRole değerleri.
const (
	RoleEmployee UserRole = "employee"
	RoleEmployer UserRole = "employer"
	RoleAdmin    UserRole = "admin"
)

// IsValid, rolün tanımlı değerlerden biri olup olmadığını kontrol eder.
func (r UserRole) IsValid() bool {
	switch r {
	case RoleEmployee, RoleEmployer, RoleAdmin:
		return true
	}
	return false
}

// User, bir kullanıcıyı temsil eder.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	DisplayName  *string   `json:"display_name"` // *string = nullable — Go'da nil olabilir
	AvatarURL    *string   `json:"avatar_url"`
	Role         UserRole  `json:"role"`
	PasswordHash string    `json:"-"` // json:"-" → API response'a DAHİL ETME (güvenlik!)
	Language     string    `json:"language"` // Dil tercihi: "en", "tr" — email bildirimlerinde kullanılır
	CreatedAt    time.Time `json:"created_at"`
}

// CreateUserRequest, kayıt olurken frontend'den gelen veri.
// PasswordHash yerine Password alırız — hash'leme service katmanında yapılır.
type CreateUserRequest struct {
	Email       string `json:"email"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
}

// Validate, CreateUserRequest'in geçerli olup olmadığını kontrol eder.
// Validation kuralları:
//   - Email: boş olamaz, '@' içermeli (derin RFC kontrolü yapılmaz)
//   - Username: 3-32 karakter, alfanumerik + alt çizgi
//   - Password: minimum 8 karakter
//   - Role: employee veya employer (admin kayıt ile alınamaz)
//   - DisplayName: opsiyonel, max 64 karakter
func (r *CreateUserRequest) Validate() error {
	// Email kontrolü
	r.Email = strings.TrimSpace(strings.ToLower(r.Email))
	if r.Email == "" || !strings.Contains(r.Email, "@") {
		return fmt.Errorf("a valid email is required")
	}

	// Username kontrolü
	r.Username = strings.TrimSpace(r.Username)
	usernameLen := utf8.RuneCountInString(r.Username)
	if usernameLen < 3 || usernameLen > 32 {
		return fmt.Errorf("username must be between 3 and 32 characters")
	}
	for _, ch := range r.Username {
		if !isValidUsernameChar(ch) {
			return fmt.Errorf("username can only contain letters, numbers, and underscores")
		}
	}

	// Password kontrolü
	if utf8.RuneCountInString(r.Password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}

	// Role kontrolü — admin hesapları elle açılır, kayıt formundan gelemez
	role := UserRole(strings.TrimSpace(r.Role))
	if role != RoleEmployee && role != RoleEmployer {
		return fmt.Errorf("role must be employee or employer")
	}
	r.Role = string(role)

	// DisplayName kontrolü (opsiyonel)
	r.DisplayName = strings.TrimSpace(r.DisplayName)
	if utf8.RuneCountInString(r.DisplayName) > 64 {
		return fmt.Errorf("display name must be at most 64 characters")
	}

	return nil
}

// LoginRequest, giriş yaparken frontend'den gelen veri.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate, LoginRequest'in geçerli olup olmadığını kontrol eder.
func (r *LoginRequest) Validate() error {
	r.Email = strings.TrimSpace(strings.ToLower(r.Email))
	if r.Email == "" {
		return fmt.Errorf("email is required")
	}
	if r.Password == "" {
		return fmt.Errorf("password is required")
	}
	return nil
}

// isValidUsernameChar, username'de izin verilen karakterleri kontrol eder.
func isValidUsernameChar(ch rune) bool {
	return (ch >= 'a' && ch <= 'z') ||
		(ch >= 'A' && ch <= 'Z') ||
		(ch >= '0' && ch <= '9') ||
		ch == '_'
}
