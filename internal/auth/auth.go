// Package auth handles technician credentials and session tokens.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/jeotronix/fieldops/internal/models"
)

// Actor identifies the signed-in technician performing a mutation
type Actor struct {
	ID   string
	Name string
}

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 10)
	return string(bytes), err
}

// CheckPasswordHash compares a password with a hash
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// GenerateToken issues a session token for a technician
func GenerateToken(tech *models.Technician, secret string) (string, error) {
	claims := jwt.MapClaims{
		"id":    tech.ID,
		"name":  tech.DisplayName,
		"email": tech.Email,
		"exp":   time.Now().Add(time.Hour * 24 * 30).Unix(), // field devices stay signed in
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateToken parses and validates a token, returning the actor it names
func ValidateToken(tokenString, secret string) (*Actor, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	id, _ := claims["id"].(string)
	name, _ := claims["name"].(string)
	if id == "" {
		return nil, errors.New("token missing technician id")
	}
	return &Actor{ID: id, Name: name}, nil
}
