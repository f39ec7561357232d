package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"gerai/internal/models"
	"gerai/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles business logic for authentication and authorization.
type AuthService struct {
	userRepo   repositories.UserRepository
	jwtSecret  []byte
	tokenDurat time.Duration // Duration for which JWT is valid
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, jwtSecret string) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtSecret:  []byte(jwtSecret),
		tokenDurat: 24 * time.Hour, // Token valid for 24 hours
	}
}

// RegisterUser registers a new user, hashes their password, and saves them
// to the database. A missing username is derived from the email local part
// and suffixed with a counter until unique.
func (s *AuthService) RegisterUser(user *models.User) error {
	if user.Username == "" {
		username, err := s.deriveUsername(user.Email)
		if err != nil {
			return err
		}
		user.Username = username
	} else if existing, err := s.userRepo.GetByUsername(user.Username); err == nil && existing != nil {
		return fmt.Errorf("username '%s' already taken", user.Username)
	}
	if existing, err := s.userRepo.GetByEmail(user.Email); err == nil && existing != nil {
		return fmt.Errorf("email '%s' already registered", user.Email)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = string(hashedPassword)

	if user.UserType == "" {
		user.UserType = models.UserTypeCustomer
	}

	if err := s.userRepo.Create(user); err != nil {
		return fmt.Errorf("failed to register user: %w", err)
	}
	return nil
}

// deriveUsername takes the email local part and appends a counter while the
// candidate is taken.
func (s *AuthService) deriveUsername(email string) (string, error) {
	base := strings.Split(email, "@")[0]
	if base == "" {
		return "", fmt.Errorf("%w: email is required", ErrValidation)
	}
	candidate := base
	for counter := 1; ; counter++ {
		_, err := s.userRepo.GetByUsername(candidate)
		if errors.Is(err, repositories.ErrNotFound) {
			return candidate, nil
		}
		if err != nil && !errors.Is(err, repositories.ErrNotFound) {
			return "", err
		}
		candidate = fmt.Sprintf("%s%d", base, counter)
	}
}

// LoginUser authenticates a user and returns a JWT token if successful.
func (s *AuthService) LoginUser(username, password string) (string, error) {
	user, err := s.userRepo.GetByUsername(username)
	if err != nil {
		// Do not reveal whether the username exists.
		return "", fmt.Errorf("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", fmt.Errorf("invalid credentials")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"is_staff": user.IsStaff,
		"exp":      time.Now().Add(s.tokenDurat).Unix(),
		"iat":      time.Now().Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	return tokenString, nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(id string) (*models.User, error) {
	return s.userRepo.GetByID(id)
}

// ValidateToken parses and validates a JWT token, returning the claims if valid.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})

	if err != nil {
		log.Printf("Token validation error: %v", err)
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}
