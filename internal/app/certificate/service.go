package certificate

import (
	"fmt"
	"time"

	"github.com/form3tech-oss/jwt-go"
)

// Service issues signed completion certificates for won games so classroom
// tooling can verify that a student beat a level without trusting the client.
type Service struct {
	secret string
	issuer string
	ttl    time.Duration
}

// DefaultTTL bounds how long a certificate stays verifiable.
const DefaultTTL = 30 * 24 * time.Hour

// Completion describes the result a certificate attests to.
type Completion struct {
	StudentID    string
	VariantID    string
	Total        float64
	AttemptsUsed int
}

// NewService constructs a certificate service. ttl may be zero to use
// DefaultTTL.
func NewService(secret, issuer string, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{secret: secret, issuer: issuer, ttl: ttl}
}

// GenerateToken signs an HS256 token attesting to the completion.
func (s *Service) GenerateToken(c Completion) (string, error) {
	if s == nil {
		return "", fmt.Errorf("certificate service is nil")
	}
	if c.StudentID == "" {
		return "", fmt.Errorf("student is required")
	}
	if c.VariantID == "" {
		return "", fmt.Errorf("variant is required")
	}
	if s.secret == "" || s.issuer == "" {
		return "", fmt.Errorf("certificate config is incomplete")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"iss":      s.issuer,
		"sub":      c.StudentID,
		"iat":      now.Unix(),
		"exp":      now.Add(s.ttl).Unix(),
		"variant":  c.VariantID,
		"total":    c.Total,
		"attempts": c.AttemptsUsed,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secret))
}

// Verify parses a certificate token and returns the completion it attests to.
// Expired or tampered tokens are rejected.
func (s *Service) Verify(tokenString string) (Completion, error) {
	if s == nil || s.secret == "" {
		return Completion{}, fmt.Errorf("certificate config is incomplete")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.secret), nil
	})
	if err != nil {
		return Completion{}, fmt.Errorf("failed to parse certificate: %w", err)
	}
	if !token.Valid {
		return Completion{}, fmt.Errorf("certificate is invalid")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Completion{}, fmt.Errorf("certificate claims are malformed")
	}
	if iss, _ := claims["iss"].(string); iss != s.issuer {
		return Completion{}, fmt.Errorf("certificate issuer mismatch")
	}

	c := Completion{}
	c.StudentID, _ = claims["sub"].(string)
	c.VariantID, _ = claims["variant"].(string)
	c.Total, _ = claims["total"].(float64)
	if attempts, ok := claims["attempts"].(float64); ok {
		c.AttemptsUsed = int(attempts)
	}
	return c, nil
}
