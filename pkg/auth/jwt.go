package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-admin/internal/model"
)

var ErrInvalidToken = errors.New("invalid session token")

// JWTService issues and validates session tokens.
type JWTService interface {
	GenerateSessionToken(session *model.Session) (string, error)
	ValidateToken(token string) (*model.Session, error)
}

// Claims is the session token payload. The clinic fields are empty until
// the user creates or selects a clinic.
type Claims struct {
	jwt.RegisteredClaims
	UserID     uuid.UUID `json:"user_id"`
	Email      string    `json:"email,omitempty"`
	Name       string    `json:"name,omitempty"`
	ClinicID   string    `json:"clinic_id,omitempty"`
	ClinicName string    `json:"clinic_name,omitempty"`
}

type jwtService struct {
	secret []byte
	issuer string
	expiry time.Duration
	now    func() time.Time
}

func NewJWTService(secret, issuer string, expiry time.Duration) JWTService {
	if expiry <= 0 {
		expiry = 24 * time.Hour
	}
	return &jwtService{
		secret: []byte(secret),
		issuer: issuer,
		expiry: expiry,
		now:    time.Now,
	}
}

func (s *jwtService) GenerateSessionToken(session *model.Session) (string, error) {
	if session == nil || session.UserID == uuid.Nil {
		return "", errors.New("session has no user")
	}

	now := s.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   session.UserID.String(),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
		},
		UserID: session.UserID,
		Email:  session.Email,
		Name:   session.Name,
	}
	if session.HasClinic() {
		claims.ClinicID = session.Clinic.ID.String()
		claims.ClinicName = session.Clinic.Name
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (s *jwtService) ValidateToken(tokenStr string) (*model.Session, error) {
	var claims Claims
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, opts...)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.UserID == uuid.Nil {
		return nil, fmt.Errorf("%w: missing user", ErrInvalidToken)
	}

	session := &model.Session{
		UserID: claims.UserID,
		Email:  claims.Email,
		Name:   claims.Name,
	}
	if claims.ClinicID != "" {
		clinicID, err := uuid.Parse(claims.ClinicID)
		if err != nil {
			return nil, fmt.Errorf("%w: bad clinic id", ErrInvalidToken)
		}
		session.Clinic = &model.SessionClinic{ID: clinicID, Name: claims.ClinicName}
	}
	return session, nil
}
