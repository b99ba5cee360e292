package auth

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/vendora/vendora-api/internal/domain/user"
	"github.com/vendora/vendora-api/internal/pkg/jwt"
	"github.com/vendora/vendora-api/internal/pkg/password"
	"github.com/vendora/vendora-api/internal/pkg/session"
)

// InvitationRedeemer binds an onboarding invitation to a freshly created user.
type InvitationRedeemer interface {
	Redeem(ctx context.Context, token string, userID uuid.UUID) (vendorID uuid.UUID, err error)
}

// WelcomeSender queues the welcome email.
type WelcomeSender interface {
	SendWelcome(to, name, role, dashboardURL string)
}

// Service handles authentication business logic
type Service struct {
	users       user.Repository
	jwt         *jwt.Service
	refresh     RefreshStore
	invitations InvitationRedeemer
	mailer      WelcomeSender
	frontendURL string
}

func NewService(users user.Repository, jwtService *jwt.Service, refresh RefreshStore, invitations InvitationRedeemer, mailer WelcomeSender, frontendURL string) *Service {
	return &Service{
		users:       users,
		jwt:         jwtService,
		refresh:     refresh,
		invitations: invitations,
		mailer:      mailer,
		frontendURL: frontendURL,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a viewer, or a vendor when an invitation token is redeemed.
// A failed redemption removes the just-created account.
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	email := normalizeEmail(req.Email)

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailAlreadyExists
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	u := &user.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		FullName:     strings.TrimSpace(req.FullName),
		Phone:        sql.NullString{String: req.Phone, Valid: req.Phone != ""},
		Role:         session.RoleViewer,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, user.ErrEmailAlreadyExists) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, err
	}

	if req.InvitationToken != "" {
		if err := s.redeem(ctx, u, req.InvitationToken); err != nil {
			if delErr := s.users.Delete(ctx, u.ID); delErr != nil {
				log.Error().Err(delErr).Str("user_id", u.ID.String()).Msg("Failed to remove user after invitation failure")
			}
			return nil, err
		}
	}

	if s.mailer != nil {
		s.mailer.SendWelcome(u.Email, u.FullName, string(u.Role), s.frontendURL+"/dashboard")
	}

	return s.issue(ctx, u)
}

func (s *Service) redeem(ctx context.Context, u *user.User, token string) error {
	if s.invitations == nil {
		return ErrInvalidInvitation
	}
	vendorID, err := s.invitations.Redeem(ctx, token, u.ID)
	if err != nil {
		return err
	}
	if err := s.users.SetRole(ctx, u.ID, session.RoleVendor); err != nil {
		return err
	}
	u.Role = session.RoleVendor
	log.Info().Str("user_id", u.ID.String()).Str("vendor_id", vendorID.String()).Msg("Invitation redeemed")
	return nil
}

func (s *Service) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	u, err := s.users.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		return nil, err
	}
	if u == nil || !password.Verify(req.Password, u.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	if !u.IsActive {
		return nil, ErrUserInactive
	}

	if err := s.users.UpdateLastLogin(ctx, u.ID); err != nil {
		log.Warn().Err(err).Str("user_id", u.ID.String()).Msg("Failed to record login")
	}
	return s.issue(ctx, u)
}

// Refresh rotates a refresh token and issues a new pair.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	if refreshToken == "" {
		return nil, ErrRefreshTokenRequired
	}
	claims, err := s.jwt.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	hash := jwt.HashToken(refreshToken)
	userID, err := s.refresh.Lookup(ctx, hash)
	if err != nil || userID != claims.UserID {
		return nil, ErrInvalidRefreshToken
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	if !u.IsActive {
		return nil, ErrUserInactive
	}

	if err := s.refresh.Revoke(ctx, hash); err != nil {
		log.Warn().Err(err).Msg("Failed to revoke rotated refresh token")
	}
	return s.issue(ctx, u)
}

// Logout revokes the refresh token, ending the session.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.refresh.Revoke(ctx, jwt.HashToken(refreshToken))
}

func (s *Service) Me(ctx context.Context, sess session.Session) (*user.Public, error) {
	u, err := s.users.GetByID(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	p := u.ToPublic()
	return &p, nil
}

func (s *Service) issue(ctx context.Context, u *user.User) (*AuthResponse, error) {
	access, err := s.jwt.GenerateAccessToken(u.ID, string(u.Role))
	if err != nil {
		return nil, err
	}
	refresh, _, err := s.jwt.GenerateRefreshToken(u.ID)
	if err != nil {
		return nil, err
	}
	if err := s.refresh.Save(ctx, jwt.HashToken(refresh), u.ID, s.jwt.RefreshTTL()); err != nil {
		return nil, err
	}

	return &AuthResponse{
		User: u.ToPublic(),
		Tokens: TokensResponse{
			AccessToken:  access,
			RefreshToken: refresh,
			ExpiresIn:    int(s.jwt.AccessTTL().Seconds()),
		},
	}, nil
}
