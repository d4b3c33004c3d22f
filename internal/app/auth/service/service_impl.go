package service

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/Miraines/MoonyAndStarry/contacts-service/internal/adapters/transport/http/dto"
	customErrors "github.com/Miraines/MoonyAndStarry/contacts-service/internal/domain/auth/errors"
	"github.com/Miraines/MoonyAndStarry/contacts-service/internal/domain/auth/jwt"
	"github.com/Miraines/MoonyAndStarry/contacts-service/internal/domain/auth/model"
	repo "github.com/Miraines/MoonyAndStarry/contacts-service/internal/domain/auth/repo"
	"github.com/Miraines/MoonyAndStarry/contacts-service/internal/infra/clock"
	"github.com/Miraines/MoonyAndStarry/contacts-service/internal/infra/config"
	lg "github.com/Miraines/MoonyAndStarry/contacts-service/internal/infra/log"
	"github.com/go-playground/validator/v10"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	MsgInvalidEmail      = "Invalid email"
	MsgInvalidPassword   = "Invalid password"
	MsgEmailConfirmed    = "Email confirmed"
	MsgAlreadyConfirmed  = "Your email is already confirmed"
	MsgCheckEmail        = "Check your email for confirmation."
	MsgResetLinkSent     = "Password reset link has been sent to your email"
	msgPasswordUpdatedFn = "Password updated successfully for user %s"

	TokenTypeBearer = "bearer"
)

var argonParams = &argon2id.Params{
	Memory:      64 * 1024, // 64 MiB
	Iterations:  2,
	Parallelism: 4,
	SaltLength:  16,
	KeyLength:   32,
}

// Deps holds every collaborator of the auth core. Zero-valued optional
// fields (Avatars, Gravatar, Clock, Log) get harmless defaults.
type Deps struct {
	Users     repo.UserRepo
	Cache     repo.Cache
	JWT       jwt.JWTUtil
	Mailer    repo.Mailer
	Avatars   repo.AvatarStore
	Gravatar  repo.AvatarLookup
	Config    *config.Config
	Validator *validator.Validate
	Clock     clock.Clock
	Log       *zap.Logger
}

type authService struct {
	userRepo repo.UserRepo
	cache    repo.Cache
	jwtUtil  jwt.JWTUtil
	mailer   repo.Mailer
	avatars  repo.AvatarStore
	gravatar repo.AvatarLookup
	cfg      *config.Config
	v        *validator.Validate
	clock    clock.Clock
	log      *zap.Logger
	userTTL  time.Duration
	resetTTL time.Duration
}

type Service interface {
	Signup(ctx context.Context, in dto.SignupDTO, host string) (model.User, error)
	Login(ctx context.Context, in dto.LoginDTO) (model.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (model.TokenPair, error)
	Logout(ctx context.Context, user model.User) error
	CurrentUser(ctx context.Context, accessToken string) (model.User, error)
	ConfirmEmail(ctx context.Context, token string) (string, error)
	RequestEmail(ctx context.Context, in dto.RequestEmailDTO, host string) (string, error)
	RequestPasswordReset(ctx context.Context, in dto.PasswordResetRequestDTO, host string) (string, error)
	ResetPassword(ctx context.Context, in dto.PasswordResetDTO) (string, error)
	UpdateAvatar(ctx context.Context, user model.User, body []byte, contentType string) (model.User, error)
}

func New(d Deps) Service {
	a := &authService{
		userRepo: d.Users, cache: d.Cache, jwtUtil: d.JWT, mailer: d.Mailer,
		avatars: d.Avatars, gravatar: d.Gravatar, cfg: d.Config, v: d.Validator,
		clock: d.Clock, log: d.Log,
		userTTL: d.Config.UserCacheTTL, resetTTL: d.Config.ResetTokenTTL,
	}
	if a.clock == nil {
		a.clock = clock.System
	}
	if a.log == nil {
		a.log = zap.NewNop()
	}
	if a.v == nil {
		a.v = dto.NewValidator()
	}
	if a.userTTL <= 0 {
		a.userTTL = 300 * time.Second
	}
	if a.resetTTL <= 0 {
		a.resetTTL = time.Hour
	}
	return a
}

func userKey(email string) string  { return "user:" + email }
func resetKey(email string) string { return "reset:" + email }

func (a *authService) Signup(ctx context.Context, in dto.SignupDTO, host string) (model.User, error) {
	if err := a.v.Struct(in); err != nil {
		return model.User{}, customErrors.NewInvalidArgument(err.Error())
	}

	_, err := a.userRepo.GetUserByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return model.User{}, customErrors.ErrAlreadyExists
	case !customErrors.IsNotFound(err):
		return model.User{}, customErrors.WrapInternal(err, "Signup")
	}

	passwordHash, err := a.hash(in.Password)
	if err != nil {
		return model.User{}, customErrors.WrapInternal(err, "Signup")
	}

	now := a.clock.Now()
	user := model.User{
		ID:           uuid.New(),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: passwordHash,
		Avatar:       a.lookupAvatar(in.Email),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err = a.userRepo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, customErrors.ErrAlreadyExists) {
			return model.User{}, customErrors.ErrAlreadyExists
		}
		return model.User{}, customErrors.WrapInternal(err, "Signup")
	}

	a.sendVerification(ctx, user, host)
	return user, nil
}

// lookupAvatar is best effort: signup never fails because of it.
func (a *authService) lookupAvatar(email string) *string {
	if a.gravatar == nil {
		return nil
	}
	url, err := a.gravatar.URL(email)
	if err != nil {
		a.log.Warn("gravatar lookup failed", lg.Email(email), zap.Error(err))
		return nil
	}
	return &url
}

func (a *authService) Login(ctx context.Context, in dto.LoginDTO) (model.TokenPair, error) {
	if err := a.v.Struct(in); err != nil {
		return model.TokenPair{}, customErrors.NewInvalidArgument(err.Error())
	}

	user, err := a.userRepo.GetUserByEmail(ctx, in.Username)
	switch {
	case customErrors.IsNotFound(err):
		return model.TokenPair{}, customErrors.NewInvalidCredentials(MsgInvalidEmail)
	case err != nil:
		return model.TokenPair{}, customErrors.WrapInternal(err, "Login")
	}

	if !user.Confirmed {
		return model.TokenPair{}, customErrors.ErrEmailNotConfirmed
	}

	ok, err := argon2id.ComparePasswordAndHash(in.Password+a.cfg.PasswordPepper, user.PasswordHash)
	if err != nil {
		return model.TokenPair{}, customErrors.WrapInternal(err, "Login")
	}
	if !ok {
		return model.TokenPair{}, customErrors.NewInvalidCredentials(MsgInvalidPassword)
	}

	return a.issueTokens(ctx, user)
}

// Refresh rotates the pair. A token that does not match the stored one is
// treated as a replay: the stored token is cleared so the whole chain dies.
func (a *authService) Refresh(ctx context.Context, refreshToken string) (model.TokenPair, error) {
	email, err := a.jwtUtil.DecodeRefreshToken(refreshToken)
	if err != nil {
		return model.TokenPair{}, err
	}

	user, err := a.userRepo.GetUserByEmail(ctx, email)
	switch {
	case customErrors.IsNotFound(err):
		return model.TokenPair{}, customErrors.ErrUnauthorized
	case err != nil:
		return model.TokenPair{}, customErrors.WrapInternal(err, "Refresh")
	}

	if user.RefreshToken == nil || *user.RefreshToken != refreshToken {
		if err := a.userRepo.UpdateRefreshToken(ctx, user.ID, nil); err != nil {
			return model.TokenPair{}, customErrors.WrapInternal(err, "Refresh")
		}
		a.log.Warn("refresh token mismatch, session revoked", lg.Email(email))
		return model.TokenPair{}, customErrors.ErrUnauthorized
	}

	return a.issueTokens(ctx, user)
}

func (a *authService) Logout(ctx context.Context, user model.User) error {
	if err := a.userRepo.UpdateRefreshToken(ctx, user.ID, nil); err != nil {
		return customErrors.WrapInternal(err, "Logout")
	}
	return nil
}

func (a *authService) issueTokens(ctx context.Context, user model.User) (model.TokenPair, error) {
	at, _, err := a.jwtUtil.GenerateAccessToken(user.Email)
	if err != nil {
		return model.TokenPair{}, customErrors.WrapInternal(err, "GenerateAccessToken")
	}
	rt, _, err := a.jwtUtil.GenerateRefreshToken(user.Email)
	if err != nil {
		return model.TokenPair{}, customErrors.WrapInternal(err, "GenerateRefreshToken")
	}
	if err = a.userRepo.UpdateRefreshToken(ctx, user.ID, &rt); err != nil {
		return model.TokenPair{}, customErrors.WrapInternal(err, "StoreRefresh")
	}

	return model.TokenPair{
		AccessToken:  at,
		RefreshToken: rt,
		TokenType:    TokenTypeBearer,
	}, nil
}

func (a *authService) hash(password string) (string, error) {
	return argon2id.CreateHash(password+a.cfg.PasswordPepper, argonParams)
}

func (a *authService) ConfirmEmail(ctx context.Context, token string) (string, error) {
	email, err := a.jwtUtil.EmailFromToken(token)
	if err != nil {
		return "", err
	}

	user, err := a.userRepo.GetUserByEmail(ctx, email)
	switch {
	case customErrors.IsNotFound(err):
		return "", customErrors.ErrVerification
	case err != nil:
		return "", customErrors.WrapInternal(err, "ConfirmEmail")
	}

	if user.Confirmed {
		return MsgAlreadyConfirmed, nil
	}
	if err := a.userRepo.ConfirmEmail(ctx, email); err != nil {
		return "", customErrors.WrapInternal(err, "ConfirmEmail")
	}
	return MsgEmailConfirmed, nil
}

func (a *authService) RequestEmail(ctx context.Context, in dto.RequestEmailDTO, host string) (string, error) {
	if err := a.v.Struct(in); err != nil {
		return "", customErrors.NewInvalidArgument(err.Error())
	}

	user, err := a.userRepo.GetUserByEmail(ctx, in.Email)
	switch {
	case customErrors.IsNotFound(err):
		return "", customErrors.ErrNotFound
	case err != nil:
		return "", customErrors.WrapInternal(err, "RequestEmail")
	}

	if user.Confirmed {
		return MsgAlreadyConfirmed, nil
	}
	a.sendVerification(ctx, user, host)
	return MsgCheckEmail, nil
}

// RequestPasswordReset mints a one-time token. The cache entry, not the JWT
// expiry, decides whether the token is still usable.
func (a *authService) RequestPasswordReset(ctx context.Context, in dto.PasswordResetRequestDTO, host string) (string, error) {
	if err := a.v.Struct(in); err != nil {
		return "", customErrors.NewInvalidArgument(err.Error())
	}

	user, err := a.userRepo.GetUserByEmail(ctx, in.Email)
	switch {
	case customErrors.IsNotFound(err):
		return "", customErrors.ErrNotFound
	case err != nil:
		return "", customErrors.WrapInternal(err, "RequestPasswordReset")
	}

	token, _, err := a.jwtUtil.GenerateEmailToken(user.Email)
	if err != nil {
		return "", customErrors.WrapInternal(err, "GenerateEmailToken")
	}
	if err := a.cache.Set(ctx, resetKey(user.Email), token, a.resetTTL); err != nil {
		return "", customErrors.WrapInternal(err, "StoreResetToken")
	}

	a.dispatch(ctx, "password reset", user.Email, func(ctx context.Context) error {
		return a.mailer.SendPasswordReset(ctx, user.Email, user.Username, host, token)
	})
	return MsgResetLinkSent, nil
}

// ResetPassword consumes a reset token. Get, compare and Delete are separate
// cache calls, so two concurrent confirms with the same token can both pass.
// The cached user snapshot is left as is and expires on its own.
func (a *authService) ResetPassword(ctx context.Context, in dto.PasswordResetDTO) (string, error) {
	if err := a.v.Struct(in); err != nil {
		return "", customErrors.NewInvalidArgument(err.Error())
	}

	email, err := a.jwtUtil.ParseEmailToken(in.Token)
	if err != nil {
		return "", err
	}

	cached, err := a.cache.Get(ctx, resetKey(email))
	switch {
	case customErrors.IsNotFound(err):
		return "", customErrors.ErrInvalidOrExpiredToken
	case err != nil:
		return "", customErrors.WrapInternal(err, "ResetPassword")
	}
	if cached != in.Token {
		return "", customErrors.ErrInvalidOrExpiredToken
	}

	passwordHash, err := a.hash(in.NewPassword)
	if err != nil {
		return "", customErrors.WrapInternal(err, "ResetPassword")
	}

	user, err := a.userRepo.UpdatePassword(ctx, email, passwordHash)
	switch {
	case customErrors.IsNotFound(err):
		return "", customErrors.ErrNotFound
	case err != nil:
		return "", customErrors.WrapInternal(err, "ResetPassword")
	}

	if err := a.cache.Delete(ctx, resetKey(email)); err != nil {
		return "", customErrors.WrapInternal(err, "ConsumeResetToken")
	}
	return fmt.Sprintf(msgPasswordUpdatedFn, user.Username), nil
}

func (a *authService) sendVerification(ctx context.Context, user model.User, host string) {
	a.dispatch(ctx, "verification", user.Email, func(ctx context.Context) error {
		token, _, err := a.jwtUtil.GenerateEmailToken(user.Email)
		if err != nil {
			return err
		}
		return a.mailer.SendVerification(ctx, user.Email, user.Username, host, token)
	})
}

// dispatch sends mail in the background; failures are logged only.
func (a *authService) dispatch(ctx context.Context, kind, email string, send func(context.Context) error) {
	if a.mailer == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	go func() {
		if err := send(ctx); err != nil {
			a.log.Error("send email failed", zap.String("kind", kind), lg.Email(email), zap.Error(err))
		}
	}()
}

// CurrentUser resolves the bearer of an access token. Snapshots are served
// from the cache for up to userTTL and may be stale within that window.
func (a *authService) CurrentUser(ctx context.Context, accessToken string) (model.User, error) {
	email, err := a.jwtUtil.DecodeAccessToken(accessToken)
	if err != nil {
		return model.User{}, customErrors.ErrUnauthorized
	}

	raw, err := a.cache.Get(ctx, userKey(email))
	switch {
	case err == nil:
		user, decErr := decodeSnapshot(raw)
		if decErr == nil {
			return user, nil
		}
		a.log.Warn("bad user snapshot in cache", lg.Email(email), zap.Error(decErr))
	case !customErrors.IsNotFound(err):
		a.log.Warn("user cache unavailable", lg.Email(email), zap.Error(err))
	}

	user, err := a.userRepo.GetUserByEmail(ctx, email)
	switch {
	case customErrors.IsNotFound(err):
		return model.User{}, customErrors.ErrUnauthorized
	case err != nil:
		return model.User{}, customErrors.WrapInternal(err, "CurrentUser")
	}

	a.storeSnapshot(ctx, user)
	return user, nil
}

func (a *authService) UpdateAvatar(ctx context.Context, user model.User, body []byte, contentType string) (model.User, error) {
	if a.avatars == nil {
		return model.User{}, customErrors.WrapInternal(errors.New("avatar storage is not configured"), "UpdateAvatar")
	}
	if len(body) == 0 {
		return model.User{}, customErrors.NewInvalidArgument("empty file")
	}

	url, err := a.avatars.Upload(ctx, avatarKey(user.ID, body), body, contentType)
	if err != nil {
		return model.User{}, customErrors.WrapInternal(err, "UploadAvatar")
	}

	updated, err := a.userRepo.UpdateAvatar(ctx, user.Email, &url)
	if err != nil {
		if customErrors.IsNotFound(err) {
			return model.User{}, customErrors.ErrUnauthorized
		}
		return model.User{}, customErrors.WrapInternal(err, "UpdateAvatar")
	}

	a.storeSnapshot(ctx, updated)
	return updated, nil
}

// avatarKey embeds a content digest so every new image gets a new URL.
func avatarKey(id uuid.UUID, body []byte) string {
	sum := sha256.Sum256(body)
	return fmt.Sprintf("avatars/%s/%x", id, sum[:8])
}

// userSnapshot keeps the fields that model.User hides from JSON responses.
type userSnapshot struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password"`
	Avatar       *string   `json:"avatar"`
	RefreshToken *string   `json:"refresh_token"`
	Confirmed    bool      `json:"confirmed"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func encodeSnapshot(u model.User) (string, error) {
	b, err := json.Marshal(userSnapshot(u))
	return string(b), err
}

func decodeSnapshot(raw string) (model.User, error) {
	var s userSnapshot
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return model.User{}, err
	}
	return model.User(s), nil
}

func (a *authService) storeSnapshot(ctx context.Context, user model.User) {
	raw, err := encodeSnapshot(user)
	if err != nil {
		a.log.Warn("encode user snapshot", lg.Email(user.Email), zap.Error(err))
		return
	}
	if err := a.cache.Set(ctx, userKey(user.Email), raw, a.userTTL); err != nil {
		a.log.Warn("cache user snapshot", lg.Email(user.Email), zap.Error(err))
	}
}
