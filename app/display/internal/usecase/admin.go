package usecase

import (
	"context"
	"time"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/iWorld-y/wellness_report/app/display/internal/conf"
)

// AdminUseCase 管理员登录与令牌校验
type AdminUseCase struct {
	username     string
	passwordHash string
	jwtKey       string
	ttl          time.Duration
	now          func() time.Time
	log          *log.Helper
}

// NewAdminUseCase 创建管理员业务逻辑实例
func NewAdminUseCase(auth *conf.Auth, logger log.Logger) *AdminUseCase {
	uc := &AdminUseCase{
		username: "admin",
		ttl:      24 * time.Hour,
		now:      time.Now,
		log:      log.NewHelper(logger),
	}
	if auth == nil {
		return uc
	}
	if auth.AdminUser != "" {
		uc.username = auth.AdminUser
	}
	uc.passwordHash = auth.AdminPasswordHash
	if d, err := time.ParseDuration(auth.TokenTTL); err == nil && d > 0 {
		uc.ttl = d
	}
	if uc.passwordHash == "" {
		return uc
	}

	uc.jwtKey = auth.JwtKey
	if uc.jwtKey == "" {
		// 未配置密钥时使用进程内随机密钥，重启后令牌失效
		uc.jwtKey = uuid.NewString() + uuid.NewString()
		uc.log.Warn("auth.jwt_key is empty, using a random key for this process")
	}
	return uc
}

// Login 管理员登录，未配置密码哈希时禁止登录
func (uc *AdminUseCase) Login(ctx context.Context, username, password string) (string, error) {
	if uc.passwordHash == "" {
		return "", errors.Unauthorized("ADMIN_DISABLED", "admin login is not configured")
	}
	if username != uc.username {
		return "", errors.Unauthorized("AUTH_FAILED", "invalid username or password")
	}
	// 验证密码哈希
	if err := bcrypt.CompareHashAndPassword([]byte(uc.passwordHash), []byte(password)); err != nil {
		uc.log.Warnf("admin login failed for %q", username)
		return "", errors.Unauthorized("AUTH_FAILED", "invalid username or password")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"username": username,
		"exp":      uc.now().Add(uc.ttl).Unix(),
	})
	return token.SignedString([]byte(uc.jwtKey))
}

// Verify 校验令牌并返回用户名，未配置密码哈希时拒绝所有令牌
func (uc *AdminUseCase) Verify(tokenString string) (string, error) {
	if uc.passwordHash == "" || uc.jwtKey == "" {
		return "", errors.Unauthorized("ADMIN_DISABLED", "admin login is not configured")
	}
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		return []byte(uc.jwtKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(uc.now))
	if err != nil || !token.Valid {
		return "", errors.Unauthorized("TOKEN_INVALID", "invalid or expired token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.Unauthorized("TOKEN_INVALID", "invalid token claims")
	}
	username, _ := claims["username"].(string)
	if username != uc.username {
		return "", errors.Unauthorized("TOKEN_INVALID", "unknown subject")
	}
	return username, nil
}
