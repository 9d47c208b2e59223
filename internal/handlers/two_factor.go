package handlers

import (
	"crypto/rand"
	"encoding/base32"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pquerna/otp/totp"
	"github.com/reelnet/backend/internal/database"
	"github.com/reelnet/backend/internal/models"
	"github.com/reelnet/backend/internal/util"
	"golang.org/x/crypto/bcrypt"
)

const (
	backupCodeCount  = 10
	backupCodeLength = 8
	otpIssuer        = "Reelnet"
)

// Enable2FARequest is the request body for initiating 2FA setup
type Enable2FARequest struct {
	Password string `json:"password" binding:"required"`
}

// Enable2FAResponse contains the TOTP setup data
type Enable2FAResponse struct {
	Secret      string   `json:"secret"`       // Base32-encoded secret for manual entry
	QRCodeURL   string   `json:"qr_code_url"`  // otpauth:// URL for QR code
	BackupCodes []string `json:"backup_codes"` // One-time backup codes, shown once
}

// Verify2FARequest is the request body for verifying 2FA setup
type Verify2FARequest struct {
	Code string `json:"code" binding:"required"`
}

// Disable2FARequest is the request body for disabling 2FA
type Disable2FARequest struct {
	Password string `json:"password"`
	Code     string `json:"code"` // TOTP code or backup code
}

// Get2FAStatus returns the current 2FA status for the authenticated user
// GET /api/v1/auth/2fa/status
func (h *Handlers) Get2FAStatus(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	var backupCodesRemaining int
	if user.BackupCodes != nil && *user.BackupCodes != "" {
		var codes []string
		if err := json.Unmarshal([]byte(*user.BackupCodes), &codes); err == nil {
			backupCodesRemaining = len(codes)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"enabled":                user.TwoFactorEnabled,
		"backup_codes_remaining": backupCodesRemaining,
	})
}

// Enable2FA initiates TOTP setup for the authenticated user. The secret is
// stored immediately but 2FA only turns on after the first code verifies.
// POST /api/v1/auth/2fa/enable
func (h *Handlers) Enable2FA(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	var req Enable2FARequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, "password is required")
		return
	}

	if user.TwoFactorEnabled {
		util.RespondBadRequest(c, "two-factor authentication is already enabled")
		return
	}

	if user.PasswordHash != nil && !verifyPassword(*user.PasswordHash, req.Password) {
		util.RespondUnauthorized(c, "invalid password")
		return
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      otpIssuer,
		AccountName: user.Email,
		SecretSize:  32,
	})
	if err != nil {
		util.RespondInternalError(c, "failed to generate 2FA secret")
		return
	}

	backupCodes := generateBackupCodes(backupCodeCount)
	hashedCodesJSON, err := json.Marshal(hashBackupCodes(backupCodes))
	if err != nil {
		util.RespondInternalError(c, "failed to prepare backup codes")
		return
	}
	hashedCodesStr := string(hashedCodesJSON)

	secret := key.Secret()
	ctx, cancel := database.WithTimeout(c.Request.Context())
	defer cancel()
	if err := database.DB.WithContext(ctx).Model(user).Updates(map[string]interface{}{
		"two_factor_secret": secret,
		"backup_codes":      hashedCodesStr,
	}).Error; err != nil {
		util.RespondStorageError(c, err, "user")
		return
	}

	c.JSON(http.StatusOK, Enable2FAResponse{
		Secret:      secret,
		QRCodeURL:   key.URL(),
		BackupCodes: backupCodes,
	})
}

// Verify2FA completes 2FA setup by verifying a TOTP code
// POST /api/v1/auth/2fa/verify
func (h *Handlers) Verify2FA(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	var req Verify2FARequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, "code is required")
		return
	}

	if user.TwoFactorSecret == nil || *user.TwoFactorSecret == "" {
		util.RespondBadRequest(c, "2FA setup not initiated")
		return
	}

	if !totp.Validate(req.Code, *user.TwoFactorSecret) {
		util.RespondUnauthorized(c, "invalid verification code")
		return
	}

	ctx, cancel := database.WithTimeout(c.Request.Context())
	defer cancel()
	if err := database.DB.WithContext(ctx).Model(user).
		Update("two_factor_enabled", true).Error; err != nil {
		util.RespondStorageError(c, err, "user")
		return
	}

	c.JSON(http.StatusOK, gin.H{"enabled": true})
}

// Disable2FA disables 2FA after verifying a password, TOTP code or backup
// code.
// POST /api/v1/auth/2fa/disable
func (h *Handlers) Disable2FA(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	var req Disable2FARequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, "invalid request")
		return
	}

	if !user.TwoFactorEnabled {
		util.RespondBadRequest(c, "two-factor authentication is not enabled")
		return
	}

	verified := false
	if req.Code != "" && user.TwoFactorSecret != nil {
		if totp.Validate(req.Code, *user.TwoFactorSecret) {
			verified = true
		} else if consumeBackupCode(c, user, req.Code) {
			verified = true
		}
	}
	if !verified && req.Password != "" && user.PasswordHash != nil {
		verified = verifyPassword(*user.PasswordHash, req.Password)
	}
	if !verified {
		util.RespondUnauthorized(c, "invalid password or verification code")
		return
	}

	ctx, cancel := database.WithTimeout(c.Request.Context())
	defer cancel()
	if err := database.DB.WithContext(ctx).Model(user).Updates(map[string]interface{}{
		"two_factor_enabled": false,
		"two_factor_secret":  nil,
		"backup_codes":       nil,
	}).Error; err != nil {
		util.RespondStorageError(c, err, "user")
		return
	}

	c.JSON(http.StatusOK, gin.H{"enabled": false})
}

// RegenerateBackupCodes issues a fresh set of backup codes, invalidating
// the old ones.
// POST /api/v1/auth/2fa/backup-codes
func (h *Handlers) RegenerateBackupCodes(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	var req Verify2FARequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, "current 2FA code is required")
		return
	}

	if !user.TwoFactorEnabled || user.TwoFactorSecret == nil {
		util.RespondBadRequest(c, "two-factor authentication is not enabled")
		return
	}

	if !totp.Validate(req.Code, *user.TwoFactorSecret) {
		util.RespondUnauthorized(c, "invalid verification code")
		return
	}

	backupCodes := generateBackupCodes(backupCodeCount)
	hashedCodesJSON, err := json.Marshal(hashBackupCodes(backupCodes))
	if err != nil {
		util.RespondInternalError(c, "failed to prepare backup codes")
		return
	}
	hashedCodesStr := string(hashedCodesJSON)

	ctx, cancel := database.WithTimeout(c.Request.Context())
	defer cancel()
	if err := database.DB.WithContext(ctx).Model(user).
		Update("backup_codes", hashedCodesStr).Error; err != nil {
		util.RespondStorageError(c, err, "user")
		return
	}

	c.JSON(http.StatusOK, gin.H{"backup_codes": backupCodes})
}

// generateBackupCodes generates random one-time codes formatted XXXX-XXXX
func generateBackupCodes(count int) []string {
	codes := make([]string, count)
	for i := 0; i < count; i++ {
		buf := make([]byte, backupCodeLength)
		rand.Read(buf)
		// base32 avoids ambiguous characters like 0/O and 1/I
		encoded := strings.ToUpper(base32.StdEncoding.EncodeToString(buf))[:backupCodeLength]
		codes[i] = encoded[:4] + "-" + encoded[4:]
	}
	return codes
}

// hashBackupCodes bcrypt-hashes codes for storage
func hashBackupCodes(codes []string) []string {
	hashed := make([]string, len(codes))
	for i, code := range codes {
		hash, err := bcrypt.GenerateFromPassword([]byte(normalizeBackupCode(code)), bcrypt.DefaultCost)
		if err != nil {
			continue
		}
		hashed[i] = string(hash)
	}
	return hashed
}

func normalizeBackupCode(code string) string {
	return strings.ReplaceAll(strings.ToUpper(code), "-", "")
}

// consumeBackupCode checks the code against the stored hashes and removes
// it on a match.
func consumeBackupCode(c *gin.Context, user *models.User, code string) bool {
	if user.BackupCodes == nil || *user.BackupCodes == "" {
		return false
	}

	var hashedCodes []string
	if err := json.Unmarshal([]byte(*user.BackupCodes), &hashedCodes); err != nil {
		return false
	}

	normalized := normalizeBackupCode(code)
	for i, hash := range hashedCodes {
		if bcrypt.CompareHashAndPassword([]byte(hash), []byte(normalized)) == nil {
			remaining := append(hashedCodes[:i], hashedCodes[i+1:]...)
			remainingJSON, err := json.Marshal(remaining)
			if err != nil {
				return false
			}
			remainingStr := string(remainingJSON)

			ctx, cancel := database.WithTimeout(c.Request.Context())
			defer cancel()
			if err := database.DB.WithContext(ctx).Model(user).
				Update("backup_codes", remainingStr).Error; err != nil {
				return false
			}
			return true
		}
	}
	return false
}

func verifyPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
