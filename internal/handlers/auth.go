package handlers

import (
	"errors"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/delta/research-portal/db"
	"github.com/delta/research-portal/internal/auth"
	"github.com/delta/research-portal/internal/models"
	"github.com/delta/research-portal/internal/services"
	"github.com/delta/research-portal/internal/utils"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// webmailDomain is the institutional mail domain. Accounts whose local part
// is numeric are roll numbers, i.e. students.
const webmailDomain = "@nitt.edu"

type RegisterRequest struct {
	Name       string `json:"name" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,min=8"`
	Department string `json:"department" binding:"required"`
	ImageURL   string `json:"image_url"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type ResetPassRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPassUpdateRequest struct {
	NewPassword string `json:"new_password" binding:"required,min=8"`
	Token       string `json:"token" binding:"required"`
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Register creates an unverified account and dispatches the verification
// mail. Whether the caller is staff is derived from the webmail address.
func Register(ctx *gin.Context) {
	var body RegisterRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user details"})
		return
	}

	email := strings.ToLower(strings.TrimSpace(body.Email))

	if !strings.HasSuffix(email, webmailDomain) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Please use webmail"})
		return
	}

	var department models.Department

	if err := db.DB.Where("short_name = ?", body.Department).First(&department).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Department does not exist"})
		} else {
			log.Printf("Database error when fetching department: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	var existingUser models.User

	err := db.DB.Where("email = ?", email).First(&existingUser).Error

	if err == nil {
		ctx.JSON(http.StatusConflict, gin.H{"error": "An account already exists under the webmail address"})
		return
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("Database error when checking existing user: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)

	if err != nil {
		log.Printf("Failed to hash password: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	localPart := strings.SplitN(email, "@", 2)[0]

	newUser := models.User{
		Name:         body.Name,
		Email:        email,
		PasswordHash: string(passwordHash),
		IsStaff:      !isNumeric(localPart),
		AdminLevel:   models.AdminLevelNormal,
		DepartmentID: department.ID,
		AuthToken:    auth.GenerateToken(auth.AuthTokenLength),
		ImageURL:     body.ImageURL,
	}

	if err := db.DB.Create(&newUser).Error; err != nil {
		log.Printf("Failed to create user: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	log.Printf("User(webmail=%s) registration successful", email)

	// The account stays created even if the mail cannot be queued; the
	// caller is told so delivery failures are visible to operators.
	if !services.SendVerificationEmail(&newUser) {
		log.Printf("User(webmail=%s) verification mail dispatch failed", email)
		ctx.JSON(http.StatusCreated, gin.H{"error": "Error sending verification link to " + email})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"data": "Verification email has been sent to " + email})
}

// Login checks the credentials and replaces any previous session of the
// user with a fresh one.
func Login(ctx *gin.Context) {
	var body LoginRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	email := strings.ToLower(strings.TrimSpace(body.Email))

	var user models.User

	if err := db.DB.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "User does not exist"})
		} else {
			log.Printf("Database error when fetching user: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	if !user.IsVerified {
		log.Printf("User(email=%s) verification pending", email)
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Email verification pending. Please check your inbox to activate your account"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(body.Password)); err != nil {
		log.Printf("User(email=%s) password incorrect", email)
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User password incorrect"})
		return
	}

	session, err := auth.CreateSession(db.DB, user.ID)

	if err != nil {
		log.Printf("Failed to create session: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	http.SetCookie(ctx.Writer, &http.Cookie{
		Name:     "session",
		Value:    session.Token,
		Path:     "/",
		MaxAge:   int(auth.SessionDuration.Seconds()),
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteNoneMode,
	})

	log.Printf("User(email=%s) login successful", email)

	ctx.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"email": user.Email,
			"name":  user.Name,
			"token": session.Token,
		},
	})
}

// Logout deletes every session of the caller.
func Logout(ctx *gin.Context) {
	user, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := auth.DeleteSessions(db.DB, user.ID); err != nil {
		log.Printf("Failed to delete sessions: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Logout error!"})
		return
	}

	http.SetCookie(ctx.Writer, &http.Cookie{
		Name:     "session",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteNoneMode,
	})

	log.Printf("User(pk=%d) logged out successfully", user.ID)

	ctx.JSON(http.StatusOK, gin.H{"data": "Logged out successfully!"})
}

// VerifyEmail consumes the emailed token, marks the account verified and
// rotates the token so the link only works once.
func VerifyEmail(ctx *gin.Context) {
	token := ctx.Query("auth_token")

	var user models.User

	if err := db.DB.Where("auth_token = ?", token).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid token"})
		} else {
			log.Printf("Database error when fetching user by token: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	if user.IsVerified {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "User already verified"})
		return
	}

	updates := map[string]interface{}{
		"is_verified": true,
		"auth_token":  auth.GenerateToken(auth.AuthTokenLength),
	}

	if err := db.DB.Model(&user).Updates(updates).Error; err != nil {
		log.Printf("Failed to verify user: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	log.Printf("User(email=%s) verified successfully", user.Email)

	if frontend := os.Getenv("FRONTEND_BASE_URL"); frontend != "" {
		ctx.Redirect(http.StatusFound, frontend+"login")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": "Account verified successfully!"})
}

// RequestPasswordReset mails the reset link to an existing verified user.
func RequestPasswordReset(ctx *gin.Context) {
	var body ResetPassRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	var user models.User

	if err := db.DB.Where("email = ?", strings.ToLower(strings.TrimSpace(body.Email))).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "User does not exist"})
		} else {
			log.Printf("Database error when fetching user: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	if !user.IsVerified {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Email verification pending. Please check your inbox to activate your account"})
		return
	}

	if !services.SendResetPasswordEmail(&user) {
		log.Printf("User(email=%s) reset mail dispatch failed", user.Email)
		ctx.JSON(http.StatusOK, gin.H{"error": "Error sending password reset link to " + user.Email})
		return
	}

	log.Printf("User(email=%s) password reset link sent", user.Email)

	ctx.JSON(http.StatusOK, gin.H{"data": "Password reset link sent!"})
}

// SubmitNewPassword consumes a reset token and installs the new password.
func SubmitNewPassword(ctx *gin.Context) {
	var body ResetPassUpdateRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	var user models.User

	if err := db.DB.Where("auth_token = ?", body.Token).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid Token"})
		} else {
			log.Printf("Database error when fetching user by token: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(body.NewPassword), bcrypt.DefaultCost)

	if err != nil {
		log.Printf("Failed to hash password: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	updates := map[string]interface{}{
		"password_hash": string(passwordHash),
		"auth_token":    auth.GenerateToken(auth.AuthTokenLength),
	}

	if err := db.DB.Model(&user).Updates(updates).Error; err != nil {
		log.Printf("Failed to update password: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	log.Printf("User(email=%s) password reset successful", user.Email)

	ctx.JSON(http.StatusOK, gin.H{"data": "Password successfully reset!"})
}

// GetIsStaff reports the staff flag annotated by the middleware.
func GetIsStaff(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"data": utils.GetIsStaff(ctx)})
}

// GetAdminLevel reports the caller's admin level.
func GetAdminLevel(ctx *gin.Context) {
	user, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": user.AdminLevel})
}
