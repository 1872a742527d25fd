package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/haven-community/haven/config"
	"github.com/haven-community/haven/middleware"
	"github.com/haven-community/haven/models"
	"github.com/haven-community/haven/stores"
	"github.com/haven-community/haven/utils"
)

// AuthController handles signup, login, and session introspection.
type AuthController struct {
	users *stores.UserStore
}

// NewAuthController creates an AuthController.
func NewAuthController(users *stores.UserStore) *AuthController {
	return &AuthController{users: users}
}

// Signup registers a local account and issues a session. Role is fixed at
// creation; professional signups must carry degree and institution.
func (a *AuthController) Signup(ctx *gin.Context) {
	var req struct {
		Name        string `json:"name"`
		Email       string `json:"email"`
		Password    string `json:"password"`
		UserType    string `json:"userType"`
		Degree      string `json:"degree"`
		Institution string `json:"institution"`
		Credentials string `json:"credentials"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid request payload")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || req.Email == "" || req.Password == "" {
		utils.Error(ctx, http.StatusBadRequest, 40002, "name, email, and password are required")
		return
	}

	role := req.UserType
	if role == "" {
		role = models.RoleCasual
	}
	if role != models.RoleCasual && role != models.RoleProfessional {
		utils.Error(ctx, http.StatusBadRequest, 40003, "userType must be casual or professional")
		return
	}

	user := models.User{
		Name:  req.Name,
		Email: req.Email,
		Role:  role,
	}
	if role == models.RoleProfessional {
		if strings.TrimSpace(req.Degree) == "" || strings.TrimSpace(req.Institution) == "" {
			utils.Error(ctx, http.StatusBadRequest, 40004, "professional users must provide degree and institution")
			return
		}
		user.Professional = &models.ProfessionalProfile{
			Degree:      req.Degree,
			Institution: req.Institution,
			Credentials: req.Credentials,
			Verified:    false,
		}
	}

	// Early rejection only; the unique index on email is what actually
	// closes the signup race.
	taken, err := a.users.EmailTaken(ctx.Request.Context(), req.Email)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50001, "internal server error")
		return
	}
	if taken {
		utils.Error(ctx, http.StatusConflict, 40901, "user with this email already exists")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50002, "internal server error")
		return
	}
	user.PasswordHash = hash

	if err := a.users.Create(ctx.Request.Context(), &user); err != nil {
		if errors.Is(err, stores.ErrDuplicateEmail) {
			utils.Error(ctx, http.StatusConflict, 40901, "user with this email already exists")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50003, "internal server error")
		return
	}

	token, err := utils.IssueSession(user.ID, user.Email)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50004, "internal server error")
		return
	}
	setSessionCookie(ctx, token)

	utils.Respond(ctx, http.StatusCreated, 0, "user created successfully", gin.H{
		"user": publicUser(user),
	})
}

// Login verifies credentials and issues a session. Unknown email and wrong
// password produce the same response on purpose.
func (a *AuthController) Login(ctx *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40005, "invalid request payload")
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		utils.Error(ctx, http.StatusBadRequest, 40006, "email and password are required")
		return
	}

	user, err := a.users.FindByEmail(ctx.Request.Context(), req.Email)
	if err != nil {
		if errors.Is(err, stores.ErrNotFound) {
			utils.Error(ctx, http.StatusUnauthorized, 40110, "invalid email or password")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50005, "internal server error")
		return
	}

	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "invalid email or password")
		return
	}

	token, err := utils.IssueSession(user.ID, user.Email)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50006, "internal server error")
		return
	}
	setSessionCookie(ctx, token)

	utils.Success(ctx, gin.H{"user": publicUser(*user)})
}

// Me resolves the current session to the public user record.
func (a *AuthController) Me(ctx *gin.Context) {
	id, _, _, ok := middleware.CurrentUser(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40104, "unauthorized")
		return
	}
	user, err := a.users.FindByID(ctx.Request.Context(), id)
	if err != nil {
		utils.Error(ctx, http.StatusUnauthorized, 40104, "unauthorized")
		return
	}
	utils.Success(ctx, publicUser(*user))
}

// Logout clears the session cookie. Tokens are stateless, so this is a
// client-side logout only; the token itself stays valid until expiry.
func (a *AuthController) Logout(ctx *gin.Context) {
	cfg := config.Get()
	ctx.SetSameSite(http.SameSiteStrictMode)
	ctx.SetCookie(middleware.TokenCookie, "", -1, "/", "", cfg.CookieSecure, true)
	utils.Success(ctx, gin.H{"message": "logged out"})
}

// setSessionCookie delivers the token as an HttpOnly, SameSite=Strict
// cookie whose lifetime matches the token's own expiry.
func setSessionCookie(ctx *gin.Context, token string) {
	cfg := config.Get()
	ctx.SetSameSite(http.SameSiteStrictMode)
	ctx.SetCookie(middleware.TokenCookie, token, int(utils.SessionTTL.Seconds()), "/", "", cfg.CookieSecure, true)
}

// publicUser never exposes the password hash.
func publicUser(user models.User) gin.H {
	payload := gin.H{
		"id":    user.ID,
		"name":  user.Name,
		"email": user.Email,
		"role":  user.Role,
	}
	if user.Professional != nil {
		payload["professional"] = user.Professional
	}
	return payload
}
