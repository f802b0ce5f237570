package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Jogatev/chebeneleven-sub000/internal/audit"
	"github.com/Jogatev/chebeneleven-sub000/internal/model"
	"github.com/Jogatev/chebeneleven-sub000/internal/storage"
	"github.com/Jogatev/chebeneleven-sub000/internal/utilities"
)

const (
	minUsernameLen = 3
	minPasswordLen = 8
)

// LocalAuthHandler holds the collaborators of the register/login/logout handlers.
type LocalAuthHandler struct {
	Store    storage.Storage
	Sessions *SessionManager
	Audit    *audit.Recorder
	Log      *zap.Logger
}

// NewLocalAuthHandler creates a new instance of LocalAuthHandler.
func NewLocalAuthHandler(store storage.Storage, sessions *SessionManager, recorder *audit.Recorder, log *zap.Logger) *LocalAuthHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &LocalAuthHandler{
		Store:    store,
		Sessions: sessions,
		Audit:    recorder,
		Log:      log,
	}
}

type registerInfo struct {
	Username       string  `json:"username" binding:"required"`
	Password       string  `json:"password" binding:"required"`
	FranchiseeName string  `json:"franchiseeName" binding:"required"`
	FranchiseeID   string  `json:"franchiseeId"`
	Location       string  `json:"location" binding:"required"`
	Email          *string `json:"email" binding:"omitempty,email"`
}

type loginInfo struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	User        model.User `json:"user"`
	AccessToken string     `json:"accessToken"`
}

const invalidCredentials = "Username or password is incorrect"

// LocalRegisterHandler creates a franchisee account and logs it in.
// @Summary Register a franchisee
// @Description Username must be unique and at least 3 characters; password at least 8 characters
// @Tags Auth
// @Accept json
// @Produce json
// @Param Info body registerInfo true "Franchisee account"
// @Success 201 {object} AuthResponse
// @Failure 400 {object} utilities.ErrorResponse "Info provided not met the condition"
// @Failure 500 {object} utilities.ErrorResponse "Storage or password hashing error"
// @Router /register [post]
func (lh *LocalAuthHandler) LocalRegisterHandler(c *gin.Context) {
	var info registerInfo

	if err := c.ShouldBindJSON(&info); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: "Username, password, franchisee name and location must be provided",
		})
		return
	}

	info.Username = strings.TrimSpace(info.Username)
	if len(info.Username) < minUsernameLen {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: "Username should longer or equal to 3 characters",
		})
		return
	}

	if len(info.Password) < minPasswordLen {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: "Password should longer or equal to 8 characters",
		})
		return
	}

	ctx := c.Request.Context()

	existing, err := lh.Store.GetUserByUsername(ctx, info.Username)
	if err != nil {
		lh.Log.Error("failed to look up username", zap.Error(err))
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{Error: "Failed to register user"})
		return
	}
	if existing != nil {
		logAuthAttempt(lh.Log, "register", attemptFail, info.Username, "username taken")
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: "Username already exist"})
		return
	}

	hashedPassword, err := HashPassword(info.Password)
	if err != nil {
		lh.Log.Error("failed to hash password", zap.Error(err))
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{Error: "Failed to register user"})
		return
	}

	user, err := lh.Store.CreateUser(ctx, model.User{
		Username:       info.Username,
		Password:       hashedPassword,
		FranchiseeName: info.FranchiseeName,
		FranchiseeID:   info.FranchiseeID,
		Location:       info.Location,
		Email:          info.Email,
	})
	if errors.Is(err, storage.ErrDuplicateUsername) {
		logAuthAttempt(lh.Log, "register", attemptFail, info.Username, "username taken")
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: "Username already exist"})
		return
	}
	if err != nil {
		lh.Log.Error("failed to create user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{Error: "Failed to register user"})
		return
	}

	if lh.Audit != nil {
		lh.Audit.Record(ctx, user.ID, model.ActionRegister, model.EntityUser, user.ID, gin.H{
			"username":       user.Username,
			"franchiseeName": user.FranchiseeName,
		})
	}

	token, err := lh.Sessions.Start(c, user.ID)
	if err != nil {
		lh.Log.Error("failed to start session", zap.Error(err))
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{Error: "Failed to log in"})
		return
	}

	logAuthAttempt(lh.Log, "register", attemptSuccess, user.Username, "")
	c.JSON(http.StatusCreated, AuthResponse{
		User:        *user,
		AccessToken: token,
	})
}

// LocalLoginHandler checks a username/password pair and opens a session.
// @Summary Log in with username and password
// @Tags Auth
// @Accept json
// @Produce json
// @Param Info body loginInfo true "Credentials for login"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} utilities.ErrorResponse "Info provided not met the condition"
// @Failure 401 {object} utilities.ErrorResponse "Username not exist or password incorrect"
// @Failure 500 {object} utilities.ErrorResponse "Storage error"
// @Router /login [post]
func (lh *LocalAuthHandler) LocalLoginHandler(c *gin.Context) {
	var info loginInfo

	if err := c.ShouldBindJSON(&info); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: "Username or password is not provided",
		})
		return
	}

	user, err := lh.Store.GetUserByUsername(c.Request.Context(), strings.TrimSpace(info.Username))
	if err != nil {
		lh.Log.Error("failed to look up user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{Error: "Failed to log in"})
		return
	}

	stored := ""
	if user != nil {
		stored = user.Password
	}
	if !CheckPassword(info.Password, stored) {
		logAuthAttempt(lh.Log, "login", attemptFail, info.Username, "")
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: invalidCredentials})
		return
	}

	token, err := lh.Sessions.Start(c, user.ID)
	if err != nil {
		lh.Log.Error("failed to start session", zap.Error(err))
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{Error: "Failed to log in"})
		return
	}

	logAuthAttempt(lh.Log, "login", attemptSuccess, user.Username, "")
	c.JSON(http.StatusOK, AuthResponse{
		User:        *user,
		AccessToken: token,
	})
}

// LogoutHandler ends the current session. Logging out without a session still succeeds.
// @Summary Log out
// @Tags Auth
// @Produce json
// @Success 200 {object} utilities.MessageResponse
// @Failure 500 {object} utilities.ErrorResponse "Session store error"
// @Router /logout [post]
func (lh *LocalAuthHandler) LogoutHandler(c *gin.Context) {
	if err := lh.Sessions.End(c); err != nil {
		lh.Log.Error("failed to end session", zap.Error(err))
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{Error: "Failed to logout"})
		return
	}

	logAuthAttempt(lh.Log, "logout", attemptSuccess, "", "")
	c.JSON(http.StatusOK, utilities.MessageResponse{Message: "Successfully logged out"})
}

// CurrentUserHandler returns the user RequireAuth attached to the request.
// @Summary Get the logged in franchisee
// @Tags Auth
// @Produce json
// @Success 200 {object} model.User
// @Failure 401 {object} utilities.ErrorResponse "Not logged in"
// @Router /user [get]
func (lh *LocalAuthHandler) CurrentUserHandler(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, user)
}
