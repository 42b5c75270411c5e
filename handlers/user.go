package handlers

import (
	"chequeai/auth"
	"chequeai/models"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

type UserRegisterRequest struct {
	Username        string `json:"username" binding:"required"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirm_password"`
}

type UserLoginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password" binding:"required"`
}

type UserProfileRequest struct {
	Username string `json:"username"`
	Email    string `json:"email" binding:"omitempty,email"`
}

type UserPasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

type UserResponse struct {
	Message string       `json:"message"`
	User    *models.User `json:"user"`
}

func UserRegister(c *gin.Context) {
	req := UserRegisterRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{"Username, email and password are required"})
		return
	}
	if req.ConfirmPassword != "" && req.ConfirmPassword != req.Password {
		c.JSON(http.StatusBadRequest, Response{"Passwords do not match"})
		return
	}
	user, err := models.UserCreate(req.Username, req.Email, req.Password)
	switch {
	case errors.Is(err, models.ErrPasswordTooShort):
		c.JSON(http.StatusBadRequest, Response{"Password must be at least 6 characters long"})
		return
	case errors.Is(err, models.ErrUserExists):
		c.JSON(http.StatusConflict, Response{"Username or email already exists"})
		return
	case err != nil:
		log.Printf("UserRegister error: %v", err)
		c.JSON(http.StatusInternalServerError, Response{"Error creating user"})
		return
	}
	c.JSON(http.StatusCreated, UserResponse{"User registered successfully", &user})
}

func UserLogin(c *gin.Context) {
	req := UserLoginRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{"Username and password are required"})
		return
	}
	login := req.Username
	if login == "" {
		login = req.Email
	}
	user, err := models.UserLogin(login, req.Password)
	if errors.Is(err, models.ErrInvalidCredentials) {
		c.JSON(http.StatusUnauthorized, Response{"Invalid credentials"})
		return
	} else if err != nil {
		log.Printf("UserLogin error: %v", err)
		c.JSON(http.StatusInternalServerError, DBErrorResponse)
		return
	}
	if err = auth.LoadSession(c).LoginUser(&user); err != nil {
		log.Printf("UserLogin session error: %v", err)
		c.JSON(http.StatusInternalServerError, Response{"Error creating session"})
		return
	}
	c.JSON(http.StatusOK, UserResponse{"Login successful", &user})
}

func UserLogout(c *gin.Context, user *models.User) {
	if err := auth.LoadSession(c).LogoutUser(); err != nil {
		log.Printf("UserLogout error, user %d: %v", user.ID, err)
	}
	c.JSON(http.StatusOK, Response{"Logged out successfully"})
}

func UserProfile(c *gin.Context, user *models.User) {
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func UserUpdateProfile(c *gin.Context, user *models.User) {
	req := UserProfileRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, BadRequestResponse)
		return
	}
	err := user.UpdateProfile(req.Username, req.Email)
	if errors.Is(err, models.ErrUserExists) {
		c.JSON(http.StatusConflict, Response{"Username or email already exists"})
		return
	} else if err != nil {
		log.Printf("UserUpdateProfile error, user %d: %v", user.ID, err)
		c.JSON(http.StatusInternalServerError, DBErrorResponse)
		return
	}
	c.JSON(http.StatusOK, UserResponse{"Profile updated successfully", user})
}

func UserChangePassword(c *gin.Context, user *models.User) {
	req := UserPasswordRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{"Current and new password are required"})
		return
	}
	err := user.ChangePassword(req.CurrentPassword, req.NewPassword)
	switch {
	case errors.Is(err, models.ErrInvalidCredentials):
		c.JSON(http.StatusBadRequest, Response{"Current password is incorrect"})
		return
	case errors.Is(err, models.ErrPasswordTooShort):
		c.JSON(http.StatusBadRequest, Response{"Password must be at least 6 characters long"})
		return
	case err != nil:
		log.Printf("UserChangePassword error, user %d: %v", user.ID, err)
		c.JSON(http.StatusInternalServerError, DBErrorResponse)
		return
	}
	c.JSON(http.StatusOK, Response{"Password changed successfully"})
}

func UserStats(c *gin.Context, user *models.User) {
	stats, err := user.GetStats()
	if err != nil {
		log.Printf("UserStats error, user %d: %v", user.ID, err)
		c.JSON(http.StatusInternalServerError, DBErrorResponse)
		return
	}
	c.JSON(http.StatusOK, stats)
}
