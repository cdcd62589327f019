package httpserver

import (
	"errors"
	"net/http"

	"github.com/M-ahmad144/Lymora-Backend/internal/domain"
	usersvc "github.com/M-ahmad144/Lymora-Backend/internal/service/user"
	"github.com/gin-gonic/gin"
)

func signupHandler(svc userService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in usersvc.SignupInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		user, token, err := svc.Signup(c.Request.Context(), in)
		if err != nil {
			if errors.Is(err, domain.ErrAlreadyExists) {
				c.JSON(http.StatusConflict, gin.H{"error": "user already exists"})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"success": true, "token": token, "data": toUserResponse(*user)})
	}
}

func loginHandler(svc userService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		user, token, err := svc.Login(c.Request.Context(), in.Email, in.Password)
		if err != nil {
			if errors.Is(err, usersvc.ErrInvalidCredentials) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
				return
			}
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "token": token, "data": toUserResponse(*user)})
	}
}

// logoutHandler exists for API symmetry; tokens are stateless so the
// client just drops its copy.
func logoutHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "logged out successfully"})
}

func profileHandler(svc userService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		u, err := svc.Get(c.Request.Context(), user.ID)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": toUserResponse(*u)})
	}
}

func updateProfileHandler(svc userService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in usersvc.UpdateProfileInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		user := currentUser(c)
		updated, err := svc.UpdateProfile(c.Request.Context(), user.ID, in)
		if err != nil {
			switch {
			case errors.Is(err, usersvc.ErrWrongPassword):
				c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrAlreadyExists):
				writeError(c, err)
			default:
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			}
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": toUserResponse(*updated)})
	}
}

func listUsersHandler(svc userService) gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := svc.List(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		result := make([]userResponse, 0, len(users))
		for _, u := range users {
			result = append(result, toUserResponse(u))
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "users": result})
	}
}

func getUserHandler(svc userService) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "user": toUserResponse(*u)})
	}
}

func adminUpdateUserHandler(svc userService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in usersvc.AdminUpdateInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		updated, err := svc.AdminUpdate(c.Request.Context(), c.Param("id"), in)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": toUserResponse(*updated)})
	}
}

func deleteUserHandler(svc userService) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := svc.Delete(c.Request.Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, usersvc.ErrAdminDelete) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
				return
			}
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "user deleted successfully"})
	}
}
