package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/selgo-dev/selgo-web/internal/auth"
	"github.com/selgo-dev/selgo-web/internal/guard"
	"github.com/selgo-dev/selgo-web/internal/pages"
	"github.com/selgo-dev/selgo-web/internal/session"
	"github.com/selgo-dev/selgo-web/internal/users"
)

// SignInRequest is the sign-in form
type SignInRequest struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
	Redirect string `form:"redirect"`
}

// SignUpRequest is the registration form
type SignUpRequest struct {
	Name     string `form:"name" validate:"required,max=80"`
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required,min=8,max=72"`
	Redirect string `form:"redirect"`
}

const sessionExpiredNotice = "Your session has expired. Please sign in again."

func (s *Server) signInForm(c *gin.Context) {
	redirect := c.Query("redirect")
	if session.FromContext(c).IsAuthenticated() {
		c.Redirect(http.StatusFound, guard.SafeRedirect(redirect, "/"))
		return
	}

	notice := ""
	if c.Query("reason") == guard.ReasonSession {
		notice = sessionExpiredNotice
	}
	s.render(c, http.StatusOK, pages.SignIn(s.layout(c), "", redirect, notice, ""))
}

func (s *Server) signIn(c *gin.Context) {
	var req SignInRequest
	if err := c.ShouldBind(&req); err != nil {
		s.render(c, http.StatusBadRequest, pages.SignIn(s.layout(c), "", "", "", "Please fill in email and password."))
		return
	}
	if err := s.validator.Struct(&req); err != nil {
		s.render(c, http.StatusBadRequest, pages.SignIn(s.layout(c), req.Email, req.Redirect, "", "Please enter a valid email and password."))
		return
	}

	user, token, err := s.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, users.ErrInvalidCredentials) {
			s.render(c, http.StatusUnauthorized, pages.SignIn(s.layout(c), req.Email, req.Redirect, "", "Invalid email or password."))
			return
		}
		s.renderError(c, err, "Failed to sign in")
		return
	}

	session.WriteCookie(c, token, s.cookie)
	session.FromContext(c).SetUser(user)
	c.Redirect(http.StatusSeeOther, guard.SafeRedirect(req.Redirect, "/"))
}

func (s *Server) signUpForm(c *gin.Context) {
	redirect := c.Query("redirect")
	if session.FromContext(c).IsAuthenticated() {
		c.Redirect(http.StatusFound, guard.SafeRedirect(redirect, "/"))
		return
	}
	s.render(c, http.StatusOK, pages.SignUp(s.layout(c), "", "", redirect, ""))
}

func (s *Server) signUp(c *gin.Context) {
	var req SignUpRequest
	if err := c.ShouldBind(&req); err != nil {
		s.render(c, http.StatusBadRequest, pages.SignUp(s.layout(c), "", "", "", "Please fill in all fields."))
		return
	}
	if err := s.validator.Struct(&req); err != nil {
		msg := "Please enter your name and a valid email."
		if failedField(err, "Password") {
			msg = "Passwords must be at least 8 characters."
		}
		s.render(c, http.StatusBadRequest, pages.SignUp(s.layout(c), req.Email, req.Name, req.Redirect, msg))
		return
	}

	user, token, err := s.users.Register(c.Request.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		if errors.Is(err, users.ErrEmailTaken) {
			s.render(c, http.StatusConflict, pages.SignUp(s.layout(c), req.Email, req.Name, req.Redirect, "That email is already registered."))
			return
		}
		s.renderError(c, err, "Failed to register user")
		return
	}

	session.WriteCookie(c, token, s.cookie)
	session.FromContext(c).SetUser(user)
	c.Redirect(http.StatusSeeOther, guard.SafeRedirect(req.Redirect, "/"))
}

func (s *Server) logout(c *gin.Context) {
	store := session.FromContext(c)
	s.users.Logout(c.Request.Context(), store.UserID())
	store.Logout()
	session.ClearCookie(c, s.cookie)
	c.Redirect(http.StatusSeeOther, "/")
}

// @Summary Get current user
// @Router /api/auth/me [get]
func (s *Server) getCurrentUser(c *gin.Context) {
	user := session.FromContext(c).User()
	if user == nil {
		respondWithError(c, s.logger, http.StatusUnauthorized, errors.New("no user in session"), "Unauthorized")
		return
	}

	c.JSON(http.StatusOK, auth.SessionData{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
	})
}
