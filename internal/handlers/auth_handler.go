package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/parishrama/diagnostic-api/internal/apperr"
	"github.com/parishrama/diagnostic-api/internal/middleware"
	"github.com/parishrama/diagnostic-api/internal/models"
	"github.com/parishrama/diagnostic-api/internal/utils"
)

var (
	errDuplicateAccount   = apperr.New(apperr.KindDuplicateAccount, "An account with this email already exists")
	errInvalidCredentials = apperr.New(apperr.KindInvalidCredentials, "Invalid email or password")
)

// Register creates a login account.
func (h *Handler) Register(c *gin.Context) {
	var in models.CredentialsInput
	if _, err := h.bindInput(c, &in, nil, nil, ""); err != nil {
		h.fail(c, err)
		return
	}

	ctx := c.Request.Context()
	_, err := h.stores.Accounts.FindOne(ctx, bson.M{"email": in.Email})
	switch {
	case err == nil:
		h.fail(c, errDuplicateAccount)
		return
	case !apperr.Is(err, apperr.KindNotFound):
		h.fail(c, err)
		return
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		h.fail(c, apperr.Wrap(apperr.KindInternal, "hash password", err))
		return
	}

	account := models.NewLoginAccount(in.Email, hash, h.now())
	if err := h.stores.Accounts.Insert(ctx, &account); err != nil {
		// Lost a race with a concurrent registration.
		if apperr.Is(err, apperr.KindDuplicate) {
			err = errDuplicateAccount
		}
		h.fail(c, err)
		return
	}

	h.log.Info("account registered", zap.String("account", account.ID.Hex()))
	ok(c, http.StatusCreated, "Account created successfully", account)
}

// Login checks the credentials and issues a bearer token.
func (h *Handler) Login(c *gin.Context) {
	var in models.CredentialsInput
	if err := c.ShouldBind(&in); err != nil {
		h.fail(c, apperr.Validation("Invalid request body: "+err.Error()))
		return
	}
	in.Normalize()
	if in.Email == "" || in.Password == "" {
		h.fail(c, apperr.Validation("Email and password are required"))
		return
	}

	account, err := h.stores.Accounts.FindOne(c.Request.Context(), bson.M{"email": in.Email})
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			err = errInvalidCredentials
		}
		h.fail(c, err)
		return
	}
	if !utils.CheckPasswordHash(in.Password, account.Password) {
		h.fail(c, errInvalidCredentials)
		return
	}

	token, err := h.tokens.Generate(account.ID.Hex(), account.Email)
	if err != nil {
		h.fail(c, apperr.Wrap(apperr.KindInternal, "sign token", err))
		return
	}
	ok(c, http.StatusOK, "Login successful", gin.H{"token": token, "account": account})
}

// Verify returns the account behind the bearer token.
func (h *Handler) Verify(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.GetString(middleware.AccountIDKey))
	if err != nil {
		h.fail(c, apperr.New(apperr.KindUnauthenticated, "Invalid or expired token"))
		return
	}
	account, err := h.stores.Accounts.FindByID(c.Request.Context(), id)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			err = apperr.New(apperr.KindUnauthenticated, "Account no longer exists")
		}
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, "Token is valid", account)
}

// Logout is stateless: clients drop their token.
func (h *Handler) Logout(c *gin.Context) {
	ok(c, http.StatusOK, "Logged out successfully", nil)
}
