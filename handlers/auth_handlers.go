package handlers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"retailadmin/database"
	"retailadmin/models"
	"retailadmin/resources"
	"retailadmin/utils"
)

const usersCollection = "users"

// HandleLogin authenticates a user by email or phone number and returns a JWT token.
// POST /api/auth/login
func (h *Handler) HandleLogin(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Cannot parse JSON")
	}
	req.Identifier = strings.TrimSpace(req.Identifier)
	if req.Identifier == "" || req.Password == "" {
		return fail(c, fiber.StatusBadRequest, "Missing required fields (identifier, password)")
	}

	user, err := h.findUser(c.UserContext(), req.Identifier)
	if errors.Is(err, database.ErrNotFound) {
		h.metrics.AuthAttempts.WithLabelValues("unknown_user").Inc()
		return fail(c, fiber.StatusUnauthorized, "Invalid credentials")
	}
	if err != nil {
		logFor(c).Error("Database error during login", zap.String("identifier", req.Identifier), zap.Error(err))
		return fail(c, fiber.StatusInternalServerError, "Database error")
	}

	if user.Text("status") == models.StatusInactive {
		h.metrics.AuthAttempts.WithLabelValues("inactive").Inc()
		return fail(c, fiber.StatusUnauthorized, "User account is inactive")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Text("passwordHash")), []byte(req.Password)); err != nil {
		h.metrics.AuthAttempts.WithLabelValues("bad_password").Inc()
		return fail(c, fiber.StatusUnauthorized, "Invalid credentials")
	}

	token, err := h.createJWT(user.ID(), user.Text("userRole"))
	if err != nil {
		logFor(c).Error("Error creating JWT", zap.String("user_id", user.ID()), zap.Error(err))
		return fail(c, fiber.StatusInternalServerError, "Could not sign token")
	}
	h.metrics.AuthAttempts.WithLabelValues("success").Inc()
	return c.JSON(fiber.Map{"token": token, "user": public(user)})
}

// HandleRegister creates an account. The first account of an empty store is always an admin; after that
// registration cannot grant the admin role.
// POST /api/auth/register
func (h *Handler) HandleRegister(c *fiber.Ctx) error {
	rec, err := decodeRecord(c)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Cannot parse JSON")
	}
	ctx := c.UserContext()

	h.registerMu.Lock()
	defer h.registerMu.Unlock()
	_, existing, err := h.store.List(ctx, usersCollection, database.ListQuery{Limit: 1})
	if err != nil {
		return storeFailure(c, err, "", "Could not create user")
	}
	role, ok := utils.ValidateAndNormalizeRole(defaultString(rec.Text("userRole"), utils.RoleStaff))
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid user role")
	}
	if existing == 0 {
		role = utils.RoleAdmin
	} else if role == utils.RoleAdmin {
		return fail(c, fiber.StatusForbidden, "Admin accounts cannot be self-registered")
	}
	rec["userRole"] = role
	if rec.Text("status") == "" {
		rec["status"] = models.StatusActive
	}

	user, status, msg := h.prepareUser(ctx, rec, resources.Create, nil)
	if status != 0 {
		return fail(c, status, msg)
	}
	created, err := h.store.Insert(ctx, usersCollection, user)
	if err != nil {
		return storeFailure(c, err, "", "Could not create user")
	}
	h.metrics.RecordOperations.WithLabelValues(usersCollection, "register").Inc()
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"status": "success", "data": public(created)})
}

// HandleRefresh issues a fresh token for the authenticated user.
// POST /api/auth/refresh
func (h *Handler) HandleRefresh(c *fiber.Ctx) error {
	userID, _ := c.Locals("userID").(string)
	user, err := h.store.Get(c.UserContext(), usersCollection, userID)
	if errors.Is(err, database.ErrNotFound) {
		return fail(c, fiber.StatusUnauthorized, "User no longer exists")
	}
	if err != nil {
		return storeFailure(c, err, "", "Database error")
	}
	if user.Text("status") == models.StatusInactive {
		return fail(c, fiber.StatusUnauthorized, "User account is inactive")
	}
	token, err := h.createJWT(user.ID(), user.Text("userRole"))
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Could not sign token")
	}
	return c.JSON(fiber.Map{"token": token, "user": public(user)})
}

// EnsureAdmin creates an admin account when no user with that email exists yet.
func (h *Handler) EnsureAdmin(ctx context.Context, email, password string) (bool, error) {
	if _, err := h.store.FindBy(ctx, usersCollection, "email", email); err == nil {
		return false, nil
	} else if !errors.Is(err, database.ErrNotFound) {
		return false, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, err
	}
	_, err = h.store.Insert(ctx, usersCollection, models.Record{
		"fullName":     "Administrator",
		"email":        email,
		"passwordHash": string(hash),
		"userRole":     utils.RoleAdmin,
		"status":       models.StatusActive,
	})
	return err == nil, err
}

func (h *Handler) findUser(ctx context.Context, identifier string) (models.Record, error) {
	user, err := h.store.FindBy(ctx, usersCollection, "email", identifier)
	if errors.Is(err, database.ErrNotFound) {
		return h.store.FindBy(ctx, usersCollection, "phoneNumber", identifier)
	}
	return user, err
}

// prepareUser validates a user record and replaces its plain password with a hash. previous is the stored
// record on update; its hash is kept when no new password is given. A non-zero status reports the failure.
func (h *Handler) prepareUser(ctx context.Context, rec models.Record, mode resources.Mode, previous models.Record) (models.Record, int, string) {
	if rec.Text("fullName") == "" {
		rec["fullName"] = utils.JoinFullName(rec.Text("firstName"), rec.Text("lastName"))
	}
	if rec.Text("firstName") == "" && rec.Text("lastName") == "" {
		rec["firstName"], rec["lastName"] = utils.SplitFullName(rec.Text("fullName"))
	}
	if err := resources.Users.Validate(rec, mode); err != nil {
		return nil, fiber.StatusBadRequest, err.Error()
	}

	email := strings.ToLower(rec.Text("email"))
	rec["email"] = email
	if other, err := h.store.FindBy(ctx, usersCollection, "email", email); err == nil {
		if previous == nil || other.ID() != previous.ID() {
			return nil, fiber.StatusConflict, "Email already exists"
		}
	} else if !errors.Is(err, database.ErrNotFound) {
		return nil, fiber.StatusInternalServerError, "Database error"
	}

	if password := rec.Text("password"); password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fiber.StatusInternalServerError, "Could not process password"
		}
		rec["passwordHash"] = string(hash)
	} else if previous != nil {
		rec["passwordHash"] = previous["passwordHash"]
	}
	delete(rec, "password")
	return rec, 0, ""
}

func (h *Handler) createJWT(userID, role string) (string, error) {
	now := time.Now()
	claims := models.JwtClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(h.tokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.jwtSecret)
}

func defaultString(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
