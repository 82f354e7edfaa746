// user.go - Handles signup, login and the user test helpers

package handlers // Declares the package name

import ( // Import required packages
	"errors"   // Sentinel matching
	"net/http" // HTTP status codes
	"strings"  // Input normalization

	"go-jobmarket-backend/models" // User model
	"go-jobmarket-backend/store"  // Store errors

	"github.com/gin-gonic/gin"   // Gin web framework
	"golang.org/x/crypto/bcrypt" // Password hashing
)

const passwordCost = 10 // bcrypt work factor

type SignupInput struct { // Struct for signup input
	Name     string `json:"name" binding:"required"`     // Display name (required)
	Email    string `json:"email" binding:"required"`    // Email (required)
	Password string `json:"password" binding:"required"` // Password (required)
	Role     string `json:"role"`                        // OWNER or WORKER, defaults to WORKER
}

type LoginInput struct { // Struct for login input
	Email    string `json:"email" binding:"required"`    // Email (required)
	Password string `json:"password" binding:"required"` // Password (required)
}

type TestUserInput struct { // Struct for the /users helper
	Name  string `json:"name"`
	Email string `json:"email"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Signup creates an account and returns it without the password hash.
func (h *Handler) Signup(c *gin.Context) {
	// STEP 1: Parse and validate input
	var input SignupInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "All fields are required")
		return
	}
	input.Name = strings.TrimSpace(input.Name)
	input.Email = normalizeEmail(input.Email)
	if input.Name == "" || input.Email == "" {
		badRequest(c, "All fields are required")
		return
	}

	role := models.RoleWorker // Default role
	if strings.TrimSpace(input.Role) != "" {
		parsed, err := models.ParseRole(input.Role)
		if err != nil {
			badRequest(c, "Invalid role")
			return
		}
		role = parsed
	}

	// STEP 2: Reject a taken email before paying for bcrypt
	ctx := c.Request.Context()
	if _, err := h.store.FindUserByEmail(ctx, input.Email); err == nil {
		badRequest(c, "User already exists")
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		serverError(c, "Signup failed", err)
		return
	}

	// STEP 3: Hash password and save user
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), passwordCost)
	if err != nil {
		serverError(c, "Signup failed", err)
		return
	}
	user := models.User{Name: input.Name, Email: input.Email, Password: string(hash), Role: role}
	if err := h.store.CreateUser(ctx, &user); err != nil {
		if errors.Is(err, store.ErrDuplicate) { // Lost a race with a concurrent signup
			badRequest(c, "User already exists")
			return
		}
		serverError(c, "Signup failed", err)
		return
	}

	c.JSON(http.StatusCreated, user) // Password is never serialized
}

// Login checks credentials and returns a signed token.
func (h *Handler) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Email and password required")
		return
	}

	user, err := h.store.FindUserByEmail(c.Request.Context(), normalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"}) // Same body as a wrong password
			return
		}
		serverError(c, "Login failed", err)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := h.tokens.Issue(user)
	if err != nil {
		serverError(c, "Login failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Login successful", "token": token})
}

// CreateTestUser inserts a password-less WORKER. Accounts created here cannot log in.
func (h *Handler) CreateTestUser(c *gin.Context) {
	var input TestUserInput
	_ = c.ShouldBindJSON(&input) // Body is optional

	if strings.TrimSpace(input.Name) == "" {
		input.Name = "Test User"
	}
	if strings.TrimSpace(input.Email) == "" {
		input.Email = "testuser@gmail.com"
	}

	user := models.User{Name: strings.TrimSpace(input.Name), Email: normalizeEmail(input.Email), Role: models.RoleWorker}
	if err := h.store.CreateUser(c.Request.Context(), &user); err != nil {
		serverError(c, "Failed to create user", err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// ListUsers doubles as a database connectivity probe.
func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.store.ListUsers(c.Request.Context())
	if err != nil {
		serverError(c, "DB connection failed", err)
		return
	}
	c.JSON(http.StatusOK, users)
}
