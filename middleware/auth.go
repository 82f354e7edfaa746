// auth.go - JWT authentication and role-gate middleware
//
// Authentication Flow:
// 1. Extract the bearer token from the Authorization header
// 2. Verify signature, algorithm and expiry
// 3. Store the typed claims in the context for the role gate and handlers
//
// Authorization Flow:
// 1. Read the claims stored by Authenticate
// 2. Check the claim's role against the route's allow-list
// 3. Abort with 403 before the handler runs when the role is not allowed

package middleware // Declares the package name

import ( // Import required packages
	"context"  // For carrying claims on the request context
	"log"      // Server-side reasons for rejected tokens
	"net/http" // HTTP status codes (401, 403)
	"strings"  // String operations (for header parsing)

	"go-jobmarket-backend/auth"   // Token verification
	"go-jobmarket-backend/models" // Roles

	"github.com/gin-gonic/gin" // Gin web framework (for middleware)
)

const (
	msgTokenMissing = "Token missing"
	msgTokenInvalid = "Invalid or expired token"
	msgAccessDenied = "Access denied"
)

type claimsKey struct{} // unexported so nothing else can overwrite the claims

// TokenVerifier is satisfied by *auth.Tokens.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// Authenticate returns a Gin middleware that requires a valid bearer token.
//
// How it works:
// 1. Missing header -> 401 "Token missing"
// 2. Malformed header, bad signature or expired token -> 401 "Invalid or expired token"
// 3. Valid token -> claims stored on the gin and request contexts, chain continues
func Authenticate(tokens TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		// STEP 1: Extract Authorization header
		header := c.GetHeader("Authorization")
		if strings.TrimSpace(header) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msgTokenMissing})
			return
		}

		// STEP 2: Parse "Bearer <token>"
		tokenStr, ok := bearerToken(header)
		if !ok {
			log.Printf("[auth] rid=%s rejected: malformed authorization header", RequestIDFrom(c))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msgTokenInvalid})
			return
		}

		// STEP 3: Verify the token
		claims, err := tokens.Verify(tokenStr)
		if err != nil {
			log.Printf("[auth] rid=%s rejected: %v", RequestIDFrom(c), err) // expired vs invalid only shows up here
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msgTokenInvalid})
			return
		}

		// STEP 4: Attach claims for the role gate and handlers
		c.Set(claimsKeyName, claims)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), claimsKey{}, claims))

		c.Next() // Continue to next handler (authentication successful)
	}
}

// RequireRoles returns a Gin middleware that only lets the listed roles through.
// It must run after Authenticate; without claims it answers 401 rather than panicking.
func RequireRoles(roles ...models.Role) gin.HandlerFunc {
	allowed := models.NewRoleSet(roles...)
	return func(c *gin.Context) {
		claims, ok := CurrentClaims(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msgTokenMissing})
			return
		}
		if !allowed.Allows(claims.Role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": msgAccessDenied})
			return
		}
		c.Next()
	}
}

// gin stores values by string key; the typed accessor below is the only reader.
const claimsKeyName = "jobmarket.claims"

// CurrentClaims returns the claims stored by Authenticate.
func CurrentClaims(c *gin.Context) (*auth.Claims, bool) {
	v, exists := c.Get(claimsKeyName)
	if !exists {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok && claims != nil
}

// ClaimsFromContext returns the claims from a request context.
func ClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*auth.Claims)
	return claims, ok && claims != nil
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	tok := strings.TrimSpace(parts[1])
	return tok, tok != ""
}
