package middleware // middleware provides reusable HTTP middleware functions

import (
    "context"
    "errors"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/bookwormhq/bookworm-api/internal/model"
    "github.com/bookwormhq/bookworm-api/internal/repository"
    "github.com/bookwormhq/bookworm-api/internal/utils"
)

// UserResolver loads a user by id.  The auth middleware takes this narrow
// interface instead of the full repository so tests can substitute a fake.
type UserResolver interface {
    GetByID(ctx context.Context, id uint64) (model.User, error)
}

// JWTAuth returns an Echo middleware that validates a Bearer token and
// resolves it to a stored user before the wrapped handler runs.  The
// resolved identity (without password hash) is stored in the context under
// "user", the bare id under "user_id".
//
// Every verification failure — bad signature, malformed token, expiry, or
// a token naming a user that no longer exists — produces the same 401
// response, so a caller cannot probe which condition it hit.
func JWTAuth(secret string, users UserResolver) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            auth := c.Request().Header.Get("Authorization")
            if !strings.HasPrefix(auth, "Bearer ") {
                return c.JSON(http.StatusUnauthorized, echo.Map{"message": "no authentication token, access denied"})
            }
            raw := strings.TrimPrefix(auth, "Bearer ")

            userID, err := utils.ParseAuthToken(secret, raw)
            if err != nil {
                return c.JSON(http.StatusUnauthorized, echo.Map{"message": "token is not valid"})
            }

            ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
            defer cancel()

            u, err := users.GetByID(ctx, userID)
            if err != nil {
                if errors.Is(err, repository.ErrUserNotFound) {
                    // A token for a since-deleted user is an invalid token,
                    // not a "user not found".
                    return c.JSON(http.StatusUnauthorized, echo.Map{"message": "token is not valid"})
                }
                return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal server error"})
            }

            c.Set("user", u)
            c.Set("user_id", u.ID)
            return next(c)
        }
    }
}
