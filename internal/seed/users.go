package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

// DemoUsers are local development accounts. They all share one password.
var DemoUsers = []types.RegisterRequest{
	{Email: "john.doe@example.com", Username: "johndoe", FirstName: "John", LastName: "Doe"},
	{Email: "jane.smith@example.com", Username: "janesmith", FirstName: "Jane", LastName: "Smith"},
	{Email: "bob.wilson@example.com", Username: "bobwilson", FirstName: "Bob", LastName: "Wilson"},
	{Email: "alice.cooper@example.com", Username: "alicecooper", FirstName: "Alice", LastName: "Cooper"},
}

// LoadUsers registers every demo user with password. Accounts that already
// exist are skipped.
func LoadUsers(ctx context.Context, auth service.IAuthService, password string) (int, error) {
	created := 0
	for _, u := range DemoUsers {
		req := u
		req.Password = password
		_, err := auth.Register(ctx, &req)

		var fe types.FieldErrors
		switch {
		case err == nil:
			created++
		case errors.As(err, &fe):
			slog.DebugContext(ctx, "user exists, skipping", "username", req.Username, "reason", fe.Error())
		default:
			return created, fmt.Errorf("failed to create user %s: %w", req.Username, err)
		}
	}
	return created, nil
}
