package fixture

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gitlab.com/navyx/nexus/nexus-users/pkg/dbaccess"
	"gitlab.com/navyx/nexus/nexus-users/pkg/dbaccess/dbsqlc"
	"gitlab.com/navyx/nexus/nexus-users/pkg/util"
)

// InsertUser inserts a new user into the database and returns it
func InsertUser(t *testing.T, ctx context.Context, querier dbsqlc.Querier, source dbaccess.DataSource, email, name string) *dbsqlc.User {
	t.Helper()

	user, err := querier.UserInsert(ctx, source, &dbsqlc.UserInsertParams{Email: email, Name: name})
	if err != nil {
		t.Fatalf("Failed to insert user: %v", err)
	}

	return user
}

// InsertUsers inserts count users with generated, unique emails.
func InsertUsers(t *testing.T, ctx context.Context, querier dbsqlc.Querier, source dbaccess.DataSource, count int) []*dbsqlc.User {
	t.Helper()

	users := make([]*dbsqlc.User, 0, count)
	for i := 0; i < count; i++ {
		email := fmt.Sprintf("user-%d-%s@example.com", i, uuid.NewString()[:8])
		users = append(users, InsertUser(t, ctx, querier, source, email, fmt.Sprintf("User %d", i)))
	}

	return users
}

// UserID returns the string form of a user's id.
func UserID(user *dbsqlc.User) string {
	return util.MustPgtypeUUIDToString(user.ID)
}
