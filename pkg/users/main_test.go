package users

import (
	"testing"

	"gitlab.com/navyx/nexus/nexus-users/db"
	"gitlab.com/navyx/nexus/nexus-users/pkg/internal/testhelper"
)

func TestMain(m *testing.M) {
	testhelper.WrapTestMain(m, db.MigrationFS)
}
