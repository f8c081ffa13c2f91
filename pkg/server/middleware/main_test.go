package middleware

import (
	"testing"

	"gitlab.com/navyx/nexus/nexus-users/pkg/internal/testhelper"
)

func TestMain(m *testing.M) {
	testhelper.WrapTestMainWithoutDB(m)
}
