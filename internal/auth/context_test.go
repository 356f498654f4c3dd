// ABOUTME: Unit tests for principal context propagation
// ABOUTME: Tests WithPrincipal/PrincipalFromContext round trips and absence handling

package auth

import (
	"context"
	"testing"

	"github.com/splitledger/splitledger/internal/store"
)

func TestPrincipalFromContext_RoundTrip(t *testing.T) {
	user := &store.User{ID: 1, Username: "alice"}
	ctx := WithPrincipal(context.Background(), user)

	got := PrincipalFromContext(ctx)
	if got == nil {
		t.Fatal("PrincipalFromContext() = nil, want principal")
	}
	if got.ID != 1 || got.Username != "alice" {
		t.Errorf("PrincipalFromContext() = %+v, want alice with id 1", got)
	}
}

func TestPrincipalFromContext_Absent(t *testing.T) {
	if got := PrincipalFromContext(context.Background()); got != nil {
		t.Errorf("PrincipalFromContext() = %+v, want nil", got)
	}
}

func TestMustPrincipalFromContext_PanicsWhenAbsent(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustPrincipalFromContext() should panic without a principal")
		}
	}()
	MustPrincipalFromContext(context.Background())
}
