// Package cli provides the cobra commands of the dealerops binary.
package cli

import (
	gocontext "context"
	"os"

	"github.com/example/dealerops/internal/ctxutil"
	"github.com/example/dealerops/internal/wire"
)

// globalActorID stores the operator identity for the current CLI invocation.
// Set once at startup by DetectAndStoreActor().
var globalActorID string

// DetectAndStoreActor records the operator identity: the --actor flag when
// given, else $USER. When neither is set the configured actor applies.
func DetectAndStoreActor(flagValue string) {
	if flagValue != "" {
		globalActorID = flagValue
		return
	}
	globalActorID = os.Getenv("USER")
}

// ApplyBaseDir points wiring at the directory given by --dir.
func ApplyBaseDir(dir string) {
	if dir != "" {
		wire.SetBaseDir(dir)
	}
}

// NewContext creates a context.Background() with the current actor ID embedded.
// CLI commands should use this instead of context.Background() directly.
func NewContext() gocontext.Context {
	ctx := gocontext.Background()
	actor := globalActorID
	if actor == "" {
		actor = wire.Config().Actor
	}
	return ctxutil.WithActorID(ctx, actor)
}
