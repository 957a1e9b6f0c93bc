// keys.go — conventional property names.
//
// Conventions (documented, not enforced):
//   - Names are lowercase; namespaced names use dots ("error.id", "grpc.method").
//   - The names below are only defaults for options and adapters; every option
//     takes an explicit key.
package throwctx

const (
	// KeyErrorID is the conventional key for WithErrorIDKey.
	KeyErrorID = "error.id"
	// KeyRaiseSite is the conventional key for WithRaiseSite.
	KeyRaiseSite = "error.site"
)
