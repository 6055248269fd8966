package ledger

import "go.uber.org/fx"

// Module exposes the purchase ledger via Fx.
var Module = fx.Options(
	fx.Provide(New),
)
