package fx

import (
	"go.uber.org/fx"

	"shelfwatch-product-harvester/internal/server"
)

var ServerOptions = fx.Options(
	fx.Provide(server.NewHTTPServer),
	fx.Invoke(RegisterHTTPServerLifecycle),
)
