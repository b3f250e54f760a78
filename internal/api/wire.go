//go:build wireinject

//go:generate wire

package api

import (
	"github.com/google/wire"
	"github.com/kashguard/go-kms-signer/internal/config"
	"github.com/kashguard/go-kms-signer/internal/kms/custody"
)

// INJECTORS - https://github.com/google/wire/blob/main/docs/guide.md#injectors

// serviceSet groups the default set of providers that are required for initing a server
var serviceSet = wire.NewSet(
	newServerWithComponents,
	NewMetricsRegistry,
	NewSigner,
)

var custodySet = wire.NewSet(
	NewCustodyClient,
	wire.Bind(new(custody.Client), new(*custody.InstrumentedClient)),
)

// InitNewServer returns a new Server instance.
func InitNewServer(
	_ config.Server,
) (*Server, error) {
	wire.Build(serviceSet, custodySet)
	return new(Server), nil
}

// InitNewServerWithCustody returns a new Server instance using the given custody client.
// All the other components are initialized via go wire according to the configuration.
func InitNewServerWithCustody(
	_ config.Server,
	_ custody.Client,
) (*Server, error) {
	wire.Build(serviceSet)
	return new(Server), nil
}
