package access

import (
	"go.uber.org/fx"

	"github.com/fatflowers/notemarket/internal/app/service/catalog"
	"github.com/fatflowers/notemarket/internal/app/service/ledger"
)

func New(docs *catalog.Service, purchases *ledger.Service) *Gate {
	return NewGate(docs, purchases)
}

var Module = fx.Options(
	fx.Provide(New),
)
