package audit

import (
	"github.com/rkimidis/acucare-pathways-sub001/internal/audit/repository"
	"github.com/rkimidis/acucare-pathways-sub001/internal/audit/service"
	"go.uber.org/fx"
)

var Module = fx.Module("audit.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
