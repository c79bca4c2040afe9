package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/rkimidis/acucare-pathways-sub001/internal/clock"
	"github.com/rkimidis/acucare-pathways-sub001/internal/config"
	"github.com/rkimidis/acucare-pathways-sub001/internal/migration"
	"github.com/rkimidis/acucare-pathways-sub001/internal/observability"
	"github.com/rkimidis/acucare-pathways-sub001/internal/server"
	"github.com/rkimidis/acucare-pathways-sub001/pkg/db"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
