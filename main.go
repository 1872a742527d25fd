package main

import (
	"github.com/haven-community/haven/config"
	"github.com/haven-community/haven/models"
	"github.com/haven-community/haven/routes"
	"github.com/haven-community/haven/utils"
)

func main() {
	cfg := config.Load()

	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(
		&models.User{},
		&models.ProfessionalProfile{},
		&models.Post{},
		&models.Comment{},
		&models.PostLike{},
		&models.Professional{},
	)

	if cfg.RedisHost != "" {
		utils.InitRedis(cfg.RedisHost, cfg.RedisPort, cfg.RedisPassword, cfg.RedisDB)
	}

	r := routes.SetupRouter(db)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
