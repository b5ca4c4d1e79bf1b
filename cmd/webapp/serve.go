package main

import (
	"log"
	"log/slog"

	"github.com/burbanox/keycloak-harold-burbano/pkg/webapp"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web app",
	Run: func(cmd *cobra.Command, args []string) {
		config, err := webapp.ConfigFromEnv()
		cobra.CheckErr(err)

		server, err := webapp.NewServer(config)
		cobra.CheckErr(err)

		e := echo.New()
		e.HideBanner = true
		e.Use(middleware.Recover())
		e.Use(middleware.Logger())

		server.MountRoutes(e)

		slog.Info("starting web app", "addr", config.ListenAddr, "realm", config.Realm, "client_id", config.ClientID)
		log.Fatal(e.Start(config.ListenAddr))
	},
}
