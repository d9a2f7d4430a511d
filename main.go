package main

import (
	"log"

	_ "hubspot-connector/docs"
	"hubspot-connector/internal/app"
)

// @title HubSpot Connector API
// @version 1.0
// @description Connects users to HubSpot with OAuth2 and lists their contacts as integration items.
// @BasePath /
func main() {
	if err := app.Run(); err != nil {
		log.Fatal(err)
	}
}
