// The chote binary runs the URL shortener service.
package main

import (
	"log"

	"github.com/chote-app/chote/internal/app"
	"github.com/chote-app/chote/internal/logger"
)

func main() {
	application, err := app.New()
	if err != nil {
		log.Fatalf("application init error: %v", err)
	}
	defer application.Close()

	if err := application.Run(); err != nil {
		logger.Log.Fatalln("application run error:", err)
	}
}
