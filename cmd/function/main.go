// Command function serves the GenerateSamples cloud function locally.
package main

import (
	"os"

	"github.com/GoogleCloudPlatform/functions-framework-go/funcframework"
	"go.uber.org/zap"

	_ "crosswarped.com/ravengen"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	port := "8080"
	if envPort := os.Getenv("PORT"); envPort != "" {
		port = envPort
	}
	logger.Info("serving GenerateSamples", zap.String("port", port))
	if err := funcframework.Start(port); err != nil {
		logger.Fatal("funcframework.Start", zap.Error(err))
	}
}
