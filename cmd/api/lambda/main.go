package main

import (
	"context"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/davecgh/go-spew/spew"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/clearstack/consulting-api/internal/config"
	"github.com/clearstack/consulting-api/internal/logger"
	"github.com/clearstack/consulting-api/internal/server"
)

var ginLambda *ginadapter.GinLambda

func init() {
	stage := os.Getenv("STAGE")
	if !logger.IsValidStage(stage) {
		stage = logger.StageProd
	}
	logger.InitLogger(stage)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	gin.SetMode(gin.ReleaseMode)
	router := server.New(cfg, logger.Log)

	ginLambda = ginadapter.New(router)
}

// Handler proxies API Gateway events into the gin engine.
func Handler(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if os.Getenv("LOG_LEVEL") == "debug" {
		logger.Debug("Incoming API Gateway event", zap.String("event", spew.Sdump(req)))
	}
	return ginLambda.ProxyWithContext(ctx, req)
}

func main() {
	lambda.Start(Handler)
}
