// Command curio is the Lambda entrypoint for the catalog API.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/curioworks/curio/catalog"
	"github.com/curioworks/curio/httpapi"
	"github.com/curioworks/curio/search"
	"github.com/curioworks/curio/store"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := awsconfig.LoadDefaultConfig(context.Background())
	if err != nil {
		logger.Error("load aws config", "error", err)
		os.Exit(1)
	}

	storeCfg := store.DefaultConfig()
	if table := os.Getenv("CATALOG_TABLE"); table != "" {
		storeCfg.Table = table
	}
	db := store.NewDynamo(dynamodb.NewFromConfig(cfg), storeCfg)

	entities := catalog.NewEntities(db, logger)
	writer := catalog.NewWriter(db, logger)
	planner := search.NewPlanner(db, search.DefaultOptions())

	handler := httpapi.NewHandler(entities, writer, planner, logger)
	lambda.Start(handler.Handle)
}
