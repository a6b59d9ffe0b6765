// Leadbridge - B2B Questionnaire Lead Intake Bridge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leadbridge

// Package main runs the Leadbridge router behind an API Gateway HTTP API
// (payload format 2.0). The pipeline is built once per cold start and the
// idempotency replay store, if enabled, lives for the life of the container.
package main

import (
	"context"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	chiadapter "github.com/awslabs/aws-lambda-go-api-proxy/chi"
	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/leadbridge/internal/app"
	"github.com/tomtom215/leadbridge/internal/config"
	"github.com/tomtom215/leadbridge/internal/logging"
)

var chiLambda *chiadapter.ChiLambdaV2

//nolint:gochecknoinits // the adapter must exist before the first invocation
func init() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
		Output:    os.Stdout,
	})

	application, err := app.New(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize application")
	}

	mux, ok := application.Handler().(*chi.Mux)
	if !ok {
		logging.Fatal().Msg("Router is not a chi mux")
	}
	chiLambda = chiadapter.NewV2(mux)

	logging.Info().Str("version", app.Version).Msg("Lambda handler initialized")
}

// Handler proxies one API Gateway event through the chi router.
func Handler(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	return chiLambda.ProxyWithContextV2(ctx, req)
}

func main() {
	lambda.Start(Handler)
}
