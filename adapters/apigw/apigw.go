// Package apigw runs the webhook behind AWS API Gateway proxy integrations.
package apigw

import (
	"context"
	"encoding/base64"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/jdelaire/ares/core"
)

// Handler is a Lambda handler for API Gateway proxy requests.
type Handler func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error)

// WebhookHandler serves inbound Telegram updates.
func WebhookHandler(w *core.Webhook) Handler {
	return func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		return Response(w.HandleEvent(ctx, Event(req))), nil
	}
}

// SetWebhookHandler registers https://{Host}/{stage}/ with Telegram.
func SetWebhookHandler(w *core.Webhook) Handler {
	return func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		return Response(w.Register(ctx, Event(req))), nil
	}
}

// Start hands h to the Lambda runtime. It does not return.
func Start(h Handler) {
	lambda.Start(h)
}

// Event converts a proxy request. A base64 body that fails to decode is
// treated as empty, which the webhook rejects.
func Event(req events.APIGatewayProxyRequest) core.Event {
	body := req.Body
	if req.IsBase64Encoded {
		b, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			body = ""
		} else {
			body = string(b)
		}
	}
	return core.Event{
		Method: req.HTTPMethod,
		Body:   body,
		Host:   header(req, "Host"),
		Stage:  req.RequestContext.Stage,
	}
}

// Response converts a webhook response.
func Response(r core.Response) events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: r.StatusCode,
		Headers:    r.Headers,
		Body:       r.Body,
	}
}

func header(req events.APIGatewayProxyRequest, name string) string {
	for k, v := range req.Headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	for k, vs := range req.MultiValueHeaders {
		if strings.EqualFold(k, name) && len(vs) > 0 {
			return vs[0]
		}
	}
	return ""
}
