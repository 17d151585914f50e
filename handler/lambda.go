package handler

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/aws/aws-lambda-go/events"
)

// LambdaAdapter translates API Gateway proxy events into plain HTTP requests
// against the router, so the same routes serve both deployments.
type LambdaAdapter struct {
	router http.Handler
}

func NewLambdaAdapter(router http.Handler) (*LambdaAdapter, error) {
	if router == nil {
		return nil, errors.New("handler: router must not be nil")
	}
	return &LambdaAdapter{router: router}, nil
}

// Handle is the Lambda entrypoint signature expected by lambda.Start.
func (a *LambdaAdapter) Handle(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	req, err := a.toRequest(ctx, event)
	if err != nil {
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusInternalServerError,
			Headers:    map[string]string{"Content-Type": "application/json"},
			Body:       `{"success":false,"error":"invalid event"}`,
		}, nil
	}

	rec := newResponseCapture()
	a.router.ServeHTTP(rec, req)

	headers := make(map[string]string, len(rec.header))
	for name := range rec.header {
		headers[name] = rec.header.Get(name)
	}
	return events.APIGatewayProxyResponse{
		StatusCode: rec.status,
		Headers:    headers,
		Body:       rec.body.String(),
	}, nil
}

func (a *LambdaAdapter) toRequest(ctx context.Context, event events.APIGatewayProxyRequest) (*http.Request, error) {
	body := event.Body
	if event.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			return nil, err
		}
		body = string(decoded)
	}

	u := url.URL{Path: event.Path}
	if len(event.QueryStringParameters) > 0 {
		q := url.Values{}
		for k, v := range event.QueryStringParameters {
			q.Set(k, v)
		}
		u.RawQuery = q.Encode()
	}

	method := event.HTTPMethod
	if method == "" {
		method = http.MethodGet
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), strings.NewReader(body))
	if err != nil {
		return nil, err
	}
	for k, v := range event.Headers {
		req.Header.Set(k, v)
	}
	if req.Header.Get("Content-Type") == "" && strings.TrimSpace(body) != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// responseCapture buffers the router's response so it can be repackaged as
// a proxy response.
type responseCapture struct {
	header http.Header
	status int
	body   bytes.Buffer
}

func newResponseCapture() *responseCapture {
	return &responseCapture{header: make(http.Header), status: http.StatusOK}
}

func (r *responseCapture) Header() http.Header {
	return r.header
}

func (r *responseCapture) WriteHeader(code int) {
	r.status = code
}

func (r *responseCapture) Write(p []byte) (int, error) {
	return r.body.Write(p)
}
