package resource

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/kbukum/restdemo/errors"
	"github.com/kbukum/restdemo/httpclient/rest"
	"github.com/kbukum/restdemo/logger"
	"github.com/kbukum/restdemo/observability"
	"github.com/kbukum/restdemo/version"
)

// DefaultID is the item every single-item operation addresses.
const DefaultID = "1"

// Endpoint binds the four operations to one collection path. It holds no
// mutable state and is safe for concurrent use.
type Endpoint struct {
	client  *rest.Client
	path    string
	id      string
	metrics *observability.Metrics
	log     *logger.Logger
	service string
}

// Option configures an Endpoint.
type Option func(*Endpoint)

// WithID overrides the item id used by Read, Replace and Remove.
func WithID(id string) Option {
	return func(e *Endpoint) { e.id = id }
}

// WithMetrics records every operation on m.
func WithMetrics(m *observability.Metrics) Option {
	return func(e *Endpoint) { e.metrics = m }
}

// WithLogger sets the logger used for per-operation debug lines.
func WithLogger(l *logger.Logger) Option {
	return func(e *Endpoint) { e.log = l }
}

// NewEndpoint binds client to the collection at path (e.g. "posts").
func NewEndpoint(client *rest.Client, path string, opts ...Option) *Endpoint {
	e := &Endpoint{
		client:  client,
		path:    strings.Trim(path, "/"),
		id:      DefaultID,
		service: version.Product,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		e.log = logger.Get("resource")
	}
	return e
}

// Path returns the collection path.
func (e *Endpoint) Path() string { return e.path }

// ItemPath returns the path of the addressed item, "{path}/{id}".
func (e *Endpoint) ItemPath() string { return e.path + "/" + e.id }

// Read fetches the item with GET {base}/{path}/{id}.
func (e *Endpoint) Read(ctx context.Context) (*Payload, error) {
	var out *Payload
	err := e.track(ctx, "read", http.MethodGet, e.ItemPath(), func(ctx context.Context) (int, error) {
		resp, err := rest.Get[Payload](ctx, e.client, e.ItemPath())
		if err != nil {
			return errors.StatusCode(err), err
		}
		out, err = payloadOf(resp)
		return resp.StatusCode, err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Create sends payload with POST {base}/{path} and returns the decoded reply.
func (e *Endpoint) Create(ctx context.Context, payload *Payload) (*Payload, error) {
	return e.send(ctx, "create", http.MethodPost, e.path, payload)
}

// Replace sends payload with PUT {base}/{path}/{id} and returns the decoded reply.
func (e *Endpoint) Replace(ctx context.Context, payload *Payload) (*Payload, error) {
	return e.send(ctx, "replace", http.MethodPut, e.ItemPath(), payload)
}

// Remove deletes the item with DELETE {base}/{path}/{id}. Any 2xx status is
// success; the body is never read as JSON.
func (e *Endpoint) Remove(ctx context.Context) error {
	return e.track(ctx, "remove", http.MethodDelete, e.ItemPath(), func(ctx context.Context) (int, error) {
		resp, err := rest.Exec(ctx, e.client, http.MethodDelete, e.ItemPath(), nil)
		if err != nil {
			return errors.StatusCode(err), err
		}
		return resp.StatusCode, nil
	})
}

func (e *Endpoint) send(ctx context.Context, op, method, path string, payload *Payload) (*Payload, error) {
	if payload == nil {
		payload = NewPayload()
	}

	var out *Payload
	err := e.track(ctx, op, method, path, func(ctx context.Context) (int, error) {
		var (
			resp *rest.Response[Payload]
			err  error
		)
		if method == http.MethodPut {
			resp, err = rest.Put[Payload](ctx, e.client, path, payload)
		} else {
			resp, err = rest.Post[Payload](ctx, e.client, path, payload)
		}
		if err != nil {
			return errors.StatusCode(err), err
		}
		out, err = payloadOf(resp)
		return resp.StatusCode, err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// payloadOf returns the decoded object of a 2xx reply. A 204 carries no
// body, so there is no object to return.
func payloadOf(resp *rest.Response[Payload]) (*Payload, error) {
	if resp.StatusCode == http.StatusNoContent {
		return nil, errors.Decode(fmt.Errorf("status %d has no body", resp.StatusCode)).
			WithDetail("status", resp.StatusCode)
	}
	return &resp.Data, nil
}

// track wraps one request in a span, a metric sample and a debug log line.
// The request id is fixed here so all three and the outgoing header agree.
func (e *Endpoint) track(ctx context.Context, op, method, path string, call func(context.Context) (int, error)) error {
	requestID := logger.RequestIDFromContext(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
		ctx = logger.ContextWithRequestID(ctx, requestID)
	}
	url := e.client.HTTP().URL(path)

	oc := observability.NewOperationContext(e.service, op, requestID, e.metrics)
	ctx, span := oc.StartSpanForOperation(ctx, "resource."+op)
	span.SetAttributes(
		attribute.String(observability.AttrHTTPMethod, method),
		attribute.String(observability.AttrHTTPURL, url),
	)
	if sc := span.SpanContext(); sc.IsValid() {
		ctx = logger.ContextWithTrace(ctx, sc.TraceID().String(), sc.SpanID().String())
	}

	status, err := call(ctx)
	if status > 0 {
		span.SetAttributes(attribute.Int(observability.AttrHTTPStatusCode, status))
	}
	oc.EndOperation(ctx, span, err)

	fields := logger.Fields(
		logger.FieldOperation, op,
		logger.FieldMethod, method,
		logger.FieldURL, url,
		logger.FieldDuration, oc.Duration().Milliseconds(),
	)
	if status > 0 {
		fields[logger.FieldStatus] = status
	}
	log := e.log.WithContext(ctx)
	if err != nil {
		log.Debug("operation failed", logger.MergeWithError(fields, err))
		return err
	}
	log.Debug("operation completed", fields)
	return nil
}

// Read fetches {base}/{path}/1 through c.
func Read(ctx context.Context, c *rest.Client, path string) (*Payload, error) {
	return NewEndpoint(c, path).Read(ctx)
}

// Create posts payload to {base}/{path} through c.
func Create(ctx context.Context, c *rest.Client, path string, payload *Payload) (*Payload, error) {
	return NewEndpoint(c, path).Create(ctx, payload)
}

// Replace puts payload to {base}/{path}/1 through c.
func Replace(ctx context.Context, c *rest.Client, path string, payload *Payload) (*Payload, error) {
	return NewEndpoint(c, path).Replace(ctx, payload)
}

// Remove deletes {base}/{path}/1 through c.
func Remove(ctx context.Context, c *rest.Client, path string) error {
	return NewEndpoint(c, path).Remove(ctx)
}
