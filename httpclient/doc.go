// Package httpclient provides the transport handle shared by every REST
// call: one reusable *http.Client plus a base URL.
//
// The Client handles HTTP protocol concerns only. It resolves paths against
// the base URL, encodes bodies, stamps each request with an X-Request-Id and
// a User-Agent, and returns the raw status and body. It never retries and
// never classifies status codes; the rest subpackage does that.
//
// # Basic Usage
//
//	client, err := httpclient.New(httpclient.Config{
//	    BaseURL: "https://jsonplaceholder.typicode.com",
//	})
//
//	resp, err := client.Do(ctx, httpclient.Request{
//	    Method: http.MethodGet,
//	    Path:   "/posts/1",
//	})
//
// A zero Timeout means no deadline at all; callers that want one cancel
// the context.
package httpclient
