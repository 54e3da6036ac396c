// Package resource implements the four operations of a REST collection
// endpoint: read, create, replace and remove.
//
// An Endpoint is bound to one collection path and one item id ("1" unless
// WithID says otherwise):
//
//	client, _ := rest.New(httpclient.Config{BaseURL: httpclient.DefaultBaseURL})
//	posts := resource.NewEndpoint(client, "posts")
//
//	post, err := posts.Read(ctx)                   // GET    /posts/1
//	created, err := posts.Create(ctx, payload)     // POST   /posts
//	updated, err := posts.Replace(ctx, payload)    // PUT    /posts/1
//	err = posts.Remove(ctx)                        // DELETE /posts/1
//
// Each call sends exactly one request and never retries. Every operation
// checks the status first: a non-2xx reply is a REQUEST_FAILED error and its
// body is ignored. A 2xx reply whose body is not a JSON object is a
// DECODE_ERROR, and no Payload is returned. Network failures are
// TRANSPORT_ERROR.
//
// The package-level Read, Create, Replace and Remove functions do the same
// without keeping an Endpoint around.
package resource
