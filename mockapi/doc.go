// Package mockapi is an in-memory imitation of the JSONPlaceholder /posts
// collection. It backs the resource tests and the "restdemo serve" command
// so the demo can run without network access.
//
// Routes:
//
//	GET    /posts          list, optional ?userId= filter
//	POST   /posts          201, echoes the body with the next id
//	GET    /posts/:id      200 or 404 {}
//	PUT    /posts/:id      replace, echoes the body with the id
//	PATCH  /posts/:id      merge
//	DELETE /posts/:id      200 {}
//	GET    /health
//
// Writes are answered but not stored unless Config.Persist is set. Bodies
// that are not JSON objects get a 400 with an errors.ErrorResponse body.
package mockapi
