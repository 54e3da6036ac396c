// Package rest provides a JSON-focused REST client built on httpclient.
//
// It adds typed convenience functions for the common verbs. Every call
// checks the status before touching the body: a non-2xx status yields a
// REQUEST_FAILED error and nothing is decoded; a 2xx body that is not
// valid JSON for T yields a DECODE_ERROR.
//
//	client, _ := rest.New(httpclient.Config{
//	    BaseURL: "https://jsonplaceholder.typicode.com",
//	})
//
//	// Typed GET
//	post, err := rest.Get[Post](ctx, client, "/posts/1")
//
//	// Typed POST
//	created, err := rest.Post[Post](ctx, client, "/posts", Post{Title: "New Post !!!"})
//
//	// Status only
//	_, err = rest.Exec(ctx, client, http.MethodDelete, "/posts/1", nil)
package rest
