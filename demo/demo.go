// Package demo runs the fixed read/create/replace/remove sequence against
// one endpoint and prints each result.
package demo

import (
	"context"
	"fmt"
	"io"

	"github.com/kbukum/restdemo/resource"
)

// NewPostPayload is the body sent by the create step.
func NewPostPayload() *resource.Payload {
	return resource.NewPayload().
		Set("title", "New Post !!!").
		Set("body", "This is a new post.")
}

// UpdatedPostPayload is the body sent by the replace step.
func UpdatedPostPayload() *resource.Payload {
	return resource.NewPayload().
		Set("title", "Updated Post !!!").
		Set("body", "This post has been updated recently.")
}

// Step names, used to wrap the error of the step that failed.
const (
	StepRead    = "GET"
	StepCreate  = "POST"
	StepReplace = "PUT"
	StepRemove  = "DELETE"
)

// Run performs GET, POST, PUT and DELETE in that order, writing each
// result to out. It stops at the first failure; later steps are not sent.
func Run(ctx context.Context, ep *resource.Endpoint, out io.Writer) error {
	p, err := ep.Read(ctx)
	if err != nil {
		return fmt.Errorf("%s request: %w", StepRead, err)
	}
	printResult(out, StepRead, p)

	p, err = ep.Create(ctx, NewPostPayload())
	if err != nil {
		return fmt.Errorf("%s request: %w", StepCreate, err)
	}
	printResult(out, StepCreate, p)

	p, err = ep.Replace(ctx, UpdatedPostPayload())
	if err != nil {
		return fmt.Errorf("%s request: %w", StepReplace, err)
	}
	printResult(out, StepReplace, p)

	if err := ep.Remove(ctx); err != nil {
		return fmt.Errorf("%s request: %w", StepRemove, err)
	}
	fmt.Fprintf(out, "%s successful\n\n", StepRemove)

	return nil
}

func printResult(out io.Writer, step string, p *resource.Payload) {
	fmt.Fprintf(out, "%s result:\n %s\n\n", step, p)
}
