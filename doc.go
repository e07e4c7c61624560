/*
Package formchat walks a user through a fixed form one question at a time.

A form is a Catalog: an ordered list of fields, each with a prompt. The
Engine is a small deterministic state machine over a per-user Session. Each
call to Step takes the answer to the previous question (nil on the first
call) and returns either the next prompt or, once every field is answered,
the finished Record. Finishing resets the session so the same user can fill
the form again.

The engine performs no I/O and keeps no global state, so the same dialogue
can be driven from a terminal (pkg/runner), an HTTP API (pkg/adapters/http)
or an MCP server (pkg/adapters/mcp). Callers that serve many users keep one
session per correlation ID in a session.Manager, which serializes turns and
hands finished records to a SubmissionSink.

# Usage

	eng, err := formchat.New("") // built-in catalog
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	s := eng.Start("user-1")

	res, _ := eng.Step(ctx, s, nil) // first question
	for !res.IsDone() {
		fmt.Println(res.Prompt)
		answer := readLine()
		res, err = eng.Step(ctx, s, &answer)
		if err != nil {
			log.Fatal(err)
		}
	}
	fmt.Println(res.Record)
*/
package formchat
