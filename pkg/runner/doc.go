/*
Package runner implements the interactive loop for a form dialogue.

It acts as the bridge between a Stepper (usually a session.Manager) and a
person at a terminal, or a host process speaking JSON lines. One Run is one
session: ask, block for one line, feed it back, repeat until the record is
complete or the input closes.

# Key Components

  - Runner: the loop.
  - IOHandler: decouples presentation from the loop.
  - TextHandler: prompts and plain lines, for terminals.
  - JSONHandler: one JSON object per line, for embedding.

# Usage

	r := runner.NewRunner(
		runner.WithSessionID("user-1"),
		runner.WithInputHandler(runner.NewTextHandler(os.Stdin, os.Stdout)),
	)

	res, err := r.Run(ctx, manager)
	if err != nil {
		log.Fatal(err)
	}
*/
package runner
