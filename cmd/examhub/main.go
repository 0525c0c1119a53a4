// Command examhub runs the exam room scheduling backend.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/examhub/exam-room-scheduler/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "examhub: %v\n", err)
		os.Exit(cli.ExitCode(err))
	}
}
