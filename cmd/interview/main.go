package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	servecmder "github.com/papercomputeco/interviewer/cmd/interview/serve"
	sessioncmder "github.com/papercomputeco/interviewer/cmd/interview/session"
)

func main() {
	root := &cobra.Command{
		Use:          "interview",
		Short:        "Practice behavioral interviews against your own résumé",
		SilenceUsage: true,
	}

	root.AddCommand(servecmder.NewServeCmd())
	root.AddCommand(sessioncmder.NewSessionCmd())

	if err := root.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
