package ctrl

import (
	"github.com/openziti/reverser/cmd/reverser/reverser"
	"github.com/spf13/cobra"
)

func init() {
	reverser.RootCmd.AddCommand(ctrlCmd)
}

var ctrlCmd = &cobra.Command{
	Use:   "ctrl",
	Short: "Control running servers",
}
