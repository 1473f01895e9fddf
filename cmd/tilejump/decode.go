package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tilejump/internal/platform/tui"
	"github.com/vovakirdan/tilejump/internal/score"
)

var decodeCmd = &cobra.Command{
	Use:   "decode <a> <b> <c> <d>",
	Short: "Decode a submitted score tuple",
	Long: `Run the server-side check on the four fields of a time submission and
print the time it carries, or why it would be rejected.

Examples:
  tilejump decode 13081996 13081997 13171995 118457955   # 45000 ms`,
	Args: cobra.ExactArgs(4),
	Run:  runDecode,
}

func runDecode(cmd *cobra.Command, args []string) {
	var fields [4]score.Field
	for i, arg := range args {
		v, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			exitf("Error: field %c is not an integer: %q", 'a'+i, arg)
		}
		fields[i] = score.Int(v)
	}

	ms, reason := score.Check(score.Tuple{A: fields[0], B: fields[1], C: fields[2], D: fields[3]})
	if reason != "" {
		exitf("rejected: %s", reason)
	}
	fmt.Printf("%d ms (%s)\n", ms, tui.FormatTime(ms))
}
