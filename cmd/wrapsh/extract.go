package main

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/tqbf/wrapsh/pkg/wrap"
)

func extractCmd() *cli.Command {
	return &cli.Command{
		Name:      "extract",
		Usage:     "restore the files bundled in a script",
		ArgsUsage: "<script> [dest]",
		Action:    extractAction,
	}
}

func extractAction(c *cli.Context) error {
	if c.NArg() < 1 || c.NArg() > 2 {
		return fmt.Errorf("usage: wrapsh extract <script> [dest]")
	}
	dest := "."
	if c.NArg() == 2 {
		dest = c.Args().Get(1)
	}

	n, err := wrap.Unpack(c.Args().Get(0), dest)
	if err != nil {
		return fmt.Errorf("extract: %w", err)
	}
	fmt.Fprintf(c.App.Writer, "Extracted %d files into %s\n", n, dest)
	return nil
}

func listCmd() *cli.Command {
	return &cli.Command{
		Name:      "list",
		Usage:     "list the files bundled in a script",
		ArgsUsage: "<script>",
		Action:    listAction,
	}
}

func listAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("usage: wrapsh list <script>")
	}

	footer, entries, err := wrap.List(c.Args().Get(0))
	if err != nil {
		return fmt.Errorf("list: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b,
		"bundle at offset %d, %d files\n",
		footer.StartOffset, footer.Count,
	)
	for _, e := range entries {
		fmt.Fprintf(&b,
			"  %s  %10s  %s\n",
			e.Digest.Encoded()[:12], humanBytes(int64(e.Size)), e.Path,
		)
	}
	fmt.Fprint(c.App.Writer, b.String())
	return nil
}

func humanBytes(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
