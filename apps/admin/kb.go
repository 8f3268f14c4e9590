package main

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func (cli *commandLine) kbCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kb",
		Short: "manage the assistant's knowledge base",
	}

	importCmd := &cobra.Command{
		Use:   "import FILE",
		Short: "import knowledge from a YAML list of {category, keywords, answer}",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return errors.Wrap(err, "opening knowledge file")
			}
			defer f.Close()

			n, err := cli.store.ImportKnowledge(commandContext(cmd), f)
			if err != nil {
				return err
			}
			cli.printf("%d keywords imported\n", n)
			return nil
		},
	}

	askCmd := &cobra.Command{
		Use:   "ask MESSAGE...",
		Short: "print the answer the assistant gives to a message",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			answer, err := cli.store.Answer(commandContext(cmd), strings.Join(args, " "))
			if err != nil {
				return err
			}
			cli.printf("%s\n", answer)
			return nil
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list the knowledge base",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			kb, err := cli.store.Knowledge(commandContext(cmd))
			if err != nil {
				return err
			}
			for _, cat := range kb {
				cli.printf("%s\n", cat.Name)
				for _, entry := range cat.Entries {
					cli.printf("  %s: %s\n", entry.Keyword, entry.Answer)
				}
			}
			return nil
		},
	}

	cmd.AddCommand(importCmd, askCmd, listCmd)
	return cmd
}
